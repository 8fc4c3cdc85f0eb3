// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admin

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/voter-desk/apiclient"
	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/notify"
	"github.com/danielhkuo/voter-desk/validate"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	voters    []models.Voter
	votersErr error
	booths    []models.Booth
	boothsErr error

	added      models.Voter
	photo      []byte
	addErr     error
	deleteResp models.StatusResponse
	deleteErr  error
	allocate   models.AllocateResponse
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListVoters(ctx context.Context) ([]models.Voter, error) {
	f.record("list_voters")
	return f.voters, f.votersErr
}

func (f *fakeAPI) ListBooths(ctx context.Context) ([]models.Booth, error) {
	f.record("list_booths")
	return f.booths, f.boothsErr
}

func (f *fakeAPI) AddVoter(ctx context.Context, v models.Voter) (models.StatusResponse, error) {
	f.record("add_voter")
	f.added = v
	return models.StatusResponse{Message: "Voter added successfully"}, f.addErr
}

func (f *fakeAPI) AddVoterWithPhoto(ctx context.Context, v models.Voter, photo []byte, contentType string) (models.StatusResponse, error) {
	f.record("add_voter_photo")
	f.added = v
	f.photo = photo
	return models.StatusResponse{Message: "Voter added successfully"}, f.addErr
}

func (f *fakeAPI) DeleteVoter(ctx context.Context, id string) (models.StatusResponse, error) {
	f.record("delete_voter")
	return f.deleteResp, f.deleteErr
}

func (f *fakeAPI) AddBooth(ctx context.Context, b models.Booth) (models.StatusResponse, error) {
	f.record("add_booth")
	return models.StatusResponse{Message: "Booth added successfully"}, nil
}

func (f *fakeAPI) AutoAllocate(ctx context.Context, address string) (models.AllocateResponse, error) {
	f.record("auto_allocate")
	return f.allocate, nil
}

var today = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

func newConsole(api API) *Console {
	now := func() time.Time { return today }
	return NewConsole(api, validate.NewWithClock(now)).WithClock(now)
}

func validVoter() models.Voter {
	return models.Voter{
		VoterID:        "xyz7654321",
		AadharNumber:   "123456789012",
		PhoneNumber:    "9876543210",
		FullName:       "Ravi Kumar",
		DateOfBirth:    "2000-06-16",
		Address:        "12, Keshav Nagar, Delhi",
		Constituency:   "New Delhi",
		PollingStation: "Central School",
	}
}

func TestLoad(t *testing.T) {
	api := &fakeAPI{
		voters: []models.Voter{{ID: "1", FullName: "A"}},
		booths: []models.Booth{{ID: "b1", BoothName: "Central School"}},
	}
	snap, err := newConsole(api).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Voters) != 1 || len(snap.Booths) != 1 {
		t.Errorf("Load() = %+v", snap)
	}
}

func TestLoad_EitherFailureFails(t *testing.T) {
	api := &fakeAPI{booths: []models.Booth{{ID: "b1"}}, votersErr: errors.New("boom")}
	if _, err := newConsole(api).Load(context.Background()); err == nil {
		t.Error("expected voters failure to fail the load")
	}

	api = &fakeAPI{boothsErr: &apiclient.APIError{Status: 500, Message: "db down"}}
	_, err := newConsole(api).Load(context.Background())
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "db down" {
		t.Errorf("Load() error = %v, want wrapped APIError", err)
	}
}

func TestLoad_EmptyListsNotNil(t *testing.T) {
	snap, err := newConsole(&fakeAPI{}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Voters == nil || snap.Booths == nil {
		t.Error("empty lists should encode as [] not null")
	}
}

func TestSearch(t *testing.T) {
	voters := []models.Voter{
		{ID: "1", FullName: "Asha Rao", VoterID: "ABC1234567", Constituency: "Pune"},
		{ID: "2", FullName: "Ravi Kumar", VoterID: "XYZ7654321", Constituency: "New Delhi"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2"}},
		{"asha", []string{"1"}},
		{"DELHI", []string{"2"}},
		{"xyz76", []string{"2"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		got := Search(voters, tt.term)
		var ids []string
		for _, v := range got {
			ids = append(ids, v.ID)
		}
		if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Search(%q) = %v, want %v", tt.term, ids, tt.want)
		}
	}
}

func TestAddVoter_InvalidNoCall(t *testing.T) {
	api := &fakeAPI{}
	c := newConsole(api)

	tests := []struct {
		name  string
		edit  func(*models.Voter)
		field string
	}{
		{"missing address", func(v *models.Voter) { v.Address = "" }, "address"},
		{"bad aadhaar", func(v *models.Voter) { v.AadharNumber = "1234" }, "aadhar_number"},
		{"under 18", func(v *models.Voter) { v.DateOfBirth = "2010-01-01" }, "date_of_birth"},
		{"bad phone", func(v *models.Voter) { v.PhoneNumber = "1234567890" }, "phone_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validVoter()
			tt.edit(&v)
			_, err := c.AddVoter(context.Background(), v, "")

			var fieldErrs validate.FieldErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("AddVoter() error = %v, want FieldErrors", err)
			}
			if _, ok := fieldErrs[tt.field]; !ok {
				t.Errorf("%s not flagged: %v", tt.field, fieldErrs)
			}
		})
	}
	if len(api.calls) != 0 {
		t.Errorf("invalid forms issued calls %v", api.calls)
	}
}

func TestAddVoter_ComputesAge(t *testing.T) {
	api := &fakeAPI{}
	if _, err := newConsole(api).AddVoter(context.Background(), validVoter(), ""); err != nil {
		t.Fatal(err)
	}
	// Born 2000-06-16, today is 2025-06-15
	if api.added.Age != 24 {
		t.Errorf("age = %d, want 24", api.added.Age)
	}
	if api.added.VoterID != "XYZ7654321" {
		t.Errorf("voter id = %q", api.added.VoterID)
	}
	if api.called("add_voter") != 1 {
		t.Errorf("calls = %v", api.calls)
	}
}

func TestAddVoter_DuplicateVerbatim(t *testing.T) {
	api := &fakeAPI{addErr: &apiclient.APIError{Status: 409, Message: "Voter ID already exists"}}
	_, err := newConsole(api).AddVoter(context.Background(), validVoter(), "")
	if apiclient.Message(err) != "Voter ID already exists" || apiclient.StatusCode(err) != 409 {
		t.Errorf("AddVoter() error = %v", err)
	}
}

// photoDataURL builds a PNG of the target size padded into the size band
func photoDataURL(t *testing.T, w, h, size int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if len(data) < size {
		data = append(data, make([]byte, size-len(data))...)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestAddVoter_Photo(t *testing.T) {
	api := &fakeAPI{}
	c := newConsole(api)

	good := photoDataURL(t, imagecheck.TargetWidth, imagecheck.TargetHeight, 60*1024)
	if _, err := c.AddVoter(context.Background(), validVoter(), good); err != nil {
		t.Fatalf("AddVoter() error = %v", err)
	}
	if api.called("add_voter_photo") != 1 || len(api.photo) != 60*1024 {
		t.Errorf("calls=%v photo=%d bytes", api.calls, len(api.photo))
	}

	small := photoDataURL(t, 100, 100, 0)
	_, err := c.AddVoter(context.Background(), validVoter(), small)
	var photoErr *PhotoError
	if !errors.As(err, &photoErr) || len(photoErr.Reasons) == 0 {
		t.Fatalf("AddVoter(small) error = %v, want PhotoError", err)
	}
	if api.called("add_voter_photo") != 1 {
		t.Error("rejected photo must not be sent")
	}
}

func TestDeleteVoter(t *testing.T) {
	voters := []models.Voter{
		{ID: "v1", FullName: "Asha Rao", ImageID: "img1"},
		{ID: "v2", FullName: "Ravi Kumar"},
	}

	t.Run("declined issues no call", func(t *testing.T) {
		api := &fakeAPI{voters: voters}
		rec := &notify.Recorder{Answer: false}
		_, err := newConsole(api).DeleteVoter(context.Background(), rec, "v1")
		if !errors.Is(err, notify.ErrNotConfirmed) {
			t.Errorf("DeleteVoter() error = %v", err)
		}
		if api.called("delete_voter") != 0 {
			t.Error("declined delete issued a call")
		}
		if len(rec.Confirms) != 1 || !strings.Contains(rec.Confirms[0], `"Asha Rao"`) {
			t.Errorf("confirm = %v", rec.Confirms)
		}
		if !strings.Contains(rec.Confirms[0], "Uploaded photo will also be deleted") {
			t.Error("photo warning missing for voter with photo")
		}
	})

	t.Run("confirmed with photo", func(t *testing.T) {
		api := &fakeAPI{voters: voters, deleteResp: models.StatusResponse{ImageDeleted: true}}
		rec := &notify.Recorder{Answer: true}
		if _, err := newConsole(api).DeleteVoter(context.Background(), rec, "v1"); err != nil {
			t.Fatal(err)
		}
		if api.called("delete_voter") != 1 {
			t.Error("confirmed delete should call the backend")
		}
		if len(rec.Notices) != 1 || rec.Notices[0].Level != models.LevelInfo {
			t.Errorf("notices = %v", rec.Notices)
		}
	})

	t.Run("no photo warning without photo", func(t *testing.T) {
		api := &fakeAPI{voters: voters}
		rec := &notify.Recorder{}
		newConsole(api).DeleteVoter(context.Background(), rec, "v2")
		if strings.Contains(rec.Confirms[0], "photo") {
			t.Errorf("unexpected photo warning: %q", rec.Confirms[0])
		}
	})

	t.Run("unknown voter", func(t *testing.T) {
		api := &fakeAPI{voters: voters}
		_, err := newConsole(api).DeleteVoter(context.Background(), &notify.Recorder{Answer: true}, "v9")
		if !errors.Is(err, ErrVoterNotFound) {
			t.Errorf("DeleteVoter() error = %v", err)
		}
	})
}

func TestAddBooth_RequiresAllFields(t *testing.T) {
	api := &fakeAPI{}
	c := newConsole(api)

	_, err := c.AddBooth(context.Background(), models.Booth{BoothNumber: "B1", BoothName: "Central School"})
	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) != 2 {
		t.Errorf("AddBooth() error = %v", err)
	}

	full := models.Booth{BoothNumber: "B1", BoothName: "Central School", Constituency: "New Delhi", Address: "Keshav Nagar"}
	if _, err := c.AddBooth(context.Background(), full); err != nil {
		t.Errorf("AddBooth() error = %v", err)
	}
	if api.called("add_booth") != 1 {
		t.Errorf("calls = %v", api.calls)
	}
}

func TestSmartAllocate(t *testing.T) {
	ctx := context.Background()

	api := &fakeAPI{allocate: models.AllocateResponse{
		Success:    true,
		Allocation: &models.Allocation{BoothID: "B1", BoothName: "Central School", MatchedLocality: "keshav nagar"},
	}}
	rec := &notify.Recorder{}
	booth, err := newConsole(api).SmartAllocate(ctx, rec, "610/1119, Keshav Nagar, Delhi")
	if err != nil || booth != "Central School" {
		t.Errorf("SmartAllocate() = %q, %v", booth, err)
	}

	api = &fakeAPI{allocate: models.AllocateResponse{Success: false, Message: MsgNoBoothMatch}}
	rec = &notify.Recorder{}
	booth, err = newConsole(api).SmartAllocate(ctx, rec, "Somewhere else")
	if err != nil || booth != "" {
		t.Errorf("SmartAllocate() = %q, %v", booth, err)
	}
	if len(rec.Notices) != 1 || rec.Notices[0].Message != MsgNoBoothMatch || rec.Notices[0].Level != models.LevelWarning {
		t.Errorf("notices = %v", rec.Notices)
	}

	if _, err := newConsole(api).SmartAllocate(ctx, rec, "   "); err == nil {
		t.Error("empty address should be rejected")
	}
}
