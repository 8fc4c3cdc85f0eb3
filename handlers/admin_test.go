// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/voter-desk/admin"
	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/middleware"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/testutil"
)

func testVoters() []models.Voter {
	return []models.Voter{
		{ID: "v1", VoterID: "ABC1234567", FullName: "Asha Rao", PhoneNumber: "9876543210", Constituency: "North", ImageID: "img-1"},
		{ID: "v2", VoterID: "XYZ7654321", FullName: "Ravi Kumar", PhoneNumber: "9123456780", Constituency: "South", HasVoted: true},
	}
}

func TestAdminLoad(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("GET /api/admin/voters", http.StatusOK, testVoters())
	env.backend.JSON("GET /api/admin/booths", http.StatusOK, []models.Booth{
		{BoothNumber: "B1", BoothName: "Town Hall", Constituency: "North", Address: "1 Main St"},
	})

	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{"no filter", "", []string{"v1", "v2"}},
		{"by name", "?q=asha", []string{"v1"}},
		{"by constituency", "?q=SOUTH", []string{"v2"}},
		{"no match", "?q=nobody", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(env.admin.Load, "GET", "/api/admin"+tc.query, nil, nil, nil)
			testutil.AssertStatus(t, w, http.StatusOK)

			var snap admin.Snapshot
			testutil.AssertJSON(t, w, &snap)

			if len(snap.Voters) != len(tc.expected) {
				t.Fatalf("Expected %d voters, got %d", len(tc.expected), len(snap.Voters))
			}
			for i, id := range tc.expected {
				if snap.Voters[i].ID != id {
					t.Errorf("voter %d = %s, want %s", i, snap.Voters[i].ID, id)
				}
			}
			if len(snap.Booths) != 1 {
				t.Errorf("Expected 1 booth, got %d", len(snap.Booths))
			}
		})
	}
}

func TestAdminLoadBackendDown(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("GET /api/admin/voters", http.StatusInternalServerError, map[string]string{"error": "db down"})
	env.backend.JSON("GET /api/admin/booths", http.StatusOK, []models.Booth{})

	w := serve(env.admin.Load, "GET", "/api/admin", nil, nil, nil)
	testutil.AssertStatus(t, w, http.StatusBadGateway)
}

func TestAddVoter(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("POST /api/admin/voters", http.StatusCreated, map[string]any{"status": "success"})

	voter := models.Voter{
		VoterID:        " abc1234567 ",
		AadharNumber:   "123456789012",
		PhoneNumber:    "9876543210",
		FullName:       "Asha Rao",
		DateOfBirth:    "1990-04-01",
		Address:        "12 Lake Road, Indiranagar",
		Constituency:   "North",
		PollingStation: "Town Hall",
	}

	w := serve(env.admin.AddVoter, "POST", "/api/admin/voters", voter, nil, nil)
	testutil.AssertStatus(t, w, http.StatusCreated)

	calls := env.backend.Calls("POST /api/admin/voters")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 add call, got %d", len(calls))
	}

	var sent models.Voter
	json.Unmarshal(calls[0].Body, &sent)
	if sent.VoterID != "ABC1234567" {
		t.Errorf("Expected normalized voter id, got %q", sent.VoterID)
	}
	if sent.Age < 30 {
		t.Errorf("Expected computed age, got %d", sent.Age)
	}
}

func TestAddVoterValidation(t *testing.T) {
	env := newTestEnv(t)

	w := serve(env.admin.AddVoter, "POST", "/api/admin/voters", models.Voter{FullName: "Asha Rao"}, nil, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	resp := decodeError(t, w)
	for _, field := range []string{"voter_id", "aadhar_number", "phone_number", "date_of_birth"} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("Expected field error for %s, got %v", field, resp.Fields)
		}
	}

	if env.backend.CallCount() != 0 {
		t.Errorf("Expected no backend call, got %d", env.backend.CallCount())
	}
}

func TestAddVoterBadPhoto(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"voter_id":        "ABC1234567",
		"aadhar_number":   "123456789012",
		"phone_number":    "9876543210",
		"full_name":       "Asha Rao",
		"date_of_birth":   "1990-04-01",
		"address":         "12 Lake Road",
		"constituency":    "North",
		"polling_station": "Town Hall",
		"photo_data_url":  "data:image/png;base64,iVBORw0KGgo=",
	}

	w := serve(env.admin.AddVoter, "POST", "/api/admin/voters", body, nil, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	resp := decodeError(t, w)
	if len(resp.Details) == 0 {
		t.Error("Expected photo rejection reasons")
	}
	if env.backend.CallCount() != 0 {
		t.Errorf("Expected no backend call, got %d", env.backend.CallCount())
	}
}

func TestAddVoterBackendConflict(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("POST /api/admin/voters", http.StatusConflict, map[string]any{
		"error": "Voter ID already exists",
	})

	voter := models.Voter{
		VoterID:        "ABC1234567",
		AadharNumber:   "123456789012",
		PhoneNumber:    "9876543210",
		FullName:       "Asha Rao",
		DateOfBirth:    "1990-04-01",
		Address:        "12 Lake Road",
		Constituency:   "North",
		PollingStation: "Town Hall",
	}

	w := serve(env.admin.AddVoter, "POST", "/api/admin/voters", voter, nil, nil)
	testutil.AssertStatus(t, w, http.StatusConflict)

	if resp := decodeError(t, w); resp.Message != "Voter ID already exists" {
		t.Errorf("Expected backend message, got %q", resp.Message)
	}
}

func TestDeleteVoterConfirmation(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("GET /api/admin/voters", http.StatusOK, testVoters())
	env.backend.JSON("DELETE /api/admin/voters/v1", http.StatusOK, map[string]any{
		"success":       true,
		"image_deleted": true,
	})

	path := map[string]string{"id": "v1"}

	// First attempt asks for confirmation and deletes nothing
	w := serve(env.admin.DeleteVoter, "DELETE", "/api/admin/voters/v1", nil, path, nil)
	testutil.AssertStatus(t, w, http.StatusPreconditionRequired)

	var confirm models.ConfirmResponse
	testutil.AssertJSON(t, w, &confirm)
	if !strings.Contains(confirm.Confirm, `"Asha Rao"`) {
		t.Errorf("Expected the voter name in the question, got %q", confirm.Confirm)
	}
	if !strings.Contains(confirm.Confirm, "Uploaded photo will also be deleted") {
		t.Errorf("Expected photo warning in the question, got %q", confirm.Confirm)
	}
	if confirm.ConfirmToken == "" {
		t.Fatal("Expected a confirm token")
	}
	if n := len(env.backend.Calls("DELETE /api/admin/voters/v1")); n != 0 {
		t.Fatalf("Expected no delete before confirmation, got %d", n)
	}

	// A token for another voter does not confirm this one
	other := serve(env.admin.DeleteVoter, "DELETE", "/api/admin/voters/v2", nil,
		map[string]string{"id": "v2"}, map[string]string{middleware.HeaderConfirmToken: confirm.ConfirmToken})
	testutil.AssertStatus(t, other, http.StatusPreconditionRequired)

	// Repeating with the token deletes
	w = serve(env.admin.DeleteVoter, "DELETE", "/api/admin/voters/v1", nil, path,
		map[string]string{middleware.HeaderConfirmToken: confirm.ConfirmToken})
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := len(env.backend.Calls("DELETE /api/admin/voters/v1")); n != 1 {
		t.Errorf("Expected 1 delete call, got %d", n)
	}

	var resp struct {
		Result  models.StatusResponse `json:"result"`
		Notices []models.Notice       `json:"notices"`
	}
	testutil.AssertJSON(t, w, &resp)
	if !resp.Result.ImageDeleted {
		t.Error("Expected image_deleted to be passed through")
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Message != "Voter and uploaded photo deleted" {
		t.Errorf("Expected photo deletion notice, got %+v", resp.Notices)
	}
}

func TestDeleteVoterNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("GET /api/admin/voters", http.StatusOK, testVoters())

	w := serve(env.admin.DeleteVoter, "DELETE", "/api/admin/voters/missing", nil,
		map[string]string{"id": "missing"}, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAddBoothValidation(t *testing.T) {
	env := newTestEnv(t)
	env.backend.JSON("POST /api/admin/booths", http.StatusCreated, map[string]any{"status": "success"})

	testCases := []struct {
		name     string
		booth    models.Booth
		expected int
	}{
		{"missing fields", models.Booth{BoothNumber: "B1"}, http.StatusBadRequest},
		{"valid", models.Booth{BoothNumber: "B1", BoothName: "Town Hall", Constituency: "North", Address: "1 Main St"}, http.StatusCreated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(env.admin.AddBooth, "POST", "/api/admin/booths", tc.booth, nil, nil)
			testutil.AssertStatus(t, w, tc.expected)
		})
	}

	if n := len(env.backend.Calls("POST /api/admin/booths")); n != 1 {
		t.Errorf("Expected 1 booth call, got %d", n)
	}
}

func TestCheckPhotoRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/admin/photo", bytes.NewReader(pngFrame(t, 40, 30)))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	env.admin.CheckPhoto(w, req)

	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	var result imagecheck.Result
	testutil.AssertJSON(t, w, &result)
	if result.DataURL != "" {
		t.Error("Expected no data URL for a rejected photo")
	}

	found := false
	for _, r := range result.Reasons {
		if r == imagecheck.MsgTooSmall {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %q among %v", imagecheck.MsgTooSmall, result.Reasons)
	}
}

func TestCheckPhotoMultipart(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name     string
		field    string
		expected int
	}{
		{"image field", "image", http.StatusUnprocessableEntity},
		{"wrong field", "photo", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, _ := mw.CreateFormFile(tc.field, "face.png")
			part.Write(pngFrame(t, 40, 30))
			mw.Close()

			req := httptest.NewRequest("POST", "/api/admin/photo", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			env.admin.CheckPhoto(w, req)

			testutil.AssertStatus(t, w, tc.expected)
		})
	}
}

func TestCheckPhotoEmpty(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/admin/photo", nil)
	w := httptest.NewRecorder()
	env.admin.CheckPhoto(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestSmartAllocate(t *testing.T) {
	testCases := []struct {
		name     string
		reply    map[string]any
		station  string
		level    string
		contains string
	}{
		{
			name: "match",
			reply: map[string]any{
				"success": true,
				"allocation": map[string]string{
					"booth_id":         "B1",
					"booth_name":       "Town Hall",
					"matched_locality": "indiranagar",
				},
			},
			station:  "Town Hall",
			level:    models.LevelInfo,
			contains: "Town Hall",
		},
		{
			name:     "no match",
			reply:    map[string]any{"success": false, "allocation": nil},
			station:  "",
			level:    models.LevelWarning,
			contains: admin.MsgNoBoothMatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.JSON("POST /api/booth-allocation/auto-allocate", http.StatusOK, tc.reply)

			w := serve(env.admin.SmartAllocate, "POST", "/api/admin/smart-allocate",
				map[string]string{"address": "12 Lake Road, Indiranagar"}, nil, nil)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp smartAllocateResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.PollingStation != tc.station {
				t.Errorf("Expected station %q, got %q", tc.station, resp.PollingStation)
			}
			if len(resp.Notices) != 1 {
				t.Fatalf("Expected 1 notice, got %+v", resp.Notices)
			}
			if resp.Notices[0].Level != tc.level || !strings.Contains(resp.Notices[0].Message, tc.contains) {
				t.Errorf("Unexpected notice %+v", resp.Notices[0])
			}
		})
	}
}

func TestSmartAllocateEmptyAddress(t *testing.T) {
	env := newTestEnv(t)

	w := serve(env.admin.SmartAllocate, "POST", "/api/admin/smart-allocate",
		map[string]string{"address": "   "}, nil, nil)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	if env.backend.CallCount() != 0 {
		t.Errorf("Expected no backend call, got %d", env.backend.CallCount())
	}
}
