// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/voter-desk/imagecheck"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/notify"
	"github.com/danielhkuo/voter-desk/validate"
)

const MsgNoBoothMatch = "No matching booth found for this address"

var ErrVoterNotFound = errors.New("voter not found")

// PhotoError carries the reasons an attached photo was refused
type PhotoError struct {
	Reasons []string
}

func (e *PhotoError) Error() string {
	return "photo rejected: " + strings.Join(e.Reasons, "; ")
}

// API is the part of the backend the admin console calls
type API interface {
	ListVoters(ctx context.Context) ([]models.Voter, error)
	ListBooths(ctx context.Context) ([]models.Booth, error)
	AddVoter(ctx context.Context, voter models.Voter) (models.StatusResponse, error)
	AddVoterWithPhoto(ctx context.Context, voter models.Voter, photo []byte, contentType string) (models.StatusResponse, error)
	DeleteVoter(ctx context.Context, id string) (models.StatusResponse, error)
	AddBooth(ctx context.Context, booth models.Booth) (models.StatusResponse, error)
	AutoAllocate(ctx context.Context, address string) (models.AllocateResponse, error)
}

// Snapshot is what the console shows: every voter and every booth
type Snapshot struct {
	Voters []models.Voter `json:"voters"`
	Booths []models.Booth `json:"booths"`
}

type Console struct {
	api       API
	validator *validate.Validator
	now       func() time.Time
}

func NewConsole(api API, v *validate.Validator) *Console {
	return &Console{api: api, validator: v, now: time.Now}
}

// WithClock replaces the clock used to compute ages
func (c *Console) WithClock(now func() time.Time) *Console {
	c.now = now
	return c
}

// Load fetches voters and booths concurrently. Either failure fails the load.
func (c *Console) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		voters, err := c.api.ListVoters(gctx)
		if err != nil {
			return fmt.Errorf("failed to list voters: %w", err)
		}
		snap.Voters = voters
		return nil
	})
	g.Go(func() error {
		booths, err := c.api.ListBooths(gctx)
		if err != nil {
			return fmt.Errorf("failed to list booths: %w", err)
		}
		snap.Booths = booths
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if snap.Voters == nil {
		snap.Voters = []models.Voter{}
	}
	if snap.Booths == nil {
		snap.Booths = []models.Booth{}
	}
	return snap, nil
}

// Search keeps the voters with any field containing term, ignoring case.
// An empty term keeps everything.
func Search(voters []models.Voter, term string) []models.Voter {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return voters
	}

	out := make([]models.Voter, 0, len(voters))
	for _, v := range voters {
		for _, field := range searchFields(v) {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func searchFields(v models.Voter) []string {
	fields := []string{
		v.ID, v.VoterID, v.AadharNumber, v.PhoneNumber, v.FullName,
		v.DateOfBirth, v.Address, v.Constituency, v.PollingStation,
		v.VotingTimestamp, strconv.FormatBool(v.HasVoted),
	}
	if v.Age > 0 {
		fields = append(fields, strconv.Itoa(v.Age))
	}
	return fields
}

// AddVoter validates the form, computes the age and registers the voter.
// photoDataURL is optional and must be a photo that imagecheck accepted;
// when present the multipart endpoint is used. Nothing is sent when
// validation fails.
func (c *Console) AddVoter(ctx context.Context, voter models.Voter, photoDataURL string) (models.StatusResponse, error) {
	voter.VoterID = strings.ToUpper(strings.TrimSpace(voter.VoterID))
	if errs := c.validator.Voter(voter); errs != nil {
		return models.StatusResponse{}, errs
	}
	voter.Age = validate.Age(voter.DateOfBirth, c.now())

	if photoDataURL == "" {
		resp, err := c.api.AddVoter(ctx, voter)
		if err != nil {
			return models.StatusResponse{}, fmt.Errorf("failed to add voter: %w", err)
		}
		slog.Info("voter added", "voter_id", voter.VoterID)
		return resp, nil
	}

	photo, contentType, err := imagecheck.DecodeDataURL(photoDataURL)
	if err != nil {
		return models.StatusResponse{}, &PhotoError{Reasons: []string{imagecheck.MsgLoadFailed}}
	}
	if result := imagecheck.Validate(photo); !result.OK() {
		return models.StatusResponse{}, &PhotoError{Reasons: result.Reasons}
	}

	resp, err := c.api.AddVoterWithPhoto(ctx, voter, photo, contentType)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to add voter with photo: %w", err)
	}
	slog.Info("voter added", "voter_id", voter.VoterID, "photo_bytes", len(photo))
	return resp, nil
}

// DeleteConfirmation is the question put to the operator before deleting v
func DeleteConfirmation(v models.Voter) string {
	lines := []string{
		fmt.Sprintf("Are you sure you want to delete voter %q? This action cannot be undone!", v.FullName),
		"• Voter record will be permanently deleted",
	}
	if v.HasPhoto() {
		lines = append(lines, "• Uploaded photo will also be deleted")
	}
	lines = append(lines, "• All associated data will be removed")
	return strings.Join(lines, "\n")
}

// DeleteVoter asks p to confirm and deletes the voter with the given record
// ID. Returns notify.ErrNotConfirmed without calling the backend when the
// operator declines.
func (c *Console) DeleteVoter(ctx context.Context, p notify.Prompter, id string) (models.StatusResponse, error) {
	voters, err := c.api.ListVoters(ctx)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to list voters: %w", err)
	}

	var target *models.Voter
	for i := range voters {
		if voters[i].ID == id {
			target = &voters[i]
			break
		}
	}
	if target == nil {
		return models.StatusResponse{}, ErrVoterNotFound
	}

	if !p.Confirm(ctx, DeleteConfirmation(*target)) {
		return models.StatusResponse{}, notify.ErrNotConfirmed
	}

	resp, err := c.api.DeleteVoter(ctx, id)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to delete voter: %w", err)
	}

	slog.Info("voter deleted", "id", id, "image_deleted", resp.ImageDeleted)
	if resp.ImageDeleted {
		p.Notify(ctx, "Voter and uploaded photo deleted", models.LevelInfo)
	}
	return resp, nil
}

// AddBooth validates and registers a booth
func (c *Console) AddBooth(ctx context.Context, booth models.Booth) (models.StatusResponse, error) {
	if errs := c.validator.Booth(booth); errs != nil {
		return models.StatusResponse{}, errs
	}

	resp, err := c.api.AddBooth(ctx, booth)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("failed to add booth: %w", err)
	}
	slog.Info("booth added", "booth_number", booth.BoothNumber)
	return resp, nil
}

// SmartAllocate asks the backend which booth serves address and returns the
// booth name to pre-fill polling_station. No match returns "" and raises a
// warning with the backend's explanation.
func (c *Console) SmartAllocate(ctx context.Context, p notify.Prompter, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", validate.FieldErrors{"address": "This field is required"}
	}

	resp, err := c.api.AutoAllocate(ctx, address)
	if err != nil {
		return "", fmt.Errorf("failed to allocate booth: %w", err)
	}

	if !resp.Success || resp.Allocation == nil {
		msg := resp.Message
		if msg == "" {
			msg = MsgNoBoothMatch
		}
		p.Notify(ctx, msg, models.LevelWarning)
		return "", nil
	}

	p.Notify(ctx, fmt.Sprintf("Allocated to %s (matched %q)", resp.Allocation.BoothName, resp.Allocation.MatchedLocality), models.LevelInfo)
	return resp.Allocation.BoothName, nil
}
