// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/voter-desk/apiclient"
	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/validate"
)

// OTPCountdown is the advisory lifetime shown next to the OTP input
const OTPCountdown = 300 * time.Second

const MsgSessionMissing = "Voter session data is missing. Please start over."

var (
	ErrWrongStep    = errors.New("action not available on the current step")
	ErrAlreadyVoted = errors.New("voter has already voted")
	ErrNoStill      = errors.New("face capture required")
	ErrInvalidOTP   = errors.New("OTP must be exactly 6 digits")
	ErrOTPTimeUp    = errors.New("OTP countdown has run out")
)

// API is the part of the backend the wizard calls
type API interface {
	VerifyGovernmentIDs(ctx context.Context, details models.VoterDetails) (models.GovReport, error)
	Authenticate(ctx context.Context, req models.AuthenticateRequest) (models.AuthenticateResponse, error)
	VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (models.VerifyOTPResponse, error)
	Vote(ctx context.Context, voterID string) (models.Voter, error)
}

// Flow sequences a voter through details, government check, face capture,
// OTP and voting. Sessions are plain values; Flow holds no per-voter state.
type Flow struct {
	api        API
	validator  *validate.Validator
	production bool
	now        func() time.Time
}

func NewFlow(api API, v *validate.Validator, production bool) *Flow {
	return &Flow{api: api, validator: v, production: production, now: time.Now}
}

// WithClock replaces the clock used for countdown deadlines
func (f *Flow) WithClock(now func() time.Time) *Flow {
	f.now = now
	return f
}

// New returns a fresh session on the details step
func (f *Flow) New(id string) *models.AuthSession {
	now := f.now()
	return &models.AuthSession{
		ID:        id,
		Step:      models.StepDetails,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset discards everything in s and starts over on the details step
func (f *Flow) Reset(s *models.AuthSession) *models.AuthSession {
	return f.New(s.ID)
}

// Dismiss clears the banner
func (f *Flow) Dismiss(s *models.AuthSession) {
	s.Error = ""
	s.UpdatedAt = f.now()
}

func (f *Flow) fail(s *models.AuthSession, step, message string) {
	s.Step = step
	s.Error = message
	s.UpdatedAt = f.now()
}

// SubmitDetails validates the identity fields and moves to the government
// check. Returns validate.FieldErrors when a field is rejected.
func (f *Flow) SubmitDetails(s *models.AuthSession, details models.VoterDetails) error {
	if s.Step != models.StepDetails {
		return ErrWrongStep
	}

	details = validate.NormalizeDetails(details)
	s.Details = details
	s.UpdatedAt = f.now()

	if errs := f.validator.Details(details); errs != nil {
		s.FieldErrors = errs
		return errs
	}

	s.FieldErrors = nil
	s.Error = ""
	s.Step = models.StepGovVerify
	return nil
}

// VerifyGovernment runs the government ID check. Only VERIFIED proceeds to
// face capture; every other outcome returns to details with a banner.
func (f *Flow) VerifyGovernment(ctx context.Context, s *models.AuthSession) error {
	if s.Step != models.StepGovVerify {
		return ErrWrongStep
	}

	report, err := f.api.VerifyGovernmentIDs(ctx, s.Details)
	if err != nil {
		slog.Warn("government verification call failed", "session_id", s.ID, "error", err)
		f.fail(s, models.StepDetails, apiclient.Message(err))
		return nil
	}

	s.GovReport = &report
	status := report.OverallStatus.Status
	if status != models.GovVerified {
		slog.Info("government verification rejected", "session_id", s.ID, "status", status)
		msg := "Government verification failed: " + status
		if report.OverallStatus.Message != "" {
			msg += ". " + report.OverallStatus.Message
		}
		f.fail(s, models.StepDetails, msg)
		return nil
	}

	s.Error = ""
	s.Step = models.StepFaceVerify
	s.UpdatedAt = f.now()
	return nil
}

// SubmitFace authenticates with the captured still. An already-voted voter
// goes straight to the vote status step; otherwise an OTP challenge starts.
func (f *Flow) SubmitFace(ctx context.Context, s *models.AuthSession, stillDataURL string) error {
	if s.Step != models.StepFaceVerify {
		return ErrWrongStep
	}
	if stillDataURL == "" {
		return ErrNoStill
	}

	resp, err := f.api.Authenticate(ctx, models.AuthenticateRequest{
		VoterDetails:  s.Details,
		LiveImageData: stillDataURL,
	})
	if err != nil {
		slog.Warn("authenticate call failed", "session_id", s.ID, "error", err)
		f.fail(s, models.StepDetails, apiclient.Message(err))
		return nil
	}

	switch resp.Status {
	case models.AuthAlreadyVoted:
		s.Voter = mergeVoter(s.Voter, resp.Voter)
		s.Challenge = nil
		s.Error = ""
		s.Step = models.StepVoteStatus

	case models.AuthOTPSent:
		challenge := &models.OTPChallenge{
			VoterID:  resp.VoterID,
			Message:  resp.Message,
			Deadline: f.now().Add(OTPCountdown),
		}
		if !f.production {
			challenge.OTPForTesting = resp.OTPForTesting
		}
		s.Challenge = challenge
		s.Error = ""
		s.Step = models.StepOtpVerify

	default:
		slog.Error("unexpected authenticate status", "session_id", s.ID, "status", resp.Status)
		f.fail(s, models.StepDetails, apiclient.GenericMessage)
		return nil
	}

	s.UpdatedAt = f.now()
	return nil
}

// SubmitOTP checks the code locally (six digits, countdown running) and then
// with the backend. Backend rejection keeps the voter on the OTP step.
func (f *Flow) SubmitOTP(ctx context.Context, s *models.AuthSession, code string) error {
	if s.Step != models.StepOtpVerify || s.Challenge == nil {
		return ErrWrongStep
	}
	if !validate.OTP(code) {
		return ErrInvalidOTP
	}
	if !f.now().Before(s.Challenge.Deadline) {
		return ErrOTPTimeUp
	}

	resp, err := f.api.VerifyOTP(ctx, models.VerifyOTPRequest{OTP: code, VoterID: s.Challenge.VoterID})
	if err != nil {
		slog.Info("otp rejected", "session_id", s.ID, "status", apiclient.StatusCode(err))
		f.fail(s, models.StepOtpVerify, apiclient.Message(err))
		return nil
	}
	if resp.Status != models.OTPVerified {
		f.fail(s, models.StepOtpVerify, "OTP verification failed")
		return nil
	}

	s.Voter = mergeVoter(s.Voter, resp.Voter)
	s.Challenge = nil
	s.Error = ""
	s.Step = models.StepVoteStatus
	s.UpdatedAt = f.now()
	return nil
}

// CastVote records the vote. It never calls the backend for a voter the
// session already shows as having voted.
func (f *Flow) CastVote(ctx context.Context, s *models.AuthSession) error {
	if s.Step != models.StepVoteStatus {
		return ErrWrongStep
	}
	if s.Voter != nil && s.Voter.HasVoted {
		return ErrAlreadyVoted
	}
	if s.Voter == nil || s.Voter.ID == "" {
		f.fail(s, models.StepVoteStatus, MsgSessionMissing)
		return nil
	}

	updated, err := f.api.Vote(ctx, s.Voter.ID)
	if err != nil {
		slog.Warn("vote call failed", "session_id", s.ID, "error", err)
		f.fail(s, models.StepVoteStatus, apiclient.Message(err))
		return nil
	}

	slog.Info("vote recorded", "session_id", s.ID)
	s.Voter = mergeVoter(s.Voter, &updated)
	s.Error = ""
	s.UpdatedAt = f.now()
	return nil
}

// mergeVoter takes next as the new copy but never clears has_voted
func mergeVoter(prev, next *models.Voter) *models.Voter {
	if next == nil {
		return prev
	}
	merged := *next
	if prev != nil && prev.HasVoted {
		merged.HasVoted = true
		if merged.VotingTimestamp == "" {
			merged.VotingTimestamp = prev.VotingTimestamp
		}
	}
	return &merged
}

// FormatCountdown renders a remaining duration as m:ss, counting partial
// seconds as whole ones so the display reaches 0:00 exactly at the deadline
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
