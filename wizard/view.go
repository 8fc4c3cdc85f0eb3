// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wizard

import (
	"time"

	"github.com/danielhkuo/voter-desk/models"
	"github.com/danielhkuo/voter-desk/validate"
)

// View is what the browser renders for the current step
type View struct {
	SessionID   string               `json:"session_id"`
	Step        string               `json:"step"`
	StepNumber  int                  `json:"step_number"`
	Error       string               `json:"error,omitempty"`
	FieldErrors map[string]string    `json:"field_errors,omitempty"`
	Details     *models.VoterDetails `json:"details,omitempty"`
	GovReport   *models.GovReport    `json:"gov_report,omitempty"`
	OTP         *OTPView             `json:"otp,omitempty"`
	Voter       *models.Voter        `json:"voter,omitempty"`
	CanVote     bool                 `json:"can_vote"`
}

type OTPView struct {
	VoterID       string `json:"voter_id"`
	Message       string `json:"message,omitempty"`
	OTPForTesting string `json:"otp_for_testing,omitempty"`
	Length        int    `json:"length"`
	SecondsLeft   int    `json:"seconds_left"`
	Countdown     string `json:"countdown"`
	Expired       bool   `json:"expired"`
}

var stepNumbers = map[string]int{
	models.StepDetails:    1,
	models.StepGovVerify:  2,
	models.StepFaceVerify: 3,
	models.StepOtpVerify:  4,
	models.StepVoteStatus: 5,
}

// Render builds the view of s at now
func Render(s *models.AuthSession, now time.Time) View {
	v := View{
		SessionID:   s.ID,
		Step:        s.Step,
		StepNumber:  stepNumbers[s.Step],
		Error:       s.Error,
		FieldErrors: s.FieldErrors,
		GovReport:   s.GovReport,
	}

	switch s.Step {
	case models.StepDetails:
		if s.Details != (models.VoterDetails{}) {
			d := s.Details
			v.Details = &d
		}

	case models.StepOtpVerify:
		if s.Challenge != nil {
			left := s.Challenge.Deadline.Sub(now)
			if left < 0 {
				left = 0
			}
			v.OTP = &OTPView{
				VoterID:       s.Challenge.VoterID,
				Message:       s.Challenge.Message,
				OTPForTesting: s.Challenge.OTPForTesting,
				Length:        validate.OTPLength,
				SecondsLeft:   int((left + time.Second - 1) / time.Second),
				Countdown:     FormatCountdown(left),
				Expired:       left == 0,
			}
		}

	case models.StepVoteStatus:
		v.Voter = s.Voter
		v.CanVote = s.Voter != nil && !s.Voter.HasVoted
	}

	return v
}

// CanSubmitOTP mirrors the disabled state of the OTP submit button
func CanSubmitOTP(s *models.AuthSession, code string, now time.Time) bool {
	return s.Step == models.StepOtpVerify &&
		s.Challenge != nil &&
		validate.OTP(code) &&
		now.Before(s.Challenge.Deadline)
}
