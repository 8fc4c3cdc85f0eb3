// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Wizard steps
const (
	StepDetails    = "details"
	StepGovVerify  = "gov_verify"
	StepFaceVerify = "face_verify"
	StepOtpVerify  = "otp_verify"
	StepVoteStatus = "vote_status"
)

// Government verification statuses
const (
	GovVerified         = "VERIFIED"
	GovSuspicious       = "SUSPICIOUS"
	GovForged           = "FORGED"
	GovInvalid          = "INVALID"
	GovRejected         = "REJECTED"
	GovFlaggedForReview = "FLAGGED_FOR_REVIEW"
)

// Backend status values
const (
	AuthAlreadyVoted = "already_voted"
	AuthOTPSent      = "otp_sent"
	OTPVerified      = "verified"
)

// Notice levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Domain types

type Voter struct {
	ID              string `json:"_id,omitempty"`
	VoterID         string `json:"voter_id"`
	AadharNumber    string `json:"aadhar_number"`
	PhoneNumber     string `json:"phone_number"`
	FullName        string `json:"full_name"`
	DateOfBirth     string `json:"date_of_birth"`
	Age             int    `json:"age,omitempty"`
	Address         string `json:"address,omitempty"`
	Constituency    string `json:"constituency,omitempty"`
	PollingStation  string `json:"polling_station,omitempty"`
	HasVoted        bool   `json:"has_voted"`
	VotingTimestamp string `json:"voting_timestamp,omitempty"`
	Photo           string `json:"photo,omitempty"`
	ImageID         string `json:"image_id,omitempty"`
}

// HasPhoto reports whether an uploaded photo is attached to the record
func (v Voter) HasPhoto() bool {
	return v.Photo != "" || v.ImageID != ""
}

type Booth struct {
	ID           string `json:"_id,omitempty"`
	BoothNumber  string `json:"booth_number"`
	BoothName    string `json:"booth_name"`
	Constituency string `json:"constituency"`
	Address      string `json:"address"`
}

type LocalityMapping struct {
	ID            string   `json:"_id,omitempty"`
	BoothID       string   `json:"booth_id"`
	BoothName     string   `json:"booth_name"`
	LocalityNames []string `json:"locality_names"`
}

// VoterDetails is what the voter types on the first wizard step
type VoterDetails struct {
	VoterID      string `json:"voter_id"`
	AadharNumber string `json:"aadhar_number"`
	PhoneNumber  string `json:"phone_number"`
	FullName     string `json:"full_name"`
	DateOfBirth  string `json:"date_of_birth"`
}

// OTPChallenge echoes what the backend returned when it issued a code.
// Deadline is the local advisory countdown end; the backend owns expiry.
type OTPChallenge struct {
	VoterID       string    `json:"voter_id"`
	Message       string    `json:"message,omitempty"`
	OTPForTesting string    `json:"otp_for_testing,omitempty"`
	Deadline      time.Time `json:"deadline"`
}

// AuthSession is the wizard state for one voting attempt
type AuthSession struct {
	ID          string            `json:"id"`
	Step        string            `json:"step"`
	Details     VoterDetails      `json:"details"`
	GovReport   *GovReport        `json:"gov_report,omitempty"`
	Challenge   *OTPChallenge     `json:"challenge,omitempty"`
	Voter       *Voter            `json:"voter,omitempty"`
	Error       string            `json:"error,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Government verification

// OverallStatus is sent by the backend either as a bare string or as
// {"status": ..., "message": ...}.
type OverallStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (o *OverallStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = OverallStatus{Status: s}
		return nil
	}

	type plain OverallStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OverallStatus(p)
	return nil
}

type IDCheck struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type VerificationReport struct {
	UIDAIAadhaar IDCheck `json:"uidai_aadhaar"`
	ECIVoterID   IDCheck `json:"eci_voter_id"`
}

type GovReport struct {
	OverallStatus      OverallStatus      `json:"overall_status"`
	VerificationReport VerificationReport `json:"verification_report"`
}

// Backend request types

type AuthenticateRequest struct {
	VoterDetails
	LiveImageData string `json:"live_image_data"`
}

type VerifyOTPRequest struct {
	OTP     string `json:"otp"`
	VoterID string `json:"voter_id"`
}

type VoteRequest struct {
	VoterID string `json:"voterId"`
}

type CreateMappingRequest struct {
	BoothID       string   `json:"booth_id"`
	BoothName     string   `json:"booth_name"`
	LocalityNames []string `json:"locality_names"`
}

type AddressRequest struct {
	Address string `json:"address"`
}

type BulkAnalyzeRequest struct {
	Addresses []string `json:"addresses"`
}

// Backend response types

type AuthenticateResponse struct {
	Status        string `json:"status"`
	Voter         *Voter `json:"voter,omitempty"`
	VoterID       string `json:"voter_id,omitempty"`
	Message       string `json:"message,omitempty"`
	OTPForTesting string `json:"otp_for_testing,omitempty"`
}

type VerifyOTPResponse struct {
	Status string `json:"status"`
	Voter  *Voter `json:"voter,omitempty"`
}

type StatusResponse struct {
	Status       string `json:"status,omitempty"`
	Success      bool   `json:"success,omitempty"`
	Message      string `json:"message,omitempty"`
	ImageDeleted bool   `json:"image_deleted,omitempty"`
}

type MappingsResponse struct {
	Mappings []LocalityMapping `json:"mappings"`
}

type Allocation struct {
	BoothID         string `json:"booth_id"`
	BoothName       string `json:"booth_name"`
	MatchedLocality string `json:"matched_locality"`
}

type AllocateResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Allocation *Allocation `json:"allocation"`
}

type LocalityCount struct {
	Locality string `json:"locality"`
	Count    int    `json:"count"`
}

type AutoGenerateSummary struct {
	VotersAnalyzed  int             `json:"voters_analyzed"`
	LocalitiesFound int             `json:"localities_found"`
	BoothsCreated   int             `json:"booths_created"`
	BoothsUpdated   int             `json:"booths_updated"`
	TopLocalities   []LocalityCount `json:"top_localities"`
}

type AutoGenerateResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Summary AutoGenerateSummary `json:"summary"`
}

type BulkResult struct {
	Address         string  `json:"address"`
	BoothID         *string `json:"booth_id"`
	BoothName       string  `json:"booth_name"`
	MatchedLocality *string `json:"matched_locality"`
}

type BulkAnalyzeResponse struct {
	Results []BulkResult `json:"results"`
}

type DashboardStats struct {
	TotalVoters      int     `json:"totalVoters"`
	VotedCount       int     `json:"votedCount"`
	NotVotedCount    int     `json:"notVotedCount"`
	VotingPercentage float64 `json:"votingPercentage"`
	RecentVotes      []Voter `json:"recentVotes,omitempty"`
}

type Anomaly struct {
	ID              string  `json:"_id,omitempty"`
	BoothName       string  `json:"booth_name,omitempty"`
	VoterID         string  `json:"voter_id,omitempty"`
	DetectionType   string  `json:"detection_type"`
	Details         string  `json:"details,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	DetectedAt      string  `json:"detected_at,omitempty"`
}

type DetectResponse struct {
	Status         string `json:"status"`
	AnomaliesFound int    `json:"anomalies_found"`
}

// Served response types

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type NavLink struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details []string          `json:"details,omitempty"`
}

type ConfirmResponse struct {
	Confirm      string `json:"confirm"`
	ConfirmToken string `json:"confirm_token"`
}
