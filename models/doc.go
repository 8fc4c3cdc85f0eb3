// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the records exchanged with the voter backend and the
types this server returns to the browser.

# Domain Types

Mirrors of backend records. The server never owns them durably:

  - Voter: voter registration record, including has_voted and photo reference
  - Booth: polling booth
  - LocalityMapping: locality names that route an address to a booth

# Wizard State

  - AuthSession: current step, typed details, government report, OTP
    challenge echo, voter copy, last error
  - VoterDetails: the five identity fields
  - OTPChallenge: backend challenge plus the local countdown deadline

# Backend Types

Request and response bodies for the REST API, named after the endpoint
(AuthenticateRequest, VerifyOTPResponse, AllocateResponse, ...).

GovReport.OverallStatus accepts both wire shapes the backend produces:

	"overall_status": "VERIFIED"
	"overall_status": {"status": "FORGED", "message": "hologram mismatch"}

# Constants

Wizard steps:

  - StepDetails, StepGovVerify, StepFaceVerify, StepOtpVerify, StepVoteStatus

Government statuses:

  - GovVerified, GovSuspicious, GovForged, GovInvalid, GovRejected,
    GovFlaggedForReview

Notice levels:

  - LevelInfo, LevelWarning, LevelError
*/
package models
