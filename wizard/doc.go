// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wizard sequences a voter through authentication.

# Steps

	details ──► gov_verify ──► face_verify ──► otp_verify ──► vote_status
	   ▲            │               │                │              │
	   └────────────┴───────────────┘      (stays on failure)      reset

  - SubmitDetails: validates locally, no backend call
  - VerifyGovernment: only VERIFIED continues; any other status returns to
    details with a banner naming the status
  - SubmitFace: authenticate with the captured still; already_voted jumps
    to vote_status, otp_sent starts the OTP countdown
  - SubmitOTP: six digits and time left on the countdown, then the backend
    decides; failures keep the voter on the OTP step
  - CastVote: refused locally once the voter shows has_voted
  - Reset: throws the session away

# Errors

Backend failures never return an error. They set the session banner
(apiclient.Message) and move to the step listed above. Returned errors mean
the request itself was not acceptable: ErrWrongStep, ErrNoStill,
ErrInvalidOTP, ErrOTPTimeUp, ErrAlreadyVoted or validate.FieldErrors.

# Countdown

The OTP countdown is advisory. It starts at 5:00 when the challenge is
issued and only disables submission locally; the backend owns real expiry.
*/
package wizard
