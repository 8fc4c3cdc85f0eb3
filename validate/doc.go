// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validate checks voter, booth and OTP input before anything is sent
to the backend.

Rules are go-playground/validator struct tags plus five custom tags:

	voterid    ^[A-Z]{3}[0-9]{7}$
	aadhaar    12 digits
	phone      10 digits starting with 6-9
	birthdate  YYYY-MM-DD, not in the future
	adult      at least MinVoterAge years old (admin registrations only)

Failures come back as FieldErrors keyed by JSON field name, one message per
field. A nil result means the input is valid.
*/
package validate
