// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voter-desk API.

# Handler Types

Each handler is a struct wrapping one console and the config:

  - WizardHandler: voter authentication wizard sessions
  - CameraHandler: face capture for the wizard's face step
  - AdminHandler: voter and booth registration, photo checks
  - AllocationHandler: locality mappings and address matching
  - DashboardHandler: turnout statistics and anomaly detection

Handlers are created via constructor functions:

	wizardHandler := handlers.NewWizardHandler(sessions, flow, cameras, cfg)

# Wizard Sessions

Every wizard transition loads the session from the store, applies one
wizard.Flow operation and saves it back. The response is always the
rendered wizard.View. Backend failures become a banner on the view with
status 200; actions the flow refuses outright map to status codes:

	validate.FieldErrors      → 400 with fields
	wizard.ErrWrongStep       → 409
	wizard.ErrAlreadyVoted    → 409
	wizard.ErrNoStill         → 400
	wizard.ErrInvalidOTP      → 400
	wizard.ErrOTPTimeUp       → 400

A session runs one transition at a time; a second submission or a reset
while the first is still waiting on the backend gets 409. Unknown and expired
sessions get 404.

# Confirmation

Destructive console actions (deleting a voter or a mapping) reply 428 with
the question and a confirm token. Repeating the request with the token in
X-Confirm-Token performs the action. Tokens are bound to the target, so a
token for one voter does not delete another.

# Backend Errors

Client errors raised by the backend (duplicate voter, validation details)
are passed through with their status and message. Anything else, including
an unreachable backend, becomes 502.
*/
package handlers
