// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient calls the external voter backend over its JSON REST API.

# Usage

	api := apiclient.New(cfg.APIBaseURL)
	report, err := api.VerifyGovernmentIDs(ctx, details)

Every method takes the caller's context. The client sets no timeout of its
own, so a call runs until the backend answers, the transport gives up, or the
incoming request that triggered it goes away.

# Errors

A non-2xx response becomes *APIError carrying the status, the backend's
"error" (or "message") text and any "details" list. Use Message to get the
text for a banner:

	if err != nil {
		banner := apiclient.Message(err) // server text or GenericMessage
	}

Transport failures and undecodable bodies are plain wrapped errors, so
Message falls back to GenericMessage for them.

# Endpoints

	POST   /api/auth/authenticate
	POST   /api/auth/verify-government-ids
	POST   /api/auth/verify-otp
	POST   /api/auth/vote
	GET    /api/admin/voters
	POST   /api/admin/voters
	POST   /api/admin/add-voter            (multipart, with photo)
	DELETE /api/admin/voters/{id}
	GET    /api/admin/booths
	POST   /api/admin/booths
	GET    /api/dashboard/stats
	GET    /api/ai/anomalies
	POST   /api/ai/detect-anomalies
	GET    /api/booth-allocation/mappings
	POST   /api/booth-allocation/create-mapping
	DELETE /api/booth-allocation/delete-mapping/{boothId}
	POST   /api/booth-allocation/auto-allocate
	POST   /api/booth-allocation/auto-generate
	POST   /api/booth-allocation/bulk-analyze
*/
package apiclient
