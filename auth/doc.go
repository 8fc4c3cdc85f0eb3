// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session IDs, confirmation tokens and IP hashing.

# Session IDs

Wizard sessions are identified by random UUIDs:

	id := auth.NewSessionID()
	err := auth.ValidateSessionID(id)

# Confirmation Tokens

Destructive console actions are approved with an HMAC-SHA256 token over the
action's target:

	token := auth.ConfirmToken("voter:"+id, salt)
	err := auth.ValidateConfirmToken("voter:"+id, token, salt)

The token is URL-safe base64 encoded without padding. Since it's
deterministic, the same target and salt always produce the same token, so
nothing is stored between the 428 reply and the confirmed retry.

# IP Hashing

For request logs that must not carry raw addresses:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
