// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfirmToken = errors.New("invalid confirmation token")
	ErrInvalidSessionID    = errors.New("invalid session id")
)

// NewSessionID returns a random wizard session ID
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID rejects anything that is not a UUID before it reaches
// the store
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidSessionID
	}
	return nil
}

// ConfirmToken creates the HMAC-based token that approves a destructive
// action on target (e.g. "voter:<id>"). Deterministic and verifiable.
func ConfirmToken(target, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(target))
	sum := h.Sum(nil)
	// URL-safe base64 without padding so it travels cleanly in a header
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateConfirmToken checks token against target
func ValidateConfirmToken(target, token, salt string) error {
	expected := ConfirmToken(target, salt)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidConfirmToken
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for logging
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are enough to correlate requests
	return hex.EncodeToString(sum[:8])
}
