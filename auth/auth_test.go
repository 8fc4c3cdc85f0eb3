// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestNewSessionID(t *testing.T) {
	id1 := NewSessionID()
	id2 := NewSessionID()

	if id1 == id2 {
		t.Error("NewSessionID() produced duplicate IDs (extremely unlikely)")
	}
	if err := ValidateSessionID(id1); err != nil {
		t.Errorf("ValidateSessionID(%q) error = %v", id1, err)
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"uuid", "6f1c2a0e-3b7d-4c1e-9a55-2d9e8f7b6a01", false},
		{"empty", "", true},
		{"short", "abc", true},
		{"sql", "' OR 1=1 --", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestConfirmToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		salt   string
	}{
		{"voter", "voter:v1", "secret-salt"},
		{"mapping", "mapping:B1", "secret-salt"},
		{"empty salt", "voter:v2", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ConfirmToken(tt.target, tt.salt)

			if token == "" {
				t.Error("ConfirmToken() returned empty string")
			}

			// Should be deterministic
			if token != ConfirmToken(tt.target, tt.salt) {
				t.Error("ConfirmToken() is not deterministic")
			}

			// Should be header-safe
			if strings.ContainsAny(token, "+/=") {
				t.Errorf("ConfirmToken() contains non-URL-safe chars: %s", token)
			}

			if token == ConfirmToken(tt.target+"x", tt.salt) {
				t.Error("ConfirmToken() produced same token for different targets")
			}
		})
	}
}

func TestValidateConfirmToken(t *testing.T) {
	salt := "test-salt"
	token := ConfirmToken("voter:v1", salt)

	tests := []struct {
		name    string
		target  string
		token   string
		salt    string
		wantErr bool
	}{
		{"valid", "voter:v1", token, salt, false},
		{"wrong target", "voter:v2", token, salt, true},
		{"wrong salt", "voter:v1", token, "other", true},
		{"empty token", "voter:v1", "", salt, true},
		{"tampered", "voter:v1", token + "x", salt, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfirmToken(tt.target, tt.token, tt.salt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfirmToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != ErrInvalidConfirmToken {
				t.Errorf("ValidateConfirmToken() error = %v, want ErrInvalidConfirmToken", err)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt")
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
	if h1 != HashIP("192.168.1.1", "salt") {
		t.Error("HashIP() is not deterministic")
	}
	if h1 == HashIP("192.168.1.2", "salt") {
		t.Error("HashIP() collided for different IPs")
	}
	if h1 == HashIP("192.168.1.1", "pepper") {
		t.Error("HashIP() ignored the salt")
	}
}
