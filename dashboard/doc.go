// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package dashboard shows turnout statistics and detected anomalies. Vote
// and detection times are rendered relative to now with go-humanize.
package dashboard
