// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package imagecheck pre-checks a voter photo before it is attached to a new
registration.

# Rules

  - Format: JPEG or PNG, sniffed from the bytes with mimetype
  - Size: 50KB to 100KB, where KB is bytes/1024
  - Dimensions: 530x413 pixels (4.5cm x 3.5cm) within 10%

All rules run and every failure is reported, so the admin sees the complete
list at once. A passing photo comes back as a data URL ready to send to the
backend.

# Slots

Checker tracks one in-flight check per slot. A slot is a single photo field
on a single form; a second upload into the same field while the first is
still being checked gets ErrInProgress instead of racing it.

	res, err := checker.Check(ctx, formID, data)
	if errors.Is(err, imagecheck.ErrInProgress) {
		// tell the client to wait
	}
*/
package imagecheck
