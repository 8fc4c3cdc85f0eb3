// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package allocation is the booth-allocation console. Locality matching
// happens on the backend; this package prepares the mappings, confirms
// deletions and forwards single and bulk address lookups.
package allocation
