// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package admin implements the voter and booth registry console: listing
// and searching voters, registering voters (optionally with a photo),
// deleting voters after confirmation, registering booths and suggesting a
// polling station from an address.
package admin
