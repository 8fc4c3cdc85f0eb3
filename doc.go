// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the voter-desk server.

voter-desk is the front desk of a polling station: it walks a voter through
identity checks (details, government ID, face, OTP) before the vote, and
serves the admin, booth allocation and dashboard consoles. Voter records
live in a separate backend reached over REST; voter-desk keeps only wizard
sessions in its own database.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	API_BASE_URL=http://localhost:5000 CONFIRM_SALT=... go run .

Or with flags:

	go run . -p 3318 -api http://localhost:5000 -d file:voter-desk.db

# Configuration

Required settings:

  - API_BASE_URL (-api): Voter backend base URL
  - CONFIRM_SALT (--confirm-salt): Secret for confirmation tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): Session database (default: file:voter-desk.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_TTL (--session-ttl): Wizard session lifetime (default: 30m)
  - CAMERA_DIR (--camera-dir): Read frames from a directory
  - PRODUCTION (--prod): Hide test OTPs

A .env file in the working directory, or the one named by --env, is loaded
without overriding variables already set.

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - wizard: Authentication step machine
  - capture: Camera sessions and stills
  - imagecheck: ID photo validation
  - admin, allocation, dashboard: Console logic
  - apiclient: Voter backend client
  - validate: Form validation
  - notify: Confirmation and notices
  - db: Session storage
  - auth: Session IDs and confirm tokens
  - models: Shared types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
