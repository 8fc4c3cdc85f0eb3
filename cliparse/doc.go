// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - APIBaseURL: Voter backend base URL (required)
  - DatabaseURL: Session store connection string (default: file:voter-desk.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - ConfirmSalt: Secret for destructive-action confirmation tokens (required)
  - SessionTTL: Wizard session lifetime (default: 30m)
  - CameraDir: Directory of frames for kiosk cameras (default: browser feed)
  - Production: Hide otp_for_testing from wizard responses

# CLI Flags

	-p             Server port
	-api           Voter backend base URL
	-d             Database URL
	-t             Database type
	-session-ttl   Wizard session lifetime
	-camera-dir    Kiosk camera frame directory
	-prod          Production mode
	-confirm-salt  Confirmation token salt
	-env           Env file to load before reading the environment

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	API_BASE_URL  → -api
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	SESSION_TTL   → -session-ttl
	CAMERA_DIR    → -camera-dir
	PRODUCTION    → -prod
	CONFIRM_SALT  → -confirm-salt

CLI flags take precedence over environment variables. A .env file in the
working directory (or the file named by -env) is loaded with godotenv first;
variables already set in the environment are not overwritten.

# Validation

ParseFlags returns an error if required values are missing:

  - API_BASE_URL must be provided
  - CONFIRM_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	api := apiclient.New(cfg.APIBaseURL)
	mux := router.NewRouter(router.Deps{DB: conn, API: api}, cfg)
*/
package cliparse
