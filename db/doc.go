// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and persists wizard sessions.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres"
(github.com/lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

CreateSchema is safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - auth_session: one row per wizard session; payload is the JSON encoded
    models.AuthSession, expires_at and updated_at are unix seconds

# Sessions

SessionStore saves with an upsert and slides expires_at forward by the TTL on
every save. Load treats an expired row as missing (ErrSessionNotFound).
PurgeExpired deletes expired rows and returns their IDs so callers can
release per-session resources such as cameras.

Queries use $N placeholders, which both drivers accept. PurgeExpired is a
single DELETE ... RETURNING, so a session saved between finding and
deleting expired rows cannot be lost.
*/
package db
