// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/voter-desk/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists wizard sessions as JSON with a sliding expiry
type SessionStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSessionStore(db *sql.DB, ttl time.Duration) *SessionStore {
	return &SessionStore{db: db, ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used for expiry
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

// TTL is how long a session lives after its last save
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Save inserts or replaces the session and pushes its expiry out by the TTL
func (s *SessionStore) Save(ctx context.Context, session *models.AuthSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO auth_session (id, step, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			step = excluded.step,
			payload = excluded.payload,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, session.ID, session.Step, string(payload), now.Add(s.ttl).Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load returns the session with the given ID. Expired sessions are reported
// as ErrSessionNotFound even before they are purged.
func (s *SessionStore) Load(ctx context.Context, id string) (*models.AuthSession, error) {
	var payload string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, expires_at FROM auth_session WHERE id = $1
	`, id).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s.now().Unix() >= expiresAt {
		return nil, ErrSessionNotFound
	}

	var session models.AuthSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_session WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns their IDs
func (s *SessionStore) PurgeExpired(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM auth_session WHERE expires_at <= $1 RETURNING id
	`, s.now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to purge sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to purge sessions: %w", err)
	}

	return ids, nil
}
