package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// SessionTTL is how long a session stays valid without activity.
const SessionTTL = 7 * 24 * time.Hour

// Session is an authenticated browser session.
type Session struct {
	Token          string
	UserID         int64
	ExpiresAt      time.Time
	LastAccessedAt time.Time
	CreatedAt      time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionRepo manages login sessions.
type SessionRepo interface {
	// Create mints a new session token for the user.
	Create(ctx context.Context, userID int64) (*Session, error)

	// Validate looks up a token and returns the session if it exists
	// and has not expired. Expired sessions are deleted on sight.
	Validate(ctx context.Context, token string) (*Session, error)

	// Delete removes a session (logout).
	Delete(ctx context.Context, token string) error

	// PurgeExpired removes all expired sessions.
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Create(ctx context.Context, userID int64) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s := &Session{
		Token:          token,
		UserID:         userID,
		ExpiresAt:      now.Add(SessionTTL),
		LastAccessedAt: now,
		CreatedAt:      now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, last_accessed_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt, s.LastAccessedAt, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) Validate(ctx context.Context, token string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, last_accessed_at, created_at
		 FROM sessions WHERE token = ?`, token)

	var s Session
	err := row.Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.LastAccessedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if s.IsExpired() {
		_ = r.Delete(ctx, token)
		return nil, ErrNotFound
	}

	s.LastAccessedAt = time.Now().UTC()
	_, _ = r.db.ExecContext(ctx,
		`UPDATE sessions SET last_accessed_at = ? WHERE token = ?`, s.LastAccessedAt, token)
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (r *sessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// newSessionToken returns 32 bytes of randomness, base64url-encoded.
func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
