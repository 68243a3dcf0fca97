package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/s3gate/internal/model"
	"github.com/edvin/s3gate/internal/platform"
)

// SessionService issues and validates opaque bearer tokens. Only the sha256
// hash of a token is stored.
type SessionService struct {
	db  DB
	ttl time.Duration
}

func NewSessionService(db DB, ttl time.Duration) *SessionService {
	return &SessionService{db: db, ttl: ttl}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create issues a new session for the user and returns the session along
// with the raw token. The raw token is shown to the client exactly once.
func (s *SessionService) Create(ctx context.Context, userID string) (*model.Session, string, error) {
	token := platform.NewToken("sg_")
	now := time.Now().UTC()

	sess := &model.Session{
		ID:        platform.NewID(),
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.UserID, sess.TokenHash, sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert session: %w", err)
	}
	return sess, token, nil
}

// Authenticate resolves a raw token to the owning user ID. Expired or
// unknown tokens return ErrNotFound.
func (s *SessionService) Authenticate(ctx context.Context, token string) (string, error) {
	var userID string
	var expiresAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token_hash = $1`, hashToken(token),
	).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	if time.Now().After(expiresAt) {
		return "", ErrNotFound
	}
	return userID, nil
}

// Revoke deletes the session for a raw token. Revoking an unknown token is
// not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`, hashToken(token))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
