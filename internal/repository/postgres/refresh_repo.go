package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

// RefreshTokenRepo implements RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepo struct{ db *DB }

// NewRefreshTokenRepo constructs a refresh-token repository.
func NewRefreshTokenRepo(db *DB) *RefreshTokenRepo { return &RefreshTokenRepo{db: db} }

// Create inserts a new session row.
func (r *RefreshTokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	const q = `
INSERT INTO refresh_tokens (user_id, token, expires_at, revoked)
VALUES ($1, $2, $3, false)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, t.UserID, t.Token, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("refresh token: %w", errs.ErrConflict)
	}
	return err
}

// GetByToken selects a session row by exact token match.
func (r *RefreshTokenRepo) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	const q = `
SELECT id, user_id, token, expires_at, revoked, created_at
FROM refresh_tokens WHERE token=$1`
	var t model.RefreshToken
	err := r.db.Pool.QueryRow(ctx, q, token).
		Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// Revoke flips revoked to true. The CTE reads the prior flag under a row lock so
// a second revoke is reported as unchanged and a missing token as not found.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, token string) (bool, error) {
	const q = `
WITH prev AS (
    SELECT id, revoked FROM refresh_tokens WHERE token=$1 FOR UPDATE
), upd AS (
    UPDATE refresh_tokens t SET revoked=true
    FROM prev WHERE t.id = prev.id AND NOT prev.revoked
    RETURNING t.id
)
SELECT prev.revoked FROM prev`
	var wasRevoked bool
	if err := r.db.Pool.QueryRow(ctx, q, token).Scan(&wasRevoked); err != nil {
		return false, notFound(err)
	}
	return !wasRevoked, nil
}

// RevokeAllForUser revokes all active sessions of a user in a single UPDATE.
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	const q = `
UPDATE refresh_tokens SET revoked=true
WHERE user_id=$1 AND NOT revoked AND expires_at > $2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes rows whose expiry has passed.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM refresh_tokens WHERE expires_at <= $1`
	tag, err := r.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
