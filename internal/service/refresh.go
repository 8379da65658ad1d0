package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/crypto"
	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

// refreshTokenBytes is the entropy of an opaque refresh token.
const refreshTokenBytes = 32

// RefreshTokenStore manages the lifecycle of persisted refresh tokens.
// Tokens are stored verbatim; validity is decided on every call from the stored row.
type RefreshTokenStore struct {
	repo repository.RefreshTokenRepository
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time
}

// NewRefreshTokenStore constructs a store issuing tokens that live for ttl.
func NewRefreshTokenStore(repo repository.RefreshTokenRepository, ttl time.Duration, log *zap.Logger) *RefreshTokenStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RefreshTokenStore{repo: repo, ttl: ttl, log: log, now: time.Now}
}

// Issue creates a new session row for userID and returns the raw token.
func (s *RefreshTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	for attempt := 0; ; attempt++ {
		raw, err := crypto.OpaqueToken(refreshTokenBytes)
		if err != nil {
			return "", fmt.Errorf("generate refresh token: %w", err)
		}
		rt := &model.RefreshToken{UserID: userID, Token: raw, ExpiresAt: s.now().Add(s.ttl)}
		err = s.repo.Create(ctx, rt)
		if errors.Is(err, errs.ErrConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("store refresh token: %w", err)
		}
		return raw, nil
	}
}

// Verify returns the owning user of an active token. It never mutates state.
func (s *RefreshTokenStore) Verify(ctx context.Context, raw string) (int64, error) {
	if raw == "" {
		return 0, errs.ErrRefreshRejected
	}
	rt, err := s.repo.GetByToken(ctx, raw)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		s.log.Info("refresh token rejected", zap.String("reason", "not_found"))
		return 0, errs.ErrRefreshRejected
	case err != nil:
		return 0, fmt.Errorf("load refresh token: %w", err)
	case rt.Revoked:
		s.log.Info("refresh token rejected", zap.String("reason", "revoked"), zap.Int64("user_id", rt.UserID))
		return 0, errs.ErrRefreshRejected
	case !rt.ActiveAt(s.now()):
		s.log.Info("refresh token rejected", zap.String("reason", "expired"), zap.Int64("user_id", rt.UserID))
		return 0, errs.ErrRefreshRejected
	}
	return rt.UserID, nil
}

// Revoke revokes one token. It reports false when the token was already revoked
// and errs.ErrNotFound when it never existed.
func (s *RefreshTokenStore) Revoke(ctx context.Context, raw string) (bool, error) {
	if raw == "" {
		return false, errs.ErrNotFound
	}
	changed, err := s.repo.Revoke(ctx, raw)
	if err != nil {
		return false, err
	}
	return changed, nil
}

// RevokeAllForUser revokes every active token of userID atomically.
// errs.ErrNothingToRevoke when the user had none.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	if n == 0 {
		return 0, errs.ErrNothingToRevoke
	}
	return n, nil
}

// PurgeExpired deletes rows past their expiry.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
