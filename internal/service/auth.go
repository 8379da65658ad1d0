// Package service contains the application services: authentication, authorization and content.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/limiter"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/and161185/inkwell/internal/token"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AccessIssuer mints access tokens.
type AccessIssuer interface {
	Issue(userID int64, role model.Role) (string, time.Time, error)
}

// RateLimitedError carries the retry-after hint of a blocked login. It matches errs.ErrRateLimited.
type RateLimitedError struct{ RetryAfter time.Duration }

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error { return errs.ErrRateLimited }

// AuthService defines registration and session operations.
type AuthService interface {
	// Register creates a reader account.
	Register(ctx context.Context, in model.Registration) (*model.User, error)
	// Login verifies credentials and opens a new session.
	Login(ctx context.Context, login, password, ip string) (model.Tokens, error)
	// Refresh mints a new access token from a refresh token without rotating it.
	Refresh(ctx context.Context, refreshToken string) (model.Tokens, error)
	// Logout revokes every active session of userID.
	Logout(ctx context.Context, userID int64) (int64, error)
	// RevokeRefreshToken revokes a single refresh token; false means it was already revoked.
	RevokeRefreshToken(ctx context.Context, refreshToken string) (bool, error)
}

// AuthServiceImpl is the Authenticator.
type AuthServiceImpl struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	access  AccessIssuer
	refresh *RefreshTokenStore
	lim     limiter.Limiter
	log     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs the Authenticator. lim may be nil to disable login throttling.
func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	access AccessIssuer,
	refresh *RefreshTokenStore,
	lim limiter.Limiter,
	log *zap.Logger,
) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, hasher: hasher, access: access, refresh: refresh, lim: lim, log: log}
}

var _ AuthService = (*AuthServiceImpl)(nil)

// Register creates an active reader.
func (s *AuthServiceImpl) Register(ctx context.Context, in model.Registration) (*model.User, error) {
	return s.create(ctx, in, model.RoleReader)
}

// CreateSuperAdmin is the bootstrap path; it is not reachable over HTTP.
func (s *AuthServiceImpl) CreateSuperAdmin(ctx context.Context, in model.Registration) (*model.User, error) {
	return s.create(ctx, in, model.RoleSuperAdmin)
}

func (s *AuthServiceImpl) create(ctx context.Context, in model.Registration, role model.Role) (*model.User, error) {
	reg, err := normalizeRegistration(in)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, fmt.Errorf("username or email already registered: %w", errs.ErrConflict)
		}
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", role.String()))
	return u, nil
}

// Login authenticates by username, or by email when login contains '@'.
// Unknown users, inactive users and wrong passwords all yield errs.ErrInvalidCredentials.
func (s *AuthServiceImpl) Login(ctx context.Context, login, password, ip string) (model.Tokens, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	ipHash := limiter.HashIP(ip)

	if s.lim != nil {
		allowed, wait, err := s.lim.Allow(ctx, login, ipHash)
		if err != nil {
			return model.Tokens{}, fmt.Errorf("login limiter: %w", err)
		}
		if !allowed {
			return model.Tokens{}, &RateLimitedError{RetryAfter: wait}
		}
	}

	u, err := s.lookup(ctx, login)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}

	var ok bool
	if u == nil {
		// equalize timing with the found-user path
		s.hasher.Verify(password, s.dummy())
	} else {
		ok = s.hasher.Verify(password, u.PasswordHash) && u.IsActive
	}

	if !ok {
		if s.lim != nil {
			blocked, wait, ferr := s.lim.Failure(ctx, login, ipHash)
			if ferr != nil {
				s.log.Warn("login limiter failure", zap.Error(ferr))
			} else if blocked {
				return model.Tokens{}, &RateLimitedError{RetryAfter: wait}
			}
		}
		return model.Tokens{}, errs.ErrInvalidCredentials
	}

	if s.lim != nil {
		if err := s.lim.Success(ctx, login, ipHash); err != nil {
			s.log.Warn("login limiter reset", zap.Error(err))
		}
	}

	access, exp, err := s.access.Issue(u.ID, u.Role)
	if err != nil {
		return model.Tokens{}, err
	}
	refresh, err := s.refresh.Issue(ctx, u.ID)
	if err != nil {
		return model.Tokens{}, err
	}
	s.log.Info("login", zap.Int64("user_id", u.ID))
	return model.Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *AuthServiceImpl) lookup(ctx context.Context, login string) (*model.User, error) {
	if login == "" {
		return nil, errs.ErrNotFound
	}
	if strings.Contains(login, "@") {
		return s.users.GetByEmail(ctx, login)
	}
	return s.users.GetByUsername(ctx, login)
}

// dummy returns a valid hash that no password in use will match.
func (s *AuthServiceImpl) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("inkwell-login-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Refresh issues a new access token for the owner of an active refresh token.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	userID, err := s.refresh.Verify(ctx, refreshToken)
	if err != nil {
		return model.Tokens{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, errs.ErrNotFound) || (err == nil && !u.IsActive) {
		s.log.Info("refresh token rejected", zap.String("reason", "inactive_user"), zap.Int64("user_id", userID))
		return model.Tokens{}, errs.ErrRefreshRejected
	}
	if err != nil {
		return model.Tokens{}, err
	}
	access, exp, err := s.access.Issue(u.ID, u.Role)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// Logout revokes all active refresh tokens of userID.
func (s *AuthServiceImpl) Logout(ctx context.Context, userID int64) (int64, error) {
	n, err := s.refresh.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.Info("logout", zap.Int64("user_id", userID), zap.Int64("revoked", n))
	return n, nil
}

// RevokeRefreshToken revokes one refresh token.
func (s *AuthServiceImpl) RevokeRefreshToken(ctx context.Context, refreshToken string) (bool, error) {
	return s.refresh.Revoke(ctx, refreshToken)
}

// compile-time check that the codec satisfies AccessIssuer.
var _ AccessIssuer = (*token.Codec)(nil)
