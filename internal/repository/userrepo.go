// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/inkwell/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// Create inserts u and fills its ID and CreatedAt. Duplicate username/email yields errs.ErrConflict.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user regardless of IsActive.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByUsername loads a user by lowercase username regardless of IsActive.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByEmail loads a user by lowercase email regardless of IsActive.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateRole sets the role of an active, non-super_admin user and returns the updated row.
	// errs.ErrNotFound if no such row matched.
	UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error)
	// Deactivate flips is_active to false. errs.ErrNotFound if the user is missing or already inactive.
	Deactivate(ctx context.Context, id int64) error
}

// RefreshTokenRepository persists refresh-token rows.
type RefreshTokenRepository interface {
	// Create inserts t and fills its ID and CreatedAt.
	Create(ctx context.Context, t *model.RefreshToken) error
	// GetByToken looks up by exact token value.
	GetByToken(ctx context.Context, token string) (*model.RefreshToken, error)
	// Revoke marks the token revoked and reports whether this call flipped the flag.
	// errs.ErrNotFound if no such token exists.
	Revoke(ctx context.Context, token string) (changed bool, err error)
	// RevokeAllForUser revokes every unrevoked, unexpired token of userID in one statement.
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error)
	// DeleteExpired removes rows with expires_at <= now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
