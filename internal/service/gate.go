package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
	"github.com/and161185/inkwell/internal/token"
)

// AccessVerifier decodes access tokens.
type AccessVerifier interface {
	Verify(raw string) (token.Identity, error)
}

// Gate resolves bearer tokens to users and enforces role policy.
type Gate struct {
	access AccessVerifier
	users  repository.UserRepository
	log    *zap.Logger
}

// NewGate constructs the authorization gate.
func NewGate(access AccessVerifier, users repository.UserRepository, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{access: access, users: users, log: log}
}

// Authenticate decodes bearer and loads its user. Expired, malformed and forged tokens,
// unknown users and deactivated users are all reported as errs.ErrUnauthorized.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (*model.User, error) {
	id, err := g.access.Verify(bearer)
	if err != nil {
		g.log.Debug("access token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, errs.ErrInvalidToken)
	}
	u, err := g.users.GetByID(ctx, id.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		g.log.Info("access token for unknown user", zap.Int64("user_id", id.UserID))
		return nil, errs.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		g.log.Info("access token for inactive user", zap.Int64("user_id", u.ID))
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}

// RequireRole fails with errs.ErrForbidden unless actor holds one of allowed.
func (g *Gate) RequireRole(actor *model.User, action string, allowed ...model.Role) error {
	if actor == nil {
		return errs.ErrUnauthorized
	}
	for _, r := range allowed {
		if actor.Role == r {
			return nil
		}
	}
	return deny(g.log, actor, action, "role "+actor.Role.String()+" not permitted")
}

// RequireSuperAdmin fails with errs.ErrForbidden unless actor is a super_admin.
func (g *Gate) RequireSuperAdmin(actor *model.User, action string) error {
	return g.RequireRole(actor, action, model.RoleSuperAdmin)
}

// RequireAtLeast fails with errs.ErrForbidden unless actor's tier is min or higher.
func (g *Gate) RequireAtLeast(actor *model.User, action string, min model.Role) error {
	if actor == nil {
		return errs.ErrUnauthorized
	}
	if actor.Role.AtLeast(min) {
		return nil
	}
	return deny(g.log, actor, action, "requires "+min.String())
}

// deny writes the audit record for a refused action and returns errs.ErrForbidden.
func deny(log *zap.Logger, actor *model.User, action, reason string) error {
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	log.Warn("authorization denied",
		zap.Int64("actor_id", actorID),
		zap.String("action", action),
		zap.String("reason", reason),
	)
	return fmt.Errorf("%s: %w", action, errs.ErrForbidden)
}
