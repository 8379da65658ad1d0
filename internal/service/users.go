package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

// UserService covers account administration.
type UserService interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	// ChangeRole applies a role change under the escalation guards.
	ChangeRole(ctx context.Context, actor *model.User, req model.RoleChange) (*model.User, error)
	// Deactivate soft-deletes a user and revokes their sessions.
	Deactivate(ctx context.Context, actor *model.User, id int64) error
	// RevokeSessions revokes every active refresh token of a user.
	RevokeSessions(ctx context.Context, actor *model.User, id int64) (int64, error)
}

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	users   repository.UserRepository
	refresh *RefreshTokenStore
	log     *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, refresh *RefreshTokenStore, log *zap.Logger) *UserServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserServiceImpl{users: users, refresh: refresh, log: log}
}

var _ UserService = (*UserServiceImpl)(nil)

// Get returns an active user.
func (s *UserServiceImpl) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

// ChangeRole enforces, in order: only a super_admin changes roles; nobody changes
// their own role; the new role must be known; the target must exist; a super_admin
// is never demoted; the new role must differ.
func (s *UserServiceImpl) ChangeRole(ctx context.Context, actor *model.User, req model.RoleChange) (*model.User, error) {
	const action = "change_role"
	if actor == nil {
		return nil, errs.ErrUnauthorized
	}
	switch actor.Role {
	case model.RoleSuperAdmin:
	case model.RoleReader, model.RoleAuthor, model.RoleAdmin:
		return nil, deny(s.log, actor, action, "only super_admin may change roles")
	default:
		return nil, deny(s.log, actor, action, "unknown actor role")
	}
	if req.UserID == actor.ID {
		return nil, deny(s.log, actor, action, "self role change")
	}
	if !req.NewRole.Valid() {
		return nil, validationf("unknown role")
	}

	target, err := s.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if target.Role == model.RoleSuperAdmin && req.NewRole != model.RoleSuperAdmin {
		return nil, deny(s.log, actor, action, "cannot demote super_admin")
	}
	if target.Role == req.NewRole {
		return nil, fmt.Errorf("user already has role %s: %w", req.NewRole, errs.ErrConflict)
	}

	updated, err := s.users.UpdateRole(ctx, target.ID, req.NewRole)
	if errors.Is(err, errs.ErrNotFound) {
		// lost a race with deactivation or promotion to super_admin
		return nil, deny(s.log, actor, action, "target changed concurrently")
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("role changed",
		zap.Int64("actor_id", actor.ID),
		zap.Int64("user_id", updated.ID),
		zap.String("from", target.Role.String()),
		zap.String("to", updated.Role.String()),
	)
	return updated, nil
}

// Deactivate soft-deletes id. Admins may deactivate readers and authors; a super_admin
// may also deactivate admins. Nobody deactivates a super_admin or themselves.
func (s *UserServiceImpl) Deactivate(ctx context.Context, actor *model.User, id int64) error {
	const action = "deactivate_user"
	if actor == nil {
		return errs.ErrUnauthorized
	}
	if !actor.Role.AtLeast(model.RoleAdmin) {
		return deny(s.log, actor, action, "requires admin")
	}
	if actor.ID == id {
		return deny(s.log, actor, action, "self deactivation")
	}
	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	switch target.Role {
	case model.RoleSuperAdmin:
		return deny(s.log, actor, action, "target is super_admin")
	case model.RoleAdmin:
		if actor.Role != model.RoleSuperAdmin {
			return deny(s.log, actor, action, "only super_admin may deactivate admins")
		}
	case model.RoleReader, model.RoleAuthor:
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return err
	}
	if _, err := s.refresh.RevokeAllForUser(ctx, id); err != nil && !errors.Is(err, errs.ErrNothingToRevoke) {
		return err
	}
	s.log.Info("user deactivated", zap.Int64("actor_id", actor.ID), zap.Int64("user_id", id))
	return nil
}

// RevokeSessions is the administrative form of logout.
func (s *UserServiceImpl) RevokeSessions(ctx context.Context, actor *model.User, id int64) (int64, error) {
	const action = "revoke_sessions"
	if actor == nil {
		return 0, errs.ErrUnauthorized
	}
	if !actor.Role.AtLeast(model.RoleAdmin) {
		return 0, deny(s.log, actor, action, "requires admin")
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.refresh.RevokeAllForUser(ctx, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("sessions revoked", zap.Int64("actor_id", actor.ID), zap.Int64("user_id", id), zap.Int64("count", n))
	return n, nil
}
