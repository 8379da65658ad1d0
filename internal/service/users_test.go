package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

func TestUsers_ChangeRole_Guards(t *testing.T) {
	t.Parallel()
	e := newAuthEnv(t)
	ctx := context.Background()
	root := e.register(t, "root", model.RoleSuperAdmin)
	root2 := e.register(t, "root2", model.RoleSuperAdmin)
	admin := e.register(t, "admin", model.RoleAdmin)
	reader := e.register(t, "reader", model.RoleReader)
	gone := e.register(t, "gone", model.RoleReader)
	if err := e.users.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	cases := []struct {
		name  string
		actor *model.User
		req   model.RoleChange
		want  error
	}{
		{"unknown role", root, model.RoleChange{UserID: reader.ID, NewRole: model.Role(42)}, errs.ErrValidation},
		{"reader sends unknown role", reader, model.RoleChange{UserID: admin.ID, NewRole: model.Role(42)}, errs.ErrForbidden},
		{"admin sends unknown role", admin, model.RoleChange{UserID: reader.ID, NewRole: model.Role(42)}, errs.ErrForbidden},
		{"root sets own role to unknown", root, model.RoleChange{UserID: root.ID, NewRole: model.Role(42)}, errs.ErrForbidden},
		{"anonymous", nil, model.RoleChange{UserID: reader.ID, NewRole: model.RoleAuthor}, errs.ErrUnauthorized},
		{"admin promotes", admin, model.RoleChange{UserID: reader.ID, NewRole: model.RoleAuthor}, errs.ErrForbidden},
		{"admin self-promotes", admin, model.RoleChange{UserID: admin.ID, NewRole: model.RoleSuperAdmin}, errs.ErrForbidden},
		{"reader self-promotes", reader, model.RoleChange{UserID: reader.ID, NewRole: model.RoleAdmin}, errs.ErrForbidden},
		{"root changes self", root, model.RoleChange{UserID: root.ID, NewRole: model.RoleAdmin}, errs.ErrForbidden},
		{"root demotes root", root, model.RoleChange{UserID: root2.ID, NewRole: model.RoleAdmin}, errs.ErrForbidden},
		{"missing target", root, model.RoleChange{UserID: 9999, NewRole: model.RoleAuthor}, errs.ErrNotFound},
		{"inactive target", root, model.RoleChange{UserID: gone.ID, NewRole: model.RoleAuthor}, errs.ErrNotFound},
		{"same role", root, model.RoleChange{UserID: reader.ID, NewRole: model.RoleReader}, errs.ErrConflict},
	}
	for _, tc := range cases {
		if _, err := e.admin.ChangeRole(ctx, tc.actor, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}

	got, err := e.users.GetByID(ctx, reader.ID)
	if err != nil || got.Role != model.RoleReader {
		t.Fatalf("guarded calls mutated role: %+v %v", got, err)
	}
}

func TestUsers_ChangeRole_Success(t *testing.T) {
	t.Parallel()
	e := newAuthEnv(t)
	ctx := context.Background()
	root := e.register(t, "root", model.RoleSuperAdmin)
	pat := e.register(t, "pat", model.RoleReader)

	u, err := e.admin.ChangeRole(ctx, root, model.RoleChange{UserID: pat.ID, NewRole: model.RoleAdmin})
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Fatalf("role = %v", u.Role)
	}

	// the next login reflects the new role
	tok := e.login(t, "pat")
	id, err := e.codec.Verify(tok.AccessToken)
	if err != nil || id.Role != model.RoleAdmin {
		t.Fatalf("token role = %v err=%v", id.Role, err)
	}
}

func TestUsers_Get(t *testing.T) {
	t.Parallel()
	e := newAuthEnv(t)
	ctx := context.Background()
	u := e.register(t, "quinn", model.RoleReader)

	if got, err := e.admin.Get(ctx, u.ID); err != nil || got.Username != "quinn" {
		t.Fatalf("Get: %+v %v", got, err)
	}
	_ = e.users.Deactivate(ctx, u.ID)
	if _, err := e.admin.Get(ctx, u.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("inactive: %v", err)
	}
}

func TestUsers_Deactivate(t *testing.T) {
	t.Parallel()
	e := newAuthEnv(t)
	ctx := context.Background()
	root := e.register(t, "root", model.RoleSuperAdmin)
	admin := e.register(t, "admin", model.RoleAdmin)
	admin2 := e.register(t, "admin2", model.RoleAdmin)
	author := e.register(t, "rita", model.RoleAuthor)
	reader := e.register(t, "sam", model.RoleReader)
	tok := e.login(t, "rita")

	cases := []struct {
		name  string
		actor *model.User
		id    int64
		want  error
	}{
		{"anonymous", nil, reader.ID, errs.ErrUnauthorized},
		{"reader", reader, author.ID, errs.ErrForbidden},
		{"self", admin, admin.ID, errs.ErrForbidden},
		{"admin on admin", admin, admin2.ID, errs.ErrForbidden},
		{"admin on root", admin, root.ID, errs.ErrForbidden},
		{"missing", admin, 9999, errs.ErrNotFound},
	}
	for _, tc := range cases {
		if err := e.admin.Deactivate(ctx, tc.actor, tc.id); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}

	if err := e.admin.Deactivate(ctx, admin, author.ID); err != nil {
		t.Fatalf("admin deactivates author: %v", err)
	}
	if !e.refresh.get(tok.RefreshToken).Revoked {
		t.Fatalf("sessions of deactivated user left active")
	}
	if err := e.admin.Deactivate(ctx, root, admin2.ID); err != nil {
		t.Fatalf("root deactivates admin: %v", err)
	}
	if err := e.admin.Deactivate(ctx, admin, author.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("twice: %v", err)
	}
}

func TestUsers_RevokeSessions(t *testing.T) {
	t.Parallel()
	e := newAuthEnv(t)
	ctx := context.Background()
	admin := e.register(t, "admin", model.RoleAdmin)
	tess := e.register(t, "tess", model.RoleReader)

	if _, err := e.admin.RevokeSessions(ctx, tess, admin.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("reader: %v", err)
	}
	if _, err := e.admin.RevokeSessions(ctx, admin, tess.ID); !errors.Is(err, errs.ErrNothingToRevoke) {
		t.Fatalf("no sessions: %v", err)
	}
	e.login(t, "tess")
	e.login(t, "tess")
	n, err := e.admin.RevokeSessions(ctx, admin, tess.ID)
	if err != nil || n != 2 {
		t.Fatalf("RevokeSessions: n=%d err=%v", n, err)
	}
	if _, err := e.admin.RevokeSessions(ctx, admin, 9999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}
