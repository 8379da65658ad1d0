package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/and161185/inkwell/internal/crypto"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/token"
)

type authEnv struct {
	users   *fakeUsers
	refresh *fakeRefresh
	store   *RefreshTokenStore
	codec   *token.Codec
	lim     *fakeLimiter
	hasher  *crypto.Hasher
	auth    *AuthServiceImpl
	gate    *Gate
	admin   *UserServiceImpl

	// skew shifts the codec clock; tests move it forward to age access tokens.
	skew time.Duration
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	e := &authEnv{
		users:   newFakeUsers(),
		refresh: newFakeRefresh(),
		lim:     &fakeLimiter{allowOK: true},
		hasher:  crypto.NewHasher(bcrypt.MinCost),
	}
	codec, err := token.NewCodec([]byte("test-secret"), 30*time.Minute,
		token.WithClock(func() time.Time { return time.Now().Add(e.skew) }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	e.codec = codec
	e.store = NewRefreshTokenStore(e.refresh, 7*24*time.Hour, log)
	e.auth = NewAuthService(e.users, e.hasher, codec, e.store, e.lim, log)
	e.gate = NewGate(codec, e.users, log)
	e.admin = NewUserService(e.users, e.store, log)
	return e
}

// register creates a user through the public path and optionally raises its role.
func (e *authEnv) register(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), model.Registration{
		Username: name,
		Email:    name + "@example.com",
		Password: name + "-password",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	if role != model.RoleReader {
		e.users.mu.Lock()
		e.users.byID[u.ID].Role = role
		e.users.mu.Unlock()
		u.Role = role
	}
	return u
}

func (e *authEnv) login(t *testing.T, name string) model.Tokens {
	t.Helper()
	tok, err := e.auth.Login(context.Background(), name, name+"-password", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login(%s): %v", name, err)
	}
	return tok
}
