// Package token issues and verifies signed access tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
)

// TypeAccess is the token_type discriminator carried by access tokens.
const TypeAccess = "access"

// Claims is the access-token payload.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Identity is what a verified access token asserts.
type Identity struct {
	UserID    int64
	Role      model.Role
	ExpiresAt time.Time
}

// Codec signs and verifies HS256 access tokens with a single process-wide secret.
type Codec struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now as the source of issue and expiry times.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec constructs a Codec. key must be non-empty.
func NewCodec(key []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(key) == 0 {
		return nil, errors.New("token: empty signing key")
	}
	if ttl <= 0 {
		return nil, errors.New("token: non-positive ttl")
	}
	c := &Codec{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// TTL returns the configured access-token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs an access token for userID carrying role.
func (c *Codec) Issue(userID int64, role model.Role) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	claims := Claims{
		Role:      role.String(),
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, expiry, token type and subject.
// Every failure wraps errs.ErrInvalidToken; the wrapped detail is for logs only.
func (c *Codec) Verify(raw string) (Identity, error) {
	var claims Claims
	parsed, err := c.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	if claims.TokenType != TypeAccess {
		return Identity{}, fmt.Errorf("%w: token_type %q", errs.ErrInvalidToken, claims.TokenType)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", errs.ErrInvalidToken)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad subject", errs.ErrInvalidToken)
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}
	return Identity{UserID: id, Role: role, ExpiresAt: claims.ExpiresAt.Time}, nil
}
