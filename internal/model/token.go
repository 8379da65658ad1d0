package model

import "time"

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// Tokens collects issued access/refresh tokens. RefreshToken is empty on refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
}

// RefreshToken is a persisted session row.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// ActiveAt reports whether the token is usable at now.
// A token expiring exactly at now is already expired.
func (t RefreshToken) ActiveAt(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
