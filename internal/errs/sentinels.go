// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the request carries no usable identity
	// (missing bearer, unknown or deactivated user).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned by login for both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a malformed, forged or expired access token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRefreshRejected indicates a refresh token that is unknown, revoked or expired.
	ErrRefreshRejected = errors.New("invalid or expired refresh token")

	// ErrForbidden indicates an authenticated actor lacks the role for an action
	// or tripped a privilege-escalation guard.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness violation or a redundant state change.
	ErrConflict = errors.New("conflict")

	// ErrNothingToRevoke is returned by logout when the user has no active sessions.
	ErrNothingToRevoke = errors.New("no active sessions")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
