// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account. The password hash never leaves the service layer.
type User struct {
	ID           int64
	Username     string // lowercase, unique
	Email        string // lowercase, unique
	PasswordHash string // bcrypt, salt embedded
	Role         Role
	IsActive     bool // false means soft-deleted
	CreatedAt    time.Time
}

// Registration is the input for creating an account.
type Registration struct {
	Username string
	Email    string
	Password string
}

// RoleChange is the only accepted shape for a role mutation.
type RoleChange struct {
	UserID  int64
	NewRole Role
}
