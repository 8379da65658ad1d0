package model

import "fmt"

// Role is a privilege tier. Tiers are ordered: reader < author < admin < super_admin.
type Role uint8

const (
	RoleReader Role = iota + 1
	RoleAuthor
	RoleAdmin
	RoleSuperAdmin
)

// ParseRole maps the persisted/wire form of a role onto Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "reader":
		return RoleReader, nil
	case "author":
		return RoleAuthor, nil
	case "admin":
		return RoleAdmin, nil
	case "super_admin":
		return RoleSuperAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleReader:
		return "reader"
	case RoleAuthor:
		return "author"
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "super_admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Valid reports whether r is one of the declared tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// AtLeast reports whether r is the same tier as min or above it.
func (r Role) AtLeast(min Role) bool { return r.Valid() && r >= min }

// MarshalText encodes the role as its wire name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a wire name; unknown names are rejected.
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
