package authz

import "fmt"

// Role is the coarse privilege tier assigned to a principal. Every
// principal holds exactly one role at any time.
type Role string

// Roles in ascending privilege order.
const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles returns all roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin}
}

// ParseRole validates a raw role value.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("authz: unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the four known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Level maps a role to its numeric rank. Higher outranks lower; unknown
// roles rank below everything.
func (r Role) Level() int {
	switch r {
	case RoleSuperAdmin:
		return 4
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role meets or exceeds the target tier.
func (r Role) AtLeast(target Role) bool {
	return r.Level() >= target.Level()
}

func (r Role) String() string {
	return string(r)
}
