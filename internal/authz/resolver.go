package authz

// Actor is the authenticated principal a decision is made for. Grants is
// the set of permission names explicitly granted beyond the role's
// defaults, keyed by name.
type Actor struct {
	ID     int64
	Role   Role
	Grants map[string]struct{}
}

// NewActor builds an Actor from a grant name list.
func NewActor(id int64, role Role, grants []string) Actor {
	return Actor{ID: id, Role: role, Grants: toSet(grants...)}
}

// HasCapability reports whether the actor holds the named capability.
// Resolution order: super_admin wildcard, explicit grants, role defaults.
// Explicit grants only ever add capability; there is no deny kind.
func (a Actor) HasCapability(action string) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	if _, ok := a.Grants[action]; ok {
		return true
	}
	_, ok := roleDefaults[a.Role][action]
	return ok
}
