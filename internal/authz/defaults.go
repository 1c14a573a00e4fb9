package authz

// roleDefaults maps each role to the permissions it carries without any
// explicit grant. super_admin is absent on purpose: its wildcard is a
// short-circuit in the resolver, never a stored permission list.
var roleDefaults = map[Role]map[string]struct{}{
	RoleAdmin: toSet(
		PermViewUsers,
		PermCreateUsers,
		PermEditUsers,
		PermDeleteUsers,
		PermViewRoles,
		PermAssignUserRole,
		PermAssignModeratorRole,
		PermViewPermissions,
		PermGrantPermissions,
		PermRevokePermissions,
		PermManageModeratorPermissions,
		PermAccessAdminPanel,
	),
	RoleModerator: toSet(
		PermViewUsers,
		PermEditUsers,
		PermViewRoles,
		PermAssignUserRole,
		PermViewPermissions,
		PermAccessModeratorPanel,
	),
	RoleUser: toSet(
		PermViewUsers,
		PermViewRoles,
	),
}

// DefaultPermissions returns the default permission names for a role in
// catalog order. super_admin reports the full catalog.
func DefaultPermissions(r Role) []string {
	if r == RoleSuperAdmin {
		names := make([]string, 0, len(Catalog()))
		for _, p := range Catalog() {
			names = append(names, p.Name)
		}
		return names
	}
	defaults := roleDefaults[r]
	names := make([]string, 0, len(defaults))
	for _, p := range Catalog() {
		if _, ok := defaults[p.Name]; ok {
			names = append(names, p.Name)
		}
	}
	return names
}

func toSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
