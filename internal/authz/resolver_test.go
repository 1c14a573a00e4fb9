package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCapabilityWildcard(t *testing.T) {
	actor := NewActor(1, RoleSuperAdmin, nil)
	// The wildcard covers even names the catalog has never heard of.
	assert.True(t, actor.HasCapability("launch_missiles"))
	assert.True(t, actor.HasCapability(PermSystemSettings))
}

func TestHasCapabilityRoleDefaults(t *testing.T) {
	actor := NewActor(1, RoleUser, nil)
	assert.True(t, actor.HasCapability(PermViewUsers))
	assert.True(t, actor.HasCapability(PermViewRoles))
	assert.False(t, actor.HasCapability(PermDeleteUsers))
	assert.False(t, actor.HasCapability(PermAccessAdminPanel))
}

func TestHasCapabilityExplicitGrantAdds(t *testing.T) {
	actor := NewActor(1, RoleUser, []string{PermDeleteUsers})
	assert.True(t, actor.HasCapability(PermDeleteUsers))
	// A grant adds exactly one capability; neighbours are untouched.
	assert.False(t, actor.HasCapability(PermCreateUsers))
}

func TestHasCapabilityUnknownRole(t *testing.T) {
	actor := NewActor(1, Role("intruder"), nil)
	assert.False(t, actor.HasCapability(PermViewUsers))
}

func TestDefaultPermissions(t *testing.T) {
	assert.Len(t, DefaultPermissions(RoleSuperAdmin), len(Catalog()))
	assert.ElementsMatch(t, []string{PermViewUsers, PermViewRoles}, DefaultPermissions(RoleUser))
	assert.Contains(t, DefaultPermissions(RoleModerator), PermAccessModeratorPanel)
	assert.NotContains(t, DefaultPermissions(RoleModerator), PermGrantPermissions)
	assert.Contains(t, DefaultPermissions(RoleAdmin), PermManageModeratorPermissions)
	assert.NotContains(t, DefaultPermissions(RoleAdmin), PermManageAdminPermissions)
	assert.NotContains(t, DefaultPermissions(RoleAdmin), PermAssignAdminRole)
}

func TestCatalogIntegrity(t *testing.T) {
	catalog := Catalog()
	assert.Len(t, catalog, 17)
	seen := map[string]struct{}{}
	for _, p := range catalog {
		_, dup := seen[p.Name]
		assert.False(t, dup, "duplicate permission %s", p.Name)
		seen[p.Name] = struct{}{}
	}
	// Every defaulted permission must exist in the catalog.
	for _, role := range Roles() {
		for _, name := range DefaultPermissions(role) {
			_, ok := seen[name]
			assert.True(t, ok, "role %s defaults unknown permission %s", role, name)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles() {
		parsed, err := ParseRole(string(role))
		assert.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
	_, err := ParseRole("root")
	assert.Error(t, err)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleModerator.AtLeast(RoleAdmin))
	assert.False(t, Role("ghost").AtLeast(RoleUser))
}
