package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManageRoleTable(t *testing.T) {
	cases := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleSuperAdmin, RoleUser, true},
		{RoleSuperAdmin, RoleModerator, true},
		{RoleSuperAdmin, RoleAdmin, true},
		{RoleSuperAdmin, RoleSuperAdmin, true},

		{RoleAdmin, RoleUser, true},
		{RoleAdmin, RoleModerator, true},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleSuperAdmin, false},

		{RoleModerator, RoleUser, true},
		{RoleModerator, RoleModerator, false},
		{RoleModerator, RoleAdmin, false},
		{RoleModerator, RoleSuperAdmin, false},

		{RoleUser, RoleUser, false},
		{RoleUser, RoleModerator, false},
		{RoleUser, RoleAdmin, false},
		{RoleUser, RoleSuperAdmin, false},
	}
	for _, tc := range cases {
		got := CanManageRole(tc.actor, tc.target)
		assert.Equal(t, tc.want, got, "CanManageRole(%s, %s)", tc.actor, tc.target)
	}
}

func TestCanAssignRoleHierarchy(t *testing.T) {
	t.Run("moderator cannot promote to admin regardless of grants", func(t *testing.T) {
		actor := NewActor(1, RoleModerator, []string{PermAssignAdminRole})
		err := CanAssignRole(actor, 2, RoleUser, RoleAdmin)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin with grant promotes user to moderator", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, []string{PermAssignModeratorRole})
		require.NoError(t, CanAssignRole(actor, 2, RoleUser, RoleModerator))
	})

	t.Run("admin without capability is rejected", func(t *testing.T) {
		// assign_moderator_role is an admin default; strip nothing, test
		// a role admins never hold the capability for.
		actor := NewActor(1, RoleAdmin, nil)
		assert.ErrorIs(t, CanAssignRole(actor, 2, RoleUser, RoleAdmin), ErrForbidden)
	})

	t.Run("admin cannot demote a super_admin to user", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, []string{PermAssignUserRole})
		assert.ErrorIs(t, CanAssignRole(actor, 2, RoleSuperAdmin, RoleUser), ErrForbidden)
	})

	t.Run("super_admin may assign any role", func(t *testing.T) {
		actor := NewActor(1, RoleSuperAdmin, nil)
		for _, target := range Roles() {
			for _, newRole := range Roles() {
				assert.NoError(t, CanAssignRole(actor, 2, target, newRole),
					"super_admin %s -> %s", target, newRole)
			}
		}
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		actor := NewActor(1, RoleSuperAdmin, nil)
		assert.ErrorIs(t, CanAssignRole(actor, 2, RoleUser, Role("owner")), ErrForbidden)
	})
}

func TestCanAssignRoleSelfGuard(t *testing.T) {
	t.Run("admin self-demotion blocked", func(t *testing.T) {
		actor := NewActor(7, RoleAdmin, nil)
		err := CanAssignRole(actor, 7, RoleAdmin, RoleModerator)
		assert.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("admin self no-op allowed", func(t *testing.T) {
		actor := NewActor(7, RoleAdmin, nil)
		assert.NoError(t, CanAssignRole(actor, 7, RoleAdmin, RoleAdmin))
	})

	t.Run("super_admin self-change follows hierarchy only", func(t *testing.T) {
		actor := NewActor(7, RoleSuperAdmin, nil)
		assert.NoError(t, CanAssignRole(actor, 7, RoleSuperAdmin, RoleAdmin))
	})

	t.Run("moderator cannot reassign own role", func(t *testing.T) {
		actor := NewActor(7, RoleModerator, nil)
		assert.ErrorIs(t, CanAssignRole(actor, 7, RoleModerator, RoleUser), ErrForbidden)
	})
}

func TestCanDeleteUser(t *testing.T) {
	t.Run("self-deletion always rejected", func(t *testing.T) {
		for _, role := range Roles() {
			actor := NewActor(3, role, nil)
			err := CanDeleteUser(actor, 3, role)
			assert.ErrorIs(t, err, ErrSelfAction, "role %s", role)
		}
	})

	t.Run("admin deletes user", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, nil)
		assert.NoError(t, CanDeleteUser(actor, 2, RoleUser))
	})

	t.Run("admin cannot delete admin", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, nil)
		assert.ErrorIs(t, CanDeleteUser(actor, 2, RoleAdmin), ErrForbidden)
	})

	t.Run("moderator lacks delete_users", func(t *testing.T) {
		actor := NewActor(1, RoleModerator, nil)
		assert.ErrorIs(t, CanDeleteUser(actor, 2, RoleUser), ErrForbidden)
	})

	t.Run("moderator with explicit delete_users grant", func(t *testing.T) {
		actor := NewActor(1, RoleModerator, []string{PermDeleteUsers})
		assert.NoError(t, CanDeleteUser(actor, 2, RoleUser))
	})
}

func TestCanGrantRevoke(t *testing.T) {
	t.Run("user cannot grant", func(t *testing.T) {
		actor := NewActor(1, RoleUser, nil)
		assert.ErrorIs(t, CanGrant(actor, RoleUser), ErrForbidden)
	})

	t.Run("admin grants to a user", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, nil)
		assert.NoError(t, CanGrant(actor, RoleUser))
	})

	t.Run("admin grants to a moderator via default manage capability", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, nil)
		assert.NoError(t, CanGrant(actor, RoleModerator))
	})

	t.Run("admin cannot decorate a peer admin", func(t *testing.T) {
		actor := NewActor(1, RoleAdmin, nil)
		assert.ErrorIs(t, CanGrant(actor, RoleAdmin), ErrForbidden)
	})

	t.Run("super_admin may decorate anyone", func(t *testing.T) {
		actor := NewActor(1, RoleSuperAdmin, nil)
		for _, target := range Roles() {
			assert.NoError(t, CanGrant(actor, target))
			assert.NoError(t, CanRevoke(actor, target))
		}
	})

	t.Run("revoke follows the same gates", func(t *testing.T) {
		actor := NewActor(1, RoleModerator, nil)
		assert.ErrorIs(t, CanRevoke(actor, RoleUser), ErrForbidden)
	})
}
