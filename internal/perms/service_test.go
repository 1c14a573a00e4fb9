package perms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/shared"
)

type memoryPermsRepo struct {
	permissions map[int64]Permission
	roles       map[int64]authz.Role
	grants      map[[2]int64]Grant
}

func newMemoryPermsRepo() *memoryPermsRepo {
	return &memoryPermsRepo{
		permissions: make(map[int64]Permission),
		roles:       make(map[int64]authz.Role),
		grants:      make(map[[2]int64]Grant),
	}
}

func (r *memoryPermsRepo) ListPermissions(ctx context.Context, category string) ([]Permission, error) {
	var out []Permission
	for _, p := range r.permissions {
		if category != "" && string(p.Category) != category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryPermsRepo) GetPermission(ctx context.Context, id int64) (Permission, error) {
	p, ok := r.permissions[id]
	if !ok {
		return Permission{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryPermsRepo) GetUserRole(ctx context.Context, userID int64) (authz.Role, error) {
	role, ok := r.roles[userID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func (r *memoryPermsRepo) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	var out []Grant
	for key, g := range r.grants {
		if key[0] == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memoryPermsRepo) GrantNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	for key, g := range r.grants {
		if key[0] == userID {
			names = append(names, g.Permission)
		}
	}
	return names, nil
}

func (r *memoryPermsRepo) CreateGrant(ctx context.Context, userID, permissionID, grantedBy int64) error {
	if _, ok := r.roles[userID]; !ok {
		return shared.ErrNotFound
	}
	perm, ok := r.permissions[permissionID]
	if !ok {
		return shared.ErrNotFound
	}
	key := [2]int64{userID, permissionID}
	if _, ok := r.grants[key]; ok {
		return shared.ErrConflict
	}
	r.grants[key] = Grant{UserID: userID, PermissionID: permissionID, Permission: perm.Name, GrantedBy: grantedBy}
	return nil
}

func (r *memoryPermsRepo) DeleteGrant(ctx context.Context, userID, permissionID int64) (int64, error) {
	key := [2]int64{userID, permissionID}
	if _, ok := r.grants[key]; !ok {
		return 0, nil
	}
	delete(r.grants, key)
	return 1, nil
}

type recordedAudit struct {
	entries []shared.AuditLog
}

func (a *recordedAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

func newPermsService(repo *memoryPermsRepo) (*Service, *recordedAudit) {
	audit := &recordedAudit{}
	return NewService(repo, nil, audit, nil, nil), audit
}

func seedPermission(repo *memoryPermsRepo, id int64, name string) {
	repo.permissions[id] = Permission{ID: id, Name: name, Description: name, Category: authz.CategoryUserManagement}
}

func TestServiceGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("admin grants to user", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		repo.roles[7] = authz.RoleUser
		svc, audit := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleAdmin, nil)
		grant, err := svc.Grant(ctx, actor, 7, 1)
		require.NoError(t, err)
		require.Equal(t, authz.PermDeleteUsers, grant.Permission)
		require.Equal(t, int64(2), grant.GrantedBy)
		require.Len(t, audit.entries, 1)
		require.Equal(t, shared.AuditPermissionGrant, audit.entries[0].Action)
	})

	t.Run("duplicate grant is a conflict", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		repo.roles[7] = authz.RoleUser
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleAdmin, nil)
		_, err := svc.Grant(ctx, actor, 7, 1)
		require.NoError(t, err)
		_, err = svc.Grant(ctx, actor, 7, 1)
		require.ErrorIs(t, err, shared.ErrConflict)
		require.Len(t, repo.grants, 1)
	})

	t.Run("granting to an admin needs manage_admin_permissions", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermSystemSettings)
		repo.roles[5] = authz.RoleAdmin
		svc, _ := newPermsService(repo)

		plain := authz.NewActor(2, authz.RoleAdmin, nil)
		_, err := svc.Grant(ctx, plain, 5, 1)
		require.ErrorIs(t, err, authz.ErrForbidden)

		empowered := authz.NewActor(3, authz.RoleAdmin, []string{authz.PermManageAdminPermissions})
		_, err = svc.Grant(ctx, empowered, 5, 1)
		require.NoError(t, err)
	})

	t.Run("actor without capability cannot probe user existence", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleUser, nil)
		_, err := svc.Grant(ctx, actor, 404, 1)
		require.ErrorIs(t, err, authz.ErrForbidden)
	})

	t.Run("missing user surfaces not found for authorized actor", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(1, authz.RoleSuperAdmin, nil)
		_, err := svc.Grant(ctx, actor, 404, 1)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing permission surfaces not found", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		repo.roles[7] = authz.RoleUser
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(1, authz.RoleSuperAdmin, nil)
		_, err := svc.Grant(ctx, actor, 7, 99)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("grant to super_admin is accepted but inert", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		repo.roles[1] = authz.RoleSuperAdmin
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(9, authz.RoleSuperAdmin, nil)
		_, err := svc.Grant(ctx, actor, 1, 1)
		require.NoError(t, err)
		require.Len(t, repo.grants, 1)
	})
}

func TestServiceRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoke removes the grant", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		repo.roles[7] = authz.RoleUser
		svc, audit := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleAdmin, nil)
		_, err := svc.Grant(ctx, actor, 7, 1)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, actor, 7, 1))
		require.Empty(t, repo.grants)
		require.Len(t, audit.entries, 2)
		require.Equal(t, shared.AuditPermissionRevoke, audit.entries[1].Action)
	})

	t.Run("revoking an absent grant succeeds", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		repo.roles[7] = authz.RoleUser
		svc, audit := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleAdmin, nil)
		require.NoError(t, svc.Revoke(ctx, actor, 7, 1))
		require.Empty(t, audit.entries)
	})

	t.Run("revoking from a missing user succeeds", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleAdmin, nil)
		require.NoError(t, svc.Revoke(ctx, actor, 404, 1))
	})

	t.Run("actor without revoke_permissions is denied", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		repo.roles[7] = authz.RoleUser
		svc, _ := newPermsService(repo)

		actor := authz.NewActor(2, authz.RoleModerator, nil)
		require.ErrorIs(t, svc.Revoke(ctx, actor, 7, 1), authz.ErrForbidden)
	})

	t.Run("revoking from a moderator needs manage_moderator_permissions", func(t *testing.T) {
		repo := newMemoryPermsRepo()
		seedPermission(repo, 1, authz.PermDeleteUsers)
		repo.roles[4] = authz.RoleModerator
		svc, _ := newPermsService(repo)

		require.NoError(t, repo.CreateGrant(ctx, 4, 1, 1))

		moderator := authz.NewActor(3, authz.RoleModerator, []string{authz.PermRevokePermissions})
		require.ErrorIs(t, svc.Revoke(ctx, moderator, 4, 1), authz.ErrForbidden)

		// Admins hold manage_moderator_permissions by default.
		admin := authz.NewActor(2, authz.RoleAdmin, nil)
		require.NoError(t, svc.Revoke(ctx, admin, 4, 1))
		require.Empty(t, repo.grants)
	})
}

func TestServiceListGrants(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPermsRepo()
	svc, _ := newPermsService(repo)

	_, err := svc.ListGrants(ctx, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)

	repo.roles[7] = authz.RoleUser
	seedPermission(repo, 1, authz.PermDeleteUsers)
	require.NoError(t, repo.CreateGrant(ctx, 7, 1, 1))

	grants, err := svc.ListGrants(ctx, 7)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, authz.PermDeleteUsers, grants[0].Permission)
}
