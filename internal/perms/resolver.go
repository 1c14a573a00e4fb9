package perms

import (
	"context"

	"github.com/sentra-iam/sentra/internal/authz"
)

// Resolver assembles authz.Actor values from storage: the current role
// from the users table and the explicit grant set through the cache.
type Resolver struct {
	repo  RepositoryPort
	cache *GrantCache
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort, cache *GrantCache) *Resolver {
	return &Resolver{repo: repo, cache: cache}
}

// ResolveActor loads the actor's role and grant set.
func (r *Resolver) ResolveActor(ctx context.Context, userID int64) (authz.Actor, error) {
	role, err := r.repo.GetUserRole(ctx, userID)
	if err != nil {
		return authz.Actor{}, err
	}
	grants, err := r.cache.Fetch(ctx, userID, func(ctx context.Context) ([]string, error) {
		return r.repo.GrantNames(ctx, userID)
	})
	if err != nil {
		return authz.Actor{}, err
	}
	return authz.NewActor(userID, role, grants), nil
}
