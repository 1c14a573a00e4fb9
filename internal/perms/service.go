package perms

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/observability"
	"github.com/sentra-iam/sentra/internal/shared"
)

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles permission catalog reads and grant lifecycle.
type Service struct {
	repo    RepositoryPort
	cache   *GrantCache
	audit   AuditRecorder
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *GrantCache, audit AuditRecorder, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, cache: cache, audit: audit, logger: logger, metrics: metrics}
}

// ListPermissions returns the catalog, optionally filtered by category.
func (s *Service) ListPermissions(ctx context.Context, category string) ([]Permission, error) {
	return s.repo.ListPermissions(ctx, category)
}

// ListGrants returns the explicit grants held by a principal.
func (s *Service) ListGrants(ctx context.Context, targetUserID int64) ([]Grant, error) {
	if _, err := s.repo.GetUserRole(ctx, targetUserID); err != nil {
		return nil, err
	}
	return s.repo.ListGrants(ctx, targetUserID)
}

// Grant creates an explicit grant for the target principal. Duplicate
// pairs are a conflict, not an overwrite. Grants for super_admin
// principals are accepted but inert: the resolver's wildcard never
// consults them.
func (s *Service) Grant(ctx context.Context, actor authz.Actor, targetUserID, permissionID int64) (Grant, error) {
	targetRole, err := s.repo.GetUserRole(ctx, targetUserID)
	if err != nil {
		// The authorization-denied signal wins over not-found: callers
		// without the base capability learn nothing about who exists.
		if errors.Is(err, shared.ErrNotFound) && !actor.HasCapability(authz.PermGrantPermissions) {
			return Grant{}, authz.ErrForbidden
		}
		return Grant{}, err
	}
	if err := authz.CanGrant(actor, targetRole); err != nil {
		s.recordDecision("grant", err)
		return Grant{}, err
	}
	s.recordDecision("grant", nil)

	perm, err := s.repo.GetPermission(ctx, permissionID)
	if err != nil {
		return Grant{}, err
	}
	if err := s.repo.CreateGrant(ctx, targetUserID, permissionID, actor.ID); err != nil {
		return Grant{}, err
	}
	if err := s.cache.Invalidate(ctx, targetUserID); err != nil {
		s.log().Warn("invalidate grant cache", slog.Int64("user_id", targetUserID), slog.Any("error", err))
	}
	s.recordAudit(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   shared.AuditPermissionGrant,
		Entity:   "user_permission",
		EntityID: grantEntityID(targetUserID, permissionID),
		Meta:     map[string]any{"permission": perm.Name, "target_user_id": targetUserID},
	})
	return Grant{
		UserID:       targetUserID,
		PermissionID: permissionID,
		Permission:   perm.Name,
		GrantedBy:    actor.ID,
	}, nil
}

// Revoke removes an explicit grant. Revoking a grant that does not exist
// is success, not an error: the end state is the same.
func (s *Service) Revoke(ctx context.Context, actor authz.Actor, targetUserID, permissionID int64) error {
	if !actor.HasCapability(authz.PermRevokePermissions) {
		s.recordDecision("revoke", authz.ErrForbidden)
		return authz.ErrForbidden
	}
	targetRole, err := s.repo.GetUserRole(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := authz.CanRevoke(actor, targetRole); err != nil {
		s.recordDecision("revoke", err)
		return err
	}
	s.recordDecision("revoke", nil)

	removed, err := s.repo.DeleteGrant(ctx, targetUserID, permissionID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}
	if err := s.cache.Invalidate(ctx, targetUserID); err != nil {
		s.log().Warn("invalidate grant cache", slog.Int64("user_id", targetUserID), slog.Any("error", err))
	}
	s.recordAudit(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   shared.AuditPermissionRevoke,
		Entity:   "user_permission",
		EntityID: grantEntityID(targetUserID, permissionID),
		Meta:     map[string]any{"target_user_id": targetUserID},
	})
	return nil
}

func (s *Service) recordDecision(operation string, err error) {
	switch {
	case err == nil:
		s.metrics.RecordDecision(operation, observability.OutcomeAllowed)
	case errors.Is(err, authz.ErrSelfAction):
		s.metrics.RecordDecision(operation, observability.OutcomeSelfDenied)
	default:
		s.metrics.RecordDecision(operation, observability.OutcomeForbidden)
	}
}

func (s *Service) recordAudit(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.log().Warn("audit record", slog.String("action", log.Action), slog.Any("error", err))
	}
}

func (s *Service) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func grantEntityID(userID, permissionID int64) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(permissionID, 10)
}
