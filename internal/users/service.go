package users

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

// GrantInvalidator drops a principal's cached grant set.
type GrantInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// PasswordHasher produces storable password hashes.
type PasswordHasher func(password string) (string, error)

// CreateUserInput carries the request to create a principal.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     authz.Role
}

// Service handles user management. All role and deletion decisions go
// through the authz core; nothing is re-derived here.
type Service struct {
	repo    RepositoryPort
	audit   AuditRecorder
	grants  GrantInvalidator
	hash    PasswordHasher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder, grants GrantInvalidator, hash PasswordHasher, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, audit: audit, grants: grants, hash: hash, logger: logger, metrics: metrics}
}

// ListUsers returns a page of users plus the total count.
func (s *Service) ListUsers(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	users, total, err := s.repo.ListUsers(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, perPage, total), nil
}

// GetUser fetches one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser creates a principal. New users start as role user; any
// other starting role requires the creator to pass the assignment gates.
func (s *Service) CreateUser(ctx context.Context, actor authz.Actor, input CreateUserInput) (User, error) {
	role := input.Role
	if role == "" {
		role = authz.RoleUser
	}
	if !role.Valid() {
		return User{}, shared.ErrValidation
	}
	if role != authz.RoleUser {
		if err := authz.CanAssignRole(actor, 0, authz.RoleUser, role); err != nil {
			s.recordDecision("assign_role", err)
			return User{}, err
		}
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.CreateUser(ctx, CreateParams{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor.ID, shared.AuditUserCreated, user.ID, map[string]any{"email": user.Email, "role": user.Role.String()})
	return user, nil
}

// UpdateUser updates profile fields.
func (s *Service) UpdateUser(ctx context.Context, actor authz.Actor, id int64, name string, isActive bool) (User, error) {
	user, err := s.repo.UpdateUser(ctx, id, name, isActive)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor.ID, shared.AuditUserUpdated, user.ID, map[string]any{"name": name, "is_active": isActive})
	return user, nil
}

// AssignRole moves a principal to a new role. The target's current role
// is read at decision time; concurrent changes are last-write-wins.
func (s *Service) AssignRole(ctx context.Context, actor authz.Actor, targetID int64, newRole authz.Role) (User, error) {
	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return User{}, err
	}
	if err := authz.CanAssignRole(actor, targetID, target.Role, newRole); err != nil {
		s.recordDecision("assign_role", err)
		return User{}, err
	}
	s.recordDecision("assign_role", nil)
	user, err := s.repo.UpdateRole(ctx, targetID, newRole)
	if err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor.ID, shared.AuditRoleAssigned, user.ID, map[string]any{
		"from": target.Role.String(),
		"to":   newRole.String(),
	})
	return user, nil
}

// DeleteUser removes a principal. Self-deletion is rejected for every
// role; the hierarchy and delete_users gates apply on top.
func (s *Service) DeleteUser(ctx context.Context, actor authz.Actor, targetID int64) error {
	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteUser(actor, targetID, target.Role); err != nil {
		s.recordDecision("delete_user", err)
		return err
	}
	s.recordDecision("delete_user", nil)
	removed, err := s.repo.DeleteUser(ctx, targetID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return shared.ErrNotFound
	}
	if s.grants != nil {
		if err := s.grants.Invalidate(ctx, targetID); err != nil {
			s.log().Warn("invalidate grant cache", slog.Int64("user_id", targetID), slog.Any("error", err))
		}
	}
	s.recordAudit(ctx, actor.ID, shared.AuditUserDeleted, targetID, map[string]any{"role": target.Role.String()})
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

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.log().Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
