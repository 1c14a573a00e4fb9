package perms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/shared"
)

// Postgres error codes surfaced as domain errors.
const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// RepositoryPort defines data access for permissions and grants.
type RepositoryPort interface {
	ListPermissions(ctx context.Context, category string) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	GetUserRole(ctx context.Context, userID int64) (authz.Role, error)
	ListGrants(ctx context.Context, userID int64) ([]Grant, error)
	GrantNames(ctx context.Context, userID int64) ([]string, error)
	CreateGrant(ctx context.Context, userID, permissionID, grantedBy int64) error
	DeleteGrant(ctx context.Context, userID, permissionID int64) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPermissions returns catalog rows, optionally filtered by category.
func (r *Repository) ListPermissions(ctx context.Context, category string) ([]Permission, error) {
	query := `SELECT id, name, description, category FROM permissions ORDER BY id`
	args := []any{}
	if category != "" {
		query = `SELECT id, name, description, category FROM permissions WHERE category = $1 ORDER BY id`
		args = append(args, category)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GetPermission fetches a catalog row by ID.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, category FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, shared.ErrNotFound
		}
		return Permission{}, err
	}
	return p, nil
}

// GetUserRole reads the current role of a principal.
func (r *Repository) GetUserRole(ctx context.Context, userID int64) (authz.Role, error) {
	var raw string
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return authz.ParseRole(raw)
}

// ListGrants returns the explicit grants of a principal with permission names.
func (r *Repository) ListGrants(ctx context.Context, userID int64) ([]Grant, error) {
	rows, err := r.pool.Query(ctx, `SELECT g.user_id, g.permission_id, p.name, g.granted_by, g.granted_at
		FROM user_permissions g JOIN permissions p ON p.id = g.permission_id
		WHERE g.user_id = $1 ORDER BY g.granted_at, g.permission_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.UserID, &g.PermissionID, &g.Permission, &g.GrantedBy, &g.GrantedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// GrantNames returns just the permission names granted to a principal.
func (r *Repository) GrantNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.name FROM user_permissions g
		JOIN permissions p ON p.id = g.permission_id WHERE g.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateGrant inserts a grant row. A duplicate (user, permission) pair
// surfaces as shared.ErrConflict; a missing user or permission as
// shared.ErrNotFound. Uniqueness itself is the database's constraint.
func (r *Repository) CreateGrant(ctx context.Context, userID, permissionID, grantedBy int64) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_permissions (user_id, permission_id, granted_by, granted_at) VALUES ($1, $2, $3, NOW())`,
		userID, permissionID, grantedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return shared.ErrConflict
			case pgFKViolation:
				return shared.ErrNotFound
			}
		}
		return err
	}
	return nil
}

// DeleteGrant removes a grant row, returning the number of rows removed.
func (r *Repository) DeleteGrant(ctx context.Context, userID, permissionID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`, userID, permissionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ RepositoryPort = (*Repository)(nil)
