package perms

import (
	"time"

	"github.com/sentra-iam/sentra/internal/authz"
)

// Permission is a catalog row. The catalog is seed data owned by storage;
// authz.Catalog is its source of truth.
type Permission struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    authz.Category `json:"category"`
}

// Grant links a principal to a permission held beyond their role's
// defaults. Unique per (UserID, PermissionID). GrantedBy is recorded for
// audit only and never re-validated.
type Grant struct {
	UserID       int64     `json:"user_id"`
	PermissionID int64     `json:"permission_id"`
	Permission   string    `json:"permission"`
	GrantedBy    int64     `json:"granted_by"`
	GrantedAt    time.Time `json:"granted_at"`
}
