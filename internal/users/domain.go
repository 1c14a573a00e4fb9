package users

import (
	"time"

	"github.com/sentra-iam/sentra/internal/authz"
)

// User represents a managed principal. A user holds exactly one role at
// all times; the role only changes through the assignment operation.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      authz.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
