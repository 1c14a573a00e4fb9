package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-iam/sentra/internal/auth"
	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/platform/httpx"
)

// RoleInfo describes one of the four fixed roles.
type RoleInfo struct {
	Name               string   `json:"name"`
	Level              int      `json:"level"`
	DefaultPermissions []string `json:"default_permissions"`
	Wildcard           bool     `json:"wildcard"`
}

// Handler serves the role reference endpoints. Roles are a fixed,
// ordered enumeration; there is nothing to create or delete.
type Handler struct {
	logger *slog.Logger
	mw     auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, mw: mw}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(authz.PermViewRoles))
		r.Get("/", h.listRoles)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	infos := make([]RoleInfo, 0, len(authz.Roles()))
	for _, role := range authz.Roles() {
		infos = append(infos, RoleInfo{
			Name:               role.String(),
			Level:              role.Level(),
			DefaultPermissions: authz.DefaultPermissions(role),
			Wildcard:           role == authz.RoleSuperAdmin,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": infos})
}
