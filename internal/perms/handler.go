package perms

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sentra-iam/sentra/internal/auth"
	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/platform/httpx"
	"github.com/sentra-iam/sentra/internal/shared"
)

// Handler manages permission catalog and grant endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        auth.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, validator: validator.New()}
}

// MountCatalogRoutes registers the permission catalog routes.
func (h *Handler) MountCatalogRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(authz.PermViewPermissions))
		r.Get("/", h.listPermissions)
	})
}

// MountGrantRoutes registers per-user grant routes; mounted under
// /users/{userID}/permissions.
func (h *Handler) MountGrantRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(authz.PermViewPermissions))
		r.Get("/", h.listGrants)
	})
	// Grant and revoke authorization is decided by the service through
	// the core; no static capability gate here.
	r.Post("/", h.grant)
	r.Delete("/{permissionID}", h.revoke)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": perms})
}

func (h *Handler) listGrants(w http.ResponseWriter, r *http.Request) {
	targetID, err := userIDParam(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	grants, err := h.service.ListGrants(r.Context(), targetID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if grants == nil {
		grants = []Grant{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

type grantRequest struct {
	PermissionID int64 `json:"permission_id" validate:"required,gt=0"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	targetID, err := userIDParam(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	grant, err := h.service.Grant(r.Context(), actor, targetID, req.PermissionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, grant)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	targetID, err := userIDParam(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	permissionID, err := strconv.ParseInt(chi.URLParam(r, "permissionID"), 10, 64)
	if err != nil || permissionID <= 0 {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.service.Revoke(r.Context(), actor, targetID, permissionID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrValidation
	}
	return id, nil
}
