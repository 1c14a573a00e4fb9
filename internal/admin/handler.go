package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-iam/sentra/internal/auth"
	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/platform/httpx"
)

// Summary is the admin panel overview payload.
type Summary struct {
	UsersByRole map[string]int `json:"users_by_role"`
	TotalUsers  int            `json:"total_users"`
	TotalGrants int            `json:"total_grants"`
}

// ModerationSummary is the moderation panel overview payload.
type ModerationSummary struct {
	TotalUsers    int `json:"total_users"`
	InactiveUsers int `json:"inactive_users"`
}

// Handler serves the admin and moderation panel endpoints.
type Handler struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
	mw     auth.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, pool *pgxpool.Pool, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, pool: pool, mw: mw}
}

// MountAdminRoutes registers the admin panel routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(authz.PermAccessAdminPanel))
		r.Get("/", h.adminSummary)
	})
}

// MountModerationRoutes registers the moderation panel routes.
func (h *Handler) MountModerationRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(authz.PermAccessModeratorPanel))
		r.Get("/", h.moderationSummary)
	})
}

func (h *Handler) adminSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.loadSummary(r.Context())
	if err != nil {
		h.logger.Error("admin summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) moderationSummary(w http.ResponseWriter, r *http.Request) {
	var summary ModerationSummary
	err := h.pool.QueryRow(r.Context(),
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_active) FROM users`).
		Scan(&summary.TotalUsers, &summary.InactiveUsers)
	if err != nil {
		h.logger.Error("moderation summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) loadSummary(ctx context.Context) (Summary, error) {
	summary := Summary{UsersByRole: make(map[string]int)}
	rows, err := h.pool.Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			role  string
			count int
		)
		if err := rows.Scan(&role, &count); err != nil {
			return Summary{}, err
		}
		summary.UsersByRole[role] = count
		summary.TotalUsers += count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	if err := h.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_permissions`).Scan(&summary.TotalGrants); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
