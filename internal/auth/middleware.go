package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/observability"
	"github.com/sentra-iam/sentra/internal/platform/httpx"
	"github.com/sentra-iam/sentra/internal/shared"
)

// ActorResolver turns a user ID into a fully populated authz.Actor
// (role plus explicit grant set).
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (authz.Actor, error)
}

// Middleware wires actor resolution and capability gates for HTTP
// handlers. Every protected route goes through these two layers; request
// handlers never re-derive authorization rules locally.
type Middleware struct {
	Resolver ActorResolver
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// RequireActor resolves the session user into an authz.Actor and stores
// it in the request context. Unresolvable requests get 401 before any
// authorization logic runs.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		actor, err := m.Resolver.ResolveActor(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("resolve actor", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		ctx := shared.ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAny ensures the current actor holds at least one of the named
// capabilities.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			for _, p := range perms {
				if actor.HasCapability(p) {
					m.Metrics.RecordDecision("capability", observability.OutcomeAllowed)
					next.ServeHTTP(w, r)
					return
				}
			}
			m.Metrics.RecordDecision("capability", observability.OutcomeForbidden)
			httpx.RespondError(w, authz.ErrForbidden)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
