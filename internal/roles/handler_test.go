package roles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sentra-iam/sentra/internal/auth"
	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/shared"
)

func serveRoles(t *testing.T, actor authz.Actor) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandler(nil, auth.Middleware{})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), actor)))
		})
	})
	r.Route("/roles", handler.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles", nil))
	return rec
}

func TestListRoles(t *testing.T) {
	rec := serveRoles(t, authz.NewActor(1, authz.RoleUser, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Roles []RoleInfo `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Roles, 4)

	// Ascending privilege order, wildcard only on the top tier.
	require.Equal(t, "user", body.Roles[0].Name)
	require.Equal(t, "super_admin", body.Roles[3].Name)
	require.True(t, body.Roles[3].Wildcard)
	require.False(t, body.Roles[0].Wildcard)
	for i := 1; i < len(body.Roles); i++ {
		require.Greater(t, body.Roles[i].Level, body.Roles[i-1].Level)
	}
	require.Len(t, body.Roles[3].DefaultPermissions, len(authz.Catalog()))
}
