package users

import (
	"bytes"
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

func newTestRouter(t *testing.T, repo *memoryUsersRepo, actor authz.Actor) chi.Router {
	t.Helper()
	svc, _, _ := newUsersService(repo)
	handler := NewHandler(nil, svc, auth.Middleware{}, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithActor(req.Context(), actor)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/users", handler.MountRoutes)
	return r
}

func TestHandlerListUsers(t *testing.T) {
	repo := newMemoryUsersRepo()
	repo.seed(authz.RoleUser)
	router := newTestRouter(t, repo, authz.NewActor(100, authz.RoleUser, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users      []User            `json:"users"`
		Pagination shared.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Users, 1)
	require.Equal(t, 1, body.Pagination.Total)
}

func TestHandlerCreateUserForbidden(t *testing.T) {
	repo := newMemoryUsersRepo()
	router := newTestRouter(t, repo, authz.NewActor(100, authz.RoleUser, nil))

	payload, _ := json.Marshal(map[string]any{
		"email": "n@sentra.local", "name": "N", "password": "longenough",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(payload)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, repo.users)
}

func TestHandlerCreateUser(t *testing.T) {
	repo := newMemoryUsersRepo()
	router := newTestRouter(t, repo, authz.NewActor(100, authz.RoleAdmin, nil))

	payload, _ := json.Marshal(map[string]any{
		"email": "n@sentra.local", "name": "N", "password": "longenough",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(payload)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, authz.RoleUser, user.Role)
}

func TestHandlerAssignRoleErrors(t *testing.T) {
	repo := newMemoryUsersRepo()
	target := repo.seed(authz.RoleSuperAdmin)
	router := newTestRouter(t, repo, authz.NewActor(100, authz.RoleAdmin, nil))

	payload, _ := json.Marshal(map[string]string{"role": "user"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/1/role", bytes.NewReader(payload)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, authz.RoleSuperAdmin, repo.users[target.ID].Role)

	payload, _ = json.Marshal(map[string]string{"role": "owner"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/1/role", bytes.NewReader(payload)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSelfDelete(t *testing.T) {
	repo := newMemoryUsersRepo()
	self := repo.seed(authz.RoleAdmin)
	router := newTestRouter(t, repo, authz.NewActor(self.ID, authz.RoleAdmin, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	var problem struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Self Action Denied", problem.Title)
}

func TestHandlerGetUserNotFound(t *testing.T) {
	repo := newMemoryUsersRepo()
	router := newTestRouter(t, repo, authz.NewActor(100, authz.RoleAdmin, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
