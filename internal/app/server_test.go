package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/scipaper/internal/api/middlewares"
	"github.com/markdave123-py/scipaper/internal/config"
	"github.com/markdave123-py/scipaper/internal/models"
	"github.com/markdave123-py/scipaper/internal/services"
)

type stubAccounts struct{}

func (stubAccounts) Signup(context.Context, string, string) (*models.User, error) { return nil, nil }
func (stubAccounts) Authenticate(context.Context, string, string) (*models.User, error) {
	return nil, nil
}
func (stubAccounts) List(context.Context) ([]models.User, error) { return nil, nil }

func testRouter() http.Handler {
	cfg := &config.Config{JWTSecret: "test-secret", CORSOrigins: []string{"*"}}
	return NewRouter(cfg, Services{Users: stubAccounts{}})
}

func do(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := do(t, testRouter(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r := testRouter()
	for _, path := range []string{"/api/papers", "/api/papers/p1/summary", "/api/users"} {
		assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, path, "").Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/query", "").Code)
}

func TestRouter_UsersIsAdminOnly(t *testing.T) {
	r := testRouter()

	student, err := appMiddleware.IssueToken("test-secret", "u1", services.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/api/users", student).Code)

	admin, err := appMiddleware.IssueToken("test-secret", "u2", services.RoleAdmin)
	require.NoError(t, err)
	rec := do(t, r, http.MethodGet, "/api/users", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":[],"count":0}`, rec.Body.String())
}

func TestRouter_WrongSecretRejected(t *testing.T) {
	tok, err := appMiddleware.IssueToken("other-secret", "u1", services.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, testRouter(), http.MethodGet, "/api/users", tok).Code)
}

func TestNewApp_RequiresSecret(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, config.ErrMissingConfig)
}
