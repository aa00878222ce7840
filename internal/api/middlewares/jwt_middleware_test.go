package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserIDFromContext(r.Context())
		role, _ := RoleFromContext(r.Context())
		_, _ = w.Write([]byte(id + "/" + role))
	})
}

func call(h http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware_AcceptsIssuedToken(t *testing.T) {
	tok, err := IssueToken(secret, "u1", "admin")
	require.NoError(t, err)

	rec := call(JWTMiddleware(secret)(echoIdentity()), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1/admin", rec.Body.String())
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	other, _ := IssueToken("other-secret", "u1", "student")
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(secret))
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))

	tests := []struct {
		name string
		auth string
	}{
		{name: "no header", auth: ""},
		{name: "not bearer", auth: "Basic abc"},
		{name: "garbage", auth: "Bearer not.a.token"},
		{name: "wrong secret", auth: "Bearer " + other},
		{name: "expired", auth: "Bearer " + expired},
		{name: "missing user id", auth: "Bearer " + noUser},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(JWTMiddleware(secret)(echoIdentity()), tc.auth)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := JWTMiddleware(secret)(RequireRole("admin")(echoIdentity()))

	student, _ := IssueToken(secret, "u1", "student")
	assert.Equal(t, http.StatusForbidden, call(h, "Bearer "+student).Code)

	admin, _ := IssueToken(secret, "u2", "admin")
	assert.Equal(t, http.StatusOK, call(h, "Bearer "+admin).Code)
}
