package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditai/pricing-service/internal/config"
)

const testSecret = "testsecret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(t *testing.T) http.Handler {
	cfg := &config.Config{JWTSecret: testSecret}
	return AuthMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(OperatorFrom(r.Context())))
	}))
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/export", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization header required")
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ledger/export", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization header")
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ledger/export", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ledger/export", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "othersecret", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ledger/export", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	protectedHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "operator", rec.Body.String())
}
