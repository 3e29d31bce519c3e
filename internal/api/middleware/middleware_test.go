package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"craft-storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type revokedSet map[string]bool

func (r revokedSet) IsTokenRevoked(_ context.Context, id string) (bool, error) {
	return r[id], nil
}

func signToken(t *testing.T, id string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JwtCustomClaims{
		UserID: "u1",
		Email:  "asha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthServer(revoked RevocationChecker) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		exp, _ := TokenExpiresAt(c)
		return c.JSON(http.StatusOK, map[string]any{
			"userID":  c.Get("userID"),
			"tokenID": c.Get("tokenID"),
			"expires": !exp.IsZero(),
		})
	}, JWTMAuth(secret, revoked))
	return e
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMAuthSetsClaims(t *testing.T) {
	rec := get(newAuthServer(revokedSet{}), "/me", signToken(t, "jti-1", time.Hour))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userID":"u1","tokenID":"jti-1","expires":true}`, rec.Body.String())
}

func TestJWTMAuthRejects(t *testing.T) {
	e := newAuthServer(revokedSet{"jti-revoked": true})

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not.a.jwt"},
		{"expired", signToken(t, "jti-2", -time.Minute)},
		{"revoked", signToken(t, "jti-revoked", time.Hour)},
		{"no token id", signToken(t, "", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, "/me", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"message"`)
		})
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	e := echo.New()
	e.Use(rl.Middleware())
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"), "other callers have their own bucket")
}
