package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/utils"
)

const secret = "test-secret"

func newServer() *echo.Echo {
	e := echo.New()
	whoami := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"id":   middleware.UserID(c),
			"role": middleware.Role(c),
			"name": middleware.Name(c),
		})
	}
	e.GET("/me", whoami, middleware.JWTAuth(secret))
	e.GET("/admin", whoami, middleware.JWTAuth(secret), middleware.RequireRole("ADMIN"))
	return e
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, utils.Claims{UserID: "7", Role: role, Name: "Sara"}, 5)
	require.NoError(t, err)
	return tok.Token
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := newServer()

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "CUSTOMER"))
		rec := do(e, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"7","role":"CUSTOMER","name":"Sara"}`, rec.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me?token="+token(t, "CUSTOMER"), nil)
		rec := do(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"unauthorized"`)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, do(e, req).Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "CUSTOMER"))
	rec := do(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"forbidden"`)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "ADMIN"))
	assert.Equal(t, http.StatusOK, do(e, req).Code)
}

func TestRedisMiddlewares_PassThroughWithoutClient(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}
	rl := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1}
	cc := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}
	e.GET("/x", h, middleware.NewTokenBucket(rl, nil, nil), middleware.NewRedisCache(cc, nil))

	for i := 0; i < 3; i++ {
		rec := do(e, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 3, calls)
}
