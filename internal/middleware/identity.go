package middleware

// identity.go defines the context keys set by JWTAuth and small accessors
// shared by handlers and the other middlewares.

import "github.com/labstack/echo/v4"

// Context keys populated by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextName   = "name"
)

// UserID returns the authenticated user's identifier, or "" when the
// request is anonymous.
func UserID(c echo.Context) string { return contextString(c, ContextUserID) }

// Role returns the authenticated user's role claim.
func Role(c echo.Context) string { return contextString(c, ContextRole) }

// Name returns the authenticated user's display name.
func Name(c echo.Context) string { return contextString(c, ContextName) }

func contextString(c echo.Context, key string) string {
	if s, ok := c.Get(key).(string); ok {
		return s
	}
	return ""
}
