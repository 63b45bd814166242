package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// RegisterAdmin registers ADMIN-scoped reporting and catalog endpoints
// under /api/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/overview", a.Overview)
	g.GET("/bookings", a.Bookings)
	g.POST("/movies", a.AddMovie)
}
