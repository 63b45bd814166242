package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinebook/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/cinebook/internal/middleware" // JWT authentication, role enforcement, cache
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Customer *handler.CustomerHandler
	Payment  *handler.PaymentHandler
	Events   *handler.EventsHandler
	Admin    *handler.AdminHandler
}

// Options carries the middlewares shared by route groups.  RateLimit and
// Cache may be nil; a nil middleware is simply not mounted.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Register mounts the complete API on e.
func Register(e *echo.Echo, h Handlers, opts Options) {
	RegisterRoutes(e)
	RegisterAuth(e, h.Auth)
	RegisterCatalog(e, h.Catalog, opts)
	RegisterCustomer(e, h.Customer, h.Payment, h.Events, opts)
	RegisterAdmin(e, h.Admin, opts.JWTSecret)
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the process is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the sign-in endpoints.  Neither requires an
// existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api")
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
}

// RegisterCatalog registers catalog reads for any signed-in user.  The
// listing goes through the response cache when one is configured.
func RegisterCatalog(e *echo.Echo, c *handler.CatalogHandler, opts Options) {
	g := e.Group("/api", middleware.JWTAuth(opts.JWTSecret))
	g.GET("/catalog", c.Catalog, optional(opts.Cache)...)
	g.POST("/recommend", c.Recommend)
}

// optional turns a possibly nil middleware into a route middleware list.
func optional(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
