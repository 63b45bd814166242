package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/handler"
	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
)

// RegisterCustomer registers the booking endpoints under /api.  All
// routes require a valid JWT; customers and admins may use them.  The
// mutating endpoints (reserve, payment intent, confirm) sit behind the
// rate limiter when one is configured.  The event streams also accept
// the token as ?token= because EventSource cannot send headers.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, p *handler.PaymentHandler, ev *handler.EventsHandler, opts Options) {
	g := e.Group(
		"/api",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	limited := optional(opts.RateLimit)

	g.GET("/seats/:movieId/:time", h.Seats)
	g.POST("/reserve", h.Reserve, limited...)
	g.DELETE("/reserve/:holdKey", h.ReleaseHold)
	g.GET("/my-bookings", h.MyBookings)

	g.POST("/create-payment-intent", p.CreatePaymentIntent, limited...)
	g.POST("/confirm-payment", p.ConfirmPayment, limited...)

	g.GET("/events", ev.Stream)
	g.GET("/ws", ev.WebSocket)
}
