package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/middleware"
	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// CustomerHandler groups the seat map, hold and booking history endpoints
// a signed-in customer uses.  All methods assume JWTAuth already ran; a
// request without a subject is rejected with 401.
type CustomerHandler struct {
	Holds    *service.HoldManager    // seat maps and holds
	Bookings *repository.BookingRepo // ledger, for the caller's history
	Log      logrus.FieldLogger
}

// NewCustomerHandler constructs a CustomerHandler.  holds and bookings
// must be non-nil.
func NewCustomerHandler(holds *service.HoldManager, bookings *repository.BookingRepo, log logrus.FieldLogger) *CustomerHandler {
	if holds == nil || bookings == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Holds: holds, Bookings: bookings, Log: log}
}

type reserveReq struct {
	MovieID string `json:"movieId"`
	Time    string `json:"time"`
	SeatID  string `json:"seatId"`
}

type reserveResp struct {
	Message   string    `json:"message"`
	HoldKey   string    `json:"holdKey"`
	Amount    int64     `json:"amount"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// getUserID returns the authenticated subject or an echo 401.
func getUserID(c echo.Context) (string, error) {
	uid := middleware.UserID(c)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}

// Seats handles GET /api/seats/:movieId/:time and returns the full seat
// map of the showing together with the hold lifetime in minutes.
func (h *CustomerHandler) Seats(c echo.Context) error {
	seats, err := h.Holds.Seats(c.Param("movieId"), c.Param("time"))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats, "holdMinutes": h.Holds.HoldMinutes()})
}

// Reserve handles POST /api/reserve.  It claims one available seat for
// the caller; a seat that is already held or booked yields 409
// seat_unavailable.
func (h *CustomerHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.SeatID = strings.ToUpper(strings.TrimSpace(req.SeatID))
	if req.MovieID == "" || req.Time == "" || req.SeatID == "" {
		return badRequest(c, "movieId, time and seatId are required")
	}

	hold, err := h.Holds.CreateHold(c.Request().Context(), userID, req.MovieID, req.Time, req.SeatID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, reserveResp{
		Message:   "Seat held for payment",
		HoldKey:   hold.Key,
		Amount:    hold.Amount,
		ExpiresAt: hold.ExpiresAt(h.Holds.HoldDuration()),
	})
}

// ReleaseHold handles DELETE /api/reserve/:holdKey.  Only the holder may
// release; the seat becomes available immediately.
func (h *CustomerHandler) ReleaseHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	if err := h.Holds.ReleaseHold(c.Request().Context(), c.Param("holdKey"), userID); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Seat released"})
}

// MyBookings handles GET /api/my-bookings.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	items := h.Bookings.ListByUser(userID)
	if items == nil {
		items = []model.Booking{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
