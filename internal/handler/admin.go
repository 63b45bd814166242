package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// AdminHandler serves reporting over the booking ledger and catalog
// maintenance.  Routes are mounted behind RequireRole(ADMIN).
type AdminHandler struct {
	Ledger *repository.BookingRepo
	Shows  *repository.ShowRepo
	Log    logrus.FieldLogger
}

func NewAdminHandler(bookings *repository.BookingRepo, shows *repository.ShowRepo, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Ledger: bookings, Shows: shows, Log: log}
}

type addMovieReq struct {
	CinemaID string `json:"cinemaId"`
	model.Movie
}

// Overview handles GET /api/admin/overview.
func (h *AdminHandler) Overview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Ledger.Overview())
}

// Bookings handles GET /api/admin/bookings?limit=N, newest first.  A
// missing or invalid limit returns the whole ledger.
func (h *AdminHandler) Bookings(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return c.JSON(http.StatusOK, echo.Map{"items": h.Ledger.Latest(limit)})
}

// AddMovie handles POST /api/admin/movies.  Price must be positive and at
// least one showtime is required.
func (h *AdminHandler) AddMovie(c echo.Context) error {
	var req addMovieReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.CinemaID == "" || req.Title == "" {
		return badRequest(c, "cinemaId and title are required")
	}
	if req.Price <= 0 {
		return badRequest(c, "price must be positive")
	}
	if len(req.Times) == 0 {
		return badRequest(c, "at least one showtime is required")
	}

	m, err := h.Shows.AddMovie(req.CinemaID, req.Movie)
	switch {
	case errors.Is(err, repository.ErrCinemaNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema_not_found", "message": "Cinema not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie_exists", "message": "Movie id already in use"})
	case err != nil:
		return writeError(c, h.Log, err)
	}
	h.Log.WithFields(logrus.Fields{"cinema": req.CinemaID, "movie": m.ID}).Info("movie added")
	return c.JSON(http.StatusCreated, m)
}
