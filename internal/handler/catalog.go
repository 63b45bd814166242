// Package handler exposes the HTTP handlers of the booking API.  This
// file serves the catalog: cinemas with their movies, showtimes and base
// prices, and mood or genre based suggestions.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook/internal/repository"
)

// CatalogHandler serves read-only catalog endpoints.
type CatalogHandler struct {
	Shows *repository.ShowRepo // movie catalog
}

func NewCatalogHandler(shows *repository.ShowRepo) *CatalogHandler {
	return &CatalogHandler{Shows: shows}
}

type recommendReq struct {
	Mood  string `json:"mood"`
	Genre string `json:"genre"`
}

// Catalog handles GET /api/catalog.  The response is cacheable: it only
// changes when an admin adds a movie.
func (h *CatalogHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"cinemas": h.Shows.Cinemas()})
}

// Recommend handles POST /api/recommend with an optional free-text mood
// and genre.  It always answers with at least one suggestion per cinema.
func (h *CatalogHandler) Recommend(c echo.Context) error {
	var req recommendReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return c.JSON(http.StatusOK, echo.Map{"suggestions": h.Shows.Recommend(req.Mood, req.Genre)})
}
