package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seatflow/seating-service/internal/model"
)

// CatalogStore is the slice of the catalog the handlers need: snapshot
// lookup and the atomic full-map save. Implemented by
// repository.ShowingRepo.
type CatalogStore interface {
	FindByTitle(ctx context.Context, title string) ([]model.Showing, error)
	Save(ctx context.Context, s *model.Showing) error
}

// CatalogHandler exposes the catalog-management boundary. The upstream
// catalog process seeds showings here; collaborators can inspect seat maps.
type CatalogHandler struct {
	Showings CatalogStore
}

// NewCatalogHandler constructs a CatalogHandler; the store must be non-nil.
func NewCatalogHandler(showings CatalogStore) *CatalogHandler {
	if showings == nil {
		panic("nil catalog store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Showings: showings}
}

// CreateShowing handles POST /api/v1/showings. The body carries a title, an
// RFC 3339 start time and the seat labels for the new showing; every seat
// starts AVAILABLE. The full seat map is written in one transaction.
func (h *CatalogHandler) CreateShowing(c echo.Context) error {
	var body struct {
		Title      string   `json:"title"`
		StartsAt   string   `json:"startsAt"`
		SeatLabels []string `json:"seatLabels"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startsAt must be an RFC 3339 timestamp"})
	}
	if len(body.SeatLabels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seatLabels is required"})
	}
	seats := make(map[string]model.SeatStatus, len(body.SeatLabels))
	for _, label := range body.SeatLabels {
		if label == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat labels must be non-empty"})
		}
		seats[label] = model.SeatAvailable
	}
	showing := &model.Showing{Title: body.Title, StartsAt: startsAt.UTC(), Seats: seats}
	if err := h.Showings.Save(c.Request().Context(), showing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save showing"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": showing.ID, "seats": len(seats)})
}

// ListShowings handles GET /api/v1/showings?title=... and returns every
// showing for the title with its current seat map. An empty list is a
// valid result, not an error.
func (h *CatalogHandler) ListShowings(c echo.Context) error {
	title := c.QueryParam("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title query parameter is required"})
	}
	showings, err := h.Showings.FindByTitle(c.Request().Context(), title)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showings"})
	}
	items := make([]echo.Map, 0, len(showings))
	for _, s := range showings {
		items = append(items, echo.Map{
			"id":       s.ID,
			"title":    s.Title,
			"startsAt": s.StartsAt.UTC().Format(time.RFC3339),
			"seats":    s.Seats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
