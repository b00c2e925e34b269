package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/service"
)

// PublicHandler serves the unauthenticated event pages.  Responses are
// safe to cache; workflow changes purge them by path.
type PublicHandler struct {
	Events *service.EventService
}

func NewPublicHandler(events *service.EventService) *PublicHandler {
	return &PublicHandler{Events: events}
}

// ListEvents handles GET /v1/public/events?limit=&offset=.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Events.ListPublic(ctx, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// GetEvent handles GET /v1/public/events/:id.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	ev, err := h.Events.GetPublic(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

// GetEventBySlug handles GET /v1/public/events/slug/:slug.
func (h *PublicHandler) GetEventBySlug(c echo.Context) error {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slug")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	ev, err := h.Events.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}
