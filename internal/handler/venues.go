package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// VenueHandler serves the caller's venues.
type VenueHandler struct {
	Principals
	Venues *service.VenueService
}

func NewVenueHandler(users repository.UserRepository, venues *service.VenueService) *VenueHandler {
	return &VenueHandler{Principals: Principals{Users: users}, Venues: venues}
}

type createVenueReq struct {
	Name    string `json:"name" validate:"required,max=200"`
	City    string `json:"city" validate:"max=120"`
	Address string `json:"address" validate:"max=255"`
}

// ListVenues handles GET /v1/venues.
func (h *VenueHandler) ListVenues(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Venues.ListMine(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": out})
}

// CreateVenue handles POST /v1/venues.
func (h *VenueHandler) CreateVenue(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	var req createVenueReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	v, err := h.Venues.Create(ctx, p, service.VenueInput{Name: req.Name, City: req.City, Address: req.Address})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}
