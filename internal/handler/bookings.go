package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// BookingHandler serves direct bookings and artist unavailability.
type BookingHandler struct {
	Principals
	Bookings *service.BookingService
}

func NewBookingHandler(users repository.UserRepository, bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{Principals: Principals{Users: users}, Bookings: bookings}
}

type createBookingReq struct {
	ArtistID  uint64     `json:"artist_id" validate:"required"`
	VenueID   uint64     `json:"venue_id" validate:"required"`
	EventDate *time.Time `json:"event_date" validate:"required"`
	Hours     *float64   `json:"hours" validate:"omitempty,gt=0"`
	Note      *string    `json:"note" validate:"omitempty,max=2000"`
}

type unavailabilityReq struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Reason    *string   `json:"reason" validate:"omitempty,max=500"`
}

// CreateBooking handles POST /v1/bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Bookings.CreateBooking(ctx, p, service.BookingInput{
		ArtistID:  req.ArtistID,
		VenueID:   req.VenueID,
		EventDate: req.EventDate,
		Hours:     req.Hours,
		Note:      req.Note,
	})
	return result(c, http.StatusCreated, res, err)
}

// ListBookings handles GET /v1/bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Bookings.ListBookings(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// AcceptBooking handles POST /v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Bookings.AcceptBooking(ctx, p, id)
	return result(c, http.StatusOK, res, err)
}

// DeclineBooking handles POST /v1/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c echo.Context) error {
	return h.withReason(c, h.Bookings.DeclineBooking)
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	return h.withReason(c, h.Bookings.CancelBooking)
}

func (h *BookingHandler) withReason(c echo.Context, op func(context.Context, model.Principal, uint64, string) (service.Result, error)) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req reasonReq
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := op(ctx, p, id, strings.TrimSpace(req.Reason))
	return result(c, http.StatusOK, res, err)
}

// ListUnavailability handles GET /v1/unavailability.
func (h *BookingHandler) ListUnavailability(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Bookings.ListUnavailability(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"unavailability": out})
}

// AddUnavailability handles POST /v1/unavailability.
func (h *BookingHandler) AddUnavailability(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	var req unavailabilityReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Bookings.AddUnavailability(ctx, p, service.UnavailabilityInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

// DeleteUnavailability handles DELETE /v1/unavailability/:id.
func (h *BookingHandler) DeleteUnavailability(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Bookings.DeleteUnavailability(ctx, p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
