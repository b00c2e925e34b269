package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// EventHandler serves event management and venue approval endpoints.
type EventHandler struct {
	Principals
	Events   *service.EventService
	Workflow *service.Workflow
}

func NewEventHandler(users repository.UserRepository, events *service.EventService, wf *service.Workflow) *EventHandler {
	return &EventHandler{Principals: Principals{Users: users}, Events: events, Workflow: wf}
}

// ----- DTOs -----

// Either venue_id or external_venue_name must be given; the service
// reports the combination errors.
type createEventReq struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description" validate:"max=5000"`
	EventDate         *time.Time `json:"event_date" validate:"required"`
	EndDate           *time.Time `json:"end_date"`
	VenueID           *uint64    `json:"venue_id"`
	ExternalVenueName *string    `json:"external_venue_name" validate:"omitempty,max=200"`
	ExternalAddress   *string    `json:"external_venue_address" validate:"omitempty,max=255"`
	ExternalCity      *string    `json:"external_venue_city" validate:"omitempty,max=120"`
	ExternalContact   *string    `json:"external_venue_contact" validate:"omitempty,max=255"`
	TotalHours        *float64   `json:"total_hours" validate:"omitempty,gt=0"`
	TotalBudgetCents  *int64     `json:"total_budget_cents" validate:"omitempty,gt=0"`
	IsPublic          *bool      `json:"is_public"`
}

type updateEventReq struct {
	Title            *string    `json:"title" validate:"omitempty,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=5000"`
	EventDate        *time.Time `json:"event_date"`
	EndDate          *time.Time `json:"end_date"`
	TotalHours       *float64   `json:"total_hours"`
	TotalBudgetCents *int64     `json:"total_budget_cents"`
	IsPublic         *bool      `json:"is_public"`
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

type addArtistReq struct {
	ArtistID uint64 `json:"artist_id" validate:"required"`
	FeeCents *int64 `json:"fee_cents" validate:"omitempty,gte=0"`
}

type venueRequestReq struct {
	VenueID uint64 `json:"venue_id" validate:"required"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// CreateEvent handles POST /v1/events.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	var req createEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.EventInput{
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		EventDate:         req.EventDate,
		EndDate:           req.EndDate,
		VenueID:           req.VenueID,
		ExternalVenueName: req.ExternalVenueName,
		ExternalAddress:   req.ExternalAddress,
		ExternalCity:      req.ExternalCity,
		ExternalContact:   req.ExternalContact,
		TotalHours:        req.TotalHours,
		TotalBudgetCents:  req.TotalBudgetCents,
		IsPublic:          req.IsPublic == nil || *req.IsPublic,
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Events.Create(ctx, p, in)
	return result(c, http.StatusCreated, res, err)
}

// GetEvent handles GET /v1/events/:id.
func (h *EventHandler) GetEvent(c echo.Context) error {
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
	ev, err := h.Events.Get(ctx, p, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

// UpdateEvent handles PATCH /v1/events/:id.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req updateEventReq
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := repository.EventPatch{
		Title:            req.Title,
		Description:      req.Description,
		EventDate:        req.EventDate,
		EndDate:          req.EndDate,
		TotalHours:       req.TotalHours,
		TotalBudgetCents: req.TotalBudgetCents,
		IsPublic:         req.IsPublic,
	}
	if patch.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Events.Update(ctx, p, id, patch)
	return result(c, http.StatusOK, res, err)
}

// ChangeStatus handles PATCH /v1/events/:id/status.  Publishing sends
// booking requests to every unconfirmed artist of the line-up.
func (h *EventHandler) ChangeStatus(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	to := model.EventStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Events.ChangeStatus(ctx, p, id, to)
	return result(c, http.StatusOK, res, err)
}

// DeleteEvent handles DELETE /v1/events/:id.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
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
	res, err := h.Events.Delete(ctx, p, id)
	return result(c, http.StatusOK, res, err)
}

// AddArtist handles POST /v1/events/:id/artists.
func (h *EventHandler) AddArtist(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req addArtistReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Events.AddArtist(ctx, p, id, req.ArtistID, req.FeeCents)
	return result(c, http.StatusCreated, res, err)
}

// RequestVenue handles POST /v1/events/:id/venue-request.
func (h *EventHandler) RequestVenue(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req venueRequestReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Workflow.RequestVenueApproval(ctx, p, id, req.VenueID)
	return result(c, http.StatusOK, res, err)
}

// ApproveEvent handles POST /v1/events/:id/approve.
func (h *EventHandler) ApproveEvent(c echo.Context) error {
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
	res, err := h.Workflow.ApproveEvent(ctx, p, id)
	return result(c, http.StatusOK, res, err)
}

// DeclineEvent handles POST /v1/events/:id/decline.  The body is
// optional.
func (h *EventHandler) DeclineEvent(c echo.Context) error {
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
	res, err := h.Workflow.DeclineEvent(ctx, p, id, strings.TrimSpace(req.Reason))
	return result(c, http.StatusOK, res, err)
}
