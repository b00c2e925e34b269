package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// PerformanceHandler serves performance applications and invitations.
type PerformanceHandler struct {
	Principals
	Workflow *service.Workflow
}

func NewPerformanceHandler(users repository.UserRepository, wf *service.Workflow) *PerformanceHandler {
	return &PerformanceHandler{Principals: Principals{Users: users}, Workflow: wf}
}

// artist_id may be omitted by an artist applying for themselves.
type applyReq struct {
	ArtistID         uint64   `json:"artist_id"`
	ProposedFeeCents *int64   `json:"proposed_fee_cents" validate:"omitempty,gte=0"`
	AgreedFeeCents   *int64   `json:"agreed_fee_cents" validate:"omitempty,gte=0"`
	Hours            *float64 `json:"hours" validate:"omitempty,gt=0"`
	Notes            *string  `json:"notes" validate:"omitempty,max=2000"`
}

type performanceActionReq struct {
	Action string  `json:"action" validate:"required,oneof=APPROVE DECLINE CANCEL"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
	Reason string  `json:"reason" validate:"max=1000"`
}

// Apply handles POST /v1/events/:id/performances.
func (h *PerformanceHandler) Apply(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req applyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.ArtistID == 0 && p.ArtistID != nil {
		req.ArtistID = *p.ArtistID
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	res, err := h.Workflow.ApplyForPerformance(ctx, p, service.PerformanceInput{
		EventID:          eventID,
		ArtistID:         req.ArtistID,
		ProposedFeeCents: req.ProposedFeeCents,
		AgreedFeeCents:   req.AgreedFeeCents,
		Hours:            req.Hours,
		Notes:            req.Notes,
	})
	return result(c, http.StatusCreated, res, err)
}

// Decide handles PATCH /v1/performances/:id.
func (h *PerformanceHandler) Decide(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req performanceActionReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Action = strings.ToUpper(strings.TrimSpace(req.Action))
	if err := c.Validate(&req); err != nil {
		return err
	}
	reason := strings.TrimSpace(req.Reason)

	ctx, cancel := withTimeout(c)
	defer cancel()
	var res service.Result
	switch req.Action {
	case "APPROVE":
		res, err = h.Workflow.ApprovePerformance(ctx, p, id, req.Notes)
	case "DECLINE":
		res, err = h.Workflow.DeclinePerformance(ctx, p, id, reason)
	default:
		res, err = h.Workflow.CancelPerformance(ctx, p, id, reason)
	}
	return result(c, http.StatusOK, res, err)
}
