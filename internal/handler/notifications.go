package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stagebook/internal/repository"
	"github.com/iliyamo/stagebook/internal/service"
)

// NotificationHandler serves the caller's inbox and approval queue.
type NotificationHandler struct {
	Principals
	Notifications *service.NotificationService
	Workflow      *service.Workflow
}

func NewNotificationHandler(users repository.UserRepository, n *service.NotificationService, wf *service.Workflow) *NotificationHandler {
	return &NotificationHandler{Principals: Principals{Users: users}, Notifications: n, Workflow: wf}
}

// ListUnread handles GET /v1/notifications.
func (h *NotificationHandler) ListUnread(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Notifications.ListUnread(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": out})
}

// MarkRead handles PATCH /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
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
	if err := h.Notifications.MarkRead(ctx, p, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PATCH /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	n, err := h.Notifications.MarkAllRead(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// PendingApprovals handles GET /v1/approvals.
func (h *NotificationHandler) PendingApprovals(c echo.Context) error {
	p, err := h.principal(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	out, err := h.Workflow.PendingApprovals(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
