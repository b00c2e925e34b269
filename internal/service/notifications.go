package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/notify"
)

// NotificationInput describes one in-app notification.
type NotificationInput struct {
	UserID        uint64
	Type          model.NotificationType
	Title         string
	Message       string
	EventID       *uint64
	PerformanceID *uint64
	ActionURL     *string
}

// NotificationService stores and reads in-app notifications.
type NotificationService struct {
	d *Deps
}

func NewNotificationService(d *Deps) *NotificationService {
	return &NotificationService{d: d}
}

// Create stores an unread notification.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (model.Notification, error) {
	n := model.Notification{
		Type:          in.Type,
		UserID:        in.UserID,
		EventID:       in.EventID,
		PerformanceID: in.PerformanceID,
		Title:         in.Title,
		Message:       in.Message,
		ActionURL:     in.ActionURL,
		CreatedAt:     s.d.now(),
	}
	if err := s.d.Notifications.Create(ctx, &n); err != nil {
		return model.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// Notify schedules Create on the dispatcher.  A zero user id is ignored.
// Failures are logged by the dispatcher and never reach the caller.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) {
	if in.UserID == 0 {
		return
	}
	s.d.Dispatcher.Dispatch(ctx, notify.Job{
		Kind: "notification",
		Name: string(in.Type),
		Run: func(ctx context.Context) error {
			_, err := s.Create(ctx, in)
			return err
		},
	})
}

// ListUnread returns the caller's unread notifications, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, p model.Principal) ([]model.NotificationView, error) {
	out, err := s.d.Notifications.ListUnread(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	if out == nil {
		out = []model.NotificationView{}
	}
	return out, nil
}

// MarkRead marks one of the caller's notifications read.  An id that is
// unknown or belongs to someone else is silently ignored.
func (s *NotificationService) MarkRead(ctx context.Context, p model.Principal, id uint64) error {
	if _, err := s.d.Notifications.MarkRead(ctx, id, p.UserID, s.d.now()); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller read and
// returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, p model.Principal) (int64, error) {
	n, err := s.d.Notifications.MarkAllRead(ctx, p.UserID, s.d.now())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}
