package model

import "time"

// NotificationType names what happened.  Clients use it to pick an icon
// and a deep link; the text lives in Title and Message.
type NotificationType string

const (
	NotifyEventApprovalRequested NotificationType = "EVENT_APPROVAL_REQUESTED"
	NotifyEventApproved          NotificationType = "EVENT_APPROVED"
	NotifyEventDeclined          NotificationType = "EVENT_DECLINED"
	NotifyPerformanceApplication NotificationType = "PERFORMANCE_APPLICATION"
	NotifyPerformanceInvitation  NotificationType = "PERFORMANCE_INVITATION"
	NotifyPerformanceApproved    NotificationType = "PERFORMANCE_APPROVED"
	NotifyPerformanceDeclined    NotificationType = "PERFORMANCE_DECLINED"
	NotifyPerformanceCancelled   NotificationType = "PERFORMANCE_CANCELLED"
	NotifyBookingRequested       NotificationType = "BOOKING_REQUESTED"
	NotifyBookingAccepted        NotificationType = "BOOKING_ACCEPTED"
	NotifyBookingDeclined        NotificationType = "BOOKING_DECLINED"
	NotifyBookingCancelled       NotificationType = "BOOKING_CANCELLED"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID            uint64           `json:"id"`
	Type          NotificationType `json:"type"`
	UserID        uint64           `json:"user_id"`
	EventID       *uint64          `json:"event_id,omitempty"`
	PerformanceID *uint64          `json:"performance_id,omitempty"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	IsRead        bool             `json:"is_read"`
	ReadAt        *time.Time       `json:"read_at,omitempty"`
	ActionURL     *string          `json:"action_url,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// NotificationView is a notification enriched for display with the
// related event title and, for performance notifications, the artist.
type NotificationView struct {
	Notification
	EventTitle *string `json:"event_title,omitempty"`
	ArtistName *string `json:"artist_name,omitempty"`
}
