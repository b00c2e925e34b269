package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/stagebook/internal/model"
)

// UserRepository persists accounts and resolves callers into principals.
type UserRepository interface {
	CreateAccount(ctx context.Context, in NewAccount) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	ResolvePrincipal(ctx context.Context, email string) (model.Principal, error)
}

// VenueRepository persists venues.
type VenueRepository interface {
	GetByID(ctx context.Context, id uint64) (model.Venue, error)
	ListByOwner(ctx context.Context, ownerUserID uint64) ([]model.Venue, error)
	Create(ctx context.Context, v *model.Venue) error
}

// ArtistRepository persists artist profiles.
type ArtistRepository interface {
	GetByID(ctx context.Context, id uint64) (model.Artist, error)
}

// EventRepository persists events.  UpdateStatus and AssignVenue only
// write when the stored status still equals from and report whether a
// row changed.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id uint64, patch EventPatch) error
	UpdateStatus(ctx context.Context, id uint64, from, to model.EventStatus) (bool, error)
	AssignVenue(ctx context.Context, id, venueID uint64, from, to model.EventStatus) (bool, error)
	Delete(ctx context.Context, id uint64) error
	ListPendingForVenues(ctx context.Context, venueIDs []uint64) ([]model.Event, error)
	GetBySlug(ctx context.Context, slug string) (model.Event, error)
	ListPublic(ctx context.Context, from time.Time, limit, offset int) ([]model.Event, error)
}

// EventArtistRepository persists event line-ups.
type EventArtistRepository interface {
	ListByEvent(ctx context.Context, eventID uint64) ([]model.EventArtist, error)
	ListUnconfirmed(ctx context.Context, eventID uint64) ([]model.EventArtist, error)
	Get(ctx context.Context, eventID, artistID uint64) (model.EventArtist, error)
	Add(ctx context.Context, ea model.EventArtist) error
	SetConfirmed(ctx context.Context, eventID, artistID uint64, confirmed bool) error
	ResetConfirmed(ctx context.Context, eventID uint64) error
}

// PerformanceRepository persists performances.
type PerformanceRepository interface {
	Create(ctx context.Context, p *model.Performance) error
	GetByID(ctx context.Context, id uint64) (model.Performance, error)
	GetByEventAndArtist(ctx context.Context, eventID, artistID uint64) (model.Performance, error)
	Transition(ctx context.Context, id uint64, from, to model.PerformanceStatus, patch PerformancePatch) (bool, error)
	ListPendingForHost(ctx context.Context, userID uint64, venueIDs []uint64) ([]model.Performance, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ExistsForArtistAndEvent(ctx context.Context, artistID, eventID uint64) (bool, error)
	ListAcceptedForArtistBetween(ctx context.Context, artistID uint64, from, to time.Time, excludeID uint64) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID uint64, statuses ...model.BookingStatus) ([]model.Booking, error)
	CancelActive(ctx context.Context, ids []uint64) (int64, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error)
	CountByEvent(ctx context.Context, eventID uint64) (int64, error)
	ListForArtist(ctx context.Context, artistID uint64) ([]model.Booking, error)
	ListForHost(ctx context.Context, userID uint64, venueIDs []uint64) ([]model.Booking, error)
}

// UnavailabilityRepository persists artist unavailability windows.
type UnavailabilityRepository interface {
	ListByArtist(ctx context.Context, artistID uint64) ([]model.ArtistUnavailability, error)
	Create(ctx context.Context, u *model.ArtistUnavailability) error
	GetByID(ctx context.Context, id uint64) (model.ArtistUnavailability, error)
	Delete(ctx context.Context, id uint64) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ListUnread(ctx context.Context, userID uint64) ([]model.NotificationView, error)
	MarkRead(ctx context.Context, id, userID uint64, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error)
}

// Repositories bundles every MySQL-backed repository over one pool.
type Repositories struct {
	Users          *UserRepo
	Venues         *VenueRepo
	Artists        *ArtistRepo
	Events         *EventRepo
	EventArtists   *EventArtistRepo
	Performances   *PerformanceRepo
	Bookings       *BookingRepo
	Unavailability *UnavailabilityRepo
	Notifications  *NotificationRepo
}

// New wires all repositories against db.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		Users:          NewUserRepo(db),
		Venues:         NewVenueRepo(db),
		Artists:        NewArtistRepo(db),
		Events:         NewEventRepo(db),
		EventArtists:   NewEventArtistRepo(db),
		Performances:   NewPerformanceRepo(db),
		Bookings:       NewBookingRepo(db),
		Unavailability: NewUnavailabilityRepo(db),
		Notifications:  NewNotificationRepo(db),
	}
}

var (
	_ UserRepository           = (*UserRepo)(nil)
	_ VenueRepository          = (*VenueRepo)(nil)
	_ ArtistRepository         = (*ArtistRepo)(nil)
	_ EventRepository          = (*EventRepo)(nil)
	_ EventArtistRepository    = (*EventArtistRepo)(nil)
	_ PerformanceRepository    = (*PerformanceRepo)(nil)
	_ BookingRepository        = (*BookingRepo)(nil)
	_ UnavailabilityRepository = (*UnavailabilityRepo)(nil)
	_ NotificationRepository   = (*NotificationRepo)(nil)
)
