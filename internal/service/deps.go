package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/stagebook/internal/cache"
	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/mail"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/notify"
	"github.com/iliyamo/stagebook/internal/repository"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Users          repository.UserRepository
	Venues         repository.VenueRepository
	Artists        repository.ArtistRepository
	Events         repository.EventRepository
	EventArtists   repository.EventArtistRepository
	Performances   repository.PerformanceRepository
	Bookings       repository.BookingRepository
	Unavailability repository.UnavailabilityRepository
	Notifications  repository.NotificationRepository

	Dispatcher  notify.Dispatcher
	Mailer      mail.Sender
	Revalidator cache.Revalidator

	// BaseURL prefixes action links in notifications and mail.
	BaseURL string
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Deps) link(format string, args ...any) *string {
	s := d.BaseURL + fmt.Sprintf(format, args...)
	return &s
}

func (d *Deps) loadEvent(ctx context.Context, id uint64) (model.Event, error) {
	e, err := d.Events.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, notFound(err)
	}
	return e, nil
}

// venueOwner returns the user owning the event's venue, or 0 for events
// at external venues.
func (d *Deps) venueOwner(ctx context.Context, e model.Event) (uint64, error) {
	if !e.HasInternalVenue() {
		return 0, nil
	}
	v, err := d.Venues.GetByID(ctx, *e.VenueID)
	if err != nil {
		return 0, notFound(err)
	}
	return v.OwnerUserID, nil
}

// isHost reports whether p created the event or owns its venue.
func isHost(p model.Principal, e model.Event) bool {
	if p.UserID == e.CreatorUserID {
		return true
	}
	return e.HasInternalVenue() && p.OwnsVenue(*e.VenueID)
}

// hostUser picks who speaks for the event: the venue owner when the
// venue is registered, otherwise the creator.
func (d *Deps) hostUser(ctx context.Context, e model.Event) (uint64, error) {
	owner, err := d.venueOwner(ctx, e)
	if err != nil {
		return 0, err
	}
	if owner != 0 {
		return owner, nil
	}
	return e.CreatorUserID, nil
}

// revalidate schedules purging of the public pages of an event.
func (d *Deps) revalidate(ctx context.Context, e model.Event) {
	if d.Revalidator == nil {
		return
	}
	for _, path := range cache.EventPaths(e.ID, e.Slug) {
		path := path
		d.Dispatcher.Dispatch(ctx, notify.Job{
			Kind: "revalidate",
			Name: path,
			Run:  func(ctx context.Context) error { return d.Revalidator.Revalidate(ctx, path) },
		})
	}
}

// sendMail schedules delivery of a rendered message.
func (d *Deps) sendMail(ctx context.Context, msg mail.Message) {
	if d.Mailer == nil {
		return
	}
	d.Dispatcher.Dispatch(ctx, notify.Job{
		Kind: "email",
		Name: msg.Kind,
		Run: func(ctx context.Context) error {
			r, err := d.Mailer.Send(ctx, msg)
			if err != nil {
				return err
			}
			logger.WithContext(ctx).Debug("email queued", "id", r.ID, "kind", msg.Kind)
			return nil
		},
	})
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func hoursOrDefault(h *float64) float64 {
	if h != nil && *h > 0 {
		return *h
	}
	return model.DefaultBookingHours
}
