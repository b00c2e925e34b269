package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/mail"
	"github.com/iliyamo/stagebook/internal/metrics"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
)

// FanoutResult counts what one fan-out pass did.
type FanoutResult struct {
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

// Publisher turns a published event into booking requests for its
// line-up and withdraws them when the event is pulled.
type Publisher struct {
	d        *Deps
	notifier *NotificationService
}

func NewPublisher(d *Deps, n *NotificationService) *Publisher {
	return &Publisher{d: d, notifier: n}
}

// CreateBookingRequestsForEvent creates a PENDING booking for every
// unconfirmed artist of a published event.  Artists that already hold a
// booking for the event are skipped, so running it twice creates nothing
// the second time.  A failure for one artist does not stop the others.
func (pb *Publisher) CreateBookingRequestsForEvent(ctx context.Context, eventID uint64) (FanoutResult, error) {
	e, venueName, err := pb.publishedEvent(ctx, eventID)
	if err != nil {
		return FanoutResult{}, err
	}
	lineup, err := pb.d.EventArtists.ListUnconfirmed(ctx, e.ID)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("list unconfirmed artists: %w", err)
	}

	var res FanoutResult
	for _, ea := range lineup {
		pb.requestOne(ctx, e, venueName, ea.ArtistID, &res)
	}
	logger.WithContext(ctx).Info("booking fan-out done",
		"event_id", e.ID, "created", res.Created, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// CreateBookingRequestForArtist is CreateBookingRequestsForEvent for a
// single artist added after the event was published.
func (pb *Publisher) CreateBookingRequestForArtist(ctx context.Context, eventID, artistID uint64) (FanoutResult, error) {
	e, venueName, err := pb.publishedEvent(ctx, eventID)
	if err != nil {
		return FanoutResult{}, err
	}
	var res FanoutResult
	pb.requestOne(ctx, e, venueName, artistID, &res)
	return res, nil
}

func (pb *Publisher) publishedEvent(ctx context.Context, eventID uint64) (model.Event, string, error) {
	e, err := pb.d.loadEvent(ctx, eventID)
	if err != nil {
		return model.Event{}, "", err
	}
	if e.Status != model.EventPublished {
		return model.Event{}, "", fmt.Errorf("event %d is %s, not published", e.ID, e.Status)
	}
	if e.EventDate == nil {
		return model.Event{}, "", fmt.Errorf("event %d has no date", e.ID)
	}

	var venueName string
	if e.HasInternalVenue() {
		v, err := pb.d.Venues.GetByID(ctx, *e.VenueID)
		if err != nil {
			return model.Event{}, "", fmt.Errorf("load venue: %w", notFound(err))
		}
		venueName = v.Name
	} else if e.ExternalVenue != nil {
		venueName = *e.ExternalVenue
	}
	return e, venueName, nil
}

func (pb *Publisher) requestOne(ctx context.Context, e model.Event, venueName string, artistID uint64, res *FanoutResult) {
	log := logger.WithContext(ctx).With(slog.Uint64("event_id", e.ID), slog.Uint64("artist_id", artistID))

	exists, err := pb.d.Bookings.ExistsForArtistAndEvent(ctx, artistID, e.ID)
	if err != nil {
		log.Error("fan-out: booking lookup failed", "error", err)
		pb.count(res, "failed")
		return
	}
	if exists {
		pb.count(res, "skipped")
		return
	}
	artist, err := pb.d.Artists.GetByID(ctx, artistID)
	if err != nil {
		log.Error("fan-out: artist lookup failed", "error", err)
		pb.count(res, "failed")
		return
	}

	note := fmt.Sprintf("Booking request for %q", e.Title)
	if venueName != "" {
		note += " at " + venueName
	}
	b := model.Booking{
		ArtistID:  artist.ID,
		VenueID:   e.VenueID,
		EventID:   &e.ID,
		EventDate: *e.EventDate,
		Hours:     e.TotalHours,
		Note:      &note,
		Status:    model.BookingPending,
	}
	if err := pb.d.Bookings.Create(ctx, &b); err != nil {
		log.Error("fan-out: create booking failed", "error", err)
		pb.count(res, "failed")
		return
	}
	pb.count(res, "created")
	transitioned("booking", string(model.BookingPending))

	action := pb.d.link("/bookings/%d", b.ID)
	pb.notifier.Notify(ctx, NotificationInput{
		UserID:    artist.UserID,
		Type:      model.NotifyBookingRequested,
		Title:     "New booking request",
		Message:   note + ".",
		EventID:   &e.ID,
		ActionURL: action,
	})

	msg, err := mail.BookingRequest(artist.Email, mail.BookingRequestData{
		ArtistName: artist.Name,
		EventTitle: e.Title,
		VenueName:  venueName,
		EventDate:  b.EventDate,
		Hours:      hoursOrDefault(b.Hours),
		ActionURL:  *action,
	})
	if err != nil {
		log.Error("fan-out: render booking request mail failed", "error", err)
		return
	}
	pb.d.sendMail(ctx, msg)
}

func (pb *Publisher) count(res *FanoutResult, outcome string) {
	switch outcome {
	case "created":
		res.Created++
	case "skipped":
		res.Skipped++
	case "failed":
		res.Failed++
	}
	metrics.FanoutBookings.WithLabelValues("create", outcome).Inc()
}

// CancelBookingRequestsForEvent cancels every PENDING or ACCEPTED booking
// of an event in one update, clears the confirmed flag of its whole
// line-up and mails each affected artist.  A missing event or one without
// active bookings is a no-op.
func (pb *Publisher) CancelBookingRequestsForEvent(ctx context.Context, eventID uint64) (FanoutResult, error) {
	e, err := pb.d.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return FanoutResult{}, nil
		}
		return FanoutResult{}, fmt.Errorf("load event: %w", err)
	}
	active, err := pb.d.Bookings.ListByEvent(ctx, e.ID, model.BookingPending, model.BookingAccepted)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("list active bookings: %w", err)
	}
	if len(active) == 0 {
		return FanoutResult{}, nil
	}

	ids := make([]uint64, 0, len(active))
	for _, b := range active {
		ids = append(ids, b.ID)
	}
	n, err := pb.d.Bookings.CancelActive(ctx, ids)
	if err != nil {
		return FanoutResult{}, fmt.Errorf("cancel bookings: %w", err)
	}
	if err := pb.d.EventArtists.ResetConfirmed(ctx, e.ID); err != nil {
		return FanoutResult{}, fmt.Errorf("reset line-up: %w", err)
	}
	metrics.FanoutBookings.WithLabelValues("cancel", "cancelled").Add(float64(n))
	metrics.Transitions.WithLabelValues("booking", string(model.BookingCancelled)).Add(float64(n))

	reason := fmt.Sprintf("The event is now %s.", e.Status)
	for _, b := range active {
		pb.notifyCancelled(ctx, e, b, reason)
	}
	logger.WithContext(ctx).Info("booking cancel fan-out done", "event_id", e.ID, "cancelled", n)
	return FanoutResult{Cancelled: int(n)}, nil
}

func (pb *Publisher) notifyCancelled(ctx context.Context, e model.Event, b model.Booking, reason string) {
	artist, err := pb.d.Artists.GetByID(ctx, b.ArtistID)
	if err != nil {
		logger.WithContext(ctx).Warn("cancel fan-out: artist lookup failed", "artist_id", b.ArtistID, "error", err)
		return
	}
	pb.notifier.Notify(ctx, NotificationInput{
		UserID:    artist.UserID,
		Type:      model.NotifyBookingCancelled,
		Title:     "Booking cancelled",
		Message:   withReason(fmt.Sprintf("Your booking for %q was cancelled.", e.Title), reason),
		EventID:   &e.ID,
		ActionURL: pb.d.link("/bookings/%d", b.ID),
	})
	msg, err := mail.BookingCancelled(artist.Email, mail.BookingCancelledData{
		ArtistName: artist.Name,
		EventTitle: e.Title,
		EventDate:  b.EventDate,
		Reason:     reason,
	})
	if err != nil {
		logger.WithContext(ctx).Error("cancel fan-out: render mail failed", "artist_id", artist.ID, "error", err)
		return
	}
	pb.d.sendMail(ctx, msg)
}
