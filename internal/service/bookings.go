package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/mail"
	"github.com/iliyamo/stagebook/internal/model"
)

// BookingInput is a direct booking request from a venue to an artist.
type BookingInput struct {
	ArtistID  uint64
	VenueID   uint64
	EventDate *time.Time
	Hours     *float64
	Note      *string
}

// UnavailabilityInput declares a window in which the caller cannot play.
type UnavailabilityInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

// BookingService runs the booking lifecycle and artist availability.
type BookingService struct {
	d        *Deps
	notifier *NotificationService
	conflict *ConflictChecker
}

func NewBookingService(d *Deps, n *NotificationService, c *ConflictChecker) *BookingService {
	return &BookingService{d: d, notifier: n, conflict: c}
}

func validateBooking(in BookingInput, now time.Time) ValidationResult {
	var errs []string
	if in.ArtistID == 0 {
		errs = append(errs, "Artist ID is required")
	}
	if in.VenueID == 0 {
		errs = append(errs, "Venue ID is required")
	}
	if in.EventDate == nil || in.EventDate.IsZero() {
		errs = append(errs, "Event date is required")
	} else if !in.EventDate.After(now) {
		errs = append(errs, "Event date must be in the future")
	}
	if in.Hours != nil && *in.Hours <= 0 {
		errs = append(errs, "Hours must be greater than 0")
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// CreateBooking sends a PENDING booking request from one of the caller's
// venues to an artist.
func (s *BookingService) CreateBooking(ctx context.Context, p model.Principal, in BookingInput) (Result, error) {
	if err := validateBooking(in, s.d.now()).err(); err != nil {
		return Result{}, err
	}
	if !p.OwnsVenue(in.VenueID) {
		return Result{}, ErrForbidden
	}
	venue, err := s.d.Venues.GetByID(ctx, in.VenueID)
	if err != nil {
		return Result{}, notFound(err)
	}
	artist, err := s.d.Artists.GetByID(ctx, in.ArtistID)
	if err != nil {
		return Result{}, notFound(err)
	}

	b := model.Booking{
		ArtistID:  artist.ID,
		VenueID:   &venue.ID,
		EventDate: in.EventDate.UTC(),
		Hours:     in.Hours,
		Note:      in.Note,
		Status:    model.BookingPending,
	}
	if err := s.d.Bookings.Create(ctx, &b); err != nil {
		return Result{}, fmt.Errorf("create booking: %w", err)
	}
	transitioned("booking", string(model.BookingPending))

	action := s.d.link("/bookings/%d", b.ID)
	s.notifier.Notify(ctx, NotificationInput{
		UserID:    artist.UserID,
		Type:      model.NotifyBookingRequested,
		Title:     "New booking request",
		Message:   fmt.Sprintf("%s would like to book you on %s.", venue.Name, b.EventDate.Format(time.RFC1123)),
		ActionURL: action,
	})
	msg, err := mail.BookingRequest(artist.Email, mail.BookingRequestData{
		ArtistName: artist.Name,
		EventTitle: "Booking at " + venue.Name,
		EventDate:  b.EventDate,
		Hours:      hoursOrDefault(b.Hours),
		ActionURL:  *action,
	})
	if err != nil {
		logger.WithContext(ctx).Error("render booking request mail failed", "booking_id", b.ID, "error", err)
	} else {
		s.d.sendMail(ctx, msg)
	}
	return Result{Success: true, Message: "Booking request sent", ID: b.ID}, nil
}

// bookingHost returns the user answering for the venue side of a booking:
// the venue owner, or the event creator for external-venue event bookings.
func (s *BookingService) bookingHost(ctx context.Context, b model.Booking) (uint64, *model.Event, error) {
	var event *model.Event
	if b.EventID != nil {
		e, err := s.d.loadEvent(ctx, *b.EventID)
		if err != nil {
			return 0, nil, err
		}
		event = &e
	}
	if b.VenueID != nil {
		v, err := s.d.Venues.GetByID(ctx, *b.VenueID)
		if err != nil {
			return 0, event, notFound(err)
		}
		return v.OwnerUserID, event, nil
	}
	if event != nil {
		return event.CreatorUserID, event, nil
	}
	return 0, nil, nil
}

func (s *BookingService) artistBooking(ctx context.Context, p model.Principal, id uint64) (model.Booking, error) {
	b, err := s.d.Bookings.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	if !p.IsArtist(b.ArtistID) {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

// AcceptBooking lets the artist accept a PENDING booking when the slot
// does not collide with another accepted booking or an unavailability
// window.  Accepting an event booking confirms the artist on the event.
func (s *BookingService) AcceptBooking(ctx context.Context, p model.Principal, id uint64) (Result, error) {
	b, err := s.artistBooking(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if b.Status != model.BookingPending {
		return rejected("accept_booking", fail("Booking is not pending")), nil
	}
	conflict, err := s.conflict.HasConflict(ctx, b.ArtistID, b.EventDate, b.Hours, b.ID)
	if err != nil {
		return Result{}, err
	}
	if conflict {
		return rejected("accept_booking", fail("Artist has a scheduling conflict at this time")), nil
	}
	changed, err := s.d.Bookings.UpdateStatus(ctx, b.ID, model.BookingPending, model.BookingAccepted)
	if err != nil {
		return Result{}, fmt.Errorf("accept booking: %w", err)
	}
	if !changed {
		return rejected("accept_booking", fail("Booking is not pending")), nil
	}
	transitioned("booking", string(model.BookingAccepted))

	if b.EventID != nil {
		if err := s.d.EventArtists.SetConfirmed(ctx, *b.EventID, b.ArtistID, true); err != nil {
			return Result{}, fmt.Errorf("confirm line-up: %w", err)
		}
	}
	s.notifyHost(ctx, b, model.NotifyBookingAccepted, "Booking accepted", "accepted", "")
	return Result{Success: true, Message: "Booking accepted", ID: b.ID}, nil
}

// DeclineBooking lets the artist turn down a PENDING booking.
func (s *BookingService) DeclineBooking(ctx context.Context, p model.Principal, id uint64, reason string) (Result, error) {
	b, err := s.artistBooking(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if b.Status != model.BookingPending {
		return rejected("decline_booking", fail("Booking is not pending")), nil
	}
	changed, err := s.d.Bookings.UpdateStatus(ctx, b.ID, model.BookingPending, model.BookingDeclined)
	if err != nil {
		return Result{}, fmt.Errorf("decline booking: %w", err)
	}
	if !changed {
		return rejected("decline_booking", fail("Booking is not pending")), nil
	}
	transitioned("booking", string(model.BookingDeclined))

	s.notifyHost(ctx, b, model.NotifyBookingDeclined, "Booking declined", "declined", reason)
	return Result{Success: true, Message: "Booking declined", ID: b.ID}, nil
}

func (s *BookingService) notifyHost(ctx context.Context, b model.Booking, typ model.NotificationType, title, verb, reason string) {
	host, event, err := s.bookingHost(ctx, b)
	if err != nil {
		logger.WithContext(ctx).Warn("booking notification: host lookup failed", "booking_id", b.ID, "error", err)
		return
	}
	artist, err := s.d.Artists.GetByID(ctx, b.ArtistID)
	if err != nil {
		logger.WithContext(ctx).Warn("booking notification: artist lookup failed", "booking_id", b.ID, "error", err)
		return
	}
	what := "the booking on " + b.EventDate.Format(time.RFC1123)
	var eventID *uint64
	if event != nil {
		what = fmt.Sprintf("the booking for %q", event.Title)
		eventID = &event.ID
	}
	s.notifier.Notify(ctx, NotificationInput{
		UserID:    host,
		Type:      typ,
		Title:     title,
		Message:   withReason(fmt.Sprintf("%s %s %s.", artist.Name, verb, what), reason),
		EventID:   eventID,
		ActionURL: s.d.link("/bookings/%d", b.ID),
	})
}

// CancelBooking withdraws a PENDING booking.  The venue owner may cancel
// any booking at their venue; the event creator may cancel bookings of
// their event.
func (s *BookingService) CancelBooking(ctx context.Context, p model.Principal, id uint64, reason string) (Result, error) {
	b, err := s.d.Bookings.GetByID(ctx, id)
	if err != nil {
		return Result{}, notFound(err)
	}
	host, event, err := s.bookingHost(ctx, b)
	if err != nil {
		return Result{}, err
	}
	allowed := host == p.UserID ||
		(b.VenueID != nil && p.OwnsVenue(*b.VenueID)) ||
		(event != nil && event.CreatorUserID == p.UserID)
	if !allowed {
		return Result{}, ErrForbidden
	}
	if b.Status != model.BookingPending {
		return rejected("cancel_booking", fail("Only pending bookings can be cancelled")), nil
	}
	changed, err := s.d.Bookings.UpdateStatus(ctx, b.ID, model.BookingPending, model.BookingCancelled)
	if err != nil {
		return Result{}, fmt.Errorf("cancel booking: %w", err)
	}
	if !changed {
		return rejected("cancel_booking", fail("Only pending bookings can be cancelled")), nil
	}
	transitioned("booking", string(model.BookingCancelled))

	artist, err := s.d.Artists.GetByID(ctx, b.ArtistID)
	if err != nil {
		logger.WithContext(ctx).Warn("booking cancel: artist lookup failed", "booking_id", b.ID, "error", err)
		return Result{Success: true, Message: "Booking cancelled", ID: b.ID}, nil
	}
	title := "your booking"
	var eventID *uint64
	if event != nil {
		title = event.Title
		eventID = &event.ID
	}
	s.notifier.Notify(ctx, NotificationInput{
		UserID:    artist.UserID,
		Type:      model.NotifyBookingCancelled,
		Title:     "Booking cancelled",
		Message:   withReason(fmt.Sprintf("The booking on %s was cancelled.", b.EventDate.Format(time.RFC1123)), reason),
		EventID:   eventID,
		ActionURL: s.d.link("/bookings/%d", b.ID),
	})
	msg, err := mail.BookingCancelled(artist.Email, mail.BookingCancelledData{
		ArtistName: artist.Name,
		EventTitle: title,
		EventDate:  b.EventDate,
		Reason:     strings.TrimSpace(reason),
	})
	if err != nil {
		logger.WithContext(ctx).Error("render booking cancelled mail failed", "booking_id", b.ID, "error", err)
	} else {
		s.d.sendMail(ctx, msg)
	}
	return Result{Success: true, Message: "Booking cancelled", ID: b.ID}, nil
}

// ListBookings returns the caller's bookings: an artist's own, or those
// at the caller's venues and events.
func (s *BookingService) ListBookings(ctx context.Context, p model.Principal) ([]model.Booking, error) {
	var (
		out []model.Booking
		err error
	)
	if p.ArtistID != nil {
		out, err = s.d.Bookings.ListForArtist(ctx, *p.ArtistID)
	} else {
		out, err = s.d.Bookings.ListForHost(ctx, p.UserID, p.VenueIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if out == nil {
		out = []model.Booking{}
	}
	return out, nil
}

// AddUnavailability records a window in which the calling artist cannot
// be booked.
func (s *BookingService) AddUnavailability(ctx context.Context, p model.Principal, in UnavailabilityInput) (model.ArtistUnavailability, error) {
	if p.ArtistID == nil {
		return model.ArtistUnavailability{}, ErrForbidden
	}
	var errs []string
	if in.StartDate.IsZero() {
		errs = append(errs, "Start date is required")
	}
	if in.EndDate.IsZero() {
		errs = append(errs, "End date is required")
	}
	if len(errs) == 0 && !in.EndDate.After(in.StartDate) {
		errs = append(errs, "End date must be after start date")
	}
	if len(errs) > 0 {
		return model.ArtistUnavailability{}, &ValidationError{Errors: errs}
	}

	u := model.ArtistUnavailability{
		ArtistID:  *p.ArtistID,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
		Reason:    in.Reason,
	}
	if err := s.d.Unavailability.Create(ctx, &u); err != nil {
		return model.ArtistUnavailability{}, fmt.Errorf("create unavailability: %w", err)
	}
	return u, nil
}

// ListUnavailability returns the calling artist's windows.
func (s *BookingService) ListUnavailability(ctx context.Context, p model.Principal) ([]model.ArtistUnavailability, error) {
	if p.ArtistID == nil {
		return nil, ErrForbidden
	}
	out, err := s.d.Unavailability.ListByArtist(ctx, *p.ArtistID)
	if err != nil {
		return nil, fmt.Errorf("list unavailability: %w", err)
	}
	if out == nil {
		out = []model.ArtistUnavailability{}
	}
	return out, nil
}

// DeleteUnavailability removes one of the calling artist's windows.
func (s *BookingService) DeleteUnavailability(ctx context.Context, p model.Principal, id uint64) error {
	u, err := s.d.Unavailability.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if !p.IsArtist(u.ArtistID) {
		return ErrForbidden
	}
	if err := s.d.Unavailability.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}
