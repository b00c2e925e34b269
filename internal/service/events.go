package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
)

// maxSlugSuffix bounds the -2, -3, ... probing before a random suffix is used.
const maxSlugSuffix = 50

// EventService manages events and triggers the publishing fan-out on
// status changes.
type EventService struct {
	d         *Deps
	workflow  *Workflow
	publisher *Publisher
}

func NewEventService(d *Deps, w *Workflow, p *Publisher) *EventService {
	return &EventService{d: d, workflow: w, publisher: p}
}

// EventDetail is an event with its line-up.
type EventDetail struct {
	model.Event
	Artists []model.EventArtist `json:"artists"`
}

// Slugify lowercases title and joins its letter and digit runs with '-'.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "event"
	}
	return b.String()
}

func (s *EventService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	slug := base
	for i := 2; i <= maxSlugSuffix+1; i++ {
		taken, err := s.d.Events.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

// Create validates and stores a new event for the caller.  An event at
// one of the caller's own venues goes straight to SEEKING_ARTISTS; an
// event at someone else's venue requests that venue's approval.  Events
// at external venues stay in DRAFT.
func (s *EventService) Create(ctx context.Context, p model.Principal, in EventInput) (Result, error) {
	in.CreatorID = p.UserID
	if err := ValidateEvent(in, s.d.now()).err(); err != nil {
		return Result{}, err
	}
	if in.VenueID != nil && *in.VenueID != 0 {
		if _, err := s.d.Venues.GetByID(ctx, *in.VenueID); err != nil {
			return Result{}, notFound(err)
		}
	}

	e := model.Event{
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		CreatorUserID:    p.UserID,
		VenueID:          in.VenueID,
		ExternalVenue:    in.ExternalVenueName,
		ExternalAddress:  in.ExternalAddress,
		ExternalCity:     in.ExternalCity,
		ExternalContact:  in.ExternalContact,
		EventDate:        in.EventDate,
		EndDate:          in.EndDate,
		TotalHours:       in.TotalHours,
		TotalBudgetCents: in.TotalBudgetCents,
		IsPublic:         in.IsPublic,
		Status:           model.EventDraft,
	}
	if e.HasInternalVenue() && p.OwnsVenue(*e.VenueID) {
		e.Status = model.EventSeekingArtists
	}

	for attempt := 0; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, e.Title)
		if err != nil {
			return Result{}, err
		}
		e.Slug = slug
		err = s.d.Events.Create(ctx, &e)
		if err == nil {
			break
		}
		// Lost a race for the slug; try the next suffix.
		if errors.Is(err, repository.ErrDuplicate) && attempt < 2 {
			continue
		}
		return Result{}, fmt.Errorf("create event: %w", err)
	}
	transitioned("event", string(e.Status))
	logger.WithContext(ctx).Info("event created", "event_id", e.ID, "slug", e.Slug, "status", e.Status)

	if e.HasInternalVenue() && e.Status == model.EventDraft {
		res, err := s.workflow.RequestVenueApproval(ctx, p, e.ID, *e.VenueID)
		if err != nil {
			return Result{}, err
		}
		if !res.Success {
			logger.WithContext(ctx).Warn("venue approval request refused", "event_id", e.ID, "message", res.Message)
		}
		return Result{Success: true, Message: "Event created, venue approval requested", ID: e.ID}, nil
	}
	s.d.revalidate(ctx, e)
	return Result{Success: true, Message: "Event created", ID: e.ID}, nil
}

func terminal(st model.EventStatus) bool {
	return len(model.EventTransitions[st]) == 0
}

// Update applies a partial edit by the event's creator.
func (s *EventService) Update(ctx context.Context, p model.Principal, id uint64, patch repository.EventPatch) (Result, error) {
	e, err := s.d.loadEvent(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if e.CreatorUserID != p.UserID {
		return Result{}, ErrForbidden
	}
	if terminal(e.Status) {
		return rejected("update_event", fail(fmt.Sprintf("Cannot edit an event in status %s", e.Status))), nil
	}

	var errs []string
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if patch.EventDate != nil && !patch.EventDate.After(s.d.now()) {
		errs = append(errs, "Event date must be in the future")
	}
	if patch.TotalHours != nil && *patch.TotalHours <= 0 {
		errs = append(errs, "Total hours must be greater than 0")
	}
	if patch.TotalBudgetCents != nil && *patch.TotalBudgetCents <= 0 {
		errs = append(errs, "Total budget must be greater than 0")
	}
	if len(errs) > 0 {
		return Result{}, &ValidationError{Errors: errs}
	}
	if patch.Empty() {
		return ok("Nothing to update"), nil
	}

	if err := s.d.Events.Update(ctx, e.ID, patch); err != nil {
		return Result{}, notFound(err)
	}
	s.d.revalidate(ctx, e)
	return Result{Success: true, Message: "Event updated", ID: e.ID}, nil
}

// pullsBookings lists the statuses which, entered from PUBLISHED,
// withdraw the event's booking requests.
var pullsBookings = map[model.EventStatus]bool{
	model.EventDraft:          true,
	model.EventSeekingArtists: true,
	model.EventCancelled:      true,
}

// ChangeStatus moves an event along the transition table.  Entering
// PUBLISHED sends booking requests to the unconfirmed line-up; leaving
// PUBLISHED for DRAFT, SEEKING_ARTISTS or CANCELLED withdraws them.
func (s *EventService) ChangeStatus(ctx context.Context, p model.Principal, id uint64, to model.EventStatus) (Result, error) {
	if !to.Valid() {
		return Result{}, &ValidationError{Errors: []string{fmt.Sprintf("Unknown status %q", to)}}
	}
	e, err := s.d.loadEvent(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !isHost(p, e) {
		return Result{}, ErrForbidden
	}
	from := e.Status
	if from == to {
		return rejected("change_event_status", fail(fmt.Sprintf("Event is already %s", to))), nil
	}
	if !from.CanTransitionTo(to) {
		return rejected("change_event_status", fail(fmt.Sprintf("Cannot move event from %s to %s", from, to))), nil
	}
	if msg := venueGate(p, e, to); msg != "" {
		return rejected("change_event_status", fail(msg)), nil
	}
	if to == model.EventPublished && e.EventDate == nil {
		return rejected("change_event_status", fail("Event date is required to publish")), nil
	}

	changed, err := s.d.Events.UpdateStatus(ctx, e.ID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("update event status: %w", err)
	}
	if !changed {
		return rejected("change_event_status", fail("Event status changed, please reload and retry")), nil
	}
	transitioned("event", string(to))
	log := logger.WithContext(ctx).With("event_id", e.ID, "from", from, "to", to)
	log.Info("event status changed")

	msg := fmt.Sprintf("Event is now %s", to)
	switch {
	case to == model.EventPublished:
		res, err := s.publisher.CreateBookingRequestsForEvent(ctx, e.ID)
		if err != nil {
			log.Error("booking fan-out failed", "error", err)
		} else {
			msg = fmt.Sprintf("%s, %d booking request(s) sent", msg, res.Created)
		}
	case from == model.EventPublished && pullsBookings[to]:
		res, err := s.publisher.CancelBookingRequestsForEvent(ctx, e.ID)
		if err != nil {
			log.Error("booking cancel fan-out failed", "error", err)
		} else if res.Cancelled > 0 {
			msg = fmt.Sprintf("%s, %d booking(s) cancelled", msg, res.Cancelled)
		}
	}
	s.d.revalidate(ctx, e)
	return Result{Success: true, Message: msg, ID: e.ID}, nil
}

// venueGate refuses the moves reserved for the venue approval workflow.
// Entering PENDING_VENUE_APPROVAL goes through RequestVenueApproval and
// leaving it through ApproveEvent or DeclineEvent, except to cancel.  An
// event at a venue the caller does not own cannot skip that approval.
func venueGate(p model.Principal, e model.Event, to model.EventStatus) string {
	if e.Status == model.EventPendingVenueApproval && to != model.EventCancelled {
		return "Event is awaiting venue approval"
	}
	if to == model.EventPendingVenueApproval {
		return "Use a venue request to ask for venue approval"
	}
	if !unapproved[e.Status] || (to != model.EventSeekingArtists && to != model.EventPublished) {
		return ""
	}
	if e.HasInternalVenue() && !p.OwnsVenue(*e.VenueID) {
		return "The venue has not approved this event"
	}
	return ""
}

// unapproved are the statuses an event holds before any venue approved it.
var unapproved = map[model.EventStatus]bool{
	model.EventDraft:        true,
	model.EventSeekingVenue: true,
}

// Delete removes an event that has no bookings or performances.
func (s *EventService) Delete(ctx context.Context, p model.Principal, id uint64) (Result, error) {
	e, err := s.d.loadEvent(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if e.CreatorUserID != p.UserID {
		return Result{}, ErrForbidden
	}
	if err := s.d.Events.Delete(ctx, e.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return rejected("delete_event", fail("Cannot delete an event that has bookings or performances")), nil
		}
		return Result{}, notFound(err)
	}
	s.d.revalidate(ctx, e)
	return Result{Success: true, Message: "Event deleted", ID: e.ID}, nil
}

// AddArtist puts an artist on the event's line-up.  On a published event
// the artist immediately receives a booking request.
func (s *EventService) AddArtist(ctx context.Context, p model.Principal, eventID, artistID uint64, feeCents *int64) (Result, error) {
	e, err := s.d.loadEvent(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if !isHost(p, e) {
		return Result{}, ErrForbidden
	}
	if feeCents != nil && *feeCents < 0 {
		return Result{}, &ValidationError{Errors: []string{"Fee cannot be negative"}}
	}
	if _, err := s.d.Artists.GetByID(ctx, artistID); err != nil {
		return Result{}, notFound(err)
	}
	if terminal(e.Status) {
		return rejected("add_artist", fail(fmt.Sprintf("Cannot add artists to an event in status %s", e.Status))), nil
	}

	err = s.d.EventArtists.Add(ctx, model.EventArtist{EventID: e.ID, ArtistID: artistID, FeeCents: feeCents})
	if errors.Is(err, repository.ErrDuplicate) {
		return rejected("add_artist", fail("Artist is already on this event")), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("add artist: %w", err)
	}

	msg := "Artist added"
	if e.Status == model.EventPublished {
		res, err := s.publisher.CreateBookingRequestForArtist(ctx, e.ID, artistID)
		if err != nil {
			logger.WithContext(ctx).Error("single-artist fan-out failed", "event_id", e.ID, "artist_id", artistID, "error", err)
		} else if res.Created > 0 {
			msg = "Artist added, booking request sent"
		}
	}
	s.d.revalidate(ctx, e)
	return Result{Success: true, Message: msg, ID: e.ID}, nil
}

func (s *EventService) detail(ctx context.Context, e model.Event) (EventDetail, error) {
	artists, err := s.d.EventArtists.ListByEvent(ctx, e.ID)
	if err != nil {
		return EventDetail{}, fmt.Errorf("list line-up: %w", err)
	}
	if artists == nil {
		artists = []model.EventArtist{}
	}
	return EventDetail{Event: e, Artists: artists}, nil
}

// Get returns an event to its host, to an artist on its line-up, or to
// anyone once it is publicly listed.
func (s *EventService) Get(ctx context.Context, p model.Principal, id uint64) (EventDetail, error) {
	e, err := s.d.loadEvent(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}
	if !isHost(p, e) && !listed(e) {
		if p.ArtistID == nil {
			return EventDetail{}, ErrForbidden
		}
		if _, err := s.d.EventArtists.Get(ctx, e.ID, *p.ArtistID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return EventDetail{}, ErrForbidden
			}
			return EventDetail{}, err
		}
	}
	return s.detail(ctx, e)
}

// listed reports whether an event appears on the public pages.
func listed(e model.Event) bool {
	if !e.IsPublic {
		return false
	}
	switch e.Status {
	case model.EventPublished, model.EventConfirmed, model.EventCompleted:
		return true
	}
	return false
}

// GetPublic returns a publicly listed event by id.
func (s *EventService) GetPublic(ctx context.Context, id uint64) (EventDetail, error) {
	e, err := s.d.loadEvent(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}
	if !listed(e) {
		return EventDetail{}, ErrNotFound
	}
	return s.detail(ctx, e)
}

// GetBySlug returns a publicly listed event by slug.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (EventDetail, error) {
	e, err := s.d.Events.GetBySlug(ctx, slug)
	if err != nil {
		return EventDetail{}, notFound(err)
	}
	if !listed(e) {
		return EventDetail{}, ErrNotFound
	}
	return s.detail(ctx, e)
}

// ListPublic pages through upcoming public events.
func (s *EventService) ListPublic(ctx context.Context, limit, offset int) ([]model.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.d.Events.ListPublic(ctx, s.d.now(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}
