package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/stagebook/internal/logger"
	"github.com/iliyamo/stagebook/internal/metrics"
	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
)

// Workflow drives event venue approval and performance requests.
type Workflow struct {
	d        *Deps
	notifier *NotificationService
}

func NewWorkflow(d *Deps, n *NotificationService) *Workflow {
	return &Workflow{d: d, notifier: n}
}

// Approvals is what currently waits on a host's decision.
type Approvals struct {
	Events       []model.Event       `json:"events"`
	Performances []model.Performance `json:"performances"`
}

func transitioned(entity, to string) {
	metrics.Transitions.WithLabelValues(entity, to).Inc()
}

func rejected(op string, r Result) Result {
	metrics.Rejections.WithLabelValues(op).Inc()
	return r
}

func withReason(msg, reason string) string {
	if reason = strings.TrimSpace(reason); reason != "" {
		return msg + " Reason: " + reason
	}
	return msg
}

// RequestVenueApproval links a DRAFT or SEEKING_VENUE event to a venue
// and asks its owner to host it.
func (w *Workflow) RequestVenueApproval(ctx context.Context, p model.Principal, eventID, venueID uint64) (Result, error) {
	e, err := w.d.loadEvent(ctx, eventID)
	if err != nil {
		return Result{}, err
	}
	if e.CreatorUserID != p.UserID {
		return Result{}, ErrForbidden
	}
	venue, err := w.d.Venues.GetByID(ctx, venueID)
	if err != nil {
		return Result{}, notFound(err)
	}
	if e.Status != model.EventDraft && e.Status != model.EventSeekingVenue {
		return rejected("request_venue_approval",
			fail(fmt.Sprintf("Cannot request venue approval for an event in status %s", e.Status))), nil
	}

	changed, err := w.d.Events.AssignVenue(ctx, e.ID, venue.ID, e.Status, model.EventPendingVenueApproval)
	if err != nil {
		return Result{}, fmt.Errorf("assign venue: %w", err)
	}
	if !changed {
		return rejected("request_venue_approval", fail("Event status changed, please reload and retry")), nil
	}
	transitioned("event", string(model.EventPendingVenueApproval))

	w.notifier.Notify(ctx, NotificationInput{
		UserID:    venue.OwnerUserID,
		Type:      model.NotifyEventApprovalRequested,
		Title:     "Venue approval requested",
		Message:   fmt.Sprintf("%q would like to be held at %s.", e.Title, venue.Name),
		EventID:   &e.ID,
		ActionURL: w.d.link("/approvals"),
	})
	w.d.revalidate(ctx, e)
	return ok("Venue approval requested"), nil
}

// ApproveEvent accepts a pending event at the caller's venue and opens
// it for artists.
func (w *Workflow) ApproveEvent(ctx context.Context, p model.Principal, eventID uint64) (Result, error) {
	e, err := w.venueDecision(ctx, p, eventID)
	if err != nil {
		return Result{}, err
	}
	if e.Status != model.EventPendingVenueApproval {
		return rejected("approve_event", fail("Event is not awaiting venue approval")), nil
	}
	changed, err := w.d.Events.UpdateStatus(ctx, e.ID, model.EventPendingVenueApproval, model.EventSeekingArtists)
	if err != nil {
		return Result{}, fmt.Errorf("approve event: %w", err)
	}
	if !changed {
		return rejected("approve_event", fail("Event is not awaiting venue approval")), nil
	}
	transitioned("event", string(model.EventSeekingArtists))

	w.notifier.Notify(ctx, NotificationInput{
		UserID:    e.CreatorUserID,
		Type:      model.NotifyEventApproved,
		Title:     "Event approved",
		Message:   fmt.Sprintf("The venue approved %q. You can now line up artists.", e.Title),
		EventID:   &e.ID,
		ActionURL: w.d.link("/events/%d", e.ID),
	})
	w.d.revalidate(ctx, e)
	return ok("Event approved"), nil
}

// DeclineEvent refuses a pending event at the caller's venue and cancels it.
func (w *Workflow) DeclineEvent(ctx context.Context, p model.Principal, eventID uint64, reason string) (Result, error) {
	e, err := w.venueDecision(ctx, p, eventID)
	if err != nil {
		return Result{}, err
	}
	if e.Status != model.EventPendingVenueApproval {
		return rejected("decline_event", fail("Event is not awaiting venue approval")), nil
	}
	changed, err := w.d.Events.UpdateStatus(ctx, e.ID, model.EventPendingVenueApproval, model.EventCancelled)
	if err != nil {
		return Result{}, fmt.Errorf("decline event: %w", err)
	}
	if !changed {
		return rejected("decline_event", fail("Event is not awaiting venue approval")), nil
	}
	transitioned("event", string(model.EventCancelled))

	w.notifier.Notify(ctx, NotificationInput{
		UserID:    e.CreatorUserID,
		Type:      model.NotifyEventDeclined,
		Title:     "Event declined",
		Message:   withReason(fmt.Sprintf("The venue declined to host %q.", e.Title), reason),
		EventID:   &e.ID,
		ActionURL: w.d.link("/events/%d", e.ID),
	})
	w.d.revalidate(ctx, e)
	return ok("Event declined"), nil
}

// venueDecision loads an event and checks that p owns its venue.
func (w *Workflow) venueDecision(ctx context.Context, p model.Principal, eventID uint64) (model.Event, error) {
	e, err := w.d.loadEvent(ctx, eventID)
	if err != nil {
		return model.Event{}, err
	}
	if !e.HasInternalVenue() || !p.OwnsVenue(*e.VenueID) {
		return model.Event{}, ErrForbidden
	}
	return e, nil
}

var openForPerformers = map[model.EventStatus]bool{
	model.EventDraft:                true,
	model.EventSeekingArtists:       true,
	model.EventPendingVenueApproval: true,
}

// ApplyForPerformance opens a PENDING performance.  An artist applying
// for themselves creates an application; the event's host naming an
// artist creates an invitation.
func (w *Workflow) ApplyForPerformance(ctx context.Context, p model.Principal, in PerformanceInput) (Result, error) {
	if err := ValidatePerformance(in).err(); err != nil {
		return Result{}, err
	}
	e, err := w.d.loadEvent(ctx, in.EventID)
	if err != nil {
		return Result{}, err
	}
	artist, err := w.d.Artists.GetByID(ctx, in.ArtistID)
	if err != nil {
		return Result{}, notFound(err)
	}

	var initiator model.Initiator
	switch {
	case p.IsArtist(in.ArtistID):
		initiator = model.InitiatedByArtist
	case isHost(p, e):
		initiator = model.InitiatedByVenue
	default:
		return Result{}, ErrForbidden
	}

	if !openForPerformers[e.Status] {
		return rejected("apply_performance", fail("Event is not accepting performers")), nil
	}
	if _, err := w.d.Performances.GetByEventAndArtist(ctx, e.ID, artist.ID); err == nil {
		return rejected("apply_performance", fail("Artist already applied for this event")), nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, fmt.Errorf("lookup performance: %w", err)
	}

	perf := model.Performance{
		EventID:          e.ID,
		ArtistID:         artist.ID,
		Status:           model.PerformancePending,
		ProposedFeeCents: in.ProposedFeeCents,
		AgreedFeeCents:   in.AgreedFeeCents,
		Hours:            in.Hours,
		InitiatedBy:      initiator,
	}
	if initiator == model.InitiatedByArtist {
		perf.ArtistNotes = in.Notes
	} else {
		perf.VenueNotes = in.Notes
	}
	if err := w.d.Performances.Create(ctx, &perf); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return rejected("apply_performance", fail("Artist already applied for this event")), nil
		}
		return Result{}, fmt.Errorf("create performance: %w", err)
	}
	transitioned("performance", string(model.PerformancePending))

	if initiator == model.InitiatedByArtist {
		host, err := w.d.hostUser(ctx, e)
		if err != nil {
			logger.WithContext(ctx).Warn("performance application: host lookup failed", "event_id", e.ID, "error", err)
		}
		w.notifier.Notify(ctx, NotificationInput{
			UserID:        host,
			Type:          model.NotifyPerformanceApplication,
			Title:         "New performance application",
			Message:       fmt.Sprintf("%s applied to perform at %q.", artist.Name, e.Title),
			EventID:       &e.ID,
			PerformanceID: &perf.ID,
			ActionURL:     w.d.link("/approvals"),
		})
		return Result{Success: true, Message: "Application submitted", ID: perf.ID}, nil
	}

	w.notifier.Notify(ctx, NotificationInput{
		UserID:        artist.UserID,
		Type:          model.NotifyPerformanceInvitation,
		Title:         "Performance invitation",
		Message:       fmt.Sprintf("You have been invited to perform at %q.", e.Title),
		EventID:       &e.ID,
		PerformanceID: &perf.ID,
		ActionURL:     w.d.link("/performances/%d", perf.ID),
	})
	return Result{Success: true, Message: "Invitation sent", ID: perf.ID}, nil
}

// performanceParty says on which side of a performance p stands.
type performanceParty int

const (
	partyNone performanceParty = iota
	partyHost
	partyArtist
)

func (w *Workflow) loadPerformance(ctx context.Context, p model.Principal, id uint64) (model.Performance, model.Event, performanceParty, error) {
	perf, err := w.d.Performances.GetByID(ctx, id)
	if err != nil {
		return model.Performance{}, model.Event{}, partyNone, notFound(err)
	}
	e, err := w.d.loadEvent(ctx, perf.EventID)
	if err != nil {
		return model.Performance{}, model.Event{}, partyNone, err
	}
	switch {
	case isHost(p, e):
		return perf, e, partyHost, nil
	case p.IsArtist(perf.ArtistID):
		return perf, e, partyArtist, nil
	}
	return perf, e, partyNone, nil
}

// canDecide reports whether party may approve or decline perf.  Hosts
// decide on everything; artists only answer invitations.
func canDecide(party performanceParty, perf model.Performance) bool {
	return party == partyHost || (party == partyArtist && perf.InitiatedBy == model.InitiatedByVenue)
}

// notifyCounterpart sends n to the other side of a performance.
func (w *Workflow) notifyCounterpart(ctx context.Context, party performanceParty, perf model.Performance, e model.Event, n NotificationInput) {
	n.EventID = &e.ID
	n.PerformanceID = &perf.ID
	if party == partyArtist {
		host, err := w.d.hostUser(ctx, e)
		if err != nil {
			logger.WithContext(ctx).Warn("performance notification: host lookup failed", "event_id", e.ID, "error", err)
			return
		}
		n.UserID = host
		n.ActionURL = w.d.link("/events/%d", e.ID)
	} else {
		artist, err := w.d.Artists.GetByID(ctx, perf.ArtistID)
		if err != nil {
			logger.WithContext(ctx).Warn("performance notification: artist lookup failed", "artist_id", perf.ArtistID, "error", err)
			return
		}
		n.UserID = artist.UserID
		n.ActionURL = w.d.link("/performances/%d", perf.ID)
	}
	w.notifier.Notify(ctx, n)
}

// ApprovePerformance confirms a PENDING performance.  The agreed fee
// defaults to the proposed fee and the artist joins the confirmed line-up.
func (w *Workflow) ApprovePerformance(ctx context.Context, p model.Principal, id uint64, notes *string) (Result, error) {
	perf, e, party, err := w.loadPerformance(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if !canDecide(party, perf) {
		return Result{}, ErrForbidden
	}
	if perf.Status != model.PerformancePending {
		return rejected("approve_performance", fail("Performance is not pending")), nil
	}

	patch := repository.PerformancePatch{AgreedFeeCents: perf.AgreedFeeCents}
	if patch.AgreedFeeCents == nil {
		patch.AgreedFeeCents = perf.ProposedFeeCents
	}
	if party == partyHost {
		patch.VenueNotes = notes
	} else {
		patch.ArtistNotes = notes
	}
	changed, err := w.d.Performances.Transition(ctx, perf.ID, model.PerformancePending, model.PerformanceConfirmed, patch)
	if err != nil {
		return Result{}, fmt.Errorf("approve performance: %w", err)
	}
	if !changed {
		return rejected("approve_performance", fail("Performance is not pending")), nil
	}
	transitioned("performance", string(model.PerformanceConfirmed))

	if err := w.d.EventArtists.SetConfirmed(ctx, e.ID, perf.ArtistID, true); err != nil {
		return Result{}, fmt.Errorf("confirm line-up: %w", err)
	}

	w.notifyCounterpart(ctx, party, perf, e, NotificationInput{
		Type:    model.NotifyPerformanceApproved,
		Title:   "Performance confirmed",
		Message: fmt.Sprintf("The performance at %q is confirmed.", e.Title),
	})
	w.d.revalidate(ctx, e)
	return Result{Success: true, Message: "Performance approved", ID: perf.ID}, nil
}

// DeclinePerformance refuses a PENDING performance.
func (w *Workflow) DeclinePerformance(ctx context.Context, p model.Principal, id uint64, reason string) (Result, error) {
	perf, e, party, err := w.loadPerformance(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if !canDecide(party, perf) {
		return Result{}, ErrForbidden
	}
	if perf.Status != model.PerformancePending {
		return rejected("decline_performance", fail("Performance is not pending")), nil
	}

	var patch repository.PerformancePatch
	if r := strings.TrimSpace(reason); r != "" {
		if party == partyHost {
			patch.VenueNotes = &r
		} else {
			patch.ArtistNotes = &r
		}
	}
	changed, err := w.d.Performances.Transition(ctx, perf.ID, model.PerformancePending, model.PerformanceDeclined, patch)
	if err != nil {
		return Result{}, fmt.Errorf("decline performance: %w", err)
	}
	if !changed {
		return rejected("decline_performance", fail("Performance is not pending")), nil
	}
	transitioned("performance", string(model.PerformanceDeclined))

	w.notifyCounterpart(ctx, party, perf, e, NotificationInput{
		Type:    model.NotifyPerformanceDeclined,
		Title:   "Performance declined",
		Message: withReason(fmt.Sprintf("The performance at %q was declined.", e.Title), reason),
	})
	return Result{Success: true, Message: "Performance declined", ID: perf.ID}, nil
}

// CancelPerformance withdraws a PENDING or CONFIRMED performance.  Either
// the host or the artist may cancel; the other side is notified.
func (w *Workflow) CancelPerformance(ctx context.Context, p model.Principal, id uint64, reason string) (Result, error) {
	perf, e, party, err := w.loadPerformance(ctx, p, id)
	if err != nil {
		return Result{}, err
	}
	if party == partyNone {
		return Result{}, ErrForbidden
	}
	if !perf.Status.CanTransitionTo(model.PerformanceCancelled) {
		return rejected("cancel_performance", fail("Performance can no longer be cancelled")), nil
	}

	var patch repository.PerformancePatch
	if r := strings.TrimSpace(reason); r != "" {
		if party == partyHost {
			patch.VenueNotes = &r
		} else {
			patch.ArtistNotes = &r
		}
	}
	changed, err := w.d.Performances.Transition(ctx, perf.ID, perf.Status, model.PerformanceCancelled, patch)
	if err != nil {
		return Result{}, fmt.Errorf("cancel performance: %w", err)
	}
	if !changed {
		return rejected("cancel_performance", fail("Performance status changed, please reload and retry")), nil
	}
	transitioned("performance", string(model.PerformanceCancelled))

	if perf.Status == model.PerformanceConfirmed {
		if err := w.d.EventArtists.SetConfirmed(ctx, e.ID, perf.ArtistID, false); err != nil {
			return Result{}, fmt.Errorf("unconfirm line-up: %w", err)
		}
	}

	msg := fmt.Sprintf("The performance at %q was cancelled by the venue.", e.Title)
	if party == partyArtist {
		msg = fmt.Sprintf("The artist withdrew from %q.", e.Title)
	}
	w.notifyCounterpart(ctx, party, perf, e, NotificationInput{
		Type:    model.NotifyPerformanceCancelled,
		Title:   "Performance cancelled",
		Message: withReason(msg, reason),
	})
	w.d.revalidate(ctx, e)
	return Result{Success: true, Message: "Performance cancelled", ID: perf.ID}, nil
}

// PendingApprovals lists events awaiting approval at the caller's venues
// and pending performances on events the caller hosts.
func (w *Workflow) PendingApprovals(ctx context.Context, p model.Principal) (Approvals, error) {
	out := Approvals{Events: []model.Event{}, Performances: []model.Performance{}}
	events, err := w.d.Events.ListPendingForVenues(ctx, p.VenueIDs)
	if err != nil {
		return Approvals{}, fmt.Errorf("list pending events: %w", err)
	}
	if events != nil {
		out.Events = events
	}
	perfs, err := w.d.Performances.ListPendingForHost(ctx, p.UserID, p.VenueIDs)
	if err != nil {
		return Approvals{}, fmt.Errorf("list pending performances: %w", err)
	}
	if perfs != nil {
		out.Performances = perfs
	}
	return out, nil
}
