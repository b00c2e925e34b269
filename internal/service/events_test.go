package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/repository"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Friday Session":          "friday-session",
		"  Jazz & Blues -- Live ": "jazz-blues-live",
		"Café Noir 2025":          "café-noir-2025",
		"!!!":                     "event",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func eventInput(venueID *uint64) EventInput {
	date := testNow.Add(10 * 24 * time.Hour)
	in := EventInput{Title: "Friday Session", EventDate: &date, VenueID: venueID, IsPublic: true}
	if venueID == nil {
		in.ExternalVenueName = ptr("Warehouse 9")
	}
	return in
}

func TestCreateEventSlugs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		res, err := f.events.Create(ctx, f.creator, eventInput(nil))
		require.NoError(t, err)
		require.True(t, res.Success)
		slugs = append(slugs, f.event(res.ID).Slug)
	}
	assert.Equal(t, []string{"friday-session", "friday-session-2", "friday-session-3"}, slugs)
}

func TestCreateEventRoutesByVenue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	own, err := f.events.Create(ctx, f.venueOwner, eventInput(&f.venue.ID))
	require.NoError(t, err)
	assert.Equal(t, model.EventSeekingArtists, f.event(own.ID).Status)

	other, err := f.events.Create(ctx, f.creator, eventInput(&f.venue.ID))
	require.NoError(t, err)
	assert.Equal(t, model.EventPendingVenueApproval, f.event(other.ID).Status)
	requests := f.notificationsFor(f.venueOwner.UserID)
	require.Len(t, requests, 1)
	assert.Equal(t, model.NotifyEventApprovalRequested, requests[0].Type)

	external, err := f.events.Create(ctx, f.creator, eventInput(nil))
	require.NoError(t, err)
	assert.Equal(t, model.EventDraft, f.event(external.ID).Status)

	missing := uint64(9999)
	_, err = f.events.Create(ctx, f.creator, eventInput(&missing))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture()
	_, err := f.events.Create(context.Background(), f.creator, EventInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "Title is required")
	assert.NotContains(t, verr.Errors, "Creator ID is required", "the caller is the creator")
	assert.Empty(t, f.store.events)
}

func TestPublishFansOutOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventSeekingArtists, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA, f.artistB)

	res, err := f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "2 booking request(s) sent")
	assert.Len(t, f.store.bookings, 2)

	res, err = f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, f.store.bookings, 2)

	_, err = f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventSeekingArtists)
	require.NoError(t, err)
	for _, b := range f.store.bookings {
		assert.Equal(t, model.BookingCancelled, b.Status)
	}

	res, err = f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "2 booking request(s) sent", "pulled requests are sent again")
	pending := 0
	for _, b := range f.store.bookings {
		if b.Status == model.BookingPending {
			pending++
		}
	}
	assert.Equal(t, 2, pending)
	assert.Len(t, f.store.bookings, 4)

	again, err := f.publisher.CreateBookingRequestsForEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, FanoutResult{Skipped: 2}, again)
}

func TestRepublishSkipsDeclinedArtists(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventSeekingArtists, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA)
	_, err := f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)
	for id, b := range f.store.bookings {
		b.Status = model.BookingDeclined
		f.store.bookings[id] = b
	}

	_, err = f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventSeekingArtists)
	require.NoError(t, err)
	res, err := f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Contains(t, res.Message, "0 booking request(s) sent")
	assert.Len(t, f.store.bookings, 1)
}

func TestChangeStatusLeavesVenueApprovalToWorkflow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		status model.EventStatus
		venue  *uint64
		caller model.Principal
		to     model.EventStatus
	}{
		{"creator approves own pending event", model.EventPendingVenueApproval, &f.venue.ID, f.creator, model.EventSeekingArtists},
		{"venue owner skips approve", model.EventPendingVenueApproval, &f.venue.ID, f.venueOwner, model.EventSeekingArtists},
		{"draft published at foreign venue", model.EventDraft, &f.venue.ID, f.creator, model.EventPublished},
		{"draft opened at foreign venue", model.EventDraft, &f.venue.ID, f.creator, model.EventSeekingArtists},
		{"seeking venue opened at foreign venue", model.EventSeekingVenue, &f.venue.ID, f.creator, model.EventSeekingArtists},
		{"external draft sent to approval", model.EventDraft, nil, f.creator, model.EventPendingVenueApproval},
		{"draft sent to approval without request", model.EventDraft, &f.venue.ID, f.creator, model.EventPendingVenueApproval},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := f.seedEvent(tc.status, f.creator.UserID, tc.venue)
			res, err := f.events.ChangeStatus(ctx, tc.caller, e.ID, tc.to)
			require.NoError(t, err)
			assert.False(t, res.Success)
			got := f.event(e.ID)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.venue, got.VenueID)
		})
	}
}

func TestChangeStatusAllowsApprovedOrOwnedVenues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	own := f.seedEvent(model.EventDraft, f.venueOwner.UserID, &f.venue.ID)
	res, err := f.events.ChangeStatus(ctx, f.venueOwner, own.ID, model.EventPublished)
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)

	external := f.seedEvent(model.EventDraft, f.creator.UserID, nil)
	res, err = f.events.ChangeStatus(ctx, f.creator, external.ID, model.EventPublished)
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)

	withdrawn := f.seedEvent(model.EventPendingVenueApproval, f.creator.UserID, &f.venue.ID)
	res, err = f.events.ChangeStatus(ctx, f.creator, withdrawn.ID, model.EventCancelled)
	require.NoError(t, err)
	assert.True(t, res.Success, "a pending event can still be called off")

	approved := f.seedEvent(model.EventSeekingArtists, f.creator.UserID, &f.venue.ID)
	res, err = f.events.ChangeStatus(ctx, f.creator, approved.ID, model.EventDraft)
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)
}

func TestChangeStatusGates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventCompleted, f.creator.UserID, &f.venue.ID)

	res, err := f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventDraft)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, model.EventCompleted, f.event(e.ID).Status)

	_, err = f.events.ChangeStatus(ctx, f.stranger, e.ID, model.EventCancelled)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventStatus("LIVE"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	undated := f.seedEvent(model.EventDraft, f.venueOwner.UserID, &f.venue.ID)
	undated.EventDate = nil
	f.store.events[undated.ID] = undated
	res, err = f.events.ChangeStatus(ctx, f.venueOwner, undated.ID, model.EventPublished)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Event date is required to publish", res.Message)
}

func TestConfirmingPublishedEventKeepsBookings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventSeekingArtists, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA)
	_, err := f.events.ChangeStatus(ctx, f.creator, e.ID, model.EventPublished)
	require.NoError(t, err)

	res, err := f.events.ChangeStatus(ctx, f.venueOwner, e.ID, model.EventConfirmed)
	require.NoError(t, err)
	require.True(t, res.Success)
	for _, b := range f.store.bookings {
		assert.Equal(t, model.BookingPending, b.Status)
	}
}

func TestUpdateEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventDraft, f.creator.UserID, &f.venue.ID)

	_, err := f.events.Update(ctx, f.venueOwner, e.ID, repository.EventPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.Update(ctx, f.creator, e.ID, repository.EventPatch{TotalHours: ptr(-1.0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	res, err := f.events.Update(ctx, f.creator, e.ID, repository.EventPatch{Title: ptr("Saturday Session"), TotalHours: ptr(3.5)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	got := f.event(e.ID)
	assert.Equal(t, "Saturday Session", got.Title)
	assert.Equal(t, 3.5, *got.TotalHours)
	assert.Contains(t, f.paths.seen, "/v1/public/events")

	cancelled := f.seedEvent(model.EventCancelled, f.creator.UserID, &f.venue.ID)
	res, err = f.events.Update(ctx, f.creator, cancelled.ID, repository.EventPatch{Title: ptr("y")})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	booked := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	f.lineUp(booked.ID, f.artistA)
	_, err := f.publisher.CreateBookingRequestsForEvent(ctx, booked.ID)
	require.NoError(t, err)

	res, err := f.events.Delete(ctx, f.creator, booked.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, f.store.events, booked.ID)

	empty := f.seedEvent(model.EventDraft, f.creator.UserID, &f.venue.ID)
	_, err = f.events.Delete(ctx, f.venueOwner, empty.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	res, err = f.events.Delete(ctx, f.creator, empty.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotContains(t, f.store.events, empty.ID)
}

func TestDeleteEventKeepsPerformanceHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventSeekingArtists, f.creator.UserID, &f.venue.ID)
	applied, err := f.workflow.ApplyForPerformance(ctx, f.principalA, PerformanceInput{EventID: e.ID, ArtistID: f.artistA.ID})
	require.NoError(t, err)
	require.True(t, applied.Success)
	_, err = f.workflow.DeclinePerformance(ctx, f.venueOwner, applied.ID, "")
	require.NoError(t, err)

	res, err := f.events.Delete(ctx, f.creator, e.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Cannot delete an event that has bookings or performances", res.Message)
	assert.Contains(t, f.store.events, e.ID)
	assert.Contains(t, f.store.performances, applied.ID)
}

func TestAddArtistToPublishedEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)

	res, err := f.events.AddArtist(ctx, f.venueOwner, e.ID, f.artistA.ID, ptr(int64(20000)))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, f.store.bookings, 1)

	res, err = f.events.AddArtist(ctx, f.venueOwner, e.ID, f.artistA.ID, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, f.store.bookings, 1)

	_, err = f.events.AddArtist(ctx, f.principalB, e.ID, f.artistB.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPublicEventVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := f.seedEvent(model.EventDraft, f.creator.UserID, &f.venue.ID)
	live := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	live.Slug = "live-one"
	f.store.events[live.ID] = live

	_, err := f.events.GetPublic(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.events.GetBySlug(ctx, "live-one")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
	assert.NotNil(t, got.Artists)

	list, err := f.events.ListPublic(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, live.ID, list[0].ID)

	_, err = f.events.Get(ctx, f.principalA, draft.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	f.lineUp(draft.ID, f.artistA)
	_, err = f.events.Get(ctx, f.principalA, draft.ID)
	assert.NoError(t, err)
}
