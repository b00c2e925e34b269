package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stagebook/internal/model"
)

func (f *fixture) lineUp(eventID uint64, artists ...model.Artist) {
	for _, a := range artists {
		f.store.lineup[[2]uint64{eventID, a.ID}] = model.EventArtist{EventID: eventID, ArtistID: a.ID}
	}
}

func TestCreateBookingRequestsIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA, f.artistB)

	res, err := f.publisher.CreateBookingRequestsForEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, FanoutResult{Created: 2}, res)

	bookings, err := f.deps.Bookings.ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, model.BookingPending, b.Status)
		require.NotNil(t, b.EventID)
		assert.Equal(t, e.ID, *b.EventID)
		assert.Equal(t, *e.EventDate, b.EventDate)
		require.NotNil(t, b.VenueID)
		assert.Equal(t, f.venue.ID, *b.VenueID)
		require.NotNil(t, b.Note)
		assert.Contains(t, *b.Note, e.Title)
	}
	assert.Equal(t, []string{"booking_request", "booking_request"}, f.mail.kinds())
	assert.Len(t, f.notificationsFor(f.principalA.UserID), 1)

	res, err = f.publisher.CreateBookingRequestsForEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, FanoutResult{Skipped: 2}, res)
	bookings, err = f.deps.Bookings.ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Len(t, f.mail.kinds(), 2)
}

func TestCreateBookingRequestsSkipsConfirmedArtists(t *testing.T) {
	f := newFixture()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, nil)
	f.lineUp(e.ID, f.artistA)
	f.store.lineup[[2]uint64{e.ID, f.artistB.ID}] = model.EventArtist{EventID: e.ID, ArtistID: f.artistB.ID, Confirmed: true}

	res, err := f.publisher.CreateBookingRequestsForEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	for _, b := range f.store.bookings {
		assert.Equal(t, f.artistA.ID, b.ArtistID)
		assert.Nil(t, b.VenueID, "external venue bookings have no venue")
	}
}

func TestCreateBookingRequestsContinuesPastFailures(t *testing.T) {
	f := newFixture()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA)
	f.store.lineup[[2]uint64{e.ID, 9999}] = model.EventArtist{EventID: e.ID, ArtistID: 9999}

	res, err := f.publisher.CreateBookingRequestsForEvent(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, FanoutResult{Created: 1, Failed: 1}, res)
}

func TestCreateBookingRequestsRequiresPublishedEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := f.seedEvent(model.EventDraft, f.creator.UserID, &f.venue.ID)
	f.lineUp(draft.ID, f.artistA)

	_, err := f.publisher.CreateBookingRequestsForEvent(ctx, draft.ID)
	assert.Error(t, err)

	_, err = f.publisher.CreateBookingRequestsForEvent(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	undated := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	undated.EventDate = nil
	f.store.events[undated.ID] = undated
	_, err = f.publisher.CreateBookingRequestsForEvent(ctx, undated.ID)
	assert.Error(t, err)

	assert.Empty(t, f.store.bookings)
}

func TestCreateBookingRequestForArtist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	f.lineUp(e.ID, f.artistA, f.artistB)

	res, err := f.publisher.CreateBookingRequestForArtist(ctx, e.ID, f.artistB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	res, err = f.publisher.CreateBookingRequestForArtist(ctx, e.ID, f.artistB.ID)
	require.NoError(t, err)
	assert.Equal(t, FanoutResult{Skipped: 1}, res)
	assert.Len(t, f.store.bookings, 1)
}

func TestCancelBookingRequestsResetsConfirmation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	e := f.seedEvent(model.EventPublished, f.creator.UserID, &f.venue.ID)
	f.store.lineup[[2]uint64{e.ID, f.artistA.ID}] = model.EventArtist{EventID: e.ID, ArtistID: f.artistA.ID, Confirmed: true}
	f.lineUp(e.ID, f.artistB)

	eid := e.ID
	seed := map[uint64]model.BookingStatus{
		501: model.BookingAccepted,
		502: model.BookingPending,
		503: model.BookingDeclined,
		504: model.BookingCompleted,
	}
	for id, st := range seed {
		artist := f.artistA.ID
		if id%2 == 0 {
			artist = f.artistB.ID
		}
		f.store.bookings[id] = model.Booking{ID: id, ArtistID: artist, EventID: &eid, EventDate: *e.EventDate, Status: st}
	}
	e.Status = model.EventCancelled
	f.store.events[e.ID] = e

	res, err := f.publisher.CancelBookingRequestsForEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cancelled)

	assert.Equal(t, model.BookingCancelled, f.store.bookings[501].Status)
	assert.Equal(t, model.BookingCancelled, f.store.bookings[502].Status)
	assert.Equal(t, model.BookingDeclined, f.store.bookings[503].Status)
	assert.Equal(t, model.BookingCompleted, f.store.bookings[504].Status)
	for _, ea := range f.store.lineup {
		assert.False(t, ea.Confirmed)
	}
	assert.Equal(t, []string{"booking_cancelled", "booking_cancelled"}, f.mail.kinds())
	notes := f.notificationsFor(f.principalA.UserID)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotifyBookingCancelled, notes[0].Type)
}

func TestCancelBookingRequestsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.publisher.CancelBookingRequestsForEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Zero(t, res)

	e := f.seedEvent(model.EventDraft, f.creator.UserID, &f.venue.ID)
	f.store.lineup[[2]uint64{e.ID, f.artistA.ID}] = model.EventArtist{EventID: e.ID, ArtistID: f.artistA.ID, Confirmed: true}
	res, err = f.publisher.CancelBookingRequestsForEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, res)
	assert.True(t, f.store.lineup[[2]uint64{e.ID, f.artistA.ID}].Confirmed, "nothing is touched without active bookings")
	assert.Empty(t, f.mail.kinds())
}
