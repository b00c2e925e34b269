package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTransitionsCoverEveryStatus(t *testing.T) {
	all := []EventStatus{
		EventDraft, EventPendingVenueApproval, EventSeekingVenue, EventSeekingArtists,
		EventPublished, EventConfirmed, EventCancelled, EventCompleted,
	}
	for _, s := range all {
		assert.True(t, s.Valid(), s)
		for _, next := range EventTransitions[s] {
			assert.True(t, next.Valid(), "%s -> %s", s, next)
		}
	}
	assert.False(t, EventStatus("PENDING").Valid())
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range []EventStatus{EventCancelled, EventCompleted} {
		for _, next := range []EventStatus{EventDraft, EventPublished, EventConfirmed} {
			assert.False(t, s.CanTransitionTo(next), "%s -> %s", s, next)
		}
	}
	assert.False(t, PerformanceDeclined.CanTransitionTo(PerformanceConfirmed))
	assert.False(t, BookingCancelled.CanTransitionTo(BookingAccepted))
}

func TestEventTransitionSamples(t *testing.T) {
	assert.True(t, EventDraft.CanTransitionTo(EventPublished))
	assert.True(t, EventPendingVenueApproval.CanTransitionTo(EventSeekingArtists))
	assert.False(t, EventPendingVenueApproval.CanTransitionTo(EventPublished))
	assert.True(t, EventPublished.CanTransitionTo(EventDraft))
	assert.False(t, EventDraft.CanTransitionTo(EventCompleted))
}

func TestHoursToDuration(t *testing.T) {
	zero, neg, half := 0.0, -3.0, 1.5
	assert.Equal(t, 2*time.Hour, HoursToDuration(nil))
	assert.Equal(t, 2*time.Hour, HoursToDuration(&zero))
	assert.Equal(t, 2*time.Hour, HoursToDuration(&neg))
	assert.Equal(t, 90*time.Minute, HoursToDuration(&half))
}

func TestPrincipalOwnership(t *testing.T) {
	aid := uint64(7)
	p := Principal{UserID: 1, VenueIDs: []uint64{3, 4}, ArtistID: &aid}
	assert.True(t, p.OwnsVenue(4))
	assert.False(t, p.OwnsVenue(5))
	assert.True(t, p.IsArtist(7))
	assert.False(t, Principal{}.IsArtist(7))
}
