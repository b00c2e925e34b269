package model

// EventTransitions lists, for every event status, the statuses it may
// move to.  Terminal statuses map to an empty set.
var EventTransitions = map[EventStatus][]EventStatus{
	EventDraft:                {EventPendingVenueApproval, EventSeekingVenue, EventSeekingArtists, EventPublished, EventCancelled},
	EventPendingVenueApproval: {EventSeekingArtists, EventCancelled},
	EventSeekingVenue:         {EventPendingVenueApproval, EventSeekingArtists, EventCancelled},
	EventSeekingArtists:       {EventPublished, EventConfirmed, EventCancelled, EventDraft},
	EventPublished:            {EventConfirmed, EventCancelled, EventCompleted, EventDraft, EventSeekingArtists},
	EventConfirmed:            {EventPublished, EventCompleted, EventCancelled},
	EventCancelled:            {},
	EventCompleted:            {},
}

// PerformanceTransitions lists the allowed performance moves.
var PerformanceTransitions = map[PerformanceStatus][]PerformanceStatus{
	PerformancePending:   {PerformanceConfirmed, PerformanceDeclined, PerformanceCancelled},
	PerformanceConfirmed: {PerformanceCancelled},
	PerformanceDeclined:  {},
	PerformanceCancelled: {},
}

// BookingTransitions lists the allowed booking moves.  ACCEPTED bookings
// are only cancelled in bulk when their event is pulled.
var BookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingAccepted, BookingDeclined, BookingCancelled},
	BookingAccepted:  {BookingCancelled, BookingCompleted},
	BookingDeclined:  {},
	BookingCancelled: {},
	BookingCompleted: {},
}

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	_, ok := EventTransitions[s]
	return ok
}

// CanTransitionTo reports whether an event may move from s to next.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return contains(EventTransitions[s], next)
}

// CanTransitionTo reports whether a performance may move from s to next.
func (s PerformanceStatus) CanTransitionTo(next PerformanceStatus) bool {
	return contains(PerformanceTransitions[s], next)
}

// CanTransitionTo reports whether a booking may move from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return contains(BookingTransitions[s], next)
}

func contains[T comparable](set []T, v T) bool {
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}
