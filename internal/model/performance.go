package model

import "time"

// PerformanceStatus is the state of an artist slot on an event.
type PerformanceStatus string

const (
	PerformancePending   PerformanceStatus = "PENDING"
	PerformanceConfirmed PerformanceStatus = "CONFIRMED"
	PerformanceDeclined  PerformanceStatus = "DECLINED"
	PerformanceCancelled PerformanceStatus = "CANCELLED"
)

// Initiator records which side opened a performance request.
type Initiator string

const (
	InitiatedByArtist Initiator = "ARTIST"
	InitiatedByVenue  Initiator = "VENUE"
)

// Performance is an artist's slot on an event.  There is at most one
// per (event, artist) pair and rows are never hard-deleted.
type Performance struct {
	ID               uint64            `json:"id"`
	EventID          uint64            `json:"event_id"`
	ArtistID         uint64            `json:"artist_id"`
	Status           PerformanceStatus `json:"status"`
	ProposedFeeCents *int64            `json:"proposed_fee_cents,omitempty"`
	AgreedFeeCents   *int64            `json:"agreed_fee_cents,omitempty"`
	Hours            *float64          `json:"hours,omitempty"`
	VenueNotes       *string           `json:"venue_notes,omitempty"`
	ArtistNotes      *string           `json:"artist_notes,omitempty"`
	InitiatedBy      Initiator         `json:"initiated_by"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
