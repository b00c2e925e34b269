package model

import "time"

// EventStatus is the lifecycle state of an event.  The set is closed;
// moves between states are governed by EventTransitions.
type EventStatus string

const (
	EventDraft                EventStatus = "DRAFT"
	EventPendingVenueApproval EventStatus = "PENDING_VENUE_APPROVAL"
	EventSeekingVenue         EventStatus = "SEEKING_VENUE"
	EventSeekingArtists       EventStatus = "SEEKING_ARTISTS"
	EventPublished            EventStatus = "PUBLISHED"
	EventConfirmed            EventStatus = "CONFIRMED"
	EventCancelled            EventStatus = "CANCELLED"
	EventCompleted            EventStatus = "COMPLETED"
)

// Event is a dated gig either hosted at a registered venue (VenueID) or
// at an external location described by the External* fields.  Exactly
// one of the two is set.
type Event struct {
	ID               uint64      `json:"id"`                           // events.id
	Title            string      `json:"title"`                        // events.title
	Slug             string      `json:"slug"`                         // events.slug (unique)
	Description      string      `json:"description,omitempty"`        // events.description
	CreatorUserID    uint64      `json:"creator_user_id"`              // events.creator_user_id
	VenueID          *uint64     `json:"venue_id,omitempty"`           // events.venue_id (nullable)
	ExternalVenue    *string     `json:"external_venue_name,omitempty"` // events.external_venue_name
	ExternalAddress  *string     `json:"external_venue_address,omitempty"`
	ExternalCity     *string     `json:"external_venue_city,omitempty"`
	ExternalContact  *string     `json:"external_venue_contact,omitempty"`
	EventDate        *time.Time  `json:"event_date,omitempty"`         // events.event_date (UTC)
	EndDate          *time.Time  `json:"end_date,omitempty"`           // events.end_date
	TotalHours       *float64    `json:"total_hours,omitempty"`        // events.total_hours
	TotalBudgetCents *int64      `json:"total_budget_cents,omitempty"` // events.total_budget_cents
	IsPublic         bool        `json:"is_public"`                    // events.is_public
	Status           EventStatus `json:"status"`                       // events.status
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// HasInternalVenue reports whether the event is held at a registered venue.
func (e Event) HasInternalVenue() bool { return e.VenueID != nil && *e.VenueID != 0 }

// EventArtist links an artist to an event line-up.  Confirmed flips to
// true once the artist has accepted the resulting booking or the
// performance was approved, and back to false if the event is pulled.
type EventArtist struct {
	EventID   uint64 `json:"event_id"`             // event_artists.event_id
	ArtistID  uint64 `json:"artist_id"`            // event_artists.artist_id
	Confirmed bool   `json:"confirmed"`            // event_artists.confirmed
	FeeCents  *int64 `json:"fee_cents,omitempty"`  // event_artists.fee_cents
}
