package model

import "time"

// BookingStatus is the state of a booking request sent to an artist.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingDeclined  BookingStatus = "DECLINED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// DefaultBookingHours applies whenever a booking or a candidate slot has
// no positive duration.
const DefaultBookingHours = 2.0

// Booking is a dated request for an artist.  VenueID is nil for bookings
// generated from events at external venues; EventID links bookings that
// were produced by publishing an event.
type Booking struct {
	ID        uint64        `json:"id"`                  // bookings.id
	ArtistID  uint64        `json:"artist_id"`           // bookings.artist_id
	VenueID   *uint64       `json:"venue_id,omitempty"`  // bookings.venue_id (nullable)
	EventID   *uint64       `json:"event_id,omitempty"`  // bookings.event_id (nullable)
	EventDate time.Time     `json:"event_date"`          // bookings.event_date (UTC)
	Hours     *float64      `json:"hours,omitempty"`     // bookings.hours
	Note      *string       `json:"note,omitempty"`      // bookings.note
	Status    BookingStatus `json:"status"`              // bookings.status
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Duration returns the booked span, falling back to DefaultBookingHours.
func (b Booking) Duration() time.Duration {
	return HoursToDuration(b.Hours)
}

// HoursToDuration converts an optional hour count into a duration.
// Nil or non-positive values mean DefaultBookingHours.
func HoursToDuration(h *float64) time.Duration {
	hours := DefaultBookingHours
	if h != nil && *h > 0 {
		hours = *h
	}
	return time.Duration(hours * float64(time.Hour))
}

// ArtistUnavailability is a window in which an artist cannot be booked.
// The window is half-open: [StartDate, EndDate).
type ArtistUnavailability struct {
	ID        uint64    `json:"id"`
	ArtistID  uint64    `json:"artist_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
