package model

import "time"

// Venue is a place that hosts events.  It is owned by exactly one
// VENUE user who approves events and performances held there.
type Venue struct {
	ID          uint64    `json:"id"`            // venues.id
	OwnerUserID uint64    `json:"owner_user_id"` // venues.owner_user_id
	Name        string    `json:"name"`          // venues.name
	City        string    `json:"city"`          // venues.city
	Address     string    `json:"address"`       // venues.address
	CreatedAt   time.Time `json:"created_at"`    // venues.created_at
}

// Artist is the performer profile attached to an ARTIST user.  Email is
// joined from the owning user row and is used for booking mail.
type Artist struct {
	ID        uint64    `json:"id"`         // artists.id
	UserID    uint64    `json:"user_id"`    // artists.user_id
	Name      string    `json:"name"`       // artists.name
	Genre     string    `json:"genre"`      // artists.genre
	Email     string    `json:"email"`      // users.email
	CreatedAt time.Time `json:"created_at"` // artists.created_at
}
