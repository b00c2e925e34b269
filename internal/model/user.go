package model

import "time"

// Role is the marketplace side an account acts for.
type Role string

const (
	RoleVenue  Role = "VENUE"
	RoleArtist Role = "ARTIST"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool { return r == RoleVenue || r == RoleArtist }

// User represents an account row in the `users` table.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – VENUE or ARTIST.
//  IsActive     – whether the account may sign in.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Principal is the resolved identity of the caller.  Every workflow
// operation receives it explicitly.  VenueIDs lists the venues the user
// owns (empty for artists); ArtistID is set when the user has an artist
// profile.
type Principal struct {
	UserID   uint64   `json:"user_id"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	VenueIDs []uint64 `json:"venue_ids,omitempty"`
	ArtistID *uint64  `json:"artist_id,omitempty"`
}

// OwnsVenue reports whether the principal owns the given venue.
func (p Principal) OwnsVenue(venueID uint64) bool {
	for _, id := range p.VenueIDs {
		if id == venueID {
			return true
		}
	}
	return false
}

// IsArtist reports whether the principal acts as the given artist.
func (p Principal) IsArtist(artistID uint64) bool {
	return p.ArtistID != nil && *p.ArtistID == artistID
}
