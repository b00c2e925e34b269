package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/stagebook/internal/model"
)

// EventArtistRepo manages the event_artists association table.
type EventArtistRepo struct{ db *sql.DB }

func NewEventArtistRepo(db *sql.DB) *EventArtistRepo { return &EventArtistRepo{db: db} }

func (r *EventArtistRepo) list(ctx context.Context, q string, args ...any) ([]model.EventArtist, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EventArtist
	for rows.Next() {
		var (
			ea  model.EventArtist
			fee sql.NullInt64
		)
		if err := rows.Scan(&ea.EventID, &ea.ArtistID, &ea.Confirmed, &fee); err != nil {
			return nil, err
		}
		ea.FeeCents = intPtr(fee)
		out = append(out, ea)
	}
	return out, rows.Err()
}

// ListByEvent returns the whole line-up of an event.
func (r *EventArtistRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.EventArtist, error) {
	return r.list(ctx,
		`SELECT event_id, artist_id, confirmed, fee_cents FROM event_artists WHERE event_id = ? ORDER BY artist_id`,
		eventID)
}

// ListUnconfirmed returns line-up entries that have not confirmed yet.
func (r *EventArtistRepo) ListUnconfirmed(ctx context.Context, eventID uint64) ([]model.EventArtist, error) {
	return r.list(ctx,
		`SELECT event_id, artist_id, confirmed, fee_cents FROM event_artists
		  WHERE event_id = ? AND confirmed = FALSE ORDER BY artist_id`,
		eventID)
}

// Get returns a single association or ErrNotFound.
func (r *EventArtistRepo) Get(ctx context.Context, eventID, artistID uint64) (model.EventArtist, error) {
	var (
		ea  model.EventArtist
		fee sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT event_id, artist_id, confirmed, fee_cents FROM event_artists WHERE event_id = ? AND artist_id = ?`,
		eventID, artistID).Scan(&ea.EventID, &ea.ArtistID, &ea.Confirmed, &fee)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventArtist{}, ErrNotFound
	}
	ea.FeeCents = intPtr(fee)
	return ea, err
}

// Add inserts an association.  An existing pair yields ErrDuplicate.
func (r *EventArtistRepo) Add(ctx context.Context, ea model.EventArtist) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_artists (event_id, artist_id, confirmed, fee_cents) VALUES (?, ?, ?, ?)`,
		ea.EventID, ea.ArtistID, ea.Confirmed, nullInt(ea.FeeCents))
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// SetConfirmed upserts the association with the given confirmed flag.
func (r *EventArtistRepo) SetConfirmed(ctx context.Context, eventID, artistID uint64, confirmed bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_artists (event_id, artist_id, confirmed) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE confirmed = VALUES(confirmed)`,
		eventID, artistID, confirmed)
	return err
}

// ResetConfirmed clears the confirmed flag for the whole line-up.
func (r *EventArtistRepo) ResetConfirmed(ctx context.Context, eventID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE event_artists SET confirmed = FALSE WHERE event_id = ?`, eventID)
	return err
}
