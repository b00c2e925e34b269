package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/stagebook/internal/model"
)

// BookingRepo manages persistence for bookings.
type BookingRepo struct{ db *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, artist_id, venue_id, event_id, event_date, hours, note, status, created_at, updated_at`

const bookingColumnsB = `b.id, b.artist_id, b.venue_id, b.event_id, b.event_date, b.hours, b.note, b.status, b.created_at, b.updated_at`

func scanBooking(s scanner) (model.Booking, error) {
	var (
		b                model.Booking
		venueID, eventID sql.NullInt64
		hours            sql.NullFloat64
		note             sql.NullString
		status           string
	)
	if err := s.Scan(&b.ID, &b.ArtistID, &venueID, &eventID, &b.EventDate, &hours, &note, &status,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return model.Booking{}, err
	}
	b.VenueID = uintPtr(venueID)
	b.EventID = uintPtr(eventID)
	b.EventDate = b.EventDate.UTC()
	b.Hours = floatPtr(hours)
	b.Note = stringPtr(note)
	b.Status = model.BookingStatus(status)
	return b, nil
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create inserts a booking and sets its ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (artist_id, venue_id, event_id, event_date, hours, note, status)
		 VALUES (?,?,?,?,?,?,?)`,
		b.ArtistID, nullUint(b.VenueID), nullUint(b.EventID), b.EventDate.UTC(),
		nullFloat(b.Hours), nullString(b.Note), string(b.Status))
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID returns a booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// ExistsForArtistAndEvent reports whether a booking that was not
// cancelled links the artist to the event.  Cancelled requests do not
// count, so an event that is pulled and published again asks its artists
// anew; a declined request does.
func (r *BookingRepo) ExistsForArtistAndEvent(ctx context.Context, artistID, eventID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE artist_id = ? AND event_id = ? AND status <> ?`,
		artistID, eventID, string(model.BookingCancelled)).Scan(&n)
	return n > 0, err
}

// ListAcceptedForArtistBetween returns the artist's ACCEPTED bookings
// dated within [from, to), skipping excludeID when non-zero.
func (r *BookingRepo) ListAcceptedForArtistBetween(ctx context.Context, artistID uint64, from, to time.Time, excludeID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		  WHERE artist_id = ? AND status = ? AND event_date >= ? AND event_date < ? AND id <> ?
		  ORDER BY event_date`,
		artistID, string(model.BookingAccepted), from.UTC(), to.UTC(), excludeID)
}

// ListByEvent returns the bookings of an event, optionally filtered by status.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64, statuses ...model.BookingStatus) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE event_id = ?`
	args := []any{eventID}
	if len(statuses) > 0 {
		q += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, s := range statuses {
			args = append(args, string(s))
		}
	}
	return r.list(ctx, q+` ORDER BY id`, args...)
}

// CancelActive cancels the given bookings in one statement, touching
// only rows still PENDING or ACCEPTED.  It returns the rows changed.
func (r *BookingRepo) CancelActive(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{string(model.BookingCancelled)}, uint64Args(ids)...)
	args = append(args, string(model.BookingPending), string(model.BookingAccepted))
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?
		  WHERE id IN (`+placeholders(len(ids))+`) AND status IN (?, ?)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateStatus moves a booking from one status to another and reports
// whether the stored status still matched.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// CountByEvent counts bookings in any status for an event.
func (r *BookingRepo) CountByEvent(ctx context.Context, eventID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// ListForArtist returns an artist's bookings, soonest first.
func (r *BookingRepo) ListForArtist(ctx context.Context, artistID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE artist_id = ? ORDER BY event_date`, artistID)
}

// ListForHost returns bookings at the given venues or on events created
// by userID, soonest first.
func (r *BookingRepo) ListForHost(ctx context.Context, userID uint64, venueIDs []uint64) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumnsB + ` FROM bookings b LEFT JOIN events e ON e.id = b.event_id
		   WHERE e.creator_user_id = ?`
	args := []any{userID}
	if len(venueIDs) > 0 {
		q += ` OR b.venue_id IN (` + placeholders(len(venueIDs)) + `)`
		args = append(args, uint64Args(venueIDs)...)
	}
	return r.list(ctx, q+` ORDER BY b.event_date`, args...)
}
