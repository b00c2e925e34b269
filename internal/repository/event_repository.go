package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/stagebook/internal/model"
)

// EventPatch lists the editable event fields.  Nil fields are left as is.
type EventPatch struct {
	Title            *string
	Description      *string
	EventDate        *time.Time
	EndDate          *time.Time
	TotalHours       *float64
	TotalBudgetCents *int64
	IsPublic         *bool
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.EventDate == nil && p.EndDate == nil &&
		p.TotalHours == nil && p.TotalBudgetCents == nil && p.IsPublic == nil
}

// EventRepo manages persistence for events.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, slug, description, creator_user_id, venue_id,
	external_venue_name, external_venue_address, external_venue_city, external_venue_contact,
	event_date, end_date, total_hours, total_budget_cents, is_public, status, created_at, updated_at`

func scanEvent(s scanner) (model.Event, error) {
	var (
		e                         model.Event
		venueID, budget           sql.NullInt64
		extName, extAddr, extCity sql.NullString
		extContact                sql.NullString
		eventDate, endDate        sql.NullTime
		hours                     sql.NullFloat64
		status                    string
	)
	err := s.Scan(&e.ID, &e.Title, &e.Slug, &e.Description, &e.CreatorUserID, &venueID,
		&extName, &extAddr, &extCity, &extContact,
		&eventDate, &endDate, &hours, &budget, &e.IsPublic, &status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	e.VenueID = uintPtr(venueID)
	e.ExternalVenue = stringPtr(extName)
	e.ExternalAddress = stringPtr(extAddr)
	e.ExternalCity = stringPtr(extCity)
	e.ExternalContact = stringPtr(extContact)
	e.EventDate = timePtr(eventDate)
	e.EndDate = timePtr(endDate)
	e.TotalHours = floatPtr(hours)
	e.TotalBudgetCents = intPtr(budget)
	e.Status = model.EventStatus(status)
	return e, nil
}

// Create inserts an event and sets its ID.  A slug collision yields
// ErrDuplicate.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, slug, description, creator_user_id, venue_id,
			external_venue_name, external_venue_address, external_venue_city, external_venue_contact,
			event_date, end_date, total_hours, total_budget_cents, is_public, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.Title, e.Slug, e.Description, e.CreatorUserID, nullUint(e.VenueID),
		nullString(e.ExternalVenue), nullString(e.ExternalAddress), nullString(e.ExternalCity), nullString(e.ExternalContact),
		nullTime(e.EventDate), nullTime(e.EndDate), nullFloat(e.TotalHours), nullInt(e.TotalBudgetCents),
		e.IsPublic, string(e.Status))
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
	e.ID = uint64(id)
	return nil
}

// GetByID returns an event or ErrNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// SlugExists reports whether slug is taken.
func (r *EventRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

// Update applies a partial update.  An empty patch is a no-op.
func (r *EventRepo) Update(ctx context.Context, id uint64, p EventPatch) error {
	if p.Empty() {
		return nil
	}
	var (
		sets []string
		args []any
	)
	if p.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *p.Title)
	}
	if p.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *p.Description)
	}
	if p.EventDate != nil {
		sets, args = append(sets, "event_date = ?"), append(args, p.EventDate.UTC())
	}
	if p.EndDate != nil {
		sets, args = append(sets, "end_date = ?"), append(args, p.EndDate.UTC())
	}
	if p.TotalHours != nil {
		sets, args = append(sets, "total_hours = ?"), append(args, *p.TotalHours)
	}
	if p.TotalBudgetCents != nil {
		sets, args = append(sets, "total_budget_cents = ?"), append(args, *p.TotalBudgetCents)
	}
	if p.IsPublic != nil {
		sets, args = append(sets, "is_public = ?"), append(args, *p.IsPublic)
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE events SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	// MySQL reports 0 rows for a no-change update, so only a missing
	// row is treated as an error.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves an event from one status to another.  It reports
// false when the stored status was no longer from.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.EventStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// AssignVenue links the event to a venue and moves its status in one
// conditional write.  External venue fields are cleared.
func (r *EventRepo) AssignVenue(ctx context.Context, id, venueID uint64, from, to model.EventStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
			SET venue_id = ?, status = ?,
				external_venue_name = NULL, external_venue_address = NULL,
				external_venue_city = NULL, external_venue_contact = NULL
		  WHERE id = ? AND status = ?`,
		venueID, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Delete removes an event that has neither bookings nor performances;
// both are kept as history, so their presence yields ErrConflict.  A
// missing event yields ErrNotFound.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM bookings WHERE event_id = ?) + (SELECT COUNT(*) FROM performances WHERE event_id = ?)`,
		id, id).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_artists WHERE event_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ListPendingForVenues returns events awaiting approval at any of the
// given venues, soonest first.
func (r *EventRepo) ListPendingForVenues(ctx context.Context, venueIDs []uint64) ([]model.Event, error) {
	if len(venueIDs) == 0 {
		return nil, nil
	}
	args := append(uint64Args(venueIDs), string(model.EventPendingVenueApproval))
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		  WHERE venue_id IN (`+placeholders(len(venueIDs))+`) AND status = ?
		  ORDER BY event_date`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetBySlug returns an event by slug or ErrNotFound.
func (r *EventRepo) GetBySlug(ctx context.Context, slug string) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// ListPublic returns public PUBLISHED or CONFIRMED events dated at or
// after from, soonest first.
func (r *EventRepo) ListPublic(ctx context.Context, from time.Time, limit, offset int) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		  WHERE is_public = TRUE AND status IN (?, ?) AND event_date >= ?
		  ORDER BY event_date, id LIMIT ? OFFSET ?`,
		string(model.EventPublished), string(model.EventConfirmed), from.UTC(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
