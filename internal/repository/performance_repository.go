package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/stagebook/internal/model"
)

// PerformancePatch carries the fields written alongside a status move.
type PerformancePatch struct {
	AgreedFeeCents *int64
	VenueNotes     *string
	ArtistNotes    *string
}

// PerformanceRepo manages persistence for performances.
type PerformanceRepo struct{ db *sql.DB }

func NewPerformanceRepo(db *sql.DB) *PerformanceRepo { return &PerformanceRepo{db: db} }

const performanceColumns = `id, event_id, artist_id, status, proposed_fee_cents, agreed_fee_cents,
	hours, venue_notes, artist_notes, initiated_by, created_at, updated_at`

const performanceColumnsP = `p.id, p.event_id, p.artist_id, p.status, p.proposed_fee_cents, p.agreed_fee_cents,
	p.hours, p.venue_notes, p.artist_notes, p.initiated_by, p.created_at, p.updated_at`

func scanPerformance(s scanner) (model.Performance, error) {
	var (
		p                     model.Performance
		status, initiator     string
		proposed, agreed      sql.NullInt64
		hours                 sql.NullFloat64
		venueNote, artistNote sql.NullString
	)
	if err := s.Scan(&p.ID, &p.EventID, &p.ArtistID, &status, &proposed, &agreed,
		&hours, &venueNote, &artistNote, &initiator, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return model.Performance{}, err
	}
	p.Status = model.PerformanceStatus(status)
	p.InitiatedBy = model.Initiator(initiator)
	p.ProposedFeeCents = intPtr(proposed)
	p.AgreedFeeCents = intPtr(agreed)
	p.Hours = floatPtr(hours)
	p.VenueNotes = stringPtr(venueNote)
	p.ArtistNotes = stringPtr(artistNote)
	return p, nil
}

// Create inserts a performance.  The (event_id, artist_id) unique key
// turns a second application into ErrDuplicate.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO performances (event_id, artist_id, status, proposed_fee_cents, agreed_fee_cents,
			hours, venue_notes, artist_notes, initiated_by)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.EventID, p.ArtistID, string(p.Status), nullInt(p.ProposedFeeCents), nullInt(p.AgreedFeeCents),
		nullFloat(p.Hours), nullString(p.VenueNotes), nullString(p.ArtistNotes), string(p.InitiatedBy))
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
	p.ID = uint64(id)
	return nil
}

// GetByID returns a performance or ErrNotFound.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (model.Performance, error) {
	p, err := scanPerformance(r.db.QueryRowContext(ctx,
		`SELECT `+performanceColumns+` FROM performances WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Performance{}, ErrNotFound
	}
	return p, err
}

// GetByEventAndArtist returns the performance for a pair or ErrNotFound.
func (r *PerformanceRepo) GetByEventAndArtist(ctx context.Context, eventID, artistID uint64) (model.Performance, error) {
	p, err := scanPerformance(r.db.QueryRowContext(ctx,
		`SELECT `+performanceColumns+` FROM performances WHERE event_id = ? AND artist_id = ?`, eventID, artistID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Performance{}, ErrNotFound
	}
	return p, err
}

// Transition moves a performance from one status to another and writes
// the non-nil patch fields.  It reports false if the status had changed.
func (r *PerformanceRepo) Transition(ctx context.Context, id uint64, from, to model.PerformanceStatus, patch PerformancePatch) (bool, error) {
	sets := []string{"status = ?"}
	args := []any{string(to)}
	if patch.AgreedFeeCents != nil {
		sets, args = append(sets, "agreed_fee_cents = ?"), append(args, *patch.AgreedFeeCents)
	}
	if patch.VenueNotes != nil {
		sets, args = append(sets, "venue_notes = ?"), append(args, *patch.VenueNotes)
	}
	if patch.ArtistNotes != nil {
		sets, args = append(sets, "artist_notes = ?"), append(args, *patch.ArtistNotes)
	}
	args = append(args, id, string(from))
	res, err := r.db.ExecContext(ctx,
		`UPDATE performances SET `+strings.Join(sets, ", ")+` WHERE id = ? AND status = ?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListPendingForHost returns pending performances on events created by
// userID or held at one of venueIDs, newest first.
func (r *PerformanceRepo) ListPendingForHost(ctx context.Context, userID uint64, venueIDs []uint64) ([]model.Performance, error) {
	q := `SELECT ` + performanceColumnsP + `
			FROM performances p JOIN events e ON e.id = p.event_id
		   WHERE p.status = ? AND (e.creator_user_id = ?`
	args := []any{string(model.PerformancePending), userID}
	if len(venueIDs) > 0 {
		q += ` OR e.venue_id IN (` + placeholders(len(venueIDs)) + `)`
		args = append(args, uint64Args(venueIDs)...)
	}
	q += `) ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Performance
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
