package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/stagebook/internal/model"
)

// UnavailabilityRepo manages artist_unavailability rows.
type UnavailabilityRepo struct{ db *sql.DB }

func NewUnavailabilityRepo(db *sql.DB) *UnavailabilityRepo { return &UnavailabilityRepo{db: db} }

func scanUnavailability(s scanner) (model.ArtistUnavailability, error) {
	var (
		u      model.ArtistUnavailability
		reason sql.NullString
	)
	if err := s.Scan(&u.ID, &u.ArtistID, &u.StartDate, &u.EndDate, &reason, &u.CreatedAt); err != nil {
		return model.ArtistUnavailability{}, err
	}
	u.StartDate, u.EndDate = u.StartDate.UTC(), u.EndDate.UTC()
	u.Reason = stringPtr(reason)
	return u, nil
}

// ListByArtist returns every window of an artist ordered by start.
func (r *UnavailabilityRepo) ListByArtist(ctx context.Context, artistID uint64) ([]model.ArtistUnavailability, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, artist_id, start_date, end_date, reason, created_at
		   FROM artist_unavailability WHERE artist_id = ? ORDER BY start_date`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ArtistUnavailability
	for rows.Next() {
		u, err := scanUnavailability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Create inserts a window and sets its ID.
func (r *UnavailabilityRepo) Create(ctx context.Context, u *model.ArtistUnavailability) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO artist_unavailability (artist_id, start_date, end_date, reason) VALUES (?, ?, ?, ?)`,
		u.ArtistID, u.StartDate.UTC(), u.EndDate.UTC(), nullString(u.Reason))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID returns a window or ErrNotFound.
func (r *UnavailabilityRepo) GetByID(ctx context.Context, id uint64) (model.ArtistUnavailability, error) {
	u, err := scanUnavailability(r.db.QueryRowContext(ctx,
		`SELECT id, artist_id, start_date, end_date, reason, created_at FROM artist_unavailability WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ArtistUnavailability{}, ErrNotFound
	}
	return u, err
}

// Delete removes a window.
func (r *UnavailabilityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM artist_unavailability WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
