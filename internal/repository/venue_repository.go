package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/stagebook/internal/model"
)

// VenueRepo manages persistence for venues.
type VenueRepo struct{ db *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetByID returns a venue or ErrNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_user_id, name, city, address, created_at FROM venues WHERE id = ?`, id).
		Scan(&v.ID, &v.OwnerUserID, &v.Name, &v.City, &v.Address, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, ErrNotFound
	}
	return v, err
}

// ListByOwner returns the venues owned by a user, oldest first.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerUserID uint64) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_user_id, name, city, address, created_at FROM venues WHERE owner_user_id = ? ORDER BY id`,
		ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Venue
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.OwnerUserID, &v.Name, &v.City, &v.Address, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a venue and sets its ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (owner_user_id, name, city, address) VALUES (?, ?, ?, ?)`,
		v.OwnerUserID, v.Name, v.City, v.Address)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}
