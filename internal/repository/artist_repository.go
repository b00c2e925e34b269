package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/stagebook/internal/model"
)

// ArtistRepo manages persistence for artist profiles.
type ArtistRepo struct{ db *sql.DB }

func NewArtistRepo(db *sql.DB) *ArtistRepo { return &ArtistRepo{db: db} }

// GetByID returns an artist joined with the owning user's email.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (model.Artist, error) {
	var a model.Artist
	err := r.db.QueryRowContext(ctx,
		`SELECT a.id, a.user_id, a.name, a.genre, u.email, a.created_at
		   FROM artists a JOIN users u ON u.id = a.user_id
		  WHERE a.id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Genre, &a.Email, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Artist{}, ErrNotFound
	}
	return a, err
}
