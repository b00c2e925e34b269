package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/stagebook/internal/model"
	"github.com/iliyamo/stagebook/internal/utils"
)

// NewAccount carries the registration input.  DisplayName becomes the
// venue name for VENUE accounts and the artist name for ARTIST accounts.
type NewAccount struct {
	Email       string
	Password    string
	Role        model.Role
	DisplayName string
	City        string
	Genre       string
	BcryptCost  int
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ErrEmailExists is returned by CreateAccount for a taken email.
var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,email,password_hash,role,is_active,created_at,updated_at"

// CreateAccount inserts the user together with its venue or artist
// profile in a single transaction.
func (r *UserRepo) CreateAccount(ctx context.Context, in NewAccount) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, in.BcryptCost)
	if err != nil {
		return model.User{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, string(in.Role))
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}

	switch in.Role {
	case model.RoleVenue:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO venues (owner_user_id, name, city, address) VALUES (?,?,?,'')",
			id, in.DisplayName, in.City)
	case model.RoleArtist:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO artists (user_id, name, genre) VALUES (?,?,?)",
			id, in.DisplayName, in.Genre)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("insert profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// ResolvePrincipal loads the active user for email together with the
// venues it owns and its artist profile id.
func (r *UserRepo) ResolvePrincipal(ctx context.Context, email string) (model.Principal, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return model.Principal{}, err
	}
	if !u.IsActive {
		return model.Principal{}, ErrNotFound
	}
	p := model.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}

	rows, err := r.DB.QueryContext(ctx, "SELECT id FROM venues WHERE owner_user_id=? ORDER BY id", u.ID)
	if err != nil {
		return model.Principal{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return model.Principal{}, err
		}
		p.VenueIDs = append(p.VenueIDs, id)
	}
	if err := rows.Err(); err != nil {
		return model.Principal{}, err
	}

	var artistID uint64
	err = r.DB.QueryRowContext(ctx, "SELECT id FROM artists WHERE user_id=? LIMIT 1", u.ID).Scan(&artistID)
	switch {
	case err == nil:
		p.ArtistID = &artistID
	case !errors.Is(err, sql.ErrNoRows):
		return model.Principal{}, err
	}
	return p, nil
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	u.Role = model.Role(role)
	return u, err
}
