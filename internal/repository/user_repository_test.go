package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stagebook/internal/model"
)

var userRowColumns = []string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func TestCreateAccountInsertsProfileAndReloads(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepo(db)
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (email, password_hash, role) VALUES (?,?,?)`)).
		WithArgs("ada@example.com", sqlmock.AnyArg(), "ARTIST").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO artists (user_id, name, genre) VALUES (?,?,?)`)).
		WithArgs(int64(42), "Ada Loops", "techno").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=? LIMIT 1`)).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(42, "ada@example.com", "$2a$04$hash", "ARTIST", true, now, now))

	u, err := repo.CreateAccount(context.Background(), NewAccount{
		Email:       "  Ada@Example.com ",
		Password:    "s3cret-pass",
		Role:        model.RoleArtist,
		DisplayName: "Ada Loops",
		Genre:       "techno",
		BcryptCost:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u.ID)
	assert.Equal(t, model.RoleArtist, u.Role)
	assert.True(t, u.IsActive)
}

func TestCreateAccountVenueProfile(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepo(db)
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("hall@example.com", sqlmock.AnyArg(), "VENUE").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO venues (owner_user_id, name, city, address) VALUES (?,?,?,'')`)).
		WithArgs(int64(9), "Blue Hall", "Berlin").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=?`)).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(9, "hall@example.com", "$2a$04$hash", "VENUE", true, now, now))

	u, err := repo.CreateAccount(context.Background(), NewAccount{
		Email: "hall@example.com", Password: "s3cret-pass", Role: model.RoleVenue,
		DisplayName: "Blue Hall", City: "Berlin", BcryptCost: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleVenue, u.Role)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.CreateAccount(context.Background(), NewAccount{
		Email: "ada@example.com", Password: "s3cret-pass", Role: model.RoleArtist, BcryptCost: 4,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateAccountProfileFailureRollsBack(t *testing.T) {
	db, mock := newDB(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO artists`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateAccount(context.Background(), NewAccount{
		Email: "ada@example.com", Password: "s3cret-pass", Role: model.RoleArtist, BcryptCost: 4,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert profile")
}
