package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-house/internal/model"
)

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepo(db), mock
}

func userRows(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(userColumns, ",")).AddRow(
		u.ID, u.PublicID, u.Username, u.Email, u.PasswordHash,
		u.Roles.IsBuyer, u.Roles.IsSeller, u.Roles.IsAdmin, u.Roles.IsSuperAdmin,
		u.IsBlocked, u.TokenVersion, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepo_Create(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users (public_id, username, email, password_hash, is_buyer, is_seller, is_admin, is_super_admin) VALUES (?,?,?,?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg(), true, true, false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u, err := repo.Create(context.Background(), "alice", "Alice@Example.com", "pw123456", model.DefaultRoles(), 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "alice", u.Username)
	// Email is normalized to lower case before storage.
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEmpty(t, u.PublicID)
	assert.NotEqual(t, "pw123456", u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users (public_id, username, email, password_hash, is_buyer, is_seller, is_admin, is_super_admin) VALUES (?,?,?,?,?,?,?,?)").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	_, err := repo.Create(context.Background(), "alice", "alice@example.com", "pw123456", model.DefaultRoles(), 4)
	assert.ErrorIs(t, err, ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	stored := model.User{
		ID:           3,
		PublicID:     "pid-3",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$hash",
		Roles:        model.Roles{IsBuyer: true, IsSeller: true, IsAdmin: true},
		TokenVersion: 5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE username=? LIMIT 1").
		WithArgs("alice").
		WillReturnRows(userRows(stored))

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, stored, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByPublicID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT " + userColumns + " FROM users WHERE public_id=? LIMIT 1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPublicID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_BumpTokenVersion(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET token_version = token_version + 1 WHERE id=?").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.BumpTokenVersion(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_BumpTokenVersion_MissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET token_version = token_version + 1 WHERE id=?").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.BumpTokenVersion(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE public_id=?").
		WithArgs("pid-3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), "pid-3"))

	mock.ExpectExec("DELETE FROM users WHERE public_id=?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
