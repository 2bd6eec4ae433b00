package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/utils"
)

const userColumns = "id,public_id,username,email,password_hash,is_buyer,is_seller,is_admin,is_super_admin,is_blocked,token_version,created_at,updated_at"

// UserRepo provides persistence for user accounts, including the
// token_version counter that backs token revocation.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with the given role set and returns the stored
// record.  The public id is generated here and the password is hashed with
// bcrypt before it touches the database.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, roles model.Roles, cost int) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	publicID := uuid.NewString()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (public_id, username, email, password_hash, is_buyer, is_seller, is_admin, is_super_admin) VALUES (?,?,?,?,?,?,?,?)",
		publicID, username, email, hash, roles.IsBuyer, roles.IsSeller, roles.IsAdmin, roles.IsSuperAdmin)
	if err != nil {
		// 1062 = MySQL duplicate entry
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrUserExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:           uint64(id),
		PublicID:     publicID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	}, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username))
	return scanUser(row)
}

// GetByPublicID fetches a user by its public identifier.  This is the
// lookup the token validator performs on every protected call.
func (r *UserRepo) GetByPublicID(ctx context.Context, publicID string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE public_id=? LIMIT 1", publicID)
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// BumpTokenVersion atomically increments the user's token_version,
// revoking every access token issued before this call.  The counter only
// ever increases.
func (r *UserRepo) BumpTokenVersion(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET token_version = token_version + 1 WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetBlocked flips the blocked flag on an account.  Existence is verified
// by the caller's preceding fetch; re-blocking an already blocked account
// reports zero affected rows on MySQL and must not be treated as missing.
func (r *UserRepo) SetBlocked(ctx context.Context, publicID string, blocked bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_blocked=? WHERE public_id=?", blocked, publicID)
	return err
}

// Delete permanently removes an account.  Only super admins reach this.
func (r *UserRepo) Delete(ctx context.Context, publicID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE public_id=?", publicID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow converts a zero-row update/delete into sql.ErrNoRows so
// handlers can answer 404 uniformly.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.PublicID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Roles.IsBuyer, &u.Roles.IsSeller, &u.Roles.IsAdmin, &u.Roles.IsSuperAdmin,
		&u.IsBlocked, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
