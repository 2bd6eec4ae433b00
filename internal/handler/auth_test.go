package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-house/internal/auth"
	"github.com/iliyamo/auction-house/internal/config"
	"github.com/iliyamo/auction-house/internal/middleware"
	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/repository"
	"github.com/iliyamo/auction-house/internal/utils"
)

const (
	testUserColumns      = "id,public_id,username,email,password_hash,is_buyer,is_seller,is_admin,is_super_admin,is_blocked,token_version,created_at,updated_at"
	selectUserByUsername = "SELECT " + testUserColumns + " FROM users WHERE username=? LIMIT 1"
	selectUserByPublicID = "SELECT " + testUserColumns + " FROM users WHERE public_id=? LIMIT 1"
	bumpTokenVersion     = "UPDATE users SET token_version = token_version + 1 WHERE id=?"
)

// authEnv wires an AuthHandler and the bearer gate around a mocked
// database, mirroring the routes the router registers in production.
type authEnv struct {
	e    *echo.Echo
	mock sqlmock.Sqlmock
}

func newAuthEnv(t *testing.T) authEnv {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repository.NewUserRepo(db)
	cfg := config.Config{
		JWTSecret:    "handler-test-secret-0123456789abcdef",
		AccessTTLSec: 3600,
		BcryptCost:   4,
	}
	h := NewAuthHandler(cfg, users)
	gate := middleware.BearerAuth(auth.NewValidator(cfg.JWTSecret, users))

	e := echo.New()
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	e.POST("/api/logout", h.Logout, gate)
	e.GET("/api/me", h.Me, gate)
	return authEnv{e: e, mock: mock}
}

func (env authEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func respField(t *testing.T, rec *httptest.ResponseRecorder, key string) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	v, _ := body[key].(string)
	return v
}

func mockUserRows(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows(strings.Split(testUserColumns, ",")).AddRow(
		u.ID, u.PublicID, u.Username, u.Email, u.PasswordHash,
		u.Roles.IsBuyer, u.Roles.IsSeller, u.Roles.IsAdmin, u.Roles.IsSuperAdmin,
		u.IsBlocked, u.TokenVersion, u.CreatedAt, u.UpdatedAt)
}

func testUser(t *testing.T, version int64) model.User {
	t.Helper()
	hash, err := utils.HashPassword("correct horse", 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	return model.User{
		ID:           7,
		PublicID:     "3f2c8a1e-user",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Roles:        model.DefaultRoles(),
		TokenVersion: version,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRegister(t *testing.T) {
	env := newAuthEnv(t)

	env.mock.ExpectExec("INSERT INTO users (public_id, username, email, password_hash, is_buyer, is_seller, is_admin, is_super_admin) VALUES (?,?,?,?,?,?,?,?)").
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", sqlmock.AnyArg(), true, true, false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := env.do(http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User registered successfully", respField(t, rec, "message"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	env := newAuthEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"email":"a@b.c","password":"pw"}`},
		{"missing email", `{"username":"alice","password":"pw"}`},
		{"missing password", `{"username":"alice","email":"a@b.c"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"pw"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/register", tc.body, "")
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
	// No request ever reached the database.
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRegister_Duplicate(t *testing.T) {
	env := newAuthEnv(t)

	env.mock.ExpectExec("INSERT INTO users (public_id, username, email, password_hash, is_buyer, is_seller, is_admin, is_super_admin) VALUES (?,?,?,?,?,?,?,?)").
		WillReturnError(fmt.Errorf("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	rec := env.do(http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username or email already exists", respField(t, rec, "error"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newAuthEnv(t)
	u := testUser(t, 0)

	// Unknown username and wrong password must be indistinguishable.
	env.mock.ExpectQuery(selectUserByUsername).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)
	rec := env.do(http.MethodPost, "/api/login", `{"username":"nobody","password":"whatever"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", respField(t, rec, "error"))

	env.mock.ExpectQuery(selectUserByUsername).
		WithArgs("alice").
		WillReturnRows(mockUserRows(u))
	rec = env.do(http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", respField(t, rec, "error"))

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestLogin_BlockedAccount(t *testing.T) {
	env := newAuthEnv(t)
	u := testUser(t, 0)
	u.IsBlocked = true

	env.mock.ExpectQuery(selectUserByUsername).
		WithArgs("alice").
		WillReturnRows(mockUserRows(u))

	rec := env.do(http.MethodPost, "/api/login", `{"username":"alice","password":"correct horse"}`, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Account is blocked", respField(t, rec, "error"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// TestTokenLifecycle walks the full session flow: login issues a token,
// the token opens protected routes, logout bumps token_version, and the
// old token is rejected as invalidated from then on.
func TestTokenLifecycle(t *testing.T) {
	env := newAuthEnv(t)
	u := testUser(t, 2)

	// Login.
	env.mock.ExpectQuery(selectUserByUsername).
		WithArgs("alice").
		WillReturnRows(mockUserRows(u))
	rec := env.do(http.MethodPost, "/api/login", `{"username":"alice","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := respField(t, rec, "token")
	require.NotEmpty(t, token)

	// The token opens /api/me; the gate re-reads the user record.
	env.mock.ExpectQuery(selectUserByPublicID).
		WithArgs(u.PublicID).
		WillReturnRows(mockUserRows(u))
	rec = env.do(http.MethodGet, "/api/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.PublicID, respField(t, rec, "user_id"))
	assert.Equal(t, "alice", respField(t, rec, "username"))

	// Logout bumps token_version.
	env.mock.ExpectQuery(selectUserByPublicID).
		WithArgs(u.PublicID).
		WillReturnRows(mockUserRows(u))
	env.mock.ExpectExec(bumpTokenVersion).
		WithArgs(u.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec = env.do(http.MethodPost, "/api/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", respField(t, rec, "message"))

	// The stored version moved past the token's embedded one; the same
	// token is now rejected everywhere.
	bumped := u
	bumped.TokenVersion = 3
	env.mock.ExpectQuery(selectUserByPublicID).
		WithArgs(u.PublicID).
		WillReturnRows(mockUserRows(bumped))
	rec = env.do(http.MethodGet, "/api/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token invalidated", respField(t, rec, "error"))

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestProtectedRoute_DeletedUser(t *testing.T) {
	env := newAuthEnv(t)
	u := testUser(t, 0)

	env.mock.ExpectQuery(selectUserByUsername).
		WithArgs("alice").
		WillReturnRows(mockUserRows(u))
	rec := env.do(http.MethodPost, "/api/login", `{"username":"alice","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := respField(t, rec, "token")

	env.mock.ExpectQuery(selectUserByPublicID).
		WithArgs(u.PublicID).
		WillReturnError(sql.ErrNoRows)
	rec = env.do(http.MethodGet, "/api/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User not found", respField(t, rec, "error"))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
