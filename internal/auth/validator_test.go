package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-house/internal/model"
)

const testSecret = "fixed-256-bit-secret-key-123456"

// fakeUserStore serves users from memory, keyed by public id.  Lookups of
// unknown ids report sql.ErrNoRows like the real repository.
type fakeUserStore struct {
	users map[string]model.User
}

func (s *fakeUserStore) GetByPublicID(_ context.Context, publicID string) (model.User, error) {
	u, ok := s.users[publicID]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func newFakeStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]model.User{}}
	for _, u := range users {
		s.users[u.PublicID] = u
	}
	return s
}

func testUser() model.User {
	return model.User{
		ID:       1,
		PublicID: "8e8f3f9c-0c5e-4f6a-9e24-1f0f5a9b1c11",
		Username: "alice",
		Roles:    model.DefaultRoles(),
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	u := testUser()
	v := NewValidator(testSecret, newFakeStore(u))

	tok, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	ident, err := v.Validate(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, ident.UserID)
	assert.Equal(t, u.PublicID, ident.PublicID)
	assert.Equal(t, u.Username, ident.Username)
	assert.Equal(t, u.Roles, ident.Roles)
}

func TestValidate_StripsBearerPrefix(t *testing.T) {
	t.Parallel()

	u := testUser()
	v := NewValidator(testSecret, newFakeStore(u))

	tok, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), "Bearer "+tok.Token)
	assert.NoError(t, err)
}

func TestValidate_RevokedAfterVersionBump(t *testing.T) {
	t.Parallel()

	u := testUser()
	store := newFakeStore(u)
	v := NewValidator(testSecret, store)

	tok, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)

	// Simulate logout: the stored version moves past the embedded one.
	u.TokenVersion++
	store.users[u.PublicID] = u

	_, err = v.Validate(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestValidate_RevocationIsMonotonic(t *testing.T) {
	t.Parallel()

	u := testUser()
	store := newFakeStore(u)
	v := NewValidator(testSecret, store)

	first, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)

	// First bump: a token minted against the intermediate version is valid
	// while the old one is dead.
	u.TokenVersion++
	store.users[u.PublicID] = u
	second, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), first.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
	_, err = v.Validate(context.Background(), second.Token)
	assert.NoError(t, err)

	// Second bump kills the intermediate token too.
	u.TokenVersion++
	store.users[u.PublicID] = u
	_, err = v.Validate(context.Background(), second.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	u := testUser()
	v := NewValidator(testSecret, newFakeStore(u))

	// Negative TTL puts exp in the past; the version still matches, so the
	// failure must be expiry, not revocation.
	tok, err := NewAccessToken(testSecret, u, -10)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_InvalidTokens(t *testing.T) {
	t.Parallel()

	u := testUser()
	v := NewValidator(testSecret, newFakeStore(u))

	wrongSecret, err := NewAccessToken("some-other-secret", u, 3600)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "garbage", raw: "not.a.jwt"},
		{name: "wrong secret", raw: wrongSecret.Token},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Validate(context.Background(), tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidate_UserNotFound(t *testing.T) {
	t.Parallel()

	u := testUser()
	// Store knows nobody: covers tokens of deleted accounts.
	v := NewValidator(testSecret, newFakeStore())

	tok, err := NewAccessToken(testSecret, u, 3600)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIsAuthError(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{
		ErrMissingAuthHeader, ErrMalformedAuthHeader, ErrInvalidToken,
		ErrExpiredToken, ErrRevokedToken, ErrUserNotFound,
	} {
		assert.True(t, IsAuthError(sentinel))
	}
	assert.False(t, IsAuthError(sql.ErrNoRows))
	assert.False(t, IsAuthError(nil))
}
