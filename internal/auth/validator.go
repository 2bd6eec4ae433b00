package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/auction-house/internal/model"
)

// UserStore is the slice of the user repository the validator needs: a
// lookup by the public identifier embedded in tokens.  Missing users are
// reported as sql.ErrNoRows.
type UserStore interface {
	GetByPublicID(ctx context.Context, publicID string) (model.User, error)
}

// Identity is the resolved result of a successful validation.  Handlers
// receive it through the request context and never touch token internals.
type Identity struct {
	UserID   uint64
	PublicID string
	Username string
	Roles    model.Roles
}

// Validator verifies bearer tokens against the signing secret and the
// user's stored token_version.  It re-reads the user record on every call
// so a revocation is observed immediately after the write commits; there
// is deliberately no caching here.
type Validator struct {
	Secret string
	Users  UserStore
}

func NewValidator(secret string, users UserStore) *Validator {
	return &Validator{Secret: secret, Users: users}
}

// Validate checks a raw token string and resolves the identity behind it.
// A token is valid if and only if its signature verifies, it has not
// expired, and its embedded version equals the user's current
// token_version.  Failures are reported through the sentinel errors in
// this package; any other error is an infrastructure fault.
func (v *Validator) Validate(ctx context.Context, raw string) (Identity, error) {
	// Tolerate callers passing the full header value.
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.Secret), nil
	})
	if err != nil {
		// Expiry is checked even when the signature verified; the jwt
		// library surfaces it as a distinct error.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		// Fall back to the user_id claim carried for wire compatibility.
		sub, _ = claims["user_id"].(string)
	}
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	version, ok := claims["version"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	u, err := v.Users.GetByPublicID(ctx, sub)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("load user %s: %w", sub, err)
	}

	if int64(version) != u.TokenVersion {
		return Identity{}, ErrRevokedToken
	}

	return Identity{
		UserID:   u.ID,
		PublicID: u.PublicID,
		Username: u.Username,
		Roles:    u.Roles,
	}, nil
}
