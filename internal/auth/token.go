package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/auction-house/internal/model"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the serialized JWT; Exp stores the UTC
// expiration time.  Access tokens travel in the Authorization header on
// every protected call.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claim set
// carries the user's public identifier as both sub and user_id, the user's
// current token_version under version, plus exp and iat.  Callers are
// responsible for checking that the user is not blocked before issuing.
//
// Signing fails only when the secret is misconfigured; that is a fatal
// server condition, not a business error.
func NewAccessToken(secret string, u model.User, ttlSec int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlSec) * time.Second)
	claims := jwt.MapClaims{
		"sub":     u.PublicID,
		"user_id": u.PublicID,
		"version": u.TokenVersion,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
