// Package auth implements issuing and validating the marketplace's bearer
// tokens.  A token is valid only while its embedded version equals the
// user's stored token_version, so bumping the counter revokes every token
// issued before the bump without keeping a blacklist.
package auth

import "errors"

// Sentinel authentication failures.  Handlers and middleware map each of
// these to an HTTP 401 with the error text as the response body; anything
// else coming out of the validator is an internal error and must surface
// as a generic 500.
var (
	// ErrMissingAuthHeader signals an absent Authorization header.
	ErrMissingAuthHeader = errors.New("Authorization header is missing")
	// ErrMalformedAuthHeader signals a header that is not exactly
	// "Bearer <token>".
	ErrMalformedAuthHeader = errors.New("Invalid token header. Expected 'Bearer <token>'")
	// ErrInvalidToken signals a token whose signature or structure failed
	// verification.
	ErrInvalidToken = errors.New("Invalid token")
	// ErrExpiredToken signals a token past its expiry timestamp.
	ErrExpiredToken = errors.New("Token expired")
	// ErrRevokedToken signals a structurally valid token whose embedded
	// version no longer matches the user's stored token_version.
	ErrRevokedToken = errors.New("Token invalidated")
	// ErrUserNotFound signals a token whose subject no longer exists,
	// which covers deleted accounts.
	ErrUserNotFound = errors.New("User not found")
)

// IsAuthError reports whether err is one of the sentinel authentication
// failures above, as opposed to an infrastructure error.
func IsAuthError(err error) bool {
	for _, sentinel := range []error{
		ErrMissingAuthHeader,
		ErrMalformedAuthHeader,
		ErrInvalidToken,
		ErrExpiredToken,
		ErrRevokedToken,
		ErrUserNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
