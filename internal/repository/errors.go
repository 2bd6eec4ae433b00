// Package repository defines error types shared across repositories.  These
// sentinel values let handlers distinguish failure scenarios: ErrForbidden
// signals an operation on a resource owned by someone else, ErrUserExists
// and ErrItemExists signal uniqueness violations.  Row lookups that find
// nothing return sql.ErrNoRows directly.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into an HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUserExists is returned when a registration collides with an existing
// username or email.  Handlers translate this into an HTTP 409.
var ErrUserExists = errors.New("username or email already exists")

// ErrItemExists is returned when an auction insert collides with an
// existing item id.
var ErrItemExists = errors.New("item already exists")
