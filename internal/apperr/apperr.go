// Package apperr defines the sentinel errors services return and handlers
// translate into HTTP status codes.
package apperr

import "errors"

var (
	// ErrUnauthorized covers missing or unknown bearer tokens and wrong
	// passwords. Never retried.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller is authenticated but lacks
	// the required role (admin-only operations, deleting others' events).
	ErrForbidden = errors.New("forbidden")

	// ErrEmailTaken is returned when registering an email that already has
	// an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotFound covers unknown event ids and unknown users.
	ErrNotFound = errors.New("not found")

	// ErrInvalid covers malformed input: unknown event types, bad dates,
	// missing required fields, invalid invite tokens.
	ErrInvalid = errors.New("invalid request")
)
