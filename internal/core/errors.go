package core

import "errors"

var (
	// ErrMalformedInput marks input bytes that cannot be parsed. Retrying with
	// the same bytes cannot succeed.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidConfig marks a component built with unusable parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidInput marks a request missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate record.
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized marks bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
