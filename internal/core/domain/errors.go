package domain

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrInvalidInput       = errors.New("invalid input")

	ErrUserNotFound     = errors.New("user not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidStatus    = errors.New("invalid status transition")

	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)
