package domain

import "errors"

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrHourLogNotFound = errors.New("hour log not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")

	ErrValidation         = errors.New("missing or invalid field")
	ErrInvalidStatus      = errors.New("invalid job status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated covers every session-verification failure (missing
	// token, bad signature, expiry, revocation, unknown user, role mismatch)
	// so callers cannot distinguish which check failed.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access forbidden")
)
