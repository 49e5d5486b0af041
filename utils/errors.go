package utils

import "errors"

// Error kinds shared by the store, the credential subsystem and the handlers.
// Wrap them with fmt.Errorf("...%w", ...) for context; Fail maps them to HTTP statuses.
var (
	// ErrInvalidCredentials covers bad, expired or malformed tokens, unknown
	// users at resolution time and failed logins. Always a 401.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("you do not have permission to modify this resource")
	ErrNotFound  = errors.New("not found")
	// ErrConflict reports a uniqueness violation (duplicate username or email).
	ErrConflict   = errors.New("already exists")
	ErrBadRequest = errors.New("invalid request")
	// ErrHashingFailure marks a corrupted stored hash or a hashing library error.
	// It is a server fault and must never be reported as a 401.
	ErrHashingFailure = errors.New("password hashing failure")
)
