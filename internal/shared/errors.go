package shared

import "errors"

var (
	// ErrNotFound indicates the target principal, permission, or record
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the record already exists, e.g. a duplicate
	// grant. Distinct from forbidden so callers can render "already
	// granted" rather than "not allowed".
	ErrConflict = errors.New("already exists")
	// ErrUnauthenticated indicates no resolvable actor on the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation indicates a malformed or incomplete request payload.
	ErrValidation = errors.New("validation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
