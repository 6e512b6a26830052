package service

import "errors"

// Error taxonomy surfaced at the service boundary. Callers classify with
// errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrNotFound marks a referenced recipe, user, comment or rating that
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks out-of-range scores, empty required fields,
	// over-length text and malformed filters. It is always detected before
	// any write is committed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict is surfaced when concurrent writers race on the same
	// aggregate beyond the bounded retry budget.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks a caller lacking the capability for an operation,
	// such as a non-author editing recipe content.
	ErrForbidden = errors.New("forbidden")
)
