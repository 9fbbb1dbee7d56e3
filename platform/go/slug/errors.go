package slug

import "errors"

var (
	// ErrStorageUnavailable wraps failures of the existence check. It is never returned
	// for a slug that is merely taken.
	ErrStorageUnavailable = errors.New("slug: storage unavailable")

	// ErrAttemptsExhausted is returned when no free suffix was found within the
	// resolver's attempt budget.
	ErrAttemptsExhausted = errors.New("slug: unique suffix attempts exhausted")
)

var (
	// ErrInvalid is returned when a client-supplied slug is not canonical.
	ErrInvalid = errors.New("slug: invalid")

	// ErrTaken is returned when a client-supplied slug already belongs to another live record.
	ErrTaken = errors.New("slug: already taken")
)
