package schedule

import "errors"

var (
	// ErrUnavailable is returned when the scheduler lock could not be acquired
	// before the configured timeout.
	ErrUnavailable = errors.New("scheduler unavailable")

	// ErrCapacityExceeded is returned when more contexts are supplied than the
	// slot table can hold.
	ErrCapacityExceeded = errors.New("scheduler capacity exceeded")

	// ErrNoContextAvailable is returned by Schedule when every slot is empty.
	ErrNoContextAvailable = errors.New("no context available")

	// ErrNoEvictable is returned when an eviction needs more regular contexts
	// than the table holds.
	ErrNoEvictable = errors.New("no evictable context")

	// ErrInvariant is returned when the slot table and node map disagree.
	ErrInvariant = errors.New("scheduler invariant violated")
)
