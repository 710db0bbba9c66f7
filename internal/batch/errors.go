package batch

import "errors"

var (
	// ErrNoOutcome is returned to waiters whose key is missing from the
	// process function's result.
	ErrNoOutcome = errors.New("batch returned no outcome for key")

	// ErrBatchFailed is returned to every waiter of a window whose process
	// function panicked.
	ErrBatchFailed = errors.New("batch processing failed")

	// ErrClosed is returned by Add after Close has been called.
	ErrClosed = errors.New("batcher closed")
)
