// Package schedule rotates a bounded set of quiz contexts across requests.
//
// A Scheduler keeps a fixed-capacity circular slot table. Every call to
// Schedule advances a pointer to the next occupied slot, so each registered
// context is served in turn. Contexts are either fixed (the weekly selection,
// kept until the fixed set is replaced) or regular; when room is needed the
// regular context with the fewest schedules is evicted first.
//
// All state is guarded by a single lock with a bounded acquire timeout. When
// the timeout elapses, operations fail with ErrUnavailable instead of
// blocking the caller indefinitely.
package schedule
