// Package task runs the periodic background jobs of the server: flushing the
// quiz counters, optimizing the context schedule and refreshing the fixed
// weekly contexts. Stop runs the registered shutdown jobs once so buffered
// work is not lost on exit.
package task
