package logger

import (
	"fmt"
	"log/slog"
)

// AssertionError is the panic value used by a strict Asserter.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

// Asserter reports violated invariants. A strict Asserter panics so that tests
// and development builds fail loudly; otherwise the violation is logged at
// error level and execution continues.
type Asserter struct {
	logger *slog.Logger
	strict bool
}

// NewAsserter creates an Asserter that logs through logger.
func NewAsserter(logger *slog.Logger, strict bool) *Asserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Asserter{logger: logger, strict: strict}
}

// Strict reports whether violations panic.
func (a *Asserter) Strict() bool {
	return a.strict
}

// AssertOrLog returns ok unchanged. When ok is false it panics in strict mode
// and logs the message with args otherwise.
func (a *Asserter) AssertOrLog(ok bool, msg string, args ...any) bool {
	if ok {
		return true
	}
	if a.strict {
		// ALLOW-PANIC: strict assertions are enabled for tests and development
		panic(&AssertionError{Message: fmt.Sprintf("%s %v", msg, args)})
	}
	a.logger.Error("assertion failed", append([]any{"assertion", msg}, args...)...)
	return false
}
