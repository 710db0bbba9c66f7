// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, carries request-scoped loggers through context.Context,
// and provides an Asserter for reporting invariant violations.
package logger
