// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it are skipped unless a test database
// URL is configured, and each test works inside a transaction that is
// rolled back when it finishes.
package testdb
