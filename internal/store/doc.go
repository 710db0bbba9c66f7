// Package store defines the persistence interfaces for paintings, quizzes
// and tags. Business logic depends on these interfaces only; the PostgreSQL
// implementations live in internal/platform/postgres.
package store
