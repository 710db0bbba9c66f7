package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// TagRepository defines the repository interface for the tag service
type TagRepository interface {
	// FindByNames returns the existing tags among names
	FindByNames(ctx context.Context, names []string) ([]*domain.Tag, error)

	// CreateMultiple saves multiple tags to the store
	CreateMultiple(ctx context.Context, tags []*domain.Tag) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) TagRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// NewTagRepositoryAdapter creates a new adapter that allows a store.TagStore
// to be used where a TagRepository is expected.
func NewTagRepositoryAdapter(tagStore store.TagStore, db *sql.DB) TagRepository {
	return &tagRepositoryAdapter{
		tagStore: tagStore,
		db:       db,
	}
}

// tagRepositoryAdapter adapts a store.TagStore to the TagRepository interface
type tagRepositoryAdapter struct {
	tagStore store.TagStore
	db       *sql.DB
}

// FindByNames implements TagRepository.FindByNames
func (a *tagRepositoryAdapter) FindByNames(ctx context.Context, names []string) ([]*domain.Tag, error) {
	return a.tagStore.FindByNames(ctx, names)
}

// CreateMultiple implements TagRepository.CreateMultiple
func (a *tagRepositoryAdapter) CreateMultiple(ctx context.Context, tags []*domain.Tag) error {
	return a.tagStore.CreateMultiple(ctx, tags)
}

// WithTx implements TagRepository.WithTx
func (a *tagRepositoryAdapter) WithTx(tx *sql.Tx) TagRepository {
	return &tagRepositoryAdapter{
		tagStore: a.tagStore.WithTx(tx),
		db:       a.db,
	}
}

// DB implements TagRepository.DB
func (a *tagRepositoryAdapter) DB() *sql.DB {
	return a.db
}
