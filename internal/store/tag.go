package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/artquiz-api/internal/domain"
)

// TagStore defines the interface for tag data persistence.
type TagStore interface {
	// Exists reports whether a tag with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// FindByNames returns the existing tags among names.
	FindByNames(ctx context.Context, names []string) ([]*domain.Tag, error)

	// CreateMultiple saves all tags or none of them.
	// IMPORTANT: run it through WithTx inside RunInTransaction so that a
	// failure part way through leaves nothing behind.
	// Returns ErrTagExists if any name is already taken.
	//
	// Usage example:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return tagStore.WithTx(tx).CreateMultiple(ctx, tags)
	//   })
	CreateMultiple(ctx context.Context, tags []*domain.Tag) error

	// WithTx returns a TagStore that runs its queries in tx.
	WithTx(tx *sql.Tx) TagStore
}
