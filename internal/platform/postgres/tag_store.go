package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

// Ensure PostgresTagStore implements store.TagStore interface
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{
		db:     tx,
		logger: s.logger,
	}
}

// Exists implements store.TagStore.Exists
func (s *PostgresTagStore) Exists(ctx context.Context, name string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var found bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&found)
	if err != nil {
		log.Error("failed to check tag", slog.String("error", err.Error()), slog.String("name", name))
		return false, MapError(err)
	}
	return found, nil
}

// FindByNames implements store.TagStore.FindByNames
func (s *PostgresTagStore) FindByNames(ctx context.Context, names []string) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(names) == 0 {
		return []*domain.Tag{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM tags
		WHERE name = ANY($1::text[])
		ORDER BY name
	`, names)
	if err != nil {
		log.Error("failed to query tags by name", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tags := []*domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			log.Error("failed to scan tag row", slog.String("error", err.Error()))
			return nil, err
		}
		tags = append(tags, &tag)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}
	return tags, nil
}

// CreateMultiple implements store.TagStore.CreateMultiple
func (s *PostgresTagStore) CreateMultiple(ctx context.Context, tags []*domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, tag := range tags {
		if err := tag.Validate(); err != nil {
			log.Warn("tag validation failed during create",
				slog.String("error", err.Error()),
				slog.String("name", tag.Name))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`
	for _, tag := range tags {
		if _, err := s.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.CreatedAt); err != nil {
			if IsUniqueViolation(err) {
				log.Debug("tag already exists", slog.String("name", tag.Name))
				return fmt.Errorf("%w: %s", store.ErrTagExists, tag.Name)
			}
			log.Error("failed to create tag",
				slog.String("error", err.Error()),
				slog.String("name", tag.Name))
			return store.NewStoreError("tag", "create", "insert failed", MapError(err))
		}
	}

	log.Info("tags created", slog.Int("count", len(tags)))
	return nil
}
