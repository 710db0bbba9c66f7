package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/store"
)

const paintingColumns = `id, title, artist_name, image_url, tags, styles, is_weekly`

// PostgresPaintingStore implements the store.PaintingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPaintingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaintingStore creates a new PostgreSQL implementation of the PaintingStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPaintingStore(db store.DBTX, logger *slog.Logger) *PostgresPaintingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPaintingStore{
		db:     db,
		logger: logger.With(slog.String("component", "painting_store")),
	}
}

// Ensure PostgresPaintingStore implements store.PaintingStore interface
var _ store.PaintingStore = (*PostgresPaintingStore)(nil)

// GetByIDs implements store.PaintingStore.GetByIDs
func (s *PostgresPaintingStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Painting, error) {
	if len(ids) == 0 {
		return []*domain.Painting{}, nil
	}

	query := `SELECT ` + paintingColumns + `
		FROM paintings
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at, id`

	return s.query(ctx, "get paintings by ids", query, uuidStrings(ids))
}

// GetByArtist implements store.PaintingStore.GetByArtist
func (s *PostgresPaintingStore) GetByArtist(
	ctx context.Context,
	artist string,
	limit, offset int,
) ([]*domain.Painting, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + paintingColumns + `
		FROM paintings
		WHERE artist_name = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`

	return s.query(ctx, "get paintings by artist", query, artist, limit, offset)
}

// GetWeekly implements store.PaintingStore.GetWeekly
func (s *PostgresPaintingStore) GetWeekly(ctx context.Context) ([]*domain.Painting, error) {
	query := `SELECT ` + paintingColumns + `
		FROM paintings
		WHERE is_weekly
		ORDER BY created_at, id`

	return s.query(ctx, "get weekly paintings", query)
}

// ArtistExists implements store.PaintingStore.ArtistExists
func (s *PostgresPaintingStore) ArtistExists(ctx context.Context, artist string) (bool, error) {
	return s.exists(ctx, "artist exists",
		`SELECT EXISTS (SELECT 1 FROM paintings WHERE artist_name = $1)`, artist)
}

// StyleExists implements store.PaintingStore.StyleExists
func (s *PostgresPaintingStore) StyleExists(ctx context.Context, style string) (bool, error) {
	return s.exists(ctx, "style exists",
		`SELECT EXISTS (SELECT 1 FROM paintings WHERE $1 = ANY(styles))`, style)
}

func (s *PostgresPaintingStore) exists(ctx context.Context, op, query string, arg string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var found bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		log.Error("query failed", slog.String("operation", op), slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return found, nil
}

func (s *PostgresPaintingStore) query(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]*domain.Painting, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", slog.String("operation", op), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	arrays := newArrayScanner()
	paintings := []*domain.Painting{}
	for rows.Next() {
		var p domain.Painting
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.ArtistName,
			&p.ImageURL,
			arrays.strings(&p.Tags),
			arrays.strings(&p.Styles),
			&p.IsWeekly,
		); err != nil {
			log.Error("failed to scan painting row", slog.String("error", err.Error()))
			return nil, err
		}
		p.Tags = nonNil(p.Tags)
		p.Styles = nonNil(p.Styles)
		paintings = append(paintings, &p)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("paintings loaded", slog.String("operation", op), slog.Int("count", len(paintings)))
	return paintings, nil
}
