package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/store"
)

const quizColumns = `id, title, description, artists, tags, styles,
	answer_painting_ids, distractor_painting_ids,
	view_count, correct_count, incorrect_count, created_at, updated_at`

// PostgresQuizStore implements the store.QuizStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuizStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuizStore creates a new PostgreSQL implementation of the QuizStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresQuizStore(db store.DBTX, logger *slog.Logger) *PostgresQuizStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuizStore{
		db:     db,
		logger: logger.With(slog.String("component", "quiz_store")),
	}
}

// Ensure PostgresQuizStore implements store.QuizStore interface
var _ store.QuizStore = (*PostgresQuizStore)(nil)

// FindByContext implements store.QuizStore.FindByContext
// Empty filters match every quiz.
func (s *PostgresQuizStore) FindByContext(
	ctx context.Context,
	qc domain.QuizContext,
	pageSize int,
) ([]*domain.Quiz, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if pageSize <= 0 {
		pageSize = 20
	}
	qc = qc.Normalize()
	if err := qc.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + quizColumns + `
		FROM quizzes
		WHERE ($1 = '' OR $1 = ANY(artists))
		  AND ($2 = '' OR $2 = ANY(tags))
		  AND ($3 = '' OR $3 = ANY(styles))
		ORDER BY created_at, id
		LIMIT $4 OFFSET $5`

	rows, err := s.db.QueryContext(ctx, query,
		qc.Artist, qc.Tag, qc.Style, pageSize, qc.Page*pageSize)
	if err != nil {
		log.Error("failed to query quizzes by context",
			slog.String("error", err.Error()),
			slog.String("context", string(qc.Key())))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	arrays := newArrayScanner()
	quizzes := []*domain.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows, arrays)
		if err != nil {
			log.Error("failed to scan quiz row", slog.String("error", err.Error()))
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("quizzes found by context",
		slog.String("context", string(qc.Key())),
		slog.Int("count", len(quizzes)))
	return quizzes, nil
}

// GetByID implements store.QuizStore.GetByID
func (s *PostgresQuizStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quiz, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`

	q, err := scanQuiz(s.db.QueryRowContext(ctx, query, id), newArrayScanner())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("quiz not found", slog.String("quiz_id", id.String()))
			return nil, store.ErrQuizNotFound
		}
		log.Error("failed to get quiz by ID",
			slog.String("error", err.Error()),
			slog.String("quiz_id", id.String()))
		return nil, MapError(err)
	}
	return q, nil
}

// AddViews implements store.QuizStore.AddViews
func (s *PostgresQuizStore) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	query := `
		UPDATE quizzes
		SET view_count = view_count + $2, updated_at = NOW()
		WHERE id = $1
	`
	return s.increment(ctx, "add views", query, id, n)
}

// AddSubmissions implements store.QuizStore.AddSubmissions
func (s *PostgresQuizStore) AddSubmissions(ctx context.Context, id uuid.UUID, correct, incorrect int64) error {
	query := `
		UPDATE quizzes
		SET correct_count = correct_count + $2,
		    incorrect_count = incorrect_count + $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	return s.increment(ctx, "add submissions", query, id, correct, incorrect)
}

func (s *PostgresQuizStore) increment(ctx context.Context, op, query string, id uuid.UUID, deltas ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, append([]any{id}, deltas...)...)
	if err != nil {
		log.Error("failed to update quiz counters",
			slog.String("operation", op),
			slog.String("error", err.Error()),
			slog.String("quiz_id", id.String()))
		return store.NewStoreError("quiz", op, "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrQuizNotFound); err != nil {
		log.Debug("quiz not found for counter update",
			slog.String("operation", op),
			slog.String("quiz_id", id.String()))
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner, arrays arrayScanner) (*domain.Quiz, error) {
	var (
		q           domain.Quiz
		answers     []string
		distractors []string
	)
	if err := row.Scan(
		&q.ID,
		&q.Title,
		&q.Description,
		arrays.strings(&q.ArtistNames),
		arrays.strings(&q.Tags),
		arrays.strings(&q.Styles),
		arrays.strings(&answers),
		arrays.strings(&distractors),
		&q.ViewCount,
		&q.CorrectCount,
		&q.IncorrectCount,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if q.AnswerPaintingIDs, err = parseUUIDs(answers); err != nil {
		return nil, err
	}
	if q.DistractorPaintingIDs, err = parseUUIDs(distractors); err != nil {
		return nil, err
	}
	q.ArtistNames = nonNil(q.ArtistNames)
	q.Tags = nonNil(q.Tags)
	q.Styles = nonNil(q.Styles)
	return &q, nil
}
