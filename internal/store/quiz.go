package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/domain"
)

// QuizStore defines the interface for quiz data persistence.
type QuizStore interface {
	// FindByContext returns the page of quizzes matching every non-empty
	// filter of qc. The offset is qc.Page * pageSize.
	// Returns an empty slice when the page has no quizzes.
	FindByContext(ctx context.Context, qc domain.QuizContext, pageSize int) ([]*domain.Quiz, error)

	// GetByID retrieves a quiz by its unique ID.
	// Returns ErrQuizNotFound if the quiz does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quiz, error)

	// AddViews increments the view count of a quiz by n.
	// Returns ErrQuizNotFound if the quiz does not exist.
	AddViews(ctx context.Context, id uuid.UUID, n int64) error

	// AddSubmissions increments the correct and incorrect counts of a quiz.
	// Returns ErrQuizNotFound if the quiz does not exist.
	AddSubmissions(ctx context.Context, id uuid.UUID, correct, incorrect int64) error
}
