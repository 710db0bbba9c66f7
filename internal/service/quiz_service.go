package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/counter"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/schedule"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// QuizScheduler is the context scheduler as seen by the quiz service.
type QuizScheduler interface {
	Initialize(ctx context.Context, fixed []domain.QuizContext) error
	Schedule(ctx context.Context) (domain.QuizContext, error)
	RequestAddContext(ctx context.Context, contexts []domain.QuizContext, isFixed bool) (bool, error)
	RequestDeleteContext(ctx context.Context, c domain.QuizContext) (bool, error)
	RequestUpdateFixedQuiz(ctx context.Context, fixed []domain.QuizContext) (bool, error)
	Optimize(ctx context.Context) error
	Report(ctx context.Context) (schedule.Status, error)
}

// ScheduleRequest asks for the next page of quizzes. A client that is still
// paging through a context sends it back along with its position; a request
// without one, or at the end of its context, gets a newly scheduled context.
type ScheduleRequest struct {
	Context      *domain.QuizContext
	CurrentIndex *int
	EndIndex     *int
}

// ScheduleResult is one page of quizzes and the context it came from.
type ScheduleResult struct {
	Quizzes []*domain.Quiz
	Context domain.QuizContext
	// CurrentIndex echoes the request when the client's context was kept.
	CurrentIndex *int
}

// QuizService provides quiz scheduling, counters and fixed context management.
type QuizService interface {
	// ScheduleQuizzes returns a non-empty page of quizzes. Scheduled contexts
	// whose page is empty are removed from the scheduler and another one is tried.
	ScheduleQuizzes(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error)

	// ValidateContext checks that every filter of qc names an existing
	// artist, tag or style.
	ValidateContext(ctx context.Context, qc domain.QuizContext) error

	// AddContext validates qc and registers it with the scheduler. It returns
	// false when the scheduler has no free slot.
	AddContext(ctx context.Context, qc domain.QuizContext) (bool, error)

	// RecordView counts one view of a quiz.
	RecordView(ctx context.Context, quizID uuid.UUID)

	// RecordSubmission counts one answer to a quiz.
	RecordSubmission(ctx context.Context, quizID uuid.UUID, isCorrect bool)

	// FlushViews writes buffered view counts to the store.
	FlushViews(ctx context.Context) counter.FlushResult

	// FlushSubmissions writes buffered submission counts to the store.
	FlushSubmissions(ctx context.Context) counter.FlushResult

	// InitializeFixedContexts registers the weekly paintings' artists as
	// fixed contexts.
	InitializeFixedContexts(ctx context.Context) error

	// RefreshFixedContexts replaces the fixed set with the current weekly
	// paintings' artists.
	RefreshFixedContexts(ctx context.Context) (bool, error)

	// UpdateFixedContexts validates contexts and makes them the fixed set.
	UpdateFixedContexts(ctx context.Context, contexts []domain.QuizContext) (bool, error)

	// OptimizeSchedule frees a scheduler slot when the table is full.
	OptimizeSchedule(ctx context.Context) error

	// ScheduleStatus reports the scheduler state.
	ScheduleStatus(ctx context.Context) (schedule.Status, error)
}

// QuizServiceConfig holds the quiz service settings.
type QuizServiceConfig struct {
	PageSize           int
	MaxScheduleRetries int
	CounterGroupSize   int
}

// quizServiceImpl implements the QuizService interface
type quizServiceImpl struct {
	quizzes     store.QuizStore
	paintings   store.PaintingStore
	tags        store.TagStore
	scheduler   QuizScheduler
	views       *counter.Buffer[counter.Views]
	submissions *counter.Buffer[counter.Submission]
	cfg         QuizServiceConfig
	logger      *slog.Logger
}

// NewQuizService creates a new QuizService.
// It returns an error if any of the required dependencies are nil.
func NewQuizService(
	quizzes store.QuizStore,
	paintings store.PaintingStore,
	tags store.TagStore,
	scheduler QuizScheduler,
	cfg QuizServiceConfig,
	logger *slog.Logger,
) (QuizService, error) {
	switch {
	case quizzes == nil:
		return nil, &ServiceError{Service: "quiz", Operation: "create_service", Message: "quiz store cannot be nil"}
	case paintings == nil:
		return nil, &ServiceError{Service: "quiz", Operation: "create_service", Message: "painting store cannot be nil"}
	case tags == nil:
		return nil, &ServiceError{Service: "quiz", Operation: "create_service", Message: "tag store cannot be nil"}
	case scheduler == nil:
		return nil, &ServiceError{Service: "quiz", Operation: "create_service", Message: "scheduler cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxScheduleRetries <= 0 {
		cfg.MaxScheduleRetries = 10
	}

	s := &quizServiceImpl{
		quizzes:   quizzes,
		paintings: paintings,
		tags:      tags,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger.With("component", "quiz_service"),
	}
	s.views = counter.NewBuffer[counter.Views](
		counter.Config{Name: "quiz_views", GroupSize: cfg.CounterGroupSize},
		s.persistViews, logger)
	s.submissions = counter.NewBuffer[counter.Submission](
		counter.Config{Name: "quiz_submissions", GroupSize: cfg.CounterGroupSize},
		s.persistSubmissions, logger)
	return s, nil
}

// ScheduleQuizzes implements QuizService.ScheduleQuizzes
func (s *quizServiceImpl) ScheduleQuizzes(ctx context.Context, req ScheduleRequest) (*ScheduleResult, error) {
	for attempt := 0; attempt < s.cfg.MaxScheduleRetries; attempt++ {
		qc, kept, err := s.extractContext(ctx, req)
		if err != nil {
			return nil, err
		}

		quizzes, err := s.quizzes.FindByContext(ctx, qc, s.cfg.PageSize)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to load quiz page",
				"error", err,
				"context", qc.Key())
			return nil, NewServiceError("quiz", "schedule", "failed to load quizzes", err)
		}

		if len(quizzes) == 0 {
			s.logger.InfoContext(ctx, "context has no quizzes, removing it",
				"context", qc.Key(),
				"attempt", attempt+1)
			if _, err := s.scheduler.RequestDeleteContext(ctx, qc); err != nil {
				return nil, NewServiceError("quiz", "schedule", "failed to delete empty context", err)
			}
			req.Context = nil
			continue
		}

		result := &ScheduleResult{Quizzes: quizzes, Context: qc}
		if kept {
			result.CurrentIndex = req.CurrentIndex
		}
		return result, nil
	}

	s.logger.WarnContext(ctx, "no quizzes after retries", "attempts", s.cfg.MaxScheduleRetries)
	return nil, ErrNoQuizzes
}

// extractContext returns the client's context while it has pages left, and
// a scheduled one otherwise. kept reports which one was used.
func (s *quizServiceImpl) extractContext(ctx context.Context, req ScheduleRequest) (domain.QuizContext, bool, error) {
	if req.Context != nil && req.CurrentIndex != nil && req.EndIndex != nil &&
		*req.CurrentIndex != *req.EndIndex {
		qc := req.Context.Normalize()
		if err := qc.Validate(); err != nil {
			return domain.QuizContext{}, false, err
		}
		if err := s.ValidateContext(ctx, qc); err != nil {
			return domain.QuizContext{}, false, err
		}
		return qc, true, nil
	}

	qc, err := s.scheduler.Schedule(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrNoContextAvailable) {
			return domain.QuizContext{}, false, ErrNoQuizzes
		}
		return domain.QuizContext{}, false, NewServiceError("quiz", "schedule", "failed to schedule context", err)
	}
	return qc, false, nil
}

// ValidateContext implements QuizService.ValidateContext
func (s *quizServiceImpl) ValidateContext(ctx context.Context, qc domain.QuizContext) error {
	qc = qc.Normalize()

	checks := []struct {
		entity string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{"artist", qc.Artist, s.paintings.ArtistExists},
		{"tag", qc.Tag, s.tags.Exists},
		{"style", qc.Style, s.paintings.StyleExists},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		found, err := c.exists(ctx, c.value)
		if err != nil {
			return NewServiceError("quiz", "validate_context", "failed to look up "+c.entity, err)
		}
		if !found {
			return fmt.Errorf("%w: %s %q", ErrUnknownFilter, c.entity, c.value)
		}
	}
	return nil
}

// AddContext implements QuizService.AddContext
func (s *quizServiceImpl) AddContext(ctx context.Context, qc domain.QuizContext) (bool, error) {
	if err := qc.Validate(); err != nil {
		return false, err
	}
	if err := s.ValidateContext(ctx, qc); err != nil {
		return false, err
	}

	added, err := s.scheduler.RequestAddContext(ctx, []domain.QuizContext{qc}, false)
	if err != nil {
		return false, NewServiceError("quiz", "add_context", "failed to add context", err)
	}
	return added, nil
}

// OptimizeSchedule implements QuizService.OptimizeSchedule
func (s *quizServiceImpl) OptimizeSchedule(ctx context.Context) error {
	return NewServiceError("quiz", "optimize", "failed to optimize schedule", s.scheduler.Optimize(ctx))
}

// ScheduleStatus implements QuizService.ScheduleStatus
func (s *quizServiceImpl) ScheduleStatus(ctx context.Context) (schedule.Status, error) {
	status, err := s.scheduler.Report(ctx)
	if err != nil {
		return schedule.Status{}, NewServiceError("quiz", "status", "failed to read schedule", err)
	}
	return status, nil
}
