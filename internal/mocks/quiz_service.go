package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/counter"
	"github.com/phrazzld/artquiz-api/internal/domain"
	"github.com/phrazzld/artquiz-api/internal/schedule"
	"github.com/phrazzld/artquiz-api/internal/service"
)

// RecordedSubmission is one call to MockQuizService.RecordSubmission.
type RecordedSubmission struct {
	QuizID    uuid.UUID
	IsCorrect bool
}

// MockQuizService implements service.QuizService for testing.
// Unset function fields return zero values.
type MockQuizService struct {
	ScheduleQuizzesFn         func(ctx context.Context, req service.ScheduleRequest) (*service.ScheduleResult, error)
	ValidateContextFn         func(ctx context.Context, qc domain.QuizContext) error
	AddContextFn              func(ctx context.Context, qc domain.QuizContext) (bool, error)
	FlushViewsFn              func(ctx context.Context) counter.FlushResult
	FlushSubmissionsFn        func(ctx context.Context) counter.FlushResult
	InitializeFixedContextsFn func(ctx context.Context) error
	RefreshFixedContextsFn    func(ctx context.Context) (bool, error)
	UpdateFixedContextsFn     func(ctx context.Context, contexts []domain.QuizContext) (bool, error)
	OptimizeScheduleFn        func(ctx context.Context) error
	ScheduleStatusFn          func(ctx context.Context) (schedule.Status, error)

	// Views and Submissions record the counter calls.
	Views       []uuid.UUID
	Submissions []RecordedSubmission
}

var _ service.QuizService = (*MockQuizService)(nil)

// ScheduleQuizzes implements service.QuizService
func (m *MockQuizService) ScheduleQuizzes(ctx context.Context, req service.ScheduleRequest) (*service.ScheduleResult, error) {
	if m.ScheduleQuizzesFn != nil {
		return m.ScheduleQuizzesFn(ctx, req)
	}
	return &service.ScheduleResult{}, nil
}

// ValidateContext implements service.QuizService
func (m *MockQuizService) ValidateContext(ctx context.Context, qc domain.QuizContext) error {
	if m.ValidateContextFn != nil {
		return m.ValidateContextFn(ctx, qc)
	}
	return nil
}

// AddContext implements service.QuizService
func (m *MockQuizService) AddContext(ctx context.Context, qc domain.QuizContext) (bool, error) {
	if m.AddContextFn != nil {
		return m.AddContextFn(ctx, qc)
	}
	return true, nil
}

// RecordView implements service.QuizService
func (m *MockQuizService) RecordView(ctx context.Context, quizID uuid.UUID) {
	m.Views = append(m.Views, quizID)
}

// RecordSubmission implements service.QuizService
func (m *MockQuizService) RecordSubmission(ctx context.Context, quizID uuid.UUID, isCorrect bool) {
	m.Submissions = append(m.Submissions, RecordedSubmission{QuizID: quizID, IsCorrect: isCorrect})
}

// FlushViews implements service.QuizService
func (m *MockQuizService) FlushViews(ctx context.Context) counter.FlushResult {
	if m.FlushViewsFn != nil {
		return m.FlushViewsFn(ctx)
	}
	return counter.FlushResult{}
}

// FlushSubmissions implements service.QuizService
func (m *MockQuizService) FlushSubmissions(ctx context.Context) counter.FlushResult {
	if m.FlushSubmissionsFn != nil {
		return m.FlushSubmissionsFn(ctx)
	}
	return counter.FlushResult{}
}

// InitializeFixedContexts implements service.QuizService
func (m *MockQuizService) InitializeFixedContexts(ctx context.Context) error {
	if m.InitializeFixedContextsFn != nil {
		return m.InitializeFixedContextsFn(ctx)
	}
	return nil
}

// RefreshFixedContexts implements service.QuizService
func (m *MockQuizService) RefreshFixedContexts(ctx context.Context) (bool, error) {
	if m.RefreshFixedContextsFn != nil {
		return m.RefreshFixedContextsFn(ctx)
	}
	return false, nil
}

// UpdateFixedContexts implements service.QuizService
func (m *MockQuizService) UpdateFixedContexts(ctx context.Context, contexts []domain.QuizContext) (bool, error) {
	if m.UpdateFixedContextsFn != nil {
		return m.UpdateFixedContextsFn(ctx, contexts)
	}
	return true, nil
}

// OptimizeSchedule implements service.QuizService
func (m *MockQuizService) OptimizeSchedule(ctx context.Context) error {
	if m.OptimizeScheduleFn != nil {
		return m.OptimizeScheduleFn(ctx)
	}
	return nil
}

// ScheduleStatus implements service.QuizService
func (m *MockQuizService) ScheduleStatus(ctx context.Context) (schedule.Status, error) {
	if m.ScheduleStatusFn != nil {
		return m.ScheduleStatusFn(ctx)
	}
	return schedule.Status{}, nil
}
