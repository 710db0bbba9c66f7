package service

import (
	"context"

	"github.com/phrazzld/artquiz-api/internal/domain"
)

func (s *quizServiceImpl) weeklyContexts(ctx context.Context) ([]domain.QuizContext, error) {
	paintings, err := s.paintings.GetWeekly(ctx)
	if err != nil {
		return nil, NewServiceError("quiz", "weekly_contexts", "failed to load weekly paintings", err)
	}

	weekly := make([]domain.Painting, 0, len(paintings))
	for _, p := range paintings {
		weekly = append(weekly, *p)
	}
	return domain.WeeklyContexts(weekly), nil
}

// InitializeFixedContexts implements QuizService.InitializeFixedContexts
func (s *quizServiceImpl) InitializeFixedContexts(ctx context.Context) error {
	contexts, err := s.weeklyContexts(ctx)
	if err != nil {
		return err
	}

	if err := s.scheduler.Initialize(ctx, contexts); err != nil {
		s.logger.ErrorContext(ctx, "failed to initialize fixed contexts",
			"error", err,
			"contexts", len(contexts))
		return NewServiceError("quiz", "initialize_fixed", "failed to initialize scheduler", err)
	}

	s.logger.InfoContext(ctx, "fixed contexts initialized", "contexts", len(contexts))
	return nil
}

// RefreshFixedContexts implements QuizService.RefreshFixedContexts
func (s *quizServiceImpl) RefreshFixedContexts(ctx context.Context) (bool, error) {
	contexts, err := s.weeklyContexts(ctx)
	if err != nil {
		return false, err
	}
	if len(contexts) == 0 {
		s.logger.WarnContext(ctx, "no weekly paintings, keeping current fixed contexts")
		return false, nil
	}

	updated, err := s.scheduler.RequestUpdateFixedQuiz(ctx, contexts)
	if err != nil {
		return false, NewServiceError("quiz", "refresh_fixed", "failed to update fixed contexts", err)
	}
	s.logger.InfoContext(ctx, "fixed contexts refreshed",
		"contexts", len(contexts),
		"updated", updated)
	return updated, nil
}

// UpdateFixedContexts implements QuizService.UpdateFixedContexts
func (s *quizServiceImpl) UpdateFixedContexts(ctx context.Context, contexts []domain.QuizContext) (bool, error) {
	for _, qc := range contexts {
		if err := qc.Validate(); err != nil {
			return false, err
		}
		if err := s.ValidateContext(ctx, qc); err != nil {
			return false, err
		}
	}

	updated, err := s.scheduler.RequestUpdateFixedQuiz(ctx, contexts)
	if err != nil {
		return false, NewServiceError("quiz", "update_fixed", "failed to update fixed contexts", err)
	}
	return updated, nil
}
