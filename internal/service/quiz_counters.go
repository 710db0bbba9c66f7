package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/artquiz-api/internal/counter"
	"github.com/phrazzld/artquiz-api/internal/store"
)

// RecordView implements QuizService.RecordView
func (s *quizServiceImpl) RecordView(ctx context.Context, quizID uuid.UUID) {
	s.views.Increment(quizID, 1)
}

// RecordSubmission implements QuizService.RecordSubmission
func (s *quizServiceImpl) RecordSubmission(ctx context.Context, quizID uuid.UUID, isCorrect bool) {
	s.submissions.Increment(quizID, counter.SubmissionFor(isCorrect))
}

// FlushViews implements QuizService.FlushViews
func (s *quizServiceImpl) FlushViews(ctx context.Context) counter.FlushResult {
	return s.views.Flush(ctx)
}

// FlushSubmissions implements QuizService.FlushSubmissions
func (s *quizServiceImpl) FlushSubmissions(ctx context.Context) counter.FlushResult {
	return s.submissions.Flush(ctx)
}

// persistViews writes one coalesced view count. Counts for quizzes that no
// longer exist are dropped instead of being retried forever.
func (s *quizServiceImpl) persistViews(ctx context.Context, id uuid.UUID, views counter.Views) error {
	err := s.quizzes.AddViews(ctx, id, int64(views))
	if errors.Is(err, store.ErrNotFound) {
		s.logger.WarnContext(ctx, "dropping views for missing quiz", "quiz_id", id, "views", views)
		return nil
	}
	return err
}

func (s *quizServiceImpl) persistSubmissions(ctx context.Context, id uuid.UUID, sub counter.Submission) error {
	err := s.quizzes.AddSubmissions(ctx, id, sub.Correct, sub.Incorrect)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.WarnContext(ctx, "dropping submissions for missing quiz",
			"quiz_id", id,
			"correct", sub.Correct,
			"incorrect", sub.Incorrect)
		return nil
	}
	return err
}
