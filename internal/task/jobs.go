package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/artquiz-api/internal/counter"
)

// CounterFlusher flushes the buffered quiz counters.
type CounterFlusher interface {
	FlushViews(ctx context.Context) counter.FlushResult
	FlushSubmissions(ctx context.Context) counter.FlushResult
}

// ScheduleMaintainer keeps the quiz context schedule healthy.
type ScheduleMaintainer interface {
	OptimizeSchedule(ctx context.Context) error
	RefreshFixedContexts(ctx context.Context) (bool, error)
}

// Closer releases a component on shutdown.
type Closer interface {
	Close()
}

func flushJob(name string, flush func(context.Context) counter.FlushResult) Job {
	return NewJob(name, func(ctx context.Context) error {
		result := flush(ctx)
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d counters not persisted, kept for the next flush",
				result.Failed, result.Drained)
		}
		return nil
	})
}

// NewFlushViewsJob returns a job that writes buffered view counts.
func NewFlushViewsJob(f CounterFlusher) Job {
	return flushJob(JobFlushViews, f.FlushViews)
}

// NewFlushSubmissionsJob returns a job that writes buffered submission counts.
func NewFlushSubmissionsJob(f CounterFlusher) Job {
	return flushJob(JobFlushSubmissions, f.FlushSubmissions)
}

// NewOptimizeJob returns a job that frees a schedule slot when the table is full.
func NewOptimizeJob(m ScheduleMaintainer) Job {
	return NewJob(JobOptimizeSchedule, m.OptimizeSchedule)
}

// NewRefreshFixedJob returns a job that re-applies the weekly fixed contexts.
func NewRefreshFixedJob(m ScheduleMaintainer) Job {
	return NewJob(JobRefreshFixed, func(ctx context.Context) error {
		_, err := m.RefreshFixedContexts(ctx)
		return err
	})
}

// NewCloseJob returns a shutdown job that closes c.
func NewCloseJob(name string, c Closer) Job {
	return NewJob(name, func(context.Context) error {
		c.Close()
		return nil
	})
}
