package task

import (
	"context"
)

// Job names registered by the server.
const (
	JobFlushViews       = "flush_views"
	JobFlushSubmissions = "flush_submissions"
	JobOptimizeSchedule = "optimize_schedule"
	JobRefreshFixed     = "refresh_fixed_contexts"
	JobCloseTagBatcher  = "close_tag_batcher"
)

// Job represents a unit of background work run by the Runner
type Job interface {
	// Name returns the job identifier used in logs
	Name() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

// NewJob wraps fn as a Job.
func NewJob(name string, fn func(ctx context.Context) error) Job {
	return &funcJob{name: name, fn: fn}
}

func (j *funcJob) Name() string {
	return j.name
}

func (j *funcJob) Execute(ctx context.Context) error {
	return j.fn(ctx)
}
