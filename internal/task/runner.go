package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunnerStarted is returned when registering a job on a running Runner.
var ErrRunnerStarted = errors.New("task runner already started")

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// ShutdownTimeout bounds the shutdown jobs run by Stop.
	// If zero, defaults to 30 seconds
	ShutdownTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		ShutdownTimeout: 30 * time.Second,
	}
}

type periodicJob struct {
	job      Job
	interval time.Duration
}

// Runner executes registered jobs on fixed intervals
type Runner struct {
	jobs       []periodicJob
	onStop     []Job
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	started    bool
	stopped    bool
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewRunner creates a new Runner
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(job Job, err error) {
			// Default error handler just logs the error
			logger.Error("job execution failed",
				"job", job.Name(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Register schedules job to run every interval once the runner starts.
func (r *Runner) Register(job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", job.Name(), interval)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("register %s: %w", job.Name(), ErrRunnerStarted)
	}
	r.jobs = append(r.jobs, periodicJob{job: job, interval: interval})
	return nil
}

// OnStop adds a job that Stop runs once after the periodic jobs have ended.
// Shutdown jobs run in registration order.
func (r *Runner) OnStop(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStop = append(r.onStop, job)
}

// Start begins running the registered jobs
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrRunnerStarted
	}
	r.started = true

	for _, pj := range r.jobs {
		r.wg.Add(1)
		go r.loop(pj)
	}

	r.logger.Info("task runner started", "jobs", len(r.jobs))
	return nil
}

// Stop cancels the periodic jobs, waits for running executions to finish and
// then runs the shutdown jobs. Calling Stop more than once has no effect.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	onStop := append([]Job(nil), r.onStop...)
	r.mu.Unlock()

	r.cancelFunc()
	r.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
	defer cancel()
	for _, job := range onStop {
		r.execute(ctx, job)
	}

	r.logger.Info("task runner stopped", "shutdown_jobs", len(onStop))
}

// RunNow executes the registered job with the given name once, outside its
// schedule.
func (r *Runner) RunNow(ctx context.Context, name string) error {
	r.mu.Lock()
	var job Job
	for _, pj := range r.jobs {
		if pj.job.Name() == name {
			job = pj.job
			break
		}
	}
	r.mu.Unlock()

	if job == nil {
		return fmt.Errorf("unknown job %q", name)
	}
	return r.safeExecute(ctx, job)
}

// loop runs one job on its ticker until the runner is stopped
func (r *Runner) loop(pj periodicJob) {
	defer r.wg.Done()

	ticker := time.NewTicker(pj.interval)
	defer ticker.Stop()

	r.logger.Debug("starting job loop", "job", pj.job.Name(), "interval", pj.interval)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping job loop", "job", pj.job.Name())
			return
		case <-ticker.C:
			r.execute(r.ctx, pj.job)
		}
	}
}

// execute runs a job and reports failures to the error handler
func (r *Runner) execute(ctx context.Context, job Job) {
	start := time.Now()
	if err := r.safeExecute(ctx, job); err != nil {
		r.errHandler(job, err)
		return
	}
	r.logger.Debug("job completed", "job", job.Name(), "duration", time.Since(start))
}

func (r *Runner) safeExecute(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), p)
		}
	}()
	return job.Execute(ctx)
}
