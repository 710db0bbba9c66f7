package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/artquiz-api/internal/api"
	"github.com/phrazzld/artquiz-api/internal/config"
	"github.com/phrazzld/artquiz-api/internal/platform/logger"
	"github.com/phrazzld/artquiz-api/internal/platform/postgres"
	"github.com/phrazzld/artquiz-api/internal/schedule"
	"github.com/phrazzld/artquiz-api/internal/service"
	"github.com/phrazzld/artquiz-api/internal/service/auth"
	"github.com/phrazzld/artquiz-api/internal/store"
	"github.com/phrazzld/artquiz-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	paintingStore store.PaintingStore

	jwtService    auth.JWTService
	authenticator api.AdminAuthenticator
	quizService   service.QuizService
	tagService    service.TagService

	// runner is nil until startJobs is called.
	runner *task.Runner
}

// newApplication creates a new application instance with all dependencies initialized.
// The scheduler is seeded with the weekly fixed contexts before it returns.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.authenticator, err = auth.NewAdminAuthenticator(cfg.Auth, auth.NewBcryptVerifier(), app.jwtService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin authenticator: %w", err)
	}
	log.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.paintingStore = postgres.NewPostgresPaintingStore(db, log)
	quizStore := postgres.NewPostgresQuizStore(db, log)
	tagStore := postgres.NewPostgresTagStore(db, log)

	scheduler := schedule.NewScheduler(schedule.Config{
		Capacity:    cfg.Scheduler.Capacity,
		LockTimeout: time.Duration(cfg.Scheduler.LockTimeoutSeconds) * time.Second,
	}, logger.NewAsserter(log, cfg.Server.StrictAssertions), log)

	app.quizService, err = service.NewQuizService(
		quizStore,
		app.paintingStore,
		tagStore,
		scheduler,
		service.QuizServiceConfig{
			PageSize:           cfg.Quiz.PageSize,
			MaxScheduleRetries: cfg.Quiz.MaxScheduleRetries,
			CounterGroupSize:   cfg.Counter.GroupSize,
		},
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz service: %w", err)
	}

	app.tagService, err = service.NewTagService(
		service.NewTagRepositoryAdapter(tagStore, db),
		service.TagServiceConfig{
			QueueLimit: cfg.Batch.QueueLimit,
			Window:     time.Duration(cfg.Batch.WindowMillis) * time.Millisecond,
		},
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %w", err)
	}

	if err := app.quizService.InitializeFixedContexts(ctx); err != nil {
		app.tagService.Close()
		return nil, fmt.Errorf("failed to initialize fixed contexts: %w", err)
	}

	log.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background jobs and the HTTP server and blocks until ctx
// is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.startJobs(); err != nil {
		app.cleanup()
		return err
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newJobRunner registers the periodic maintenance jobs and the shutdown
// jobs. Counters are flushed one last time before the tag batcher closes.
func (app *application) newJobRunner() (*task.Runner, error) {
	cfg := app.config
	runner := task.NewRunner(task.DefaultRunnerConfig(), app.logger)
	runner.SetErrorHandler(func(job task.Job, err error) {
		app.logger.Warn("background job failed",
			slog.String("job", job.Name()),
			slog.String("error", err.Error()))
	})

	flushEvery := time.Duration(cfg.Counter.FlushIntervalMinutes) * time.Minute
	periodic := []struct {
		job      task.Job
		interval time.Duration
	}{
		{task.NewFlushViewsJob(app.quizService), flushEvery},
		{task.NewFlushSubmissionsJob(app.quizService), flushEvery},
		{task.NewOptimizeJob(app.quizService), time.Duration(cfg.Scheduler.OptimizeIntervalMinutes) * time.Minute},
		{task.NewRefreshFixedJob(app.quizService), time.Duration(cfg.Scheduler.FixedRefreshIntervalHours) * time.Hour},
	}
	for _, p := range periodic {
		if err := runner.Register(p.job, p.interval); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", p.job.Name(), err)
		}
	}

	runner.OnStop(task.NewFlushViewsJob(app.quizService))
	runner.OnStop(task.NewFlushSubmissionsJob(app.quizService))
	runner.OnStop(task.NewCloseJob(task.JobCloseTagBatcher, app.tagService))
	return runner, nil
}

func (app *application) startJobs() error {
	runner, err := app.newJobRunner()
	if err != nil {
		return err
	}
	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}
	app.runner = runner
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	} else if app.tagService != nil {
		app.tagService.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
