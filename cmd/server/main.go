// Package main implements the entry point for the artquiz API server,
// which schedules painting quizzes for players and exposes the
// administrator endpoints that manage the schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/artquiz-api/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "",
		fmt.Sprintf("run a migration command %v and exit", postgres.MigrationCommands))
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrate); err != nil {
		log.Printf("artquiz-api: %v", err)
		os.Exit(1)
	}
}

// run wires the application and blocks until ctx is canceled or the
// server fails. With a migration command it migrates and returns instead.
func run(ctx context.Context, migrateCommand string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCommand != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCommand, logger)
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	logger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("scheduler_capacity", cfg.Scheduler.Capacity))

	return app.Run(ctx)
}
