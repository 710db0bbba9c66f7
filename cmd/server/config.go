package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/artquiz-api/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Auth.AdminPasswordHash != "" {
		slog.Debug("Auth configuration", "admin_hash_present", true)
	}

	return cfg, nil
}
