package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "ARTQUIZ"

// setDefaults registers default values for every optional setting.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.strict_assertions", false)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.admin_username", "admin")

	v.SetDefault("scheduler.capacity", 10)
	v.SetDefault("scheduler.lock_timeout_seconds", 10)
	v.SetDefault("scheduler.optimize_interval_minutes", 10)
	v.SetDefault("scheduler.fixed_refresh_interval_hours", 24)

	v.SetDefault("counter.flush_interval_minutes", 10)
	v.SetDefault("counter.group_size", 5)

	v.SetDefault("batch.queue_limit", 40)
	v.SetDefault("batch.window_millis", 4000)

	v.SetDefault("quiz.page_size", 20)
	v.SetDefault("quiz.max_schedule_retries", 10)
}

// bindEnvs binds keys without defaults so that AutomaticEnv picks them up
// during Unmarshal.
func bindEnvs(v *viper.Viper) error {
	for _, key := range []string{"database.url", "auth.jwt_secret", "auth.admin_password_hash"} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}
	return nil
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first, without overriding
// variables that are already set. Environment variables take precedence over
// values from config.yaml.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
