package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Counter   CounterConfig   `mapstructure:"counter" validate:"required"`
	Batch     BatchConfig     `mapstructure:"batch" validate:"required"`
	Quiz      QuizConfig      `mapstructure:"quiz" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// StrictAssertions turns invariant violations into panics instead of error logs.
	StrictAssertions bool `mapstructure:"strict_assertions"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the settings for the admin endpoints.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=1440"`
	AdminUsername        string `mapstructure:"admin_username" validate:"required"`
	// AdminPasswordHash is a bcrypt hash, see cmd/hash-generator.
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"required"`
}

// SchedulerConfig controls the quiz context scheduler.
type SchedulerConfig struct {
	Capacity                  int `mapstructure:"capacity" validate:"gt=0,lte=1000"`
	LockTimeoutSeconds        int `mapstructure:"lock_timeout_seconds" validate:"gt=0"`
	OptimizeIntervalMinutes   int `mapstructure:"optimize_interval_minutes" validate:"gt=0"`
	FixedRefreshIntervalHours int `mapstructure:"fixed_refresh_interval_hours" validate:"gt=0"`
}

// CounterConfig controls the view and submission counter buffers.
type CounterConfig struct {
	FlushIntervalMinutes int `mapstructure:"flush_interval_minutes" validate:"gt=0"`
	// GroupSize bounds how many increments are sent to the database at once.
	GroupSize int `mapstructure:"group_size" validate:"gt=0,lte=100"`
}

// BatchConfig controls create-request batching.
type BatchConfig struct {
	QueueLimit   int `mapstructure:"queue_limit" validate:"gt=0"`
	WindowMillis int `mapstructure:"window_millis" validate:"gt=0"`
}

// QuizConfig controls quiz page retrieval.
type QuizConfig struct {
	PageSize           int `mapstructure:"page_size" validate:"gt=0,lte=100"`
	MaxScheduleRetries int `mapstructure:"max_schedule_retries" validate:"gt=0"`
}
