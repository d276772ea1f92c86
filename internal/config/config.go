package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Queue    QueueConfig    `mapstructure:"queue" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Quota    QuotaConfig    `mapstructure:"quota" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Reaper   ReaperConfig   `mapstructure:"reaper"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects and locates the durable job store.
type DatabaseConfig struct {
	// Driver is either "postgres" (production) or "sqlite" (local development).
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// RedisConfig locates the Redis instance backing the status cache and job queue.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Enabled  bool   `mapstructure:"enabled"`
}

// AuthConfig contains the settings used to validate bearer tokens issued by the
// identity service.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all LLM integration related settings.
// Only the worker needs these; the API server never calls the model.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// QueueConfig selects the hand-off channel between submission and worker.
type QueueConfig struct {
	// Driver is "redis" for a shared list or "memory" for a single-process channel.
	Driver string `mapstructure:"driver" validate:"required,oneof=redis memory"`
	Name   string `mapstructure:"name" validate:"required"`
	// Size bounds the in-memory queue buffer.
	Size int `mapstructure:"size" validate:"gt=0"`
}

// CacheConfig controls expiry of worker-written cache entries.
type CacheConfig struct {
	StatusTTLMinutes int `mapstructure:"status_ttl_minutes" validate:"required,gt=0"`
	ResultTTLMinutes int `mapstructure:"result_ttl_minutes" validate:"required,gt=0"`
}

// StatusTTL returns the status cache expiry as a duration.
func (c CacheConfig) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLMinutes) * time.Minute
}

// ResultTTL returns the result cache expiry as a duration.
func (c CacheConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLMinutes) * time.Minute
}

// QuotaConfig controls the per-principal daily generation limit.
type QuotaConfig struct {
	DailyLimit int    `mapstructure:"daily_limit" validate:"required,gt=0"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
}

// WorkerConfig contains settings for the generation worker pool.
type WorkerConfig struct {
	Count               int `mapstructure:"count" validate:"required,gt=0"`
	PollTimeoutSeconds  int `mapstructure:"poll_timeout_seconds" validate:"required,gt=0"`
	GenerateTimeoutSecs int `mapstructure:"generate_timeout_seconds" validate:"required,gt=0"`
}

// ReaperConfig controls the sweeper that fails jobs stuck in a non-terminal state.
// An IntervalMinutes of zero disables the in-process sweeper.
type ReaperConfig struct {
	StaleAfterMinutes int `mapstructure:"stale_after_minutes" validate:"gte=0"`
	IntervalMinutes   int `mapstructure:"interval_minutes" validate:"gte=0"`
	BatchSize         int `mapstructure:"batch_size" validate:"gte=0"`
}

// ThrottleConfig configures the per-client request throttle in front of the API.
// A RequestsPerSecond of zero disables throttling.
type ThrottleConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}
