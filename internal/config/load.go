package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. DECKGEN_DATABASE_URL maps to database.url.
const EnvPrefix = "DECKGEN"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
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
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		return fmt.Errorf("config validation failed: quota.timezone %q: %w", c.Quota.Timezone, err)
	}
	if c.Queue.Driver == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("config validation failed: queue.driver=redis requires redis.enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "postgres")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", true)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("queue.driver", "redis")
	v.SetDefault("queue.name", "presentation_Task_queue")
	v.SetDefault("queue.size", 100)

	v.SetDefault("cache.status_ttl_minutes", 24*60)
	v.SetDefault("cache.result_ttl_minutes", 24*60)

	v.SetDefault("quota.daily_limit", 1)
	v.SetDefault("quota.timezone", "UTC")

	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.poll_timeout_seconds", 5)
	v.SetDefault("worker.generate_timeout_seconds", 120)

	v.SetDefault("reaper.stale_after_minutes", 30)
	v.SetDefault("reaper.interval_minutes", 5)
	v.SetDefault("reaper.batch_size", 100)

	v.SetDefault("throttle.requests_per_second", 5)
	v.SetDefault("throttle.burst", 10)
}

// bindEnvs registers every key explicitly so that AutomaticEnv picks up
// variables for keys that have no default (viper only resolves known keys
// during Unmarshal).
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"database.url",
		"redis.password",
		"auth.jwt_secret",
		"llm.gemini_api_key",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}
