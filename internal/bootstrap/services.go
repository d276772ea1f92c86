package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/generation"
	"github.com/phrazzld/deckgen-api/internal/platform/gemini"
	"github.com/phrazzld/deckgen-api/internal/ratelimit"
	"github.com/phrazzld/deckgen-api/internal/service"
	"github.com/phrazzld/deckgen-api/internal/worker"
)

// NewJobService builds the daily quota limiter and the job service on top of
// the stores and backends.
func NewJobService(
	cfg *config.Config,
	stores Stores,
	backends *Backends,
	logger *slog.Logger,
) (*service.JobService, error) {
	loc, err := time.LoadLocation(cfg.Quota.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load quota timezone %q: %w", cfg.Quota.Timezone, err)
	}

	limiter, err := ratelimit.NewLimiter(stores.Quotas, cfg.Quota.DailyLimit, loc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	jobs, err := service.NewJobService(service.Deps{
		Jobs:      stores.Jobs,
		Limiter:   limiter,
		Publisher: backends.Publisher,
		Statuses:  backends.Statuses,
		Results:   backends.Results,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}
	return jobs, nil
}

// NewGenerator builds the Gemini-backed presentation generator.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	model, err := gemini.NewModel(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM model: %w", err)
	}
	gen, err := generation.NewPromptGenerator(model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.ModelName))
	return gen, nil
}

// NewWorkerPool builds a worker pool that consumes the backends' queue with
// gen. The pool is not started.
func NewWorkerPool(
	cfg *config.Config,
	backends *Backends,
	gen generation.Generator,
	logger *slog.Logger,
) (*worker.Pool, error) {
	pool, err := worker.NewPool(
		backends.Consumer,
		gen,
		backends.Statuses,
		backends.Results,
		worker.PoolConfigFromSettings(cfg.Worker),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return pool, nil
}
