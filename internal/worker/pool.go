package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/generation"
	"github.com/phrazzld/deckgen-api/internal/queue"
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// PollTimeout bounds each blocking pop on the queue.
	PollTimeout time.Duration

	// GenerateTimeout bounds a single generation call.
	GenerateTimeout time.Duration
}

// PoolConfigFromSettings converts the worker section of the app config.
func PoolConfigFromSettings(cfg config.WorkerConfig) PoolConfig {
	return PoolConfig{
		WorkerCount:     cfg.Count,
		PollTimeout:     time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSecs) * time.Second,
	}
}

// Pool manages a pool of worker goroutines that generate presentations for
// items taken from a queue. It handles graceful shutdown and worker lifecycle.
type Pool struct {
	consumer  queue.Consumer
	generator generation.Generator
	statuses  cache.StatusCache
	results   cache.ResultCache
	config    PoolConfig
	logger    *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// errorHandler is called when processing an item fails.
	// If nil, errors are only logged.
	errorHandler func(item queue.WorkItem, err error)
}

// NewPool creates a new worker pool.
func NewPool(
	consumer queue.Consumer,
	generator generation.Generator,
	statuses cache.StatusCache,
	results cache.ResultCache,
	cfg PoolConfig,
	logger *slog.Logger,
) (*Pool, error) {
	if consumer == nil || generator == nil || statuses == nil || results == nil {
		return nil, errors.New("worker pool requires a consumer, generator and both caches")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	if cfg.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
		cfg.WorkerCount = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		consumer:  consumer,
		generator: generator,
		statuses:  statuses,
		results:   results,
		config:    cfg,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// SetErrorHandler allows setting a custom error handler for processing failures.
// It must be called before Start.
func (p *Pool) SetErrorHandler(handler func(item queue.WorkItem, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.config.WorkerCount)
	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals all workers to stop and waits for in-flight items to finish.
func (p *Pool) Stop() {
	p.logger.Info("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Drain waits for the workers to empty a closed queue and exit on their own,
// so every buffered item is processed. The consumer must already be closed.
// If ctx ends first the pool is stopped the hard way and ctx.Err() returned.
func (p *Pool) Drain(ctx context.Context) error {
	p.logger.Info("draining worker pool")
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool drained")
		return nil
	case <-ctx.Done():
		p.logger.Warn("drain deadline reached, stopping worker pool")
		p.Stop()
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With("worker_id", id)
	log.Debug("starting worker")

	for {
		item, err := p.consumer.Pop(p.ctx, p.config.PollTimeout)
		switch {
		case err == nil:
			// Generation keeps running through shutdown so the item is not lost
			// halfway; Stop waits for it.
			if perr := p.Process(context.WithoutCancel(p.ctx), item); perr != nil {
				log.Error("work item failed", "job_id", item.JobID, "error", perr)
				if p.errorHandler != nil {
					p.errorHandler(item, perr)
				}
			}
		case errors.Is(err, queue.ErrEmpty):
		case errors.Is(err, queue.ErrMalformedItem):
			log.Error("dropping malformed work item", "error", err)
		case errors.Is(err, queue.ErrQueueClosed):
			log.Debug("queue closed, stopping worker")
			return
		case p.ctx.Err() != nil:
			log.Debug("stopping worker")
			return
		default:
			log.Error("failed to pop work item", "error", err)
			select {
			case <-time.After(p.config.PollTimeout):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Process generates the deck for one work item. It is idempotent per job:
// an item whose cached status is already terminal is skipped.
func (p *Pool) Process(ctx context.Context, item queue.WorkItem) error {
	log := p.logger.With("job_id", item.JobID)

	if raw, err := p.statuses.GetStatus(ctx, item.JobID); err == nil {
		if st, perr := domain.ParseJobStatus(raw); perr == nil && st.IsTerminal() {
			log.Info("skipping already finished job", "status", st.String())
			return nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Warn("status cache read failed, processing anyway", "error", err)
	}

	if err := p.statuses.SetStatus(ctx, item.JobID, domain.JobStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	style, err := domain.ParseStyle(item.Style)
	if err != nil {
		style = domain.DefaultStyle
	}

	genCtx, cancel := context.WithTimeout(ctx, p.config.GenerateTimeout)
	defer cancel()

	start := time.Now()
	deck, err := p.generator.Generate(genCtx, generation.Request{
		Topic:      item.Prompt,
		SlideCount: item.SlideCount,
		Style:      style,
	})
	if err != nil {
		return p.fail(ctx, item, fmt.Errorf("generation failed: %w", err))
	}

	blob, err := deck.Marshal()
	if err != nil {
		return p.fail(ctx, item, fmt.Errorf("failed to encode presentation: %w", err))
	}
	if err := p.results.SetResult(ctx, item.JobID, blob); err != nil {
		return p.fail(ctx, item, fmt.Errorf("failed to store result: %w", err))
	}
	if err := p.statuses.SetStatus(ctx, item.JobID, domain.JobStatusCompleted); err != nil {
		// The result is stored; reconciliation promotes it on first read.
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Info("presentation ready",
		"slides", len(deck.Slides),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (p *Pool) fail(ctx context.Context, item queue.WorkItem, cause error) error {
	if err := p.statuses.SetStatus(ctx, item.JobID, domain.JobStatusFailed); err != nil {
		p.logger.Error("failed to mark job failed",
			"job_id", item.JobID,
			"error", err)
	}
	return cause
}
