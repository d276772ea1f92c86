// Package main implements the standalone generation worker. It drains the
// shared Redis queue, asks the model for each deck and writes progress and
// results to the cache. It never touches the job database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/deckgen-api/internal/bootstrap"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/platform/logger"
	"github.com/phrazzld/deckgen-api/internal/queue"
)

// errInProcessQueue is returned when the configuration selects a queue the
// worker cannot share with the API server.
var errInProcessQueue = errors.New("the worker needs queue.driver=redis; the memory queue only runs inside the server")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("deckgen worker: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Queue.Driver != bootstrap.QueueRedis {
		return errInProcessQueue
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	backends, err := bootstrap.NewBackends(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			l.Error("failed to close backends", "error", err)
		}
	}()

	gen, err := bootstrap.NewGenerator(ctx, cfg.LLM, l)
	if err != nil {
		return err
	}

	pool, err := bootstrap.NewWorkerPool(cfg, backends, gen, l)
	if err != nil {
		return err
	}
	pool.SetErrorHandler(func(item queue.WorkItem, err error) {
		l.Warn("presentation job failed",
			slog.String("job_id", item.JobID),
			slog.Int("number_of_slides", item.SlideCount),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	})

	pool.Start()
	l.Info("worker started",
		slog.String("queue", cfg.Queue.Name),
		slog.Int("worker_count", cfg.Worker.Count))

	<-ctx.Done()
	l.Info("shutdown signal received, draining in-flight jobs")
	pool.Stop()
	return nil
}
