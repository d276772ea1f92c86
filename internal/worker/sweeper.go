package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/service"
)

// Expirer fails jobs stuck in a non-terminal state.
type Expirer interface {
	ExpireStale(ctx context.Context, olderThan time.Time, limit int) (service.ReapSummary, error)
}

// SweeperConfig controls how often and how aggressively stale jobs are reaped.
type SweeperConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// SweeperConfigFromSettings converts the reaper section of the app config.
func SweeperConfigFromSettings(cfg config.ReaperConfig) SweeperConfig {
	return SweeperConfig{
		Interval:   time.Duration(cfg.IntervalMinutes) * time.Minute,
		StaleAfter: time.Duration(cfg.StaleAfterMinutes) * time.Minute,
		BatchSize:  cfg.BatchSize,
	}
}

// Sweeper periodically calls ExpireStale.
type Sweeper struct {
	expirer Expirer
	config  SweeperConfig
	now     func() time.Time
	logger  *slog.Logger
}

// NewSweeper creates a sweeper.
func NewSweeper(expirer Expirer, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Sweeper{
		expirer: expirer,
		config:  cfg,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "sweeper")),
	}
}

// RunOnce reaps one batch of jobs not updated within StaleAfter.
func (s *Sweeper) RunOnce(ctx context.Context) (service.ReapSummary, error) {
	cutoff := s.now().Add(-s.config.StaleAfter)
	sum, err := s.expirer.ExpireStale(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		s.logger.Error("stale job sweep failed", "error", err)
	}
	return sum, err
}

// Run sweeps immediately and then every Interval until ctx is cancelled.
// A non-positive Interval disables the loop.
func (s *Sweeper) Run(ctx context.Context) {
	if s.config.Interval <= 0 {
		s.logger.Info("stale job sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		_, _ = s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
