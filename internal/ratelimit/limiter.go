// Package ratelimit enforces the per-principal daily generation quota.
//
// The quota window is the calendar day in a configured timezone, counted
// from the append-only generation records in the quota store.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/deckgen-api/internal/store"
)

// Limiter decides whether a principal may start another generation today.
type Limiter struct {
	store      store.QuotaStore
	dailyLimit int
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter allowing dailyLimit generations per calendar
// day in loc. A nil loc means UTC.
func NewLimiter(
	quotaStore store.QuotaStore,
	dailyLimit int,
	loc *time.Location,
	logger *slog.Logger,
	opts ...Option,
) (*Limiter, error) {
	if quotaStore == nil {
		return nil, fmt.Errorf("quota store cannot be nil")
	}
	if dailyLimit < 1 {
		return nil, fmt.Errorf("daily limit must be positive, got %d", dailyLimit)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Limiter{
		store:      quotaStore,
		dailyLimit: dailyLimit,
		location:   loc,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "rate_limiter")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// DayWindow returns [start of day, start of next day) containing t in loc.
// Using the next midnight instead of adding 24h keeps DST days correct.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	y, m, d := local.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

// MayGenerate reports whether the principal is under today's limit. A store
// failure denies and returns the error; the limiter never fails open.
func (l *Limiter) MayGenerate(ctx context.Context, principalID string) (bool, error) {
	start, end := DayWindow(l.now(), l.location)

	count, err := l.store.CountInWindow(ctx, principalID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to count generations for principal: %w", err)
	}

	allowed := count < l.dailyLimit
	if !allowed {
		l.logger.Info("daily generation quota reached",
			slog.String("principal_id", principalID),
			slog.Int("count", count),
			slog.Int("limit", l.dailyLimit))
	}
	return allowed, nil
}

// RecordGeneration appends one generation record for the principal.
// It is not idempotent: every call counts.
func (l *Limiter) RecordGeneration(ctx context.Context, principalID string) error {
	if err := l.store.Record(ctx, principalID, l.now()); err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}
