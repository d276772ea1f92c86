package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/domain"
)

// Cache implements cache.StatusCache and cache.ResultCache on Redis strings.
type Cache struct {
	client    goredis.Cmdable
	statusTTL time.Duration
	resultTTL time.Duration
	logger    *slog.Logger
}

var (
	_ cache.StatusCache = (*Cache)(nil)
	_ cache.ResultCache = (*Cache)(nil)
)

// NewCache creates a Redis-backed cache. A zero TTL stores keys without expiry.
func NewCache(client goredis.Cmdable, statusTTL, resultTTL time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client:    client,
		statusTTL: statusTTL,
		resultTTL: resultTTL,
		logger:    logger.With(slog.String("component", "redis_cache")),
	}
}

// GetStatus implements cache.StatusCache.
func (c *Cache) GetStatus(ctx context.Context, jobID string) (string, error) {
	val, err := c.client.Get(ctx, cache.StatusKey(jobID)).Result()
	if err != nil {
		return "", c.mapErr("get_status", jobID, err)
	}
	return val, nil
}

// SetStatus implements cache.StatusCache.
func (c *Cache) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	if err := c.client.Set(ctx, cache.StatusKey(jobID), string(status), c.statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to set status for job %s: %w", jobID, err)
	}
	c.logger.Debug("status cached", slog.String("job_id", jobID), slog.String("status", string(status)))
	return nil
}

// GetResult implements cache.ResultCache.
func (c *Cache) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	val, err := c.client.Get(ctx, cache.ResultKey(jobID)).Bytes()
	if err != nil {
		return nil, c.mapErr("get_result", jobID, err)
	}
	return val, nil
}

// SetResult implements cache.ResultCache.
func (c *Cache) SetResult(ctx context.Context, jobID string, payload []byte) error {
	if err := c.client.Set(ctx, cache.ResultKey(jobID), payload, c.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to set result for job %s: %w", jobID, err)
	}
	c.logger.Debug("result cached", slog.String("job_id", jobID), slog.Int("bytes", len(payload)))
	return nil
}

func (c *Cache) mapErr(op, jobID string, err error) error {
	if errors.Is(err, goredis.Nil) {
		return cache.ErrMiss
	}
	return fmt.Errorf("redis %s for job %s: %w", op, jobID, err)
}
