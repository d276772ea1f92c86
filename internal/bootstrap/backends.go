package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/platform/redis"
	"github.com/phrazzld/deckgen-api/internal/queue"
)

// Queue drivers.
const (
	QueueRedis  = "redis"
	QueueMemory = "memory"
)

// Backends holds the volatile side of the system: the status and result
// caches and both ends of the work queue.
type Backends struct {
	Statuses  cache.StatusCache
	Results   cache.ResultCache
	Publisher queue.Publisher
	Consumer  queue.Consumer

	redisClient *goredis.Client
	memoryQueue *queue.MemoryQueue
}

// NewBackends connects to Redis when it is enabled and builds the caches and
// queue the configuration asks for. Without Redis the caches live in memory,
// which only works when the worker pool runs in the same process.
func NewBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.redisClient = client
		c := redis.NewCache(client, cfg.Cache.StatusTTL(), cfg.Cache.ResultTTL(), logger)
		b.Statuses, b.Results = c, c
		logger.Info("redis cache initialized", slog.String("addr", cfg.Redis.Addr))
	} else {
		m := cache.NewMemory(cfg.Cache.StatusTTL(), cfg.Cache.ResultTTL())
		b.Statuses, b.Results = m, m
		logger.Info("in-memory cache initialized")
	}

	switch cfg.Queue.Driver {
	case QueueRedis:
		if b.redisClient == nil {
			_ = b.Close()
			return nil, errors.New("redis queue requires redis to be enabled")
		}
		q := redis.NewQueue(b.redisClient, cfg.Queue.Name, logger)
		b.Publisher, b.Consumer = q, q
	case QueueMemory:
		b.memoryQueue = queue.NewMemoryQueue(cfg.Queue.Size, logger)
		b.Publisher, b.Consumer = b.memoryQueue, b.memoryQueue
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unsupported queue driver %q", cfg.Queue.Driver)
	}
	logger.Info("job queue initialized",
		slog.String("driver", cfg.Queue.Driver),
		slog.String("queue", cfg.Queue.Name))

	return b, nil
}

// InProcess reports whether the queue only exists inside this process, in
// which case the worker pool must run here too.
func (b *Backends) InProcess() bool {
	return b.memoryQueue != nil
}

// CloseQueue stops the in-process queue from accepting work. Buffered items
// stay poppable so a worker pool can drain them; the caches stay usable.
// It is a no-op for the Redis queue.
func (b *Backends) CloseQueue() {
	if b.memoryQueue != nil {
		b.memoryQueue.Close()
	}
}

// Close releases the queue and the Redis connection. Stop any worker pool
// first: in-flight items still write to the caches.
func (b *Backends) Close() error {
	b.CloseQueue()
	if b.redisClient != nil {
		return b.redisClient.Close()
	}
	return nil
}
