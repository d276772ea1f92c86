package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/deckgen-api/internal/queue"
)

// Queue implements queue.Publisher and queue.Consumer on a Redis list.
// Producers LPUSH and consumers BRPOP, so items come out in FIFO order.
//
// Delivery is at-most-once: an item popped by a worker that then crashes is
// lost, and the job is eventually failed by the reaper.
type Queue struct {
	client goredis.Cmdable
	name   string
	logger *slog.Logger
}

var (
	_ queue.Publisher = (*Queue)(nil)
	_ queue.Consumer  = (*Queue)(nil)
)

// NewQueue creates a queue on the list called name.
func NewQueue(client goredis.Cmdable, name string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		client: client,
		name:   name,
		logger: logger.With(slog.String("component", "redis_queue"), slog.String("queue", name)),
	}
}

// Push implements queue.Publisher.
func (q *Queue) Push(ctx context.Context, item queue.WorkItem) error {
	data, err := item.Encode()
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push job %s: %w", item.JobID, err)
	}
	q.logger.Debug("work item enqueued", slog.String("job_id", item.JobID))
	return nil
}

// Pop implements queue.Consumer.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (queue.WorkItem, error) {
	res, err := q.client.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return queue.WorkItem{}, queue.ErrEmpty
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return queue.WorkItem{}, ctxErr
		}
		return queue.WorkItem{}, fmt.Errorf("failed to pop from %s: %w", q.name, err)
	}
	// BRPOP replies with [list, value].
	if len(res) != 2 {
		return queue.WorkItem{}, fmt.Errorf("%w: unexpected BRPOP reply of %d elements", queue.ErrMalformedItem, len(res))
	}
	return queue.Decode([]byte(res[1]))
}

// Len returns the current list length.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}
