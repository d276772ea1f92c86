package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MemoryQueue is a buffered channel queue satisfying both Publisher and
// Consumer. It only works when producer and worker share a process.
type MemoryQueue struct {
	items  chan WorkItem
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var (
	_ Publisher = (*MemoryQueue)(nil)
	_ Consumer  = (*MemoryQueue)(nil)
)

// NewMemoryQueue creates a queue holding at most size items.
func NewMemoryQueue(size int, logger *slog.Logger) *MemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryQueue{
		items:  make(chan WorkItem, size),
		logger: logger.With(slog.String("component", "memory_queue")),
	}
}

// Push adds an item without blocking.
// Returns ErrQueueFull if the buffer is full or ErrQueueClosed after Close.
func (q *MemoryQueue) Push(ctx context.Context, item WorkItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- item:
		q.logger.Debug("work item enqueued",
			slog.String("job_id", item.JobID),
			slog.Int("queue_len", len(q.items)),
			slog.Int("queue_cap", cap(q.items)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.items))
	}
}

// Pop waits up to timeout for the next item. Items pushed before Close are
// still delivered; once drained, Pop returns ErrQueueClosed.
func (q *MemoryQueue) Pop(ctx context.Context, timeout time.Duration) (WorkItem, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item, ok := <-q.items:
		if !ok {
			return WorkItem{}, ErrQueueClosed
		}
		return item, nil
	case <-timer.C:
		return WorkItem{}, ErrEmpty
	case <-ctx.Done():
		return WorkItem{}, ctx.Err()
	}
}

// Len returns the number of buffered items.
func (q *MemoryQueue) Len() int {
	return len(q.items)
}

// Close stops accepting new items. It is safe to call more than once.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
	q.logger.Info("memory queue closed")
}
