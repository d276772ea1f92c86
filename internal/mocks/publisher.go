package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckgen-api/internal/queue"
)

// MockPublisher records pushed work items.
type MockPublisher struct {
	PushFn func(ctx context.Context, item queue.WorkItem) error
	Err    error

	mu    sync.Mutex
	items []queue.WorkItem
}

var _ queue.Publisher = (*MockPublisher)(nil)

// Push implements queue.Publisher. Failed pushes are not recorded.
func (m *MockPublisher) Push(ctx context.Context, item queue.WorkItem) error {
	var err error
	if m.PushFn != nil {
		err = m.PushFn(ctx, item)
	} else {
		err = m.Err
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
	return nil
}

// Items returns the successfully pushed items.
func (m *MockPublisher) Items() []queue.WorkItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.WorkItem(nil), m.items...)
}
