package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/deckgen-api/internal/store"
)

// MockQuotaStore is an in-memory store.QuotaStore.
type MockQuotaStore struct {
	CountInWindowFn func(ctx context.Context, principalID string, from, to time.Time) (int, error)
	RecordFn        func(ctx context.Context, principalID string, at time.Time) error

	mu      sync.Mutex
	records map[string][]time.Time

	// Windows holds the [from, to) pairs passed to CountInWindow.
	Windows [][2]time.Time
}

var _ store.QuotaStore = (*MockQuotaStore)(nil)

// NewMockQuotaStore creates an empty quota store.
func NewMockQuotaStore() *MockQuotaStore {
	return &MockQuotaStore{records: make(map[string][]time.Time)}
}

// Records returns the record timestamps for a principal.
func (m *MockQuotaStore) Records(principalID string) []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.records[principalID]...)
}

// CountInWindow implements store.QuotaStore.
func (m *MockQuotaStore) CountInWindow(ctx context.Context, principalID string, from, to time.Time) (int, error) {
	m.mu.Lock()
	m.Windows = append(m.Windows, [2]time.Time{from, to})
	m.mu.Unlock()

	if m.CountInWindowFn != nil {
		return m.CountInWindowFn(ctx, principalID, from, to)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, at := range m.records[principalID] {
		if !at.Before(from) && at.Before(to) {
			n++
		}
	}
	return n, nil
}

// Record implements store.QuotaStore.
func (m *MockQuotaStore) Record(ctx context.Context, principalID string, at time.Time) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, principalID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[principalID] = append(m.records[principalID], at)
	return nil
}
