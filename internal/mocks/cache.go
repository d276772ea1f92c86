package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/deckgen-api/internal/cache"
	"github.com/phrazzld/deckgen-api/internal/domain"
)

// MockCache wraps cache.Memory and lets tests inject failures per method.
type MockCache struct {
	*cache.Memory

	GetStatusFn func(ctx context.Context, jobID string) (string, error)
	SetStatusFn func(ctx context.Context, jobID string, status domain.JobStatus) error
	GetResultFn func(ctx context.Context, jobID string) ([]byte, error)
	SetResultFn func(ctx context.Context, jobID string, payload []byte) error

	mu          sync.Mutex
	statusSets  []domain.JobStatus
	resultSets  int
	statusReads int
}

var (
	_ cache.StatusCache = (*MockCache)(nil)
	_ cache.ResultCache = (*MockCache)(nil)
)

// NewMockCache creates a cache without expiry.
func NewMockCache() *MockCache {
	return &MockCache{Memory: cache.NewMemory(0, 0)}
}

// GetStatus implements cache.StatusCache.
func (m *MockCache) GetStatus(ctx context.Context, jobID string) (string, error) {
	m.mu.Lock()
	m.statusReads++
	m.mu.Unlock()
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, jobID)
	}
	return m.Memory.GetStatus(ctx, jobID)
}

// SetStatus implements cache.StatusCache.
func (m *MockCache) SetStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	if m.SetStatusFn != nil {
		if err := m.SetStatusFn(ctx, jobID, status); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.statusSets = append(m.statusSets, status)
	m.mu.Unlock()
	return m.Memory.SetStatus(ctx, jobID, status)
}

// GetResult implements cache.ResultCache.
func (m *MockCache) GetResult(ctx context.Context, jobID string) ([]byte, error) {
	if m.GetResultFn != nil {
		return m.GetResultFn(ctx, jobID)
	}
	return m.Memory.GetResult(ctx, jobID)
}

// SetResult implements cache.ResultCache.
func (m *MockCache) SetResult(ctx context.Context, jobID string, payload []byte) error {
	if m.SetResultFn != nil {
		if err := m.SetResultFn(ctx, jobID, payload); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.resultSets++
	m.mu.Unlock()
	return m.Memory.SetResult(ctx, jobID, payload)
}

// StatusWrites returns every status written through SetStatus, in order.
func (m *MockCache) StatusWrites() []domain.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.JobStatus(nil), m.statusSets...)
}

// ResultWrites returns how many results were written.
func (m *MockCache) ResultWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultSets
}

// StatusReads returns how many times GetStatus was called.
func (m *MockCache) StatusReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusReads
}
