package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/store"
)

// MockJobStore is an in-memory store.JobStore with the same conditional
// write semantics as the SQL implementations.
type MockJobStore struct {
	CreateFn          func(ctx context.Context, job *domain.Job) error
	GetByIDFn         func(ctx context.Context, id string) (*domain.Job, error)
	UpdateStatusFn    func(ctx context.Context, id string, from, to domain.JobStatus) error
	PromoteResultFn   func(ctx context.Context, id string, status domain.JobStatus, p *domain.Presentation) error
	ListByPrincipalFn func(ctx context.Context, principalID string, limit, offset int) ([]*domain.Job, error)
	FindStaleFn       func(ctx context.Context, statuses []domain.JobStatus, olderThan time.Time, limit int) ([]*domain.Job, error)

	// Now is the clock used for updated timestamps.
	Now func() time.Time

	mu    sync.Mutex
	jobs  map[string]*domain.Job
	calls map[string]int
}

var _ store.JobStore = (*MockJobStore)(nil)

// NewMockJobStore creates an empty store.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{
		Now:   func() time.Time { return time.Now().UTC() },
		jobs:  make(map[string]*domain.Job),
		calls: make(map[string]int),
	}
}

// Put inserts or replaces a job directly, bypassing call tracking.
func (m *MockJobStore) Put(job *domain.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = cloneJob(job)
}

// Get returns a copy of the stored job, bypassing call tracking.
func (m *MockJobStore) Get(id string) (*domain.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	return cloneJob(j), true
}

// Len returns the number of stored jobs.
func (m *MockJobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// Calls returns how many times the named method was called.
func (m *MockJobStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Writes returns the number of UpdateStatus and PromoteResult calls.
func (m *MockJobStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls["UpdateStatus"] + m.calls["PromoteResult"]
}

func (m *MockJobStore) track(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// Create implements store.JobStore.
func (m *MockJobStore) Create(ctx context.Context, job *domain.Job) error {
	m.track("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, job)
	}
	if err := job.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; ok {
		return store.ErrJobExists
	}
	m.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetByID implements store.JobStore.
func (m *MockJobStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	m.track("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	job, ok := m.Get(id)
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return job, nil
}

// UpdateStatus implements store.JobStore.
func (m *MockJobStore) UpdateStatus(ctx context.Context, id string, from, to domain.JobStatus) error {
	m.track("UpdateStatus")
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	if j.Status != from {
		return store.ErrStatusConflict
	}
	j.Status = to
	j.UpdatedAt = m.Now()
	return nil
}

// PromoteResult implements store.JobStore.
func (m *MockJobStore) PromoteResult(
	ctx context.Context,
	id string,
	status domain.JobStatus,
	p *domain.Presentation,
) error {
	m.track("PromoteResult")
	if m.PromoteResultFn != nil {
		return m.PromoteResultFn(ctx, id, status, p)
	}
	if p == nil || status == domain.JobStatusFailed {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	if j.Presentation != nil || j.Status == domain.JobStatusFailed {
		return store.ErrResultConflict
	}
	j.Presentation = clonePresentation(p)
	j.Status = status
	j.UpdatedAt = m.Now()
	return nil
}

// ListByPrincipal implements store.JobStore.
func (m *MockJobStore) ListByPrincipal(
	ctx context.Context,
	principalID string,
	limit, offset int,
) ([]*domain.Job, error) {
	m.track("ListByPrincipal")
	if m.ListByPrincipalFn != nil {
		return m.ListByPrincipalFn(ctx, principalID, limit, offset)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Job{}
	for _, j := range m.jobs {
		if j.PrincipalID == principalID {
			out = append(out, cloneJob(j))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if offset >= len(out) {
		return []*domain.Job{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// FindStale implements store.JobStore.
func (m *MockJobStore) FindStale(
	ctx context.Context,
	statuses []domain.JobStatus,
	olderThan time.Time,
	limit int,
) ([]*domain.Job, error) {
	m.track("FindStale")
	if m.FindStaleFn != nil {
		return m.FindStaleFn(ctx, statuses, olderThan, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Job{}
	for _, j := range m.jobs {
		if !j.UpdatedAt.Before(olderThan) {
			continue
		}
		for _, st := range statuses {
			if j.Status == st {
				out = append(out, cloneJob(j))
				break
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UpdatedAt.Before(out[b].UpdatedAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func cloneJob(j *domain.Job) *domain.Job {
	c := *j
	c.Presentation = clonePresentation(j.Presentation)
	return &c
}

func clonePresentation(p *domain.Presentation) *domain.Presentation {
	if p == nil {
		return nil
	}
	c := *p
	c.Slides = append([]domain.Slide(nil), p.Slides...)
	return &c
}
