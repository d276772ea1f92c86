package cache

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// sweepEvery bounds how often a write scans the map for expired entries.
const sweepEvery = time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process StatusCache and ResultCache with per-entry expiry.
// It serves single-process deployments where no Redis is configured.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]entry
	statusTTL time.Duration
	resultTTL time.Duration
	now       func() time.Time
	nextSweep time.Time
}

var (
	_ StatusCache = (*Memory)(nil)
	_ ResultCache = (*Memory)(nil)
)

// NewMemory creates an empty cache. A zero TTL keeps entries forever.
func NewMemory(statusTTL, resultTTL time.Duration) *Memory {
	return &Memory{
		entries:   make(map[string]entry),
		statusTTL: statusTTL,
		resultTTL: resultTTL,
		now:       time.Now,
	}
}

// GetStatus implements StatusCache.
func (m *Memory) GetStatus(_ context.Context, jobID string) (string, error) {
	v, err := m.get(StatusKey(jobID))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetStatus implements StatusCache.
func (m *Memory) SetStatus(_ context.Context, jobID string, status domain.JobStatus) error {
	m.set(StatusKey(jobID), []byte(status), m.statusTTL)
	return nil
}

// SetRawStatus stores an arbitrary status string, as a foreign worker might.
func (m *Memory) SetRawStatus(jobID, value string) {
	m.set(StatusKey(jobID), []byte(value), m.statusTTL)
}

// GetResult implements ResultCache.
func (m *Memory) GetResult(_ context.Context, jobID string) ([]byte, error) {
	return m.get(ResultKey(jobID))
}

// SetResult implements ResultCache.
func (m *Memory) SetResult(_ context.Context, jobID string, payload []byte) error {
	m.set(ResultKey(jobID), payload, m.resultTTL)
	return nil
}

// Flush drops every entry.
func (m *Memory) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}

func (m *Memory) get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *Memory) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
}

// sweepLocked drops expired entries so keys that are never read again do not
// accumulate. It runs at most once per sweepEvery. Callers hold m.mu.
func (m *Memory) sweepLocked(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	m.nextSweep = now.Add(sweepEvery)
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// Len reports how many entries are held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
