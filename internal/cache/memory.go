package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. A ttl of zero keeps entries forever.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry[V any] struct {
	value    V
	storedAt time.Time
}

type MemoryOption[V any] func(*Memory[V])

// WithClock replaces time.Now, mostly for tests.
func WithClock[V any](now func() time.Time) MemoryOption[V] {
	return func(m *Memory[V]) { m.now = now }
}

func NewMemory[V any](ttl time.Duration, opts ...MemoryOption[V]) *Memory[V] {
	m := &Memory[V]{
		entries: make(map[string]memoryEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory[V]) TTL() time.Duration { return m.ttl }

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mu.RLock()
	ent, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok || m.expired(ent) {
		return zero, false, nil
	}
	return ent.value, true, nil
}

func (m *Memory[V]) Put(_ context.Context, key string, value V) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry[V]{value: value, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Range calls fn for every entry, expired or not, until fn returns false.
func (m *Memory[V]) Range(fn func(key string, value V, storedAt time.Time) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, ent := range m.entries {
		if !fn(k, ent.value, ent.storedAt) {
			return
		}
	}
}

func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory[V]) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	var stale []string
	m.Range(func(key string, _ V, storedAt time.Time) bool {
		if m.now().Sub(storedAt) >= m.ttl {
			stale = append(stale, key)
		}
		return true
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for _, key := range stale {
		if ent, ok := m.entries[key]; ok && m.expired(ent) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps periodically until ctx is done.
func (m *Memory[V]) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 || m.ttl <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Sweep()
			}
		}
	}()
}

func (m *Memory[V]) expired(ent memoryEntry[V]) bool {
	return m.ttl > 0 && m.now().Sub(ent.storedAt) >= m.ttl
}
