package kvstore

import (
	"context"
	"slices"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	updatedAt time.Time
}

// MemoryBackend keeps entries in process memory. It backs the unit tests
// and local runs without Postgres.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source used to stamp writes.
func (m *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	m.now = now
	return m
}

func (m *MemoryBackend) Get(_ context.Context, scope, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[scope][key]
	if !ok {
		return nil, ErrNotFound
	}

	return slices.Clone(entry.value), nil
}

func (m *MemoryBackend) Put(_ context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.entries[scope]
	if !ok {
		bucket = make(map[string]memoryEntry)
		m.entries[scope] = bucket
	}
	bucket[key] = memoryEntry{value: slices.Clone(value), updatedAt: m.now()}

	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.entries[scope]
	if !ok {
		return nil
	}
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(m.entries, scope)
	}

	return nil
}

func (m *MemoryBackend) PurgeIdle(_ context.Context, before time.Time, keep ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for scope, bucket := range m.entries {
		if slices.Contains(keep, scope) {
			continue
		}

		var latest time.Time
		for _, entry := range bucket {
			if entry.updatedAt.After(latest) {
				latest = entry.updatedAt
			}
		}
		if latest.Before(before) {
			removed += int64(len(bucket))
			delete(m.entries, scope)
		}
	}

	return removed, nil
}
