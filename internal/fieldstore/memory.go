package fieldstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]map[string]string
	writes int
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, store, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[store][key]
	return value, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, store, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(store, key, value)
	m.writes++
	return nil
}

func (m *MemoryBackend) SetMany(_ context.Context, store string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range values {
		m.put(store, key, value)
	}
	m.writes++
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, store, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[store], key)
	m.writes++
	return nil
}

func (m *MemoryBackend) Keys(_ context.Context, store string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values[store]))
	for key := range m.values[store] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Writes counts committed Set, SetMany, and Delete calls.
func (m *MemoryBackend) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *MemoryBackend) put(store, key, value string) {
	bucket, ok := m.values[store]
	if !ok {
		bucket = make(map[string]string)
		m.values[store] = bucket
	}
	bucket[key] = value
}
