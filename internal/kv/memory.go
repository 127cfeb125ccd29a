package kv

import (
	"slices"
	"sync"
)

// MemoryStore keeps values in a map. It is the store of the memory backend
// and the usual test double.
type MemoryStore struct {
	mu     sync.RWMutex
	quota  int64
	values map[string][]byte
}

// NewMemoryStore returns an empty store. A quota of zero or less disables
// the ceiling.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{quota: quota, values: make(map[string][]byte)}
}

func (m *MemoryStore) Read(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (m *MemoryStore) Write(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		size := entrySize(key, value)
		need := m.usageLocked() + size
		var oldSize int64
		if old, ok := m.values[key]; ok {
			oldSize = entrySize(key, old)
			need -= oldSize
		}
		if exceeds(m.quota, need, oldSize, size) {
			return fullError(key, need, m.quota)
		}
	}
	m.values[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStore) Usage() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usageLocked(), nil
}

func (m *MemoryStore) usageLocked() int64 {
	var n int64
	for k, v := range m.values {
		n += entrySize(k, v)
	}
	return n
}

func (m *MemoryStore) Close() error { return nil }
