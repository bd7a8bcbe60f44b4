package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store. Values are kept JSON-encoded so callers
// never share memory with the store.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	writes int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(key string, v any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// Set implements Store.
func (m *Memory) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = raw
	m.writes++
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	m.writes++
	return nil
}

// Writes returns how many Set/Delete calls have been applied.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
