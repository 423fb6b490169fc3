package credstore

import (
	"context"
	"sync"
)

// Memory is a Backend kept in process memory. Sessions do not survive a
// restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemory creates an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.records[id]
	if !ok {
		return "", ErrNotFound
	}
	return raw, nil
}

func (m *Memory) Put(_ context.Context, id, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[id] = raw
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
