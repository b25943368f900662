package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and by ledgerctl dry runs.
// Values round-trip through JSON so code under test sees the same
// serialization behavior as the Postgres store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage

	// FailSetKeys makes Set fail for the listed keys, for exercising
	// persistence-failure paths.
	FailSetKeys map[string]bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]json.RawMessage)}
}

func (m *Memory) Get(_ context.Context, key string, out any) error {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode value for %q: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, key string, value any) error {
	if m.FailSetKeys[key] {
		return fmt.Errorf("set %q: simulated write failure", key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	m.mu.Lock()
	m.values[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
