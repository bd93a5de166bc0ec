package store

import (
	"context"
	"encoding/json"
	"sync"

	"minicart/internal/domain"
)

// Memory is an in-process Store, used by the "memory" backend and in tests.
// It round-trips through JSON so callers see the same copy semantics as the
// external backends.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(m.data, &snapshot); err != nil {
		return nil, nil
	}
	return &snapshot, nil
}

func (m *Memory) Save(_ context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Corrupt overwrites the stored value with unparsable text. Test helper.
func (m *Memory) Corrupt() {
	m.mu.Lock()
	m.data = []byte("{not json")
	m.mu.Unlock()
}
