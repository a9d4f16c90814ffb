// internal/partition/memory.go
package partition

import (
	"context"
	"sync"
)

// memManager keeps the partition namespace in a set. Used for dev and
// tests; honors the same error contract as the mongo manager.
type memManager struct {
	mu   sync.Mutex
	set  map[string]struct{}
	fail error // when set, every call fails with it
}

func NewMemoryManager() Manager {
	return &memManager{set: map[string]struct{}{}}
}

// NewFailingMemoryManager returns a Manager whose every operation fails
// with err. Test double for transient-store scenarios.
func NewFailingMemoryManager(err error) Manager {
	return &memManager{set: map[string]struct{}{}, fail: err}
}

func (m *memManager) Create(ctx context.Context, partitionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.set[partitionID]; ok {
		return ErrAlreadyExists
	}
	m.set[partitionID] = struct{}{}
	return nil
}

func (m *memManager) Rename(ctx context.Context, oldID, newID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.set[oldID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.set[newID]; ok {
		return ErrAlreadyExists
	}
	delete(m.set, oldID)
	m.set[newID] = struct{}{}
	return nil
}

func (m *memManager) Drop(ctx context.Context, partitionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if _, ok := m.set[partitionID]; !ok {
		return ErrNotFound
	}
	delete(m.set, partitionID)
	return nil
}

// Has reports partition existence; test helper.
func Has(m Manager, partitionID string) bool {
	mm, ok := m.(*memManager)
	if !ok {
		return false
	}
	mm.mu.Lock()
	defer mm.mu.Unlock()
	_, ok = mm.set[partitionID]
	return ok
}
