// Package store provides the transactional portfolio snapshot store.
package store

import (
	"encoding/json"
	"sync"

	"folio/internal/errors"
	"folio/internal/models"
)

// MutateFunc receives a private copy of the current snapshot, modifies it in
// place, and returns a result payload for the caller. Returning an error
// aborts the mutation; the stored snapshot is left untouched.
type MutateFunc func(data *models.Snapshot) (interface{}, error)

// Store is the sole boundary through which the resolution pipeline touches
// persisted portfolio data. Read returns a consistent deep copy; Mutate is an
// atomic read-modify-write serialized against other mutations.
type Store interface {
	Read() *models.Snapshot
	Mutate(fn MutateFunc) (interface{}, error)
	Close() error
}

// cloneSnapshot deep-copies a snapshot through JSON. Portfolio documents are
// small (hundreds of positions at most), so the round-trip cost is irrelevant
// next to the quote-provider calls on the same path.
func cloneSnapshot(s *models.Snapshot) *models.Snapshot {
	if s == nil {
		return &models.Snapshot{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return &models.Snapshot{}
	}
	var out models.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return &models.Snapshot{}
	}
	return &out
}

// MemoryStore is an in-memory Store used in tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	data   *models.Snapshot
	closed bool
}

// NewMemoryStore creates a MemoryStore seeded with the given snapshot.
// A nil seed starts empty.
func NewMemoryStore(seed *models.Snapshot) *MemoryStore {
	return &MemoryStore{data: cloneSnapshot(seed)}
}

// Read returns a deep copy of the current snapshot.
func (m *MemoryStore) Read() *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSnapshot(m.data)
}

// Mutate applies fn to a copy of the snapshot and commits it atomically.
func (m *MemoryStore) Mutate(fn MutateFunc) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.ErrStoreClosed
	}
	next := cloneSnapshot(m.data)
	result, err := fn(next)
	if err != nil {
		return nil, err
	}
	m.data = next
	return result, nil
}

// Close marks the store closed. Further mutations fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
