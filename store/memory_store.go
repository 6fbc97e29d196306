package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Ref]memoryRecord
}

type memoryRecord struct {
	tree map[string]any
	meta Meta
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[Ref]memoryRecord{}}
}

func (s *MemoryStore) Load(_ context.Context, ref Ref) (map[string]any, Meta, bool, error) {
	if err := validateRef(ref); err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return record.tree, cloneMeta(record.meta), true, nil
}

func (s *MemoryStore) Save(_ context.Context, ref Ref, tree map[string]any, meta Meta) (Meta, error) {
	if err := validateRef(ref); err != nil {
		return Meta{}, err
	}
	if meta.SnapshotID == "" {
		meta.SnapshotID = uuid.NewString()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[ref] = memoryRecord{tree: tree, meta: cloneMeta(meta)}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}
