package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallnest/nodegraphgo/store"
)

// MemoryRunStore keeps run records in memory.
type MemoryRunStore struct {
	mu      sync.RWMutex
	records map[string]*store.RunRecord
}

var _ store.RunStore = (*MemoryRunStore)(nil)

// NewMemoryRunStore creates an empty in-memory store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		records: make(map[string]*store.RunRecord),
	}
}

// Save stores a copy of record.
func (s *MemoryRunStore) Save(_ context.Context, record *store.RunRecord) error {
	if err := store.CheckRecord(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = record.Clone()
	return nil
}

// Load retrieves a record by ID
func (s *MemoryRunStore) Load(_ context.Context, runID string) (*store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
	}
	return rec.Clone(), nil
}

// List returns the records of a graph ordered by start time
func (s *MemoryRunStore) List(_ context.Context, graphID string) ([]*store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []*store.RunRecord{}
	for _, rec := range s.records {
		if rec.GraphID == graphID {
			records = append(records, rec.Clone())
		}
	}
	store.SortByStart(records)
	return records, nil
}

// Delete removes a record
func (s *MemoryRunStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[runID]; !ok {
		return fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
	}
	delete(s.records, runID)
	return nil
}

// Clear removes every record of a graph
func (s *MemoryRunStore) Clear(_ context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.records {
		if rec.GraphID == graphID {
			delete(s.records, id)
		}
	}
	return nil
}
