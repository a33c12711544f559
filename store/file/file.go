package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/smallnest/nodegraphgo/store"
)

// FileRunStore writes each run record as <dir>/<id>.json.
type FileRunStore struct {
	mu  sync.Mutex
	dir string
}

var _ store.RunStore = (*FileRunStore)(nil)

// NewFileRunStore creates the directory if needed.
func NewFileRunStore(dir string) (*FileRunStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return &FileRunStore{dir: dir}, nil
}

func (s *FileRunStore) path(runID string) (string, error) {
	if runID == "" || strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	return filepath.Join(s.dir, runID+".json"), nil
}

// Save stores a record
func (s *FileRunStore) Save(_ context.Context, record *store.RunRecord) error {
	if err := store.CheckRecord(record); err != nil {
		return err
	}
	p, err := s.path(record.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	return nil
}

// Load retrieves a record by ID
func (s *FileRunStore) Load(_ context.Context, runID string) (*store.RunRecord, error) {
	p, err := s.path(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return readRecord(p, runID)
}

func readRecord(p, runID string) (*store.RunRecord, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}
	var rec store.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record %s: %w", runID, err)
	}
	return &rec, nil
}

// List returns the records of a graph ordered by start time
func (s *FileRunStore) List(_ context.Context, graphID string) ([]*store.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(graphID)
}

func (s *FileRunStore) listLocked(graphID string) ([]*store.RunRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	records := []*store.RunRecord{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		rec, err := readRecord(filepath.Join(s.dir, e.Name()), id)
		if err != nil {
			return nil, err
		}
		if rec.GraphID == graphID {
			records = append(records, rec)
		}
	}
	store.SortByStart(records)
	return records, nil
}

// Delete removes a record
func (s *FileRunStore) Delete(_ context.Context, runID string) error {
	p, err := s.path(runID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", store.ErrRunNotFound, runID)
		}
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// Clear removes every record of a graph
func (s *FileRunStore) Clear(_ context.Context, graphID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.listLocked(graphID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := os.Remove(filepath.Join(s.dir, rec.ID+".json")); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete run record: %w", err)
		}
	}
	return nil
}
