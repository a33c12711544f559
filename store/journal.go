package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"
)

var (
	// ErrRunNotFound is returned by Load and Delete for an unknown record id.
	ErrRunNotFound = errors.New("run record not found")

	// ErrInvalidRecord is returned by Save for a nil record or one without an id.
	ErrInvalidRecord = errors.New("invalid run record")
)

// RunRecord describes one completed Graph.Run.
type RunRecord struct {
	ID        string         `json:"id"`
	GraphID   string         `json:"graph_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Executed  []int          `json:"executed"`
	Residue   []int          `json:"residue"`
	Script    []string       `json:"script,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Failed reports whether the run stopped on a node failure.
func (r *RunRecord) Failed() bool {
	return r.Error != ""
}

// CheckRecord returns ErrInvalidRecord unless r can be saved.
func CheckRecord(r *RunRecord) error {
	if r == nil {
		return fmt.Errorf("%w: nil", ErrInvalidRecord)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a copy of r that shares no slices or maps with it.
// Metadata values are copied shallowly.
func (r *RunRecord) Clone() *RunRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Executed = slices.Clone(r.Executed)
	cp.Residue = slices.Clone(r.Residue)
	cp.Script = slices.Clone(r.Script)
	cp.Metadata = maps.Clone(r.Metadata)
	return &cp
}

// RunStore persists run records.
type RunStore interface {
	// Save stores a record, replacing any record with the same ID
	Save(ctx context.Context, record *RunRecord) error

	// Load retrieves a record by ID
	Load(ctx context.Context, runID string) (*RunRecord, error)

	// List returns the records of a graph ordered by StartedAt
	List(ctx context.Context, graphID string) ([]*RunRecord, error)

	// Delete removes a record
	Delete(ctx context.Context, runID string) error

	// Clear removes every record of a graph
	Clear(ctx context.Context, graphID string) error
}

// SortByStart orders records by StartedAt, oldest first, breaking ties by ID.
func SortByStart(records []*RunRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].StartedAt.Before(records[j].StartedAt)
	})
}
