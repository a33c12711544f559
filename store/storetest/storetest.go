// Package storetest holds a behavioural test suite shared by every
// store.RunStore backend.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallnest/nodegraphgo/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Record builds a record of graphID started offset seconds after a fixed epoch.
func Record(id, graphID string, offset int) *store.RunRecord {
	return &store.RunRecord{
		ID:        id,
		GraphID:   graphID,
		StartedAt: time.Date(2024, 5, 1, 12, 0, offset, 0, time.UTC),
		Duration:  time.Duration(offset+1) * time.Millisecond,
		Executed:  []int{1, 2},
		Residue:   []int{3},
		Script:    []string{fmt.Sprintf("n1_x = p_1(seed=%d)", offset)},
		Metadata:  map[string]any{"wavefronts": float64(2)},
	}
}

// Run exercises s against the RunStore contract. s must start empty.
func Run(t *testing.T, s store.RunStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("save rejects invalid records", func(t *testing.T) {
		assert.ErrorIs(t, s.Save(ctx, nil), store.ErrInvalidRecord)
		assert.ErrorIs(t, s.Save(ctx, Record("", "graph-a", 0)), store.ErrInvalidRecord)
	})

	t.Run("save and load", func(t *testing.T) {
		rec := Record("run-a1", "graph-a", 0)
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.GraphID, got.GraphID)
		assert.True(t, rec.StartedAt.Equal(got.StartedAt))
		assert.Equal(t, rec.Duration, got.Duration)
		assert.Equal(t, rec.Executed, got.Executed)
		assert.Equal(t, rec.Residue, got.Residue)
		assert.Equal(t, rec.Script, got.Script)
		assert.Equal(t, rec.Metadata, got.Metadata)
		assert.False(t, got.Failed())
	})

	t.Run("save replaces", func(t *testing.T) {
		rec := Record("run-a1", "graph-a", 0)
		rec.Error = "node 2 (q) failed: boom"
		require.NoError(t, s.Save(ctx, rec))

		got, err := s.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, got.Failed())
		assert.Equal(t, rec.Error, got.Error)
	})

	t.Run("load missing", func(t *testing.T) {
		_, err := s.Load(ctx, "no-such-run")
		assert.ErrorIs(t, err, store.ErrRunNotFound)
	})

	t.Run("list orders by start", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, Record("run-a3", "graph-a", 20)))
		require.NoError(t, s.Save(ctx, Record("run-a2", "graph-a", 10)))
		require.NoError(t, s.Save(ctx, Record("run-b1", "graph-b", 5)))

		list, err := s.List(ctx, "graph-a")
		require.NoError(t, err)
		ids := make([]string, len(list))
		for i, r := range list {
			ids[i] = r.ID
		}
		assert.Equal(t, []string{"run-a1", "run-a2", "run-a3"}, ids)

		list, err = s.List(ctx, "graph-b")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "run-b1", list[0].ID)
	})

	t.Run("list unknown graph", func(t *testing.T) {
		list, err := s.List(ctx, "graph-none")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "run-a2"))
		_, err := s.Load(ctx, "run-a2")
		assert.ErrorIs(t, err, store.ErrRunNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "run-a2"), store.ErrRunNotFound)

		list, err := s.List(ctx, "graph-a")
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx, "graph-a"))

		list, err := s.List(ctx, "graph-a")
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = s.List(ctx, "graph-b")
		require.NoError(t, err)
		assert.Len(t, list, 1, "other graphs survive")

		assert.NoError(t, s.Clear(ctx, "graph-none"))
	})
}
