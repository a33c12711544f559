package memory

import (
	"context"
	"testing"

	"github.com/smallnest/nodegraphgo/store"
	"github.com/smallnest/nodegraphgo/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunStore(t *testing.T) {
	storetest.Run(t, NewMemoryRunStore())
}

func TestMemoryRunStore_Copies(t *testing.T) {
	s := NewMemoryRunStore()
	ctx := context.Background()

	rec := storetest.Record("run-1", "g", 0)
	require.NoError(t, s.Save(ctx, rec))
	rec.Error = "mutated after save"
	rec.Executed[0] = 99
	rec.Script[0] = "mutated"
	rec.Metadata["wavefronts"] = float64(7)

	got, err := s.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, got.Error)
	assert.Equal(t, []int{1, 2}, got.Executed)
	assert.Equal(t, "n1_x = p_1(seed=0)", got.Script[0])
	assert.Equal(t, float64(2), got.Metadata["wavefronts"])

	got.GraphID = "other"
	got.Residue = append(got.Residue[:0], 42)
	again, err := s.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "g", again.GraphID)
	assert.Equal(t, []int{3}, again.Residue)

	listed, err := s.List(ctx, "g")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Executed[1] = 0
	again, err = s.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, again.Executed)
}

func TestMemoryRunStore_RejectsMissingID(t *testing.T) {
	s := NewMemoryRunStore()
	assert.ErrorIs(t, s.Save(context.Background(), nil), store.ErrInvalidRecord)
	assert.ErrorIs(t, s.Save(context.Background(), storetest.Record("", "g", 0)), store.ErrInvalidRecord)
}
