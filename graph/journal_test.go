package graph

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/smallnest/nodegraphgo/log"
	"github.com/smallnest/nodegraphgo/store"
	"github.com/smallnest/nodegraphgo/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitRecorded separates one live run record from one recording run record.
func splitRecorded(t *testing.T, records []*store.RunRecord) (run, plan *store.RunRecord) {
	t.Helper()
	for _, r := range records {
		if r.Metadata["recorded"] == true {
			plan = r
		} else {
			run = r
		}
	}
	require.NotNil(t, run)
	require.NotNil(t, plan)
	return run, plan
}

func TestJournal_RecordsRuns(t *testing.T) {
	c := counter{}
	journal := memory.NewMemoryRunStore()
	g, p, q := pq(t, c, WithJournal(journal), WithGraphID("canvas-1"))
	orphan := g.AddNode(doubleKind(c, "orphan"))
	ctx := context.Background()

	_, err := g.Run(ctx, nil)
	require.NoError(t, err)
	_, _, err = g.Plan(ctx)
	require.NoError(t, err)

	records, err := journal.List(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	run, plan := splitRecorded(t, records)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "canvas-1", run.GraphID)
	assert.Equal(t, []int{int(p), int(q)}, run.Executed)
	assert.Equal(t, []int{int(orphan)}, run.Residue)
	assert.Empty(t, run.Script)
	assert.False(t, run.Failed())
	assert.Equal(t, 2, run.Metadata["wavefronts"])
	assert.Equal(t, false, run.Metadata["recorded"])

	assert.Empty(t, plan.Executed, "everything but the orphan is fresh")
	assert.Equal(t, []int{int(orphan)}, plan.Residue)
	assert.Equal(t, true, plan.Metadata["recorded"])
	assert.NotEqual(t, run.ID, plan.ID)
}

func TestJournal_RecordsScriptAndFailure(t *testing.T) {
	journal := memory.NewMemoryRunStore()
	g := newTestGraph(WithJournal(journal))
	g.AddNode(constKind(counter{}, "ok", 1))
	g.AddNode(failKind(counter{}, "bad"))
	ctx := context.Background()

	_, _, err := g.Plan(ctx)
	require.NoError(t, err)
	_, err = g.Run(ctx, nil)
	require.Error(t, err)

	records, err := journal.List(ctx, g.ID())
	require.NoError(t, err)
	require.Len(t, records, 2)

	run, plan := splitRecorded(t, records)
	assert.Equal(t, []string{"n1_x = ok_1()", "n2_x = bad_2()"}, plan.Script)
	assert.False(t, plan.Failed())
	assert.True(t, run.Failed())
	assert.Equal(t, "node 2 (bad) failed: boom", run.Error)
	assert.Equal(t, []int{1}, run.Executed)
	assert.Equal(t, []int{2}, run.Residue)
}

type brokenStore struct {
	store.RunStore
}

func (brokenStore) Save(context.Context, *store.RunRecord) error {
	return errors.New("disk full")
}

func TestJournal_SaveErrorDoesNotFailRun(t *testing.T) {
	var buf bytes.Buffer
	g := NewGraph(
		WithLogger(log.NewWriterLogger(&buf, log.LogLevelWarn)),
		WithJournal(brokenStore{}),
	)
	g.AddNode(constKind(counter{}, "a", 1))

	residue, err := g.Run(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, residue)
	assert.Contains(t, buf.String(), "disk full")
}
