package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptRecordingSink_Plan(t *testing.T) {
	c := counter{}
	g, p, q := pq(t, c)

	lines, residue, err := g.Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, residue)
	assert.Equal(t, []string{
		"n1_x = p_1()",
		"n2_y = q_2(x=n1_x)",
	}, lines)

	assert.Empty(t, c, "no body ran")
	assert.Equal(t, StateRunnable, mustNode(t, g, p).State())
	assert.Equal(t, StateStale, mustNode(t, g, q).State())
	_, ok := mustNode(t, g, q).InputValue("x")
	assert.False(t, ok, "live caches untouched")
}

func TestScriptRecordingSink_UsesCachedValues(t *testing.T) {
	c := counter{}
	g, _, q := pq(t, c)
	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, g.InvalidateCascade(q))

	rec := NewScriptRecordingSink()
	residue, err := g.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, residue)
	assert.Equal(t, "n2_y = q_2(x=21)\n", rec.Script())
	assert.True(t, mustNode(t, g, q).NeedsRunning())
}

func TestScriptRecordingSink_Residue(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	g.AddNode(constKind(c, "src", "hello"))
	orphan := g.AddNode(doubleKind(c, "orphan"))

	lines, residue, err := g.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"n1_x = src_1()"}, lines)
	assert.Equal(t, []NodeID{orphan}, residue)
}

func TestScriptRecordingSink_Formatting(t *testing.T) {
	g := newTestGraph()
	greet := g.AddNode(NewKind("load-csv", nil, []string{"rows", "2nd col"}, nil))
	show := g.AddNode(NewKind("show", []Port{{Name: "value"}, Optional("label"), Optional("unused")}, nil, nil))
	require.NoError(t, g.AddLink(greet, "rows", show, "value"))

	// A fresh constant source so show sees a literal on label.
	label := g.AddNode(constKind(counter{}, "lit", "total: \"x\""))
	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, g.AddLink(label, "x", show, "label"))
	require.NoError(t, g.InvalidateCascade(greet))

	rec := NewScriptRecordingSink()
	_, err = g.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"n1_rows, n1__2nd_col = load_csv_1()",
		`show_2(value=n1_rows, label="total: \"x\"")`,
	}, rec.Lines())
}

func TestScriptRecordingSink_Reset(t *testing.T) {
	c := counter{}
	g, _, _ := pq(t, c)

	rec := NewScriptRecordingSink()
	_, err := g.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Len(t, rec.Lines(), 2)

	rec.Reset()
	assert.Empty(t, rec.Lines())
	assert.Equal(t, "", rec.Script())

	_, err = g.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Len(t, rec.Lines(), 2, "graph still stale, same plan again")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{Expr("n3_out"), "n3_out"},
		{"a b", `"a b"`},
		{42, "42"},
		{1.5, "1.5"},
		{true, "true"},
		{[]int{1, 2}, "[]int{1, 2}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "_", identifier(""))
	assert.Equal(t, "sum", identifier("sum"))
	assert.Equal(t, "load_csv", identifier("load-csv"))
	assert.Equal(t, "_2x", identifier("2x"))
	assert.Equal(t, "a_b", identifier("a b"))
}

func TestRealExecutionSink_Workspace(t *testing.T) {
	g := newTestGraph()
	assert.Same(t, g, RealExecutionSink{}.Workspace(g))
	assert.NotSame(t, g, NewScriptRecordingSink().Workspace(g))
}

func TestScriptRecordingSink_LiveNodeStaysStale(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	p := g.AddNode(constKind(c, "p", 21))
	n := mustNode(t, g, p)

	rec := NewScriptRecordingSink()
	require.NoError(t, n.Run(context.Background(), rec))
	assert.Equal(t, []string{"n1_x = p_1()"}, rec.Lines())
	assert.True(t, n.NeedsRunning())
	assert.Empty(t, n.outputCache)
	assert.Zero(t, c["p"])

	residue, err := g.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, residue)
	assert.Equal(t, map[string]any{"x": 21}, n.OutputValues())
	assert.Equal(t, 1, c["p"])
}

func TestSinks_Commits(t *testing.T) {
	g := newTestGraph()
	id := g.AddNode(constKind(counter{}, "p", 1))
	live := mustNode(t, g, id)

	assert.True(t, RealExecutionSink{}.Commits(live))

	rec := NewScriptRecordingSink()
	assert.False(t, rec.Commits(live), "no workspace yet")
	work := rec.Workspace(g)
	assert.False(t, rec.Commits(live))
	assert.True(t, rec.Commits(mustNode(t, work, id)))
}
