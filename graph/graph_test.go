package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNodeAssignsIDs(t *testing.T) {
	c := counter{}
	g := newTestGraph()

	assert.Equal(t, NodeID(1), g.AddNode(constKind(c, "a", 1)))
	assert.Equal(t, NodeID(2), g.AddNode(constKind(c, "b", 1)))
	assert.Equal(t, NodeID(3), g.AddNode(constKind(c, "c", 1)))
	assert.Equal(t, 3, g.Len())

	require.NoError(t, g.RemoveNode(3))
	assert.Equal(t, NodeID(4), g.AddNode(constKind(c, "d", 1)), "ids are not reused while non-empty")
}

func TestGraph_IDsResetWhenEmpty(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	for range 3 {
		g.AddNode(constKind(c, "a", 1))
	}
	for _, n := range g.Nodes() {
		require.NoError(t, g.RemoveNode(n.ID()))
	}
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, NodeID(1), g.AddNode(constKind(c, "a", 1)))
}

func TestGraph_SeparateCounters(t *testing.T) {
	c := counter{}
	g1, g2 := newTestGraph(), newTestGraph()
	g1.AddNode(constKind(c, "a", 1))
	g1.AddNode(constKind(c, "a", 1))
	assert.Equal(t, NodeID(1), g2.AddNode(constKind(c, "a", 1)))
	assert.NotEqual(t, g1.ID(), g2.ID())
}

func TestGraph_AddLinkValidation(t *testing.T) {
	c := counter{}
	g, p, q := pq(t, c)
	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		src, tgt NodeID
		out, in  string
		want     error
	}{
		{"unknown source", 9, q, "x", "x", ErrNodeNotFound},
		{"unknown target", p, 9, "x", "x", ErrNodeNotFound},
		{"unknown output", p, q, "nope", "x", ErrUnknownPort},
		{"unknown input", p, q, "x", "nope", ErrUnknownPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddLink(tt.src, tt.out, tt.tgt, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, g.Links(), 1)
			assert.Equal(t, StateFresh, mustNode(t, g, q).State(), "rejected edits do not invalidate")
		})
	}
}

func TestGraph_AddLinkIdempotent(t *testing.T) {
	c := counter{}
	g, p, q := pq(t, c)

	require.NoError(t, g.AddLink(p, "x", q, "x"))
	assert.Equal(t, []Link{{Source: p, Output: "x", Target: q, Input: "x"}}, g.Links())
}

func TestGraph_AddLinkInvalidatesTarget(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	a := g.AddNode(constKind(c, "a", 1))
	b := g.AddNode(passKind(c, "b", Optional("in")))
	d := g.AddNode(passKind(c, "d"))
	require.NoError(t, g.AddLink(b, "out", d, "in"))

	residue, err := g.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, residue)

	require.NoError(t, g.AddLink(a, "x", b, "in"))
	assert.Equal(t, map[NodeID]NodeState{
		a: StateFresh,
		b: StateRunnable,
		d: StateStale,
	}, states(g))

	v, ok := mustNode(t, g, b).InputValue("in")
	assert.True(t, ok, "fresh source value is pushed immediately")
	assert.Equal(t, 1, v)

	residue, err = g.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, residue)
	out, _ := mustNode(t, g, d).OutputValue("out")
	assert.Equal(t, 1, out)
	assert.Equal(t, 1, c["a"])
	assert.Equal(t, 2, c["b"])
}

func TestGraph_RemoveLink(t *testing.T) {
	c := counter{}
	g, p, q := pq(t, c)
	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)

	t.Run("unknown ports are rejected", func(t *testing.T) {
		assert.ErrorIs(t, g.RemoveLink(p, "nope", q, "x"), ErrUnknownPort)
		assert.ErrorIs(t, g.RemoveLink(p, "x", q, "nope"), ErrUnknownPort)
		assert.ErrorIs(t, g.RemoveLink(p, "x", 42, "x"), ErrNodeNotFound)
		assert.Equal(t, StateFresh, mustNode(t, g, q).State())
	})

	t.Run("missing link is a no-op", func(t *testing.T) {
		require.NoError(t, g.RemoveLink(q, "y", p, AnyPort))
		assert.Len(t, g.Links(), 1)
	})

	t.Run("wildcard", func(t *testing.T) {
		require.NoError(t, g.RemoveLink(p, AnyPort, q, AnyPort))
		assert.Empty(t, g.Links())
		assert.Equal(t, StateStale, mustNode(t, g, q).State())
	})
}

func TestGraph_RemoveNode(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	a := g.AddNode(constKind(c, "a", 1))
	b := g.AddNode(passKind(c, "b"))
	d := g.AddNode(passKind(c, "d"))
	e := g.AddNode(passKind(c, "e", Optional("in")))
	require.NoError(t, g.AddLink(a, "x", b, "in"))
	require.NoError(t, g.AddLink(b, "out", d, "in"))
	require.NoError(t, g.AddLink(b, "out", e, "in"))
	require.NoError(t, g.AddLink(e, "out", b, "in"))

	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, g.RemoveNode(b))

	_, ok := g.Node(b)
	assert.False(t, ok)
	for _, n := range g.Nodes() {
		for _, l := range n.Links() {
			assert.NotEqual(t, b, l.Target, "link %s survived removal", l)
		}
	}
	assert.Empty(t, g.Links())
	assert.NoError(t, g.Validate())

	assert.Equal(t, StateFresh, mustNode(t, g, a).State(), "upstream stays fresh")
	assert.Equal(t, StateStale, mustNode(t, g, d).State())
	assert.Equal(t, []string{"in"}, mustNode(t, g, d).MissingInputs())
	assert.Equal(t, StateRunnable, mustNode(t, g, e).State())

	assert.ErrorIs(t, g.RemoveNode(b), ErrNodeNotFound)
}

func TestGraph_RemoveSelfLinkedNode(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	a := g.AddNode(passKind(c, "loop", Optional("in")))
	require.NoError(t, g.AddLink(a, "out", a, "in"))

	require.NoError(t, g.RemoveNode(a))
	assert.Equal(t, 0, g.Len())
}

func TestGraph_Predecessors(t *testing.T) {
	c := counter{}
	g := newTestGraph()
	a := g.AddNode(constKind(c, "a", 1))
	b := g.AddNode(constKind(c, "b", 2))
	sum := g.AddNode(NewKind("sum", Required("l", "r"), []string{"s"}, nil))
	require.NoError(t, g.AddLink(b, "x", sum, "r"))
	require.NoError(t, g.AddLink(a, "x", sum, "l"))

	ids := func(nodes []*Node) []NodeID { return nodeIDs(nodes) }
	assert.Equal(t, []NodeID{a, b}, ids(g.Predecessors(sum, AnyPort)))
	assert.Equal(t, []NodeID{a}, ids(g.Predecessors(sum, "l")))
	assert.Equal(t, []NodeID{b}, ids(g.Predecessors(sum, "r")))
	assert.Empty(t, g.Predecessors(a, AnyPort))
}

func TestGraph_Validate(t *testing.T) {
	c := counter{}
	g, p, _ := pq(t, c)
	require.NoError(t, g.Validate())

	// Bypass the graph to plant a link to a missing node.
	require.NoError(t, mustNode(t, g, p).AddLink("x", 77, "x"))
	assert.ErrorIs(t, g.Validate(), ErrDanglingReference)

	residue, err := g.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrDanglingReference)
	assert.Nil(t, residue)
	assert.Zero(t, c["p"], "nothing runs on a corrupt graph")
}

func TestGraph_Clone(t *testing.T) {
	c := counter{}
	g, p, q := pq(t, c)

	cl := g.Clone()
	assert.Equal(t, g.ID(), cl.ID())
	_, err := cl.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, StateFresh, mustNode(t, cl, q).State())
	assert.Equal(t, StateRunnable, mustNode(t, g, p).State(), "original untouched")
	assert.Equal(t, StateStale, mustNode(t, g, q).State())

	require.NoError(t, cl.RemoveLink(p, "x", q, "x"))
	assert.Len(t, g.Links(), 1)
	assert.Equal(t, NodeID(3), cl.AddNode(constKind(c, "z", 0)))
	assert.Equal(t, 2, g.Len())
}

func TestGraph_String(t *testing.T) {
	g := newTestGraph(WithGraphID("canvas"))
	g.AddNode(constKind(counter{}, "a", 1))
	assert.Equal(t, "Graph(canvas, 1 nodes)", g.String())
}
