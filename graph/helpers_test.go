package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/smallnest/nodegraphgo/log"
)

var errBoom = errors.New("boom")

// counter records how many times each kind body ran.
type counter map[string]int

// constKind has no inputs and emits value on port x.
func constKind(c counter, name string, value any) Kind {
	return NewKind(name, nil, []string{"x"}, func(_ context.Context, _ map[string]any) (map[string]any, error) {
		c[name]++
		return map[string]any{"x": value}, nil
	})
}

// doubleKind reads x and emits 2*x on y.
func doubleKind(c counter, name string) Kind {
	return NewKind(name, Required("x"), []string{"y"}, func(_ context.Context, in map[string]any) (map[string]any, error) {
		c[name]++
		return map[string]any{"y": in["x"].(int) * 2}, nil
	})
}

// passKind forwards in to out.
func passKind(c counter, name string, inputs ...Port) Kind {
	if len(inputs) == 0 {
		inputs = Required("in")
	}
	return NewKind(name, inputs, []string{"out"}, func(_ context.Context, in map[string]any) (map[string]any, error) {
		c[name]++
		v, ok := in["in"]
		if !ok {
			v = 0
		}
		return map[string]any{"out": v}, nil
	})
}

func failKind(c counter, name string) Kind {
	return NewKind(name, nil, []string{"x"}, func(_ context.Context, _ map[string]any) (map[string]any, error) {
		c[name]++
		return nil, errBoom
	})
}

func newTestGraph(opts ...Option) *Graph {
	return NewGraph(append([]Option{WithLogger(&log.NoOpLogger{})}, opts...)...)
}

// pq builds the P.x -> Q.x graph.
func pq(t *testing.T, c counter, opts ...Option) (*Graph, NodeID, NodeID) {
	t.Helper()
	g := newTestGraph(opts...)
	p := g.AddNode(constKind(c, "p", 21))
	q := g.AddNode(doubleKind(c, "q"))
	if err := g.AddLink(p, "x", q, "x"); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	return g, p, q
}

func mustNode(t *testing.T, g *Graph, id NodeID) *Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %d not found", id)
	}
	return n
}

func states(g *Graph) map[NodeID]NodeState {
	out := make(map[NodeID]NodeState, g.Len())
	for _, n := range g.Nodes() {
		out[n.ID()] = n.State()
	}
	return out
}
