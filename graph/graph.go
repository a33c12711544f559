package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/smallnest/nodegraphgo/log"
	"github.com/smallnest/nodegraphgo/store"
)

// Graph owns a set of nodes and keeps their link topology consistent.
//
// A Graph is not safe for concurrent use. Structural edits and Run must be
// serialized by the caller, typically a single UI event loop.
type Graph struct {
	id string

	// nodes keeps insertion order; index resolves ids
	nodes  []*Node
	index  map[NodeID]*Node
	nextID NodeID

	logger    log.Logger
	listeners []NodeListener
	tracer    *Tracer
	journal   store.RunStore
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		id:     uuid.NewString(),
		index:  make(map[NodeID]*Node),
		nextID: 1,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID returns the graph id recorded in run records.
func (g *Graph) ID() string { return g.id }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// AddListener registers a node event listener.
func (g *Graph) AddListener(listener NodeListener) {
	if listener != nil {
		g.listeners = append(g.listeners, listener)
	}
}

// SetTracer sets the tracer used by Run.
func (g *Graph) SetTracer(tracer *Tracer) {
	g.tracer = tracer
}

// AddNode creates a node of the given kind, assigns it the next id and
// appends it. New nodes are stale.
func (g *Graph) AddNode(kind Kind) NodeID {
	n := newNode(g.nextID, kind)
	g.nextID++
	g.nodes = append(g.nodes, n)
	g.index[n.id] = n
	g.logger.Debug("added node %d (%s)", n.id, kind.Name())
	return n.id
}

func (g *Graph) lookup(id NodeID) (*Node, error) {
	n, ok := g.index[id]
	if !ok {
		return nil, nodeNotFound(id)
	}
	return n, nil
}

// AddLink links src's output port to tgt's input port and invalidates tgt
// and everything downstream of it. If src is fresh its cached value is
// pushed into tgt straight away.
func (g *Graph) AddLink(src NodeID, output string, tgt NodeID, input string) error {
	source, err := g.lookup(src)
	if err != nil {
		return err
	}
	target, err := g.lookup(tgt)
	if err != nil {
		return err
	}
	if !target.hasInput(input) {
		return unknownPort(tgt, "input", input)
	}
	if err := source.AddLink(output, tgt, input); err != nil {
		return err
	}

	l := Link{Source: src, Output: output, Target: tgt, Input: input}
	g.logger.Debug("linked %s", l)
	g.invalidateCascade(target, nil)

	if v, ok := source.OutputValue(output); ok {
		target.setInputValue(input, v)
	}
	return nil
}

// RemoveLink invalidates tgt's subtree and then removes the matching links
// from src, clearing the inputs they fed. AnyPort as output or input acts
// as a wildcard.
func (g *Graph) RemoveLink(src NodeID, output string, tgt NodeID, input string) error {
	source, err := g.lookup(src)
	if err != nil {
		return err
	}
	target, err := g.lookup(tgt)
	if err != nil {
		return err
	}
	if output != AnyPort && !source.hasOutput(output) {
		return unknownPort(src, "output", output)
	}
	if input != AnyPort && !target.hasInput(input) {
		return unknownPort(tgt, "input", input)
	}

	g.invalidateCascade(target, nil)

	removed, err := source.RemoveLink(output, tgt, input)
	if err != nil {
		return err
	}
	for _, l := range removed {
		target.InvalidateInputValue(l.Input)
		g.logger.Debug("unlinked %s", l)
	}
	return nil
}

// RemoveNode invalidates the node's subtree, drops its links in both
// directions and erases it. Emptying the graph resets id assignment to 1.
func (g *Graph) RemoveNode(id NodeID) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}

	g.invalidateCascade(n, nil)

	for _, l := range n.Links() {
		if _, err := n.RemoveLink(l.Output, l.Target, l.Input); err != nil {
			return err
		}
		if t, ok := g.index[l.Target]; ok && t != n {
			t.InvalidateInputValue(l.Input)
		}
	}
	for _, other := range g.nodes {
		if other == n {
			continue
		}
		if _, err := other.RemoveLink(AnyPort, id, AnyPort); err != nil {
			return err
		}
	}

	g.nodes = slices.DeleteFunc(g.nodes, func(m *Node) bool { return m == n })
	delete(g.index, id)
	if len(g.nodes) == 0 {
		g.nextID = 1
	}
	g.logger.Debug("removed node %d (%s)", id, n.kind.Name())
	return nil
}

// Predecessors returns, in insertion order, the nodes linked into tgt.
// With a port name only links into that input count; AnyPort matches all.
func (g *Graph) Predecessors(tgt NodeID, input string) []*Node {
	var preds []*Node
	for _, n := range g.nodes {
		if slices.ContainsFunc(n.Links(), func(l Link) bool {
			return l.Target == tgt && (input == AnyPort || l.Input == input)
		}) {
			preds = append(preds, n)
		}
	}
	return preds
}

// Links returns every link in the graph, grouped by source in insertion order.
func (g *Graph) Links() []Link {
	var links []Link
	for _, n := range g.nodes {
		links = append(links, n.Links()...)
	}
	return links
}

// Validate checks that every link points at an existing node and input port.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		for _, l := range n.Links() {
			t, ok := g.index[l.Target]
			if !ok || !t.hasInput(l.Input) {
				return danglingLink(l)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the node state and topology. The copy shares
// kinds and the logger; listeners, tracer and journal are not copied.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		id:     g.id,
		nodes:  make([]*Node, 0, len(g.nodes)),
		index:  make(map[NodeID]*Node, len(g.nodes)),
		nextID: g.nextID,
		logger: g.logger,
	}
	for _, n := range g.nodes {
		cn := n.clone()
		c.nodes = append(c.nodes, cn)
		c.index[cn.id] = cn
	}
	return c
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%s, %d nodes)", g.id, len(g.nodes))
}

func (g *Graph) emit(ctx context.Context, ev Event) {
	notifyListeners(ctx, g.logger, g.listeners, ev)
}
