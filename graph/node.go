package graph

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
)

// NodeID identifies a node within one graph. Ids are assigned by Graph.AddNode.
type NodeID int

func (id NodeID) String() string {
	return strconv.Itoa(int(id))
}

// NodeState is the scheduling state of a node as seen from outside Run.
type NodeState int

const (
	// StateFresh means the cached outputs are valid.
	StateFresh NodeState = iota
	// StateStale means the node must run again but some required input is missing.
	StateStale
	// StateRunnable means the node is stale and all required inputs are present.
	StateRunnable
)

func (s NodeState) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateRunnable:
		return "runnable"
	default:
		return "unknown"
	}
}

// Node is one unit of computation in a Graph. It holds the port schema of
// its kind, cached input and output values, staleness flags and its
// outgoing links.
//
// Nodes are created by Graph.AddNode and must only be mutated through the
// Graph that owns them. Readers such as UI overlays may call the accessor
// methods freely.
type Node struct {
	id      NodeID
	kind    Kind
	inputs  []Port
	outputs []string

	inputCache  map[string]any
	outputCache map[string]any

	needsRunning bool
	canRun       bool

	// links maps an output port to the set of targets fed from it
	links map[string]map[Target]struct{}
}

func newNode(id NodeID, kind Kind) *Node {
	n := &Node{
		id:           id,
		kind:         kind,
		inputs:       slices.Clone(kind.Inputs()),
		outputs:      slices.Clone(kind.Outputs()),
		inputCache:   make(map[string]any),
		outputCache:  make(map[string]any),
		needsRunning: true,
		links:        make(map[string]map[Target]struct{}),
	}
	n.updateCanRun()
	return n
}

// ID returns the node id.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Inputs returns the ordered input ports.
func (n *Node) Inputs() []Port { return slices.Clone(n.inputs) }

// Outputs returns the ordered output port names.
func (n *Node) Outputs() []string { return slices.Clone(n.outputs) }

// NeedsRunning reports whether the cached outputs are stale.
func (n *Node) NeedsRunning() bool { return n.needsRunning }

// CanRun reports whether every required input currently holds a value.
func (n *Node) CanRun() bool { return n.canRun }

// State combines NeedsRunning and CanRun.
func (n *Node) State() NodeState {
	switch {
	case !n.needsRunning:
		return StateFresh
	case n.canRun:
		return StateRunnable
	default:
		return StateStale
	}
}

func (n *Node) hasInput(port string) bool {
	return slices.ContainsFunc(n.inputs, func(p Port) bool { return p.Name == port })
}

func (n *Node) hasOutput(port string) bool {
	return slices.Contains(n.outputs, port)
}

// InputValue returns the cached value of an input port.
func (n *Node) InputValue(port string) (any, bool) {
	v, ok := n.inputCache[port]
	return v, ok
}

// InputValues returns a copy of the input cache.
func (n *Node) InputValues() map[string]any {
	return maps.Clone(n.inputCache)
}

// OutputValue returns the cached value of an output port. A stale node
// reports no values.
func (n *Node) OutputValue(port string) (any, bool) {
	if n.needsRunning {
		return nil, false
	}
	v, ok := n.outputCache[port]
	return v, ok
}

// OutputValues returns a copy of the output cache, or nil while the node is stale.
func (n *Node) OutputValues() map[string]any {
	if n.needsRunning {
		return nil
	}
	return maps.Clone(n.outputCache)
}

// MissingInputs lists the required input ports that hold no value.
func (n *Node) MissingInputs() []string {
	var missing []string
	for _, p := range n.inputs {
		if p.Optional {
			continue
		}
		if _, ok := n.inputCache[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

func (n *Node) updateCanRun() {
	n.canRun = len(n.MissingInputs()) == 0
}

// AddLink records a link from one of this node's outputs to target's input.
// Adding a link that already exists is a no-op.
func (n *Node) AddLink(output string, target NodeID, input string) error {
	if !n.hasOutput(output) {
		return unknownPort(n.id, "output", output)
	}
	targets, ok := n.links[output]
	if !ok {
		targets = make(map[Target]struct{})
		n.links[output] = targets
	}
	targets[Target{Node: target, Input: input}] = struct{}{}
	return nil
}

// RemoveLink removes links to target and returns the ones that existed.
// AnyPort as output sweeps every output port; AnyPort as input matches
// every input of target. Removing a link that does not exist is a no-op.
func (n *Node) RemoveLink(output string, target NodeID, input string) ([]Link, error) {
	if output != AnyPort && !n.hasOutput(output) {
		return nil, unknownPort(n.id, "output", output)
	}

	var removed []Link
	for _, out := range n.outputs {
		if output != AnyPort && out != output {
			continue
		}
		for t := range n.links[out] {
			if t.Node != target || (input != AnyPort && t.Input != input) {
				continue
			}
			delete(n.links[out], t)
			removed = append(removed, Link{Source: n.id, Output: out, Target: t.Node, Input: t.Input})
		}
		if len(n.links[out]) == 0 {
			delete(n.links, out)
		}
	}
	return removed, nil
}

// Links returns the outgoing links in output-port order, then by target.
func (n *Node) Links() []Link {
	var links []Link
	for _, out := range n.outputs {
		targets := slices.SortedFunc(maps.Keys(n.links[out]), compareTargets)
		for _, t := range targets {
			links = append(links, Link{Source: n.id, Output: out, Target: t.Node, Input: t.Input})
		}
	}
	return links
}

// InvalidateOutputValues drops the output cache and marks the node stale.
func (n *Node) InvalidateOutputValues() {
	clear(n.outputCache)
	n.needsRunning = true
}

// InvalidateInputValue drops one cached input and recomputes CanRun.
func (n *Node) InvalidateInputValue(port string) {
	delete(n.inputCache, port)
	n.updateCanRun()
}

func (n *Node) setInputValue(port string, value any) {
	n.inputCache[port] = value
	n.updateCanRun()
}

// Run executes the node through sink. On success the returned outputs are
// cached in declared order and the node becomes fresh; values for ports the
// kind does not declare are dropped. On failure the node stays stale and a
// *NodeExecutionError is returned. Outputs are cached only when the sink
// commits them for n, so recording a live node leaves it untouched.
func (n *Node) Run(ctx context.Context, sink ExecutionSink) error {
	if sink == nil {
		sink = RealExecutionSink{}
	}
	outputs, err := sink.Execute(ctx, n, n.InputValues())
	if err != nil {
		var execErr *NodeExecutionError
		if errors.As(err, &execErr) {
			return err
		}
		return &NodeExecutionError{Node: n.id, Kind: n.kind.Name(), Err: err}
	}
	if !sink.Commits(n) {
		return nil
	}

	clear(n.outputCache)
	for _, port := range n.outputs {
		if v, ok := outputs[port]; ok {
			n.outputCache[port] = v
		}
	}
	n.needsRunning = false
	return nil
}

// SendOutputsToSuccessors writes each cached output into the inputs linked
// from it. It is a forward data push and never invalidates anything.
func (n *Node) SendOutputsToSuccessors(g *Graph) error {
	return n.sendOutputs(context.Background(), g)
}

func (n *Node) sendOutputs(ctx context.Context, g *Graph) error {
	for _, l := range n.Links() {
		v, ok := n.outputCache[l.Output]
		if !ok {
			continue
		}
		target, ok := g.index[l.Target]
		if !ok {
			return danglingLink(l)
		}
		target.setInputValue(l.Input, v)
		g.tracer.tracePush(ctx, l)
		g.logger.Debug("pushed %s", l)
	}
	return nil
}

func (n *Node) clone() *Node {
	c := &Node{
		id:           n.id,
		kind:         n.kind,
		inputs:       n.inputs,
		outputs:      n.outputs,
		inputCache:   maps.Clone(n.inputCache),
		outputCache:  maps.Clone(n.outputCache),
		needsRunning: n.needsRunning,
		canRun:       n.canRun,
		links:        make(map[string]map[Target]struct{}, len(n.links)),
	}
	for out, targets := range n.links {
		c.links[out] = maps.Clone(targets)
	}
	return c
}
