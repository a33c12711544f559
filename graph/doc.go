// Package graph implements the dataflow execution graph and incremental
// scheduler behind a node-based visual programming canvas.
//
// # Core Concepts
//
// ## Nodes and Kinds
// A Node is an instance of a Kind. The kind fixes the node's ordered input
// ports, ordered output ports and its body. Nodes cache the values last
// pushed into their inputs and the values their body last produced.
//
// ## Links
// A Link connects one node's output port to another node's input port.
// Links live on the source node only; predecessors are found by scanning.
// Cycles are allowed.
//
// ## Staleness
// A node is stale when its cached outputs can no longer be trusted. Any
// structural edit (AddLink, RemoveLink, RemoveNode) triggers an invalidation
// cascade: a breadth-first walk that marks the affected node and everything
// downstream stale and clears the inputs it feeds. The walk visits each node
// once, so cyclic graphs terminate.
//
// ## Scheduling
// Run repeatedly collects every stale node whose required inputs are all
// present (a wavefront), runs the whole wavefront and pushes outputs forward,
// then recomputes. Stale nodes that never become runnable are returned as the
// residue. A node body failure aborts the run.
//
// # Example Usage
//
//	g := graph.NewGraph()
//
//	source := graph.NewKind("const", nil, []string{"x"},
//		func(ctx context.Context, _ map[string]any) (map[string]any, error) {
//			return map[string]any{"x": 21}, nil
//		})
//	double := graph.NewKind("double", graph.Required("x"), []string{"y"},
//		func(ctx context.Context, in map[string]any) (map[string]any, error) {
//			return map[string]any{"y": in["x"].(int) * 2}, nil
//		})
//
//	p := g.AddNode(source)
//	q := g.AddNode(double)
//	if err := g.AddLink(p, "x", q, "x"); err != nil {
//		return err
//	}
//
//	residue, err := g.Run(ctx, nil)
//
// # Recording Scripts
//
// Passing a ScriptRecordingSink to Run records one assignment line per node
// instead of running bodies. Recording happens on a clone, so the live graph
// keeps its caches. Plan is a shortcut for that.
//
// # Observability
//
//   - NodeListener receives stale, start, complete and error events
//   - Tracer collects run, node and value-push spans
//   - WithJournal persists a store.RunRecord per run
//   - Exporter draws Mermaid and DOT diagrams
package graph
