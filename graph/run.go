package graph

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/nodegraphgo/store"
)

// Run executes every stale node that can run, wavefront by wavefront, until
// no pending node is runnable. It returns the residue: the ids of stale
// nodes that never became runnable, in insertion order. A non-empty residue
// is the normal outcome of an unmet dependency and is not an error.
//
// A nil sink means RealExecutionSink. The first node failure stops the run
// and is returned as a *NodeExecutionError together with the nodes still
// pending at that point; those nodes, the failed one included, stay stale.
func (g *Graph) Run(ctx context.Context, sink ExecutionSink) ([]NodeID, error) {
	if sink == nil {
		sink = RealExecutionSink{}
	}
	work := sink.Workspace(g)
	start := time.Now()
	runID := uuid.NewString()

	if err := work.Validate(); err != nil {
		g.logger.Error("run %s refused: %v", runID, err)
		return nil, err
	}

	runSpan := work.tracer.StartSpan(ctx, TraceEventRunStart, 0, "")
	ctx = ContextWithSpan(ctx, runSpan)

	pending := work.staleNodes()
	var executed []NodeID
	var runErr error
	waves := 0

	for runErr == nil {
		runnable := slices.DeleteFunc(slices.Clone(pending), func(n *Node) bool { return !n.canRun })
		if len(runnable) == 0 {
			break
		}
		waves++
		g.logger.Debug("run %s wavefront %d: %v", runID, waves, nodeIDs(runnable))

		for _, n := range runnable {
			if err := work.runNode(ctx, n, sink); err != nil {
				runErr = err
				break
			}
			executed = append(executed, n.id)
			pending = slices.DeleteFunc(pending, func(m *Node) bool { return m == n })
		}
	}

	residue := nodeIDs(pending)
	work.tracer.EndSpan(ctx, runSpan, runErr)

	switch {
	case runErr != nil:
		g.logger.Error("run %s failed after %d node(s): %v", runID, len(executed), runErr)
	case len(residue) > 0:
		g.logger.Warn("run %s executed %d node(s), %d left unrunnable: %v", runID, len(executed), len(residue), residue)
	default:
		g.logger.Info("run %s executed %d node(s) in %d wavefront(s)", runID, len(executed), waves)
	}

	g.record(ctx, &store.RunRecord{
		ID:        runID,
		GraphID:   g.id,
		StartedAt: start,
		Duration:  time.Since(start),
		Executed:  toInts(executed),
		Residue:   toInts(residue),
		Script:    recordedLines(sink),
		Error:     errorString(runErr),
		Metadata: map[string]any{
			"wavefronts": waves,
			"recorded":   work != g,
		},
	})

	return residue, runErr
}

// Plan records the script the next Run would execute without touching the
// graph's caches. It returns the script lines and the residue.
func (g *Graph) Plan(ctx context.Context) ([]string, []NodeID, error) {
	rec := NewScriptRecordingSink()
	residue, err := g.Run(ctx, rec)
	return rec.Lines(), residue, err
}

func (g *Graph) runNode(ctx context.Context, n *Node, sink ExecutionSink) error {
	kind := n.kind.Name()
	started := time.Now()
	g.emit(ctx, Event{Type: NodeEventStart, Timestamp: started, Node: n.id, Kind: kind})
	span := g.tracer.StartSpan(ctx, TraceEventNodeStart, n.id, kind)

	if err := n.Run(ContextWithSpan(ctx, span), sink); err != nil {
		g.tracer.EndSpan(ctx, span, err)
		g.emit(ctx, Event{Type: NodeEventError, Timestamp: time.Now(), Node: n.id, Kind: kind, Error: err, Duration: time.Since(started)})
		return err
	}

	g.tracer.EndSpan(ctx, span, nil)
	g.emit(ctx, Event{
		Type:      NodeEventComplete,
		Timestamp: time.Now(),
		Node:      n.id,
		Kind:      kind,
		Outputs:   n.OutputValues(),
		Duration:  time.Since(started),
	})
	return n.sendOutputs(ctx, g)
}

func (g *Graph) record(ctx context.Context, rec *store.RunRecord) {
	if g.journal == nil {
		return
	}
	if err := g.journal.Save(ctx, rec); err != nil {
		g.logger.Warn("failed to journal run %s: %v", rec.ID, err)
	}
}

func (g *Graph) staleNodes() []*Node {
	var stale []*Node
	for _, n := range g.nodes {
		if n.needsRunning {
			stale = append(stale, n)
		}
	}
	return stale
}

func nodeIDs(nodes []*Node) []NodeID {
	ids := make([]NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

func toInts(ids []NodeID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

func recordedLines(sink ExecutionSink) []string {
	if rec, ok := sink.(*ScriptRecordingSink); ok {
		return rec.Lines()
	}
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
