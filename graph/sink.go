package graph

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExecutionSink decides what running a node means. RealExecutionSink calls
// the node body; ScriptRecordingSink writes one script line per node instead.
type ExecutionSink interface {
	// Workspace returns the graph whose node state a run through this sink
	// may modify. It is called once at the start of Graph.Run.
	Workspace(g *Graph) *Graph

	// Execute produces the outputs of n from its current inputs.
	Execute(ctx context.Context, n *Node, inputs map[string]any) (map[string]any, error)

	// Commits reports whether outputs executed for n may be cached on n,
	// making it fresh.
	Commits(n *Node) bool
}

// RealExecutionSink invokes node bodies against the live graph.
type RealExecutionSink struct{}

var _ ExecutionSink = RealExecutionSink{}

// Workspace returns g itself.
func (RealExecutionSink) Workspace(g *Graph) *Graph {
	return g
}

// Execute calls the body of n's kind. A panic in the body is returned as an error.
func (RealExecutionSink) Execute(ctx context.Context, n *Node, inputs map[string]any) (outputs map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.kind.Execute(ctx, inputs)
}

// Commits always reports true.
func (RealExecutionSink) Commits(*Node) bool {
	return true
}

// Expr is a symbolic value produced while recording a script. It holds the
// identifier bound to an output in an earlier script line.
type Expr string

func (e Expr) String() string { return string(e) }

// ScriptRecordingSink records the run as a script instead of executing it.
// Each runnable node contributes one line of the form
//
//	n1_sum = add_1(a=n2_x, b=3)
//
// Recording works on a clone of the graph so live caches are never touched.
type ScriptRecordingSink struct {
	lines []string
	work  *Graph
}

var _ ExecutionSink = (*ScriptRecordingSink)(nil)

// NewScriptRecordingSink creates an empty recorder.
func NewScriptRecordingSink() *ScriptRecordingSink {
	return &ScriptRecordingSink{}
}

// Workspace returns a clone of g. Only nodes of the most recent clone accept
// recorded outputs.
func (s *ScriptRecordingSink) Workspace(g *Graph) *Graph {
	s.work = g.Clone()
	return s.work
}

// Commits reports whether n belongs to the recorder's workspace. Nodes of a
// live graph keep their caches and stay stale.
func (s *ScriptRecordingSink) Commits(n *Node) bool {
	if s.work == nil || n == nil {
		return false
	}
	return s.work.index[n.id] == n
}

// Execute appends the line for n and returns one Expr per declared output.
func (s *ScriptRecordingSink) Execute(_ context.Context, n *Node, inputs map[string]any) (map[string]any, error) {
	args := make([]string, 0, len(n.inputs))
	for _, p := range n.inputs {
		if v, ok := inputs[p.Name]; ok {
			args = append(args, identifier(p.Name)+"="+formatValue(v))
		}
	}
	call := fmt.Sprintf("%s_%d(%s)", identifier(n.kind.Name()), n.id, strings.Join(args, ", "))

	outputs := make(map[string]any, len(n.outputs))
	names := make([]string, 0, len(n.outputs))
	for _, port := range n.outputs {
		name := fmt.Sprintf("n%d_%s", n.id, identifier(port))
		names = append(names, name)
		outputs[port] = Expr(name)
	}

	line := call
	if len(names) > 0 {
		line = strings.Join(names, ", ") + " = " + call
	}
	s.lines = append(s.lines, line)
	return outputs, nil
}

// Lines returns the recorded lines in execution order.
func (s *ScriptRecordingSink) Lines() []string {
	return append([]string(nil), s.lines...)
}

// Script returns the recorded lines joined by newlines.
func (s *ScriptRecordingSink) Script() string {
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

// Reset discards recorded lines.
func (s *ScriptRecordingSink) Reset() {
	s.lines = s.lines[:0]
}

func identifier(name string) string {
	if name == "" {
		return "_"
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case Expr:
		return string(val)
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%#v", val)
	}
}
