// Package report renders the state of every node in a graph for humans:
// as Markdown, as sanitized HTML, or as a styled terminal table.
package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/smallnest/nodegraphgo/graph"
)

// maxValueWidth bounds how much of an output value a cell shows.
const maxValueWidth = 40

// Row describes one node.
type Row struct {
	ID      graph.NodeID
	Kind    string
	State   graph.NodeState
	Missing []string
	Outputs map[string]any
}

// Report is a snapshot of a graph's node states.
type Report struct {
	GraphID string
	Rows    []Row
}

// Build snapshots g. Rows follow the graph's insertion order.
func Build(g *graph.Graph) *Report {
	r := &Report{GraphID: g.ID()}
	for _, n := range g.Nodes() {
		r.Rows = append(r.Rows, Row{
			ID:      n.ID(),
			Kind:    n.Kind().Name(),
			State:   n.State(),
			Missing: n.MissingInputs(),
			Outputs: n.OutputValues(),
		})
	}
	return r
}

// Count returns how many rows are in state s.
func (r *Report) Count(s graph.NodeState) int {
	count := 0
	for _, row := range r.Rows {
		if row.State == s {
			count++
		}
	}
	return count
}

// Summary is a one-line digest such as "3 nodes: 2 fresh, 0 runnable, 1 stale".
func (r *Report) Summary() string {
	return fmt.Sprintf("%d nodes: %d fresh, %d runnable, %d stale",
		len(r.Rows), r.Count(graph.StateFresh), r.Count(graph.StateRunnable), r.Count(graph.StateStale))
}

func (row Row) missingCell() string {
	return strings.Join(row.Missing, ", ")
}

func (row Row) outputsCell() string {
	parts := make([]string, 0, len(row.Outputs))
	for _, k := range slices.Sorted(maps.Keys(row.Outputs)) {
		parts = append(parts, k+"="+truncate(fmt.Sprint(row.Outputs[k])))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > maxValueWidth {
		return string(r[:maxValueWidth-1]) + "…"
	}
	return s
}

func (row Row) cells() []string {
	return []string{row.ID.String(), row.Kind, row.State.String(), row.missingCell(), row.outputsCell()}
}

var headers = []string{"ID", "Kind", "State", "Missing inputs", "Outputs"}
