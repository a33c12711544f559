package graph

import (
	"fmt"
	"strings"
)

// Exporter renders a graph's topology and node states as diagrams.
type Exporter struct {
	graph *Graph
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter(graph *Graph) *Exporter {
	return &Exporter{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

func nodeLabel(n *Node) string {
	return fmt.Sprintf("%s #%d", n.kind.Name(), n.id)
}

// DrawMermaid generates a left-to-right Mermaid flowchart.
func (e *Exporter) DrawMermaid() string {
	return e.DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
}

// DrawMermaidWithOptions generates a Mermaid flowchart. Links are labelled
// with their ports; stale nodes are filled red and runnable ones yellow.
func (e *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "LR"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	for _, n := range e.graph.nodes {
		sb.WriteString(fmt.Sprintf("    n%d[\"%s\"]\n", n.id, nodeLabel(n)))
	}
	for _, l := range e.graph.Links() {
		sb.WriteString(fmt.Sprintf("    n%d -- \"%s → %s\" --> n%d\n", l.Source, l.Output, l.Input, l.Target))
	}
	for _, n := range e.graph.nodes {
		switch n.State() {
		case StateStale:
			sb.WriteString(fmt.Sprintf("    style n%d fill:#FFB6C1\n", n.id))
		case StateRunnable:
			sb.WriteString(fmt.Sprintf("    style n%d fill:#FFFFE0\n", n.id))
		}
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (e *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box];\n")

	for _, n := range e.graph.nodes {
		attrs := fmt.Sprintf("label=\"%s\"", nodeLabel(n))
		switch n.State() {
		case StateStale:
			attrs += ", style=filled, fillcolor=pink"
		case StateRunnable:
			attrs += ", style=filled, fillcolor=lightyellow"
		}
		sb.WriteString(fmt.Sprintf("    n%d [%s];\n", n.id, attrs))
	}
	for _, l := range e.graph.Links() {
		sb.WriteString(fmt.Sprintf("    n%d -> n%d [label=\"%s → %s\"];\n", l.Source, l.Target, l.Output, l.Input))
	}

	sb.WriteString("}\n")
	return sb.String()
}
