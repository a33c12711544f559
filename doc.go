// NodeGraph Go - Incremental Dataflow Execution for Node Canvases
//
// NodeGraph Go is the engine under a node-based visual programming canvas.
// Users wire nodes together with directed links between named ports; the
// engine tracks which nodes are stale, runs exactly the nodes that are ready
// in wavefront order, and survives structural edits made mid-session,
// including cyclic topologies.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/nodegraphgo
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/nodegraphgo/graph"
//	)
//
//	func main() {
//		g := graph.NewGraph()
//
//		p := g.AddNode(graph.NewKind("number", nil, []string{"x"},
//			func(ctx context.Context, _ map[string]any) (map[string]any, error) {
//				return map[string]any{"x": 21}, nil
//			}))
//		q := g.AddNode(graph.NewKind("double", graph.Required("x"), []string{"y"},
//			func(ctx context.Context, in map[string]any) (map[string]any, error) {
//				return map[string]any{"y": in["x"].(int) * 2}, nil
//			}))
//		_ = g.AddLink(p, "x", q, "x")
//
//		residue, err := g.Run(context.Background(), nil)
//		fmt.Println(residue, err)
//	}
//
// # Key Features
//
//   - Stale tracking: every link edit cascades staleness downstream
//   - Cycle safety: cascades visit each node once per pass
//   - Wavefront scheduling with the unrunnable residue reported, not raised
//   - Script recording: plan a run as text without touching live caches
//   - Listeners, tracing spans and Prometheus metrics for node activity
//   - Run journal with memory, file, Redis, SQLite and PostgreSQL backends
//   - Mermaid/DOT diagrams and Markdown/HTML/terminal status reports
//
// # Package Structure
//
// graph/
// Nodes, kinds, links, the invalidation cascade and the scheduler.
//
// log/
// Printf-style logging interface with a kataras/golog implementation.
//
// store/
// RunRecord and the RunStore interface, with one sub-package per backend:
// memory, file, redis, sqlite and postgres.
//
// metrics/
// A graph listener that records Prometheus counters and histograms.
//
// report/
// Node status tables rendered as Markdown, sanitized HTML or lipgloss output.
//
// config/
// YAML configuration for the log level and the journal backend.
//
// # Examples
//
// See the examples/ directory:
//
//   - basic: link, run, unlink and relink two nodes
//   - script_export: record a plan and draw the graph
//   - cyclic: deadlocked and seeded cycles
//   - journal: config-driven journal plus a status report
//   - metrics_server: expose node metrics over HTTP
package nodegraphgo // import "github.com/smallnest/nodegraphgo"
