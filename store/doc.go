// Package store persists run records produced by graph.Graph.Run.
//
// A RunRecord captures which nodes a run executed, which stale nodes were left
// unrunnable, the recorded script when the run used a ScriptRecordingSink, and
// the failure if a node body errored. Records are indexed by graph id so a
// canvas can show the execution history of one graph.
//
// Backends:
//   - memory: in-process map, the default for tests and short sessions
//   - file: one JSON document per record under a directory
//   - redis: JSON values plus a per-graph index set (github.com/redis/go-redis/v9)
//   - sqlite: a single table via github.com/mattn/go-sqlite3
//   - postgres: a single table via github.com/jackc/pgx/v5
//
// Node topology and node values are not persisted.
//
// # Example
//
//	journal := memory.NewMemoryRunStore()
//	g := graph.NewGraph(graph.WithJournal(journal))
//
//	// ... add nodes, links, run ...
//
//	runs, err := journal.List(ctx, g.ID())
package store
