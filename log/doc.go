// Package log provides the leveled, printf-style logging interface used across nodegraphgo.
//
// The graph engine, the run journal stores and the config loader all log through the
// Logger interface. The default implementation is GologLogger, a thin wrapper over
// github.com/kataras/golog; NoOpLogger discards everything.
//
// # Log Levels
//
//   - LogLevelDebug: link edits, invalidation cascades, value pushes
//   - LogLevelInfo: one summary line per run
//   - LogLevelWarn: runs that leave an unmet-dependency residue
//   - LogLevelError: node body failures
//   - LogLevelNone: disables all output
//
// # Example
//
//	glogger := golog.New()
//	glogger.SetPrefix("[canvas] ")
//
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
//	g := graph.NewGraph(graph.WithLogger(logger))
//
// Graphs created without WithLogger use the package-level logger, which can be
// replaced with SetDefaultLogger or SetLogLevel.
package log
