package graph

import (
	"github.com/smallnest/nodegraphgo/log"
	"github.com/smallnest/nodegraphgo/store"
)

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger. Defaults to log.GetDefaultLogger().
func WithLogger(logger log.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithListener registers a node event listener.
func WithListener(listener NodeListener) Option {
	return func(g *Graph) {
		g.AddListener(listener)
	}
}

// WithTracer sets a tracer for run and node spans.
func WithTracer(tracer *Tracer) Option {
	return func(g *Graph) {
		g.tracer = tracer
	}
}

// WithJournal saves a store.RunRecord after every Run.
func WithJournal(journal store.RunStore) Option {
	return func(g *Graph) {
		g.journal = journal
	}
}

// WithGraphID overrides the generated graph id used in run records.
func WithGraphID(id string) Option {
	return func(g *Graph) {
		if id != "" {
			g.id = id
		}
	}
}
