package graph

import (
	"context"
	"time"

	"github.com/smallnest/nodegraphgo/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStale indicates a node was invalidated by a cascade
	NodeEventStale NodeEvent = "stale"

	// NodeEventStart indicates a node is about to run
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node ran successfully and is fresh
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node body failed
	NodeEventError NodeEvent = "error"
)

// Event describes one node event.
type Event struct {
	// Type is the kind of event
	Type NodeEvent

	// Timestamp when the event occurred
	Timestamp time.Time

	// Node is the id of the node the event is about
	Node NodeID

	// Kind is the name of the node's kind
	Kind string

	// Outputs holds the fresh output values (complete events only)
	Outputs map[string]any

	// Error holds the failure (error events only)
	Error error

	// Duration is how long the node ran (complete and error events only)
	Duration time.Duration
}

// NodeListener defines the interface for node event listeners
type NodeListener interface {
	// OnNodeEvent is called synchronously from the goroutine driving the graph
	OnNodeEvent(ctx context.Context, ev Event)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, ev Event)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

func notifyListeners(ctx context.Context, logger log.Logger, listeners []NodeListener, ev Event) {
	for _, l := range listeners {
		notifyListener(ctx, logger, l, ev)
	}
}

func notifyListener(ctx context.Context, logger log.Logger, l NodeListener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("listener panicked on %s event for node %d: %v", ev.Type, ev.Node, r)
		}
	}()
	l.OnNodeEvent(ctx, ev)
}

// EventRecorder is a NodeListener that keeps every event it receives.
type EventRecorder struct {
	events []Event
}

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// OnNodeEvent appends ev.
func (r *EventRecorder) OnNodeEvent(_ context.Context, ev Event) {
	r.events = append(r.events, ev)
}

// Events returns the recorded events, optionally filtered by type.
func (r *EventRecorder) Events(types ...NodeEvent) []Event {
	if len(types) == 0 {
		return append([]Event(nil), r.events...)
	}
	var out []Event
	for _, ev := range r.events {
		for _, t := range types {
			if ev.Type == t {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

// Reset drops the recorded events.
func (r *EventRecorder) Reset() {
	r.events = nil
}
