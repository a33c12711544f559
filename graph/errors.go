package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPort is returned when a link references a port missing from a node's schema.
	ErrUnknownPort = errors.New("unknown port")

	// ErrNodeNotFound is returned when an id does not name a node in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDanglingReference reports a link whose target no longer exists.
	// It can only surface through a bug in link bookkeeping.
	ErrDanglingReference = errors.New("dangling link reference")
)

// NodeExecutionError is returned by Run when a node body fails.
// The failed node stays stale.
type NodeExecutionError struct {
	// Node is the id of the failed node
	Node NodeID
	// Kind is the name of the node's kind
	Kind string
	// Err is the error returned (or panic raised) by the body
	Err error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %d (%s) failed: %v", e.Node, e.Kind, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

func unknownPort(id NodeID, direction, port string) error {
	return fmt.Errorf("%w: node %d has no %s port %q", ErrUnknownPort, id, direction, port)
}

func nodeNotFound(id NodeID) error {
	return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
}

func danglingLink(l Link) error {
	return fmt.Errorf("%w: %s", ErrDanglingReference, l)
}
