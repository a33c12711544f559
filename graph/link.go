package graph

import (
	"cmp"
	"fmt"
)

// AnyPort is the wildcard accepted by RemoveLink and Predecessors in place of
// an omitted port name.
const AnyPort = ""

// Target is the receiving end of a link: a node and one of its input ports.
type Target struct {
	Node  NodeID
	Input string
}

// Link is a directed edge from an output port to an input port.
// Links are stored on the source node only.
type Link struct {
	Source NodeID
	Output string
	Target NodeID
	Input  string
}

func (l Link) String() string {
	return fmt.Sprintf("%d.%s -> %d.%s", l.Source, l.Output, l.Target, l.Input)
}

func compareTargets(a, b Target) int {
	if c := cmp.Compare(a.Node, b.Node); c != 0 {
		return c
	}
	return cmp.Compare(a.Input, b.Input)
}
