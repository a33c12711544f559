package graph

import "context"

// Port is a named input slot. Inputs are required unless Optional is set.
type Port struct {
	Name     string
	Optional bool
}

// Required builds required input ports from names.
func Required(names ...string) []Port {
	ports := make([]Port, len(names))
	for i, name := range names {
		ports[i] = Port{Name: name}
	}
	return ports
}

// Optional builds an optional input port.
func Optional(name string) Port {
	return Port{Name: name, Optional: true}
}

// NodeFunc is the body of a node. It receives the node's current input values
// keyed by port name and returns output values keyed by port name.
type NodeFunc func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Kind describes what a node computes: its fixed port schema and its body.
// Kinds are supplied by the embedding application.
type Kind interface {
	// Name identifies the kind, e.g. "add" or "load_csv".
	Name() string

	// Inputs returns the ordered input ports.
	Inputs() []Port

	// Outputs returns the ordered output port names.
	Outputs() []string

	// Execute runs the body.
	Execute(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

type funcKind struct {
	name    string
	inputs  []Port
	outputs []string
	fn      NodeFunc
}

// NewKind creates a Kind from a port schema and a function body.
func NewKind(name string, inputs []Port, outputs []string, fn NodeFunc) Kind {
	return &funcKind{
		name:    name,
		inputs:  append([]Port(nil), inputs...),
		outputs: append([]string(nil), outputs...),
		fn:      fn,
	}
}

func (k *funcKind) Name() string { return k.name }

func (k *funcKind) Inputs() []Port { return k.inputs }

func (k *funcKind) Outputs() []string { return k.outputs }

func (k *funcKind) Execute(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	if k.fn == nil {
		return map[string]any{}, nil
	}
	return k.fn(ctx, inputs)
}
