// Package graph holds the computation graph representation used by the
// opgraph runtime and the factory that synthesizes new nodes -- in
// particular the backward (gradient) nodes derived from forward nodes.
package graph

import (
	"github.com/gomlx/exceptions"
)

// Op describes a registered operator. It is the engine-facing slice of the
// operator registry: executable kernels live with the execution engine.
type Op struct {
	// Name is the unique registered operator name.
	Name string

	// NumOutputs is the declared output count. Zero means one output.
	NumOutputs int

	// NumOutputsFn, when set, overrides NumOutputs and may consult the
	// node's (parsed) attributes.
	NumOutputsFn func(n *Node) int

	// AttrParser, when set, validates and normalizes the node's attribute
	// dictionary into n.Parsed. It runs once, at node construction.
	AttrParser func(n *Node) error
}

// OutputCount returns the number of outputs the operator declares for the
// given node.
func (op *Op) OutputCount(n *Node) int {
	if op.NumOutputsFn != nil {
		return op.NumOutputsFn(n)
	}
	if op.NumOutputs > 0 {
		return op.NumOutputs
	}
	return 1
}

// Registry maps operator names to their Op descriptors. It is passed
// explicitly to the Factory rather than being ambient global state, so
// engines can run against synthetic registries in tests.
type Registry struct {
	ops map[string]*Op
}

// NewRegistry returns an empty operator registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Op)}
}

// Register adds op to the registry and returns it. Registering the same name
// twice is a programming error.
func (r *Registry) Register(op *Op) *Op {
	if op.Name == "" {
		exceptions.Panicf("cannot register an operator with an empty name")
	}
	if _, found := r.ops[op.Name]; found {
		exceptions.Panicf("operator %q registered twice", op.Name)
	}
	r.ops[op.Name] = op
	return op
}

// Get returns the operator with the given name. Operator names are valid by
// construction everywhere the engine is used, so a missing name is a
// programming error and panics.
func (r *Registry) Get(name string) *Op {
	op := r.ops[name]
	if op == nil {
		exceptions.Panicf("operator %q is not registered", name)
	}
	return op
}

// Find returns the operator with the given name, or nil if not registered.
func (r *Registry) Find(name string) *Op {
	return r.ops[name]
}
