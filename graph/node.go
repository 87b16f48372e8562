package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// NodeEntry is one output of a node: the data edges of the graph are
// (node, output index) pairs.
type NodeEntry struct {
	Node  *Node
	Index int
}

// Node is one operation in the computation graph.
//
// A node is built by Factory.MakeNode and treated as immutable once
// published into the graph: input edges share ownership of their producing
// nodes, while control dependencies are ordering-only edges and are never
// traversed for lifetime or data flow.
type Node struct {
	// Op is the operator this node executes.
	Op *Op
	// Name is the display name, used in diagnostics and derived names.
	Name string
	// Inputs are the data edges, in operator argument order.
	Inputs []NodeEntry
	// Attrs is the string-keyed attribute dictionary.
	Attrs *AttrDict
	// Parsed is the operator-specific parsed form of Attrs, produced by
	// Op.AttrParser at construction.
	Parsed any

	controlDeps []*Node
}

// NumInputs returns the number of data inputs.
func (n *Node) NumInputs() int { return len(n.Inputs) }

// NumOutputs returns the operator's declared output count for this node.
func (n *Node) NumOutputs() int { return n.Op.OutputCount(n) }

// ControlDeps returns the nodes this node must be scheduled no earlier than.
func (n *Node) ControlDeps() []*Node { return n.controlDeps }

// AttrDict is a string-keyed attribute dictionary that remembers insertion
// order. Diagnostics render every key/value pair in that order, so plain Go
// maps cannot back it.
type AttrDict struct {
	keys   []string
	values map[string]string
}

// NewAttrDict returns an empty attribute dictionary.
func NewAttrDict() *AttrDict {
	return &AttrDict{values: make(map[string]string)}
}

// Set records the value for key, keeping the key's original position when
// overwriting. It returns the dictionary to allow chaining.
func (d *AttrDict) Set(key, value string) *AttrDict {
	if _, found := d.values[key]; !found {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
	return d
}

// Get returns the value for key and whether it is present.
func (d *AttrDict) Get(key string) (value string, found bool) {
	value, found = d.values[key]
	return
}

// Len returns the number of entries.
func (d *AttrDict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *AttrDict) Keys() []string { return xslices.Copy(d.keys) }

// Clone returns a copy sharing no storage with d.
func (d *AttrDict) Clone() *AttrDict {
	clone := NewAttrDict()
	for _, key := range d.keys {
		clone.Set(key, d.values[key])
	}
	return clone
}

// String renders the dictionary as `k="v", k2="v2"` in insertion order.
func (d *AttrDict) String() string {
	var b strings.Builder
	for i, key := range d.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%q", key, d.values[key])
	}
	return b.String()
}
