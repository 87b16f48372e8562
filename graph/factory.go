package graph

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// Names of the zero-producing operators the gradient short-circuit
// recognizes. Every registry that drives a gradient pass registers both.
const (
	// ZerosOp produces a zero-filled tensor of a given shape.
	ZerosOp = "_zeros"
	// ZerosLikeOp produces a zero-filled tensor shaped like its input.
	ZerosLikeOp = "zeros_like"
)

// Factory builds computation graph nodes against an injected operator
// registry.
type Factory struct {
	reg *Registry
}

// NewFactory returns a Factory that resolves operator names in reg.
func NewFactory(reg *Registry) *Factory {
	return &Factory{reg: reg}
}

// Registry returns the registry the factory resolves operators in.
func (f *Factory) Registry() *Registry { return f.reg }

// MakeNode creates a node running the named operator. inputs, attrs and fwd
// are all optional: fwd, when given, is appended as a control dependency,
// tying the new node's scheduling to it without a data edge.
//
// An unregistered opName is a programming error and panics. If the operator
// declares an attribute parser, it runs here; a parse failure panics with a
// *ParamError decorated with the operator name, the node name and the full
// attribute dictionary.
func (f *Factory) MakeNode(opName, name string, inputs []NodeEntry, attrs *AttrDict, fwd *Node) *Node {
	n := &Node{
		Op:    f.reg.Get(opName),
		Name:  name,
		Attrs: NewAttrDict(),
	}
	if attrs != nil {
		n.Attrs = attrs.Clone()
	}
	if inputs != nil {
		n.Inputs = xslices.Copy(inputs)
	}
	if fwd != nil {
		n.controlDeps = append(n.controlDeps, fwd)
	}
	if n.Op.AttrParser != nil {
		if err := n.Op.AttrParser(n); err != nil {
			panic(&ParamError{
				Op:   n.Op.Name,
				Node: n.Name,
				Dict: n.Attrs.Clone(),
				Err:  err,
			})
		}
	}
	return n
}

// outputsOf returns one entry per declared output of n, indexed 0..count-1.
func outputsOf(n *Node) []NodeEntry {
	return xslices.Map(xslices.Iota(0, n.NumOutputs()), func(i int) NodeEntry {
		return NodeEntry{Node: n, Index: i}
	})
}

// MakeGradNode creates the backward node for fwd, running the named backward
// operator over the given inputs. The node is named "<fwd.Name>_backward"
// and control-depends on fwd. It returns one entry per declared output.
func (f *Factory) MakeGradNode(opName string, fwd *Node, inputs []NodeEntry, attrs *AttrDict) []NodeEntry {
	p := f.MakeNode(opName, fwd.Name+"_backward", inputs, attrs, fwd)
	return outputsOf(p)
}

// MakeZeroGradNodes synthesizes, for each input of fwd, a zeros_like node
// over that input and returns their outputs in forward-input order. With a
// single input the node is named "<fwd.Name>_backward", otherwise
// "<fwd.Name>_in<i>_backward".
//
// Used when the backward pass is trivially short-circuited; ograds is
// accepted for signature parity with MakeNonlossGradNode but not consulted.
func (f *Factory) MakeZeroGradNodes(fwd *Node, ograds []NodeEntry) []NodeEntry {
	ret := make([]NodeEntry, 0, fwd.NumInputs())
	for i, input := range fwd.Inputs {
		var name string
		if fwd.NumInputs() == 1 {
			name = fwd.Name + "_backward"
		} else {
			name = fmt.Sprintf("%s_in%d_backward", fwd.Name, i)
		}
		p := f.MakeNode(ZerosLikeOp, name, []NodeEntry{input}, nil, fwd)
		ret = append(ret, NodeEntry{Node: p, Index: 0})
	}
	return ret
}

// GradAllZero reports whether every entry of ograds is produced by one of
// the zero-producing operators. An empty list is not all-zero: "no
// gradients" and "all-zero gradients" are different signals to the caller.
func (f *Factory) GradAllZero(ograds []NodeEntry) bool {
	if len(ograds) == 0 {
		return false
	}
	zeroOp := f.reg.Find(ZerosOp)
	zeroLikeOp := f.reg.Find(ZerosLikeOp)
	for _, grad := range ograds {
		if grad.Node == nil {
			return false
		}
		if grad.Node.Op != zeroOp && grad.Node.Op != zeroLikeOp {
			return false
		}
	}
	return true
}

// MakeNonlossGradNode creates the backward node for a forward node that does
// not contribute to the objective on its own: when every output gradient is
// zero, the input gradients are zero too, and the real backward node is
// short-circuited to MakeZeroGradNodes. This avoids building a node that
// constant folding would later erase; it is an optimization, not a
// correctness requirement.
//
// Otherwise one backward node is created whose inputs are ograds followed by
// inputs -- that ordering is a hard contract with the backward operator's
// implementation.
func (f *Factory) MakeNonlossGradNode(opName string, fwd *Node, ograds, inputs []NodeEntry, attrs *AttrDict) []NodeEntry {
	if f.GradAllZero(ograds) {
		return f.MakeZeroGradNodes(fwd, ograds)
	}
	p := f.MakeNode(opName, fwd.Name+"_backward", nil, attrs, fwd)
	p.Inputs = append(p.Inputs, ograds...)
	p.Inputs = append(p.Inputs, inputs...)
	return outputsOf(p)
}
