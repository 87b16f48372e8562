// Package dispatch runs dense-only compute kernels over operands that may
// use sparse storage, by staging conversions to and from dense buffers
// around the kernel call. It is the fallback path: a storage-aware kernel
// variant, when one exists, is always preferred.
package dispatch

import (
	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// OpReq tells a kernel how to write each output.
type OpReq int

const (
	// NullOp: do not write this output at all.
	NullOp OpReq = iota
	// WriteTo: overwrite the output buffer.
	WriteTo
	// WriteInplace: overwrite, and the output aliases one of the inputs.
	WriteInplace
	// AddTo: accumulate into the output buffer.
	AddTo
)

// String returns the request name.
func (r OpReq) String() string {
	switch r {
	case NullOp:
		return "null"
	case WriteTo:
		return "write_to"
	case WriteInplace:
		return "write_inplace"
	case AddTo:
		return "add_to"
	}
	return "unknown"
}

// Assign applies expr to out according to the write request, elementwise
// over dense buffers. The OpReq enum is closed: an unrecognized tag panics.
func Assign[T constraints.Integer | constraints.Float](out []T, req OpReq, expr []T) {
	switch req {
	case NullOp:
	case WriteTo, WriteInplace:
		copy(out, expr)
	case AddTo:
		for i, v := range expr {
			out[i] += v
		}
	default:
		exceptions.Panicf("not reached: invalid write request %d", int(req))
	}
}
