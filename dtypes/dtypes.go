// Package dtypes defines the element types carried by tensors in the opgraph
// runtime, along with the Unknown sentinel used during attribute inference.
//
// The numeric values of the known tags are part of the runtime contract with
// the kernels and must not be reordered.
package dtypes

import "github.com/pkg/errors"

// DType is the element type tag of a tensor.
//
// Unknown (-1) means the type has not yet been fixed by inference. A DType
// slot may be refined from Unknown to a known tag, but never overwritten with
// a different known tag -- see the infer package.
type DType int32

const (
	Float32 DType = iota
	Float64
	Float16
	Uint8
	Int32

	// Unknown marks an element type not yet determined by inference.
	Unknown DType = -1
)

// IsNone reports whether dt is the Unknown sentinel.
func (dt DType) IsNone() bool { return dt == Unknown }

// String returns the canonical name of the type, or "unknown" for any
// unrecognized tag. These names appear verbatim in inference diagnostics.
func (dt DType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	}
	return "unknown"
}

// Size returns the size in bytes of one element, or 0 for Unknown.
func (dt DType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	case Float16:
		return 2
	case Uint8:
		return 1
	}
	return 0
}

// FromString returns the DType with the given canonical name.
func FromString(name string) (DType, error) {
	for _, dt := range []DType{Float32, Float64, Float16, Uint8, Int32} {
		if dt.String() == name {
			return dt, nil
		}
	}
	return Unknown, errors.Errorf("unknown element type name %q", name)
}
