// Package shapes defines the (possibly partially known) shape of a tensor.
//
// A dimension of 0 means "unknown at that axis", and a shape with no
// dimensions at all means the rank itself is unknown. This makes 0 never a
// valid concrete dimension size: an intentionally empty tensor is
// indistinguishable from an unknown one. That overload is inherited from the
// runtime's inference protocol and is relied upon by the infer package.
package shapes

import (
	"fmt"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/xslices"
)

// Shape is an ordered sequence of dimension sizes. The nil (or empty) Shape
// is the fully unknown shape.
type Shape []int

// Make builds a Shape from the given dimensions.
func Make(dims ...int) Shape {
	return xslices.Copy(dims)
}

// NDim returns the number of dimensions, 0 if the rank is unknown.
func (s Shape) NDim() int { return len(s) }

// Size returns the product of all dimensions. It is 0 if any axis is
// unknown, and 1 for the rank-unknown shape (empty product).
func (s Shape) Size() int {
	size := 1
	for _, dim := range s {
		size *= dim
	}
	return size
}

// IsNone reports whether the shape is (fully or partially) unknown: either
// the rank is unknown or some axis is 0.
func (s Shape) IsNone() bool {
	return s.NDim() == 0 || s.Size() == 0
}

// IsScalar reports whether the shape is exactly (1).
func (s Shape) IsScalar() bool {
	return s.NDim() == 1 && s[0] == 1
}

// Clone returns a copy of the shape that shares no storage with s.
func (s Shape) Clone() Shape {
	return xslices.Copy(s)
}

// Equal reports whether s and other have the same rank and dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, dim := range s {
		if other[i] != dim {
			return false
		}
	}
	return true
}

// String formats the shape as "(2,3,4)". The rank-unknown shape formats as
// "()". This rendering is used verbatim in inference diagnostics.
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, dim := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", dim)
	}
	b.WriteByte(')')
	return b.String()
}
