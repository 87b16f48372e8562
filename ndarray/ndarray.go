// Package ndarray provides the in-memory tensor container used by the
// opgraph runtime: a dense buffer plus the metadata for the supported sparse
// storage formats, and the conversions between them.
//
// Only the storage layouts and conversions live here; kernel numerics belong
// to the execution engine.
package ndarray

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/gomlx/opgraph/dtypes"
	"github.com/gomlx/opgraph/shapes"
	"github.com/x448/float16"
)

// StorageType tags the physical layout of a tensor's data.
//
// Unknown (-1) follows the same sentinel convention as dtypes.Unknown and is
// assigned through the same unification rule (see the infer package).
type StorageType int32

const (
	// DefaultStorage is a plain dense row-major buffer.
	DefaultStorage StorageType = iota
	// RowSparseStorage keeps only the rows that contain non-zeros, as a
	// (sorted) list of row indices plus a dense block of those rows.
	RowSparseStorage
	// CSRStorage is compressed-sparse-row: only valid for 2D tensors.
	CSRStorage

	// UnknownStorage marks a storage type not yet determined by inference.
	UnknownStorage StorageType = -1
)

// IsNone reports whether st is the UnknownStorage sentinel.
func (st StorageType) IsNone() bool { return st == UnknownStorage }

// String returns the canonical name of the storage type, or "unknown" for
// any unrecognized tag. These names appear verbatim in inference diagnostics.
func (st StorageType) String() string {
	switch st {
	case DefaultStorage:
		return "default"
	case RowSparseStorage:
		return "row_sparse"
	case CSRStorage:
		return "csr"
	}
	return "unknown"
}

// NDArray is a tensor with one of the supported storage layouts.
//
// For DefaultStorage, data holds shape.Size() elements in row-major order.
// For RowSparseStorage, indices holds the row ids with non-zero content and
// data holds len(indices) dense rows. For CSRStorage, indptr has one entry
// per row plus one, indices holds column ids and data the non-zero values.
type NDArray struct {
	stype StorageType
	dtype dtypes.DType
	shape shapes.Shape

	data    any     // typed slice, see the data helpers
	indices []int64 // CSR column ids, or RowSparse row ids
	indptr  []int64 // CSR only, len = rows+1
}

// Zeros returns a dense NDArray of the given shape and dtype, zero filled.
func Zeros(shape shapes.Shape, dtype dtypes.DType) *NDArray {
	return &NDArray{
		stype: DefaultStorage,
		dtype: dtype,
		shape: shape.Clone(),
		data:  newData(dtype, shape.Size()),
	}
}

// FromFlat returns a dense NDArray wrapping the given flat values, whose
// dtype is derived from the slice element type. The values are not copied.
func FromFlat(shape shapes.Shape, values any) *NDArray {
	dtype := dtypeOfData(values)
	if n := dataLen(values); n != shape.Size() {
		exceptions.Panicf("ndarray.FromFlat: shape %s needs %d values, got %d", shape, shape.Size(), n)
	}
	return &NDArray{
		stype: DefaultStorage,
		dtype: dtype,
		shape: shape.Clone(),
		data:  values,
	}
}

// EmptySparse returns an NDArray of the given sparse storage type with no
// rows/values populated yet. It is the usual destination for a dense→sparse
// conversion.
func EmptySparse(stype StorageType, shape shapes.Shape, dtype dtypes.DType) *NDArray {
	switch stype {
	case RowSparseStorage:
		// ok
	case CSRStorage:
		if shape.NDim() != 2 {
			exceptions.Panicf("ndarray.EmptySparse: CSR storage requires a 2D shape, got %s", shape)
		}
	default:
		exceptions.Panicf("ndarray.EmptySparse: %s is not a sparse storage type", stype)
	}
	return &NDArray{
		stype: stype,
		dtype: dtype,
		shape: shape.Clone(),
		data:  newData(dtype, 0),
	}
}

// MakeRowSparse builds a RowSparse NDArray from the given row ids and the
// dense block of those rows (len(rowIDs) rows, row-major).
func MakeRowSparse(shape shapes.Shape, rowIDs []int64, values any) *NDArray {
	dtype := dtypeOfData(values)
	rowSize := rowSizeOf(shape)
	if dataLen(values) != len(rowIDs)*rowSize {
		exceptions.Panicf("ndarray.MakeRowSparse: %d rows of %d elements need %d values, got %d",
			len(rowIDs), rowSize, len(rowIDs)*rowSize, dataLen(values))
	}
	return &NDArray{
		stype:   RowSparseStorage,
		dtype:   dtype,
		shape:   shape.Clone(),
		data:    values,
		indices: xslices.Copy(rowIDs),
	}
}

// MakeCSR builds a CSR NDArray from the standard indptr/indices/values
// triplet. The shape must be 2D.
func MakeCSR(shape shapes.Shape, indptr, colIDs []int64, values any) *NDArray {
	dtype := dtypeOfData(values)
	if shape.NDim() != 2 {
		exceptions.Panicf("ndarray.MakeCSR: CSR storage requires a 2D shape, got %s", shape)
	}
	if len(indptr) != shape[0]+1 {
		exceptions.Panicf("ndarray.MakeCSR: indptr must have %d entries, got %d", shape[0]+1, len(indptr))
	}
	if len(colIDs) != dataLen(values) {
		exceptions.Panicf("ndarray.MakeCSR: %d column ids for %d values", len(colIDs), dataLen(values))
	}
	return &NDArray{
		stype:   CSRStorage,
		dtype:   dtype,
		shape:   shape.Clone(),
		data:    values,
		indices: xslices.Copy(colIDs),
		indptr:  xslices.Copy(indptr),
	}
}

// StorageType returns the physical layout tag.
func (a *NDArray) StorageType() StorageType { return a.stype }

// DType returns the element type.
func (a *NDArray) DType() dtypes.DType { return a.dtype }

// Shape returns the logical (dense) shape.
func (a *NDArray) Shape() shapes.Shape { return a.shape.Clone() }

// IsDense reports whether the array uses DefaultStorage.
func (a *NDArray) IsDense() bool { return a.stype == DefaultStorage }

// StorageShape returns the physically allocated shape: the dense shape for
// DefaultStorage, the shape of the populated-rows block for RowSparse, and
// the flat non-zeros count for CSR.
func (a *NDArray) StorageShape() shapes.Shape {
	switch a.stype {
	case RowSparseStorage:
		storage := a.shape.Clone()
		storage[0] = len(a.indices)
		return storage
	case CSRStorage:
		return shapes.Make(dataLen(a.data))
	}
	return a.shape.Clone()
}

// Indices returns the row ids (RowSparse) or column ids (CSR).
func (a *NDArray) Indices() []int64 { return a.indices }

// IndPtr returns the CSR row-pointer array.
func (a *NDArray) IndPtr() []int64 { return a.indptr }

// Data returns the underlying typed value slice: the full dense buffer for
// DefaultStorage, or the non-zero block for the sparse layouts.
func (a *NDArray) Data() any { return a.data }

// Float32s returns the value buffer as []float32.
// It panics if the dtype differs.
func (a *NDArray) Float32s() []float32 {
	v, ok := a.data.([]float32)
	if !ok {
		exceptions.Panicf("NDArray holds %s values, not float32", a.dtype)
	}
	return v
}

// Float64s returns the value buffer as []float64.
// It panics if the dtype differs.
func (a *NDArray) Float64s() []float64 {
	v, ok := a.data.([]float64)
	if !ok {
		exceptions.Panicf("NDArray holds %s values, not float64", a.dtype)
	}
	return v
}

// Int32s returns the value buffer as []int32.
// It panics if the dtype differs.
func (a *NDArray) Int32s() []int32 {
	v, ok := a.data.([]int32)
	if !ok {
		exceptions.Panicf("NDArray holds %s values, not int32", a.dtype)
	}
	return v
}

// Uint8s returns the value buffer as []uint8.
// It panics if the dtype differs.
func (a *NDArray) Uint8s() []uint8 {
	v, ok := a.data.([]uint8)
	if !ok {
		exceptions.Panicf("NDArray holds %s values, not uint8", a.dtype)
	}
	return v
}

// Float16s returns the value buffer as []float16.Float16.
// It panics if the dtype differs.
func (a *NDArray) Float16s() []float16.Float16 {
	v, ok := a.data.([]float16.Float16)
	if !ok {
		exceptions.Panicf("NDArray holds %s values, not float16", a.dtype)
	}
	return v
}

// rowSizeOf returns the number of elements in one row (all trailing axes).
func rowSizeOf(shape shapes.Shape) int {
	if shape.NDim() == 0 {
		exceptions.Panicf("sparse storage requires a known rank, got shape %s", shape)
	}
	size := 1
	for _, dim := range shape[1:] {
		size *= dim
	}
	return size
}

// CheckAllRowsPresent verifies that a RowSparse array has every logical row
// populated, a precondition of kernels that index rows positionally. It is a
// fatal check: failing it means the caller handed over data it must not.
func CheckAllRowsPresent(rsp *NDArray, funcName, paramName string) {
	if rsp.stype != RowSparseStorage {
		exceptions.Panicf("%s: %s must use row_sparse storage, got %s", funcName, paramName, rsp.stype)
	}
	if rsp.StorageShape()[0] != rsp.shape[0] {
		exceptions.Panicf("%s for RowSparse %s is only implemented for RowSparse %s with all rows containing non-zeros. "+
			"Expects %s.values.shape[0] (%d) == %s.shape[0] (%d).",
			funcName, paramName, paramName, paramName, rsp.StorageShape()[0], paramName, rsp.shape[0])
	}
}
