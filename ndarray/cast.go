package ndarray

import (
	"github.com/gomlx/exceptions"
)

// CastStorage converts src into dst's storage layout, overwriting dst's
// contents. Shapes and dtypes must match exactly; this is a layout
// conversion, never a cast of the element values.
//
// Sparse→sparse conversions go through a dense intermediate: they only
// happen on the fallback path, which already pays for a full densify pass.
func CastStorage(dst, src *NDArray) {
	if !dst.shape.Equal(src.shape) {
		exceptions.Panicf("CastStorage: shape mismatch, dst=%s src=%s", dst.shape, src.shape)
	}
	if dst.dtype != src.dtype {
		exceptions.Panicf("CastStorage: element type mismatch, dst=%s src=%s", dst.dtype, src.dtype)
	}
	switch {
	case src.stype == DefaultStorage && dst.stype == DefaultStorage:
		copyRange(dst.data, 0, src.data, 0, dataLen(src.data))
	case src.stype == DefaultStorage && dst.stype == RowSparseStorage:
		denseToRowSparse(dst, src)
	case src.stype == DefaultStorage && dst.stype == CSRStorage:
		denseToCSR(dst, src)
	case src.stype == RowSparseStorage && dst.stype == DefaultStorage:
		rowSparseToDense(dst, src)
	case src.stype == CSRStorage && dst.stype == DefaultStorage:
		csrToDense(dst, src)
	default:
		tmp := Zeros(src.shape, src.dtype)
		CastStorage(tmp, src)
		CastStorage(dst, tmp)
	}
}

// ToDefault returns a dense view of the array: the array itself when it is
// already dense, otherwise a freshly converted dense copy.
func ToDefault(src *NDArray) *NDArray {
	if src.IsDense() {
		return src
	}
	dst := Zeros(src.shape, src.dtype)
	CastStorage(dst, src)
	return dst
}

func rowSparseToDense(dst, src *NDArray) {
	rowSize := rowSizeOf(src.shape)
	zeroRange(dst.data, 0, dataLen(dst.data))
	for k, row := range src.indices {
		copyRange(dst.data, int(row)*rowSize, src.data, k*rowSize, rowSize)
	}
}

func denseToRowSparse(dst, src *NDArray) {
	rowSize := rowSizeOf(src.shape)
	rows := src.shape[0]
	var rowIDs []int64
	for r := 0; r < rows; r++ {
		if rangeHasNonZero(src.data, r*rowSize, (r+1)*rowSize) {
			rowIDs = append(rowIDs, int64(r))
		}
	}
	values := newData(src.dtype, len(rowIDs)*rowSize)
	for k, row := range rowIDs {
		copyRange(values, k*rowSize, src.data, int(row)*rowSize, rowSize)
	}
	dst.indices = rowIDs
	dst.indptr = nil
	dst.data = values
}

func csrToDense(dst, src *NDArray) {
	cols := src.shape[1]
	zeroRange(dst.data, 0, dataLen(dst.data))
	for r := 0; r < src.shape[0]; r++ {
		for j := src.indptr[r]; j < src.indptr[r+1]; j++ {
			copyRange(dst.data, r*cols+int(src.indices[j]), src.data, int(j), 1)
		}
	}
}

func denseToCSR(dst, src *NDArray) {
	if src.shape.NDim() != 2 {
		exceptions.Panicf("CastStorage: CSR storage requires a 2D shape, got %s", src.shape)
	}
	rows, cols := src.shape[0], src.shape[1]
	indptr := make([]int64, rows+1)
	var colIDs []int64
	var nonZeros []int // flat offsets into src.data
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !isZeroAt(src.data, r*cols+c) {
				colIDs = append(colIDs, int64(c))
				nonZeros = append(nonZeros, r*cols+c)
			}
		}
		indptr[r+1] = int64(len(colIDs))
	}
	values := newData(src.dtype, len(nonZeros))
	for k, off := range nonZeros {
		copyRange(values, k, src.data, off, 1)
	}
	dst.indptr = indptr
	dst.indices = colIDs
	dst.data = values
}
