package ndarray

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/opgraph/dtypes"
	"github.com/x448/float16"
)

// Helpers over the dtype-erased value buffers. Every buffer is one of
// []float32, []float64, []float16.Float16, []uint8 or []int32; anything else
// is a programming error and panics.

// newData allocates a zero-filled value buffer of n elements.
func newData(dtype dtypes.DType, n int) any {
	switch dtype {
	case dtypes.Float32:
		return make([]float32, n)
	case dtypes.Float64:
		return make([]float64, n)
	case dtypes.Float16:
		return make([]float16.Float16, n)
	case dtypes.Uint8:
		return make([]uint8, n)
	case dtypes.Int32:
		return make([]int32, n)
	}
	exceptions.Panicf("cannot allocate buffer for element type %s", dtype)
	return nil
}

// dtypeOfData returns the DType matching the buffer's element type.
func dtypeOfData(data any) dtypes.DType {
	switch data.(type) {
	case []float32:
		return dtypes.Float32
	case []float64:
		return dtypes.Float64
	case []float16.Float16:
		return dtypes.Float16
	case []uint8:
		return dtypes.Uint8
	case []int32:
		return dtypes.Int32
	}
	exceptions.Panicf("unsupported value buffer type %T", data)
	return dtypes.Unknown
}

// dataLen returns the number of elements in the buffer.
func dataLen(data any) int {
	switch v := data.(type) {
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []float16.Float16:
		return len(v)
	case []uint8:
		return len(v)
	case []int32:
		return len(v)
	}
	exceptions.Panicf("unsupported value buffer type %T", data)
	return 0
}

// copyRange copies n elements from src[srcOff:] into dst[dstOff:]. Both
// buffers must hold the same element type.
func copyRange(dst any, dstOff int, src any, srcOff, n int) {
	switch d := dst.(type) {
	case []float32:
		copy(d[dstOff:dstOff+n], src.([]float32)[srcOff:srcOff+n])
	case []float64:
		copy(d[dstOff:dstOff+n], src.([]float64)[srcOff:srcOff+n])
	case []float16.Float16:
		copy(d[dstOff:dstOff+n], src.([]float16.Float16)[srcOff:srcOff+n])
	case []uint8:
		copy(d[dstOff:dstOff+n], src.([]uint8)[srcOff:srcOff+n])
	case []int32:
		copy(d[dstOff:dstOff+n], src.([]int32)[srcOff:srcOff+n])
	default:
		exceptions.Panicf("unsupported value buffer type %T", dst)
	}
}

// zeroRange resets n elements of the buffer starting at off.
func zeroRange(data any, off, n int) {
	switch v := data.(type) {
	case []float32:
		clear(v[off : off+n])
	case []float64:
		clear(v[off : off+n])
	case []float16.Float16:
		clear(v[off : off+n])
	case []uint8:
		clear(v[off : off+n])
	case []int32:
		clear(v[off : off+n])
	default:
		exceptions.Panicf("unsupported value buffer type %T", data)
	}
}

// isZeroAt reports whether element i of the buffer is (numerically) zero.
// Float16 negative zero counts as zero; NaN does not.
func isZeroAt(data any, i int) bool {
	switch v := data.(type) {
	case []float32:
		return v[i] == 0
	case []float64:
		return v[i] == 0
	case []float16.Float16:
		return v[i].Float32() == 0
	case []uint8:
		return v[i] == 0
	case []int32:
		return v[i] == 0
	}
	exceptions.Panicf("unsupported value buffer type %T", data)
	return false
}

// rangeHasNonZero reports whether any element in [from, to) is non-zero.
func rangeHasNonZero(data any, from, to int) bool {
	for i := from; i < to; i++ {
		if !isZeroAt(data, i) {
			return true
		}
	}
	return false
}
