package dispatch

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/opgraph/dtypes"
	"github.com/gomlx/opgraph/graph"
	"github.com/gomlx/opgraph/ndarray"
	"github.com/gomlx/opgraph/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(t *testing.T, opName string) *graph.Node {
	t.Helper()
	reg := graph.NewRegistry()
	reg.Register(&graph.Op{Name: opName})
	return graph.NewFactory(reg).MakeNode(opName, opName+"0", nil, nil, nil)
}

// addCompute is a dense-only elementwise addition kernel.
func addCompute(_ *graph.Node, _ *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray) {
	sum := make([]float32, len(outputs[0].Float32s()))
	for i := range sum {
		sum[i] = inputs[0].Float32s()[i] + inputs[1].Float32s()[i]
	}
	Assign(outputs[0].Float32s(), reqs[0], sum)
}

// sqrtCompute is a dense-only elementwise square root kernel.
func sqrtCompute(_ *graph.Node, _ *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray) {
	res := make([]float32, len(outputs[0].Float32s()))
	for i, v := range inputs[0].Float32s() {
		res[i] = math32.Sqrt(v)
	}
	Assign(outputs[0].Float32s(), reqs[0], res)
}

func TestAssign(t *testing.T) {
	out := []float32{1, 2}
	Assign(out, NullOp, []float32{10, 10})
	assert.Equal(t, []float32{1, 2}, out)
	Assign(out, WriteTo, []float32{10, 20})
	assert.Equal(t, []float32{10, 20}, out)
	Assign(out, WriteInplace, []float32{5, 6})
	assert.Equal(t, []float32{5, 6}, out)
	Assign(out, AddTo, []float32{1, 1})
	assert.Equal(t, []float32{6, 7}, out)

	err := exceptions.TryCatch[error](func() {
		Assign(out, OpReq(99), []float32{0, 0})
	})
	require.ErrorContains(t, err, "not reached")
}

func TestFallbackAllDensePassthrough(t *testing.T) {
	n := testNode(t, "elemwise_add")
	shape := shapes.Make(2, 2)
	a := ndarray.FromFlat(shape, []float32{1, 2, 3, 4})
	b := ndarray.FromFlat(shape, []float32{10, 20, 30, 40})
	out := ndarray.Zeros(shape, dtypes.Float32)

	// With all-dense operands no temporary buffers may be staged: the
	// kernel must see the caller's arrays.
	FallbackCompute(func(kn *graph.Node, kctx *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray) {
		assert.Same(t, a, inputs[0])
		assert.Same(t, b, inputs[1])
		assert.Same(t, out, outputs[0])
		addCompute(kn, kctx, inputs, reqs, outputs)
	}, n, &Context{Device: "cpu"},
		[]*ndarray.NDArray{a, b}, []OpReq{WriteTo}, []*ndarray.NDArray{out}, "elemwise_add")

	assert.Equal(t, []float32{11, 22, 33, 44}, out.Float32s())
}

func TestFallbackSparseInput(t *testing.T) {
	n := testNode(t, "elemwise_add")
	shape := shapes.Make(3, 2)
	sparse := ndarray.MakeRowSparse(shape, []int64{1}, []float32{5, 6})
	dense := ndarray.FromFlat(shape, []float32{1, 1, 1, 1, 1, 1})
	out := ndarray.Zeros(shape, dtypes.Float32)

	FallbackCompute(addCompute, n, &Context{Device: "cpu"},
		[]*ndarray.NDArray{sparse, dense}, []OpReq{WriteTo}, []*ndarray.NDArray{out}, "elemwise_add")

	assert.Equal(t, []float32{1, 1, 6, 7, 1, 1}, out.Float32s())
	// The original sparse input was not mutated by the staging.
	assert.Equal(t, []int64{1}, sparse.Indices())
	assert.Equal(t, []float32{5, 6}, sparse.Float32s())
}

func TestFallbackSparseOutput(t *testing.T) {
	n := testNode(t, "sqrt")
	shape := shapes.Make(2, 2)
	in := ndarray.FromFlat(shape, []float32{4, 9, 0, 0})
	out := ndarray.EmptySparse(ndarray.RowSparseStorage, shape, dtypes.Float32)

	FallbackCompute(sqrtCompute, n, &Context{Device: "cpu"},
		[]*ndarray.NDArray{in}, []OpReq{WriteTo}, []*ndarray.NDArray{out}, "sqrt")

	assert.Equal(t, []int64{0}, out.Indices())
	assert.Equal(t, []float32{2, 3}, out.Float32s())
}

func TestFallbackMutateCopyBack(t *testing.T) {
	n := testNode(t, "sqrt_inplace")
	shape := shapes.Make(3, 1)
	sparse := ndarray.MakeRowSparse(shape, []int64{0, 2}, []float32{16, 4})
	out := ndarray.Zeros(shape, dtypes.Float32)

	// The kernel mutates its (staged) first input in place; the mutation
	// must land on the original sparse array, not on the temporary.
	FallbackCompute(func(kn *graph.Node, kctx *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray) {
		assert.NotSame(t, sparse, inputs[0], "sparse input must be staged to a dense temporary")
		for i, v := range inputs[0].Float32s() {
			inputs[0].Float32s()[i] = math32.Sqrt(v)
		}
		Assign(outputs[0].Float32s(), reqs[0], inputs[0].Float32s())
	}, n, &Context{Device: "cpu"},
		[]*ndarray.NDArray{sparse}, []OpReq{WriteTo}, []*ndarray.NDArray{out}, "sqrt_inplace", 0)

	assert.Equal(t, []float32{4, 0, 2}, out.Float32s())
	assert.Equal(t, []int64{0, 2}, sparse.Indices())
	assert.Equal(t, []float32{4, 2}, sparse.Float32s())
}

func TestFallbackMutateUnstagedInput(t *testing.T) {
	n := testNode(t, "noop")
	shape := shapes.Make(2)
	dense := ndarray.FromFlat(shape, []float32{1, 2})
	out := ndarray.Zeros(shape, dtypes.Float32)

	// A dense input listed in mutateIdx needs no copy-back: the kernel
	// already mutated the original.
	FallbackCompute(func(_ *graph.Node, _ *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray) {
		assert.Same(t, dense, inputs[0])
		inputs[0].Float32s()[0] = 7
	}, n, &Context{Device: "cpu"},
		[]*ndarray.NDArray{dense}, []OpReq{NullOp}, []*ndarray.NDArray{out}, "noop", 0)

	assert.Equal(t, []float32{7, 2}, dense.Float32s())
}
