package dispatch

import (
	"github.com/gomlx/opgraph/graph"
	"github.com/gomlx/opgraph/ndarray"
	"k8s.io/klog/v2"
)

// Context carries the execution-engine state a kernel may consult. The
// engine owns richer state (streams, temporary space); the dispatcher only
// needs the device tag for diagnostics.
type Context struct {
	// Device identifies where the kernel runs, e.g. "cpu" or "gpu:0".
	Device string
}

// FCompute is a dense-only compute kernel: every input and output it
// receives uses default storage.
type FCompute func(n *graph.Node, ctx *Context, inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray)

// FallbackCompute invokes a dense-only kernel over operands that may be
// sparse:
//
//  1. Every non-dense input is converted into a temporary dense buffer;
//     dense inputs pass through untouched.
//  2. Every non-dense output gets a temporary dense buffer to receive the
//     kernel's write, converted back to the original storage afterwards.
//  3. For every index in mutateIdx whose input was staged in step 1, the
//     temporary is copied back to the original input after the kernel runs,
//     so in-place mutation stays observable on the original array.
//
// Post-kernel conversions run in registration order: staged outputs first,
// then mutated inputs. With all-dense operands nothing is staged and the
// kernel sees the caller's arrays directly.
//
// fname names the kernel in diagnostics. The temporaries are owned by this
// call; if the kernel panics, they are simply dropped and no post-kernel
// conversion runs.
func FallbackCompute(fcompute FCompute, n *graph.Node, ctx *Context,
	inputs []*ndarray.NDArray, reqs []OpReq, outputs []*ndarray.NDArray,
	fname string, mutateIdx ...int) {
	inBlobs := make([]*ndarray.NDArray, len(inputs))
	var preSrc, preDst, postSrc, postDst []*ndarray.NDArray
	// Maps input index to its position in preDst.
	inTempIdx := make(map[int]int)
	for i, in := range inputs {
		if in.IsDense() {
			inBlobs[i] = in
			continue
		}
		tmp := ndarray.Zeros(in.Shape(), in.DType())
		inTempIdx[i] = len(preDst)
		preSrc = append(preSrc, in)
		preDst = append(preDst, tmp)
		inBlobs[i] = tmp
	}
	outBlobs := make([]*ndarray.NDArray, len(outputs))
	for i, out := range outputs {
		if out.IsDense() {
			outBlobs[i] = out
			continue
		}
		tmp := ndarray.Zeros(out.Shape(), out.DType())
		postSrc = append(postSrc, tmp)
		postDst = append(postDst, out)
		outBlobs[i] = tmp
	}
	for _, idx := range mutateIdx {
		if j, found := inTempIdx[idx]; found {
			postSrc = append(postSrc, preDst[j])
			postDst = append(postDst, inputs[idx])
		}
	}
	if len(preSrc) > 0 || len(postSrc) > 0 {
		klog.V(1).Infof("storage fallback for %s: staging %d input(s) and %d output(s) through default storage",
			fname, len(preSrc), len(postSrc))
	}
	for i, src := range preSrc {
		ndarray.CastStorage(preDst[i], src)
	}
	fcompute(n, ctx, inBlobs, reqs, outBlobs)
	for i, src := range postSrc {
		ndarray.CastStorage(postDst[i], src)
	}
}
