package ops

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Composite primitives are computed from other primitives of the same backend.
// Backends call these with themselves as be. When be records calls, the caller
// suspends recording first so that the composite shows up as one call.

// LinearOf computes x·Wᵀ + b. Leading n_batch_axes axes of x are batch axes,
// the rest are flattened into the feature axis.
func LinearOf(be Backend, x, w, b *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	bound := MustBind(OpLinear, []any{x, w, b}, opts)
	n := bound.Int("n_batch_axes")
	if n < 1 || n >= x.Rank() {
		panic(fmt.Sprintf("linear: n_batch_axes %d out of range for input %v", n, x.Shape()))
	}

	batch := x.Shape()[:n]
	h := x
	if x.Rank() != 2 || n != 1 {
		h = be.Reshape(x, tensor.Shape{batch.NumElements(), tensor.Shape(x.Shape()[n:]).NumElements()})
	}
	y := be.MatMul(h, w, TransB(true))
	if !bound.IsNone("b") {
		y = be.Add(y, b)
	}
	if n != 1 {
		out := append(batch.Clone(), w.Shape()[0])
		y = be.Reshape(y, out)
	}
	return y
}

// normAxes returns the axes batch normalization reduces over and the shape its
// per-channel parameters are broadcast to.
func normAxes(x *tensor.RawTensor, axis []int) ([]int, tensor.Shape) {
	if axis == nil {
		axis = []int{0}
		for i := 2; i < x.Rank(); i++ {
			axis = append(axis, i)
		}
	}
	bshape := x.Shape().Clone()
	for _, a := range axis {
		na, err := x.Shape().NormalizeAxis(a)
		if err != nil {
			panic(fmt.Sprintf("batch_normalization: %v", err))
		}
		bshape[na] = 1
	}
	return axis, bshape
}

func normalize(be Backend, x, gamma, beta, mean, variance *tensor.RawTensor, eps float64, bshape tensor.Shape) *tensor.RawTensor {
	if !mean.Shape().Equal(bshape) {
		mean = be.Reshape(mean, bshape)
		variance = be.Reshape(variance, bshape)
	}
	std := be.Sqrt(be.AddConstant(variance, eps))
	y := be.Div(be.Sub(x, mean), std)
	y = be.Mul(y, be.Reshape(gamma, bshape))
	return be.Add(y, be.Reshape(beta, bshape))
}

// FixedBatchNormalizationOf normalizes x with the given statistics.
func FixedBatchNormalizationOf(be Backend, x, gamma, beta, mean, variance *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	bound := MustBind(OpFixedBatchNormalization, []any{x, gamma, beta, mean, variance}, opts)
	_, bshape := normAxes(x, bound.Ints("axis"))
	return normalize(be, x, gamma, beta, mean, variance, bound.Float("eps"), bshape)
}

// BatchNormalizationOf normalizes x with its own batch statistics.
// Running statistics are read-only here; tensors are immutable.
func BatchNormalizationOf(be Backend, x, gamma, beta *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	bound := MustBind(OpBatchNormalization, []any{x, gamma, beta}, opts)
	axis, bshape := normAxes(x, bound.Ints("axis"))
	mean := be.Mean(x, Axis(axis...), KeepDims(true))
	centered := be.Sub(x, mean)
	variance := be.Mean(be.Mul(centered, centered), Axis(axis...), KeepDims(true))
	return normalize(be, x, gamma, beta, mean, variance, bound.Float("eps"), bshape)
}

// SoftplusOf computes log(1 + exp(beta·x)) / beta.
func SoftplusOf(be Backend, x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	beta := MustBind(OpSoftplus, []any{x}, opts).Float("beta")
	y := be.Log(be.AddConstant(be.Exp(be.MulConstant(x, beta)), 1))
	return be.DivConstant(y, beta)
}

// LogSoftmaxOf computes log(softmax(x)).
func LogSoftmaxOf(be Backend, x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	axis := MustBind(OpLogSoftmax, []any{x}, opts).Int("axis")
	return be.Log(be.Softmax(x, Axis(axis)))
}

// MeanOf divides Sum by the number of reduced elements.
func MeanOf(be Backend, x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor {
	bound := MustBind(OpMean, []any{x}, opts)
	axes := bound.Ints("axis")
	count := x.NumElements()
	if axes != nil {
		count = 1
		for _, a := range axes {
			na, err := x.Shape().NormalizeAxis(a)
			if err != nil {
				panic(fmt.Sprintf("mean: %v", err))
			}
			count *= x.Shape()[na]
		}
	}
	return be.DivConstant(be.Sum(x, opts...), float64(count))
}
