package trace

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Backend is the recording dispatcher. It implements ops.Backend by forwarding
// every primitive to an inner backend and recording it.
type Backend struct {
	inner  ops.Backend
	tracer *Tracer
}

var _ ops.Backend = (*Backend)(nil)

// NewBackend wraps inner so that calls are recorded on tracer.
func NewBackend(inner ops.Backend, tracer *Tracer) *Backend {
	return &Backend{inner: inner, tracer: tracer}
}

// Inner returns the wrapped backend.
func (b *Backend) Inner() ops.Backend { return b.inner }

// Name is forwarded without recording.
func (b *Backend) Name() string { return b.inner.Name() }

// invoke runs fn with recording suspended, so primitives fn calls through b are
// not recorded, and then records the call itself.
func (b *Backend) invoke(op ops.OpID, args []any, kwargs []ops.Arg, fn func() *tensor.RawTensor) *tensor.RawTensor {
	out := func() *tensor.RawTensor {
		defer b.tracer.Suspend()()
		return fn()
	}()

	var receiver any = b.inner.Name()
	if ops.MustLookup(op).Method {
		receiver, args = args[0], args[1:]
	}
	b.tracer.Record(op, receiver, args, kwargs, []*tensor.RawTensor{out})
	return out
}

func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpAdd, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Add(x, y) })
}

func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpSub, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Sub(x, y) })
}

func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpMul, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Mul(x, y) })
}

func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpDiv, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Div(x, y) })
}

func (b *Backend) Maximum(x1, x2 *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpMaximum, []any{x1, x2}, nil, func() *tensor.RawTensor { return b.inner.Maximum(x1, x2) })
}

func (b *Backend) Minimum(x1, x2 *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpMinimum, []any{x1, x2}, nil, func() *tensor.RawTensor { return b.inner.Minimum(x1, x2) })
}

func (b *Backend) AddConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return b.invoke(ops.OpAddConstant, []any{x, value}, nil, func() *tensor.RawTensor { return b.inner.AddConstant(x, value) })
}

func (b *Backend) SubConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return b.invoke(ops.OpSubConstant, []any{x, value}, nil, func() *tensor.RawTensor { return b.inner.SubConstant(x, value) })
}

func (b *Backend) MulConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return b.invoke(ops.OpMulConstant, []any{x, value}, nil, func() *tensor.RawTensor { return b.inner.MulConstant(x, value) })
}

func (b *Backend) DivConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return b.invoke(ops.OpDivConstant, []any{x, value}, nil, func() *tensor.RawTensor { return b.inner.DivConstant(x, value) })
}

func (b *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpNeg, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Neg(x) })
}

func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpExp, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Exp(x) })
}

func (b *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpLog, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Log(x) })
}

func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpSqrt, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Sqrt(x) })
}

func (b *Backend) Greater(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpGreater, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Greater(x, y) })
}

func (b *Backend) Less(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpLess, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Less(x, y) })
}

func (b *Backend) Equal(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpEqual, []any{x, y}, nil, func() *tensor.RawTensor { return b.inner.Equal(x, y) })
}

func (b *Backend) MatMul(x, y *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpMatMul, []any{x, y}, opts, func() *tensor.RawTensor { return b.inner.MatMul(x, y, opts...) })
}

// Linear is composite; its matmul and bias add are not recorded separately.
func (b *Backend) Linear(x, w, bias *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpLinear, []any{x, w, bias}, opts, func() *tensor.RawTensor {
		return ops.LinearOf(b, x, w, bias, opts...)
	})
}

func (b *Backend) Convolution2D(x, w, bias *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpConvolution2D, []any{x, w, bias}, opts, func() *tensor.RawTensor {
		return b.inner.Convolution2D(x, w, bias, opts...)
	})
}

func (b *Backend) MaxPooling2D(x *tensor.RawTensor, ksize int, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpMaxPooling2D, []any{x, ksize}, opts, func() *tensor.RawTensor {
		return b.inner.MaxPooling2D(x, ksize, opts...)
	})
}

func (b *Backend) AveragePooling2D(x *tensor.RawTensor, ksize int, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpAveragePooling2D, []any{x, ksize}, opts, func() *tensor.RawTensor {
		return b.inner.AveragePooling2D(x, ksize, opts...)
	})
}

func (b *Backend) BatchNormalization(x, gamma, beta *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpBatchNormalization, []any{x, gamma, beta}, opts, func() *tensor.RawTensor {
		return ops.BatchNormalizationOf(b, x, gamma, beta, opts...)
	})
}

func (b *Backend) FixedBatchNormalization(x, gamma, beta, mean, variance *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpFixedBatchNormalization, []any{x, gamma, beta, mean, variance}, opts, func() *tensor.RawTensor {
		return ops.FixedBatchNormalizationOf(b, x, gamma, beta, mean, variance, opts...)
	})
}

func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpReLU, []any{x}, nil, func() *tensor.RawTensor { return b.inner.ReLU(x) })
}

func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpSigmoid, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Sigmoid(x) })
}

func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpTanh, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Tanh(x) })
}

func (b *Backend) HardSigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpHardSigmoid, []any{x}, nil, func() *tensor.RawTensor { return b.inner.HardSigmoid(x) })
}

func (b *Backend) LeakyReLU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpLeakyReLU, []any{x}, opts, func() *tensor.RawTensor { return b.inner.LeakyReLU(x, opts...) })
}

func (b *Backend) ELU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpELU, []any{x}, opts, func() *tensor.RawTensor { return b.inner.ELU(x, opts...) })
}

func (b *Backend) ClippedReLU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpClippedReLU, []any{x}, opts, func() *tensor.RawTensor { return b.inner.ClippedReLU(x, opts...) })
}

func (b *Backend) Softmax(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpSoftmax, []any{x}, opts, func() *tensor.RawTensor { return b.inner.Softmax(x, opts...) })
}

func (b *Backend) LogSoftmax(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpLogSoftmax, []any{x}, opts, func() *tensor.RawTensor { return ops.LogSoftmaxOf(b, x, opts...) })
}

func (b *Backend) Softplus(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpSoftplus, []any{x}, opts, func() *tensor.RawTensor { return ops.SoftplusOf(b, x, opts...) })
}

func (b *Backend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.invoke(ops.OpReshape, []any{x, shape.Clone()}, nil, func() *tensor.RawTensor { return b.inner.Reshape(x, shape) })
}

func (b *Backend) Transpose(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpTranspose, []any{x}, opts, func() *tensor.RawTensor { return b.inner.Transpose(x, opts...) })
}

func (b *Backend) Squeeze(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpSqueeze, []any{x}, opts, func() *tensor.RawTensor { return b.inner.Squeeze(x, opts...) })
}

func (b *Backend) ExpandDims(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	return b.invoke(ops.OpExpandDims, []any{x, axis}, nil, func() *tensor.RawTensor { return b.inner.ExpandDims(x, axis) })
}

func (b *Backend) Concat(xs []*tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	xs = append([]*tensor.RawTensor(nil), xs...)
	return b.invoke(ops.OpConcat, []any{xs}, opts, func() *tensor.RawTensor { return b.inner.Concat(xs, opts...) })
}

func (b *Backend) GetItem(x *tensor.RawTensor, slices ...ops.Index) *tensor.RawTensor {
	slices = append([]ops.Index(nil), slices...)
	return b.invoke(ops.OpGetItem, []any{x, slices}, nil, func() *tensor.RawTensor { return b.inner.GetItem(x, slices...) })
}

func (b *Backend) Tile(x *tensor.RawTensor, reps ...int) *tensor.RawTensor {
	reps = append([]int(nil), reps...)
	return b.invoke(ops.OpTile, []any{x, reps}, nil, func() *tensor.RawTensor { return b.inner.Tile(x, reps...) })
}

func (b *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return b.invoke(ops.OpCast, []any{x, dtype}, nil, func() *tensor.RawTensor { return b.inner.Cast(x, dtype) })
}

func (b *Backend) Copy(x *tensor.RawTensor) *tensor.RawTensor {
	return b.invoke(ops.OpCopy, []any{x}, nil, func() *tensor.RawTensor { return b.inner.Copy(x) })
}

func (b *Backend) Sum(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpSum, []any{x}, opts, func() *tensor.RawTensor { return b.inner.Sum(x, opts...) })
}

// Mean is composite: a sum divided by the element count.
func (b *Backend) Mean(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpMean, []any{x}, opts, func() *tensor.RawTensor { return ops.MeanOf(b, x, opts...) })
}

func (b *Backend) Zeros(shape tensor.Shape, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpZeros, []any{shape.Clone()}, opts, func() *tensor.RawTensor { return b.inner.Zeros(shape, opts...) })
}

func (b *Backend) Ones(shape tensor.Shape, opts ...ops.Arg) *tensor.RawTensor {
	return b.invoke(ops.OpOnes, []any{shape.Clone()}, opts, func() *tensor.RawTensor { return b.inner.Ones(shape, opts...) })
}
