// Package cpu implements the reference CPU backend.
//
// Kernels favour clarity over speed: every operation reads its inputs as float64,
// computes in float64 and stores the result in the output element type. Results
// are always freshly allocated tensors.
package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/parallel"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// CPUBackend implements ops.Backend on the CPU.
//
// Convolution and matrix multiplication split their outer loops across
// goroutines; everything else runs on the calling goroutine.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend using every CPU.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit loop configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{par: cfg}
}

var _ ops.Backend = (*CPUBackend)(nil)

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// newResult converts computed values into a tensor, panicking on failure.
func newResult(op string, shape tensor.Shape, dtype tensor.DataType, vals []float64) *tensor.RawTensor {
	r, err := tensor.FromFloat64s(shape, dtype, vals)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return r
}

// binary applies f element-wise with NumPy-style broadcasting.
func binary(op string, a, b *tensor.RawTensor, out tensor.DataType, f func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	av, bv := a.Float64s(), b.Float64s()
	vals := make([]float64, outShape.NumElements())
	if !needsBroadcast {
		for i := range vals {
			vals[i] = f(av[i], bv[i])
		}
		return newResult(op, outShape, out, vals)
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	for i := range vals {
		vals[i] = f(av[sourceIndex(i, outStrides, aStrides)], bv[sourceIndex(i, outStrides, bStrides)])
	}
	return newResult(op, outShape, out, vals)
}

// unary applies f element-wise, keeping the element type.
func unary(op string, x *tensor.RawTensor, f func(v float64) float64) *tensor.RawTensor {
	vals := x.Float64s()
	for i, v := range vals {
		vals[i] = f(v)
	}
	return newResult(op, x.Shape(), x.DType(), vals)
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("add", a, b, a.DType(), func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("sub", a, b, a.DType(), func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("mul", a, b, a.DType(), func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
// Integer division truncates toward zero.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("div", a, b, a.DType(), func(x, y float64) float64 { return x / y })
}

// Maximum returns the element-wise maximum.
func (cpu *CPUBackend) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("maximum", a, b, a.DType(), math.Max)
}

// Minimum returns the element-wise minimum.
func (cpu *CPUBackend) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("minimum", a, b, a.DType(), math.Min)
}

// AddConstant adds a scalar.
func (cpu *CPUBackend) AddConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return unary("add_constant", x, func(v float64) float64 { return v + value })
}

// SubConstant subtracts a scalar.
func (cpu *CPUBackend) SubConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return unary("sub_constant", x, func(v float64) float64 { return v - value })
}

// MulConstant multiplies by a scalar.
func (cpu *CPUBackend) MulConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return unary("mul_constant", x, func(v float64) float64 { return v * value })
}

// DivConstant divides by a scalar.
func (cpu *CPUBackend) DivConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor {
	return unary("div_constant", x, func(v float64) float64 { return v / value })
}

// Greater returns a > b as a bool tensor.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("greater", a, b, tensor.Bool, func(x, y float64) float64 { return boolf(x > y) })
}

// Less returns a < b as a bool tensor.
func (cpu *CPUBackend) Less(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("less", a, b, tensor.Bool, func(x, y float64) float64 { return boolf(x < y) })
}

// Equal returns a == b as a bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary("equal", a, b, tensor.Bool, func(x, y float64) float64 { return boolf(x == y) })
}
