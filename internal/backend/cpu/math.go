package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Neg negates every element.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("neg", x, func(v float64) float64 { return -v })
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("exp", x, math.Exp)
}

// Log computes the natural logarithm element-wise.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("log", x, math.Log)
}

// Sqrt computes the square root element-wise.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("sqrt", x, math.Sqrt)
}

// ReLU computes max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("relu", x, func(v float64) float64 { return math.Max(0, v) })
}

// Sigmoid computes 1 / (1 + e^-x).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("sigmoid", x, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// Tanh computes the hyperbolic tangent.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("tanh", x, math.Tanh)
}

// HardSigmoid computes clip(0.2x + 0.5, 0, 1).
func (cpu *CPUBackend) HardSigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return unary("hard_sigmoid", x, func(v float64) float64 {
		return math.Min(1, math.Max(0, 0.2*v+0.5))
	})
}

// LeakyReLU computes x for x >= 0 and slope·x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	slope := ops.MustBind(ops.OpLeakyReLU, []any{x}, opts).Float("slope")
	return unary("leaky_relu", x, func(v float64) float64 {
		if v < 0 {
			return slope * v
		}
		return v
	})
}

// ELU computes x for x >= 0 and alpha·(e^x - 1) otherwise.
func (cpu *CPUBackend) ELU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	alpha := ops.MustBind(ops.OpELU, []any{x}, opts).Float("alpha")
	return unary("elu", x, func(v float64) float64 {
		if v < 0 {
			return alpha * (math.Exp(v) - 1)
		}
		return v
	})
}

// ClippedReLU computes min(max(0, x), z).
func (cpu *CPUBackend) ClippedReLU(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	z := ops.MustBind(ops.OpClippedReLU, []any{x}, opts).Float("z")
	return unary("clipped_relu", x, func(v float64) float64 { return math.Min(math.Max(0, v), z) })
}

// Softmax normalizes exponentials along an axis (1 by default).
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	axis, err := x.Shape().NormalizeAxis(ops.MustBind(ops.OpSoftmax, []any{x}, opts).Int("axis"))
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}

	vals := x.Float64s()
	outer, n, inner := splitAxis(x.Shape(), axis)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			at := func(k int) int { return (o*n+k)*inner + i }
			maxV := math.Inf(-1)
			for k := 0; k < n; k++ {
				maxV = math.Max(maxV, vals[at(k)])
			}
			sum := 0.0
			for k := 0; k < n; k++ {
				vals[at(k)] = math.Exp(vals[at(k)] - maxV)
				sum += vals[at(k)]
			}
			for k := 0; k < n; k++ {
				vals[at(k)] /= sum
			}
		}
	}
	return newResult("softmax", x.Shape(), x.DType(), vals)
}

// LogSoftmax computes log(softmax(x)).
func (cpu *CPUBackend) LogSoftmax(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.LogSoftmaxOf(cpu, x, opts...)
}

// Softplus computes log(1 + e^(beta·x)) / beta.
func (cpu *CPUBackend) Softplus(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.SoftplusOf(cpu, x, opts...)
}
