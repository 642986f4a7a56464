package nn

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// activation is a parameter-free layer applying one backend primitive.
type activation struct {
	be ops.Backend
	fn func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor
}

func (a *activation) Forward(x *tensor.RawTensor) *tensor.RawTensor { return a.fn(a.be, x) }
func (a *activation) Parameters() []*Parameter                      { return nil }
func (a *activation) Backend() ops.Backend                          { return a.be }
func (a *activation) Bind(be ops.Backend)                           { a.be = be }

// ReLU is a Rectified Linear Unit activation layer: f(x) = max(0, x).
type ReLU struct{ activation }

// NewReLU creates a new ReLU activation layer.
func NewReLU(be ops.Backend) *ReLU {
	return &ReLU{activation{be: be, fn: ops.Backend.ReLU}}
}

// Sigmoid applies 1 / (1 + e^-x).
type Sigmoid struct{ activation }

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid(be ops.Backend) *Sigmoid {
	return &Sigmoid{activation{be: be, fn: ops.Backend.Sigmoid}}
}

// Tanh applies the hyperbolic tangent.
type Tanh struct{ activation }

// NewTanh creates a new Tanh activation layer.
func NewTanh(be ops.Backend) *Tanh {
	return &Tanh{activation{be: be, fn: ops.Backend.Tanh}}
}

// MaxPool2D applies 2D max pooling with a square window.
type MaxPool2D struct{ activation }

// NewMaxPool2D creates a max pooling layer. Windows cover the whole input.
func NewMaxPool2D(kernel, stride int, be ops.Backend) *MaxPool2D {
	return &MaxPool2D{activation{be: be, fn: func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		return be.MaxPooling2D(x, kernel, ops.Stride(stride))
	}}}
}

// AvgPool2D applies 2D average pooling with a square window.
type AvgPool2D struct{ activation }

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D(kernel, stride, pad int, be ops.Backend) *AvgPool2D {
	return &AvgPool2D{activation{be: be, fn: func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		return be.AveragePooling2D(x, kernel, ops.Stride(stride), ops.Pad(pad))
	}}}
}
