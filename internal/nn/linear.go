package nn

import (
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	layer := nn.NewLinear(784, 128, cpu.New(), nn.NewRand(1))
//	output := layer.Forward(input) // shape: [32, 128]
type Linear struct {
	W  *Parameter // [out_features, in_features]
	B  *Parameter // [out_features], nil without bias
	be ops.Backend
}

// NewLinear creates a new Linear layer with bias.
func NewLinear(inFeatures, outFeatures int, be ops.Backend, rng *rand.Rand) *Linear {
	return &Linear{
		W:  NewParameter("W", Xavier(rng, inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures})),
		B:  NewParameter("b", Filled(tensor.Shape{outFeatures}, 0)),
		be: be,
	}
}

// NoBias drops the bias parameter.
func (l *Linear) NoBias() *Linear {
	l.B = nil
	return l
}

// Forward computes x @ W.T + b.
func (l *Linear) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	var b *tensor.RawTensor
	if l.B != nil {
		b = l.B.Tensor()
	}
	return l.be.Linear(x, l.W.Tensor(), b)
}

// Parameters returns W and, if present, b.
func (l *Linear) Parameters() []*Parameter {
	if l.B == nil {
		return []*Parameter{l.W}
	}
	return []*Parameter{l.W, l.B}
}

// Backend returns the bound backend.
func (l *Linear) Backend() ops.Backend { return l.be }

// Bind replaces the bound backend.
func (l *Linear) Bind(be ops.Backend) { l.be = be }
