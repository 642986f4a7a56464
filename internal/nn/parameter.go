package nn

import (
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Parameter is a named tensor owned by a module: a weight, a bias or a
// normalization statistic.
//
// Example:
//
//	weight := nn.NewParameter("W", weightTensor)
//	w := weight.Tensor()
type Parameter struct {
	name   string
	tensor *tensor.RawTensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Set replaces the parameter tensor, for example when loading weights.
func (p *Parameter) Set(t *tensor.RawTensor) {
	p.tensor = t
}
