package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Sequential is a container module that chains layers together.
//
// Each layer's output becomes the next layer's input. Children are named by
// position, so parameters have paths such as "/0/W".
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, be, rng),
//	    nn.NewReLU(be),
//	    nn.NewLinear(128, 10, be, rng),
//	)
type Sequential struct {
	layers []Layer
}

// NewSequential creates a new Sequential container.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{layers: layers}
}

// Forward applies all layers in sequence.
func (s *Sequential) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	for _, l := range s.layers {
		x = l.Forward(x)
	}
	return x
}

// Call runs the layers on a single input. The layers use their bound
// backends, be is not used.
func (s *Sequential) Call(_ ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("sequential: expected 1 input, got %d", len(inputs))
	}
	return []*tensor.RawTensor{s.Forward(inputs[0])}, nil
}

// Parameters returns nil; parameters belong to the layers.
func (s *Sequential) Parameters() []*Parameter { return nil }

// Children returns the layers named by position.
func (s *Sequential) Children() []Child {
	out := make([]Child, len(s.layers))
	for i, l := range s.layers {
		out[i] = Child{Name: strconv.Itoa(i), Module: l}
	}
	return out
}

// Layers returns the layers.
func (s *Sequential) Layers() []Layer {
	return s.layers
}
