package models

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Add returns the elementwise sum of its two inputs.
var Add = nn.Func(func(be ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 2 {
		return nil, fmt.Errorf("add: expected 2 inputs, got %d", len(inputs))
	}
	return []*tensor.RawTensor{be.Add(inputs[0], inputs[1])}, nil
})

// Identity returns its inputs unchanged.
var Identity = nn.Func(func(_ ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return inputs, nil
})
