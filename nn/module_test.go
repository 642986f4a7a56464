// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/backend/cpu"
	"github.com/born-ml/onnxtrace/nn"
	"github.com/born-ml/onnxtrace/ops"
	"github.com/born-ml/onnxtrace/tensor"
)

// TestLayersImplementInterfaces verifies that concrete layers satisfy the
// public interfaces.
func TestLayersImplementInterfaces(t *testing.T) {
	be := cpu.New()
	rng := nn.NewRand(1)

	tests := []struct {
		name  string
		layer nn.Layer
	}{
		{"Linear", nn.NewLinear(4, 2, be, rng)},
		{"Conv2D", nn.NewConv2D(1, 2, 3, 1, 1, be, rng)},
		{"BatchNorm", nn.NewBatchNorm(2, be)},
		{"ReLU", nn.NewReLU(be)},
		{"Sigmoid", nn.NewSigmoid(be)},
		{"Tanh", nn.NewTanh(be)},
		{"MaxPool2D", nn.NewMaxPool2D(2, 2, be)},
		{"AvgPool2D", nn.NewAvgPool2D(2, 2, 0, be)},
		{"Sequential", nn.NewSequential(nn.NewReLU(be))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.layer.(nn.Bindable); !ok && tt.name != "Sequential" {
				t.Errorf("%s does not hold a backend", tt.name)
			}
		})
	}
}

func TestSequentialModel(t *testing.T) {
	be := cpu.New()
	rng := nn.NewRand(3)
	var model nn.Model = nn.NewSequential(
		nn.NewLinear(4, 8, be, rng),
		nn.NewTanh(be),
		nn.NewLinear(8, 2, be, rng),
	)

	x, err := tensor.Full(tensor.Shape{5, 4}, tensor.Float32, 0.5)
	require.NoError(t, err)
	outs, err := model.Call(be, x)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, tensor.Shape{5, 2}, outs[0].Shape())

	var paths []string
	for _, np := range nn.NamedParameters(model) {
		paths = append(paths, np.Path)
	}
	assert.Equal(t, []string{"/0/W", "/0/b", "/2/W", "/2/b"}, paths)
}

func TestFunc(t *testing.T) {
	be := cpu.New()
	double := nn.Func(func(be ops.Backend, in ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return []*tensor.RawTensor{be.MulConstant(in[0], 2)}, nil
	})

	x, err := tensor.FromSlice([]float32{1, -2}, tensor.Shape{2})
	require.NoError(t, err)
	outs, err := double.Call(be, x)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, -4}, outs[0].AsFloat32())
}
