package models

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// CNN is a small convolutional classifier for single channel 8x8 images.
//
// Architecture:
//
//	Input: [batch, 1, 8, 8]
//	Conv:  1 -> 4 channels, 3x3, pad 1 -> [batch, 4, 8, 8]
//	BatchNorm (inference statistics)
//	ReLU
//	MaxPool: 2x2 -> [batch, 4, 4, 4]
//	Flatten -> [batch, 64]
//	FC: 64 -> 10
//	Softmax
type CNN struct {
	conv *nn.Conv2D
	bn   *nn.BatchNorm
	relu *nn.ReLU
	pool *nn.MaxPool2D
	fc   *nn.Linear
}

// NewCNN creates the network with Xavier initialized weights.
func NewCNN(be ops.Backend, rng *rand.Rand) *CNN {
	return &CNN{
		conv: nn.NewConv2D(1, 4, 3, 1, 1, be, rng),
		bn:   nn.NewBatchNorm(4, be),
		relu: nn.NewReLU(be),
		pool: nn.NewMaxPool2D(2, 2, be),
		fc:   nn.NewLinear(4*4*4, 10, be, rng),
	}
}

// Call classifies a batch of images. The flatten and softmax steps run on
// be; the layers use their own backends.
func (m *CNN) Call(be ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("cnn: expected 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	if x.Rank() != 4 || x.Shape()[1] != 1 || x.Shape()[2] != 8 || x.Shape()[3] != 8 {
		return nil, fmt.Errorf("cnn: expected input [batch, 1, 8, 8], got %v", x.Shape())
	}

	x = m.conv.Forward(x)
	x = m.bn.Forward(x)
	x = m.relu.Forward(x)
	x = m.pool.Forward(x)
	x = be.Reshape(x, tensor.Shape{x.Shape()[0], -1})
	x = m.fc.Forward(x)
	return []*tensor.RawTensor{be.Softmax(x)}, nil
}

// Parameters returns nil; parameters belong to the layers.
func (m *CNN) Parameters() []*nn.Parameter { return nil }

// Children returns the layers.
func (m *CNN) Children() []nn.Child {
	return []nn.Child{
		{Name: "conv", Module: m.conv},
		{Name: "bn", Module: m.bn},
		{Name: "relu", Module: m.relu},
		{Name: "pool", Module: m.pool},
		{Name: "fc", Module: m.fc},
	}
}
