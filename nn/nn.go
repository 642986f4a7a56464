// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
)

// Layer types.
type (
	Linear     = nn.Linear
	Conv2D     = nn.Conv2D
	BatchNorm  = nn.BatchNorm
	ReLU       = nn.ReLU
	Sigmoid    = nn.Sigmoid
	Tanh       = nn.Tanh
	MaxPool2D  = nn.MaxPool2D
	AvgPool2D  = nn.AvgPool2D
	Sequential = nn.Sequential
)

// NewLinear creates a fully connected layer computing x*W^T + b.
//
// Weights use Xavier initialization drawn from rng; the bias starts at zero.
// Call NoBias on the result to drop the bias.
func NewLinear(inFeatures, outFeatures int, be ops.Backend, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, be, rng)
}

// NewConv2D creates a 2-D convolution over NCHW inputs with a square kernel.
func NewConv2D(inChannels, outChannels, kernel, stride, pad int, be ops.Backend, rng *rand.Rand) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernel, stride, pad, be, rng)
}

// NewBatchNorm creates an inference-mode batch normalization over the
// channel axis.
func NewBatchNorm(size int, be ops.Backend) *BatchNorm {
	return nn.NewBatchNorm(size, be)
}

// NewReLU creates a ReLU activation.
func NewReLU(be ops.Backend) *ReLU { return nn.NewReLU(be) }

// NewSigmoid creates a sigmoid activation.
func NewSigmoid(be ops.Backend) *Sigmoid { return nn.NewSigmoid(be) }

// NewTanh creates a tanh activation.
func NewTanh(be ops.Backend) *Tanh { return nn.NewTanh(be) }

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D(kernel, stride int, be ops.Backend) *MaxPool2D {
	return nn.NewMaxPool2D(kernel, stride, be)
}

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D(kernel, stride, pad int, be ops.Backend) *AvgPool2D {
	return nn.NewAvgPool2D(kernel, stride, pad, be)
}

// NewSequential chains layers.
func NewSequential(layers ...Layer) *Sequential {
	return nn.NewSequential(layers...)
}
