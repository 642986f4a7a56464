// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Parameter is a named tensor owned by a layer.
type Parameter = nn.Parameter

// NewParameter creates a parameter.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, t)
}

// NewRand returns a deterministic random source for weight initialization.
func NewRand(seed uint64) *rand.Rand {
	return nn.NewRand(seed)
}

// Xavier returns a float32 tensor with Xavier/Glorot uniform values.
func Xavier(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape) *tensor.RawTensor {
	return nn.Xavier(rng, fanIn, fanOut, shape)
}

// Filled returns a float32 tensor with every element set to value.
func Filled(shape tensor.Shape, value float64) *tensor.RawTensor {
	return nn.Filled(shape, value)
}
