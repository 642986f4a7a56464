// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers and model interfaces exports are built from.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Conv2D, BatchNorm, MaxPool2D, AvgPool2D
//   - Activations: ReLU, Sigmoid, Tanh
//   - Utilities: Sequential, Module interface, Parameter
//   - Initialization: NewRand, Xavier, Filled
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/onnxtrace/backend/cpu"
//	    "github.com/born-ml/onnxtrace/nn"
//	)
//
//	func main() {
//	    be := cpu.New()
//	    rng := nn.NewRand(42)
//
//	    // Build a simple MLP
//	    model := nn.NewSequential(
//	        nn.NewLinear(784, 128, be, rng),
//	        nn.NewReLU(be),
//	        nn.NewLinear(128, 10, be, rng),
//	    )
//
//	    // Forward pass
//	    outputs, err := model.Call(be, input)
//	}
//
// # Models
//
// Anything with a Call method is a Model. Func adapts a plain function, so
// models that are not layer stacks need no type of their own:
//
//	add := nn.Func(func(be ops.Backend, in ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
//	    return []*tensor.RawTensor{be.Add(in[0], in[1])}, nil
//	})
//
// # Parameters
//
// Layers own their weights as Parameters. NamedParameters walks a model and
// returns every parameter with its path, such as "/0/W" for the weight of
// the first layer of a Sequential. Exported initializers are named after
// these paths.
//
// # Backends
//
// Layers hold the backend they were built with. During an export the
// recording backend is bound to every layer for the duration of the traced
// call and the original backend is restored afterwards.
package nn
