// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onnx exports models to the ONNX format.
//
// An export runs the model once on concrete inputs, records every primitive
// operation the forward pass performs and converts the recording into an
// ONNX graph. Control flow is resolved by the traced run: the exported graph
// reproduces the path the inputs took.
//
// # Example Usage
//
//	import (
//	    "github.com/born-ml/onnxtrace/backend/cpu"
//	    "github.com/born-ml/onnxtrace/nn"
//	    "github.com/born-ml/onnxtrace/onnx"
//	    "github.com/born-ml/onnxtrace/tensor"
//	)
//
//	be := cpu.New()
//	model := nn.NewSequential(nn.NewLinear(4, 3, be, nn.NewRand(0)), nn.NewReLU(be))
//	x, _ := tensor.Zeros(tensor.Shape{2, 4}, tensor.Float32)
//
//	res, err := onnx.Export(ctx, model, []*tensor.RawTensor{x}, onnx.WithOpset(11))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("model.onnx", res.Bytes(), 0o600)
//
// # Naming
//
// Graph inputs are named Input, Input_1... and outputs Output, Output_1...
// in call order. Model parameters become initializers named after their
// path (param_0_W); other constants become const, const_1...
//
// # Opsets
//
// Opsets [MinimumOpset] through [LatestOpset] are supported; the default is
// the latest. Older opsets are accepted with a warning.
//
// # Errors
//
// Failures are classified by the sentinel errors below; use errors.Is:
//
//	if errors.Is(err, onnx.ErrUnsupported) {
//	    // the model uses a primitive without an ONNX translation
//	}
//
// # Checking an Export
//
// [Verify] evaluates the exported graph on the reference CPU backend and
// compares the results with the traced outputs. [WriteTestcase] stores the
// model with its inputs and outputs in the ONNX backend test layout.
package onnx
