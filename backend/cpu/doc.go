// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go reference backend.
//
// # Overview
//
// The CPU backend implements every primitive of ops.Backend with direct
// loops over float64 values:
//   - Pure Go implementation (no CGO)
//   - NumPy-compatible broadcasting
//   - Results stored in the input element type
//
// Exports run the traced forward pass on this backend unless another one is
// passed with onnx.WithBackend, and onnx.Verify evaluates exported graphs on
// it.
//
// # Panics
//
// Like the primitives they implement, kernels panic on invalid arguments
// such as mismatched shapes; the message names the primitive. The exporter
// turns such panics into forward errors.
//
// # Thread Safety
//
// The CPU backend is stateless and safe for concurrent use.
package cpu
