// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/ops"
)

// Backend is the reference CPU backend.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements ops.Backend.
var _ ops.Backend = (*Backend)(nil)

// New creates a CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/onnxtrace/backend/cpu"
//	    "github.com/born-ml/onnxtrace/nn"
//	)
//
//	func main() {
//	    be := cpu.New()
//	    layer := nn.NewLinear(784, 10, be, nn.NewRand(1))
//	}
func New() *Backend {
	return internalcpu.New()
}
