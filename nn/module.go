// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/onnxtrace/internal/nn"
)

// Module is the base interface for all neural network components.
type Module = nn.Module

// Layer is a module with a single input and a single output.
type Layer = nn.Layer

// Model maps concrete inputs to outputs using a backend.
type Model = nn.Model

// Func adapts a function to Model.
type Func = nn.Func

// Bindable is implemented by modules that hold a backend.
type Bindable = nn.Bindable

// Child is a named sub-module.
type Child = nn.Child

// Container is implemented by modules with sub-modules.
type Container = nn.Container

// NamedParameter is a parameter with its path from the root module.
type NamedParameter = nn.NamedParameter

// NamedParameters lists every parameter reachable from root.
//
// Own parameters come first, then children in order. Each parameter appears
// once, under the first path it is reached by.
func NamedParameters(root any) []NamedParameter {
	return nn.NamedParameters(root)
}
