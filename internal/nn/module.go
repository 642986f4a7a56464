// Package nn implements neural network layers for exportable models.
//
// This package provides building blocks for constructing networks:
//   - Module, Layer, Model: interfaces for components and exportable models
//   - Parameter: named weights and statistics
//   - Linear, Conv2D, BatchNorm: layers with parameters
//   - ReLU, Sigmoid, Tanh, MaxPool2D, AvgPool2D: parameter-free layers
//   - Sequential: container for stacking layers
//
// Layers keep the backend they were built with and call it in Forward. An
// exporter rebinds them to a recording backend through the Bindable interface
// and walks nested layers through Container.
package nn

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module interface {
	// Parameters returns the parameters owned directly by this module.
	// Parameters of child modules are reached through Container.
	Parameters() []*Parameter
}

// Layer is a module with a single input and a single output.
type Layer interface {
	Module
	Forward(x *tensor.RawTensor) *tensor.RawTensor
}

// Model is something that can be exported: it maps concrete inputs to
// outputs using the given backend. Layers it owns may use their own bound
// backend instead.
type Model interface {
	Call(be ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error)
}

// Func adapts a function to Model.
type Func func(be ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Call calls f.
func (f Func) Call(be ops.Backend, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return f(be, inputs...)
}

// Bindable is implemented by modules that hold a backend.
type Bindable interface {
	Backend() ops.Backend
	Bind(be ops.Backend)
}

// Child is a named sub-module.
type Child struct {
	Name   string
	Module any
}

// Container is implemented by modules with sub-modules.
type Container interface {
	Children() []Child
}

// NamedParameter is a parameter with its path from the root module,
// such as "/0/W".
type NamedParameter struct {
	Path  string
	Param *Parameter
}

// NamedParameters lists every parameter reachable from root, own parameters
// first, then children in order. Each parameter appears once.
func NamedParameters(root any) []NamedParameter {
	var out []NamedParameter
	seen := make(map[*Parameter]bool)
	var walk func(m any, prefix string)
	walk = func(m any, prefix string) {
		if mod, ok := m.(Module); ok {
			for _, p := range mod.Parameters() {
				if p == nil || seen[p] {
					continue
				}
				seen[p] = true
				out = append(out, NamedParameter{Path: prefix + "/" + p.Name(), Param: p})
			}
		}
		if c, ok := m.(Container); ok {
			for _, child := range c.Children() {
				walk(child.Module, prefix+"/"+child.Name)
			}
		}
	}
	walk(root, "")
	return out
}
