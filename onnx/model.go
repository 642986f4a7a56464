// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package onnx

import (
	internalonnx "github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/ops"
	"github.com/born-ml/onnxtrace/tensor"
)

// Model is a loaded ONNX model that can be evaluated.
//
// The evaluator covers the operators the exporter emits. It exists to check
// exports and is not tuned for speed.
type Model interface {
	// Run evaluates the model with inputs in graph input order.
	Run(inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error)

	// ForwardNamed evaluates the model with inputs keyed by graph input
	// name and returns outputs keyed by graph output name.
	ForwardNamed(inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error)

	// InputNames lists the graph inputs that are not initializers.
	InputNames() []string

	// OutputNames lists the graph outputs.
	OutputNames() []string

	// OpsetVersion returns the opset imported for the default domain.
	OpsetVersion() int64

	// Metadata returns producer_name, producer_version, domain and the
	// model's metadata_props.
	Metadata() map[string]string
}

// LoadOptions selects strict operator checking and custom handlers.
type LoadOptions = internalonnx.LoadOptions

// DefaultLoadOptions returns the default options: strict mode, which fails
// on unsupported operators at load time.
func DefaultLoadOptions() LoadOptions {
	return internalonnx.DefaultLoadOptions()
}

// Load reads an ONNX file and prepares it for evaluation on be.
//
// Example:
//
//	model, err := onnx.Load("model.onnx", cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := model.Run(x)
func Load(path string, be ops.Backend, opts ...LoadOptions) (Model, error) {
	m, err := internalonnx.Load(path, be, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFromBytes loads an ONNX model from raw bytes, such as Result.Bytes.
func LoadFromBytes(data []byte, be ops.Backend, opts ...LoadOptions) (Model, error) {
	m, err := internalonnx.LoadFromBytes(data, be, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ModelInfo is a summary of a model file: graph name, opset, producer,
// inputs, outputs and operator counts.
type ModelInfo = internalonnx.ModelInfo

// GetModelInfo reads path and summarizes the model.
func GetModelInfo(path string) (*ModelInfo, error) {
	return internalonnx.GetModelInfo(path)
}

// ListSupportedOps returns the operators the evaluator supports, sorted.
func ListSupportedOps() []string {
	return internalonnx.ListSupportedOps()
}
