// Package models holds the built-in models the CLI can export.
//
// Each model is built with a backend and a seed, so the same name and seed
// always give the same weights:
//
//	m, err := models.Build("mlp", cpu.New(), 42)
package models

import (
	"sort"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Entry describes a built-in model.
type Entry struct {
	Name string
	Doc  string
	// Inputs are example input shapes, used when a job does not declare any.
	Inputs []tensor.Shape
	build  func(be ops.Backend, seed uint64) nn.Model
}

var registry = map[string]Entry{}

func register(s Entry) { registry[s.Name] = s }

func init() {
	register(Entry{
		Name:   "mlp",
		Doc:    "two layer perceptron, 4 -> 16 -> 3 with ReLU",
		Inputs: []tensor.Shape{{2, 4}},
		build: func(be ops.Backend, seed uint64) nn.Model {
			return NewMLP(4, 16, 3, be, nn.NewRand(seed))
		},
	})
	register(Entry{
		Name:   "cnn",
		Doc:    "convolution, batch norm, ReLU and max pooling over 1x8x8 images, 10 classes",
		Inputs: []tensor.Shape{{2, 1, 8, 8}},
		build: func(be ops.Backend, seed uint64) nn.Model {
			return NewCNN(be, nn.NewRand(seed))
		},
	})
	register(Entry{
		Name:   "add",
		Doc:    "elementwise sum of two inputs",
		Inputs: []tensor.Shape{{2, 3}, {2, 3}},
		build:  func(ops.Backend, uint64) nn.Model { return Add },
	})
	register(Entry{
		Name:   "identity",
		Doc:    "returns its input",
		Inputs: []tensor.Shape{{2, 3}},
		build:  func(ops.Backend, uint64) nn.Model { return Identity },
	})
}

// Lookup returns the registry entry of a built-in model.
func Lookup(name string) (Entry, error) {
	s, ok := registry[name]
	if !ok {
		return Entry{}, exporterr.Config("unknown model %q, known models: %v", name, Names())
	}
	return s, nil
}

// Build creates a built-in model.
func Build(name string, be ops.Backend, seed uint64) (nn.Model, error) {
	s, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.build(be, seed), nil
}

// Names returns the built-in model names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
