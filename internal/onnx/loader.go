package onnx

import (
	"errors"
	"fmt"

	"github.com/born-ml/onnxtrace/internal/onnx/operators"
	"github.com/born-ml/onnxtrace/internal/ops"
)

// LoadOptions configures model loading.
type LoadOptions struct {
	// StrictMode fails at load time on unsupported operators instead of at
	// the first evaluation of such a node.
	StrictMode bool

	// CustomOps adds or replaces operator handlers.
	CustomOps map[string]operators.OpHandler
}

// DefaultLoadOptions returns strict loading without custom operators.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{StrictMode: true}
}

func firstOr(opts []LoadOptions) LoadOptions {
	if len(opts) == 0 {
		return DefaultLoadOptions()
	}
	return opts[0]
}

// Load reads an ONNX file and prepares it for evaluation on be.
//
//	model, err := onnx.Load("model.onnx", cpu.New())
//	if err != nil {
//	    return err
//	}
//	outputs, err := model.Run(x)
func Load(path string, be ops.Backend, opts ...LoadOptions) (*Model, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return LoadFromProto(proto, be, firstOr(opts))
}

// LoadFromBytes is Load for a serialized model, such as the output of Marshal.
func LoadFromBytes(data []byte, be ops.Backend, opts ...LoadOptions) (*Model, error) {
	proto, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return LoadFromProto(proto, be, firstOr(opts))
}

// LoadFromProto prepares a parsed model for evaluation. The model is not
// copied and must not be modified afterwards.
func LoadFromProto(proto *ModelProto, be ops.Backend, opt LoadOptions) (*Model, error) {
	switch {
	case be == nil:
		return nil, errors.New("no backend to evaluate on")
	case proto.Graph == nil:
		return nil, errors.New("model has no graph")
	}

	registry := operators.NewRegistry()
	for opType, handler := range opt.CustomOps {
		registry.Register(opType, handler)
	}
	if opt.StrictMode {
		if missing := unsupportedOps(proto.Graph, registry); len(missing) > 0 {
			return nil, fmt.Errorf("unsupported operators: %v", missing)
		}
	}

	m := &Model{proto: proto, registry: registry, backend: be}
	if err := m.compile(); err != nil {
		return nil, fmt.Errorf("compile %q: %w", proto.Graph.Name, err)
	}
	return m, nil
}

// unsupportedOps lists the operator types of g without a handler, in order
// of first use.
func unsupportedOps(g *GraphProto, registry *operators.Registry) []string {
	var missing []string
	seen := make(map[string]bool)
	for i := range g.Nodes {
		op := g.Nodes[i].OpType
		if seen[op] {
			continue
		}
		seen[op] = true
		if _, ok := registry.Get(op); !ok {
			missing = append(missing, op)
		}
	}
	return missing
}

// ListSupportedOps returns the operator types the evaluator supports, sorted.
func ListSupportedOps() []string {
	return operators.NewRegistry().SupportedOps()
}
