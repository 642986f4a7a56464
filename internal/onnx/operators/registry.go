package operators

import (
	"fmt"
	"sort"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// OpHandler evaluates a node and returns its output tensors.
type OpHandler func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Context carries the backend and the model's opset to handlers.
type Context struct {
	Backend ops.Backend
	Opset   int64
}

// Registry maps ONNX operator types to handler functions.
type Registry struct {
	handlers map[string]OpHandler
}

// NewRegistry creates a registry with all supported operators.
func NewRegistry() *Registry {
	r := &Registry{
		handlers: make(map[string]OpHandler),
	}

	r.registerMathOps()
	r.registerActivations()
	r.registerNNOps()
	r.registerShapeOps()
	r.registerUtilityOps()

	return r
}

// Register adds or replaces an operator handler.
func (r *Registry) Register(opType string, handler OpHandler) {
	r.handlers[opType] = handler
}

// Get returns the handler for an operator type.
func (r *Registry) Get(opType string) (OpHandler, bool) {
	h, ok := r.handlers[opType]
	return h, ok
}

// Execute runs the handler of node.OpType. Backend kernels panic on invalid
// arguments; the panic is returned as an error.
func (r *Registry) Execute(ctx *Context, node *Node, inputs []*tensor.RawTensor) (outs []*tensor.RawTensor, err error) {
	handler, ok := r.handlers[node.OpType]
	if !ok {
		return nil, fmt.Errorf("unsupported operator: %s", node.OpType)
	}
	defer func() {
		if p := recover(); p != nil {
			outs, err = nil, fmt.Errorf("%s: %v", node.OpType, p)
		}
	}()
	return handler(ctx, node, inputs)
}

// SupportedOps returns the registered operator types, sorted.
func (r *Registry) SupportedOps() []string {
	out := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

func one(t *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{t}, nil
}

func arity(node *Node, inputs []*tensor.RawTensor, lo, hi int) error {
	if len(inputs) < lo || len(inputs) > hi {
		if lo == hi {
			return fmt.Errorf("%s requires %d inputs, got %d", node.OpType, lo, len(inputs))
		}
		return fmt.Errorf("%s requires %d to %d inputs, got %d", node.OpType, lo, hi, len(inputs))
	}
	for i := 0; i < lo; i++ {
		if inputs[i] == nil {
			return fmt.Errorf("%s: input %d is missing", node.OpType, i)
		}
	}
	return nil
}

// scalarLike returns a rank-0 tensor of x's dtype.
func scalarLike(x *tensor.RawTensor, v float64) *tensor.RawTensor {
	t, err := tensor.Full(tensor.Shape{}, x.DType(), v)
	if err != nil {
		panic(err.Error())
	}
	return t
}
