// Package convert maps recorded primitive calls to ONNX nodes.
//
// Each primitive has one or more converters, gated by the opset version they
// target. A converter receives the call's bound arguments, with its leading
// tensor arguments already resolved to graph value names, and appends nodes
// to a GraphBuilder. It returns the names of the values that stand for the
// call's results.
package convert

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
	"github.com/born-ml/onnxtrace/internal/trace"
)

// Func emits the nodes for one call.
type Func func(c *Context) ([]string, error)

// Converter is one version of a primitive's conversion.
type Converter struct {
	// Since is the first opset the converter targets.
	Since int64
	// Tensors is the number of leading parameters that are tensor valued and
	// resolved to value names before Fn runs. The rest are attributes.
	Tensors int
	Fn      Func
}

// Registry holds converters by primitive.
type Registry struct {
	convs map[ops.OpID][]Converter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{convs: make(map[ops.OpID][]Converter)}
}

// Default returns a new registry with every built-in converter.
func Default() *Registry {
	r := NewRegistry()
	registerMath(r)
	registerActivation(r)
	registerConnection(r)
	registerPooling(r)
	registerNormalization(r)
	registerArray(r)
	registerIndexing(r)
	registerCreation(r)
	return r
}

// Register adds a converter, replacing one with the same Since.
func (r *Registry) Register(op ops.OpID, conv Converter) {
	list := r.convs[op]
	for i := range list {
		if list[i].Since == conv.Since {
			list[i] = conv
			return
		}
	}
	list = append(list, conv)
	sort.Slice(list, func(i, j int) bool { return list[i].Since < list[j].Since })
	r.convs[op] = list
}

// Ops returns the registered primitives, sorted.
func (r *Registry) Ops() []ops.OpID {
	out := make([]ops.OpID, 0, len(r.convs))
	for op := range r.convs {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup selects the converter with the highest Since not above opset.
// An opset of zero selects the latest converter.
func (r *Registry) Lookup(op ops.OpID, opset int64) (Converter, error) {
	list := r.convs[op]
	if len(list) == 0 {
		return Converter{}, exporterr.Unsupported(string(op), "no converter registered")
	}
	if opset == 0 {
		return list[len(list)-1], nil
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Since <= opset {
			return list[i], nil
		}
	}
	return Converter{}, exporterr.Unsupported(string(op), "opset %d is older than the first supported opset %d", opset, list[0].Since)
}

// Resolver names the graph value of a tensor seen during tracing.
type Resolver func(t *tensor.RawTensor) string

// Convert emits the nodes for call into gb. Converter failures keep their
// class; a converter that panics is reported as an internal error.
func (r *Registry) Convert(gb *onnx.GraphBuilder, call *trace.Call, resolve Resolver) (outs []string, err error) {
	conv, err := r.Lookup(call.Op, gb.Opset())
	if err != nil {
		return nil, err
	}
	sig, ok := ops.Lookup(call.Op)
	if !ok {
		return nil, exporterr.Unsupported(string(call.Op), "no signature")
	}
	bound, err := sig.Bind(call.Positional(), call.Kwargs)
	if err != nil {
		return nil, errors.Wrap(exporterr.ErrInternal, err.Error())
	}

	defer func() {
		if p := recover(); p != nil {
			outs, err = nil, errors.Wrapf(exporterr.ErrInternal, "converter for %s panicked: %v", call.Op, p)
		}
	}()

	c := &Context{GB: gb, Call: call, Args: bound, names: make(map[string]any)}
	for i := 0; i < conv.Tensors && i < len(sig.Params); i++ {
		p := sig.Params[i].Name
		c.order = append(c.order, p)
		switch v := bound.At(i).(type) {
		case nil:
			c.names[p] = ""
		case *tensor.RawTensor:
			if v == nil {
				c.names[p] = ""
			} else {
				c.names[p] = resolve(v)
			}
		case []*tensor.RawTensor:
			ns := make([]string, len(v))
			for j, t := range v {
				ns[j] = resolve(t)
			}
			c.names[p] = ns
		default:
			// A scalar where a tensor is expected becomes a constant
			// of the first tensor argument's type.
			c.names[p] = gb.ConstScalar(c.peerType(), bound.Float(p))
		}
	}

	outs, err = conv.Fn(c)
	if err != nil {
		return nil, errors.WithMessagef(err, "converting %s", call)
	}
	return outs, nil
}

// Context is a converter's view of one call.
type Context struct {
	GB   *onnx.GraphBuilder
	Call *trace.Call
	Args *ops.Bound

	names map[string]any
	order []string
}

// Opset returns the target opset.
func (c *Context) Opset() int64 { return c.GB.Opset() }

// In returns the value name of tensor parameter p, or "" when it is nil.
func (c *Context) In(p string) string {
	n, ok := c.names[p].(string)
	if !ok {
		panic(fmt.Sprintf("%s: parameter %q is not a resolved tensor", c.Call.Op, p))
	}
	return n
}

// Inputs returns the names of the resolved single-tensor parameters in
// parameter order, skipping nil ones.
func (c *Context) Inputs() []string {
	var out []string
	for _, p := range c.order {
		if n, ok := c.names[p].(string); ok && n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Ins returns the value names of a tensor list parameter.
func (c *Context) Ins(p string) []string {
	ns, ok := c.names[p].([]string)
	if !ok {
		panic(fmt.Sprintf("%s: parameter %q is not a resolved tensor list", c.Call.Op, p))
	}
	return ns
}

// Tensor returns the traced value of tensor parameter p.
func (c *Context) Tensor(p string) *tensor.RawTensor { return c.Args.Tensor(p) }

// Result returns the traced i-th result of the call.
func (c *Context) Result(i int) *tensor.RawTensor { return c.Call.Outputs[i] }

// Op appends a node.
func (c *Context) Op(opType string, inputs []string, attrs ...onnx.AttributeProto) string {
	return c.GB.Op(opType, inputs, attrs...)
}

// Unsupported reports an argument combination the converter cannot express.
func (c *Context) Unsupported(format string, args ...any) error {
	return exporterr.Unsupported(string(c.Call.Op), format, args...)
}

func (c *Context) peerType() tensor.DataType {
	for i := 0; i < c.Args.Len(); i++ {
		switch v := c.Args.At(i).(type) {
		case *tensor.RawTensor:
			if v != nil {
				return v.DType()
			}
		case []*tensor.RawTensor:
			if len(v) > 0 {
				return v[0].DType()
			}
		}
	}
	return tensor.Float32
}

func one(name string) ([]string, error) { return []string{name}, nil }
