package operators

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ONNX data types (TensorProto.DataType) that can be cast to.
var castTypes = map[int64]tensor.DataType{
	1:  tensor.Float32,
	2:  tensor.Uint8,
	6:  tensor.Int32,
	7:  tensor.Int64,
	9:  tensor.Bool,
	10: tensor.Float16,
	11: tensor.Float64,
}

// registerUtilityOps adds constants, casts, reductions and Identity.
func (r *Registry) registerUtilityOps() {
	r.Register("Identity", handleIdentity)
	r.Register("Constant", handleConstant)
	r.Register("Cast", handleCast)
	r.Register("ReduceSum", handleReduce(ops.Backend.Sum))
	r.Register("ReduceMean", handleReduce(ops.Backend.Mean))
}

func handleIdentity(_ *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	return inputs, nil
}

func handleConstant(_ *Context, node *Node, _ []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := node.attr("value")
	if a == nil || a.T == nil {
		return nil, fmt.Errorf("Constant: only the value attribute is supported")
	}
	return one(a.T)
}

func handleCast(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	to := GetAttrInt(node, "to", 0)
	dt, ok := castTypes[to]
	if !ok {
		return nil, fmt.Errorf("Cast: unsupported target type %d", to)
	}
	return one(ctx.Backend.Cast(inputs[0], dt))
}

// handleReduce evaluates ReduceSum and ReduceMean. The axes come from the
// second input when present, as ReduceSum takes them from opset 13.
func handleReduce(fn func(be ops.Backend, x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor) OpHandler {
	return func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if err := arity(node, inputs, 1, 2); err != nil {
			return nil, err
		}
		opts := []ops.Arg{ops.KeepDims(GetAttrInt(node, "keepdims", 1) != 0)}
		if axes := axesFrom(node, inputs, 1, "axes"); len(axes) > 0 {
			opts = append(opts, ops.Axis(axes...))
		}
		return one(fn(ctx.Backend, inputs[0], opts...))
	}
}
