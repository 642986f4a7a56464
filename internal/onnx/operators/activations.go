package operators

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// registerActivations adds activation functions to the registry.
func (r *Registry) registerActivations() {
	r.Register("Relu", handleUnary(ops.Backend.ReLU))
	r.Register("Sigmoid", handleUnary(ops.Backend.Sigmoid))
	r.Register("Tanh", handleUnary(ops.Backend.Tanh))
	r.Register("Softplus", handleUnary(func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor {
		return be.Softplus(x)
	}))
	r.Register("HardSigmoid", handleHardSigmoid)
	r.Register("LeakyRelu", handleLeakyRelu)
	r.Register("Elu", handleElu)
	r.Register("Clip", handleClip)
	r.Register("Softmax", handleSoftmax(ops.Backend.Softmax))
	r.Register("LogSoftmax", handleSoftmax(ops.Backend.LogSoftmax))
}

// handleHardSigmoid computes max(0, min(1, alpha*x + beta)).
func handleHardSigmoid(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	be, x := ctx.Backend, inputs[0]
	alpha := GetAttrFloat(node, "alpha", 0.2)
	beta := GetAttrFloat(node, "beta", 0.5)
	if alpha == 0.2 && beta == 0.5 {
		return one(be.HardSigmoid(x))
	}
	y := be.AddConstant(be.MulConstant(x, float64(alpha)), float64(beta))
	y = be.Minimum(be.Maximum(y, scalarLike(x, 0)), scalarLike(x, 1))
	return one(y)
}

func handleLeakyRelu(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	alpha := GetAttrFloat(node, "alpha", 0.01)
	return one(ctx.Backend.LeakyReLU(inputs[0], ops.Slope(float64(alpha))))
}

func handleElu(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	alpha := GetAttrFloat(node, "alpha", 1)
	return one(ctx.Backend.ELU(inputs[0], ops.Alpha(float64(alpha))))
}

// handleClip reads its bounds from attributes before opset 11 and from
// optional inputs after.
func handleClip(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 3); err != nil {
		return nil, err
	}
	be, x := ctx.Backend, inputs[0]

	var lo, hi *tensor.RawTensor
	if ctx.Opset < 11 {
		if HasAttr(node, "min") {
			lo = scalarLike(x, float64(GetAttrFloat(node, "min", 0)))
		}
		if HasAttr(node, "max") {
			hi = scalarLike(x, float64(GetAttrFloat(node, "max", 0)))
		}
	} else {
		if len(inputs) > 1 {
			lo = inputs[1]
		}
		if len(inputs) > 2 {
			hi = inputs[2]
		}
	}

	y := x
	if lo != nil {
		y = be.Maximum(y, lo)
	}
	if hi != nil {
		y = be.Minimum(y, hi)
	}
	return one(y)
}

// handleSoftmax applies Softmax or LogSoftmax. Before opset 13 the input is
// coerced to 2-D around axis (default 1); from 13 the function runs along
// axis (default -1).
func handleSoftmax(fn func(be ops.Backend, x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor) OpHandler {
	return func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if err := arity(node, inputs, 1, 1); err != nil {
			return nil, err
		}
		be, x := ctx.Backend, inputs[0]

		if ctx.Opset >= 13 {
			axis := GetAttrInt(node, "axis", -1)
			return one(fn(be, x, ops.Axis(int(axis))))
		}

		axis, err := x.Shape().NormalizeAxis(int(GetAttrInt(node, "axis", 1)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.OpType, err)
		}
		outer := tensor.Shape(x.Shape()[:axis]).NumElements()
		flat := be.Reshape(x, tensor.Shape{outer, -1})
		return one(be.Reshape(fn(be, flat, ops.Axis(1)), x.Shape()))
	}
}
