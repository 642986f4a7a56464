package operators

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// registerMathOps adds arithmetic, comparison and matrix operators.
func (r *Registry) registerMathOps() {
	binary := map[string]func(be ops.Backend, x, y *tensor.RawTensor) *tensor.RawTensor{
		"Add":     ops.Backend.Add,
		"Sub":     ops.Backend.Sub,
		"Mul":     ops.Backend.Mul,
		"Div":     ops.Backend.Div,
		"Greater": ops.Backend.Greater,
		"Less":    ops.Backend.Less,
		"Equal":   ops.Backend.Equal,
	}
	for name, fn := range binary {
		r.Register(name, handleBinary(fn))
	}

	unary := map[string]func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor{
		"Neg":  ops.Backend.Neg,
		"Exp":  ops.Backend.Exp,
		"Log":  ops.Backend.Log,
		"Sqrt": ops.Backend.Sqrt,
	}
	for name, fn := range unary {
		r.Register(name, handleUnary(fn))
	}

	r.Register("Max", handleVariadic(ops.Backend.Maximum))
	r.Register("Min", handleVariadic(ops.Backend.Minimum))
	r.Register("MatMul", handleMatMul)
	r.Register("Gemm", handleGemm)
}

func handleBinary(fn func(be ops.Backend, x, y *tensor.RawTensor) *tensor.RawTensor) OpHandler {
	return func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if err := arity(node, inputs, 2, 2); err != nil {
			return nil, err
		}
		return one(fn(ctx.Backend, inputs[0], inputs[1]))
	}
}

func handleUnary(fn func(be ops.Backend, x *tensor.RawTensor) *tensor.RawTensor) OpHandler {
	return func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if err := arity(node, inputs, 1, 1); err != nil {
			return nil, err
		}
		return one(fn(ctx.Backend, inputs[0]))
	}
}

// handleVariadic folds Max and Min over all of their inputs.
func handleVariadic(fn func(be ops.Backend, x, y *tensor.RawTensor) *tensor.RawTensor) OpHandler {
	return func(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		if err := arity(node, inputs, 1, len(inputs)); err != nil {
			return nil, err
		}
		acc := inputs[0]
		for _, x := range inputs[1:] {
			acc = fn(ctx.Backend, acc, x)
		}
		return one(acc)
	}
}

func handleMatMul(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 2, 2); err != nil {
		return nil, err
	}
	return one(ctx.Backend.MatMul(inputs[0], inputs[1]))
}

// handleGemm implements Y = alpha*A'*B' + beta*C.
func handleGemm(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 2, 3); err != nil {
		return nil, err
	}
	be := ctx.Backend

	alpha := float64(GetAttrFloat(node, "alpha", 1))
	beta := float64(GetAttrFloat(node, "beta", 1))
	transA := GetAttrInt(node, "transA", 0) != 0
	transB := GetAttrInt(node, "transB", 0) != 0

	y := be.MatMul(inputs[0], inputs[1], ops.TransA(transA), ops.TransB(transB))
	if alpha != 1 {
		y = be.MulConstant(y, alpha)
	}
	if len(inputs) == 3 && inputs[2] != nil {
		c := inputs[2]
		if beta != 1 {
			c = be.MulConstant(c, beta)
		}
		y = be.Add(y, c)
	}
	return one(y)
}
