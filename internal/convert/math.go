package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func registerMath(r *Registry) {
	for op, kind := range map[ops.OpID]string{
		ops.OpAdd: "Add",
		ops.OpSub: "Sub",
		ops.OpMul: "Mul",
		ops.OpDiv: "Div",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 2, Fn: suffixBroadcast(kind)})
		r.Register(op, Converter{Since: 7, Tensors: 2, Fn: elementwise(kind)})
	}

	// Max and Min broadcast from 8 and take integers from 12.
	for op, kind := range map[ops.OpID]string{
		ops.OpMaximum: "Max",
		ops.OpMinimum: "Min",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 2, Fn: typed(tensor.DataType.IsFloat, 12, sameShape(kind))})
		r.Register(op, Converter{Since: 8, Tensors: 2, Fn: typed(tensor.DataType.IsFloat, 12, elementwise(kind))})
		r.Register(op, Converter{Since: 12, Tensors: 2, Fn: elementwise(kind)})
	}

	// Greater and Less take integers from 9.
	for op, kind := range map[ops.OpID]string{
		ops.OpGreater: "Greater",
		ops.OpLess:    "Less",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 2, Fn: typed(tensor.DataType.IsFloat, 9, suffixBroadcast(kind))})
		r.Register(op, Converter{Since: 7, Tensors: 2, Fn: typed(tensor.DataType.IsFloat, 9, elementwise(kind))})
		r.Register(op, Converter{Since: 9, Tensors: 2, Fn: elementwise(kind)})
	}

	// Equal takes floats from 11.
	r.Register(ops.OpEqual, Converter{Since: 1, Tensors: 2, Fn: typed(equalType, 11, suffixBroadcast("Equal"))})
	r.Register(ops.OpEqual, Converter{Since: 7, Tensors: 2, Fn: typed(equalType, 11, elementwise("Equal"))})
	r.Register(ops.OpEqual, Converter{Since: 11, Tensors: 2, Fn: elementwise("Equal")})

	for op, kind := range map[ops.OpID]string{
		ops.OpNeg:  "Neg",
		ops.OpExp:  "Exp",
		ops.OpLog:  "Log",
		ops.OpSqrt: "Sqrt",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 1, Fn: elementwise(kind)})
	}

	for op, kind := range map[ops.OpID]string{
		ops.OpAddConstant: "Add",
		ops.OpSubConstant: "Sub",
		ops.OpMulConstant: "Mul",
		ops.OpDivConstant: "Div",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 1, Fn: withConstant(kind)})
	}

	r.Register(ops.OpMatMul, Converter{Since: 1, Tensors: 2, Fn: convertMatMul})
}

// elementwise maps the tensor arguments one to one onto a node's inputs.
func elementwise(kind string) Func {
	return func(c *Context) ([]string, error) {
		return one(c.Op(kind, c.Inputs()))
	}
}

// withConstant converts x <op> value, with value as a scalar of x's type.
func withConstant(kind string) Func {
	return func(c *Context) ([]string, error) {
		x := c.Tensor("x")
		k := c.GB.ConstScalar(x.DType(), c.Args.Float("value"))
		var attrs []onnx.AttributeProto
		if c.Opset() < 7 && x.Rank() > 0 {
			attrs = append(attrs, onnx.AttrInt("broadcast", 1))
		}
		return one(c.Op(kind, []string{c.In("x"), k}, attrs...))
	}
}

// suffixBroadcast converts a binary op for opsets before 7, where the second
// operand may only broadcast as a trailing suffix of the first, and only
// with broadcast=1.
func suffixBroadcast(kind string) Func {
	return func(c *Context) ([]string, error) {
		a, b := argShape(c, 0), argShape(c, 1)
		if a.Equal(b) {
			return one(c.Op(kind, c.Inputs()))
		}
		if len(b) > len(a) || !a[len(a)-len(b):].Equal(b) {
			return nil, c.Unsupported("broadcasting %v with %v needs opset 7", a, b)
		}
		return one(c.Op(kind, c.Inputs(), onnx.AttrInt("broadcast", 1)))
	}
}

// sameShape converts a binary op that does not broadcast.
func sameShape(kind string) Func {
	return func(c *Context) ([]string, error) {
		if a, b := argShape(c, 0), argShape(c, 1); !a.Equal(b) {
			return nil, c.Unsupported("broadcasting %v with %v needs opset 8", a, b)
		}
		return one(c.Op(kind, c.Inputs()))
	}
}

// typed guards fn with the input types an older opset accepts. Other types
// need opset since.
func typed(accept func(tensor.DataType) bool, since int64, fn Func) Func {
	return func(c *Context) ([]string, error) {
		for i := range c.Args.Len() {
			if t, ok := c.Args.At(i).(*tensor.RawTensor); ok && t != nil && !accept(t.DType()) {
				return nil, c.Unsupported("%s inputs need opset %d", t.DType(), since)
			}
		}
		return fn(c)
	}
}

func equalType(dt tensor.DataType) bool {
	return dt == tensor.Bool || dt == tensor.Int32 || dt == tensor.Int64
}

// argShape is the shape of the i-th argument; scalars are rank 0.
func argShape(c *Context, i int) tensor.Shape {
	if t, ok := c.Args.At(i).(*tensor.RawTensor); ok && t != nil {
		return t.Shape()
	}
	return tensor.Shape{}
}

func convertMatMul(c *Context) ([]string, error) {
	a, b := c.In("a"), c.In("b")
	if c.Args.Bool("transa") {
		a = c.Op("Transpose", []string{a}, swapLast(c.Tensor("a").Rank()))
	}
	if c.Args.Bool("transb") {
		b = c.Op("Transpose", []string{b}, swapLast(c.Tensor("b").Rank()))
	}
	return one(c.Op("MatMul", []string{a, b}))
}
