package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

func registerActivation(r *Registry) {
	for op, kind := range map[ops.OpID]string{
		ops.OpReLU:    "Relu",
		ops.OpSigmoid: "Sigmoid",
		ops.OpTanh:    "Tanh",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 1, Fn: elementwise(kind)})
	}

	r.Register(ops.OpHardSigmoid, Converter{Since: 6, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		return one(c.Op("HardSigmoid", []string{c.In("x")},
			onnx.AttrFloat("alpha", 0.2), onnx.AttrFloat("beta", 0.5)))
	}})
	r.Register(ops.OpLeakyReLU, Converter{Since: 6, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		return one(c.Op("LeakyRelu", []string{c.In("x")}, onnx.AttrFloat("alpha", float32(c.Args.Float("slope")))))
	}})
	r.Register(ops.OpELU, Converter{Since: 6, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		return one(c.Op("Elu", []string{c.In("x")}, onnx.AttrFloat("alpha", float32(c.Args.Float("alpha")))))
	}})

	r.Register(ops.OpClippedReLU, Converter{Since: 6, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		return one(c.Op("Clip", []string{c.In("x")},
			onnx.AttrFloat("min", 0), onnx.AttrFloat("max", float32(c.Args.Float("z")))))
	}})
	r.Register(ops.OpClippedReLU, Converter{Since: 11, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		dt := c.Tensor("x").DType()
		lo := c.GB.ConstScalar(dt, 0)
		hi := c.GB.ConstScalar(dt, c.Args.Float("z"))
		return one(c.Op("Clip", []string{c.In("x"), lo, hi}))
	}})

	for op, kind := range map[ops.OpID]string{
		ops.OpSoftmax:    "Softmax",
		ops.OpLogSoftmax: "LogSoftmax",
	} {
		r.Register(op, Converter{Since: 1, Tensors: 1, Fn: softmax(kind, true)})
		r.Register(op, Converter{Since: 13, Tensors: 1, Fn: softmax(kind, false)})
	}

	r.Register(ops.OpSoftplus, Converter{Since: 1, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		if beta := c.Args.Float("beta"); beta != 1 {
			return nil, c.Unsupported("beta=%g, only beta=1 has an ONNX equivalent", beta)
		}
		return one(c.Op("Softplus", []string{c.In("x")}))
	}})
}

// softmax converts softmax and log_softmax. Before opset 13 the ONNX operators
// flatten the input to 2-D around axis, which matches only for the last axis.
func softmax(kind string, lastAxisOnly bool) Func {
	return func(c *Context) ([]string, error) {
		x := c.Tensor("x")
		axis, err := x.Shape().NormalizeAxis(c.Args.Int("axis"))
		if err != nil {
			return nil, c.Unsupported("%v", err)
		}
		if lastAxisOnly && axis != x.Rank()-1 {
			return nil, c.Unsupported("axis %d of a rank %d input needs opset 13", axis, x.Rank())
		}
		return one(c.Op(kind, []string{c.In("x")}, onnx.AttrInt("axis", int64(axis))))
	}
}
