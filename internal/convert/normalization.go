package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

func registerNormalization(r *Registry) {
	r.Register(ops.OpFixedBatchNormalization, Converter{Since: 7, Tensors: 5, Fn: func(c *Context) ([]string, error) {
		if !c.Args.IsNone("axis") {
			return nil, c.Unsupported("explicit axis %v, only the channel axis is supported", c.Args.Get("axis"))
		}
		return one(c.Op("BatchNormalization", c.Inputs(), onnx.AttrFloat("epsilon", float32(c.Args.Float("eps")))))
	}})
	r.Register(ops.OpBatchNormalization, Converter{Since: 1, Tensors: 3, Fn: func(c *Context) ([]string, error) {
		return nil, c.Unsupported("training mode batch normalization cannot be exported, switch the layer to inference mode")
	}})
}
