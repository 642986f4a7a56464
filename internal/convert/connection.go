package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

func registerConnection(r *Registry) {
	r.Register(ops.OpLinear, Converter{Since: 7, Tensors: 3, Fn: convertLinear})
	r.Register(ops.OpConvolution2D, Converter{Since: 1, Tensors: 3, Fn: convertConvolution2D})
}

// convertLinear emits Gemm with a transposed weight when there is a bias and
// MatMul against Transpose(W) otherwise. Inputs of rank above 2 are
// flattened to [batch, -1] first.
func convertLinear(c *Context) ([]string, error) {
	if n := c.Args.Int("n_batch_axes"); n != 1 {
		return nil, c.Unsupported("n_batch_axes=%d, only 1 is supported", n)
	}

	x := c.In("x")
	if t := c.Tensor("x"); t.Rank() != 2 {
		shape := c.GB.ConstInt64s(int64(t.Shape()[0]), -1)
		x = c.Op("Reshape", []string{x, shape})
	}

	if b := c.In("b"); b != "" {
		return one(c.Op("Gemm", []string{x, c.In("W"), b},
			onnx.AttrFloat("alpha", 1),
			onnx.AttrFloat("beta", 1),
			onnx.AttrInt("transA", 0),
			onnx.AttrInt("transB", 1),
		))
	}
	wt := c.Op("Transpose", []string{c.In("W")}, onnx.AttrInts("perm", 1, 0))
	return one(c.Op("MatMul", []string{x, wt}))
}

func convertConvolution2D(c *Context) ([]string, error) {
	if c.Args.Bool("cover_all") {
		return nil, c.Unsupported("cover_all=true has no ONNX equivalent")
	}
	w := c.Tensor("W")
	if w.Rank() != 4 {
		return nil, c.Unsupported("kernel of rank %d, want 4", w.Rank())
	}
	pad := c.Args.Pair("pad")
	stride := c.Args.Pair("stride")
	dilate := c.Args.Pair("dilate")

	inputs := []string{c.In("x"), c.In("W")}
	if b := c.In("b"); b != "" {
		inputs = append(inputs, b)
	}
	return one(c.Op("Conv", inputs,
		onnx.AttrInts("kernel_shape", onnx.Ints64(w.Shape()[2:])...),
		onnx.AttrInts("pads", int64(pad[0]), int64(pad[1]), int64(pad[0]), int64(pad[1])),
		onnx.AttrInts("strides", int64(stride[0]), int64(stride[1])),
		onnx.AttrInts("dilations", int64(dilate[0]), int64(dilate[1])),
		onnx.AttrInt("group", int64(c.Args.Int("groups"))),
	))
}
