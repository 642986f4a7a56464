package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func registerArray(r *Registry) {
	r.Register(ops.OpReshape, Converter{Since: 5, Tensors: 1, Fn: convertReshape})
	r.Register(ops.OpTranspose, Converter{Since: 1, Tensors: 1, Fn: convertTranspose})
	r.Register(ops.OpSqueeze, Converter{Since: 1, Tensors: 1, Fn: squeezeAxesAttr})
	r.Register(ops.OpSqueeze, Converter{Since: 13, Tensors: 1, Fn: squeezeAxesInput})
	r.Register(ops.OpExpandDims, Converter{Since: 1, Tensors: 1, Fn: unsqueeze(false)})
	r.Register(ops.OpExpandDims, Converter{Since: 13, Tensors: 1, Fn: unsqueeze(true)})
	r.Register(ops.OpConcat, Converter{Since: 1, Tensors: 1, Fn: convertConcat})
	r.Register(ops.OpTile, Converter{Since: 6, Tensors: 1, Fn: convertTile})
	r.Register(ops.OpCast, Converter{Since: 6, Tensors: 1, Fn: convertCast})
	r.Register(ops.OpCopy, Converter{Since: 1, Tensors: 1, Fn: elementwise("Identity")})
	r.Register(ops.OpSum, Converter{Since: 1, Tensors: 1, Fn: reduce("ReduceSum", false)})
	r.Register(ops.OpSum, Converter{Since: 13, Tensors: 1, Fn: reduce("ReduceSum", true)})
	r.Register(ops.OpMean, Converter{Since: 1, Tensors: 1, Fn: reduce("ReduceMean", false)})
}

// swapLast returns the permutation exchanging the last two axes.
func swapLast(rank int) onnx.AttributeProto {
	perm := make([]int64, rank)
	for i := range perm {
		perm[i] = int64(i)
	}
	if rank >= 2 {
		perm[rank-1], perm[rank-2] = perm[rank-2], perm[rank-1]
	}
	return onnx.AttrInts("perm", perm...)
}

// axesOf normalizes the integer list parameter p against shape. It returns
// nil when p is unset.
func axesOf(c *Context, p string, shape tensor.Shape) ([]int64, error) {
	raw := c.Args.Ints(p)
	if raw == nil {
		return nil, nil
	}
	axes := make([]int64, len(raw))
	for i, a := range raw {
		n, err := shape.NormalizeAxis(a)
		if err != nil {
			return nil, c.Unsupported("%v", err)
		}
		axes[i] = int64(n)
	}
	return axes, nil
}

func convertReshape(c *Context) ([]string, error) {
	shape := c.GB.ConstInt64s(onnx.Ints64(c.Args.Ints("shape"))...)
	return one(c.Op("Reshape", []string{c.In("x"), shape}))
}

func convertTranspose(c *Context) ([]string, error) {
	perm, err := axesOf(c, "axes", c.Tensor("x").Shape())
	if err != nil {
		return nil, err
	}
	if perm == nil {
		return one(c.Op("Transpose", []string{c.In("x")}))
	}
	return one(c.Op("Transpose", []string{c.In("x")}, onnx.AttrInts("perm", perm...)))
}

func squeezeAxesAttr(c *Context) ([]string, error) {
	axes, err := axesOf(c, "axis", c.Tensor("x").Shape())
	if err != nil {
		return nil, err
	}
	if axes == nil {
		return one(c.Op("Squeeze", []string{c.In("x")}))
	}
	return one(c.Op("Squeeze", []string{c.In("x")}, onnx.AttrInts("axes", axes...)))
}

func squeezeAxesInput(c *Context) ([]string, error) {
	axes, err := axesOf(c, "axis", c.Tensor("x").Shape())
	if err != nil {
		return nil, err
	}
	inputs := []string{c.In("x")}
	if axes != nil {
		inputs = append(inputs, c.GB.ConstInt64s(axes...))
	}
	return one(c.Op("Squeeze", inputs))
}

// unsqueeze converts expand_dims. The axis is counted on the output, which
// has one more dimension than x.
func unsqueeze(asInput bool) Func {
	return func(c *Context) ([]string, error) {
		out := append(c.Tensor("x").Shape().Clone(), 1)
		axis, err := out.NormalizeAxis(c.Args.Int("axis"))
		if err != nil {
			return nil, c.Unsupported("%v", err)
		}
		if asInput {
			return one(c.Op("Unsqueeze", []string{c.In("x"), c.GB.ConstInt64s(int64(axis))}))
		}
		return one(c.Op("Unsqueeze", []string{c.In("x")}, onnx.AttrInts("axes", int64(axis))))
	}
}

func convertConcat(c *Context) ([]string, error) {
	xs := c.Args.Tensors("xs")
	if len(xs) == 0 {
		return nil, c.Unsupported("no inputs")
	}
	axis, err := xs[0].Shape().NormalizeAxis(c.Args.Int("axis"))
	if err != nil {
		return nil, c.Unsupported("%v", err)
	}
	return one(c.Op("Concat", c.Ins("xs"), onnx.AttrInt("axis", int64(axis))))
}

// convertTile makes x and reps the same length first, as ONNX Tile does no
// broadcasting of its own.
func convertTile(c *Context) ([]string, error) {
	x := c.In("x")
	shape := c.Tensor("x").Shape()
	reps := c.Args.Ints("reps")

	for _, r := range reps {
		if r < 0 {
			return nil, c.Unsupported("negative repetition in %v", reps)
		}
	}
	if len(reps) > len(shape) {
		promoted := make([]int64, len(reps))
		for i := range promoted {
			promoted[i] = 1
		}
		copy(promoted[len(reps)-len(shape):], onnx.Ints64(shape))
		x = c.Op("Reshape", []string{x, c.GB.ConstInt64s(promoted...)})
	}
	for len(reps) < len(shape) {
		reps = append([]int{1}, reps...)
	}
	return one(c.Op("Tile", []string{x, c.GB.ConstInt64s(onnx.Ints64(reps)...)}))
}

func convertCast(c *Context) ([]string, error) {
	to, err := onnx.ElemType(c.Args.DataType("typ"))
	if err != nil {
		return nil, c.Unsupported("%v", err)
	}
	return one(c.Op("Cast", []string{c.In("x")}, onnx.AttrInt("to", int64(to))))
}

// reduce converts sum and mean. Without an axis every axis is reduced, which
// is also what ONNX does when axes are omitted.
func reduce(kind string, axesAsInput bool) Func {
	return func(c *Context) ([]string, error) {
		axes, err := axesOf(c, "axis", c.Tensor("x").Shape())
		if err != nil {
			return nil, err
		}
		keep := onnx.AttrInt("keepdims", 0)
		if c.Args.Bool("keepdims") {
			keep = onnx.AttrInt("keepdims", 1)
		}

		inputs := []string{c.In("x")}
		switch {
		case axes == nil:
			return one(c.Op(kind, inputs, keep))
		case axesAsInput:
			inputs = append(inputs, c.GB.ConstInt64s(axes...))
			return one(c.Op(kind, inputs, keep))
		default:
			return one(c.Op(kind, inputs, onnx.AttrInts("axes", axes...), keep))
		}
	}
}
