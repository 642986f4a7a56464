package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

func registerIndexing(r *Registry) {
	r.Register(ops.OpGetItem, Converter{Since: 1, Tensors: 1, Fn: convertGetItem})
}

// expandEllipsis replaces an ellipsis with as many full slices as the
// other indices leave unaddressed.
func expandEllipsis(c *Context, idx []ops.Index, rank int) ([]ops.Index, error) {
	used, at := 0, -1
	for i, ix := range idx {
		switch ix.Kind {
		case ops.IndexNewAxis:
		case ops.IndexEllipsis:
			if at >= 0 {
				return nil, c.Unsupported("more than one ellipsis")
			}
			at = i
		default:
			used++
		}
	}
	if used > rank {
		return nil, c.Unsupported("%d indices for rank %d", used, rank)
	}
	if at < 0 {
		return idx, nil
	}
	out := append([]ops.Index(nil), idx[:at]...)
	for range rank - used {
		out = append(out, ops.All())
	}
	return append(out, idx[at+1:]...), nil
}

// convertGetItem emits one Slice covering every narrowed axis, a Squeeze
// for the axes indexed by an integer and an Unsqueeze for inserted axes.
func convertGetItem(c *Context) ([]string, error) {
	shape := c.Tensor("x").Shape()
	idx, err := expandEllipsis(c, c.Args.Indices("slices"), len(shape))
	if err != nil {
		return nil, err
	}

	var starts, ends, axes, squeeze, unsqueeze []int64
	axis, out := 0, 0
	for _, ix := range idx {
		switch ix.Kind {
		case ops.IndexNewAxis:
			unsqueeze = append(unsqueeze, int64(out))
			out++
			continue
		case ops.IndexInt:
			n := shape[axis]
			i := ix.Int
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				return nil, c.Unsupported("index %d out of bounds for axis %d with size %d", ix.Int, axis, n)
			}
			starts = append(starts, int64(i))
			ends = append(ends, int64(i+1))
			axes = append(axes, int64(axis))
			squeeze = append(squeeze, int64(axis))
		case ops.IndexSlice:
			if step := ix.StepOrOne(); step != 1 {
				return nil, c.Unsupported("slice step %d, only 1 is supported", step)
			}
			start, stop, _ := ix.ResolveSlice(shape[axis])
			if start != 0 || stop != shape[axis] {
				starts = append(starts, int64(start))
				ends = append(ends, int64(stop))
				axes = append(axes, int64(axis))
			}
			out++
		case ops.IndexList:
			return nil, c.Unsupported("advanced indexing with %v", ix)
		}
		axis++
	}

	x := c.In("x")
	if len(axes) == 0 && len(squeeze) == 0 && len(unsqueeze) == 0 {
		return one(c.Op("Identity", []string{x}))
	}
	if len(axes) > 0 {
		if c.Opset() >= 10 {
			x = c.Op("Slice", []string{x,
				c.GB.ConstInt64s(starts...),
				c.GB.ConstInt64s(ends...),
				c.GB.ConstInt64s(axes...),
			})
		} else {
			x = c.Op("Slice", []string{x},
				onnx.AttrInts("starts", starts...),
				onnx.AttrInts("ends", ends...),
				onnx.AttrInts("axes", axes...),
			)
		}
	}
	if len(squeeze) > 0 {
		x = axesOp(c, "Squeeze", x, squeeze)
	}
	if len(unsqueeze) > 0 {
		x = axesOp(c, "Unsqueeze", x, unsqueeze)
	}
	return one(x)
}

// axesOp emits Squeeze or Unsqueeze with explicit axes, passed as an
// attribute before opset 13 and as an input after.
func axesOp(c *Context, kind, x string, axes []int64) string {
	if c.Opset() >= 13 {
		return c.Op(kind, []string{x, c.GB.ConstInt64s(axes...)})
	}
	return c.Op(kind, []string{x}, onnx.AttrInts("axes", axes...))
}
