package convert

import (
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

func registerPooling(r *Registry) {
	r.Register(ops.OpMaxPooling2D, Converter{Since: 1, Tensors: 1, Fn: convertMaxPooling2D})
	r.Register(ops.OpAveragePooling2D, Converter{Since: 7, Tensors: 1, Fn: convertAveragePooling2D})
}

// window reads ksize, stride (defaulting to ksize) and pad.
func window(c *Context) (k, s, p [2]int) {
	k = c.Args.Pair("ksize")
	s = k
	if !c.Args.IsNone("stride") {
		s = c.Args.Pair("stride")
	}
	p = c.Args.Pair("pad")
	return k, s, p
}

// convertMaxPooling2D translates cover_all, which lets the last window run
// past the input, into extra padding at the end of each axis. That only
// works while the extra padding stays inside one window.
func convertMaxPooling2D(c *Context) ([]string, error) {
	if c.Args.Bool("return_indices") {
		return nil, c.Unsupported("return_indices=true has no ONNX equivalent")
	}
	k, s, p := window(c)
	pads := []int64{int64(p[0]), int64(p[1]), int64(p[0]), int64(p[1])}
	if c.Args.Bool("cover_all") {
		for i := range 2 {
			extra := p[i] + s[i] - 1
			if k[i] <= extra {
				return nil, c.Unsupported("cover_all with ksize %d, stride %d and pad %d on axis %d: padding would exceed the window",
					k[i], s[i], p[i], i)
			}
			pads[2+i] = int64(extra)
		}
	}
	return one(c.Op("MaxPool", []string{c.In("x")},
		onnx.AttrInts("kernel_shape", int64(k[0]), int64(k[1])),
		onnx.AttrInts("pads", pads...),
		onnx.AttrInts("strides", int64(s[0]), int64(s[1])),
	))
}

func convertAveragePooling2D(c *Context) ([]string, error) {
	if v := c.Args.Float("pad_value"); v != 0 {
		return nil, c.Unsupported("pad_value=%g, padding is always zero in ONNX", v)
	}
	k, s, p := window(c)
	return one(c.Op("AveragePool", []string{c.In("x")},
		onnx.AttrInts("kernel_shape", int64(k[0]), int64(k[1])),
		onnx.AttrInts("pads", int64(p[0]), int64(p[1]), int64(p[0]), int64(p[1])),
		onnx.AttrInts("strides", int64(s[0]), int64(s[1])),
		onnx.AttrInt("count_include_pad", 1),
	))
}
