package operators

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// registerNNOps adds convolution, pooling and normalization operators.
func (r *Registry) registerNNOps() {
	r.Register("Conv", handleConv)
	r.Register("MaxPool", handleMaxPool)
	r.Register("AveragePool", handleAveragePool)
	r.Register("BatchNormalization", handleBatchNorm)
}

// window holds the spatial attributes of a 2-D convolution or pooling node.
type window struct {
	kernel  []int
	strides []int
	begin   []int // top, left padding
	end     []int // bottom, right padding
}

func windowOf(node *Node, kernel []int) (window, error) {
	w := window{kernel: kernel, strides: []int{1, 1}, begin: []int{0, 0}, end: []int{0, 0}}
	if len(kernel) != 2 {
		return w, fmt.Errorf("%s: only 2-D windows are supported, got kernel %v", node.OpType, kernel)
	}
	if s := GetAttrInts(node, "strides"); s != nil {
		if len(s) != 2 {
			return w, fmt.Errorf("%s: strides %v", node.OpType, s)
		}
		w.strides = toInts(s)
	}
	if p := GetAttrInts(node, "pads"); p != nil {
		if len(p) != 4 {
			return w, fmt.Errorf("%s: pads %v", node.OpType, p)
		}
		w.begin, w.end = toInts(p[:2]), toInts(p[2:])
	}
	if GetAttrInt(node, "ceil_mode", 0) != 0 {
		return w, fmt.Errorf("%s: ceil_mode is not supported", node.OpType)
	}
	return w, nil
}

func (w window) symmetric() bool {
	return w.begin[0] == w.end[0] && w.begin[1] == w.end[1]
}

func handleConv(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 2, 3); err != nil {
		return nil, err
	}
	x, wt := inputs[0], inputs[1]
	var b *tensor.RawTensor
	if len(inputs) == 3 {
		b = inputs[2]
	}
	if wt.Rank() != 4 {
		return nil, fmt.Errorf("Conv: weight must be 4-D, got %v", wt.Shape())
	}

	win, err := windowOf(node, wt.Shape()[2:])
	if err != nil {
		return nil, err
	}
	if !win.symmetric() {
		return nil, fmt.Errorf("Conv: asymmetric pads %v %v are not supported", win.begin, win.end)
	}
	dilate := 1
	if d := GetAttrInts(node, "dilations"); d != nil {
		if len(d) != 2 || d[0] != d[1] {
			return nil, fmt.Errorf("Conv: dilations %v are not supported", d)
		}
		dilate = int(d[0])
	}
	group := int(GetAttrInt(node, "group", 1))

	return one(ctx.Backend.Convolution2D(x, wt, b,
		ops.Stride(win.strides...), ops.Pad(win.begin...), ops.Dilate(dilate), ops.Groups(group)))
}

func poolKernel(node *Node) ([]int, error) {
	k := toInts(GetAttrInts(node, "kernel_shape"))
	if len(k) != 2 || k[0] != k[1] {
		return nil, fmt.Errorf("%s: kernel_shape %v, only square 2-D kernels are supported", node.OpType, k)
	}
	return k, nil
}

// handleMaxPool accepts symmetric pads and the extra end padding of stride-1
// that reproduces cover_all pooling.
func handleMaxPool(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	if len(node.Outputs) > 1 {
		return nil, fmt.Errorf("MaxPool: the indices output is not supported")
	}
	k, err := poolKernel(node)
	if err != nil {
		return nil, err
	}
	win, err := windowOf(node, k)
	if err != nil {
		return nil, err
	}

	coverAll := false
	switch {
	case win.symmetric():
	case win.end[0]-win.begin[0] == win.strides[0]-1 && win.end[1]-win.begin[1] == win.strides[1]-1:
		coverAll = true
	default:
		return nil, fmt.Errorf("MaxPool: pads %v %v are not supported", win.begin, win.end)
	}

	return one(ctx.Backend.MaxPooling2D(inputs[0], k[0],
		ops.Stride(win.strides...), ops.Pad(win.begin...), ops.CoverAll(coverAll)))
}

func handleAveragePool(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	k, err := poolKernel(node)
	if err != nil {
		return nil, err
	}
	win, err := windowOf(node, k)
	if err != nil {
		return nil, err
	}
	if !win.symmetric() {
		return nil, fmt.Errorf("AveragePool: asymmetric pads %v %v are not supported", win.begin, win.end)
	}
	padded := win.begin[0] != 0 || win.begin[1] != 0
	if padded && GetAttrInt(node, "count_include_pad", 0) == 0 {
		return nil, fmt.Errorf("AveragePool: count_include_pad=0 with padding is not supported")
	}

	return one(ctx.Backend.AveragePooling2D(inputs[0], k[0],
		ops.Stride(win.strides...), ops.Pad(win.begin...)))
}

// handleBatchNorm evaluates inference mode BatchNormalization.
func handleBatchNorm(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 5, 5); err != nil {
		return nil, err
	}
	if len(node.Outputs) > 1 {
		return nil, fmt.Errorf("BatchNormalization: training outputs are not supported")
	}
	eps := GetAttrFloat(node, "epsilon", 1e-5)
	return one(ctx.Backend.FixedBatchNormalization(inputs[0], inputs[1], inputs[2], inputs[3], inputs[4],
		ops.Eps(float64(eps))))
}
