package operators

import (
	"fmt"
	"sort"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// registerShapeOps adds shape manipulation operators to the registry.
func (r *Registry) registerShapeOps() {
	r.Register("Reshape", handleReshape)
	r.Register("Transpose", handleTranspose)
	r.Register("Squeeze", handleSqueeze)
	r.Register("Unsqueeze", handleUnsqueeze)
	r.Register("Concat", handleConcat)
	r.Register("Slice", handleSlice)
	r.Register("Tile", handleTile)
}

// handleReshape reads the target shape from the second input (opset 5) or the
// shape attribute. A 0 copies the input dimension.
func handleReshape(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 2); err != nil {
		return nil, err
	}
	x := inputs[0]
	dims := axesFrom(node, inputs, 1, "shape")
	if dims == nil {
		return nil, fmt.Errorf("Reshape: no target shape")
	}

	shape := make(tensor.Shape, len(dims))
	for i, d := range dims {
		if d == 0 {
			if i >= x.Rank() {
				return nil, fmt.Errorf("Reshape: dimension %d copies a missing input dimension", i)
			}
			d = x.Shape()[i]
		}
		shape[i] = d
	}
	return one(ctx.Backend.Reshape(x, shape))
}

func handleTranspose(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 1); err != nil {
		return nil, err
	}
	perm := toInts(GetAttrInts(node, "perm"))
	if perm == nil {
		return one(ctx.Backend.Transpose(inputs[0]))
	}
	return one(ctx.Backend.Transpose(inputs[0], ops.Axes(perm...)))
}

func handleSqueeze(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 2); err != nil {
		return nil, err
	}
	axes := axesFrom(node, inputs, 1, "axes")
	if len(axes) == 0 {
		return one(ctx.Backend.Squeeze(inputs[0]))
	}
	return one(ctx.Backend.Squeeze(inputs[0], ops.Axis(axes...)))
}

// handleUnsqueeze inserts the axes in ascending order; negative axes count
// from the end of the output shape.
func handleUnsqueeze(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 2); err != nil {
		return nil, err
	}
	x := inputs[0]
	axes := axesFrom(node, inputs, 1, "axes")
	if len(axes) == 0 {
		return nil, fmt.Errorf("Unsqueeze: no axes")
	}

	rank := x.Rank() + len(axes)
	norm := make([]int, len(axes))
	for i, a := range axes {
		if a < 0 {
			a += rank
		}
		if a < 0 || a >= rank {
			return nil, fmt.Errorf("Unsqueeze: axis %d out of range for output rank %d", axes[i], rank)
		}
		norm[i] = a
	}
	sort.Ints(norm)

	for _, a := range norm {
		x = ctx.Backend.ExpandDims(x, a)
	}
	return one(x)
}

func handleConcat(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, len(inputs)); err != nil {
		return nil, err
	}
	if !HasAttr(node, "axis") {
		return nil, fmt.Errorf("Concat: axis attribute is required")
	}
	axis := int(GetAttrInt(node, "axis", 0))
	return one(ctx.Backend.Concat(inputs, ops.Axis(axis)))
}

// handleSlice reads starts, ends, axes and steps from attributes before opset
// 10 and from inputs after. Only positive steps are supported.
func handleSlice(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 1, 5); err != nil {
		return nil, err
	}
	x := inputs[0]

	var starts, ends, axes, steps []int
	if ctx.Opset < 10 {
		starts = toInts(GetAttrInts(node, "starts"))
		ends = toInts(GetAttrInts(node, "ends"))
		axes = toInts(GetAttrInts(node, "axes"))
	} else {
		if err := arity(node, inputs, 3, 5); err != nil {
			return nil, err
		}
		starts = axesFrom(node, inputs, 1, "")
		ends = axesFrom(node, inputs, 2, "")
		axes = axesFrom(node, inputs, 3, "")
		steps = axesFrom(node, inputs, 4, "")
	}
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("Slice: %d starts for %d ends", len(starts), len(ends))
	}
	if axes == nil {
		for i := range starts {
			axes = append(axes, i)
		}
	}
	if len(axes) != len(starts) || (steps != nil && len(steps) != len(starts)) {
		return nil, fmt.Errorf("Slice: starts, ends, axes and steps differ in length")
	}

	idx := make([]ops.Index, x.Rank())
	for i := range idx {
		idx[i] = ops.All()
	}
	for i, a := range axes {
		na, err := x.Shape().NormalizeAxis(a)
		if err != nil {
			return nil, fmt.Errorf("Slice: %w", err)
		}
		step := 1
		if steps != nil {
			step = steps[i]
		}
		if step < 1 {
			return nil, fmt.Errorf("Slice: step %d is not supported", step)
		}
		idx[na] = ops.Range(starts[i], ends[i]).WithStep(step)
	}
	return one(ctx.Backend.GetItem(x, idx...))
}

func handleTile(ctx *Context, node *Node, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := arity(node, inputs, 2, 2); err != nil {
		return nil, err
	}
	reps := toInts(inputs[1].Int64s())
	if len(reps) != inputs[0].Rank() {
		return nil, fmt.Errorf("Tile: %d repeats for rank %d", len(reps), inputs[0].Rank())
	}
	return one(ctx.Backend.Tile(inputs[0], reps...))
}
