package cpu

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// expandEllipsis replaces an ellipsis with full slices so that every input axis
// is addressed by at most one index.
func expandEllipsis(idx []ops.Index, rank int) []ops.Index {
	used, ellipsis := 0, -1
	for i, ix := range idx {
		switch ix.Kind {
		case ops.IndexNewAxis:
		case ops.IndexEllipsis:
			if ellipsis >= 0 {
				panic("get_item: an index can only have a single ellipsis")
			}
			ellipsis = i
		default:
			used++
		}
	}
	if used > rank {
		panic(fmt.Sprintf("get_item: too many indices (%d) for rank %d", used, rank))
	}
	if ellipsis < 0 {
		return idx
	}
	out := append([]ops.Index(nil), idx[:ellipsis]...)
	for i := 0; i < rank-used; i++ {
		out = append(out, ops.All())
	}
	return append(out, idx[ellipsis+1:]...)
}

// GetItem implements x[slices...] with NumPy semantics for integers, slices
// with positive steps, new axes, an ellipsis and a single integer list.
func (cpu *CPUBackend) GetItem(x *tensor.RawTensor, slices ...ops.Index) *tensor.RawTensor {
	shape := x.Shape()
	rank := len(shape)
	idx := expandEllipsis(slices, rank)

	sels := make([][]int, rank)
	var outShape tensor.Shape
	var outAxes []int // input axis feeding each output axis, -1 for new axes
	axis, lists := 0, 0
	for _, ix := range idx {
		if ix.Kind == ops.IndexNewAxis {
			outShape = append(outShape, 1)
			outAxes = append(outAxes, -1)
			continue
		}
		n := shape[axis]
		switch ix.Kind {
		case ops.IndexInt:
			i := ix.Int
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				panic(fmt.Sprintf("get_item: index %d out of bounds for axis %d with size %d", ix.Int, axis, n))
			}
			sels[axis] = []int{i}
			axis++
			continue
		case ops.IndexSlice:
			start, stop, step := ix.ResolveSlice(n)
			if step <= 0 {
				panic(fmt.Sprintf("get_item: slice step must be positive, got %d", step))
			}
			for i := start; i < stop; i += step {
				sels[axis] = append(sels[axis], i)
			}
		case ops.IndexList:
			lists++
			if lists > 1 {
				panic("get_item: more than one integer list is not supported")
			}
			for _, i := range ix.Indices {
				if i < 0 {
					i += n
				}
				if i < 0 || i >= n {
					panic(fmt.Sprintf("get_item: index %d out of bounds for axis %d with size %d", i, axis, n))
				}
				sels[axis] = append(sels[axis], i)
			}
		}
		outShape = append(outShape, len(sels[axis]))
		outAxes = append(outAxes, axis)
		axis++
	}
	for ; axis < rank; axis++ {
		sels[axis] = make([]int, shape[axis])
		for i := range sels[axis] {
			sels[axis][i] = i
		}
		outShape = append(outShape, shape[axis])
		outAxes = append(outAxes, axis)
	}
	if outShape == nil {
		outShape = tensor.Shape{}
	}

	vals := x.Float64s()
	inStrides, outStrides := shape.ComputeStrides(), outShape.ComputeStrides()
	out := make([]float64, outShape.NumElements())
	coords := make([]int, len(outShape))
	for i := range out {
		unravel(i, outStrides, coords)
		src := 0
		for a := 0; a < rank; a++ {
			if len(sels[a]) == 1 {
				src += sels[a][0] * inStrides[a]
			}
		}
		for d, a := range outAxes {
			if a >= 0 && len(sels[a]) != 1 {
				src += sels[a][coords[d]] * inStrides[a]
			}
		}
		out[i] = vals[src]
	}
	return newResult("get_item", outShape, x.DType(), out)
}
