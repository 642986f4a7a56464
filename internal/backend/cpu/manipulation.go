package cpu

import (
	"fmt"
	"slices"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// resolveShape replaces a single -1 with the inferred dimension.
func resolveShape(op string, numElements int, shape tensor.Shape) tensor.Shape {
	out := shape.Clone()
	infer := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d < 0:
			panic(fmt.Sprintf("%s: invalid target shape %v", op, shape))
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || numElements%known != 0 {
			panic(fmt.Sprintf("%s: cannot infer dimension of %v for %d elements", op, shape, numElements))
		}
		out[infer] = numElements / known
	}
	if out.NumElements() != numElements {
		panic(fmt.Sprintf("%s: cannot reshape %d elements into %v", op, numElements, shape))
	}
	return out
}

// Reshape returns a copy of x with a new shape. One dimension may be -1.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := resolveShape("reshape", x.NumElements(), shape)
	return newResult("reshape", out, x.DType(), x.Float64s())
}

// Transpose permutes axes; without Axes the order is reversed.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	rank := x.Rank()
	perm := ops.MustBind(ops.OpTranspose, []any{x}, opts).Ints("axes")
	if perm == nil {
		perm = make([]int, rank)
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	}
	if len(perm) != rank {
		panic(fmt.Sprintf("transpose: axes %v do not match rank %d", perm, rank))
	}
	seen := make([]bool, rank)
	for i, p := range perm {
		np, err := x.Shape().NormalizeAxis(p)
		if err != nil || seen[np] {
			panic(fmt.Sprintf("transpose: invalid permutation %v", perm))
		}
		seen[np] = true
		perm[i] = np
	}

	inStrides := x.Shape().ComputeStrides()
	outShape := make(tensor.Shape, rank)
	for i, p := range perm {
		outShape[i] = x.Shape()[p]
	}
	outStrides := outShape.ComputeStrides()

	vals := x.Float64s()
	out := make([]float64, len(vals))
	coords := make([]int, rank)
	for i := range out {
		unravel(i, outStrides, coords)
		src := 0
		for d, p := range perm {
			src += coords[d] * inStrides[p]
		}
		out[i] = vals[src]
	}
	return newResult("transpose", outShape, x.DType(), out)
}

// Squeeze removes axes of size one; without Axis every such axis is removed.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	axes := ops.MustBind(ops.OpSqueeze, []any{x}, opts).Ints("axis")
	drop := make([]bool, x.Rank())
	if axes == nil {
		for i, d := range x.Shape() {
			drop[i] = d == 1
		}
	}
	for _, a := range axes {
		na, err := x.Shape().NormalizeAxis(a)
		if err != nil {
			panic(fmt.Sprintf("squeeze: %v", err))
		}
		if x.Shape()[na] != 1 {
			panic(fmt.Sprintf("squeeze: axis %d of %v has size %d", a, x.Shape(), x.Shape()[na]))
		}
		drop[na] = true
	}
	out := tensor.Shape{}
	for i, d := range x.Shape() {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return newResult("squeeze", out, x.DType(), x.Float64s())
}

// ExpandDims inserts an axis of size one at position axis.
func (cpu *CPUBackend) ExpandDims(x *tensor.RawTensor, axis int) *tensor.RawTensor {
	rank := x.Rank()
	if axis < 0 {
		axis += rank + 1
	}
	if axis < 0 || axis > rank {
		panic(fmt.Sprintf("expand_dims: axis out of range for shape %v", x.Shape()))
	}
	out := slices.Insert(x.Shape().Clone(), axis, 1)
	return newResult("expand_dims", out, x.DType(), x.Float64s())
}

// Concat joins tensors along an axis (1 by default).
func (cpu *CPUBackend) Concat(xs []*tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	if len(xs) == 0 {
		panic("concat: no inputs")
	}
	first := xs[0]
	axis, err := first.Shape().NormalizeAxis(ops.MustBind(ops.OpConcat, []any{xs}, opts).Int("axis"))
	if err != nil {
		panic(fmt.Sprintf("concat: %v", err))
	}

	outShape := first.Shape().Clone()
	outShape[axis] = 0
	for _, x := range xs {
		if x.DType() != first.DType() || x.Rank() != first.Rank() {
			panic(fmt.Sprintf("concat: incompatible inputs %v and %v", first, x))
		}
		for d := range outShape {
			if d != axis && x.Shape()[d] != first.Shape()[d] {
				panic(fmt.Sprintf("concat: shapes %v and %v differ outside axis %d", first.Shape(), x.Shape(), axis))
			}
		}
		outShape[axis] += x.Shape()[axis]
	}

	outer, total, inner := splitAxis(outShape, axis)
	out := make([]float64, outShape.NumElements())
	offset := 0
	for _, x := range xs {
		vals := x.Float64s()
		n := x.Shape()[axis]
		for o := 0; o < outer; o++ {
			copy(out[(o*total+offset)*inner:(o*total+offset+n)*inner], vals[o*n*inner:(o+1)*n*inner])
		}
		offset += n
	}
	return newResult("concat", outShape, first.DType(), out)
}

// Tile repeats x along each axis. Shorter reps are padded with leading ones;
// longer reps promote x with leading axes of size one.
func (cpu *CPUBackend) Tile(x *tensor.RawTensor, reps ...int) *tensor.RawTensor {
	rank := max(x.Rank(), len(reps))
	in := make(tensor.Shape, rank)
	r := make([]int, rank)
	for i := range in {
		in[i], r[i] = 1, 1
	}
	copy(in[rank-x.Rank():], x.Shape())
	copy(r[rank-len(reps):], reps)

	outShape := make(tensor.Shape, rank)
	for i := range outShape {
		if r[i] < 0 {
			panic(fmt.Sprintf("tile: negative repetition %v", reps))
		}
		outShape[i] = in[i] * r[i]
	}

	vals := x.Float64s()
	inStrides, outStrides := in.ComputeStrides(), outShape.ComputeStrides()
	out := make([]float64, outShape.NumElements())
	coords := make([]int, rank)
	for i := range out {
		unravel(i, outStrides, coords)
		src := 0
		for d, c := range coords {
			src += (c % in[d]) * inStrides[d]
		}
		out[i] = vals[src]
	}
	return newResult("tile", outShape, x.DType(), out)
}

// Cast converts the element type. Floats are truncated toward zero when cast
// to integers.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return newResult("cast", x.Shape(), dtype, x.Float64s())
}

// Copy returns a new tensor with the same contents.
func (cpu *CPUBackend) Copy(x *tensor.RawTensor) *tensor.RawTensor {
	return x.Clone()
}
