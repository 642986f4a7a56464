package cpu

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Sum adds elements over the given axes (all axes by default).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	bound := ops.MustBind(ops.OpSum, []any{x}, opts)
	inShape := x.Shape()
	rank := len(inShape)

	reduced := make([]bool, rank)
	axes := bound.Ints("axis")
	if axes == nil {
		for i := range reduced {
			reduced[i] = true
		}
	}
	for _, a := range axes {
		na, err := inShape.NormalizeAxis(a)
		if err != nil {
			panic(fmt.Sprintf("sum: %v", err))
		}
		if reduced[na] {
			panic(fmt.Sprintf("sum: duplicate axis %d", a))
		}
		reduced[na] = true
	}

	keepShape := inShape.Clone()
	var outShape tensor.Shape
	for i := range keepShape {
		if reduced[i] {
			keepShape[i] = 1
			continue
		}
		outShape = append(outShape, inShape[i])
	}
	if bound.Bool("keepdims") {
		outShape = keepShape
	}
	if outShape == nil {
		outShape = tensor.Shape{}
	}

	vals := x.Float64s()
	out := make([]float64, keepShape.NumElements())
	inStrides, keepStrides := inShape.ComputeStrides(), keepShape.ComputeStrides()
	coords := make([]int, rank)
	for i, v := range vals {
		unravel(i, inStrides, coords)
		off := 0
		for d := range coords {
			if !reduced[d] {
				off += coords[d] * keepStrides[d]
			}
		}
		out[off] += v
	}
	return newResult("sum", outShape, x.DType(), out)
}

// Mean averages elements over the given axes (all axes by default).
func (cpu *CPUBackend) Mean(x *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.MeanOf(cpu, x, opts...)
}
