package cpu

import (
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// broadcastStrides returns the strides that read a tensor of shape from
// within a tensor of shape to. Axes that are missing or of size 1 get
// stride 0, so every output position along them reads the same element.
func broadcastStrides(shape, to tensor.Shape) []int {
	own := shape.ComputeStrides()
	lead := len(to) - len(shape)
	out := make([]int, len(to))
	for i := lead; i < len(to); i++ {
		if shape[i-lead] != 1 {
			out[i] = own[i-lead]
		}
	}
	return out
}

// sourceIndex maps flat output index i to the flat index it reads from an
// operand with broadcast strides src.
func sourceIndex(i int, outStrides, src []int) int {
	idx := 0
	for d, s := range outStrides {
		idx += (i / s) * src[d]
		i %= s
	}
	return idx
}

// unravel writes the coordinates of flat index i into coords.
func unravel(i int, strides, coords []int) {
	for d, s := range strides {
		coords[d] = i / s
		i %= s
	}
}

// splitAxis returns the sizes before, at and after axis.
func splitAxis(shape tensor.Shape, axis int) (outer, n, inner int) {
	outer = shape[:axis].NumElements()
	inner = shape[axis+1:].NumElements()
	return outer, shape[axis], inner
}
