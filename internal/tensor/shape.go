package tensor

import (
	"fmt"
	"slices"
)

// Shape lists the dimensions of a tensor, outermost first. A nil or empty
// Shape is a scalar.
type Shape []int

// NumElements returns the product of the dimensions; 1 for a scalar.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate rejects negative dimensions. Zero is allowed: empty slices of a
// traced tensor produce zero-sized values.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d < 0 }); i >= 0 {
		return fmt.Errorf("shape %v: dimension %d is negative", []int(s), i)
	}
	return nil
}

// Equal reports whether s and other have the same dimensions.
func (s Shape) Equal(other Shape) bool { return slices.Equal(s, other) }

// Clone returns a copy of s that shares no memory with it.
func (s Shape) Clone() Shape {
	if s == nil {
		return Shape{}
	}
	return slices.Clone(s)
}

// ComputeStrides returns row-major element strides.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// NormalizeAxis maps a possibly negative axis onto [0, rank).
func (s Shape) NormalizeAxis(axis int) (int, error) {
	if axis < -len(s) || axis >= len(s) {
		return 0, fmt.Errorf("axis %d out of range for shape %v", axis, []int(s))
	}
	if axis < 0 {
		axis += len(s)
	}
	return axis, nil
}

// BroadcastShapes returns the NumPy broadcast of a and b, aligning them on
// the right. The flag reports whether either operand has to be expanded,
// which is also the case when the ranks differ.
//
//	[3 1] with [3 5] -> [3 5], true
//	[3 5] with [3 5] -> [3 5], false
//	[3 4] with [3 5] -> error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	out := make(Shape, rank)
	expanded := len(a) != len(b)
	dim := func(s Shape, i int) int {
		if j := i - (rank - len(s)); j >= 0 {
			return s[j]
		}
		return 1
	}
	for i := range rank {
		da, db := dim(a, i), dim(b, i)
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i], expanded = db, true
		case db == 1:
			out[i], expanded = da, true
		default:
			return nil, false, fmt.Errorf("shapes %v and %v do not broadcast: axis %d is %d vs %d",
				[]int(a), []int(b), i, da, db)
		}
	}
	return out, expanded, nil
}
