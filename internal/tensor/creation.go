package tensor

import "fmt"

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	var dummy T
	r, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	if len(data) != r.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, r.NumElements())
	}
	copy(view[T](r, r.dtype), data)
	return r, nil
}

// Scalar creates a rank-0 tensor.
func Scalar[T DType](v T) *RawTensor {
	r, _ := FromSlice([]T{v}, Shape{})
	return r
}

// Full creates a tensor of the given type filled with value.
func Full(shape Shape, dtype DataType, value float64) (*RawTensor, error) {
	vals := make([]float64, shape.NumElements())
	for i := range vals {
		vals[i] = value
	}
	return FromFloat64s(shape, dtype, vals)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return NewRaw(shape, dtype)
}
