// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// RawTensor is a dense, row-major tensor.
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DType is a constraint for tensor element types.
type DType = tensor.DType

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
	Float16 DataType = tensor.Float16
)

// FromSlice creates a tensor holding a copy of data.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromFloat64s creates a tensor of dtype from float64 values.
func FromFloat64s(shape Shape, dtype DataType, vals []float64) (*RawTensor, error) {
	return tensor.FromFloat64s(shape, dtype, vals)
}

// Full creates a tensor filled with value.
func Full(shape Shape, dtype DataType, value float64) (*RawTensor, error) {
	return tensor.Full(shape, dtype, value)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype)
}

// Scalar creates a rank-0 tensor.
func Scalar[T DType](v T) *RawTensor {
	return tensor.Scalar(v)
}

// ParseDataType parses a data type name such as "float32".
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
