package tensor

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/x448/float16"
)

// nextSerial hands out tensor identities. Zero is never used.
var nextSerial atomic.Uint64

// RawTensor is the low-level tensor representation.
//
// A RawTensor is never modified by the library once created. Backends allocate a
// new tensor for every result, so a serial number always denotes the same data.
type RawTensor struct {
	data   []byte   // Contiguous little-endian buffer
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
	serial uint64   // Process-unique identity
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zero-initialized.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		serial: nextSerial.Add(1),
	}, nil
}

// Serial returns the tensor's process-unique identity.
func (r *RawTensor) Serial() uint64 {
	return r.serial
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Rank returns the number of dimensions.
func (r *RawTensor) Rank() int {
	return len(r.shape)
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw little-endian byte slice.
// WARNING: Direct access to underlying memory. Do not modify.
func (r *RawTensor) Data() []byte {
	return r.data
}

// String implements fmt.Stringer.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor#%d(%s, %v)", r.serial, r.dtype, []int(r.shape))
}

// view reinterprets the buffer as a typed slice.
func view[T any](r *RawTensor, want DataType) []T {
	if r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
	n := r.NumElements()
	if n == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), n)
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 { return view[float32](r, Float32) }

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 { return view[float64](r, Float64) }

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 { return view[int32](r, Int32) }

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 { return view[int64](r, Int64) }

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 { return view[uint8](r, Uint8) }

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool { return view[bool](r, Bool) }

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 { return view[float16.Float16](r, Float16) }

// Float64s returns a converted copy of the elements. Booleans map to 0 and 1.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	switch r.dtype {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range r.AsInt64() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range r.AsUint8() {
			out[i] = float64(v)
		}
	case Bool:
		for i, v := range r.AsBool() {
			if v {
				out[i] = 1
			}
		}
	case Float16:
		for i, v := range r.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	}
	return out
}

// Int64s returns the elements converted to int64, truncating floats.
func (r *RawTensor) Int64s() []int64 {
	if r.dtype == Int64 {
		return append([]int64(nil), r.AsInt64()...)
	}
	vals := r.Float64s()
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = int64(v)
	}
	return out
}

// Clone returns a deep copy with a fresh serial.
func (r *RawTensor) Clone() *RawTensor {
	c, _ := NewRaw(r.shape, r.dtype)
	copy(c.data, r.data)
	return c
}

// FromFloat64s builds a tensor of the given type from float64 values, rounding
// toward zero for integer types.
func FromFloat64s(shape Shape, dtype DataType, vals []float64) (*RawTensor, error) {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(vals) != r.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v", len(vals), shape)
	}
	switch dtype {
	case Float32:
		dst := r.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case Float64:
		copy(r.AsFloat64(), vals)
	case Int32:
		dst := r.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case Int64:
		dst := r.AsInt64()
		for i, v := range vals {
			dst[i] = int64(v)
		}
	case Uint8:
		dst := r.AsUint8()
		for i, v := range vals {
			dst[i] = uint8(math.Max(0, math.Min(255, v)))
		}
	case Bool:
		dst := r.AsBool()
		for i, v := range vals {
			dst[i] = v != 0
		}
	case Float16:
		dst := r.AsFloat16()
		for i, v := range vals {
			dst[i] = float16.Fromfloat32(float32(v))
		}
	}
	return r, nil
}
