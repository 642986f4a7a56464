package onnx

import (
	"bytes"
	"fmt"

	"github.com/x448/float16"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// TensorFromRaw serializes t as little-endian raw data.
func TensorFromRaw(name string, t *tensor.RawTensor) (*TensorProto, error) {
	elem, err := ElemType(t.DType())
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", name, err)
	}
	return &TensorProto{
		Name:     name,
		DataType: elem,
		Dims:     Ints64(t.Shape()),
		RawData:  bytes.Clone(t.Data()),
	}, nil
}

// ToRaw decodes the tensor from raw data or from the typed repeated fields.
//
//nolint:gocyclo,cyclop // One case per storage field.
func (t *TensorProto) ToRaw() (*tensor.RawTensor, error) {
	dt, err := DataTypeOf(t.DataType)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
	}
	shape := make(tensor.Shape, len(t.Dims))
	for i, d := range t.Dims {
		shape[i] = int(d)
	}
	r, err := tensor.NewRaw(shape, dt)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", t.Name, err)
	}

	n := r.NumElements()
	mismatch := func(got int) error {
		return fmt.Errorf("tensor %q: %d values for shape %v", t.Name, got, shape)
	}
	switch {
	case len(t.RawData) > 0 || n == 0:
		if len(t.RawData) != r.ByteSize() {
			return nil, fmt.Errorf("tensor %q: %d raw bytes for %d %s values", t.Name, len(t.RawData), n, dt)
		}
		copy(r.Data(), t.RawData)
	case dt == tensor.Float32:
		if len(t.FloatData) != n {
			return nil, mismatch(len(t.FloatData))
		}
		copy(r.AsFloat32(), t.FloatData)
	case dt == tensor.Float64:
		if len(t.DoubleData) != n {
			return nil, mismatch(len(t.DoubleData))
		}
		copy(r.AsFloat64(), t.DoubleData)
	case dt == tensor.Int64:
		if len(t.Int64Data) != n {
			return nil, mismatch(len(t.Int64Data))
		}
		copy(r.AsInt64(), t.Int64Data)
	default:
		// int32, uint8, bool and float16 bits share int32_data.
		if len(t.Int32Data) != n {
			return nil, mismatch(len(t.Int32Data))
		}
		for i, v := range t.Int32Data {
			switch dt {
			case tensor.Int32:
				r.AsInt32()[i] = v
			case tensor.Uint8:
				r.AsUint8()[i] = uint8(v) //nolint:gosec // G115: uint8 storage.
			case tensor.Bool:
				r.AsBool()[i] = v != 0
			case tensor.Float16:
				r.AsFloat16()[i] = float16.Frombits(uint16(v)) //nolint:gosec // G115: float16 bits.
			}
		}
	}
	return r, nil
}
