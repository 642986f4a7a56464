package models

import (
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// SampleInputs draws example inputs from a standard normal distribution.
// dtypes may be shorter than shapes; missing entries are float32.
func SampleInputs(seed uint64, shapes []tensor.Shape, dtypes []tensor.DataType) ([]*tensor.RawTensor, error) {
	rng := nn.NewRand(seed)
	out := make([]*tensor.RawTensor, len(shapes))
	for i, shape := range shapes {
		dt := tensor.Float32
		if i < len(dtypes) {
			dt = dtypes[i]
		}
		vals := make([]float64, shape.NumElements())
		for j := range vals {
			vals[j] = rng.NormFloat64()
		}
		x, err := tensor.FromFloat64s(shape, dt, vals)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
