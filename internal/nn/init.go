package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// NewRand returns a deterministic generator for weight initialization.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape) *tensor.RawTensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t, err := tensor.NewRaw(shape, tensor.Float32)
	if err != nil {
		panic(err)
	}
	data := t.AsFloat32()
	for i := range data {
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

// Filled creates a float32 tensor filled with value.
func Filled(shape tensor.Shape, value float64) *tensor.RawTensor {
	t, err := tensor.Full(shape, tensor.Float32, value)
	if err != nil {
		panic(err)
	}
	return t
}
