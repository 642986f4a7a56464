package models

import (
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
)

// NewMLP creates a fully connected network:
//
//	Linear(in, hidden) -> ReLU -> Linear(hidden, out)
//
// Parameters are named /0/W, /0/b, /2/W and /2/b.
func NewMLP(in, hidden, out int, be ops.Backend, rng *rand.Rand) *nn.Sequential {
	return nn.NewSequential(
		nn.NewLinear(in, hidden, be, rng),
		nn.NewReLU(be),
		nn.NewLinear(hidden, out, be, rng),
	)
}
