package nn

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// BatchNorm normalizes per channel (axis 1).
//
// In training mode it uses batch statistics; otherwise the stored averages.
// Only inference mode can be exported.
type BatchNorm struct {
	Gamma   *Parameter
	Beta    *Parameter
	AvgMean *Parameter
	AvgVar  *Parameter
	Eps     float64
	Train   bool
	be      ops.Backend
}

// NewBatchNorm creates a batch normalization layer for size channels, in
// inference mode.
func NewBatchNorm(size int, be ops.Backend) *BatchNorm {
	shape := tensor.Shape{size}
	return &BatchNorm{
		Gamma:   NewParameter("gamma", Filled(shape, 1)),
		Beta:    NewParameter("beta", Filled(shape, 0)),
		AvgMean: NewParameter("avg_mean", Filled(shape, 0)),
		AvgVar:  NewParameter("avg_var", Filled(shape, 1)),
		Eps:     2e-5,
		be:      be,
	}
}

// Forward normalizes x.
func (n *BatchNorm) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	if n.Train {
		return n.be.BatchNormalization(x, n.Gamma.Tensor(), n.Beta.Tensor(), ops.Eps(n.Eps))
	}
	return n.be.FixedBatchNormalization(x, n.Gamma.Tensor(), n.Beta.Tensor(),
		n.AvgMean.Tensor(), n.AvgVar.Tensor(), ops.Eps(n.Eps))
}

// Parameters returns gamma, beta and the running statistics.
func (n *BatchNorm) Parameters() []*Parameter {
	return []*Parameter{n.Gamma, n.Beta, n.AvgMean, n.AvgVar}
}

// Backend returns the bound backend.
func (n *BatchNorm) Backend() ops.Backend { return n.be }

// Bind replaces the bound backend.
func (n *BatchNorm) Bind(be ops.Backend) { n.be = be }
