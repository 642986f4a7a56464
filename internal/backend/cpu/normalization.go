package cpu

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// BatchNormalization normalizes with batch statistics (training mode).
func (cpu *CPUBackend) BatchNormalization(x, gamma, beta *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.BatchNormalizationOf(cpu, x, gamma, beta, opts...)
}

// FixedBatchNormalization normalizes with fixed statistics (inference mode).
func (cpu *CPUBackend) FixedBatchNormalization(x, gamma, beta, mean, variance *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.FixedBatchNormalizationOf(cpu, x, gamma, beta, mean, variance, opts...)
}
