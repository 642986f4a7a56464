package cpu

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func (cpu *CPUBackend) fill(op ops.OpID, shape tensor.Shape, value float64, opts []ops.Arg) *tensor.RawTensor {
	dtype := ops.MustBind(op, []any{shape}, opts).DataType("dtype")
	r, err := tensor.Full(shape, dtype, value)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return r
}

// Zeros creates a zero-filled tensor (float32 unless Dtype is given).
func (cpu *CPUBackend) Zeros(shape tensor.Shape, opts ...ops.Arg) *tensor.RawTensor {
	return cpu.fill(ops.OpZeros, shape, 0, opts)
}

// Ones creates a tensor filled with ones (float32 unless Dtype is given).
func (cpu *CPUBackend) Ones(shape tensor.Shape, opts ...ops.Arg) *tensor.RawTensor {
	return cpu.fill(ops.OpOnes, shape, 1, opts)
}
