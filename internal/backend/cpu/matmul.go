package cpu

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/parallel"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// MatMul performs matrix multiplication.
//
// Rank-2 operands multiply as matrices. Higher ranks are batched over the
// leading axes, which must match. TransA/TransB transpose the last two axes
// of the respective operand first.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	bound := ops.MustBind(ops.OpMatMul, []any{a, b}, opts)
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}
	if a.Rank() < 2 || a.Rank() != b.Rank() {
		panic(fmt.Sprintf("matmul: unsupported operand ranks %v and %v", a.Shape(), b.Shape()))
	}

	rank := a.Rank()
	batch := a.Shape()[:rank-2]
	if !batch.Equal(b.Shape()[:rank-2]) {
		panic(fmt.Sprintf("matmul: batch dimensions differ: %v vs %v", a.Shape(), b.Shape()))
	}

	M, K := a.Shape()[rank-2], a.Shape()[rank-1]
	transA := bound.Bool("transa")
	if transA {
		M, K = K, M
	}
	K2, N := b.Shape()[rank-2], b.Shape()[rank-1]
	transB := bound.Bool("transb")
	if transB {
		K2, N = N, K2
	}
	if K != K2 {
		panic(fmt.Sprintf("matmul: inner dimensions don't match: %v @ %v (transa=%v, transb=%v)",
			a.Shape(), b.Shape(), transA, transB))
	}

	av, bv := a.Float64s(), b.Float64s()
	nb := batch.NumElements()
	out := make([]float64, nb*M*N)
	parallel.ForBatch(nb, M, func(p, i int) {
		ao, bo, oo := p*M*K, p*K*N, p*M*N
		for j := 0; j < N; j++ {
			sum := 0.0
			for k := 0; k < K; k++ {
				ai := ao + i*K + k
				if transA {
					ai = ao + k*M + i
				}
				bi := bo + k*N + j
				if transB {
					bi = bo + j*K + k
				}
				sum += av[ai] * bv[bi]
			}
			out[oo+i*N+j] = sum
		}
	}, cpu.par)

	outShape := append(batch.Clone(), M, N)
	return newResult("matmul", outShape, a.DType(), out)
}

// Linear computes x·Wᵀ + b.
func (cpu *CPUBackend) Linear(x, w, b *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	return ops.LinearOf(cpu, x, w, b, opts...)
}
