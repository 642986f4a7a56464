package export

import (
	"context"
	"errors"
	"fmt"
	"math"

	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ErrMismatch reports an exported model whose outputs differ from the traced
// outputs.
var ErrMismatch = errors.New("exported model disagrees with the traced forward pass")

// Tolerance bounds the difference allowed by Verify: |got-want| must not
// exceed ATol + RTol*|want|.
type Tolerance struct {
	RTol float64
	ATol float64
}

// DefaultTolerance suits float32 models.
var DefaultTolerance = Tolerance{RTol: 1e-4, ATol: 1e-5}

// Verify evaluates the exported model on the reference CPU backend with the
// inputs it was traced on and compares each output with the traced value.
func Verify(ctx context.Context, res *Result, inputs []*tensor.RawTensor, tol Tolerance) error {
	log := klog.FromContext(ctx)

	m, err := onnx.LoadFromProto(res.Model, cpu.New(), onnx.DefaultLoadOptions())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	got, err := m.Run(inputs...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	if len(got) != len(res.Outputs) {
		return fmt.Errorf("%w: %d outputs, traced %d", ErrMismatch, len(got), len(res.Outputs))
	}

	for i, want := range res.Outputs {
		name := res.OutputNames[i]
		if err := compare(got[i], want, tol); err != nil {
			return fmt.Errorf("%w: output %s: %w", ErrMismatch, name, err)
		}
	}
	log.V(1).Info("verified exported model", "outputs", len(got))
	return nil
}

func compare(got, want *tensor.RawTensor, tol Tolerance) error {
	if got.DType() != want.DType() {
		return fmt.Errorf("dtype %s, want %s", got.DType(), want.DType())
	}
	if !got.Shape().Equal(want.Shape()) {
		return fmt.Errorf("shape %v, want %v", got.Shape(), want.Shape())
	}
	g, w := got.Float64s(), want.Float64s()
	for i := range w {
		if math.IsNaN(w[i]) && math.IsNaN(g[i]) {
			continue
		}
		if math.Abs(g[i]-w[i]) > tol.ATol+tol.RTol*math.Abs(w[i]) || math.IsNaN(g[i]) != math.IsNaN(w[i]) {
			return fmt.Errorf("element %d is %g, want %g", i, g[i], w[i])
		}
	}
	return nil
}
