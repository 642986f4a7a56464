package export_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/export"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// mixed exercises array manipulation, reductions and activations in one
// graph with three outputs.
var mixed = nn.Func(func(be ops.Backend, in ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0] // [2, 4]
	a := be.Reshape(be.Transpose(x), tensor.Shape{2, 4})
	c := be.Softmax(a, ops.Axis(1))
	d := be.GetItem(c, ops.All(), ops.Range(1, 3))
	f := be.Squeeze(be.ExpandDims(d, 0), ops.Axis(0))
	g := be.Concat([]*tensor.RawTensor{f, d}, ops.Axis(1))
	sum := be.Sum(be.Tile(g, 1, 2), ops.Axis(1))

	k := be.Mean(be.ClippedReLU(x, ops.Ceil(1)), ops.Axis(0), ops.KeepDims(true))
	l := be.LeakyReLU(be.MulConstant(x, 0.5), ops.Slope(0.1))
	return []*tensor.RawTensor{sum, be.Add(l, k), be.Sigmoid(x)}, nil
})

func TestVerify(t *testing.T) {
	be := cpu.New()
	cnn := nn.NewSequential(
		nn.NewConv2D(1, 2, 3, 1, 1, be, nn.NewRand(3)),
		nn.NewBatchNorm(2, be),
		nn.NewReLU(be),
		nn.NewMaxPool2D(2, 2, be),
	)

	for _, opset := range []int64{7, 9, 11, 13} {
		for name, tc := range map[string]struct {
			model  nn.Model
			inputs []*tensor.RawTensor
		}{
			"mlp":   {mlp(5), []*tensor.RawTensor{input(t, 2, 4)}},
			"cnn":   {cnn, []*tensor.RawTensor{input(t, 1, 1, 5, 5)}},
			"mixed": {mixed, []*tensor.RawTensor{input(t, 2, 4)}},
		} {
			t.Run(fmt.Sprintf("%s/opset%d", name, opset), func(t *testing.T) {
				ctx := context.Background()
				res, err := export.Export(ctx, tc.model, tc.inputs, export.WithOpset(opset))
				require.NoError(t, err)
				assert.NoError(t, export.Verify(ctx, res, tc.inputs, export.DefaultTolerance))
			})
		}
	}
}

func TestVerifyDetectsMismatch(t *testing.T) {
	ctx := context.Background()
	x := input(t, 2, 4)
	res, err := export.Export(ctx, mlp(5), []*tensor.RawTensor{x})
	require.NoError(t, err)

	// Corrupt the first weight.
	init := &res.Model.Graph.Initializers[0]
	w, err := init.ToRaw()
	require.NoError(t, err)
	w.AsFloat32()[0] += 10
	init.RawData = w.Data()

	err = export.Verify(ctx, res, []*tensor.RawTensor{x}, export.DefaultTolerance)
	assert.ErrorIs(t, err, export.ErrMismatch)
	assert.ErrorContains(t, err, "output Output")

	err = export.Verify(ctx, res, nil, export.DefaultTolerance)
	assert.ErrorIs(t, err, export.ErrMismatch)
}
