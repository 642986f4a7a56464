package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/export"
	"github.com/born-ml/onnxtrace/internal/models"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func inputsFor(t *testing.T, entry models.Entry) []*tensor.RawTensor {
	t.Helper()
	var out []*tensor.RawTensor
	for i, shape := range entry.Inputs {
		vals := make([]float64, shape.NumElements())
		for j := range vals {
			vals[j] = float64((i+j)%5) - 2
		}
		x, err := tensor.FromFloat64s(shape, tensor.Float32, vals)
		require.NoError(t, err)
		out = append(out, x)
	}
	return out
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"add", "cnn", "identity", "mlp"}, models.Names())
}

func TestBuildUnknown(t *testing.T) {
	_, err := models.Build("resnet", cpu.New(), 0)
	assert.ErrorIs(t, err, exporterr.ErrConfig)
	assert.ErrorContains(t, err, "known models")
}

func TestExportBuiltins(t *testing.T) {
	wantOps := map[string][]string{
		"mlp":      {"Gemm", "Relu", "Gemm"},
		"cnn":      {"Conv", "BatchNormalization", "Relu", "MaxPool", "Reshape", "Gemm", "Softmax"},
		"add":      {"Add"},
		"identity": {"Identity"},
	}
	for _, name := range models.Names() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			entry, err := models.Lookup(name)
			require.NoError(t, err)
			model, err := models.Build(name, cpu.New(), 1)
			require.NoError(t, err)

			inputs := inputsFor(t, entry)
			res, err := export.Export(ctx, model, inputs)
			require.NoError(t, err)

			var got []string
			for _, n := range res.Model.Graph.Nodes {
				if n.OpType != "Constant" {
					got = append(got, n.OpType)
				}
			}
			assert.Equal(t, wantOps[name], got)
			assert.NoError(t, export.Verify(ctx, res, inputs, export.DefaultTolerance))
		})
	}
}

func TestCNN(t *testing.T) {
	m := models.NewCNN(cpu.New(), nn.NewRand(1))

	var paths []string
	for _, np := range nn.NamedParameters(m) {
		paths = append(paths, np.Path)
	}
	assert.Equal(t, []string{
		"/conv/W", "/conv/b",
		"/bn/gamma", "/bn/beta", "/bn/avg_mean", "/bn/avg_var",
		"/fc/W", "/fc/b",
	}, paths)

	x, err := tensor.Zeros(tensor.Shape{3, 1, 8, 8}, tensor.Float32)
	require.NoError(t, err)
	out, err := m.Call(cpu.New(), x)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, tensor.Shape{3, 10}, out[0].Shape())

	bad, err := tensor.Zeros(tensor.Shape{3, 1, 4, 4}, tensor.Float32)
	require.NoError(t, err)
	_, err = m.Call(cpu.New(), bad)
	assert.ErrorContains(t, err, "expected input [batch, 1, 8, 8]")
}

func TestSameSeedSameWeights(t *testing.T) {
	a, err := models.Build("mlp", cpu.New(), 9)
	require.NoError(t, err)
	b, err := models.Build("mlp", cpu.New(), 9)
	require.NoError(t, err)

	pa, pb := nn.NamedParameters(a), nn.NamedParameters(b)
	require.Len(t, pb, len(pa))
	for i := range pa {
		assert.Equal(t, pa[i].Param.Tensor().Float64s(), pb[i].Param.Tensor().Float64s(), pa[i].Path)
	}
}
