// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package onnx_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/backend/cpu"
	"github.com/born-ml/onnxtrace/nn"
	"github.com/born-ml/onnxtrace/onnx"
	"github.com/born-ml/onnxtrace/tensor"
)

func mlpAndInput(t *testing.T) (nn.Model, *tensor.RawTensor) {
	t.Helper()
	be := cpu.New()
	rng := nn.NewRand(11)
	model := nn.NewSequential(
		nn.NewLinear(4, 6, be, rng),
		nn.NewReLU(be),
		nn.NewLinear(6, 3, be, rng),
		nn.NewSigmoid(be),
	)
	x, err := tensor.FromSlice([]float32{0.1, -0.2, 0.3, 0.4, 1, 2, -3, 0.5}, tensor.Shape{2, 4})
	require.NoError(t, err)
	return model, x
}

func TestExportAndRun(t *testing.T) {
	ctx := context.Background()
	model, x := mlpAndInput(t)

	res, err := onnx.Export(ctx, model, []*tensor.RawTensor{x}, onnx.WithOpset(9), onnx.WithGraphName("mlp"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Input"}, res.InputNames)
	assert.Equal(t, []string{"Output"}, res.OutputNames)
	require.NoError(t, onnx.Verify(ctx, res, []*tensor.RawTensor{x}, onnx.DefaultTolerance))

	m, err := onnx.LoadFromBytes(res.Bytes(), cpu.New())
	require.NoError(t, err)
	assert.Equal(t, int64(9), m.OpsetVersion())
	assert.Equal(t, "onnxtrace", m.Metadata()["producer_name"])
	assert.Equal(t, onnx.Version, m.Metadata()["producer_version"])

	outs, err := m.Run(x)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.InDeltaSlice(t, res.Outputs[0].Float64s(), outs[0].Float64s(), 1e-5)
}

func TestWriteTestcaseAndInfo(t *testing.T) {
	ctx := context.Background()
	model, x := mlpAndInput(t)
	res, err := onnx.Export(ctx, model, []*tensor.RawTensor{x})
	require.NoError(t, err)

	dir := t.TempDir()
	dest, err := onnx.OpenDestination(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, onnx.WriteTestcase(ctx, dest, res, []*tensor.RawTensor{x}))
	require.NoError(t, dest.Close())

	for _, name := range []string{"model.onnx", "test_data_set_0/input_0.pb", "test_data_set_0/output_0.pb"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	info, err := onnx.GetModelInfo(filepath.Join(dir, "model.onnx"))
	require.NoError(t, err)
	assert.Equal(t, int64(onnx.LatestOpset), info.OpsetVersion)
	assert.Contains(t, info.OpTypes(), "Gemm")
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	model, x := mlpAndInput(t)

	_, err := onnx.Export(ctx, model, nil)
	assert.ErrorIs(t, err, onnx.ErrConfig)

	_, err = onnx.Export(ctx, model, []*tensor.RawTensor{x}, onnx.WithOpset(onnx.LatestOpset+1))
	assert.ErrorIs(t, err, onnx.ErrConfig)

	bn := nn.NewBatchNorm(4, cpu.New())
	bn.Train = true
	_, err = onnx.Export(ctx, nn.NewSequential(bn), []*tensor.RawTensor{x})
	assert.ErrorIs(t, err, onnx.ErrUnsupported)
}

func TestListSupportedOps(t *testing.T) {
	supported := onnx.ListSupportedOps()
	for _, op := range []string{"Gemm", "Conv", "MaxPool", "Softmax", "Reshape"} {
		assert.Contains(t, supported, op)
	}
}
