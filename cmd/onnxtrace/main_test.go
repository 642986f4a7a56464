package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/export"
	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/onnx"
)

func writeJob(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ONNXTRACE_TEST_OUT", dir)
	job := writeJob(t, `
export "cnn" {
  model     = "cnn"
  output    = "${env.ONNXTRACE_TEST_OUT}/cnn.onnx"
  opset     = 11
  save_text = true
  testcase  = true
  verify    = true
  seed      = 3

  save_weights = true
}

export "cnn_reloaded" {
  model   = "cnn"
  output  = "${env.ONNXTRACE_TEST_OUT}/cnn_reloaded.onnx"
  seed    = 4
  opset   = 11
  weights = "${env.ONNXTRACE_TEST_OUT}/cnn.safetensors"
}

export "add" {
  model  = "add"
  output = "${env.ONNXTRACE_TEST_OUT}/nested/add.onnx"

  input "a" {
    shape = [4]
  }
  input "b" {
    shape = [4]
  }
}
`)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"export", "-config", job}, &out))
	assert.Contains(t, out.String(), "cnn: wrote "+filepath.Join(dir, "cnn.onnx"))

	m, err := onnx.ParseFile(filepath.Join(dir, "cnn.onnx"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), m.OpsetImport[0].Version)

	text, err := os.ReadFile(filepath.Join(dir, "cnn.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Conv")

	assert.FileExists(t, filepath.Join(dir, "cnn", "model.onnx"))
	assert.FileExists(t, filepath.Join(dir, "cnn", export.TestcaseDataSet, "input_0.pb"))
	assert.FileExists(t, filepath.Join(dir, "cnn", export.TestcaseDataSet, "output_0.pb"))

	assert.FileExists(t, filepath.Join(dir, "cnn.safetensors"))
	reloaded, err := onnx.ParseFile(filepath.Join(dir, "cnn_reloaded.onnx"))
	require.NoError(t, err)
	assert.Equal(t, m.Graph.Initializers, reloaded.Graph.Initializers, "weights file must reproduce the saved parameters")

	info, err := onnx.GetModelInfo(filepath.Join(dir, "nested", "add.onnx"))
	require.NoError(t, err)
	require.Len(t, info.Inputs, 2)
	assert.Equal(t, []int{4}, info.Inputs[1].Shape)

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"inspect", filepath.Join(dir, "cnn.onnx")}, &out))
	assert.Contains(t, out.String(), `graph "Graph": IR 6, opset 11`)
	assert.Contains(t, out.String(), "MaxPool")
}

func TestExportCommandErrors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	assert.ErrorContains(t, run(ctx, []string{"export"}, &out), "-config is required")

	job := writeJob(t, `
export "x" {
  model  = "resnet"
  output = "x.onnx"
}
`)
	err := run(ctx, []string{"export", "-config", job}, &out)
	assert.ErrorIs(t, err, exporterr.ErrConfig)
	assert.ErrorContains(t, err, `export "x"`)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, []string{"version"}, &out))
	assert.Equal(t, "onnxtrace "+export.Version+"\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, []string{"models"}, &out))
	for _, name := range []string{"add", "cnn", "identity", "mlp"} {
		assert.Contains(t, out.String(), name)
	}

	assert.ErrorContains(t, run(ctx, []string{"train"}, &out), `unknown command "train"`)
	assert.Error(t, run(ctx, nil, &out))
	assert.Error(t, run(ctx, []string{"inspect"}, &out))
}
