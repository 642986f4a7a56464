// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package onnx

import (
	"context"

	"github.com/born-ml/onnxtrace/internal/export"
	"github.com/born-ml/onnxtrace/internal/exporterr"
	internalonnx "github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/sink"
	"github.com/born-ml/onnxtrace/nn"
	"github.com/born-ml/onnxtrace/ops"
	"github.com/born-ml/onnxtrace/tensor"
)

// Version is the producer version recorded in exported models.
const Version = export.Version

// Supported opset range.
const (
	MinimumOpset = internalonnx.MinimumOpset
	LatestOpset  = internalonnx.LatestOpset
)

// Error kinds.
var (
	ErrConfig       = exporterr.ErrConfig
	ErrUnsupported  = exporterr.ErrUnsupported
	ErrInternal     = exporterr.ErrInternal
	ErrInvalidModel = exporterr.ErrInvalidModel
	ErrForward      = exporterr.ErrForward
	ErrMismatch     = export.ErrMismatch
)

// Result is an exported model.
type Result = export.Result

// Option configures an export.
type Option = export.Option

// WithOpset selects the target opset version.
func WithOpset(v int64) Option { return export.WithOpset(v) }

// WithGraphName sets the graph name. The default is "Graph".
func WithGraphName(name string) Option { return export.WithGraphName(name) }

// WithBackend sets the backend the traced forward pass computes on.
func WithBackend(be ops.Backend) Option { return export.WithBackend(be) }

// WithProducer sets the producer name and version recorded in the model.
func WithProducer(name, version string) Option { return export.WithProducer(name, version) }

// Export traces one forward pass of model on inputs and converts it.
//
// Only one export can run at a time; a concurrent call fails with ErrConfig.
func Export(ctx context.Context, model nn.Model, inputs []*tensor.RawTensor, opts ...Option) (*Result, error) {
	return export.Export(ctx, model, inputs, opts...)
}

// Tolerance bounds the difference Verify accepts between two elements:
// |got-want| <= ATol + RTol*|want|.
type Tolerance = export.Tolerance

// DefaultTolerance is suitable for float32 models.
var DefaultTolerance = export.DefaultTolerance

// Verify evaluates res on the reference backend with inputs and compares the
// results with the traced outputs. A disagreement matches ErrMismatch.
func Verify(ctx context.Context, res *Result, inputs []*tensor.RawTensor, tol Tolerance) error {
	return export.Verify(ctx, res, inputs, tol)
}

// Destination is where test case files are written.
type Destination = sink.Destination

// OpenDestination opens a local directory, or a bucket prefix for targets of
// the form gs://bucket/prefix.
func OpenDestination(ctx context.Context, target string) (Destination, error) {
	return sink.Open(ctx, target)
}

// WriteTestcase writes model.onnx and test_data_set_0/{input,output}_N.pb
// to dest.
func WriteTestcase(ctx context.Context, dest Destination, res *Result, inputs []*tensor.RawTensor) error {
	return export.WriteTestcase(ctx, dest, res, inputs)
}
