// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops names the primitive operations models are written against.
//
// A model receives an ops.Backend and calls its methods; optional arguments
// are passed as Arg values:
//
//	y := be.Softmax(x, ops.Axis(1))
//	z := be.MaxPooling2D(y, 2, ops.Stride(2), ops.CoverAll(false))
package ops

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Backend is the table of primitive operations.
type Backend = ops.Backend

// Arg is an optional keyword argument of a primitive.
type Arg = ops.Arg

// Index is one component of a GetItem index expression.
type Index = ops.Index

// Keyword arguments.
func Stride(v ...int) Arg                 { return ops.Stride(v...) }
func Pad(v ...int) Arg                    { return ops.Pad(v...) }
func CoverAll(v bool) Arg                 { return ops.CoverAll(v) }
func Dilate(v int) Arg                    { return ops.Dilate(v) }
func Groups(v int) Arg                    { return ops.Groups(v) }
func PadValue(v float64) Arg              { return ops.PadValue(v) }
func NBatchAxes(v int) Arg                { return ops.NBatchAxes(v) }
func ReturnIndices(v bool) Arg            { return ops.ReturnIndices(v) }
func TransA(v bool) Arg                   { return ops.TransA(v) }
func TransB(v bool) Arg                   { return ops.TransB(v) }
func Eps(v float64) Arg                   { return ops.Eps(v) }
func Decay(v float64) Arg                 { return ops.Decay(v) }
func Axis(v ...int) Arg                   { return ops.Axis(v...) }
func Axes(v ...int) Arg                   { return ops.Axes(v...) }
func KeepDims(v bool) Arg                 { return ops.KeepDims(v) }
func Slope(v float64) Arg                 { return ops.Slope(v) }
func Alpha(v float64) Arg                 { return ops.Alpha(v) }
func Ceil(v float64) Arg                  { return ops.Ceil(v) }
func Beta(v float64) Arg                  { return ops.Beta(v) }
func Dtype(v tensor.DataType) Arg         { return ops.Dtype(v) }
func RunningMean(t *tensor.RawTensor) Arg { return ops.RunningMean(t) }
func RunningVar(t *tensor.RawTensor) Arg  { return ops.RunningVar(t) }

// Index components.
func At(i int) Index              { return ops.At(i) }
func All() Index                  { return ops.All() }
func Range(start, stop int) Index { return ops.Range(start, stop) }
func RangeFrom(start int) Index   { return ops.RangeFrom(start) }
func RangeTo(stop int) Index      { return ops.RangeTo(stop) }
func NewAxis() Index              { return ops.NewAxis() }
func Ellipsis() Index             { return ops.Ellipsis() }
func List(indices ...int) Index   { return ops.List(indices...) }
