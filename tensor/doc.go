// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensors that models consume and produce.
//
// # Overview
//
// A RawTensor is a dense, row-major array with a shape and an element type.
// Every tensor carries a serial number assigned at creation; the exporter
// uses it to recognize the same tensor across recorded calls.
//
// # Basic Usage
//
//	import "github.com/born-ml/onnxtrace/tensor"
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(x.Shape(), x.DType()) // [2 2] float32
//
// # Data Types
//
// Supported element types are float32, float64, float16, int32, int64,
// uint8 and bool. Float16 values are stored as IEEE 754 half precision.
package tensor
