// Package ops defines the primitive operation table shared by every backend.
//
// The table has three faces:
//   - Backend: one Go method per primitive, implemented by numeric backends and
//     by the recording dispatcher in package trace.
//   - Signature: the parameter list of each primitive (names, defaults), used to
//     bind the positional and keyword arguments of a call. Kernels and ONNX
//     converters read their arguments through the same binding.
//   - Value: a method-style wrapper over a tensor and a backend.
//
// Keyword arguments are passed as Arg values built by the option helpers:
//
//	y := be.MaxPooling2D(x, 3, ops.Stride(2), ops.CoverAll(false))
//
// Only the keyword arguments a caller actually passed are recorded, the rest
// come from signature defaults at binding time.
package ops
