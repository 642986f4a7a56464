// Package tensor provides the concrete tensor representation used by the tracer
// and the CPU backend.
//
// A RawTensor is an immutable, contiguous, row-major buffer with a shape, an element
// type and a process-unique serial number. The serial is the tensor's identity: the
// tracer uses it to recognize that two observations refer to the same value, even
// when the same data is reached through different Go variables.
//
// Storage is little-endian, so Data can be embedded directly as ONNX raw_data.
package tensor
