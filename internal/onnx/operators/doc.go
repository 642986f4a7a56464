// Package operators evaluates ONNX nodes with the primitives of an
// ops.Backend.
//
// The registry covers the operator types the exporter emits, in every opset
// form it emits them, so that an exported graph can be run on the reference
// CPU backend and compared with the traced outputs. Each handler validates its
// inputs and attributes, then delegates to the backend.
package operators
