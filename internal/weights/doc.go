// Package weights stores model parameters in the SafeTensors format.
//
// Tensors are keyed by parameter path as reported by nn.NamedParameters,
// for example "/0/W". A file written by Save for one model can be applied
// to any model with the same parameter paths, shapes and data types:
//
//	[8 bytes: header size (uint64 LE)]
//	[header size bytes: JSON header]
//	[tensor data: raw little-endian bytes, in header order]
package weights
