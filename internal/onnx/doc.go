// Package onnx reads, writes, builds and validates ONNX models.
//
// ONNX (Open Neural Network Exchange) is an open format for representing deep learning models.
// Models are plain Go structs encoded with google.golang.org/protobuf/encoding/protowire;
// a descriptor of the same schema backs the text rendering.
//
// Key components:
//   - ModelProto, GraphProto, NodeProto, TensorProto, ValueInfoProto: the model structure
//   - Parse / Marshal: binary wire format
//   - MarshalText: human-readable rendering
//   - GraphBuilder: assembles a graph node by node and finalizes it into a model
//   - NameGenerator: unique value names within one graph
//   - Check: structural validation
//
// Example usage:
//
//	gb := onnx.NewGraphBuilder(onnx.LatestOpset)
//	x := gb.Input("Input", tensor.Float32, tensor.Shape{2, 4})
//	y := gb.Output("Output", tensor.Float32, tensor.Shape{2, 4})
//	gb.Rename(gb.Op("Relu", []string{x}), y)
//	model, err := gb.Build("Graph", onnx.Producer{Name: "onnxtrace"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := onnx.Marshal(model)
package onnx
