package onnx

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

type (
	fieldType  = descriptorpb.FieldDescriptorProto_Type
	fieldLabel = descriptorpb.FieldDescriptorProto_Label
)

const (
	optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	tInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	tInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	tFloat   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	tDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	tBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	tEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

func fieldDesc(name string, num int32, label fieldLabel, typ fieldType, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(".onnx." + typeName)
	}
	return f
}

func packed(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Options = &descriptorpb.FieldOptions{Packed: proto.Bool(true)}
	return f
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func attributeTypeEnum() *descriptorpb.EnumDescriptorProto {
	names := []string{"UNDEFINED", "FLOAT", "INT", "STRING", "TENSOR", "GRAPH", "FLOATS", "INTS", "STRINGS", "TENSORS", "GRAPHS"}
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String("AttributeType")}
	for i, n := range names {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(n),
			Number: proto.Int32(int32(i)), //nolint:gosec // G115: small constant.
		})
	}
	return e
}

// schemaFile describes the subset of onnx.proto this package reads and writes.
func schemaFile() *descriptorpb.FileDescriptorProto {
	attr := message("AttributeProto",
		fieldDesc("name", 1, optional, tString, ""),
		fieldDesc("f", 2, optional, tFloat, ""),
		fieldDesc("i", 3, optional, tInt64, ""),
		fieldDesc("s", 4, optional, tBytes, ""),
		fieldDesc("t", 5, optional, tMessage, "TensorProto"),
		fieldDesc("g", 6, optional, tMessage, "GraphProto"),
		fieldDesc("floats", 7, repeated, tFloat, ""),
		fieldDesc("ints", 8, repeated, tInt64, ""),
		fieldDesc("strings", 9, repeated, tBytes, ""),
		fieldDesc("tensors", 10, repeated, tMessage, "TensorProto"),
		fieldDesc("graphs", 11, repeated, tMessage, "GraphProto"),
		fieldDesc("doc_string", 13, optional, tString, ""),
		fieldDesc("type", 20, optional, tEnum, "AttributeProto.AttributeType"),
	)
	attr.EnumType = []*descriptorpb.EnumDescriptorProto{attributeTypeEnum()}

	typeProto := message("TypeProto",
		fieldDesc("tensor_type", 1, optional, tMessage, "TypeProto.Tensor"),
	)
	typeProto.NestedType = []*descriptorpb.DescriptorProto{message("Tensor",
		fieldDesc("elem_type", 1, optional, tInt32, ""),
		fieldDesc("shape", 2, optional, tMessage, "TensorShapeProto"),
	)}

	shape := message("TensorShapeProto",
		fieldDesc("dim", 1, repeated, tMessage, "TensorShapeProto.Dimension"),
	)
	shape.NestedType = []*descriptorpb.DescriptorProto{message("Dimension",
		fieldDesc("dim_value", 1, optional, tInt64, ""),
		fieldDesc("dim_param", 2, optional, tString, ""),
	)}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("onnxtrace/onnx.proto"),
		Package: proto.String("onnx"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			attr,
			message("ValueInfoProto",
				fieldDesc("name", 1, optional, tString, ""),
				fieldDesc("type", 2, optional, tMessage, "TypeProto"),
				fieldDesc("doc_string", 3, optional, tString, ""),
			),
			message("NodeProto",
				fieldDesc("input", 1, repeated, tString, ""),
				fieldDesc("output", 2, repeated, tString, ""),
				fieldDesc("name", 3, optional, tString, ""),
				fieldDesc("op_type", 4, optional, tString, ""),
				fieldDesc("attribute", 5, repeated, tMessage, "AttributeProto"),
				fieldDesc("doc_string", 6, optional, tString, ""),
				fieldDesc("domain", 7, optional, tString, ""),
			),
			message("ModelProto",
				fieldDesc("ir_version", 1, optional, tInt64, ""),
				fieldDesc("producer_name", 2, optional, tString, ""),
				fieldDesc("producer_version", 3, optional, tString, ""),
				fieldDesc("domain", 4, optional, tString, ""),
				fieldDesc("model_version", 5, optional, tInt64, ""),
				fieldDesc("doc_string", 6, optional, tString, ""),
				fieldDesc("graph", 7, optional, tMessage, "GraphProto"),
				fieldDesc("opset_import", 8, repeated, tMessage, "OperatorSetIdProto"),
				fieldDesc("metadata_props", 14, repeated, tMessage, "StringStringEntryProto"),
			),
			message("StringStringEntryProto",
				fieldDesc("key", 1, optional, tString, ""),
				fieldDesc("value", 2, optional, tString, ""),
			),
			message("GraphProto",
				fieldDesc("node", 1, repeated, tMessage, "NodeProto"),
				fieldDesc("name", 2, optional, tString, ""),
				fieldDesc("initializer", 5, repeated, tMessage, "TensorProto"),
				fieldDesc("doc_string", 10, optional, tString, ""),
				fieldDesc("input", 11, repeated, tMessage, "ValueInfoProto"),
				fieldDesc("output", 12, repeated, tMessage, "ValueInfoProto"),
				fieldDesc("value_info", 13, repeated, tMessage, "ValueInfoProto"),
			),
			message("TensorProto",
				fieldDesc("dims", 1, repeated, tInt64, ""),
				fieldDesc("data_type", 2, optional, tInt32, ""),
				packed(fieldDesc("float_data", 4, repeated, tFloat, "")),
				packed(fieldDesc("int32_data", 5, repeated, tInt32, "")),
				packed(fieldDesc("int64_data", 7, repeated, tInt64, "")),
				fieldDesc("name", 8, optional, tString, ""),
				fieldDesc("raw_data", 9, optional, tBytes, ""),
				packed(fieldDesc("double_data", 10, repeated, tDouble, "")),
				fieldDesc("doc_string", 12, optional, tString, ""),
			),
			shape,
			typeProto,
			message("OperatorSetIdProto",
				fieldDesc("domain", 1, optional, tString, ""),
				fieldDesc("version", 2, optional, tInt64, ""),
			),
		},
	}
}

var schema = sync.OnceValues(func() (protoreflect.FileDescriptor, error) {
	return protodesc.NewFile(schemaFile(), nil)
})

// Available reports whether the ONNX schema can be loaded. Exports check it
// before tracing so a broken installation fails early.
func Available() error {
	if _, err := schema(); err != nil {
		return fmt.Errorf("onnx: protobuf schema unavailable (rebuild with a google.golang.org/protobuf that supports proto2 descriptors): %w", err)
	}
	return nil
}

// MarshalText renders a model in the protobuf text format.
// The output is meant for people; its exact spacing is not stable.
func MarshalText(m *ModelProto) (string, error) {
	fd, err := schema()
	if err != nil {
		return "", err
	}
	msg := dynamicpb.NewMessage(fd.Messages().ByName("ModelProto"))
	if err := proto.Unmarshal(Marshal(m), msg); err != nil {
		return "", fmt.Errorf("failed to decode model for text rendering: %w", err)
	}
	return prototext.MarshalOptions{Multiline: true, Indent: "  "}.Format(msg), nil
}
