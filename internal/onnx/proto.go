package onnx

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ONNX protobuf data structures (hand-written subset of onnx.proto).

// ModelProto represents an ONNX model.
type ModelProto struct {
	IRVersion       int64               // IR version (e.g., 3, 7)
	OpsetImport     []OperatorSetID     // Opset version(s)
	ProducerName    string              // Exporting tool
	ProducerVersion string              // Exporting tool version
	Domain          string              // Model domain
	ModelVersion    int64               // Model version number
	DocString       string              // Model description
	Graph           *GraphProto         // Computation graph
	MetadataProps   []StringStringEntry // Key-value metadata
}

// GraphProto represents the computation graph.
type GraphProto struct {
	Name         string
	Nodes        []NodeProto      // Topologically sorted
	Inputs       []ValueInfoProto // Graph inputs
	Outputs      []ValueInfoProto // Graph outputs
	Initializers []TensorProto    // Parameters and constants
	DocString    string
	ValueInfo    []ValueInfoProto // Intermediate values
}

// NodeProto represents a single operation.
type NodeProto struct {
	Name       string
	OpType     string // e.g. "Gemm", "Relu"
	Inputs     []string
	Outputs    []string
	Attributes []AttributeProto
	Domain     string // empty for the default domain
	DocString  string
}

// TensorProto is a serialized tensor: an initializer, a constant attribute
// or a test vector.
type TensorProto struct {
	Name       string
	DataType   int32
	Dims       []int64
	RawData    []byte // little-endian, preferred
	FloatData  []float32
	Int32Data  []int32
	Int64Data  []int64
	DoubleData []float64
	DocString  string
}

// ValueInfoProto describes a named value.
type ValueInfoProto struct {
	Name      string
	Type      *TypeProto
	DocString string
}

// TypeProto describes a value type. Only tensor types are produced.
type TypeProto struct {
	TensorType *TensorTypeProto
}

// TensorTypeProto describes tensor shape and element type.
type TensorTypeProto struct {
	ElemType int32
	Shape    *TensorShapeProto
}

// TensorShapeProto describes tensor dimensions.
type TensorShapeProto struct {
	Dims []DimensionProto
}

// DimensionProto describes a single dimension.
type DimensionProto struct {
	DimValue int64  // static size
	DimParam string // symbolic size, e.g. "batch"
}

// AttributeProto is a node attribute. Exactly the field selected by Type is
// meaningful.
type AttributeProto struct {
	Name      string
	Type      int32
	F         float32
	I         int64
	S         []byte
	T         *TensorProto
	G         *GraphProto
	Floats    []float32
	Ints      []int64
	Strings   [][]byte
	Tensors   []TensorProto
	Graphs    []GraphProto
	DocString string
}

// OperatorSetID identifies opset version.
type OperatorSetID struct {
	Domain  string // empty for the default domain
	Version int64
}

// StringStringEntry represents key-value metadata.
type StringStringEntry struct {
	Key   string
	Value string
}

// ONNX data types (TensorProto.DataType).
const (
	TensorProtoUndefined  = 0
	TensorProtoFloat      = 1  // float32
	TensorProtoUint8      = 2  // uint8
	TensorProtoInt8       = 3  // int8
	TensorProtoUint16     = 4  // uint16
	TensorProtoInt16      = 5  // int16
	TensorProtoInt32      = 6  // int32
	TensorProtoInt64      = 7  // int64
	TensorProtoString     = 8  // string
	TensorProtoBool       = 9  // bool
	TensorProtoFloat16    = 10 // float16
	TensorProtoDouble     = 11 // float64
	TensorProtoUint32     = 12 // uint32
	TensorProtoUint64     = 13 // uint64
	TensorProtoComplex64  = 14 // complex64
	TensorProtoComplex128 = 15 // complex128
	TensorProtoBfloat16   = 16 // bfloat16
)

// ONNX attribute types (AttributeProto.Type).
const (
	AttributeProtoUndefined = 0
	AttributeProtoFloat     = 1  // FLOAT
	AttributeProtoInt       = 2  // INT
	AttributeProtoString    = 3  // STRING
	AttributeProtoTensor    = 4  // TENSOR
	AttributeProtoGraph     = 5  // GRAPH
	AttributeProtoFloats    = 6  // FLOATS
	AttributeProtoInts      = 7  // INTS
	AttributeProtoStrings   = 8  // STRINGS
	AttributeProtoTensors   = 9  // TENSORS
	AttributeProtoGraphs    = 10 // GRAPHS
)

// ElemType maps a tensor data type to its ONNX element type.
func ElemType(dt tensor.DataType) (int32, error) {
	switch dt {
	case tensor.Float32:
		return TensorProtoFloat, nil
	case tensor.Float64:
		return TensorProtoDouble, nil
	case tensor.Int32:
		return TensorProtoInt32, nil
	case tensor.Int64:
		return TensorProtoInt64, nil
	case tensor.Uint8:
		return TensorProtoUint8, nil
	case tensor.Bool:
		return TensorProtoBool, nil
	case tensor.Float16:
		return TensorProtoFloat16, nil
	default:
		return 0, fmt.Errorf("no ONNX element type for %s", dt)
	}
}

// DataTypeOf is the inverse of ElemType.
func DataTypeOf(elem int32) (tensor.DataType, error) {
	for dt := tensor.Float32; dt <= tensor.Float16; dt++ {
		if e, err := ElemType(dt); err == nil && e == elem {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unsupported ONNX element type %d", elem)
}

// StaticShape converts the tensor type's shape. Symbolic dimensions are -1.
func (t *TensorTypeProto) StaticShape() tensor.Shape {
	if t == nil || t.Shape == nil {
		return nil
	}
	s := make(tensor.Shape, len(t.Shape.Dims))
	for i, d := range t.Shape.Dims {
		if d.DimParam != "" {
			s[i] = -1
			continue
		}
		s[i] = int(d.DimValue)
	}
	return s
}

// NewValueInfo describes a tensor value with a static shape.
func NewValueInfo(name string, dt tensor.DataType, shape tensor.Shape) (ValueInfoProto, error) {
	elem, err := ElemType(dt)
	if err != nil {
		return ValueInfoProto{}, err
	}
	dims := make([]DimensionProto, len(shape))
	for i, d := range shape {
		dims[i] = DimensionProto{DimValue: int64(d)}
	}
	return ValueInfoProto{
		Name: name,
		Type: &TypeProto{TensorType: &TensorTypeProto{
			ElemType: elem,
			Shape:    &TensorShapeProto{Dims: dims},
		}},
	}, nil
}
