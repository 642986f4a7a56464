package onnx

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a model in the protobuf wire format.
//
// Fields are written in field-number order. Scalars that carry meaning even
// when zero (versions, element types, dimensions, attribute values) are
// always written.
func Marshal(m *ModelProto) []byte {
	return m.marshal(nil)
}

// MarshalTensor encodes a standalone TensorProto.
func MarshalTensor(t *TensorProto) []byte {
	return t.marshal(nil)
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v)) //nolint:gosec // G115: two's complement varint.
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendOptString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendString(b, num, s)
}

func appendPackedVarints[T int32 | int64](b []byte, num protowire.Number, vs []T) []byte {
	if len(vs) == 0 {
		return b
	}
	var p []byte
	for _, v := range vs {
		p = protowire.AppendVarint(p, uint64(v)) //nolint:gosec // G115: two's complement varint.
	}
	return appendBytes(b, num, p)
}

func appendPackedFloats(b []byte, num protowire.Number, vs []float32) []byte {
	if len(vs) == 0 {
		return b
	}
	p := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		p = protowire.AppendFixed32(p, math.Float32bits(v))
	}
	return appendBytes(b, num, p)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	p := make([]byte, 0, 8*len(vs))
	for _, v := range vs {
		p = protowire.AppendFixed64(p, math.Float64bits(v))
	}
	return appendBytes(b, num, p)
}

func (m *ModelProto) marshal(b []byte) []byte {
	b = appendVarint(b, 1, m.IRVersion)
	b = appendOptString(b, 2, m.ProducerName)
	b = appendOptString(b, 3, m.ProducerVersion)
	b = appendOptString(b, 4, m.Domain)
	if m.ModelVersion != 0 {
		b = appendVarint(b, 5, m.ModelVersion)
	}
	b = appendOptString(b, 6, m.DocString)
	if m.Graph != nil {
		b = appendBytes(b, 7, m.Graph.marshal(nil))
	}
	for i := range m.OpsetImport {
		b = appendBytes(b, 8, m.OpsetImport[i].marshal(nil))
	}
	for i := range m.MetadataProps {
		b = appendBytes(b, 14, m.MetadataProps[i].marshal(nil))
	}
	return b
}

func (m *GraphProto) marshal(b []byte) []byte {
	for i := range m.Nodes {
		b = appendBytes(b, 1, m.Nodes[i].marshal(nil))
	}
	b = appendOptString(b, 2, m.Name)
	for i := range m.Initializers {
		b = appendBytes(b, 5, m.Initializers[i].marshal(nil))
	}
	b = appendOptString(b, 10, m.DocString)
	for i := range m.Inputs {
		b = appendBytes(b, 11, m.Inputs[i].marshal(nil))
	}
	for i := range m.Outputs {
		b = appendBytes(b, 12, m.Outputs[i].marshal(nil))
	}
	for i := range m.ValueInfo {
		b = appendBytes(b, 13, m.ValueInfo[i].marshal(nil))
	}
	return b
}

func (m *NodeProto) marshal(b []byte) []byte {
	// Empty names mark omitted optional inputs and must be kept.
	for _, in := range m.Inputs {
		b = appendString(b, 1, in)
	}
	for _, out := range m.Outputs {
		b = appendString(b, 2, out)
	}
	b = appendOptString(b, 3, m.Name)
	b = appendString(b, 4, m.OpType)
	for i := range m.Attributes {
		b = appendBytes(b, 5, m.Attributes[i].marshal(nil))
	}
	b = appendOptString(b, 6, m.DocString)
	b = appendOptString(b, 7, m.Domain)
	return b
}

func (m *AttributeProto) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	switch m.Type {
	case AttributeProtoFloat:
		b = protowire.AppendTag(b, 2, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(m.F))
	case AttributeProtoInt:
		b = appendVarint(b, 3, m.I)
	case AttributeProtoString:
		b = appendBytes(b, 4, m.S)
	case AttributeProtoTensor:
		if m.T != nil {
			b = appendBytes(b, 5, m.T.marshal(nil))
		}
	case AttributeProtoGraph:
		if m.G != nil {
			b = appendBytes(b, 6, m.G.marshal(nil))
		}
	case AttributeProtoFloats:
		for _, f := range m.Floats {
			b = protowire.AppendTag(b, 7, protowire.Fixed32Type)
			b = protowire.AppendFixed32(b, math.Float32bits(f))
		}
	case AttributeProtoInts:
		for _, i := range m.Ints {
			b = appendVarint(b, 8, i)
		}
	case AttributeProtoStrings:
		for _, s := range m.Strings {
			b = appendBytes(b, 9, s)
		}
	case AttributeProtoTensors:
		for i := range m.Tensors {
			b = appendBytes(b, 10, m.Tensors[i].marshal(nil))
		}
	case AttributeProtoGraphs:
		for i := range m.Graphs {
			b = appendBytes(b, 11, m.Graphs[i].marshal(nil))
		}
	}
	b = appendOptString(b, 13, m.DocString)
	b = appendVarint(b, 20, int64(m.Type))
	return b
}

func (m *TensorProto) marshal(b []byte) []byte {
	for _, d := range m.Dims {
		b = appendVarint(b, 1, d)
	}
	b = appendVarint(b, 2, int64(m.DataType))
	b = appendPackedFloats(b, 4, m.FloatData)
	b = appendPackedVarints(b, 5, m.Int32Data)
	b = appendPackedVarints(b, 7, m.Int64Data)
	b = appendOptString(b, 8, m.Name)
	if len(m.RawData) > 0 {
		b = appendBytes(b, 9, m.RawData)
	}
	b = appendPackedDoubles(b, 10, m.DoubleData)
	b = appendOptString(b, 12, m.DocString)
	return b
}

func (m *ValueInfoProto) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Name)
	if m.Type != nil {
		b = appendBytes(b, 2, m.Type.marshal(nil))
	}
	b = appendOptString(b, 3, m.DocString)
	return b
}

func (m *TypeProto) marshal(b []byte) []byte {
	if t := m.TensorType; t != nil {
		var tb []byte
		tb = appendVarint(tb, 1, int64(t.ElemType))
		if t.Shape != nil {
			var sb []byte
			for _, d := range t.Shape.Dims {
				var db []byte
				if d.DimParam != "" {
					db = appendString(db, 2, d.DimParam)
				} else {
					db = appendVarint(db, 1, d.DimValue)
				}
				sb = appendBytes(sb, 1, db)
			}
			tb = appendBytes(tb, 2, sb)
		}
		b = appendBytes(b, 1, tb)
	}
	return b
}

func (m *OperatorSetID) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Domain)
	return appendVarint(b, 2, m.Version)
}

func (m *StringStringEntry) marshal(b []byte) []byte {
	b = appendString(b, 1, m.Key)
	return appendString(b, 2, m.Value)
}
