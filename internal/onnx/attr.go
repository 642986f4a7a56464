package onnx

// AttrInt makes an INT attribute.
func AttrInt(name string, v int64) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoInt, I: v}
}

// AttrInts makes an INTS attribute.
func AttrInts(name string, vs ...int64) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoInts, Ints: vs}
}

// AttrFloat makes a FLOAT attribute.
func AttrFloat(name string, v float32) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoFloat, F: v}
}

// AttrFloats makes a FLOATS attribute.
func AttrFloats(name string, vs ...float32) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoFloats, Floats: vs}
}

// AttrString makes a STRING attribute.
func AttrString(name, s string) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoString, S: []byte(s)}
}

// AttrTensor makes a TENSOR attribute.
func AttrTensor(name string, t *TensorProto) AttributeProto {
	return AttributeProto{Name: name, Type: AttributeProtoTensor, T: t}
}

// Ints64 widens ints for INTS attributes and shape tensors.
func Ints64(vs []int) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = int64(v)
	}
	return out
}

// Attribute returns the attribute called name, or nil.
func (n *NodeProto) Attribute(name string) *AttributeProto {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return &n.Attributes[i]
		}
	}
	return nil
}
