package operators

import "github.com/born-ml/onnxtrace/internal/tensor"

// Node is an ONNX node in evaluation form. It mirrors onnx.NodeProto so that
// this package does not import the onnx package.
type Node struct {
	Name       string
	OpType     string
	Inputs     []string
	Outputs    []string
	Attributes []Attribute
}

// Attribute is a node attribute. T holds a decoded tensor attribute.
type Attribute struct {
	Name   string
	F      float32
	I      int64
	Floats []float32
	Ints   []int64
	T      *tensor.RawTensor
}

func (n *Node) attr(name string) *Attribute {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return &n.Attributes[i]
		}
	}
	return nil
}

// GetAttrInt returns an integer attribute or defaultVal.
func GetAttrInt(node *Node, name string, defaultVal int64) int64 {
	if a := node.attr(name); a != nil {
		return a.I
	}
	return defaultVal
}

// GetAttrInts returns an integer list attribute, or nil.
func GetAttrInts(node *Node, name string) []int64 {
	if a := node.attr(name); a != nil {
		return a.Ints
	}
	return nil
}

// GetAttrFloat returns a float attribute or defaultVal.
func GetAttrFloat(node *Node, name string, defaultVal float32) float32 {
	if a := node.attr(name); a != nil {
		return a.F
	}
	return defaultVal
}

// HasAttr reports whether the node carries the attribute.
func HasAttr(node *Node, name string) bool { return node.attr(name) != nil }

func toInts(vs []int64) []int {
	if vs == nil {
		return nil
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}

// axesFrom reads an axes list from the input at index i when present, or
// from the attribute otherwise. Opset 13 moved several attributes to inputs.
func axesFrom(node *Node, inputs []*tensor.RawTensor, i int, attr string) []int {
	if len(inputs) > i && inputs[i] != nil {
		return toInts(inputs[i].Int64s())
	}
	return toInts(GetAttrInts(node, attr))
}
