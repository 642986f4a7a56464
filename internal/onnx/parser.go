package onnx

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	model := &ModelProto{}
	if err := model.unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return model, nil
}

// ParseTensor parses a standalone TensorProto, as stored in test data sets.
func ParseTensor(data []byte) (*TensorProto, error) {
	t := &TensorProto{}
	if err := t.unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to parse tensor: %w", err)
	}
	return t, nil
}

// field is one decoded wire field. x holds varint and fixed payloads,
// b holds length-delimited ones.
type field struct {
	num protowire.Number
	typ protowire.Type
	x   uint64
	b   []byte
}

// walk calls fn for each top-level field of a message.
func walk(data []byte, fn func(f field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.x, n = protowire.ConsumeVarint(data)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(data)
			f.x = uint64(v)
		case protowire.Fixed64Type:
			f.x, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(data)
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) str() string { return string(f.b) }

func (f field) i64() int64 { return int64(f.x) } //nolint:gosec // G115: two's complement varint.

func (f field) i32() int32 { return int32(f.x) } //nolint:gosec // G115: two's complement varint.

// int64s appends a repeated varint field, packed or not.
func (f field) int64s(dst []int64) ([]int64, error) {
	if f.typ != protowire.BytesType {
		return append(dst, f.i64()), nil
	}
	for b := f.b; len(b) > 0; {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		dst = append(dst, int64(v)) //nolint:gosec // G115: two's complement varint.
		b = b[n:]
	}
	return dst, nil
}

// float32s appends a repeated float field, packed or not.
func (f field) float32s(dst []float32) ([]float32, error) {
	if f.typ != protowire.BytesType {
		return append(dst, math.Float32frombits(uint32(f.x))), nil //nolint:gosec // G115: fixed32 payload.
	}
	for b := f.b; len(b) > 0; {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		dst = append(dst, math.Float32frombits(v))
		b = b[n:]
	}
	return dst, nil
}

// float64s appends a repeated double field, packed or not.
func (f field) float64s(dst []float64) ([]float64, error) {
	if f.typ != protowire.BytesType {
		return append(dst, math.Float64frombits(f.x)), nil
	}
	for b := f.b; len(b) > 0; {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		dst = append(dst, math.Float64frombits(v))
		b = b[n:]
	}
	return dst, nil
}

func (m *ModelProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // ir_version
			m.IRVersion = f.i64()
		case 2: // producer_name
			m.ProducerName = f.str()
		case 3: // producer_version
			m.ProducerVersion = f.str()
		case 4: // domain
			m.Domain = f.str()
		case 5: // model_version
			m.ModelVersion = f.i64()
		case 6: // doc_string
			m.DocString = f.str()
		case 7: // graph
			m.Graph = &GraphProto{}
			return m.Graph.unmarshal(f.b)
		case 8: // opset_import
			var o OperatorSetID
			if err := o.unmarshal(f.b); err != nil {
				return err
			}
			m.OpsetImport = append(m.OpsetImport, o)
		case 14: // metadata_props
			var e StringStringEntry
			if err := e.unmarshal(f.b); err != nil {
				return err
			}
			m.MetadataProps = append(m.MetadataProps, e)
		}
		return nil
	})
}

func (m *GraphProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // node
			var n NodeProto
			if err := n.unmarshal(f.b); err != nil {
				return err
			}
			m.Nodes = append(m.Nodes, n)
		case 2: // name
			m.Name = f.str()
		case 5: // initializer
			var t TensorProto
			if err := t.unmarshal(f.b); err != nil {
				return err
			}
			m.Initializers = append(m.Initializers, t)
		case 10: // doc_string
			m.DocString = f.str()
		case 11, 12, 13: // input, output, value_info
			var vi ValueInfoProto
			if err := vi.unmarshal(f.b); err != nil {
				return err
			}
			switch f.num {
			case 11:
				m.Inputs = append(m.Inputs, vi)
			case 12:
				m.Outputs = append(m.Outputs, vi)
			default:
				m.ValueInfo = append(m.ValueInfo, vi)
			}
		}
		return nil
	})
}

func (m *NodeProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // input
			m.Inputs = append(m.Inputs, f.str())
		case 2: // output
			m.Outputs = append(m.Outputs, f.str())
		case 3: // name
			m.Name = f.str()
		case 4: // op_type
			m.OpType = f.str()
		case 5: // attribute
			var a AttributeProto
			if err := a.unmarshal(f.b); err != nil {
				return err
			}
			m.Attributes = append(m.Attributes, a)
		case 6: // doc_string
			m.DocString = f.str()
		case 7: // domain
			m.Domain = f.str()
		}
		return nil
	})
}

func (m *TensorProto) unmarshal(data []byte) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // dims
			m.Dims, err = f.int64s(m.Dims)
		case 2: // data_type
			m.DataType = f.i32()
		case 4: // float_data
			m.FloatData, err = f.float32s(m.FloatData)
		case 5: // int32_data
			var vs []int64
			vs, err = f.int64s(nil)
			for _, v := range vs {
				m.Int32Data = append(m.Int32Data, int32(v)) //nolint:gosec // G115: int32 field.
			}
		case 7: // int64_data
			m.Int64Data, err = f.int64s(m.Int64Data)
		case 8: // name
			m.Name = f.str()
		case 9: // raw_data
			m.RawData = bytes.Clone(f.b)
		case 10: // double_data
			m.DoubleData, err = f.float64s(m.DoubleData)
		case 12: // doc_string
			m.DocString = f.str()
		}
		return err
	})
}

func (m *ValueInfoProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // name
			m.Name = f.str()
		case 2: // type
			m.Type = &TypeProto{}
			return m.Type.unmarshal(f.b)
		case 3: // doc_string
			m.DocString = f.str()
		}
		return nil
	})
}

func (m *TypeProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		if f.num == 1 { // tensor_type
			m.TensorType = &TensorTypeProto{}
			return m.TensorType.unmarshal(f.b)
		}
		return nil
	})
}

func (m *TensorTypeProto) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // elem_type
			m.ElemType = f.i32()
		case 2: // shape
			m.Shape = &TensorShapeProto{}
			return walk(f.b, func(f field) error {
				if f.num != 1 { // dim
					return nil
				}
				var d DimensionProto
				err := walk(f.b, func(f field) error {
					switch f.num {
					case 1:
						d.DimValue = f.i64()
					case 2:
						d.DimParam = f.str()
					}
					return nil
				})
				m.Shape.Dims = append(m.Shape.Dims, d)
				return err
			})
		}
		return nil
	})
}

func (m *AttributeProto) unmarshal(data []byte) error {
	return walk(data, func(f field) (err error) {
		switch f.num {
		case 1: // name
			m.Name = f.str()
		case 2: // f
			m.F = math.Float32frombits(uint32(f.x)) //nolint:gosec // G115: fixed32 payload.
		case 3: // i
			m.I = f.i64()
		case 4: // s
			m.S = bytes.Clone(f.b)
		case 5: // t
			m.T = &TensorProto{}
			err = m.T.unmarshal(f.b)
		case 6: // g
			m.G = &GraphProto{}
			err = m.G.unmarshal(f.b)
		case 7: // floats
			m.Floats, err = f.float32s(m.Floats)
		case 8: // ints
			m.Ints, err = f.int64s(m.Ints)
		case 9: // strings
			m.Strings = append(m.Strings, bytes.Clone(f.b))
		case 10: // tensors
			var t TensorProto
			err = t.unmarshal(f.b)
			m.Tensors = append(m.Tensors, t)
		case 11: // graphs
			var g GraphProto
			err = g.unmarshal(f.b)
			m.Graphs = append(m.Graphs, g)
		case 13: // doc_string
			m.DocString = f.str()
		case 20: // type
			m.Type = f.i32()
		}
		return err
	})
}

func (m *OperatorSetID) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // domain
			m.Domain = f.str()
		case 2: // version
			m.Version = f.i64()
		}
		return nil
	})
}

func (m *StringStringEntry) unmarshal(data []byte) error {
	return walk(data, func(f field) error {
		switch f.num {
		case 1: // key
			m.Key = f.str()
		case 2: // value
			m.Value = f.str()
		}
		return nil
	})
}
