package onnx

import (
	"fmt"
	"sort"
)

// ValueSummary is the name and static type of a graph input or output.
type ValueSummary struct {
	Name  string
	Type  string
	Shape []int
}

// ModelInfo contains basic information about an ONNX model.
type ModelInfo struct {
	IRVersion       int64
	OpsetVersion    int64
	ProducerName    string
	ProducerVersion string
	GraphName       string
	Inputs          []ValueSummary
	Outputs         []ValueSummary
	NodeCount       int
	WeightCount     int
	OpCounts        map[string]int
}

// OpTypes returns the op types used by the graph, sorted.
func (i *ModelInfo) OpTypes() []string {
	out := make([]string, 0, len(i.OpCounts))
	for op := range i.OpCounts {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// GetModelInfo extracts basic info from an ONNX file.
func GetModelInfo(path string) (*ModelInfo, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Describe(proto), nil
}

// Describe summarizes a parsed model.
func Describe(proto *ModelProto) *ModelInfo {
	info := &ModelInfo{
		IRVersion:       proto.IRVersion,
		ProducerName:    proto.ProducerName,
		ProducerVersion: proto.ProducerVersion,
		OpCounts:        make(map[string]int),
	}

	info.OpsetVersion = defaultOpset(proto)

	if proto.Graph == nil {
		return info
	}
	g := proto.Graph
	info.GraphName = g.Name

	for _, vi := range runtimeInputs(g) {
		info.Inputs = append(info.Inputs, summarize(vi))
	}
	for i := range g.Outputs {
		info.Outputs = append(info.Outputs, summarize(&g.Outputs[i]))
	}

	for i := range g.Nodes {
		info.OpCounts[g.Nodes[i].OpType]++
	}
	info.NodeCount = len(g.Nodes)
	info.WeightCount = len(g.Initializers)
	return info
}

func summarize(vi *ValueInfoProto) ValueSummary {
	s := ValueSummary{Name: vi.Name, Type: "?"}
	if vi.Type == nil || vi.Type.TensorType == nil {
		return s
	}
	tt := vi.Type.TensorType
	if dt, err := DataTypeOf(tt.ElemType); err == nil {
		s.Type = dt.String()
	} else {
		s.Type = fmt.Sprintf("elem(%d)", tt.ElemType)
	}
	s.Shape = tt.StaticShape()
	return s
}
