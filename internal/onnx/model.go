package onnx

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/onnx/operators"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Model is a loaded ONNX model ready for evaluation. It executes the graph
// with the primitives of the provided backend.
type Model struct {
	proto        *ModelProto
	registry     *operators.Registry
	backend      ops.Backend
	tensors      map[string]*tensor.RawTensor // initializers
	inputNames   []string
	outputNames  []string
	sortedNodes  []*operators.Node
	opsetVersion int64
}

// InputNames returns the names of the runtime inputs.
func (m *Model) InputNames() []string {
	return m.inputNames
}

// OutputNames returns the names of the graph outputs.
func (m *Model) OutputNames() []string {
	return m.outputNames
}

// OpsetVersion returns the default domain opset.
func (m *Model) OpsetVersion() int64 {
	return m.opsetVersion
}

// Metadata returns model metadata as key-value pairs.
func (m *Model) Metadata() map[string]string {
	meta := make(map[string]string)
	for _, prop := range m.proto.MetadataProps {
		meta[prop.Key] = prop.Value
	}
	meta["producer_name"] = m.proto.ProducerName
	meta["producer_version"] = m.proto.ProducerVersion
	meta["domain"] = m.proto.Domain
	return meta
}

// Run evaluates the model with inputs in graph input order and returns the
// outputs in graph output order.
func (m *Model) Run(inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if len(inputs) != len(m.inputNames) {
		return nil, fmt.Errorf("model has %d inputs, got %d", len(m.inputNames), len(inputs))
	}
	named := make(map[string]*tensor.RawTensor, len(inputs))
	for i, name := range m.inputNames {
		named[name] = inputs[i]
	}

	results, err := m.ForwardNamed(named)
	if err != nil {
		return nil, err
	}
	out := make([]*tensor.RawTensor, len(m.outputNames))
	for i, name := range m.outputNames {
		out[i] = results[name]
	}
	return out, nil
}

// ForwardNamed evaluates the model with named inputs and returns its outputs
// by name.
func (m *Model) ForwardNamed(inputs map[string]*tensor.RawTensor) (map[string]*tensor.RawTensor, error) {
	tensors := make(map[string]*tensor.RawTensor, len(m.tensors)+len(inputs))
	for name, t := range m.tensors {
		tensors[name] = t
	}
	for name, t := range inputs {
		tensors[name] = t
	}
	for _, name := range m.inputNames {
		if _, ok := tensors[name]; !ok {
			return nil, fmt.Errorf("missing input: %s", name)
		}
	}

	ctx := &operators.Context{Backend: m.backend, Opset: m.opsetVersion}
	for _, node := range m.sortedNodes {
		nodeInputs := make([]*tensor.RawTensor, len(node.Inputs))
		for i, name := range node.Inputs {
			if name == "" {
				continue // omitted optional input
			}
			t, ok := tensors[name]
			if !ok {
				return nil, fmt.Errorf("node %s: missing input %s", node.Name, name)
			}
			nodeInputs[i] = t
		}

		outputs, err := m.registry.Execute(ctx, node, nodeInputs)
		if err != nil {
			return nil, fmt.Errorf("node %s (%s): %w", node.Name, node.OpType, err)
		}
		if len(outputs) < len(node.Outputs) {
			return nil, fmt.Errorf("node %s (%s): %d outputs for %d names", node.Name, node.OpType, len(outputs), len(node.Outputs))
		}
		for i, name := range node.Outputs {
			tensors[name] = outputs[i]
		}
	}

	result := make(map[string]*tensor.RawTensor, len(m.outputNames))
	for _, name := range m.outputNames {
		t, ok := tensors[name]
		if !ok {
			return nil, fmt.Errorf("missing output: %s", name)
		}
		result[name] = t
	}
	return result, nil
}

func (m *Model) compile() error {
	g := m.proto.Graph
	if g == nil {
		return fmt.Errorf("model has no graph")
	}

	m.tensors = make(map[string]*tensor.RawTensor, len(g.Initializers))
	for i := range g.Initializers {
		init := &g.Initializers[i]
		t, err := init.ToRaw()
		if err != nil {
			return fmt.Errorf("initializer %s: %w", init.Name, err)
		}
		m.tensors[init.Name] = t
	}

	for _, vi := range runtimeInputs(g) {
		m.inputNames = append(m.inputNames, vi.Name)
	}
	for i := range g.Outputs {
		m.outputNames = append(m.outputNames, g.Outputs[i].Name)
	}

	for _, node := range topologicalSort(g.Nodes) {
		n, err := evalNode(node)
		if err != nil {
			return err
		}
		m.sortedNodes = append(m.sortedNodes, n)
	}
	m.opsetVersion = defaultOpset(m.proto)
	return nil
}

// runtimeInputs returns the graph inputs that are not initializers; IR < 4
// lists initializers among the inputs.
func runtimeInputs(g *GraphProto) []*ValueInfoProto {
	initNames := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		initNames[g.Initializers[i].Name] = true
	}
	var out []*ValueInfoProto
	for i := range g.Inputs {
		if !initNames[g.Inputs[i].Name] {
			out = append(out, &g.Inputs[i])
		}
	}
	return out
}

func defaultOpset(proto *ModelProto) int64 {
	for _, opset := range proto.OpsetImport {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			return opset.Version
		}
	}
	return 0
}

// evalNode converts a NodeProto, decoding tensor attributes.
func evalNode(proto *NodeProto) (*operators.Node, error) {
	attrs := make([]operators.Attribute, len(proto.Attributes))
	for i := range proto.Attributes {
		a := &proto.Attributes[i]
		attrs[i] = operators.Attribute{
			Name:   a.Name,
			F:      a.F,
			I:      a.I,
			Floats: a.Floats,
			Ints:   a.Ints,
		}
		if a.T != nil {
			t, err := a.T.ToRaw()
			if err != nil {
				return nil, fmt.Errorf("node %s: attribute %s: %w", proto.Name, a.Name, err)
			}
			attrs[i].T = t
		}
	}
	return &operators.Node{
		Name:       proto.Name,
		OpType:     proto.OpType,
		Inputs:     proto.Inputs,
		Outputs:    proto.Outputs,
		Attributes: attrs,
	}, nil
}

// topologicalSort orders nodes so that producers run before consumers.
func topologicalSort(nodes []NodeProto) []*NodeProto {
	producer := make(map[string]int)
	for i := range nodes {
		for _, output := range nodes[i].Outputs {
			producer[output] = i
		}
	}

	visited := make([]bool, len(nodes))
	result := make([]*NodeProto, 0, len(nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, input := range nodes[i].Inputs {
			if dep, ok := producer[input]; ok {
				visit(dep)
			}
		}
		result = append(result, &nodes[i])
	}
	for i := range nodes {
		visit(i)
	}
	return result
}
