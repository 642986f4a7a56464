package onnx

import (
	"fmt"
	"slices"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Opset range. Exports below MinimumOpset are allowed but untested.
const (
	MinimumOpset = 7
	LatestOpset  = 13
)

// IRVersion returns the IR version that goes with an opset.
func IRVersion(opset int64) int64 {
	switch {
	case opset <= 8:
		return 3
	case opset == 9:
		return 4
	case opset == 10:
		return 5
	case opset == 11:
		return 6
	default:
		return 7
	}
}

// Producer identifies the exporting tool in the model envelope.
type Producer struct {
	Name    string
	Version string
}

type valueType struct {
	dt    tensor.DataType
	shape tensor.Shape
}

// GraphBuilder assembles one ONNX graph.
//
// Declared values (inputs, outputs, parameters) keep the names they are
// given. Node outputs get temporary names that Build replaces with
// <OpType>_<n>, numbered per op type in node order.
//
// Callers identify their values with comparable keys; Bind and ValueName
// translate keys to names.
type GraphBuilder struct {
	opset   int64
	names   *NameGenerator
	byKey   map[any]string
	types   map[string]valueType
	inputs  []string
	outputs []string
	inits   []*TensorProto
	nodes   []NodeProto
	temps   map[string]bool
	err     error
}

// NewGraphBuilder creates a builder targeting opset.
func NewGraphBuilder(opset int64) *GraphBuilder {
	return &GraphBuilder{
		opset: opset,
		names: NewNameGenerator(),
		byKey: make(map[any]string),
		types: make(map[string]valueType),
		temps: make(map[string]bool),
	}
}

// Opset returns the target opset.
func (g *GraphBuilder) Opset() int64 { return g.opset }

func (g *GraphBuilder) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// Input declares a graph input named after base.
func (g *GraphBuilder) Input(base string, dt tensor.DataType, shape tensor.Shape) string {
	name := g.names.Generate(base)
	g.SetType(name, dt, shape)
	g.inputs = append(g.inputs, name)
	return name
}

// Output declares a graph output named after base. Some node must later
// produce it, usually through Rename.
func (g *GraphBuilder) Output(base string, dt tensor.DataType, shape tensor.Shape) string {
	name := g.names.Generate(base)
	g.SetType(name, dt, shape)
	g.outputs = append(g.outputs, name)
	return name
}

// Param stores t as an initializer named after base.
func (g *GraphBuilder) Param(base string, t *tensor.RawTensor) string {
	name := g.names.Generate(base)
	tp, err := TensorFromRaw(name, t)
	if err != nil {
		g.fail(err)
		return name
	}
	g.SetType(name, t.DType(), t.Shape())
	g.inits = append(g.inits, tp)
	return name
}

// Const emits a Constant node holding t and returns its output.
func (g *GraphBuilder) Const(t *tensor.RawTensor) string {
	tp, err := TensorFromRaw("", t)
	if err != nil {
		g.fail(err)
	}
	out := g.Op("Constant", nil, AttrTensor("value", tp))
	g.SetType(out, t.DType(), t.Shape())
	return out
}

// ConstInt64s emits a 1-D int64 constant, as used for shapes and axes.
func (g *GraphBuilder) ConstInt64s(vs ...int64) string {
	t, err := tensor.FromSlice(slices.Clone(vs), tensor.Shape{len(vs)})
	if err != nil {
		g.fail(err)
		return ""
	}
	return g.Const(t)
}

// ConstScalar emits a rank-0 constant of type dt.
func (g *GraphBuilder) ConstScalar(dt tensor.DataType, v float64) string {
	t, err := tensor.FromFloat64s(tensor.Shape{}, dt, []float64{v})
	if err != nil {
		g.fail(err)
		return ""
	}
	return g.Const(t)
}

// Op appends a single-output node and returns its output name.
func (g *GraphBuilder) Op(opType string, inputs []string, attrs ...AttributeProto) string {
	return g.OpN(opType, inputs, 1, attrs...)[0]
}

// OpN appends a node with n outputs.
func (g *GraphBuilder) OpN(opType string, inputs []string, n int, attrs ...AttributeProto) []string {
	outs := make([]string, n)
	for i := range outs {
		outs[i] = g.names.Generate("tmp" + opType)
		g.temps[outs[i]] = true
	}
	g.nodes = append(g.nodes, NodeProto{
		OpType:     opType,
		Inputs:     slices.Clone(inputs),
		Outputs:    outs,
		Attributes: attrs,
	})
	return slices.Clone(outs)
}

// Bind associates key with name.
func (g *GraphBuilder) Bind(key any, name string) {
	g.byKey[key] = name
}

// Lookup returns the name bound to key.
func (g *GraphBuilder) Lookup(key any) (string, bool) {
	name, ok := g.byKey[key]
	return name, ok
}

// ValueName returns the name bound to key, binding a fresh one first if
// needed.
func (g *GraphBuilder) ValueName(key any) string {
	if name, ok := g.byKey[key]; ok {
		return name
	}
	name := g.names.Generate("v")
	g.byKey[key] = name
	return name
}

// Rename replaces every use of the name from with to, which stops being
// temporary.
func (g *GraphBuilder) Rename(from, to string) {
	g.renameAll(map[string]string{from: to})
}

func (g *GraphBuilder) renameAll(m map[string]string) {
	if len(m) == 0 {
		return
	}
	sub := func(names []string) {
		for i, n := range names {
			if to, ok := m[n]; ok {
				names[i] = to
			}
		}
	}
	for i := range g.nodes {
		sub(g.nodes[i].Inputs)
		sub(g.nodes[i].Outputs)
	}
	for k, n := range g.byKey {
		if to, ok := m[n]; ok {
			g.byKey[k] = to
		}
	}
	for from, to := range m {
		if vt, ok := g.types[from]; ok {
			if _, known := g.types[to]; !known {
				g.types[to] = vt
			}
			delete(g.types, from)
		}
		delete(g.temps, from)
	}
}

// SetType records the type of a value, used for value_info.
func (g *GraphBuilder) SetType(name string, dt tensor.DataType, shape tensor.Shape) {
	g.types[name] = valueType{dt: dt, shape: shape.Clone()}
}

// Type returns the recorded type of a value.
func (g *GraphBuilder) Type(name string) (tensor.DataType, tensor.Shape, bool) {
	vt, ok := g.types[name]
	return vt.dt, vt.shape, ok
}

// Inputs returns the declared input names.
func (g *GraphBuilder) Inputs() []string { return g.inputs }

// Outputs returns the declared output names.
func (g *GraphBuilder) Outputs() []string { return g.outputs }

// Nodes returns the nodes appended so far.
func (g *GraphBuilder) Nodes() []NodeProto { return g.nodes }

// canonicalize renames temporaries to <OpType>_<n> and names the nodes.
func (g *GraphBuilder) canonicalize() {
	seq := make(map[string]int)
	renames := make(map[string]string)
	for i := range g.nodes {
		n := &g.nodes[i]
		var base string
		for {
			base = fmt.Sprintf("%s_%d", n.OpType, seq[n.OpType])
			seq[n.OpType]++
			if g.free(base, len(n.Outputs)) {
				break
			}
		}
		g.names.Reserve(base)
		n.Name = base
		for j, out := range n.Outputs {
			if !g.temps[out] {
				continue
			}
			name := base
			if j > 0 {
				name = fmt.Sprintf("%s_%d", base, j)
				g.names.Reserve(name)
			}
			renames[out] = name
		}
	}
	g.renameAll(renames)
}

func (g *GraphBuilder) free(base string, outputs int) bool {
	if g.names.Taken(base) {
		return false
	}
	for j := 1; j < outputs; j++ {
		if g.names.Taken(fmt.Sprintf("%s_%d", base, j)) {
			return false
		}
	}
	return true
}

func (g *GraphBuilder) valueInfo(name string) ValueInfoProto {
	vt, ok := g.types[name]
	if !ok {
		g.fail(fmt.Errorf("no type recorded for %q", name))
		return ValueInfoProto{Name: name}
	}
	vi, err := NewValueInfo(name, vt.dt, vt.shape)
	if err != nil {
		g.fail(err)
	}
	return vi
}

// Build finalizes the graph into a validated model. The builder must not be
// used afterwards.
func (g *GraphBuilder) Build(graphName string, producer Producer) (*ModelProto, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.canonicalize()

	ir := IRVersion(g.opset)
	graph := &GraphProto{Name: graphName, Nodes: g.nodes}
	for _, in := range g.inputs {
		graph.Inputs = append(graph.Inputs, g.valueInfo(in))
	}
	for _, t := range g.inits {
		graph.Initializers = append(graph.Initializers, *t)
		if ir < 4 {
			graph.Inputs = append(graph.Inputs, g.valueInfo(t.Name))
		}
	}
	declared := make(map[string]bool)
	for _, out := range g.outputs {
		graph.Outputs = append(graph.Outputs, g.valueInfo(out))
		declared[out] = true
	}
	for _, n := range g.nodes {
		for _, out := range n.Outputs {
			if declared[out] {
				continue
			}
			if _, ok := g.types[out]; ok {
				graph.ValueInfo = append(graph.ValueInfo, g.valueInfo(out))
			}
		}
	}
	if g.err != nil {
		return nil, g.err
	}

	model := &ModelProto{
		IRVersion:       ir,
		OpsetImport:     []OperatorSetID{{Domain: "", Version: g.opset}},
		ProducerName:    producer.Name,
		ProducerVersion: producer.Version,
		Graph:           graph,
	}
	if err := Check(model); err != nil {
		return nil, err
	}
	return model, nil
}
