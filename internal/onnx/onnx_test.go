package onnx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

var producer = Producer{Name: "onnxtrace", Version: "test"}

func TestNameGenerator(t *testing.T) {
	g := NewNameGenerator()
	assert.Equal(t, "Input", g.Generate("Input"))
	assert.Equal(t, "Input_1", g.Generate("Input"))
	assert.True(t, g.Reserve("Input_2"))
	assert.False(t, g.Reserve("Input_2"))
	assert.Equal(t, "Input_3", g.Generate("Input"))
	assert.Equal(t, "Output", g.Generate("Output"))
}

func reluModel(t *testing.T) *ModelProto {
	t.Helper()
	gb := NewGraphBuilder(LatestOpset)
	x := gb.Input("Input", tensor.Float32, tensor.Shape{2, 4})
	y := gb.Output("Output", tensor.Float32, tensor.Shape{2, 4})
	gb.Rename(gb.Op("Relu", []string{x}), y)
	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)
	return m
}

func TestBuildSingleNode(t *testing.T) {
	m := reluModel(t)

	assert.Equal(t, int64(7), m.IRVersion)
	assert.Equal(t, []OperatorSetID{{Version: LatestOpset}}, m.OpsetImport)
	assert.Equal(t, "onnxtrace", m.ProducerName)
	require.Len(t, m.Graph.Nodes, 1)
	n := m.Graph.Nodes[0]
	assert.Equal(t, "Relu_0", n.Name)
	assert.Equal(t, []string{"Input"}, n.Inputs)
	assert.Equal(t, []string{"Output"}, n.Outputs)
	assert.Empty(t, m.Graph.ValueInfo)
}

func TestMarshalParseRoundTrip(t *testing.T) {
	gb := NewGraphBuilder(9)
	x := gb.Input("Input", tensor.Float32, tensor.Shape{2, 3})
	w, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	wn := gb.Param("param_W", w)
	y := gb.Output("Output", tensor.Float32, tensor.Shape{2, 2})
	mm := gb.Op("Gemm", []string{x, wn}, AttrFloat("alpha", 1), AttrInt("transA", 0), AttrInt("transB", 1))
	gb.Rename(mm, y)
	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)

	parsed, err := Parse(Marshal(m))
	require.NoError(t, err)
	if diff := cmp.Diff(m, parsed, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	transA := parsed.Graph.Nodes[0].Attribute("transA")
	require.NotNil(t, transA, "zero-valued attributes must survive")
	assert.Equal(t, int32(AttributeProtoInt), transA.Type)
	assert.Equal(t, int64(0), transA.I)
}

func TestTempsAreRenumberedPerOpType(t *testing.T) {
	gb := NewGraphBuilder(LatestOpset)
	x := gb.Input("Input", tensor.Float32, tensor.Shape{3})
	a := gb.Op("Relu", []string{x})
	gb.SetType(a, tensor.Float32, tensor.Shape{3})
	b := gb.Op("Relu", []string{a})
	gb.SetType(b, tensor.Float32, tensor.Shape{3})
	c := gb.Op("Add", []string{a, b})
	y := gb.Output("Output", tensor.Float32, tensor.Shape{3})
	gb.Rename(c, y)

	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)
	nodes := m.Graph.Nodes
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"Relu_0"}, nodes[0].Outputs)
	assert.Equal(t, []string{"Relu_1"}, nodes[1].Outputs)
	assert.Equal(t, []string{"Relu_0", "Relu_1"}, nodes[2].Inputs)
	assert.Equal(t, []string{"Output"}, nodes[2].Outputs)
	assert.Equal(t, "Add_0", nodes[2].Name)

	var infos []string
	for _, vi := range m.Graph.ValueInfo {
		infos = append(infos, vi.Name)
	}
	assert.Equal(t, []string{"Relu_0", "Relu_1"}, infos)
}

func TestCanonicalNamesSkipTakenNames(t *testing.T) {
	gb := NewGraphBuilder(LatestOpset)
	x := gb.Input("Relu_0", tensor.Float32, tensor.Shape{1})
	y := gb.Output("Output", tensor.Float32, tensor.Shape{1})
	r := gb.Op("Relu", []string{x})
	gb.SetType(r, tensor.Float32, tensor.Shape{1})
	gb.Rename(gb.Op("Neg", []string{r}), y)

	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)
	assert.Equal(t, []string{"Relu_1"}, m.Graph.Nodes[0].Outputs)
}

func TestOldOpsetListsInitializersAsInputs(t *testing.T) {
	gb := NewGraphBuilder(MinimumOpset)
	x := gb.Input("Input", tensor.Float32, tensor.Shape{2})
	b := gb.Param("param_b", tensor.Scalar[float32](1))
	y := gb.Output("Output", tensor.Float32, tensor.Shape{2})
	gb.Rename(gb.Op("Add", []string{x, b}), y)

	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.IRVersion)
	require.Len(t, m.Graph.Inputs, 2)
	assert.Equal(t, "param_b", m.Graph.Inputs[1].Name)
	assert.Equal(t, 1, len(Describe(m).Inputs))
}

func TestConstNodes(t *testing.T) {
	gb := NewGraphBuilder(LatestOpset)
	x := gb.Input("Input", tensor.Float32, tensor.Shape{2, 3})
	shape := gb.ConstInt64s(3, 2)
	y := gb.Output("Output", tensor.Float32, tensor.Shape{3, 2})
	gb.Rename(gb.Op("Reshape", []string{x, shape}), y)

	m, err := gb.Build("Graph", producer)
	require.NoError(t, err)
	c := m.Graph.Nodes[0]
	assert.Equal(t, "Constant", c.OpType)
	assert.Equal(t, []string{"Constant_0"}, c.Outputs)
	v := c.Attribute("value")
	require.NotNil(t, v)
	raw, err := v.T.ToRaw()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, raw.AsInt64())
}

func TestBuildRejectsInvalidGraphs(t *testing.T) {
	t.Run("unproduced output", func(t *testing.T) {
		gb := NewGraphBuilder(LatestOpset)
		gb.Input("Input", tensor.Float32, tensor.Shape{1})
		gb.Output("Output", tensor.Float32, tensor.Shape{1})
		_, err := gb.Build("Graph", producer)
		assert.ErrorIs(t, err, exporterr.ErrInvalidModel)
		assert.Contains(t, err.Error(), `output "Output" is never produced`)
	})

	t.Run("dangling input", func(t *testing.T) {
		gb := NewGraphBuilder(LatestOpset)
		y := gb.Output("Output", tensor.Float32, tensor.Shape{1})
		gb.Rename(gb.Op("Relu", []string{"nowhere"}), y)
		_, err := gb.Build("Graph", producer)
		assert.ErrorIs(t, err, exporterr.ErrInvalidModel)
		assert.Contains(t, err.Error(), `"nowhere"`)
	})

	t.Run("redefined value", func(t *testing.T) {
		m := reluModel(t)
		m.Graph.Nodes = append(m.Graph.Nodes, NodeProto{OpType: "Neg", Inputs: []string{"Input"}, Outputs: []string{"Input"}})
		err := Check(m)
		assert.ErrorIs(t, err, exporterr.ErrInvalidModel)
		assert.Contains(t, err.Error(), "already defined")
	})

	t.Run("output is an input", func(t *testing.T) {
		m := reluModel(t)
		m.Graph.Outputs = append(m.Graph.Outputs, m.Graph.Inputs[0])
		err := Check(m)
		assert.ErrorIs(t, err, exporterr.ErrInvalidModel)
		assert.Contains(t, err.Error(), `output "Input" is also a graph input`)
	})

	t.Run("missing opset", func(t *testing.T) {
		m := reluModel(t)
		m.OpsetImport = nil
		assert.ErrorIs(t, Check(m), exporterr.ErrInvalidModel)
	})
}

func TestTensorRoundTrip(t *testing.T) {
	orig, err := tensor.FromSlice([]int64{1, -2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	tp, err := TensorFromRaw("x", orig)
	require.NoError(t, err)

	parsed, err := ParseTensor(MarshalTensor(tp))
	require.NoError(t, err)
	assert.Equal(t, "x", parsed.Name)
	got, err := parsed.ToRaw()
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
	assert.Equal(t, []int64{1, -2, 3, 4}, got.AsInt64())
}

func TestTensorFromTypedFields(t *testing.T) {
	tp := &TensorProto{DataType: TensorProtoFloat, Dims: []int64{3}, FloatData: []float32{1, 2, 3}}
	got, err := ParseTensor(MarshalTensor(tp))
	require.NoError(t, err)
	raw, err := got.ToRaw()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, raw.AsFloat32())

	tp.FloatData = tp.FloatData[:2]
	_, err = tp.ToRaw()
	assert.Error(t, err)
}

func TestMarshalText(t *testing.T) {
	require.NoError(t, Available())

	text, err := MarshalText(reluModel(t))
	require.NoError(t, err)
	for _, want := range []string{"ir_version", "op_type", `"Relu"`, `"Input"`, "dim_value"} {
		assert.True(t, strings.Contains(text, want), "text rendering lacks %s:\n%s", want, text)
	}
}

func TestDescribe(t *testing.T) {
	info := Describe(reluModel(t))
	assert.Equal(t, int64(LatestOpset), info.OpsetVersion)
	assert.Equal(t, []ValueSummary{{Name: "Input", Type: "float32", Shape: []int{2, 4}}}, info.Inputs)
	assert.Equal(t, 1, info.NodeCount)
	assert.Equal(t, []string{"Relu"}, info.OpTypes())
}
