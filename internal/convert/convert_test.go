package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
	"github.com/born-ml/onnxtrace/internal/trace"
)

// harness converts single calls into a fresh graph. Every tensor argument
// becomes a graph input named "in", "in_1"... in order of first use.
type harness struct {
	t     *testing.T
	reg   *Registry
	gb    *onnx.GraphBuilder
	names map[*tensor.RawTensor]string
}

func newHarness(t *testing.T, opset int64) *harness {
	return &harness{t: t, reg: Default(), gb: onnx.NewGraphBuilder(opset), names: make(map[*tensor.RawTensor]string)}
}

func (h *harness) resolve(x *tensor.RawTensor) string {
	if n, ok := h.names[x]; ok {
		return n
	}
	n := h.gb.Input("in", x.DType(), x.Shape())
	h.names[x] = n
	return n
}

func (h *harness) convert(op ops.OpID, args []any, kwargs ...ops.Arg) ([]string, error) {
	call := &trace.Call{Op: op, Receiver: "cpu", Args: args, Kwargs: kwargs}
	if ops.MustLookup(op).Method {
		call.Receiver, call.Args = args[0], args[1:]
	}
	return h.reg.Convert(h.gb, call, h.resolve)
}

func (h *harness) mustConvert(op ops.OpID, args []any, kwargs ...ops.Arg) []string {
	h.t.Helper()
	outs, err := h.convert(op, args, kwargs...)
	require.NoError(h.t, err)
	return outs
}

func (h *harness) opTypes() []string {
	var out []string
	for _, n := range h.gb.Nodes() {
		out = append(out, n.OpType)
	}
	return out
}

func (h *harness) node(opType string) onnx.NodeProto {
	h.t.Helper()
	for _, n := range h.gb.Nodes() {
		if n.OpType == opType {
			return n
		}
	}
	h.t.Fatalf("no %s node in %v", opType, h.opTypes())
	return onnx.NodeProto{}
}

func (h *harness) ints(opType, attr string) []int64 {
	h.t.Helper()
	n := h.node(opType)
	a := n.Attribute(attr)
	require.NotNil(h.t, a, "%s has no attribute %s", opType, attr)
	return a.Ints
}

// constants returns the int64 contents of the Constant nodes, in node order.
func (h *harness) constants() [][]int64 {
	h.t.Helper()
	var out [][]int64
	for _, n := range h.gb.Nodes() {
		if n.OpType != "Constant" {
			continue
		}
		r, err := n.Attribute("value").T.ToRaw()
		require.NoError(h.t, err)
		out = append(out, r.Int64s())
	}
	return out
}

func f32(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Full(tensor.Shape(shape), tensor.Float32, 1)
	require.NoError(t, err)
	return r
}

func TestLookup(t *testing.T) {
	r := Default()

	_, err := r.Lookup("no_such_op", 13)
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)

	c, err := r.Lookup(ops.OpClippedReLU, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(6), c.Since)
	c, err = r.Lookup(ops.OpClippedReLU, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), c.Since)

	_, err = r.Lookup(ops.OpReshape, 4)
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
}

func TestEveryConverterHasASignature(t *testing.T) {
	for _, op := range Default().Ops() {
		_, ok := ops.Lookup(op)
		assert.True(t, ok, "converter for %s has no signature", op)
	}
}

func TestRegisterReplacesSameVersion(t *testing.T) {
	r := NewRegistry()
	r.Register(ops.OpReLU, Converter{Since: 6, Tensors: 1, Fn: elementwise("Relu")})
	r.Register(ops.OpReLU, Converter{Since: 1, Tensors: 1, Fn: elementwise("Relu")})
	r.Register(ops.OpReLU, Converter{Since: 6, Tensors: 1, Fn: elementwise("Elu")})

	gb := onnx.NewGraphBuilder(13)
	x := f32(t, 2)
	_, err := r.Convert(gb, &trace.Call{Op: ops.OpReLU, Receiver: "cpu", Args: []any{x}}, func(*tensor.RawTensor) string { return "x" })
	require.NoError(t, err)
	require.Len(t, gb.Nodes(), 1)
	assert.Equal(t, "Elu", gb.Nodes()[0].OpType)
	assert.Equal(t, []ops.OpID{ops.OpReLU}, r.Ops())
}

func TestConverterPanicIsInternal(t *testing.T) {
	r := NewRegistry()
	r.Register(ops.OpReLU, Converter{Since: 1, Tensors: 1, Fn: func(c *Context) ([]string, error) {
		c.Ins("x") // x is a single tensor
		return nil, nil
	}})
	_, err := r.Convert(onnx.NewGraphBuilder(13), &trace.Call{Op: ops.OpReLU, Receiver: "cpu", Args: []any{f32(t, 2)}},
		func(*tensor.RawTensor) string { return "x" })
	assert.ErrorIs(t, err, exporterr.ErrInternal)
}

func TestBindFailureIsInternal(t *testing.T) {
	h := newHarness(t, 13)
	_, err := h.convert(ops.OpReLU, []any{f32(t, 2)}, ops.Slope(0.1))
	assert.ErrorIs(t, err, exporterr.ErrInternal)
}

func TestElementwise(t *testing.T) {
	h := newHarness(t, 13)
	x := f32(t, 2, 3)
	h.mustConvert(ops.OpAdd, []any{x, x})
	h.mustConvert(ops.OpExp, []any{x})

	assert.Equal(t, []string{"Add", "Exp"}, h.opTypes())
	assert.Equal(t, []string{"in", "in"}, h.node("Add").Inputs)
	assert.Equal(t, []string{"in"}, h.gb.Inputs())
}

func TestScalarArgumentBecomesConstant(t *testing.T) {
	h := newHarness(t, 13)
	x := f32(t, 2, 3)
	h.mustConvert(ops.OpMaximum, []any{x, 2.0})

	assert.Equal(t, []string{"Constant", "Max"}, h.opTypes())
	k := h.node("Constant")
	assert.Equal(t, []string{"in", k.Outputs[0]}, h.node("Max").Inputs)
	dt, shape, ok := h.gb.Type(k.Outputs[0])
	require.True(t, ok)
	assert.Equal(t, tensor.Float32, dt)
	assert.Empty(t, shape)
}

func TestMulConstant(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpMulConstant, []any{f32(t, 3), 0.5})
	assert.Equal(t, []string{"Constant", "Mul"}, h.opTypes())
}

func TestMatMulTransposed(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpMatMul, []any{f32(t, 2, 3), f32(t, 4, 3)}, ops.TransB(true))

	assert.Equal(t, []string{"Transpose", "MatMul"}, h.opTypes())
	assert.Equal(t, []int64{1, 0}, h.ints("Transpose", "perm"))
	assert.Equal(t, []int64{0, 2, 1}, swapLast(3).Ints)
}

func TestLinear(t *testing.T) {
	t.Run("bias", func(t *testing.T) {
		h := newHarness(t, 13)
		h.mustConvert(ops.OpLinear, []any{f32(t, 2, 3), f32(t, 4, 3), f32(t, 4)})

		assert.Equal(t, []string{"Gemm"}, h.opTypes())
		gemm := h.node("Gemm")
		assert.Equal(t, []string{"in", "in_1", "in_2"}, gemm.Inputs)
		assert.Equal(t, int64(1), gemm.Attribute("transB").I)
		assert.Equal(t, int64(0), gemm.Attribute("transA").I)
	})

	t.Run("no bias", func(t *testing.T) {
		h := newHarness(t, 13)
		h.mustConvert(ops.OpLinear, []any{f32(t, 2, 3), f32(t, 4, 3)})

		assert.Equal(t, []string{"Transpose", "MatMul"}, h.opTypes())
		assert.Equal(t, []int64{1, 0}, h.ints("Transpose", "perm"))
		tr := h.node("Transpose")
		assert.Equal(t, []string{"in", tr.Outputs[0]}, h.node("MatMul").Inputs)
	})

	t.Run("flatten", func(t *testing.T) {
		h := newHarness(t, 13)
		h.mustConvert(ops.OpLinear, []any{f32(t, 2, 1, 2, 3), f32(t, 4, 6), f32(t, 4)})

		assert.Equal(t, []string{"Constant", "Reshape", "Gemm"}, h.opTypes())
		assert.Equal(t, [][]int64{{2, -1}}, h.constants())
	})

	t.Run("batch axes", func(t *testing.T) {
		h := newHarness(t, 13)
		_, err := h.convert(ops.OpLinear, []any{f32(t, 2, 3), f32(t, 4, 3)}, ops.NBatchAxes(2))
		assert.ErrorIs(t, err, exporterr.ErrUnsupported)
		assert.ErrorContains(t, err, "n_batch_axes=2")
	})
}

func TestConvolution2D(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpConvolution2D, []any{f32(t, 1, 3, 8, 8), f32(t, 6, 3, 3, 3)}, ops.Stride(2), ops.Pad(1))

	conv := h.node("Conv")
	assert.Len(t, conv.Inputs, 2)
	assert.Equal(t, []int64{3, 3}, h.ints("Conv", "kernel_shape"))
	assert.Equal(t, []int64{1, 1, 1, 1}, h.ints("Conv", "pads"))
	assert.Equal(t, []int64{2, 2}, h.ints("Conv", "strides"))
	assert.Equal(t, []int64{1, 1}, h.ints("Conv", "dilations"))
	assert.Equal(t, int64(1), conv.Attribute("group").I)

	_, err := h.convert(ops.OpConvolution2D, []any{f32(t, 1, 3, 8, 8), f32(t, 6, 3, 3, 3)}, ops.CoverAll(true))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
}

func TestMaxPooling2D(t *testing.T) {
	x := f32(t, 1, 1, 4, 4)

	h := newHarness(t, 13)
	h.mustConvert(ops.OpMaxPooling2D, []any{x, 2})
	assert.Equal(t, []int64{0, 0, 1, 1}, h.ints("MaxPool", "pads"))
	assert.Equal(t, []int64{2, 2}, h.ints("MaxPool", "strides"))

	h = newHarness(t, 13)
	h.mustConvert(ops.OpMaxPooling2D, []any{x, 3}, ops.Stride(1), ops.Pad(1), ops.CoverAll(false))
	assert.Equal(t, []int64{1, 1, 1, 1}, h.ints("MaxPool", "pads"))

	_, err := h.convert(ops.OpMaxPooling2D, []any{x, 1}, ops.Stride(2))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
	assert.ErrorContains(t, err, "padding would exceed the window")

	_, err = h.convert(ops.OpMaxPooling2D, []any{x, 2}, ops.ReturnIndices(true))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
}

func TestAveragePooling2D(t *testing.T) {
	x := f32(t, 1, 1, 4, 4)
	h := newHarness(t, 13)
	h.mustConvert(ops.OpAveragePooling2D, []any{x, 2}, ops.Pad(1))
	assert.Equal(t, []int64{1, 1, 1, 1}, h.ints("AveragePool", "pads"))
	assert.Equal(t, int64(1), h.node("AveragePool").Attribute("count_include_pad").I)

	_, err := h.convert(ops.OpAveragePooling2D, []any{x, 2}, ops.PadValue(1))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
}

func TestBatchNormalization(t *testing.T) {
	x, c := f32(t, 2, 3), f32(t, 3)

	h := newHarness(t, 13)
	h.mustConvert(ops.OpFixedBatchNormalization, []any{x, c, c, c, c}, ops.Eps(1e-3))
	bn := h.node("BatchNormalization")
	assert.Equal(t, []string{"in", "in_1", "in_1", "in_1", "in_1"}, bn.Inputs)
	assert.InDelta(t, 1e-3, bn.Attribute("epsilon").F, 1e-9)

	_, err := h.convert(ops.OpFixedBatchNormalization, []any{x, c, c, c, c}, ops.Axis(0))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)

	_, err = h.convert(ops.OpBatchNormalization, []any{x, c, c})
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
	assert.ErrorContains(t, err, "batch_normalization")
}

func TestSoftmaxAxis(t *testing.T) {
	x := f32(t, 2, 3)

	h := newHarness(t, 9)
	h.mustConvert(ops.OpSoftmax, []any{x})
	assert.Equal(t, int64(1), h.node("Softmax").Attribute("axis").I)
	_, err := h.convert(ops.OpSoftmax, []any{x}, ops.Axis(0))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)

	h = newHarness(t, 13)
	h.mustConvert(ops.OpLogSoftmax, []any{x}, ops.Axis(0))
	assert.Equal(t, int64(0), h.node("LogSoftmax").Attribute("axis").I)
}

func TestClippedReLU(t *testing.T) {
	x := f32(t, 2, 3)

	h := newHarness(t, 9)
	h.mustConvert(ops.OpClippedReLU, []any{x}, ops.Ceil(6))
	clip := h.node("Clip")
	assert.Len(t, clip.Inputs, 1)
	assert.InDelta(t, 6, clip.Attribute("max").F, 1e-9)

	h = newHarness(t, 11)
	h.mustConvert(ops.OpClippedReLU, []any{x}, ops.Ceil(6))
	assert.Equal(t, []string{"Constant", "Constant", "Clip"}, h.opTypes())
	assert.Len(t, h.node("Clip").Inputs, 3)
}

func TestSoftplusBeta(t *testing.T) {
	h := newHarness(t, 13)
	_, err := h.convert(ops.OpSoftplus, []any{f32(t, 2)}, ops.Beta(2))
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
}

func TestReshape(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpReshape, []any{f32(t, 2, 3), tensor.Shape{3, -1}})
	assert.Equal(t, []string{"Constant", "Reshape"}, h.opTypes())
	assert.Equal(t, [][]int64{{3, -1}}, h.constants())
}

func TestSqueezeAndExpandDims(t *testing.T) {
	x := f32(t, 1, 3)

	h := newHarness(t, 11)
	h.mustConvert(ops.OpSqueeze, []any{x}, ops.Axis(0))
	h.mustConvert(ops.OpExpandDims, []any{x, -1})
	assert.Equal(t, []string{"Squeeze", "Unsqueeze"}, h.opTypes())
	assert.Equal(t, []int64{0}, h.ints("Squeeze", "axes"))
	assert.Equal(t, []int64{2}, h.ints("Unsqueeze", "axes"))

	h = newHarness(t, 13)
	h.mustConvert(ops.OpSqueeze, []any{x}, ops.Axis(0))
	h.mustConvert(ops.OpExpandDims, []any{x, -1})
	assert.Equal(t, []string{"Constant", "Squeeze", "Constant", "Unsqueeze"}, h.opTypes())
	assert.Equal(t, [][]int64{{0}, {2}}, h.constants())
}

func TestConcat(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpConcat, []any{[]*tensor.RawTensor{f32(t, 2, 3), f32(t, 2, 1)}}, ops.Axis(-1))

	concat := h.node("Concat")
	assert.Equal(t, []string{"in", "in_1"}, concat.Inputs)
	assert.Equal(t, int64(1), concat.Attribute("axis").I)
}

func TestTile(t *testing.T) {
	h := newHarness(t, 13)
	h.mustConvert(ops.OpTile, []any{f32(t, 2, 3), []int{2}})
	assert.Equal(t, []string{"Constant", "Tile"}, h.opTypes())
	assert.Equal(t, [][]int64{{1, 2}}, h.constants())

	h = newHarness(t, 13)
	h.mustConvert(ops.OpTile, []any{f32(t, 2, 3), []int{2, 1, 1}})
	assert.Equal(t, []string{"Constant", "Reshape", "Constant", "Tile"}, h.opTypes())
	assert.Equal(t, [][]int64{{1, 2, 3}, {2, 1, 1}}, h.constants())
}

func TestCastAndCopy(t *testing.T) {
	h := newHarness(t, 13)
	x := f32(t, 2)
	h.mustConvert(ops.OpCast, []any{x, tensor.Int64})
	h.mustConvert(ops.OpCopy, []any{x})

	assert.Equal(t, []string{"Cast", "Identity"}, h.opTypes())
	assert.Equal(t, int64(onnx.TensorProtoInt64), h.node("Cast").Attribute("to").I)
}

func TestReductions(t *testing.T) {
	x := f32(t, 2, 3)

	h := newHarness(t, 9)
	h.mustConvert(ops.OpSum, []any{x})
	sum := h.node("ReduceSum")
	assert.Nil(t, sum.Attribute("axes"))
	assert.Equal(t, int64(0), sum.Attribute("keepdims").I)

	h.mustConvert(ops.OpMean, []any{x}, ops.Axis(-1), ops.KeepDims(true))
	assert.Equal(t, []int64{1}, h.ints("ReduceMean", "axes"))
	assert.Equal(t, int64(1), h.node("ReduceMean").Attribute("keepdims").I)

	h = newHarness(t, 13)
	h.mustConvert(ops.OpSum, []any{x}, ops.Axis(1))
	assert.Equal(t, []string{"Constant", "ReduceSum"}, h.opTypes())
	assert.Equal(t, [][]int64{{1}}, h.constants())
}

func TestGetItem(t *testing.T) {
	x := f32(t, 2, 3, 4)

	t.Run("integer", func(t *testing.T) {
		h := newHarness(t, 9)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.All(), ops.At(1)}})

		assert.Equal(t, []string{"Slice", "Squeeze"}, h.opTypes())
		assert.Equal(t, []int64{1}, h.ints("Slice", "starts"))
		assert.Equal(t, []int64{2}, h.ints("Slice", "ends"))
		assert.Equal(t, []int64{1}, h.ints("Slice", "axes"))
		assert.Equal(t, []int64{1}, h.ints("Squeeze", "axes"))
	})

	t.Run("negative integer", func(t *testing.T) {
		h := newHarness(t, 9)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.At(-1)}})
		assert.Equal(t, []int64{1}, h.ints("Slice", "starts"))
		assert.Equal(t, []int64{0}, h.ints("Squeeze", "axes"))
	})

	t.Run("inputs", func(t *testing.T) {
		h := newHarness(t, 13)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.All(), ops.At(1)}})

		assert.Equal(t, []string{"Constant", "Constant", "Constant", "Slice", "Constant", "Squeeze"}, h.opTypes())
		assert.Equal(t, [][]int64{{1}, {2}, {1}, {1}}, h.constants())
	})

	t.Run("new axis", func(t *testing.T) {
		h := newHarness(t, 9)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.Ellipsis(), ops.NewAxis()}})
		assert.Equal(t, []string{"Unsqueeze"}, h.opTypes())
		assert.Equal(t, []int64{3}, h.ints("Unsqueeze", "axes"))
	})

	t.Run("mixed", func(t *testing.T) {
		h := newHarness(t, 9)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.Range(0, 1), ops.NewAxis(), ops.RangeFrom(1)}})

		assert.Equal(t, []string{"Slice", "Unsqueeze"}, h.opTypes())
		assert.Equal(t, []int64{0, 1}, h.ints("Slice", "starts"))
		assert.Equal(t, []int64{1, 3}, h.ints("Slice", "ends"))
		assert.Equal(t, []int64{0, 1}, h.ints("Slice", "axes"))
		assert.Equal(t, []int64{1}, h.ints("Unsqueeze", "axes"))
	})

	t.Run("identity", func(t *testing.T) {
		h := newHarness(t, 13)
		h.mustConvert(ops.OpGetItem, []any{x, []ops.Index{ops.All()}})
		assert.Equal(t, []string{"Identity"}, h.opTypes())
	})

	t.Run("unsupported", func(t *testing.T) {
		h := newHarness(t, 13)
		_, err := h.convert(ops.OpGetItem, []any{x, []ops.Index{ops.List(0, 1)}})
		assert.ErrorIs(t, err, exporterr.ErrUnsupported)
		_, err = h.convert(ops.OpGetItem, []any{x, []ops.Index{ops.All().WithStep(2)}})
		assert.ErrorIs(t, err, exporterr.ErrUnsupported)
	})
}

func TestZeros(t *testing.T) {
	h := newHarness(t, 13)
	outs := h.mustConvert(ops.OpZeros, []any{tensor.Shape{2, 2}}, ops.Dtype(tensor.Int64))

	assert.Equal(t, []string{"Constant"}, h.opTypes())
	assert.Equal(t, h.node("Constant").Outputs, outs)
	assert.Equal(t, [][]int64{{0, 0, 0, 0}}, h.constants())
	assert.Empty(t, h.gb.Inputs())
}

func typedFull(t *testing.T, dt tensor.DataType, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Full(tensor.Shape(shape), dt, 1)
	require.NoError(t, err)
	return r
}

func TestBinaryOpsFollowOpsetTypes(t *testing.T) {
	for _, tc := range []struct {
		name  string
		op    ops.OpID
		opset int64
		x, y  *tensor.RawTensor
		ok    bool
	}{
		{"float equal before 11", ops.OpEqual, 10, f32(t, 3), f32(t, 3), false},
		{"float equal", ops.OpEqual, 11, f32(t, 3), f32(t, 3), true},
		{"int equal", ops.OpEqual, 7, typedFull(t, tensor.Int32, 3), typedFull(t, tensor.Int32, 3), true},
		{"int greater before 9", ops.OpGreater, 8, typedFull(t, tensor.Int64, 3), typedFull(t, tensor.Int64, 3), false},
		{"int greater", ops.OpGreater, 9, typedFull(t, tensor.Int64, 3), typedFull(t, tensor.Int64, 3), true},
		{"float less", ops.OpLess, 7, f32(t, 2, 3), f32(t, 3), true},
		{"max broadcast before 8", ops.OpMaximum, 7, f32(t, 2, 3), f32(t, 3), false},
		{"max same shape", ops.OpMaximum, 7, f32(t, 2, 3), f32(t, 2, 3), true},
		{"max broadcast", ops.OpMaximum, 8, f32(t, 2, 3), f32(t, 3), true},
		{"int min before 12", ops.OpMinimum, 11, typedFull(t, tensor.Int32, 3), typedFull(t, tensor.Int32, 3), false},
		{"int min", ops.OpMinimum, 12, typedFull(t, tensor.Int32, 3), typedFull(t, tensor.Int32, 3), true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.opset)
			_, err := h.convert(tc.op, []any{tc.x, tc.y})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, exporterr.ErrUnsupported)
			}
		})
	}
}

func TestLegacyBroadcast(t *testing.T) {
	broadcast := func(h *harness, opType string) *onnx.AttributeProto {
		n := h.node(opType)
		return n.Attribute("broadcast")
	}

	h := newHarness(t, 6)
	h.mustConvert(ops.OpAdd, []any{f32(t, 2, 3), f32(t, 3)})
	a := broadcast(h, "Add")
	require.NotNil(t, a)
	assert.Equal(t, int64(1), a.I)

	h = newHarness(t, 6)
	h.mustConvert(ops.OpMul, []any{f32(t, 2, 3), f32(t, 2, 3)})
	assert.Nil(t, broadcast(h, "Mul"))

	h = newHarness(t, 6)
	h.mustConvert(ops.OpMulConstant, []any{f32(t, 3), 0.5})
	assert.NotNil(t, broadcast(h, "Mul"))

	h = newHarness(t, 6)
	_, err := h.convert(ops.OpSub, []any{f32(t, 3), f32(t, 2, 3)})
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)

	h = newHarness(t, 7)
	h.mustConvert(ops.OpSub, []any{f32(t, 3), f32(t, 2, 3)})
	assert.Nil(t, broadcast(h, "Sub"))
}
