package operators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func f32(t *testing.T, vals []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(vals, tensor.Shape(shape))
	require.NoError(t, err)
	return r
}

func i64(t *testing.T, vals ...int64) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(vals, tensor.Shape{len(vals)})
	require.NoError(t, err)
	return r
}

func iota32(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	vals := make([]float32, tensor.Shape(shape).NumElements())
	for i := range vals {
		vals[i] = float32(i)
	}
	return f32(t, vals, shape...)
}

func run(t *testing.T, opset int64, node *Node, inputs ...*tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	ctx := &Context{Backend: cpu.New(), Opset: opset}
	outs, err := NewRegistry().Execute(ctx, node, inputs)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	return outs[0]
}

func node(op string, attrs ...Attribute) *Node {
	return &Node{Name: op + "_0", OpType: op, Outputs: []string{"y"}, Attributes: attrs}
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	for _, op := range []string{
		"Add", "Sub", "Mul", "Div", "MatMul", "Gemm",
		"Relu", "Softmax", "Clip", "Conv", "MaxPool", "BatchNormalization",
		"Reshape", "Transpose", "Slice", "Identity", "Constant", "ReduceSum",
	} {
		_, ok := r.Get(op)
		assert.True(t, ok, op)
	}
	_, ok := r.Get("UnknownOp")
	assert.False(t, ok)
	assert.IsIncreasing(t, r.SupportedOps())
}

func TestRegisterCustomOp(t *testing.T) {
	r := NewRegistry()
	r.Register("Twice", func(ctx *Context, _ *Node, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return one(ctx.Backend.MulConstant(in[0], 2))
	})
	outs, err := r.Execute(&Context{Backend: cpu.New()}, node("Twice"), []*tensor.RawTensor{iota32(t, 3)})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4}, outs[0].Float64s())
}

func TestExecuteErrors(t *testing.T) {
	ctx := &Context{Backend: cpu.New(), Opset: 13}
	r := NewRegistry()

	_, err := r.Execute(ctx, node("Nope"), nil)
	assert.ErrorContains(t, err, "unsupported operator: Nope")

	_, err = r.Execute(ctx, node("Add"), []*tensor.RawTensor{iota32(t, 2)})
	assert.ErrorContains(t, err, "Add requires 2 inputs")

	// Kernel panics come back as errors.
	_, err = r.Execute(ctx, node("Add"), []*tensor.RawTensor{iota32(t, 2), iota32(t, 3)})
	assert.ErrorContains(t, err, "Add:")
}

func TestGemm(t *testing.T) {
	a := f32(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := f32(t, []float32{1, 0, 0, 0, 1, 0}, 2, 3)
	c := f32(t, []float32{1, 1}, 2)

	y := run(t, 13, node("Gemm",
		Attribute{Name: "alpha", F: 2}, Attribute{Name: "beta", F: 0.5}, Attribute{Name: "transB", I: 1}),
		a, b, c)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.InDeltaSlice(t, []float64{2.5, 4.5, 8.5, 10.5}, y.Float64s(), 1e-6)
}

func TestMaxPoolPads(t *testing.T) {
	x := iota32(t, 1, 1, 3, 3)
	k := Attribute{Name: "kernel_shape", Ints: []int64{2, 2}}
	s := Attribute{Name: "strides", Ints: []int64{2, 2}}

	t.Run("cover all", func(t *testing.T) {
		y := run(t, 13, node("MaxPool", k, s, Attribute{Name: "pads", Ints: []int64{0, 0, 1, 1}}), x)
		assert.Equal(t, tensor.Shape{1, 1, 2, 2}, y.Shape())
		assert.Equal(t, []float64{4, 5, 7, 8}, y.Float64s())
	})

	t.Run("symmetric", func(t *testing.T) {
		y := run(t, 13, node("MaxPool", k, s), x)
		assert.Equal(t, tensor.Shape{1, 1, 1, 1}, y.Shape())
		assert.Equal(t, []float64{4}, y.Float64s())
	})

	t.Run("other", func(t *testing.T) {
		ctx := &Context{Backend: cpu.New(), Opset: 13}
		_, err := NewRegistry().Execute(ctx,
			node("MaxPool", k, s, Attribute{Name: "pads", Ints: []int64{0, 0, 1, 0}}), []*tensor.RawTensor{x})
		assert.ErrorContains(t, err, "pads")
	})
}

func TestClip(t *testing.T) {
	x := f32(t, []float32{-2, 0.5, 3}, 3)
	want := []float64{0, 0.5, 1}

	legacy := run(t, 6, node("Clip", Attribute{Name: "min", F: 0}, Attribute{Name: "max", F: 1}), x)
	assert.Equal(t, want, legacy.Float64s())

	lo, hi := f32(t, []float32{0}), f32(t, []float32{1})
	current := run(t, 11, node("Clip"), x, lo, hi)
	assert.Equal(t, want, current.Float64s())
}

func TestSoftmaxAxisByOpset(t *testing.T) {
	x := f32(t, make([]float32, 8), 2, 2, 2)
	axis := Attribute{Name: "axis", I: 1}

	// Before opset 13 axis 1 flattens [2,2,2] to [2,4].
	legacy := run(t, 11, node("Softmax", axis), x)
	assert.Equal(t, tensor.Shape{2, 2, 2}, legacy.Shape())
	assert.InDeltaSlice(t, []float64{.25, .25, .25, .25, .25, .25, .25, .25}, legacy.Float64s(), 1e-6)

	current := run(t, 13, node("Softmax", axis), x)
	assert.InDeltaSlice(t, []float64{.5, .5, .5, .5, .5, .5, .5, .5}, current.Float64s(), 1e-6)
}

func TestShapeOps(t *testing.T) {
	t.Run("reshape copies zero dims", func(t *testing.T) {
		y := run(t, 13, node("Reshape"), iota32(t, 2, 3, 4), i64(t, 0, -1))
		assert.Equal(t, tensor.Shape{2, 12}, y.Shape())
	})

	t.Run("unsqueeze negative axes", func(t *testing.T) {
		y := run(t, 13, node("Unsqueeze"), iota32(t, 3), i64(t, 0, -1))
		assert.Equal(t, tensor.Shape{1, 3, 1}, y.Shape())
	})

	t.Run("squeeze attribute", func(t *testing.T) {
		y := run(t, 11, node("Squeeze", Attribute{Name: "axes", Ints: []int64{0}}), iota32(t, 1, 3, 1))
		assert.Equal(t, tensor.Shape{3, 1}, y.Shape())
	})

	t.Run("transpose", func(t *testing.T) {
		y := run(t, 13, node("Transpose", Attribute{Name: "perm", Ints: []int64{1, 0}}), iota32(t, 2, 3))
		assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
		assert.Equal(t, []float64{0, 3, 1, 4, 2, 5}, y.Float64s())
	})

	t.Run("tile", func(t *testing.T) {
		y := run(t, 13, node("Tile"), iota32(t, 2), i64(t, 2))
		assert.Equal(t, []float64{0, 1, 0, 1}, y.Float64s())
	})
}

func TestSlice(t *testing.T) {
	x := iota32(t, 2, 4)

	legacy := run(t, 9, node("Slice",
		Attribute{Name: "starts", Ints: []int64{1}},
		Attribute{Name: "ends", Ints: []int64{math.MaxInt64}},
		Attribute{Name: "axes", Ints: []int64{1}}), x)
	assert.Equal(t, []float64{1, 2, 3, 5, 6, 7}, legacy.Float64s())

	stepped := run(t, 10, node("Slice"), x, i64(t, 1), i64(t, math.MaxInt64), i64(t, 1), i64(t, 2))
	assert.Equal(t, tensor.Shape{2, 2}, stepped.Shape())
	assert.Equal(t, []float64{1, 3, 5, 7}, stepped.Float64s())

	rows := run(t, 13, node("Slice"), x, i64(t, -1), i64(t, 2))
	assert.Equal(t, []float64{4, 5, 6, 7}, rows.Float64s())
}

func TestReduceAndCast(t *testing.T) {
	x := iota32(t, 2, 3)

	sum := run(t, 13, node("ReduceSum"), x, i64(t, 1))
	assert.Equal(t, tensor.Shape{2, 1}, sum.Shape())
	assert.Equal(t, []float64{3, 12}, sum.Float64s())

	mean := run(t, 11, node("ReduceMean",
		Attribute{Name: "axes", Ints: []int64{0}}, Attribute{Name: "keepdims", I: 0}), x)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, mean.Float64s())

	cast := run(t, 13, node("Cast", Attribute{Name: "to", I: 7}), x)
	assert.Equal(t, tensor.Int64, cast.DType())
}

func TestConstantAndIdentity(t *testing.T) {
	c := iota32(t, 2)
	y := run(t, 13, node("Constant", Attribute{Name: "value", T: c}))
	assert.Same(t, c, y)

	x := iota32(t, 3)
	assert.Same(t, x, run(t, 13, node("Identity"), x))
}
