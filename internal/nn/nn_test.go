package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func paths(nps []nn.NamedParameter) []string {
	out := make([]string, len(nps))
	for i, np := range nps {
		out[i] = np.Path
	}
	return out
}

func TestNamedParametersPaths(t *testing.T) {
	be := cpu.New()
	rng := nn.NewRand(0)
	shared := nn.NewLinear(4, 4, be, rng)
	model := nn.NewSequential(
		nn.NewLinear(3, 4, be, rng),
		nn.NewReLU(be),
		shared,
		shared,
		nn.NewLinear(4, 2, be, rng).NoBias(),
	)

	got := paths(nn.NamedParameters(model))
	assert.Equal(t, []string{"/0/W", "/0/b", "/2/W", "/2/b", "/4/W"}, got)
}

func TestLinearForward(t *testing.T) {
	be := cpu.New()
	l := nn.NewLinear(3, 2, be, nn.NewRand(0))
	w, err := tensor.FromSlice([]float32{1, 0, 0, 0, 1, 1}, tensor.Shape{2, 3})
	require.NoError(t, err)
	l.W.Set(w)
	b, err := tensor.FromSlice([]float32{0.5, -1}, tensor.Shape{2})
	require.NoError(t, err)
	l.B.Set(b)

	x, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 3})
	require.NoError(t, err)

	y := l.Forward(x)
	assert.Equal(t, tensor.Shape{1, 2}, y.Shape())
	assert.Equal(t, []float32{1.5, 4}, y.AsFloat32())
}

func TestSequentialCall(t *testing.T) {
	be := cpu.New()
	rng := nn.NewRand(7)
	model := nn.NewSequential(nn.NewLinear(3, 5, be, rng), nn.NewReLU(be), nn.NewLinear(5, 2, be, rng))

	x, err := tensor.Full(tensor.Shape{4, 3}, tensor.Float32, 1)
	require.NoError(t, err)

	outs, err := model.Call(be, x)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, tensor.Shape{4, 2}, outs[0].Shape())

	_, err = model.Call(be, x, x)
	assert.Error(t, err)
}

func TestBindReplacesBackend(t *testing.T) {
	a, b := cpu.New(), cpu.New()
	layers := []nn.Bindable{
		nn.NewLinear(2, 2, a, nn.NewRand(0)),
		nn.NewConv2D(1, 1, 3, 1, 1, a, nn.NewRand(0)),
		nn.NewBatchNorm(2, a),
		nn.NewReLU(a),
		nn.NewMaxPool2D(2, 2, a),
	}
	for _, l := range layers {
		require.Same(t, a, l.Backend())
		l.Bind(b)
		assert.Same(t, b, l.Backend())
	}
}

func TestXavierIsDeterministic(t *testing.T) {
	shape := tensor.Shape{3, 4}
	x1 := nn.Xavier(nn.NewRand(42), 4, 3, shape)
	x2 := nn.Xavier(nn.NewRand(42), 4, 3, shape)
	assert.Equal(t, x1.AsFloat32(), x2.AsFloat32())
	assert.NotEqual(t, x1.Serial(), x2.Serial())
}

func TestFuncModel(t *testing.T) {
	be := cpu.New()
	var m nn.Model = nn.Func(func(be ops.Backend, in ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
		return []*tensor.RawTensor{be.Add(in[0], in[1])}, nil
	})
	x, err := tensor.Full(tensor.Shape{2}, tensor.Float32, 2)
	require.NoError(t, err)

	outs, err := m.Call(be, x, x)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 4}, outs[0].AsFloat32())
}
