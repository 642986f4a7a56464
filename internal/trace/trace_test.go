package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func f32(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Full(tensor.Shape(shape), tensor.Float32, 1)
	require.NoError(t, err)
	return r
}

func startScope(t *testing.T) *Scope {
	t.Helper()
	s, err := Start(cpu.New())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRecordsOneCallPerPrimitive(t *testing.T) {
	s := startScope(t)
	be := s.Backend()
	x, w := f32(t, 2, 3), f32(t, 4, 3)

	y := be.Linear(x, w, nil)
	z := be.ReLU(y)

	calls := s.Tracer().Calls()
	require.Len(t, calls, 2, "linear is composite but must be recorded once")
	assert.Equal(t, ops.OpLinear, calls[0].Op)
	assert.Equal(t, ops.OpReLU, calls[1].Op)
	assert.Equal(t, "CPU", calls[0].Receiver)
	assert.Equal(t, calls[0].Results, calls[1].Inputs)
	assert.Same(t, z, calls[1].Outputs[0])
}

func TestMethodPrimitivesRecordReceiver(t *testing.T) {
	s := startScope(t)
	x := ops.NewValue(s.Backend(), f32(t, 2))

	y := x.Add(x)

	calls := s.Tracer().Calls()
	require.Len(t, calls, 1)
	c := calls[0]
	assert.Same(t, x.Raw(), c.Receiver)
	assert.Len(t, c.Args, 1)
	assert.Equal(t, []Handle{0, 0}, c.Inputs, "a tensor passed twice appears twice")
	assert.Equal(t, []any{x.Raw(), x.Raw()}, c.Positional())
	assert.Same(t, y.Raw(), c.Outputs[0])
}

func TestKwargsAndListsAreRecorded(t *testing.T) {
	s := startScope(t)
	be := s.Backend()
	a, b := f32(t, 1, 2), f32(t, 1, 2)

	be.Concat([]*tensor.RawTensor{a, b}, ops.Axis(0))

	c := s.Tracer().Calls()[0]
	assert.Equal(t, []ops.Arg{ops.Axis(0)}, c.Kwargs)
	assert.Len(t, c.Inputs, 2)
	assert.Contains(t, c.String(), "concat(v0, v1) -> v2")
}

func TestSuspendNests(t *testing.T) {
	tr, err := StartTracer()
	require.NoError(t, err)
	defer tr.Stop()

	assert.True(t, tr.Recording())
	outer := tr.Suspend()
	inner := tr.Suspend()
	inner()
	inner()
	assert.False(t, tr.Recording(), "inner resume must not lift the outer suspension")
	outer()
	assert.True(t, tr.Recording())

	resume := tr.Suspend()
	tr.Record(ops.OpReLU, "CPU", []any{f32(t, 1)}, nil, []*tensor.RawTensor{f32(t, 1)})
	resume()
	assert.Empty(t, tr.Calls())
}

func TestSingleActiveTracer(t *testing.T) {
	first, err := StartTracer()
	require.NoError(t, err)
	assert.Same(t, first, Active())

	_, err = StartTracer()
	assert.ErrorIs(t, err, ErrTracerActive)
	assert.ErrorIs(t, err, exporterr.ErrConfig)

	first.Stop()
	first.Stop()
	assert.Nil(t, Active())

	second, err := StartTracer()
	require.NoError(t, err)
	second.Stop()
}

func TestInactiveTracerDoesNotRecord(t *testing.T) {
	tr, err := StartTracer()
	require.NoError(t, err)
	tr.Stop()

	tr.Record(ops.OpReLU, "CPU", []any{f32(t, 1)}, nil, []*tensor.RawTensor{f32(t, 1)})
	assert.Empty(t, tr.Calls())
}

func TestArenaTracksBySerial(t *testing.T) {
	a := NewArena()
	x := f32(t, 2, 2)

	h1, err := a.Track(x)
	require.NoError(t, err)
	h2, err := a.Track(x)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	h3, err := a.Track(x.Clone())
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, tensor.Shape{2, 2}, a.Value(h1).Shape)
}

func TestTrackRejectsNil(t *testing.T) {
	tr, err := StartTracer()
	require.NoError(t, err)
	defer tr.Stop()

	_, err = tr.Track(f32(t, 1), nil)
	assert.ErrorIs(t, err, exporterr.ErrConfig)
}

func TestInterceptRebindsAndRestores(t *testing.T) {
	base := cpu.New()
	rng := nn.NewRand(1)
	l1 := nn.NewLinear(3, 4, base, rng)
	relu := nn.NewReLU(base)
	model := nn.NewSequential(l1, relu, l1)

	s := startScope(t)
	require.NoError(t, s.Intercept(model))
	assert.Equal(t, 2, s.icpt.Len(), "shared layers are rebound once")
	assert.Same(t, s.backend, l1.Backend())

	_, err := s.Run(func(be ops.Backend) ([]*tensor.RawTensor, error) {
		return model.Call(be, f32(t, 2, 3))
	})
	assert.Error(t, err, "the shared 4->... layer cannot take its own output")
	assert.ErrorIs(t, err, exporterr.ErrForward)

	s.Close()
	assert.Same(t, base, l1.Backend())
	assert.Same(t, base, relu.Backend())
	assert.Nil(t, Active())
}

func TestRunRecordsThroughBoundLayers(t *testing.T) {
	base := cpu.New()
	rng := nn.NewRand(1)
	model := nn.NewSequential(nn.NewLinear(3, 4, base, rng), nn.NewReLU(base))

	s := startScope(t)
	require.NoError(t, s.Intercept(model))
	outs, err := s.Run(func(be ops.Backend) ([]*tensor.RawTensor, error) {
		return model.Call(be, f32(t, 2, 3))
	})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, tensor.Shape{2, 4}, outs[0].Shape())

	calls := s.Tracer().Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, ops.OpLinear, calls[0].Op)
	assert.Equal(t, ops.OpReLU, calls[1].Op)
}

func TestRunWrapsModelErrors(t *testing.T) {
	s := startScope(t)
	boom := errors.New("boom")
	_, err := s.Run(func(ops.Backend) ([]*tensor.RawTensor, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, exporterr.ErrForward)
}

func TestPanicInsidePrimitiveResumesRecording(t *testing.T) {
	s := startScope(t)
	be := s.Backend()

	_, err := s.Run(func(be ops.Backend) ([]*tensor.RawTensor, error) {
		return []*tensor.RawTensor{be.Add(f32(t, 2), f32(t, 3))}, nil
	})
	assert.ErrorIs(t, err, exporterr.ErrForward)
	assert.True(t, s.Tracer().Recording())

	be.ReLU(f32(t, 1))
	assert.Len(t, s.Tracer().Calls(), 1)
}

type exposedBlock struct {
	FC     *nn.Linear
	Layers []nn.Layer
}

type hiddenBlock struct {
	fc *nn.Linear
}

type listedBlock struct {
	fc *nn.Linear
}

func (b *listedBlock) Children() []nn.Child { return []nn.Child{{Name: "fc", Module: b.fc}} }

func TestInterceptFindsExportedFields(t *testing.T) {
	base := cpu.New()
	fc := nn.NewLinear(3, 4, base, nn.NewRand(1))
	relu := nn.NewReLU(base)
	model := &struct{ Block *exposedBlock }{&exposedBlock{FC: fc, Layers: []nn.Layer{relu}}}

	s := startScope(t)
	require.NoError(t, s.Intercept(model))
	assert.Equal(t, 2, s.icpt.Len())
	assert.Same(t, s.backend, fc.Backend())
	assert.Same(t, s.backend, relu.Backend())

	s.Close()
	assert.Same(t, base, fc.Backend())
}

func TestInterceptRejectsHiddenLayers(t *testing.T) {
	base := cpu.New()
	fc := nn.NewLinear(3, 4, base, nn.NewRand(1))

	s := startScope(t)
	err := s.Intercept(&hiddenBlock{fc: fc})
	assert.ErrorIs(t, err, exporterr.ErrUnsupported)
	assert.ErrorContains(t, err, "hiddenBlock.fc")
	assert.ErrorContains(t, err, "nn.Container")
	assert.Same(t, base, fc.Backend())

	// The same field is fine once a Container lists it.
	s.Close()
	s = startScope(t)
	require.NoError(t, s.Intercept(&listedBlock{fc: fc}))
	assert.Same(t, s.backend, fc.Backend())
}
