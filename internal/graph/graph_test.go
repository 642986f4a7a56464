package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/trace"
)

type callLog struct{ calls []*trace.Call }

func (l *callLog) add(op ops.OpID, ins []trace.Handle, outs ...trace.Handle) *trace.Call {
	c := &trace.Call{Index: len(l.calls), Op: op, Inputs: ins, Results: outs}
	l.calls = append(l.calls, c)
	return c
}

func hs(h ...trace.Handle) []trace.Handle { return h }

func indices(cs []*trace.Call) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Index
	}
	return out
}

func TestBuildChain(t *testing.T) {
	// x:0 -> relu -> 1 ; add(1, W:2) -> 3
	var l callLog
	relu := l.add(ops.OpReLU, hs(0), 1)
	add := l.add(ops.OpAdd, hs(1, 2), 3)

	g, err := Build(l.calls, hs(0), hs(3))
	require.NoError(t, err)
	assert.Equal(t, []*trace.Call{relu, add}, g.Calls)
	assert.Equal(t, hs(2), g.Extras)
	assert.Same(t, relu, g.Producer(1))
	assert.Nil(t, g.Producer(0))
	assert.Equal(t, []*trace.Call{add}, g.Consumers(2))
}

func TestBuildPrunesUnreachableCalls(t *testing.T) {
	var l callLog
	l.add(ops.OpExp, hs(0), 1)
	l.add(ops.OpExp, hs(1), 2)
	l.add(ops.OpNeg, hs(0), 3)

	g, err := Build(l.calls, hs(0), hs(3))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, indices(g.Calls))
	assert.Empty(t, g.Extras)
}

func TestBuildFirstProducerWins(t *testing.T) {
	var l callLog
	l.add(ops.OpExp, hs(0), 1)
	l.add(ops.OpLog, hs(0), 1)

	g, err := Build(l.calls, hs(0), hs(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, indices(g.Calls))
}

func TestBuildIgnoresPassThroughResults(t *testing.T) {
	// A call returning its own input or a declared input does not produce it.
	var l callLog
	l.add(ops.OpCopy, hs(1), 1)
	l.add(ops.OpCopy, hs(0), 0)
	l.add(ops.OpAdd, hs(0, 1), 2)

	g, err := Build(l.calls, hs(0), hs(2))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, indices(g.Calls))
	assert.Equal(t, hs(1), g.Extras)
}

func TestBuildCreationCallsComeFirst(t *testing.T) {
	var l callLog
	l.add(ops.OpReLU, hs(0), 1)
	l.add(ops.OpZeros, nil, 2)
	l.add(ops.OpAdd, hs(1, 2), 3)

	g, err := Build(l.calls, hs(0), hs(3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, indices(g.Calls))
}

func TestBuildRepeatedInput(t *testing.T) {
	var l callLog
	l.add(ops.OpMul, hs(0, 0), 1)
	l.add(ops.OpAdd, hs(1, 1), 2)

	g, err := Build(l.calls, hs(0), hs(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices(g.Calls))
}

func TestBuildDiamondIsDeterministic(t *testing.T) {
	var l callLog
	l.add(ops.OpExp, hs(0), 1)
	l.add(ops.OpLog, hs(0), 2)
	l.add(ops.OpSqrt, hs(2), 3)
	l.add(ops.OpAdd, hs(3, 1), 4)

	for range 3 {
		g, err := Build(l.calls, hs(0), hs(4))
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3}, indices(g.Calls))
	}
}

func TestBuildExtrasInDiscoveryOrder(t *testing.T) {
	// linear(x:0, W:1, b:2) -> 3 ; add(3, c:4) -> 5
	var l callLog
	l.add(ops.OpLinear, hs(0, 1, 2), 3)
	l.add(ops.OpAdd, hs(3, 4), 5)

	g, err := Build(l.calls, hs(0), hs(5))
	require.NoError(t, err)
	assert.Equal(t, hs(1, 2, 4), g.Extras)
}

func TestBuildOutputIsInput(t *testing.T) {
	g, err := Build(nil, hs(0), hs(0))
	require.NoError(t, err)
	assert.Empty(t, g.Calls)
	assert.Empty(t, g.Extras)
}

func TestBuildCycleIsInternalError(t *testing.T) {
	var l callLog
	l.add(ops.OpExp, hs(2), 1)
	l.add(ops.OpLog, hs(1), 2)

	_, err := Build(l.calls, nil, hs(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, exporterr.ErrInternal)
	assert.Contains(t, err.Error(), "sorted 0 of 2")
}

func TestBuildUnused(t *testing.T) {
	// x:0 feeds a pruned call, y:1 feeds the output, z:2 is returned as is.
	var l callLog
	l.add(ops.OpExp, hs(0), 3)
	l.add(ops.OpReLU, hs(1), 4)

	g, err := Build(l.calls, hs(0, 1, 2), hs(4, 2))
	require.NoError(t, err)
	assert.Equal(t, hs(0), g.Unused())

	g, err = Build(l.calls, hs(1), hs(4))
	require.NoError(t, err)
	assert.Empty(t, g.Unused())
}
