// Package export turns one traced forward pass of a model into an ONNX model.
//
// Export runs the model once on a recording backend, rebuilds the data
// dependencies of the recorded calls, prunes everything the outputs do not
// depend on and converts the rest in topological order:
//
//	res, err := export.Export(ctx, model, []*tensor.RawTensor{x})
//	if err != nil { ... }
//	data, err := res.Bytes()
//
// Values are named Input, Input_1... for inputs and Output, Output_1... for
// outputs. Parameters of the model are stored as initializers named param
// plus their path, with "/" replaced by "_" (param_0_W). Other leaves the
// outputs depend on become initializers named const, const_1...
//
// Every input must reach an output. An input that does not usually means a
// layer ran on a backend that was never rebound, and its result would be
// frozen into a constant; such exports fail with exporterr.ErrUnsupported.
//
// Only one export can trace at a time; a concurrent Export fails with an
// error matching exporterr.ErrConfig.
package export

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/convert"
	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/graph"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
	"github.com/born-ml/onnxtrace/internal/trace"
)

// Result is an exported model.
type Result struct {
	Model *onnx.ModelProto

	// InputNames and OutputNames are the graph's input and output value
	// names, in the order of the traced inputs and outputs.
	InputNames  []string
	OutputNames []string

	// Outputs holds the values the traced forward pass returned.
	Outputs []*tensor.RawTensor
}

// Bytes returns the serialized model.
func (r *Result) Bytes() []byte {
	return onnx.Marshal(r.Model)
}

// Text returns the model in protobuf text format.
func (r *Result) Text() (string, error) {
	return onnx.MarshalText(r.Model)
}

// Export traces model on inputs and converts the trace.
func Export(ctx context.Context, model nn.Model, inputs []*tensor.RawTensor, opts ...Option) (*Result, error) {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	o.complete()
	log := klog.FromContext(ctx)

	if err := onnx.Available(); err != nil {
		return nil, err
	}
	if err := validate(&o, model, inputs); err != nil {
		return nil, err
	}
	if o.opset < onnx.MinimumOpset {
		log.Info("opset is older than the minimum tested opset, the model may not load",
			"opset", o.opset, "minimum", onnx.MinimumOpset)
	}

	scope, err := trace.Start(o.backend)
	if err != nil {
		return nil, err
	}
	defer scope.Close()

	tracer := scope.Tracer()
	inHandles, err := tracer.Track(inputs...)
	if err != nil {
		return nil, err
	}
	if err := scope.Intercept(model); err != nil {
		return nil, err
	}
	outs, err := scope.Run(func(be ops.Backend) ([]*tensor.RawTensor, error) {
		return model.Call(be, inputs...)
	})
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("%w: model returned no outputs", exporterr.ErrForward)
	}
	outHandles, err := tracer.Track(outs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", exporterr.ErrForward, err)
	}
	scope.Close()

	calls := tracer.Calls()
	log.V(1).Info("traced forward pass", "calls", len(calls), "values", tracer.Arena().Len())

	g, err := graph.Build(calls, inHandles, outHandles)
	if err != nil {
		return nil, err
	}
	if unused := g.Unused(); len(unused) > 0 {
		return nil, exporterr.Unsupported("trace", "input %s does not reach any output; "+
			"a layer may have run outside the recording backend, expose it through nn.Container",
			inputPositions(inHandles, unused))
	}

	e := &emitter{
		gb:     onnx.NewGraphBuilder(o.opset),
		arena:  tracer.Arena(),
		graph:  g,
		params: paramNames(model),
		log:    log,
	}
	if err := e.run(o.registry); err != nil {
		return nil, err
	}

	m, err := e.gb.Build(o.graphName, o.producer)
	if err != nil {
		return nil, err
	}
	log.Info("exported model", "graph", o.graphName, "opset", o.opset,
		"nodes", len(m.Graph.Nodes), "initializers", len(m.Graph.Initializers))

	return &Result{
		Model:       m,
		InputNames:  e.gb.Inputs(),
		OutputNames: e.gb.Outputs(),
		Outputs:     outs,
	}, nil
}

func validate(o *options, model nn.Model, inputs []*tensor.RawTensor) error {
	switch {
	case model == nil:
		return exporterr.Config("model is nil")
	case len(inputs) == 0:
		return exporterr.Config("no inputs")
	case o.opset < 1:
		return exporterr.Config("opset %d is not a valid opset version", o.opset)
	case o.opset > onnx.LatestOpset:
		return exporterr.Config("opset %d is newer than the latest supported opset %d", o.opset, onnx.LatestOpset)
	case o.graphName == "":
		return exporterr.Config("graph name is empty")
	}
	seen := make(map[*tensor.RawTensor]int, len(inputs))
	for i, x := range inputs {
		if x == nil {
			return exporterr.Config("input %d is nil", i)
		}
		if j, ok := seen[x]; ok {
			return exporterr.Config("input %d is the same tensor as input %d", i, j)
		}
		seen[x] = i
	}
	return nil
}

// inputPositions formats the positions of unused among inputs.
func inputPositions(inputs, unused []trace.Handle) string {
	var pos []string
	for i, h := range inputs {
		if slices.Contains(unused, h) {
			pos = append(pos, strconv.Itoa(i))
		}
	}
	return strings.Join(pos, ", ")
}

// paramNames maps the serial of every parameter tensor reachable from model
// to its initializer base name.
func paramNames(model nn.Model) map[uint64]string {
	out := make(map[uint64]string)
	for _, np := range nn.NamedParameters(model) {
		t := np.Param.Tensor()
		if t == nil {
			continue
		}
		if _, ok := out[t.Serial()]; !ok {
			out[t.Serial()] = "param" + strings.ReplaceAll(np.Path, "/", "_")
		}
	}
	return out
}

// passThrough is a graph output whose value is not produced by a call of its
// own: an input, an initializer, or a value already bound to another output.
type passThrough struct {
	src  trace.Handle
	name string
}

// emitter names the values of one dependency graph and converts its calls.
type emitter struct {
	gb     *onnx.GraphBuilder
	arena  *trace.Arena
	graph  *graph.Graph
	params map[uint64]string
	log    klog.Logger

	identities []passThrough
}

func (e *emitter) run(reg *convert.Registry) error {
	e.declare()
	for _, call := range e.graph.Calls {
		if err := e.convert(reg, call); err != nil {
			return err
		}
	}
	for _, pt := range e.identities {
		src, ok := e.gb.Lookup(pt.src)
		if !ok {
			return exporterr.Internal("output %s: value v%d has no name", pt.name, pt.src)
		}
		e.gb.Rename(e.gb.Op("Identity", []string{src}), pt.name)
	}
	return nil
}

// declare names inputs, outputs and initializers before any conversion so
// that converters see final names for them.
func (e *emitter) declare() {
	for _, h := range e.graph.Inputs {
		v := e.arena.Value(h)
		e.gb.Bind(h, e.gb.Input("Input", v.DType, v.Shape))
	}

	bound := make(map[trace.Handle]bool)
	for _, h := range e.graph.Outputs {
		v := e.arena.Value(h)
		name := e.gb.Output("Output", v.DType, v.Shape)
		if e.graph.Producer(h) == nil || bound[h] {
			e.identities = append(e.identities, passThrough{src: h, name: name})
			continue
		}
		bound[h] = true
		e.gb.Bind(h, name)
	}

	for _, h := range e.graph.Extras {
		v := e.arena.Value(h)
		base, ok := e.params[v.Serial]
		if !ok {
			base = "const"
		}
		e.gb.Bind(h, e.gb.Param(base, v.Tensor))
	}
}

func (e *emitter) convert(reg *convert.Registry, call *trace.Call) error {
	var unresolved error
	resolve := func(t *tensor.RawTensor) string {
		if h, ok := e.arena.Lookup(t); ok {
			if name, ok := e.gb.Lookup(h); ok {
				return name
			}
		}
		if unresolved == nil {
			unresolved = exporterr.Internal("%s: argument %v has no graph value", call, t)
		}
		return ""
	}

	outs, err := reg.Convert(e.gb, call, resolve)
	if err != nil {
		return err
	}
	if unresolved != nil {
		return unresolved
	}
	if len(outs) != len(call.Results) {
		return exporterr.Internal("%s: converter returned %d values for %d results", call, len(outs), len(call.Results))
	}

	for i, h := range call.Results {
		if e.graph.Producer(h) != call {
			continue
		}
		if name, ok := e.gb.Lookup(h); ok {
			e.gb.Rename(outs[i], name)
			continue
		}
		v := e.arena.Value(h)
		e.gb.Bind(h, outs[i])
		e.gb.SetType(outs[i], v.DType, v.Shape)
	}
	if e.log.V(2).Enabled() {
		e.log.V(2).Info("converted call", "call", call.String(), "outputs", outs)
	}
	return nil
}
