package trace

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ErrTracerActive is returned when a second tracer is started while another one
// is recording.
var ErrTracerActive = fmt.Errorf("%w: another tracer is already active", exporterr.ErrConfig)

// Call is one recorded primitive invocation.
type Call struct {
	Index int
	Op    ops.OpID
	// Receiver is the receiver tensor of a method-style primitive, otherwise
	// the name of the backend namespace the call went through.
	Receiver any
	Args     []any
	Kwargs   []ops.Arg
	Outputs  []*tensor.RawTensor

	// Inputs lists the handles of every tensor argument in argument order,
	// repeated when a tensor is passed twice.
	Inputs []Handle
	// Results lists the handles of Outputs.
	Results []Handle
}

// Positional returns the positional arguments with a tensor receiver in front.
func (c *Call) Positional() []any {
	if r, ok := c.Receiver.(*tensor.RawTensor); ok {
		return append([]any{r}, c.Args...)
	}
	return c.Args
}

// String formats the call for debug logs.
func (c *Call) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s(", c.Index, c.Op)
	for i, h := range c.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "v%d", h)
	}
	b.WriteString(") -> ")
	for i, h := range c.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "v%d", h)
	}
	return b.String()
}

// tensorsOf collects tensor arguments, flattening tensor lists.
func tensorsOf(v any, dst []*tensor.RawTensor) []*tensor.RawTensor {
	switch t := v.(type) {
	case *tensor.RawTensor:
		if t != nil {
			dst = append(dst, t)
		}
	case []*tensor.RawTensor:
		for _, e := range t {
			dst = tensorsOf(e, dst)
		}
	}
	return dst
}

// current is the process-wide active tracer.
var current atomic.Pointer[Tracer]

// Tracer is the call recorder.
//
// A tracer is inactive until Start and after Stop. While active it records,
// unless suspended. Suspensions nest.
type Tracer struct {
	arena     *Arena
	calls     []*Call
	active    bool
	suspended int
	err       error
}

// StartTracer activates a new tracer. It fails with ErrTracerActive when
// another tracer is active.
func StartTracer() (*Tracer, error) {
	t := &Tracer{arena: NewArena(), active: true}
	if !current.CompareAndSwap(nil, t) {
		return nil, ErrTracerActive
	}
	return t, nil
}

// Active returns the active tracer, or nil.
func Active() *Tracer {
	return current.Load()
}

// Stop deactivates the tracer. Safe to call more than once.
func (t *Tracer) Stop() {
	if !t.active {
		return
	}
	t.active = false
	current.CompareAndSwap(t, nil)
}

// Recording reports whether calls are currently recorded.
func (t *Tracer) Recording() bool {
	return t.active && t.suspended == 0
}

// Suspend stops recording until the returned function is called. The returned
// function only has an effect the first time it is called.
func (t *Tracer) Suspend() (resume func()) {
	t.suspended++
	done := false
	return func() {
		if !done {
			done = true
			t.suspended--
		}
	}
}

// Record appends a call unless the tracer is inactive or suspended.
// A failure to track a value is kept and reported by Err.
func (t *Tracer) Record(op ops.OpID, receiver any, args []any, kwargs []ops.Arg, outputs []*tensor.RawTensor) {
	if !t.Recording() {
		return
	}

	c := &Call{
		Index:    len(t.calls),
		Op:       op,
		Receiver: receiver,
		Args:     append([]any(nil), args...),
		Kwargs:   append([]ops.Arg(nil), kwargs...),
		Outputs:  outputs,
	}

	var ins []*tensor.RawTensor
	ins = tensorsOf(receiver, ins)
	for _, a := range args {
		ins = tensorsOf(a, ins)
	}
	for _, kw := range kwargs {
		ins = tensorsOf(kw.Value, ins)
	}
	for _, in := range ins {
		c.Inputs = append(c.Inputs, t.track(in))
	}
	for _, out := range outputs {
		c.Results = append(c.Results, t.track(out))
	}
	t.calls = append(t.calls, c)
}

func (t *Tracer) track(v *tensor.RawTensor) Handle {
	h, err := t.arena.Track(v)
	if err != nil && t.err == nil {
		t.err = err
	}
	return h
}

// Track registers values that are not produced by calls, such as inputs.
func (t *Tracer) Track(vs ...*tensor.RawTensor) ([]Handle, error) {
	hs := make([]Handle, len(vs))
	for i, v := range vs {
		if v == nil {
			return nil, exporterr.Config("value %d is nil", i)
		}
		h, err := t.arena.Track(v)
		if err != nil {
			return nil, err
		}
		hs[i] = h
	}
	return hs, nil
}

// Calls returns the recorded calls in execution order.
func (t *Tracer) Calls() []*Call {
	return t.calls
}

// Arena returns the value arena.
func (t *Tracer) Arena() *Arena {
	return t.arena
}

// Err returns the first tracking failure.
func (t *Tracer) Err() error {
	return t.err
}
