// Package graph turns a flat call log into the pruned, ordered dependency
// graph an exporter walks: who produces each value, who consumes it, which
// calls the outputs need and in which order they can be emitted.
package graph

import (
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/trace"
)

// Graph is the subgraph of a trace reachable from its outputs.
type Graph struct {
	// Inputs and Outputs are the declared graph inputs and outputs.
	Inputs  []trace.Handle
	Outputs []trace.Handle
	// Extras are values needed by the outputs that are neither declared
	// inputs nor produced by a call (parameters, constants), in the order
	// they were discovered.
	Extras []trace.Handle
	// Calls are the required calls in topological order.
	Calls []*trace.Call

	producer  map[trace.Handle]*trace.Call
	consumers map[trace.Handle][]*trace.Call
	reached   map[trace.Handle]bool
}

// Build computes producers and consumers for calls, prunes them to what
// outputs depend on and sorts the result.
//
// The first call producing a value wins. A call never produces one of its own
// inputs or a declared input. Ties between calls that become ready together
// are broken by discovery order, so the result only depends on the log.
func Build(calls []*trace.Call, inputs, outputs []trace.Handle) (*Graph, error) {
	g := &Graph{
		Inputs:    inputs,
		Outputs:   outputs,
		producer:  make(map[trace.Handle]*trace.Call),
		consumers: make(map[trace.Handle][]*trace.Call),
		reached:   make(map[trace.Handle]bool),
	}

	declared := make(map[trace.Handle]bool, len(inputs))
	for _, h := range inputs {
		declared[h] = true
	}
	for _, c := range calls {
		for _, h := range c.Inputs {
			g.consumers[h] = append(g.consumers[h], c)
		}
		for _, h := range c.Results {
			if declared[h] || slices.Contains(c.Inputs, h) {
				continue
			}
			if _, ok := g.producer[h]; !ok {
				g.producer[h] = c
			}
		}
	}

	required := g.reach(declared)

	order, err := g.sort(calls, required)
	if err != nil {
		return nil, err
	}
	g.Calls = order
	return g, nil
}

// reach walks back from the outputs, collecting required calls and extras.
func (g *Graph) reach(declared map[trace.Handle]bool) map[*trace.Call]bool {
	required := make(map[*trace.Call]bool)
	visited := make(map[trace.Handle]bool)

	stack := make([]trace.Handle, 0, len(g.Outputs))
	for i := len(g.Outputs) - 1; i >= 0; i-- {
		stack = append(stack, g.Outputs[i])
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[h] {
			continue
		}
		visited[h] = true
		if declared[h] {
			g.reached[h] = true
			continue
		}

		p, ok := g.producer[h]
		if !ok {
			g.Extras = append(g.Extras, h)
			continue
		}
		if required[p] {
			continue
		}
		required[p] = true
		for i := len(p.Inputs) - 1; i >= 0; i-- {
			stack = append(stack, p.Inputs[i])
		}
	}
	return required
}

// sort is Kahn's algorithm over the required calls. Calls without inputs are
// ready first, in log order; then the seeds (declared inputs, then extras)
// are released; ready calls are emitted first in, first out.
func (g *Graph) sort(calls []*trace.Call, required map[*trace.Call]bool) ([]*trace.Call, error) {
	pending := make(map[*trace.Call]int, len(required))
	var queue []*trace.Call
	for _, c := range calls {
		if !required[c] {
			continue
		}
		pending[c] = len(c.Inputs)
		if len(c.Inputs) == 0 {
			queue = append(queue, c)
		}
	}

	released := make(map[trace.Handle]bool)
	release := func(h trace.Handle) {
		if released[h] {
			return
		}
		released[h] = true
		for _, c := range g.consumers[h] {
			if !required[c] {
				continue
			}
			pending[c]--
			if pending[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	for _, h := range g.Inputs {
		release(h)
	}
	for _, h := range g.Extras {
		release(h)
	}

	order := make([]*trace.Call, 0, len(required))
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		order = append(order, c)
		for _, h := range c.Results {
			if g.producer[h] == c {
				release(h)
			}
		}
	}

	if len(order) != len(required) {
		var stuck []string
		for _, c := range calls {
			if required[c] && pending[c] > 0 {
				stuck = append(stuck, c.String())
			}
		}
		return nil, errors.Wrapf(exporterr.ErrInternal,
			"sorted %d of %d required calls, unsorted: %s", len(order), len(required), strings.Join(stuck, "; "))
	}
	return order, nil
}

// Producer returns the call that produced h, or nil for inputs and extras.
func (g *Graph) Producer(h trace.Handle) *trace.Call {
	return g.producer[h]
}

// Consumers returns every logged call that reads h, once per occurrence.
func (g *Graph) Consumers(h trace.Handle) []*trace.Call {
	return g.consumers[h]
}

// Unused returns the declared inputs no output depends on, in declaration
// order.
func (g *Graph) Unused() []trace.Handle {
	var out []trace.Handle
	for _, h := range g.Inputs {
		if !g.reached[h] && !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}
