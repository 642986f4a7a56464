package onnx

import (
	"errors"
	"fmt"

	"github.com/born-ml/onnxtrace/internal/exporterr"
)

// Check validates the structure of a model: versions, unique value
// definitions, references that resolve to earlier definitions, typed inputs
// and outputs disjoint from each other, well-formed attributes and
// initializer sizes.
// Every problem found is reported, wrapped in ErrInvalidModel.
//
//nolint:gocognit,gocyclo,cyclop,funlen // Mirrors the checker rules one by one.
func Check(m *ModelProto) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if m.IRVersion <= 0 {
		fail("ir_version %d is not positive", m.IRVersion)
	}
	var opset int64
	for _, o := range m.OpsetImport {
		if o.Domain == "" || o.Domain == "ai.onnx" {
			opset = o.Version
		}
	}
	if opset <= 0 {
		fail("no opset imported for the default domain")
	}

	g := m.Graph
	if g == nil {
		fail("model has no graph")
		return wrapInvalid(errs)
	}

	defined := make(map[string]string)
	define := func(name, what string) {
		if name == "" {
			fail("%s has an empty name", what)
			return
		}
		if prev, ok := defined[name]; ok {
			fail("%s %q is already defined as %s", what, name, prev)
			return
		}
		defined[name] = what
	}
	checkType := func(vi *ValueInfoProto, what string) {
		if vi.Type == nil || vi.Type.TensorType == nil {
			fail("%s %q has no tensor type", what, vi.Name)
			return
		}
		if _, err := DataTypeOf(vi.Type.TensorType.ElemType); err != nil {
			fail("%s %q: %v", what, vi.Name, err)
		}
	}

	initNames := make(map[string]bool, len(g.Initializers))
	for i := range g.Initializers {
		t := &g.Initializers[i]
		define(t.Name, "initializer")
		initNames[t.Name] = true
		if _, err := t.ToRaw(); err != nil {
			fail("initializer: %v", err)
		}
	}
	inputNames := make(map[string]bool, len(g.Inputs))
	for i := range g.Inputs {
		in := &g.Inputs[i]
		checkType(in, "input")
		if initNames[in.Name] {
			// IR < 4 lists initializers among the inputs as well.
			continue
		}
		define(in.Name, "input")
		inputNames[in.Name] = true
	}

	nodeNames := make(map[string]bool)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		what := fmt.Sprintf("node #%d (%s)", i, n.OpType)
		if n.OpType == "" {
			fail("%s has no op_type", what)
		}
		if n.Name != "" {
			if nodeNames[n.Name] {
				fail("%s: duplicate node name %q", what, n.Name)
			}
			nodeNames[n.Name] = true
		}
		for _, in := range n.Inputs {
			if in == "" {
				continue
			}
			if _, ok := defined[in]; !ok {
				fail("%s: input %q is not defined by an earlier node, an input or an initializer", what, in)
			}
		}
		if len(n.Outputs) == 0 {
			fail("%s has no outputs", what)
		}
		for _, out := range n.Outputs {
			define(out, what+" output")
		}
		attrs := make(map[string]bool)
		for j := range n.Attributes {
			a := &n.Attributes[j]
			if a.Name == "" {
				fail("%s: attribute #%d has no name", what, j)
			}
			if attrs[a.Name] {
				fail("%s: duplicate attribute %q", what, a.Name)
			}
			attrs[a.Name] = true
			if a.Type <= AttributeProtoUndefined || a.Type > AttributeProtoGraphs {
				fail("%s: attribute %q has invalid type %d", what, a.Name, a.Type)
			}
			if a.Type == AttributeProtoTensor {
				if a.T == nil {
					fail("%s: tensor attribute %q is empty", what, a.Name)
				} else if _, err := a.T.ToRaw(); err != nil {
					fail("%s: attribute %q: %v", what, a.Name, err)
				}
			}
		}
	}

	if len(g.Outputs) == 0 {
		fail("graph has no outputs")
	}
	outNames := make(map[string]bool)
	for i := range g.Outputs {
		out := &g.Outputs[i]
		checkType(out, "output")
		if inputNames[out.Name] {
			fail("output %q is also a graph input", out.Name)
		} else if _, ok := defined[out.Name]; !ok {
			fail("output %q is never produced", out.Name)
		}
		if outNames[out.Name] {
			fail("output %q is listed twice", out.Name)
		}
		outNames[out.Name] = true
	}
	for i := range g.ValueInfo {
		checkType(&g.ValueInfo[i], "value_info")
	}

	return wrapInvalid(errs)
}

func wrapInvalid(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", exporterr.ErrInvalidModel, errors.Join(errs...))
}
