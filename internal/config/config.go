// Package config loads export job files.
//
// A job file is HCL with one block per model to export:
//
//	export "mlp" {
//	  model  = "mlp"
//	  output = "${env.OUT}/mlp.onnx"
//	  opset  = 11
//
//	  input "x" {
//	    shape = [2, 4]
//	  }
//	}
//
// Environment variables are available as env.<NAME>. Every validation error
// matches exporterr.ErrConfig.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// File is a decoded job file.
type File struct {
	Exports []*Export `hcl:"export,block"`
}

// Export describes one export job.
type Export struct {
	Name      string   `hcl:"name,label"`
	Model     string   `hcl:"model"`
	Output    string   `hcl:"output"`
	Opset     *int64   `hcl:"opset,optional"`
	GraphName *string  `hcl:"graph_name,optional"`
	SaveText  bool     `hcl:"save_text,optional"`
	Testcase  bool     `hcl:"testcase,optional"`
	Verify    bool     `hcl:"verify,optional"`
	Seed      int64    `hcl:"seed,optional"`
	Inputs    []*Input `hcl:"input,block"`

	// Weights is a SafeTensors file replacing the seeded parameters.
	Weights     *string `hcl:"weights,optional"`
	// SaveWeights stores the parameters next to the model.
	SaveWeights bool    `hcl:"save_weights,optional"`
}

// Input declares the shape and element type of one model input. Values are
// sampled from the job seed.
type Input struct {
	Name  string `hcl:"name,label"`
	Shape []int  `hcl:"shape"`
	DType string `hcl:"dtype,optional"`
}

// DataType returns the input's element type, float32 by default.
func (in *Input) DataType() tensor.DataType {
	dt, ok := tensor.ParseDataType(in.DType)
	if !ok {
		return tensor.Float32
	}
	return dt
}

// Load parses and validates a job file.
func Load(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, exporterr.Config("read job file: %v", err)
	}
	return Parse(ctx, src, path)
}

// Parse decodes and validates job file source. filename is used in
// diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*File, error) {
	log := klog.FromContext(ctx)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, exporterr.Config("failed to parse %s: %s", filename, diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, evalContext(), &f)
	if diags.HasErrors() {
		return nil, exporterr.Config("failed to decode %s: %s", filename, diags.Error())
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	log.V(1).Info("loaded job file", "path", filename, "exports", len(f.Exports))
	return &f, nil
}

// evalContext exposes the process environment as env.<NAME>.
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(name) {
			continue
		}
		env[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
	}
}

func (f *File) validate() error {
	if len(f.Exports) == 0 {
		return exporterr.Config("no export blocks")
	}
	seen := make(map[string]bool, len(f.Exports))
	for _, e := range f.Exports {
		if seen[e.Name] {
			return exporterr.Config("export %q is declared twice", e.Name)
		}
		seen[e.Name] = true
		if err := e.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Export) validate() error {
	switch {
	case e.Model == "":
		return exporterr.Config("export %q: model is empty", e.Name)
	case e.Output == "":
		return exporterr.Config("export %q: output is empty", e.Name)
	case e.Seed < 0:
		return exporterr.Config("export %q: seed %d is negative", e.Name, e.Seed)
	case e.GraphName != nil && *e.GraphName == "":
		return exporterr.Config("export %q: graph_name is empty", e.Name)
	case e.Weights != nil && *e.Weights == "":
		return exporterr.Config("export %q: weights is empty", e.Name)
	}

	seen := make(map[string]bool, len(e.Inputs))
	for _, in := range e.Inputs {
		if seen[in.Name] {
			return exporterr.Config("export %q: input %q is declared twice", e.Name, in.Name)
		}
		seen[in.Name] = true
		if in.DType != "" {
			if _, ok := tensor.ParseDataType(in.DType); !ok {
				return exporterr.Config("export %q: input %q: unknown dtype %q", e.Name, in.Name, in.DType)
			}
		}
		for _, d := range in.Shape {
			if d <= 0 {
				return exporterr.Config("export %q: input %q: shape %v has a non-positive dimension", e.Name, in.Name, in.Shape)
			}
		}
	}
	return nil
}

// Shapes returns the declared input shapes, or nil when none are declared.
func (e *Export) Shapes() []tensor.Shape {
	if len(e.Inputs) == 0 {
		return nil
	}
	out := make([]tensor.Shape, len(e.Inputs))
	for i, in := range e.Inputs {
		out[i] = tensor.Shape(in.Shape)
	}
	return out
}
