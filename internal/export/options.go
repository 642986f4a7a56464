package export

import (
	"github.com/born-ml/onnxtrace/internal/backend/cpu"
	"github.com/born-ml/onnxtrace/internal/convert"
	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/ops"
)

// Version is reported as the producer version of exported models.
const Version = "v0.1.0-dev"

type options struct {
	opset     int64
	graphName string
	backend   ops.Backend
	registry  *convert.Registry
	producer  onnx.Producer
}

func defaults() options {
	return options{
		opset:     onnx.LatestOpset,
		graphName: "Graph",
		producer:  onnx.Producer{Name: "onnxtrace", Version: Version},
	}
}

// Option configures Export.
type Option func(*options)

// WithOpset selects the target opset. The default is onnx.LatestOpset.
func WithOpset(v int64) Option {
	return func(o *options) { o.opset = v }
}

// WithGraphName sets the graph name. The default is "Graph".
func WithGraphName(name string) Option {
	return func(o *options) { o.graphName = name }
}

// WithBackend sets the backend the forward pass runs on.
// The default is a new CPU backend.
func WithBackend(be ops.Backend) Option {
	return func(o *options) { o.backend = be }
}

// WithRegistry replaces the converter table.
func WithRegistry(r *convert.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithProducer overrides the producer recorded in the model.
func WithProducer(name, version string) Option {
	return func(o *options) { o.producer = onnx.Producer{Name: name, Version: version} }
}

func (o *options) complete() {
	if o.backend == nil {
		o.backend = cpu.New()
	}
	if o.registry == nil {
		o.registry = convert.Default()
	}
}
