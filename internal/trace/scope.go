package trace

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Scope is one recording session: an active tracer, the recording backend
// and the layer bindings replaced for it.
type Scope struct {
	tracer  *Tracer
	backend *Backend
	icpt    Interceptor
}

// Start activates a tracer and wraps inner in a recording backend.
// It fails with ErrTracerActive while another scope is open.
func Start(inner ops.Backend) (*Scope, error) {
	t, err := StartTracer()
	if err != nil {
		return nil, err
	}
	return &Scope{tracer: t, backend: NewBackend(inner, t)}, nil
}

// Backend returns the recording backend.
func (s *Scope) Backend() ops.Backend { return s.backend }

// Tracer returns the scope's tracer.
func (s *Scope) Tracer() *Tracer { return s.tracer }

// Intercept rebinds the layers of model to the recording backend until Close.
// Layers it cannot rebind are reported as an ErrUnsupported error.
func (s *Scope) Intercept(model any) error {
	return s.icpt.Install(model, s.backend)
}

// Run calls fn with the recording backend. A panic in fn is returned as an
// ErrForward error; recording state is consistent afterwards either way.
func (s *Scope) Run(fn func(be ops.Backend) ([]*tensor.RawTensor, error)) (outs []*tensor.RawTensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			outs, err = nil, fmt.Errorf("%w: %v", exporterr.ErrForward, r)
		}
	}()

	outs, err = fn(s.backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", exporterr.ErrForward, err)
	}
	if err := s.tracer.Err(); err != nil {
		return nil, err
	}
	return outs, nil
}

// Close restores intercepted layers and deactivates the tracer. It is safe
// to call more than once.
func (s *Scope) Close() {
	s.icpt.Restore()
	s.tracer.Stop()
}
