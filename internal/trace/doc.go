// Package trace records the primitive calls made during one forward pass.
//
// Recording is scoped and explicit. A Scope owns a Tracer, which holds the call
// log and the value arena, and a Backend, which decorates an inner ops.Backend:
// every primitive called through it runs on the inner backend with recording
// suspended and is then reported to the tracer as one Call. Layers that captured
// a backend when they were built are rebound to the recording Backend for the
// lifetime of the scope.
//
//	scope, err := trace.Start(cpu.New())
//	if err != nil {
//		return err
//	}
//	defer scope.Close()
//	if err := scope.Intercept(model); err != nil {
//		return err
//	}
//	outputs, err := scope.Run(func(be ops.Backend) ([]*tensor.RawTensor, error) {
//		return model.Call(be, inputs...)
//	})
//
// Only one tracer may be active per process.
package trace
