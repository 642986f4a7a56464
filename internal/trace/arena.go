package trace

import (
	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Handle indexes a tracked value in an Arena.
type Handle int

// Tracked is a value observed during tracing.
type Tracked struct {
	Handle Handle
	Serial uint64
	Shape  tensor.Shape
	DType  tensor.DataType
	// Tensor holds the concrete value. Only leaves (inputs, parameters and
	// constants) need its data.
	Tensor *tensor.RawTensor
}

// Arena assigns handles to tensors by serial number.
type Arena struct {
	values   []Tracked
	bySerial map[uint64]Handle
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{bySerial: make(map[uint64]Handle)}
}

// Track returns the handle of t, assigning the next one on first sight.
// A tensor seen again with a different shape or type is an internal error.
func (a *Arena) Track(t *tensor.RawTensor) (Handle, error) {
	if h, ok := a.bySerial[t.Serial()]; ok {
		v := a.values[h]
		if !v.Shape.Equal(t.Shape()) || v.DType != t.DType() {
			return 0, exporterr.Internal("value #%d observed as %s%v and as %s%v",
				t.Serial(), v.DType, v.Shape, t.DType(), t.Shape())
		}
		return h, nil
	}
	h := Handle(len(a.values))
	a.values = append(a.values, Tracked{
		Handle: h,
		Serial: t.Serial(),
		Shape:  t.Shape().Clone(),
		DType:  t.DType(),
		Tensor: t,
	})
	a.bySerial[t.Serial()] = h
	return h, nil
}

// Lookup returns the handle of t if it was tracked.
func (a *Arena) Lookup(t *tensor.RawTensor) (Handle, bool) {
	h, ok := a.bySerial[t.Serial()]
	return h, ok
}

// Value returns the tracked value for h.
func (a *Arena) Value(h Handle) Tracked {
	return a.values[h]
}

// Len returns the number of tracked values.
func (a *Arena) Len() int {
	return len(a.values)
}
