package trace

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/born-ml/onnxtrace/internal/exporterr"
	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/ops"
)

var (
	bindableType  = reflect.TypeFor[nn.Bindable]()
	containerType = reflect.TypeFor[nn.Container]()
	backendType   = reflect.TypeFor[ops.Backend]()
)

type binding struct {
	target nn.Bindable
	prev   ops.Backend
}

// ref identifies a pointer by type and address; a struct and its first
// field share an address.
type ref struct {
	typ  reflect.Type
	addr uintptr
}

// Interceptor rebinds layers that captured a backend at construction time.
// Objects are never replaced, so type assertions on the model keep working.
type Interceptor struct {
	replaced []binding
}

// Install binds every Bindable module reachable from root to be. Modules are
// found through Container, children first, and through the exported fields
// of the structs the model points to. Each module is rebound once even when
// shared.
//
// A Bindable reachable only through unexported fields cannot be rebound: its
// calls would skip the recording backend and its output would be captured
// as a constant. Install binds everything else and then fails with an error
// matching exporterr.ErrUnsupported naming the field.
func (ic *Interceptor) Install(root any, be ops.Backend) error {
	w := &binder{
		ic:     ic,
		be:     be,
		seen:   make(map[ref]bool),
		walked: make(map[ref]bool),
	}
	w.module(root, fmt.Sprintf("%T", root))

	var paths []string
	for _, h := range w.hidden {
		if !w.seen[h.ref] && !slices.Contains(paths, h.path) {
			paths = append(paths, h.path)
		}
	}
	if len(paths) > 0 {
		return exporterr.Unsupported("layer",
			"%s not reachable through Children or exported fields; expose it through nn.Container",
			strings.Join(paths, ", "))
	}
	return nil
}

// Restore rebinds every replaced module to its previous backend, in reverse
// order of replacement.
func (ic *Interceptor) Restore() {
	for i := len(ic.replaced) - 1; i >= 0; i-- {
		ic.replaced[i].target.Bind(ic.replaced[i].prev)
	}
	ic.replaced = nil
}

// Len returns the number of modules currently rebound.
func (ic *Interceptor) Len() int {
	return len(ic.replaced)
}

type hiddenLayer struct {
	ref  ref
	path string
}

// binder is one Install walk.
type binder struct {
	ic *Interceptor
	be ops.Backend

	seen   map[ref]bool // modules visited through interfaces
	walked map[ref]bool // pointers whose fields were scanned
	hidden []hiddenLayer
}

func (w *binder) module(m any, path string) {
	v := reflect.ValueOf(m)
	if !v.IsValid() {
		return
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		r := ref{v.Type(), v.Pointer()}
		if w.seen[r] {
			return
		}
		w.seen[r] = true
		w.walked[r] = true
	}

	if c, ok := m.(nn.Container); ok {
		for _, child := range c.Children() {
			w.module(child.Module, path+"."+child.Name)
		}
	}
	if b, ok := m.(nn.Bindable); ok && b.Backend() != w.be {
		w.ic.replaced = append(w.ic.replaced, binding{target: b, prev: b.Backend()})
		b.Bind(w.be)
	}
	w.value(reflect.Indirect(v), path)
}

// value scans v for modules. Backends, maps, channels and funcs are not
// entered.
func (w *binder) value(v reflect.Value, path string) {
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			w.value(v.Elem(), path)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			w.pointer(v, path)
		}
	case reflect.Struct:
		t := v.Type()
		for i := range v.NumField() {
			w.value(v.Field(i), path+"."+t.Field(i).Name)
		}
	case reflect.Slice, reflect.Array:
		switch v.Type().Elem().Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Struct:
			for i := range v.Len() {
				w.value(v.Index(i), fmt.Sprintf("%s[%d]", path, i))
			}
		}
	}
}

func (w *binder) pointer(v reflect.Value, path string) {
	t := v.Type()
	if t.Implements(backendType) {
		return
	}
	isBindable := t.Implements(bindableType)
	if v.CanInterface() && (isBindable || t.Implements(containerType)) {
		w.module(v.Interface(), path)
		return
	}

	r := ref{t, v.Pointer()}
	if isBindable {
		w.hidden = append(w.hidden, hiddenLayer{ref: r, path: path})
	}
	if w.walked[r] {
		return
	}
	w.walked[r] = true
	w.value(v.Elem(), path)
}
