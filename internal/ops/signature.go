package ops

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Param is one parameter of a primitive.
type Param struct {
	Name     string
	Required bool
	Default  any
}

// Signature describes how a primitive is called.
//
// Method primitives are recorded with their first tensor as the receiver, the way
// x.Add(y) reads; binding puts the receiver back in front of the arguments.
type Signature struct {
	Op     OpID
	Method bool
	Params []Param
}

func req(name string) Param          { return Param{Name: name, Required: true} }
func opt(name string, def any) Param { return Param{Name: name, Default: def} }
func sig(op OpID, ps ...Param) Signature {
	return Signature{Op: op, Params: ps}
}
func method(op OpID, ps ...Param) Signature {
	return Signature{Op: op, Method: true, Params: ps}
}

var signatures = map[OpID]Signature{}

func init() {
	for _, s := range []Signature{
		method(OpAdd, req("x"), req("y")),
		method(OpSub, req("x"), req("y")),
		method(OpMul, req("x"), req("y")),
		method(OpDiv, req("x"), req("y")),
		method(OpNeg, req("x")),
		method(OpAddConstant, req("x"), req("value")),
		method(OpSubConstant, req("x"), req("value")),
		method(OpMulConstant, req("x"), req("value")),
		method(OpDivConstant, req("x"), req("value")),
		sig(OpMaximum, req("x1"), req("x2")),
		sig(OpMinimum, req("x1"), req("x2")),
		sig(OpExp, req("x")),
		sig(OpLog, req("x")),
		sig(OpSqrt, req("x")),
		sig(OpMatMul, req("a"), req("b"), opt("transa", false), opt("transb", false)),
		method(OpGreater, req("x"), req("y")),
		method(OpLess, req("x"), req("y")),
		method(OpEqual, req("x"), req("y")),

		sig(OpLinear, req("x"), req("W"), opt("b", nil), opt("n_batch_axes", 1)),
		sig(OpConvolution2D, req("x"), req("W"), opt("b", nil), opt("stride", 1), opt("pad", 0),
			opt("cover_all", false), opt("dilate", 1), opt("groups", 1)),
		sig(OpMaxPooling2D, req("x"), req("ksize"), opt("stride", nil), opt("pad", 0),
			opt("cover_all", true), opt("return_indices", false)),
		sig(OpAveragePooling2D, req("x"), req("ksize"), opt("stride", nil), opt("pad", 0),
			opt("pad_value", 0.0)),
		sig(OpBatchNormalization, req("x"), req("gamma"), req("beta"), opt("eps", 2e-5),
			opt("running_mean", nil), opt("running_var", nil), opt("decay", 0.9), opt("axis", nil)),
		sig(OpFixedBatchNormalization, req("x"), req("gamma"), req("beta"), req("mean"), req("var"),
			opt("eps", 2e-5), opt("axis", nil)),

		sig(OpReLU, req("x")),
		sig(OpSigmoid, req("x")),
		sig(OpTanh, req("x")),
		sig(OpHardSigmoid, req("x")),
		sig(OpLeakyReLU, req("x"), opt("slope", 0.2)),
		sig(OpELU, req("x"), opt("alpha", 1.0)),
		sig(OpClippedReLU, req("x"), opt("z", 20.0)),
		sig(OpSoftmax, req("x"), opt("axis", 1)),
		sig(OpLogSoftmax, req("x"), opt("axis", 1)),
		sig(OpSoftplus, req("x"), opt("beta", 1.0)),

		method(OpReshape, req("x"), req("shape")),
		method(OpTranspose, req("x"), opt("axes", nil)),
		sig(OpSqueeze, req("x"), opt("axis", nil)),
		sig(OpExpandDims, req("x"), req("axis")),
		sig(OpConcat, req("xs"), opt("axis", 1)),
		method(OpGetItem, req("x"), req("slices")),
		sig(OpTile, req("x"), req("reps")),
		method(OpCast, req("x"), req("typ")),
		sig(OpCopy, req("x")),
		method(OpSum, req("x"), opt("axis", nil), opt("keepdims", false)),
		method(OpMean, req("x"), opt("axis", nil), opt("keepdims", false)),

		sig(OpZeros, req("shape"), opt("dtype", tensor.Float32)),
		sig(OpOnes, req("shape"), opt("dtype", tensor.Float32)),
	} {
		signatures[s.Op] = s
	}
}

// Lookup returns the signature of a primitive.
func Lookup(op OpID) (Signature, bool) {
	s, ok := signatures[op]
	return s, ok
}

// MustLookup is Lookup for primitives known to exist.
func MustLookup(op OpID) Signature {
	s, ok := signatures[op]
	if !ok {
		panic(fmt.Sprintf("ops: no signature for %q", op))
	}
	return s
}

func (s Signature) index(name string) int {
	for i, p := range s.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Bind matches positional arguments to parameters in order, then keyword
// arguments by name, then fills the remaining parameters from their defaults.
func (s Signature) Bind(args []any, kwargs []Arg) (*Bound, error) {
	if len(args) > len(s.Params) {
		return nil, fmt.Errorf("%s: takes %d arguments, %d given", s.Op, len(s.Params), len(args))
	}

	vals := make([]any, len(s.Params))
	set := make([]bool, len(s.Params))
	for i, a := range args {
		vals[i] = a
		set[i] = true
	}
	for _, kw := range kwargs {
		i := s.index(kw.Name)
		if i < 0 {
			return nil, fmt.Errorf("%s: unexpected keyword argument %q", s.Op, kw.Name)
		}
		if set[i] {
			return nil, fmt.Errorf("%s: multiple values for argument %q", s.Op, kw.Name)
		}
		vals[i] = kw.Value
		set[i] = true
	}
	for i, p := range s.Params {
		if set[i] {
			continue
		}
		if p.Required {
			return nil, fmt.Errorf("%s: missing required argument %q", s.Op, p.Name)
		}
		vals[i] = p.Default
	}
	return &Bound{sig: s, vals: vals}, nil
}

// Bound holds the arguments of one call after binding.
// Accessors panic when a value has an unexpected type: the call site and the
// signature disagree, which is a programming error.
type Bound struct {
	sig  Signature
	vals []any
}

// Op returns the bound primitive.
func (b *Bound) Op() OpID { return b.sig.Op }

// Len returns the number of parameters.
func (b *Bound) Len() int { return len(b.vals) }

// At returns the i-th bound value.
func (b *Bound) At(i int) any { return b.vals[i] }

// Get returns the value bound to name.
func (b *Bound) Get(name string) any {
	i := b.sig.index(name)
	if i < 0 {
		panic(fmt.Sprintf("%s: no parameter %q", b.sig.Op, name))
	}
	return b.vals[i]
}

// IsNone reports whether name is bound to nil.
func (b *Bound) IsNone(name string) bool {
	v := b.Get(name)
	if v == nil {
		return true
	}
	if t, ok := v.(*tensor.RawTensor); ok {
		return t == nil
	}
	return false
}

func (b *Bound) mismatch(name, want string, v any) string {
	return fmt.Sprintf("%s: argument %q: want %s, got %T", b.sig.Op, name, want, v)
}

// Int returns an integer argument.
func (b *Bound) Int(name string) int {
	switch v := b.Get(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	default:
		panic(b.mismatch(name, "int", v))
	}
}

// Float returns a floating point argument. Integers are accepted.
func (b *Bound) Float(name string) float64 {
	switch v := b.Get(name).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic(b.mismatch(name, "float", v))
	}
}

// Bool returns a boolean argument.
func (b *Bound) Bool(name string) bool {
	v, ok := b.Get(name).(bool)
	if !ok {
		panic(b.mismatch(name, "bool", b.Get(name)))
	}
	return v
}

// Ints returns an integer list argument. A single int becomes a one element
// list and nil stays nil.
func (b *Bound) Ints(name string) []int {
	switch v := b.Get(name).(type) {
	case nil:
		return nil
	case int:
		return []int{v}
	case []int:
		return append([]int(nil), v...)
	case tensor.Shape:
		return append([]int(nil), v...)
	default:
		panic(b.mismatch(name, "[]int", v))
	}
}

// Pair returns a two-dimensional spatial argument, duplicating a single value.
func (b *Bound) Pair(name string) [2]int {
	v := b.Ints(name)
	switch len(v) {
	case 1:
		return [2]int{v[0], v[0]}
	case 2:
		return [2]int{v[0], v[1]}
	default:
		panic(b.mismatch(name, "int or pair", b.Get(name)))
	}
}

// Tensor returns a tensor argument, which may be nil for optional parameters.
func (b *Bound) Tensor(name string) *tensor.RawTensor {
	switch v := b.Get(name).(type) {
	case nil:
		return nil
	case *tensor.RawTensor:
		return v
	default:
		panic(b.mismatch(name, "tensor", v))
	}
}

// Tensors returns a tensor list argument.
func (b *Bound) Tensors(name string) []*tensor.RawTensor {
	v, ok := b.Get(name).([]*tensor.RawTensor)
	if !ok {
		panic(b.mismatch(name, "[]tensor", b.Get(name)))
	}
	return v
}

// DataType returns an element type argument.
func (b *Bound) DataType(name string) tensor.DataType {
	v, ok := b.Get(name).(tensor.DataType)
	if !ok {
		panic(b.mismatch(name, "DataType", b.Get(name)))
	}
	return v
}

// Indices returns the get_item subscript.
func (b *Bound) Indices(name string) []Index {
	v, ok := b.Get(name).([]Index)
	if !ok {
		panic(b.mismatch(name, "[]Index", b.Get(name)))
	}
	return v
}
