package ops

import "github.com/born-ml/onnxtrace/internal/tensor"

// Value pairs a tensor with the backend that operates on it, so that model code
// can be written in method style:
//
//	y := x.MatMul(w).Add(b).ReLU()
//
// Every method is one backend call. When the backend records, each method call
// becomes exactly one call record.
type Value struct {
	raw *tensor.RawTensor
	be  Backend
}

// NewValue wraps raw for be.
func NewValue(be Backend, raw *tensor.RawTensor) Value {
	return Value{raw: raw, be: be}
}

// Raw returns the wrapped tensor.
func (v Value) Raw() *tensor.RawTensor { return v.raw }

// Backend returns the backend the value dispatches to.
func (v Value) Backend() Backend { return v.be }

// Shape returns the tensor shape.
func (v Value) Shape() tensor.Shape { return v.raw.Shape() }

// DType returns the element type.
func (v Value) DType() tensor.DataType { return v.raw.DType() }

func (v Value) wrap(r *tensor.RawTensor) Value { return Value{raw: r, be: v.be} }

func (v Value) Add(o Value) Value { return v.wrap(v.be.Add(v.raw, o.raw)) }
func (v Value) Sub(o Value) Value { return v.wrap(v.be.Sub(v.raw, o.raw)) }
func (v Value) Mul(o Value) Value { return v.wrap(v.be.Mul(v.raw, o.raw)) }
func (v Value) Div(o Value) Value { return v.wrap(v.be.Div(v.raw, o.raw)) }
func (v Value) Neg() Value        { return v.wrap(v.be.Neg(v.raw)) }

func (v Value) AddConst(c float64) Value { return v.wrap(v.be.AddConstant(v.raw, c)) }
func (v Value) SubConst(c float64) Value { return v.wrap(v.be.SubConstant(v.raw, c)) }
func (v Value) MulConst(c float64) Value { return v.wrap(v.be.MulConstant(v.raw, c)) }
func (v Value) DivConst(c float64) Value { return v.wrap(v.be.DivConstant(v.raw, c)) }

// Comparisons return bool values and are recorded like any other primitive.
func (v Value) Greater(o Value) Value { return v.wrap(v.be.Greater(v.raw, o.raw)) }
func (v Value) Less(o Value) Value    { return v.wrap(v.be.Less(v.raw, o.raw)) }
func (v Value) Equal(o Value) Value   { return v.wrap(v.be.Equal(v.raw, o.raw)) }

// MatMul multiplies two matrices; see TransA and TransB.
func (v Value) MatMul(o Value, opts ...Arg) Value {
	return v.wrap(v.be.MatMul(v.raw, o.raw, opts...))
}

func (v Value) Exp() Value     { return v.wrap(v.be.Exp(v.raw)) }
func (v Value) Log() Value     { return v.wrap(v.be.Log(v.raw)) }
func (v Value) Sqrt() Value    { return v.wrap(v.be.Sqrt(v.raw)) }
func (v Value) ReLU() Value    { return v.wrap(v.be.ReLU(v.raw)) }
func (v Value) Sigmoid() Value { return v.wrap(v.be.Sigmoid(v.raw)) }
func (v Value) Tanh() Value    { return v.wrap(v.be.Tanh(v.raw)) }
func (v Value) Copy() Value    { return v.wrap(v.be.Copy(v.raw)) }

// Reshape returns a value with the same data and a new shape.
func (v Value) Reshape(shape ...int) Value {
	return v.wrap(v.be.Reshape(v.raw, tensor.Shape(shape)))
}

// Transpose permutes the axes; no axes reverses them.
func (v Value) Transpose(axes ...int) Value {
	if len(axes) == 0 {
		return v.wrap(v.be.Transpose(v.raw))
	}
	return v.wrap(v.be.Transpose(v.raw, Axes(axes...)))
}

// Index is x[idx...] with NumPy basic indexing.
func (v Value) Index(idx ...Index) Value { return v.wrap(v.be.GetItem(v.raw, idx...)) }

// Sum reduces over Axis (all axes by default).
func (v Value) Sum(opts ...Arg) Value { return v.wrap(v.be.Sum(v.raw, opts...)) }

// Mean reduces over Axis (all axes by default).
func (v Value) Mean(opts ...Arg) Value { return v.wrap(v.be.Mean(v.raw, opts...)) }

// Cast converts the element type.
func (v Value) Cast(dt tensor.DataType) Value { return v.wrap(v.be.Cast(v.raw, dt)) }
