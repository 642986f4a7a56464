package ops

import "github.com/born-ml/onnxtrace/internal/tensor"

// Backend is the operation table: one method per primitive.
//
// Implementations:
//   - cpu.Backend: float64 reference kernels
//   - trace.Backend: records every call and forwards to an inner backend
//
// Methods panic on invalid arguments (shape mismatch, bad axis); the message
// names the primitive.
type Backend interface {
	// Name identifies the backend namespace. Not recorded.
	Name() string

	// Element-wise binary operations (NumPy broadcasting)
	Add(x, y *tensor.RawTensor) *tensor.RawTensor
	Sub(x, y *tensor.RawTensor) *tensor.RawTensor
	Mul(x, y *tensor.RawTensor) *tensor.RawTensor
	Div(x, y *tensor.RawTensor) *tensor.RawTensor
	Maximum(x1, x2 *tensor.RawTensor) *tensor.RawTensor
	Minimum(x1, x2 *tensor.RawTensor) *tensor.RawTensor

	// Element-wise operations with a Go scalar
	AddConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor
	SubConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor
	MulConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor
	DivConstant(x *tensor.RawTensor, value float64) *tensor.RawTensor

	// Element-wise math
	Neg(x *tensor.RawTensor) *tensor.RawTensor
	Exp(x *tensor.RawTensor) *tensor.RawTensor
	Log(x *tensor.RawTensor) *tensor.RawTensor
	Sqrt(x *tensor.RawTensor) *tensor.RawTensor

	// Comparison (bool results)
	Greater(x, y *tensor.RawTensor) *tensor.RawTensor
	Less(x, y *tensor.RawTensor) *tensor.RawTensor
	Equal(x, y *tensor.RawTensor) *tensor.RawTensor

	// Matrix and connection operations
	MatMul(a, b *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Linear(x, w, b *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Convolution2D(x, w, b *tensor.RawTensor, opts ...Arg) *tensor.RawTensor

	// Pooling
	MaxPooling2D(x *tensor.RawTensor, ksize int, opts ...Arg) *tensor.RawTensor
	AveragePooling2D(x *tensor.RawTensor, ksize int, opts ...Arg) *tensor.RawTensor

	// Normalization
	BatchNormalization(x, gamma, beta *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	FixedBatchNormalization(x, gamma, beta, mean, variance *tensor.RawTensor, opts ...Arg) *tensor.RawTensor

	// Activations
	ReLU(x *tensor.RawTensor) *tensor.RawTensor
	Sigmoid(x *tensor.RawTensor) *tensor.RawTensor
	Tanh(x *tensor.RawTensor) *tensor.RawTensor
	HardSigmoid(x *tensor.RawTensor) *tensor.RawTensor
	LeakyReLU(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	ELU(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	ClippedReLU(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Softmax(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	LogSoftmax(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Softplus(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor

	// Array manipulation
	Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor
	Transpose(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Squeeze(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	ExpandDims(x *tensor.RawTensor, axis int) *tensor.RawTensor
	Concat(xs []*tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	GetItem(x *tensor.RawTensor, slices ...Index) *tensor.RawTensor
	Tile(x *tensor.RawTensor, reps ...int) *tensor.RawTensor
	Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor
	Copy(x *tensor.RawTensor) *tensor.RawTensor

	// Reductions
	Sum(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor
	Mean(x *tensor.RawTensor, opts ...Arg) *tensor.RawTensor

	// Creation
	Zeros(shape tensor.Shape, opts ...Arg) *tensor.RawTensor
	Ones(shape tensor.Shape, opts ...Arg) *tensor.RawTensor
}

// MustBind binds a call for a kernel. Kernels have no error return, so a
// binding failure panics like any other misuse.
func MustBind(op OpID, args []any, kwargs []Arg) *Bound {
	b, err := MustLookup(op).Bind(args, kwargs)
	if err != nil {
		panic(err.Error())
	}
	return b
}
