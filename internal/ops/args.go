package ops

import "github.com/born-ml/onnxtrace/internal/tensor"

// Arg is a keyword argument of a primitive call.
type Arg struct {
	Name  string
	Value any
}

func intOrInts(v []int) any {
	if len(v) == 1 {
		return v[0]
	}
	return append([]int(nil), v...)
}

// Stride sets the window stride; one value applies to every spatial axis.
func Stride(v ...int) Arg { return Arg{"stride", intOrInts(v)} }

// Pad sets the spatial padding; one value applies to every spatial axis.
func Pad(v ...int) Arg { return Arg{"pad", intOrInts(v)} }

// CoverAll makes windows cover every input position, padding the end if needed.
func CoverAll(v bool) Arg { return Arg{"cover_all", v} }

// Dilate sets the convolution dilation.
func Dilate(v int) Arg { return Arg{"dilate", v} }

// Groups sets the number of convolution groups.
func Groups(v int) Arg { return Arg{"groups", v} }

// ReturnIndices asks max pooling for argmax indices.
func ReturnIndices(v bool) Arg { return Arg{"return_indices", v} }

// PadValue sets the value used for padded positions in average pooling.
func PadValue(v float64) Arg { return Arg{"pad_value", v} }

// NBatchAxes sets how many leading axes of a linear input are batch axes.
func NBatchAxes(v int) Arg { return Arg{"n_batch_axes", v} }

// TransA transposes the first matmul operand.
func TransA(v bool) Arg { return Arg{"transa", v} }

// TransB transposes the second matmul operand.
func TransB(v bool) Arg { return Arg{"transb", v} }

// Eps sets the normalization epsilon.
func Eps(v float64) Arg { return Arg{"eps", v} }

// Decay sets the running statistics decay of batch normalization.
func Decay(v float64) Arg { return Arg{"decay", v} }

// RunningMean passes the running mean tensor of batch normalization.
func RunningMean(t *tensor.RawTensor) Arg { return Arg{"running_mean", t} }

// RunningVar passes the running variance tensor of batch normalization.
func RunningVar(t *tensor.RawTensor) Arg { return Arg{"running_var", t} }

// Axis selects one axis, or several for reductions and squeeze.
func Axis(v ...int) Arg { return Arg{"axis", intOrInts(v)} }

// Axes sets a transpose permutation.
func Axes(v ...int) Arg { return Arg{"axes", append([]int(nil), v...)} }

// KeepDims keeps reduced axes with size one.
func KeepDims(v bool) Arg { return Arg{"keepdims", v} }

// Slope sets the negative slope of leaky ReLU.
func Slope(v float64) Arg { return Arg{"slope", v} }

// Alpha sets the ELU alpha.
func Alpha(v float64) Arg { return Arg{"alpha", v} }

// Ceil sets the upper bound of clipped ReLU.
func Ceil(v float64) Arg { return Arg{"z", v} }

// Beta sets the softplus sharpness.
func Beta(v float64) Arg { return Arg{"beta", v} }

// Dtype sets the element type of a creation primitive.
func Dtype(v tensor.DataType) Arg { return Arg{"dtype", v} }
