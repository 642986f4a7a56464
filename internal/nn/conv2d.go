package nn

import (
	"math/rand/v2"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// Conv2D implements a 2D convolutional layer.
//
// Input shape: [batch, in_channels, height, width]
// Output shape: [batch, out_channels, out_height, out_width]
type Conv2D struct {
	W      *Parameter // [out_channels, in_channels, kernel, kernel]
	B      *Parameter // [out_channels]
	Stride int
	Pad    int
	be     ops.Backend
}

// NewConv2D creates a convolution with a square kernel.
func NewConv2D(inChannels, outChannels, kernel, stride, pad int, be ops.Backend, rng *rand.Rand) *Conv2D {
	fanIn := inChannels * kernel * kernel
	fanOut := outChannels * kernel * kernel
	return &Conv2D{
		W:      NewParameter("W", Xavier(rng, fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernel, kernel})),
		B:      NewParameter("b", Filled(tensor.Shape{outChannels}, 0)),
		Stride: stride,
		Pad:    pad,
		be:     be,
	}
}

// Forward applies the convolution.
func (c *Conv2D) Forward(x *tensor.RawTensor) *tensor.RawTensor {
	var opts []ops.Arg
	if c.Stride != 1 {
		opts = append(opts, ops.Stride(c.Stride))
	}
	if c.Pad != 0 {
		opts = append(opts, ops.Pad(c.Pad))
	}
	return c.be.Convolution2D(x, c.W.Tensor(), c.B.Tensor(), opts...)
}

// Parameters returns W and b.
func (c *Conv2D) Parameters() []*Parameter { return []*Parameter{c.W, c.B} }

// Backend returns the bound backend.
func (c *Conv2D) Backend() ops.Backend { return c.be }

// Bind replaces the bound backend.
func (c *Conv2D) Bind(be ops.Backend) { c.be = be }
