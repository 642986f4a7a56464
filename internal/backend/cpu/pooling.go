package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

type poolWindow struct {
	k, s, p  [2]int
	coverAll bool
}

// pool2d slides a window over the spatial axes of an [N,C,H,W] input and
// reduces every window with f, which receives the in-bounds values.
func pool2d(op string, x *tensor.RawTensor, win poolWindow, f func(window []float64) float64) *tensor.RawTensor {
	if x.Rank() != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %v", op, x.Shape()))
	}
	N, C, H, W := x.Shape()[0], x.Shape()[1], x.Shape()[2], x.Shape()[3]
	HOut := convOutSize(H, win.k[0], win.s[0], win.p[0], win.coverAll)
	WOut := convOutSize(W, win.k[1], win.s[1], win.p[1], win.coverAll)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output dimensions: out_h=%d, out_w=%d", op, HOut, WOut))
	}

	xv := x.Float64s()
	out := make([]float64, N*C*HOut*WOut)
	window := make([]float64, 0, win.k[0]*win.k[1])
	for nc := 0; nc < N*C; nc++ {
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				window = window[:0]
				for kh := 0; kh < win.k[0]; kh++ {
					ih := oh*win.s[0] - win.p[0] + kh
					if ih < 0 || ih >= H {
						continue
					}
					for kw := 0; kw < win.k[1]; kw++ {
						iw := ow*win.s[1] - win.p[1] + kw
						if iw < 0 || iw >= W {
							continue
						}
						window = append(window, xv[(nc*H+ih)*W+iw])
					}
				}
				out[(nc*HOut+oh)*WOut+ow] = f(window)
			}
		}
	}
	return newResult(op, tensor.Shape{N, C, HOut, WOut}, x.DType(), out)
}

// poolWindowOf reads ksize, stride and pad; stride defaults to ksize.
func poolWindowOf(bound *ops.Bound) poolWindow {
	win := poolWindow{k: bound.Pair("ksize"), p: bound.Pair("pad")}
	win.s = win.k
	if !bound.IsNone("stride") {
		win.s = bound.Pair("stride")
	}
	return win
}

// MaxPooling2D takes the maximum of every window. cover_all defaults to true.
func (cpu *CPUBackend) MaxPooling2D(x *tensor.RawTensor, ksize int, opts ...ops.Arg) *tensor.RawTensor {
	bound := ops.MustBind(ops.OpMaxPooling2D, []any{x, ksize}, opts)
	if bound.Bool("return_indices") {
		panic("max_pooling_2d: return_indices is not supported by the CPU backend")
	}
	win := poolWindowOf(bound)
	win.coverAll = bound.Bool("cover_all")
	return pool2d("max_pooling_2d", x, win, func(window []float64) float64 {
		m := math.Inf(-1)
		for _, v := range window {
			m = math.Max(m, v)
		}
		return m
	})
}

// AveragePooling2D averages every window. Padded positions count as pad_value
// and are included in the divisor.
func (cpu *CPUBackend) AveragePooling2D(x *tensor.RawTensor, ksize int, opts ...ops.Arg) *tensor.RawTensor {
	bound := ops.MustBind(ops.OpAveragePooling2D, []any{x, ksize}, opts)
	win := poolWindowOf(bound)
	padValue := bound.Float("pad_value")
	area := win.k[0] * win.k[1]
	return pool2d("average_pooling_2d", x, win, func(window []float64) float64 {
		sum := padValue * float64(area-len(window))
		for _, v := range window {
			sum += v
		}
		return sum / float64(area)
	})
}
