package cpu

import (
	"fmt"

	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/parallel"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// convOutSize returns the output length of a sliding window.
// With coverAll every input position is covered, padding the end if needed.
func convOutSize(size, k, s, p int, coverAll bool) int {
	if coverAll {
		return (size+2*p-k+s-1)/s + 1
	}
	return (size+2*p-k)/s + 1
}

// Convolution2D performs grouped 2D convolution with direct loops.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels/groups, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
func (cpu *CPUBackend) Convolution2D(x, w, b *tensor.RawTensor, opts ...ops.Arg) *tensor.RawTensor {
	bound := ops.MustBind(ops.OpConvolution2D, []any{x, w, b}, opts)
	if x.Rank() != 4 {
		panic(fmt.Sprintf("convolution_2d: input must be 4D [N,C,H,W], got %v", x.Shape()))
	}
	if w.Rank() != 4 {
		panic(fmt.Sprintf("convolution_2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %v", w.Shape()))
	}

	stride, pad, dilate := bound.Pair("stride"), bound.Pair("pad"), bound.Pair("dilate")
	groups := bound.Int("groups")
	coverAll := bound.Bool("cover_all")

	N, CIn, H, W := x.Shape()[0], x.Shape()[1], x.Shape()[2], x.Shape()[3]
	COut, CInG, KH, KW := w.Shape()[0], w.Shape()[1], w.Shape()[2], w.Shape()[3]
	if groups < 1 || CIn%groups != 0 || COut%groups != 0 || CIn/groups != CInG {
		panic(fmt.Sprintf("convolution_2d: input channels %d, kernel channels %d and groups %d are inconsistent",
			CIn, CInG, groups))
	}

	DKH, DKW := dilate[0]*(KH-1)+1, dilate[1]*(KW-1)+1
	HOut := convOutSize(H, DKH, stride[0], pad[0], coverAll)
	WOut := convOutSize(W, DKW, stride[1], pad[1], coverAll)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("convolution_2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	xv, wv := x.Float64s(), w.Float64s()
	var bv []float64
	if !bound.IsNone("b") {
		bv = b.Float64s()
	}
	coutPerGroup := COut / groups
	out := make([]float64, N*COut*HOut*WOut)

	parallel.ForBatch(N, COut, func(n, co int) {
		g := co / coutPerGroup
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				sum := 0.0
				if bv != nil {
					sum = bv[co]
				}
				for ci := 0; ci < CInG; ci++ {
					c := g*CInG + ci
					for kh := 0; kh < KH; kh++ {
						ih := oh*stride[0] - pad[0] + kh*dilate[0]
						if ih < 0 || ih >= H {
							continue
						}
						for kw := 0; kw < KW; kw++ {
							iw := ow*stride[1] - pad[1] + kw*dilate[1]
							if iw < 0 || iw >= W {
								continue
							}
							sum += xv[((n*CIn+c)*H+ih)*W+iw] * wv[((co*CInG+ci)*KH+kh)*KW+kw]
						}
					}
				}
				out[((n*COut+co)*HOut+oh)*WOut+ow] = sum
			}
		}
	}, cpu.par)

	return newResult("convolution_2d", tensor.Shape{N, COut, HOut, WOut}, x.DType(), out)
}
