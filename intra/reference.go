// Package intra implements reference-sample construction and the
// planar/DC/angular intra-prediction pipeline (spec §4.5). Grounded
// directly on the original xvc_common_lib/intra_prediction.cc
// (ComputeRefSamples, FilterRefSamples, PlanarPred, PredIntraDC,
// AngularPred, GetPredictorLuma, GetPredictorsChroma), re-expressed as
// idiomatic Go generics over the teacher's numeric-kernel style
// (jpeg2000/t1's bit-plane coders are likewise parameterized over a
// single sample width per call rather than hand-duplicated per bit depth).
package intra

import (
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/restrictions"
	"golang.org/x/exp/constraints"
)

// Sample is the numeric type a reconstructed pixel is stored as. Luma and
// chroma planes both use this, and higher-bit-depth profiles use a wider
// instantiation — the generic routines below compile one specialization
// per call site (spec §9 "Template-specialized numeric kernels").
type Sample interface {
	constraints.Integer
}

// RefSamples holds the L-shaped neighbor line described in spec §3: one
// flat array with the above-left corner at index 0, the above/above-right
// arm at [1, 2W], and the left/below-left arm starting at Stride. Samples
// has length Stride+2*H.
type RefSamples[T Sample] struct {
	Samples []T
	Stride  int
}

// NewRefSamples allocates a RefSamples sized for a width×height block.
// width and height must be equal: intra reference construction is only
// meaningful for the square prediction blocks this codec's CUs use (the
// Planar/DC/Angular formulas in spec §4.5 all assume a single block size).
func NewRefSamples[T Sample](width, height int) RefSamples[T] {
	stride := 2*width + 1
	return RefSamples[T]{
		Samples: make([]T, stride+2*height),
		Stride:  stride,
	}
}

// Above returns the above-left/above/above-right arm, length 2W+1.
func (r RefSamples[T]) Above(width int) []T { return r.Samples[:2*width+1] }

// Left returns the left/below-left arm, length 2H, index 0 nearest the
// above-left corner.
func (r RefSamples[T]) Left(height int) []T {
	return r.Samples[r.Stride : r.Stride+2*height]
}

// SampleGetter reads one reconstructed sample at absolute picture
// coordinates (x, y). Callers must only invoke it for coordinates a
// NeighborState reports as available.
type SampleGetter[T Sample] func(x, y int) T

// ComputeRefSamples fills out the L-shaped reference line for a width×
// height block positioned at (x0, y0), using get to read already-
// reconstructed neighbor samples. Mirrors
// IntraPrediction::ComputeRefSamples: the no-neighbor and all-neighbor
// cases are handled directly; the partial case goes through a scratch
// line of length 3·width+2·height that is filled where available and then
// propagated, unless restrictions disables padding.
func ComputeRefSamples[T Sample](n cu.NeighborState, get SampleGetter[T], x0, y0, width, height, bitDepth int, r *restrictions.Set) RefSamples[T] {
	out := NewRefSamples[T](width, height)
	midGrey := T(1 << uint(bitDepth-1))

	hasAny := n.Left || n.Above || n.AboveLeft || n.AboveRight() || n.BelowLeft()
	if !hasAny {
		for i := range out.Samples {
			out.Samples[i] = midGrey
		}
		return out
	}

	hasAll := n.Left && n.Above && n.AboveLeft &&
		n.AboveRightCount >= width && n.BelowLeftCount >= height
	if hasAll {
		above := out.Above(width)
		for i := range above {
			above[i] = get(x0-1+i, y0-1)
		}
		left := out.Left(height)
		for i := range left {
			left[i] = get(x0-1, y0+i)
		}
		return out
	}

	// Partial case: scratch line segmented
	// [below-left | left | above-left | above | above-right]; below-left
	// and left hold `height` samples each, above-left one, above and
	// above-right `width` each. The buffer is allocated 3*width+2*height
	// long, which covers those 2*height+2*width+1 samples.
	total := width*3 + height*2
	scratch := make([]T, total)
	filled := make([]bool, total)
	for i := range scratch {
		scratch[i] = midGrey
	}

	belowLeftEnd := height * 2
	leftStart := 0
	aboveLeftIdx := belowLeftEnd
	aboveStart := belowLeftEnd + 1
	aboveRightStart := aboveStart + width

	if n.AboveLeft {
		scratch[aboveLeftIdx] = get(x0-1, y0-1)
		filled[aboveLeftIdx] = true
	}
	if n.Left {
		for i := 0; i < height; i++ {
			idx := aboveLeftIdx - 1 - i
			scratch[idx] = get(x0-1, y0+i)
			filled[idx] = true
		}
		if n.BelowLeft() {
			belowLeftCount := n.BelowLeftCount
			if belowLeftCount > height {
				belowLeftCount = height
			}
			for i := 0; i < belowLeftCount; i++ {
				idx := aboveLeftIdx - 1 - height - i
				scratch[idx] = get(x0-1, y0+height+i)
				filled[idx] = true
			}
			for i := belowLeftCount; i < height; i++ {
				idx := aboveLeftIdx - 1 - height - i
				nearest := aboveLeftIdx - height - belowLeftCount
				scratch[idx] = scratch[nearest]
				filled[idx] = true
			}
		}
	}
	_ = leftStart
	if n.Above {
		for i := 0; i < width; i++ {
			scratch[aboveStart+i] = get(x0+i, y0-1)
			filled[aboveStart+i] = true
		}
		if n.AboveRight() {
			aboveRightCount := n.AboveRightCount
			if aboveRightCount > width {
				aboveRightCount = width
			}
			for i := 0; i < aboveRightCount; i++ {
				scratch[aboveRightStart+i] = get(x0+width+i, y0-1)
				filled[aboveRightStart+i] = true
			}
			for i := aboveRightCount; i < width; i++ {
				scratch[aboveRightStart+i] = scratch[aboveRightStart+aboveRightCount-1]
				filled[aboveRightStart+i] = true
			}
		}
	}

	if !r.DisableIntraRefPadding {
		// Pad missing below-left from the nearest available segment.
		if !n.BelowLeft() {
			var ref T
			switch {
			case n.Left:
				ref = scratch[aboveLeftIdx-height]
			case n.AboveLeft:
				ref = scratch[aboveLeftIdx]
			case n.Above:
				ref = scratch[aboveStart]
			default:
				ref = scratch[aboveRightStart]
			}
			for i := 0; i < height; i++ {
				scratch[i] = ref
				filled[i] = true
			}
		}
		// Pad any other missing segment by extending its predecessor.
		if !n.Left {
			for i := 0; i < height; i++ {
				idx := aboveLeftIdx - 1 - i
				scratch[idx] = scratch[height-1]
				filled[idx] = true
			}
		}
		if !n.AboveLeft {
			scratch[aboveLeftIdx] = scratch[aboveLeftIdx-1]
			filled[aboveLeftIdx] = true
		}
		if !n.Above {
			for i := 0; i < width; i++ {
				scratch[aboveStart+i] = scratch[aboveStart-1]
				filled[aboveStart+i] = true
			}
		}
		if !n.AboveRight() {
			for i := 0; i < width; i++ {
				scratch[aboveRightStart+i] = scratch[aboveRightStart-1]
				filled[aboveRightStart+i] = true
			}
		}
	}

	// Copy processed samples into the output L-shape: the above arm reads
	// forward starting at the corner; the left/below-left arm is written
	// reversed (scratch index increases toward the corner; the output arm
	// increases away from it).
	above := out.Above(width)
	for i := range above {
		above[i] = scratch[aboveLeftIdx+i]
	}
	left := out.Left(height)
	for i := range left {
		left[i] = scratch[belowLeftEnd-1-i]
	}
	return out
}

// FilterRefSamples produces the 3-tap [1,2,1]/4 smoothed reference line
// from src, matching IntraPrediction::FilterRefSamples: both endpoints of
// the continuous line (far below-left and far above-right) are copied
// unchanged; every interior sample blends with its immediate neighbors
// along the continuous L-shape.
func FilterRefSamples[T Sample](src RefSamples[T], width, height int) RefSamples[T] {
	dst := NewRefSamples[T](width, height)
	aboveLeft := src.Samples[0]

	dst.Samples[0] = T((int(aboveLeft)<<1 + int(src.Samples[1]) + int(src.Samples[src.Stride]) + 2) >> 2)

	for x := 1; x < width*2; x++ {
		dst.Samples[x] = T((int(src.Samples[x])<<1 + int(src.Samples[x-1]) + int(src.Samples[x+1]) + 2) >> 2)
	}
	dst.Samples[width*2] = src.Samples[width*2]

	s, d := src.Stride, dst.Stride
	dst.Samples[d] = T((int(src.Samples[s])<<1 + int(aboveLeft) + int(src.Samples[s+1]) + 2) >> 2)
	for y := 1; y < height*2-1; y++ {
		dst.Samples[d+y] = T((int(src.Samples[s+y])<<1 + int(src.Samples[s+y-1]) + int(src.Samples[s+y+1]) + 2) >> 2)
	}
	dst.Samples[d+height*2-1] = src.Samples[s+height*2-1]
	return dst
}
