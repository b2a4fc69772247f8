package intra

import (
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/restrictions"
)

// kAngleTable maps an angular-mode offset in [-8,8] (index = offset+8) to
// its 1/32-sample prediction angle, matching
// IntraPrediction::kAngleTable_.
var kAngleTable = [17]int{
	-32, -26, -21, -17, -13, -9, -5, -2, 0, 2, 5, 9, 13, 17, 21, 26, 32,
}

// modeDiagonal is the first mode (18) predicted along the vertical axis;
// modes 2..17 are horizontal.
const modeDiagonal cu.IntraMode = 18

// kInvAngleTable is the 256/angle inverse-angle table used to project the
// opposite reference arm onto the prediction line for negative angles,
// matching IntraPrediction::kInvAngleTable_.
var kInvAngleTable = [8]int{
	4096, 1638, 910, 630, 482, 390, 315, 256,
}

// kFilterRefThreshold, indexed by log2(width), gates whether the filtered
// (smoothed) reference line is used in place of the raw one, matching
// IntraPrediction::kFilterRefThreshold (sizes 4,8,16,32,64 at log2 2..6).
var kFilterRefThreshold = [7]int{0, 0, 10, 7, 1, 0, 10}

func log2Size(size int) int {
	n := 0
	for size > 1 {
		size >>= 1
		n++
	}
	return n
}

// Plane selects which picture output the predictor writes into; identical
// in role to cu.Component but named locally so this package has no
// dependency cycle back onto per-component CU accessors beyond geometry.
type Plane = cu.Component

// Output is a caller-provided width×height destination, addressed
// [y][x], matching the raster output_buffer/output_stride convention of
// the original Predict.
type Output[T Sample] [][]T

// NewOutput allocates a zeroed width×height output block.
func NewOutput[T Sample](width, height int) Output[T] {
	out := make(Output[T], height)
	for y := range out {
		out[y] = make([]T, width)
	}
	return out
}

// Predict writes the intra-predicted block for mode into out, given the
// raw and filtered reference lines for a width×height plane. Mirrors
// IntraPrediction::Predict: luma uses the filtered line when the angular
// distance from horizontal/vertical exceeds kFilterRefThreshold; the
// post-filter (DC corner/edge blend, or the angle==0 edge blend) applies
// only to luma blocks with width ≤ 16 and height ≤ 16.
func Predict[T Sample](mode cu.IntraMode, width, height int, raw, filtered RefSamples[T], comp Plane, bitDepth int, r *restrictions.Set, out Output[T]) {
	refSamples := raw
	if comp == cu.ComponentLuma {
		threshold := kFilterRefThreshold[log2Size(width)]
		modeDiff := absInt(int(mode) - int(cu.ModeHorizontal))
		if d := absInt(int(mode) - int(cu.ModeVertical)); d < modeDiff {
			modeDiff = d
		}
		if modeDiff > threshold {
			refSamples = filtered
		}
	}

	postFilter := comp == cu.ComponentLuma && width <= 16 && height <= 16

	switch mode {
	case cu.ModePlanar:
		planarPred(width, height, refSamples, out)
	case cu.ModeDC:
		predIntraDC(width, height, postFilter, raw, bitDepth, r, out)
	default:
		angularPred(width, height, mode, postFilter, refSamples, bitDepth, r, out)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// planarPred mirrors IntraPrediction::PlanarPred.
func planarPred[T Sample](width, height int, ref RefSamples[T], out Output[T]) {
	shift := log2Size(width) + 1
	above := ref.Above(width)[1:]
	left := ref.Left(height)
	topRight := above[width]
	bottomLeft := left[height]

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			hor := (height-1-y)*int(above[x]) + (y+1)*int(bottomLeft)
			ver := (width-1-x)*int(left[y]) + (x+1)*int(topRight)
			out[y][x] = T((hor + ver + width) >> shift)
		}
	}
}

// predIntraDC mirrors IntraPrediction::PredIntraDC, including the
// edge/corner post-filter for small luma blocks.
func predIntraDC[T Sample](width, height int, dcFilter bool, ref RefSamples[T], bitDepth int, r *restrictions.Set, out Output[T]) {
	above := ref.Above(width)
	left := ref.Left(height)

	sum := 0
	for x := 0; x < width; x++ {
		sum += int(above[1+x])
	}
	for y := 0; y < height; y++ {
		sum += int(left[y])
	}
	dcVal := T((sum + width) / (width + height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y][x] = dcVal
		}
	}

	if !dcFilter || r.DisableIntraDCPostFilter {
		return
	}
	for y := height - 1; y > 0; y-- {
		out[y][0] = T((int(left[y]) + 3*int(out[y][0]) + 2) >> 2)
	}
	for x := 1; x < width; x++ {
		out[0][x] = T((int(above[1+x]) + 3*int(out[0][x]) + 2) >> 2)
	}
	out[0][0] = T((int(above[1]) + int(left[0]) + 2*int(out[0][0]) + 2) >> 2)
}

// angularPred mirrors IntraPrediction::AngularPred: horizontal modes
// (<modeDiagonal) predict on a transposed reference/output and are
// transposed back at the end.
func angularPred[T Sample](width, height int, dirMode cu.IntraMode, filter bool, ref RefSamples[T], bitDepth int, r *restrictions.Set, out Output[T]) {
	isHorizontal := dirMode < modeDiagonal

	// flipRef presents a single logical L-shape, transposed when
	// horizontal so the rest of the routine can always treat "angle" as
	// acting along the vertical axis, matching ref_flip_buffer.
	flipRef := ref
	if isHorizontal {
		flipRef = NewRefSamples[T](width, height)
		flipRef.Samples[0] = ref.Samples[0]
		srcLeft := ref.Left(height)
		for y := 0; y < height*2 && y < len(srcLeft); y++ {
			flipRef.Samples[1+y] = srcLeft[y]
		}
		srcAbove := ref.Above(width)[1:]
		dstLeft := flipRef.Left(width)
		for x := 0; x < width*2 && x < len(srcAbove); x++ {
			dstLeft[x] = srcAbove[x]
		}
		width, height = height, width
	}

	angleOffset := int(dirMode) - int(cu.ModeVertical)
	if isHorizontal {
		angleOffset = int(cu.ModeHorizontal) - int(dirMode)
	}
	angle := kAngleTable[8+angleOffset]

	if angle == 0 {
		above := flipRef.Above(width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				writeAngular(out, isHorizontal, y, x, above[1+x])
			}
		}
		if filter && !r.DisableIntraVerHorPostFilter {
			aboveLeft := flipRef.Samples[0]
			topSample := above[1]
			left := flipRef.Left(width)
			maxVal := T((1 << uint(bitDepth)) - 1)
			for y := 0; y < width; y++ {
				val := int(topSample) + ((int(left[y]) - int(aboveLeft)) >> 1)
				writeAngular(out, isHorizontal, y, 0, clipBD(val, maxVal))
			}
		}
	} else {
		refLine, base := buildProjectedLine(width, flipRef, angle, angleOffset)

		angleSum := 0
		for y := 0; y < height; y++ {
			angleSum += angle
			offset := angleSum >> 5
			w := angleSum & 31
			for x := 0; x < width; x++ {
				if w == 0 {
					writeAngular(out, isHorizontal, y, x, refLine[base+offset+x+1])
					continue
				}
				v := (32-w)*int(refLine[base+offset+x+1]) + w*int(refLine[base+offset+x+2]) + 16
				writeAngular(out, isHorizontal, y, x, T(v>>5))
			}
		}
	}
}

// buildProjectedLine constructs the single-row prediction line used by
// the non-zero-angle branch of angularPred, projecting the opposite arm
// via kInvAngleTable when angle is negative, matching the ref_line_buffer
// construction in AngularPred.
func buildProjectedLine[T Sample](width int, ref RefSamples[T], angle, angleOffset int) ([]T, int) {
	above := ref.Above(width)
	if angle >= 0 {
		return above, 0
	}

	numProjected := -((width * angle) >> 5) - 1
	line := make([]T, numProjected+1+width+1)
	base := numProjected + 1
	for i := 0; i < width+1; i++ {
		line[base+i-1] = above[i]
	}

	invAngle := kInvAngleTable[-angleOffset-1]
	invAngleSum := 128
	left := ref.Left(width)
	for i := 0; i < numProjected; i++ {
		invAngleSum += invAngle
		srcIdx := (invAngleSum >> 8) - 1
		var v T
		if srcIdx >= 0 && srcIdx < len(left) {
			v = left[srcIdx]
		}
		line[base-2-i] = v
	}
	return line, base - 1
}

// writeAngular writes val to out at logical (row, col), transposing back
// to (col, row) when isHorizontal, matching AngularPred's final
// flip-back loop.
func writeAngular[T Sample](out Output[T], isHorizontal bool, row, col int, val T) {
	if isHorizontal {
		out[col][row] = val
	} else {
		out[row][col] = val
	}
}

func clipBD[T Sample](v int, max T) T {
	if v < 0 {
		return 0
	}
	if T(v) > max {
		return max
	}
	return T(v)
}
