// Package residual implements the coefficient part of the syntax layer
// (spec §4.4): the subblock-scan algorithm with significance maps,
// greater-than-1/2 flags, sign hiding and adaptive Exp-Golomb remainders,
// plus the Exp-Golomb codec that package syntax uses for MVD coding. Grounded directly on
// xvc_enc_lib/syntax_writer.cc's WriteCoeffSubblock and its sibling
// syntax_reader (mirrored symmetrically, per spec §4.4's "writer + reader,
// symmetric" contract), re-expressed in the teacher's two-type
// writer/reader shape (jpeg2000/t1's T1Encoder/T1Decoder).
package residual

// Order identifies the coefficient/subblock scan pattern. It mirrors
// cabac.ScanOrder value for value (converted with cabac.ScanOrder(order)
// for context derivation), so callers of this package don't need a second
// import for the same concept.
type Order int

const (
	OrderDiagonal Order = iota
	OrderHorizontal
	OrderVertical
)

// Scan holds the two interleaved traversals spec §3 describes: the
// coefficient-within-subblock scan and the subblock-within-block scan,
// both generated algorithmically from (width, height, order) rather than
// hand-transcribed, per SPEC_FULL.md's resolution of the scan-table open
// question.
type Scan struct {
	Order Order

	// CoeffScan[i] is the linear (y*width+x) position visited i'th within
	// a subblock of the given dimensions.
	CoeffScan []int
	// SubblockScan[i] is the linear (y*subW+x) subblock visited i'th.
	SubblockScan []int

	// CoeffScanInv and SubblockScanInv are the inverse permutations: given
	// a linear position, the scan index that visits it. The reader uses
	// these to recover a coefficient's scan index from the decoded last
	// position (spec §4.4.1 step 1, run in reverse).
	CoeffScanInv    []int
	SubblockScanInv []int

	Width, Height       int
	SubblockW, SubblockH int
}

// invert builds the inverse permutation of a scan slice: inv[scan[i]] = i.
func invert(scan []int) []int {
	inv := make([]int, len(scan))
	for i, pos := range scan {
		inv[pos] = i
	}
	return inv
}

// NewScan builds the coefficient and subblock scans for a width×height
// transform block coded with subblock shift `shift` (2 normally, 1 when
// width or height is 2, per spec §3).
func NewScan(order Order, width, height, shift int) Scan {
	subW := width >> uint(shift)
	subH := height >> uint(shift)
	subSize := 1 << uint(shift)

	coeffScan := generateScan(order, subSize, subSize)
	subblockScan := generateScan(order, subW, subH)

	return Scan{
		Order:           order,
		CoeffScan:       coeffScan,
		SubblockScan:    subblockScan,
		CoeffScanInv:    invert(coeffScan),
		SubblockScanInv: invert(subblockScan),
		Width:           width,
		Height:          height,
		SubblockW:       subW,
		SubblockH:       subH,
	}
}

// generateScan produces the visiting order for a w×h grid under order,
// as a slice of linear (y*w+x) positions, length w*h, visiting each
// position exactly once (spec §8 "Scan completeness").
func generateScan(order Order, w, h int) []int {
	switch order {
	case OrderHorizontal:
		return rasterScan(w, h)
	case OrderVertical:
		return columnScan(w, h)
	default:
		return diagonalScan(w, h)
	}
}

func rasterScan(w, h int) []int {
	out := make([]int, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, y*w+x)
		}
	}
	return out
}

func columnScan(w, h int) []int {
	out := make([]int, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			out = append(out, y*w+x)
		}
	}
	return out
}

// diagonalScan produces the standard up-right anti-diagonal scan: for
// each diagonal index d=x+y (increasing), visit positions with y
// decreasing from min(d,h-1) down to max(0,d-w+1).
func diagonalScan(w, h int) []int {
	out := make([]int, 0, w*h)
	for d := 0; d < w+h-1; d++ {
		yStart := d
		if yStart > h-1 {
			yStart = h - 1
		}
		yEnd := 0
		if d-w+1 > yEnd {
			yEnd = d - w + 1
		}
		for y := yStart; y >= yEnd; y-- {
			x := d - y
			out = append(out, y*w+x)
		}
	}
	return out
}
