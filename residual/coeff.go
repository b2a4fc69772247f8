package residual

import (
	"github.com/andersc/xvc/cabac"
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/restrictions"
	"github.com/andersc/xvc/xvcerr"
)

// Tuning constants from spec §4.4.
const (
	maxNumC1Flags            = 8
	signHidingThreshold      = 3
	coeffRemainBinReduction  = 3
	maxGolombRiceK           = 4
)

// subblockShiftFor selects the subblock partitioning shift: 2 normally
// (4×4 subblocks), 1 when either dimension is 2 (spec §3).
func subblockShiftFor(width, height int) int {
	if width == 2 || height == 2 {
		return 1
	}
	return 2
}

// Writer codes residual coefficients (and Exp-Golomb values) into an
// arithmetic-coded bitstream. Grounded on xvc_enc_lib/syntax_writer.cc's
// SyntaxWriter, mirrored bin-for-bin by Reader.
type Writer struct {
	Enc *cabac.Encoder
	Ctx *cabac.Contexts
	R   *restrictions.Set
}

// NewWriter creates a Writer over enc, using ctx for context lookups and
// r for feature toggles.
func NewWriter(enc *cabac.Encoder, ctx *cabac.Contexts, r *restrictions.Set) *Writer {
	return &Writer{Enc: enc, Ctx: ctx, R: r}
}

// Reader is the mirror-image decoder for Writer.
type Reader struct {
	Dec *cabac.Decoder
	Ctx *cabac.Contexts
	R   *restrictions.Set
}

// NewReader creates a Reader over dec, using ctx for context lookups and
// r for feature toggles.
func NewReader(dec *cabac.Decoder, ctx *cabac.Contexts, r *restrictions.Set) *Reader {
	return &Reader{Dec: dec, Ctx: ctx, R: r}
}

// WriteCoefficients codes the nonzero coefficients of a width×height
// transform block in scanOrder, matching
// SyntaxWriter::WriteCoeffSubblock. coeff is indexed [y*stride+x].
func (w *Writer) WriteCoefficients(comp cu.Component, coeff []int, stride, width, height int, scanOrder Order) error {
	shift := subblockShiftFor(width, height)
	scan := NewScan(scanOrder, width, height, shift)
	subblockSize := 1 << uint(2*shift)
	subblockMask := (1 << uint(shift)) - 1
	nbrSubblocks := scan.SubblockW * scan.SubblockH

	csbf := make([]bool, nbrSubblocks)
	if !w.R.DisableTransformCbf {
		csbf[0] = true
	}

	posLastIndex, posLastX, posLastY := 0, 0, 0
	for subIdx := 0; subIdx < nbrSubblocks; subIdx++ {
		subScan := scan.SubblockScan[subIdx]
		subScanY := subScan / scan.SubblockW
		subScanX := subScan - subScanY*scan.SubblockW
		subPosX := subScanX << uint(shift)
		subPosY := subScanY << uint(shift)
		for coeffIdx := 0; coeffIdx < subblockSize; coeffIdx++ {
			off := scan.CoeffScan[coeffIdx]
			cx := subPosX + (off & subblockMask)
			cy := subPosY + (off >> uint(shift))
			if coeff[cy*stride+cx] != 0 {
				posLastIndex = (subIdx << uint(2*shift)) + coeffIdx
				posLastX, posLastY = cx, cy
				csbf[subScan] = true
			}
		}
	}

	subblockLastIndex := nbrSubblocks - 1
	subblockLastCoeffOffset := 1
	var subblockCoeff [64]int
	coeffNumNonZero := 0
	var coeffSigns uint32
	lastNonzeroPos := -1
	firstNonzeroPos := subblockSize

	w.writeCoeffLastPos(comp, width, height, scanOrder, posLastX, posLastY)
	subblockLastIndex = posLastIndex >> uint(2*shift)
	lastCoeff := coeff[posLastY*stride+posLastX]
	subblockLastCoeffOffset = ((subblockLastIndex+1)<<uint(2*shift) - posLastIndex) + 1
	if w.R.DisableTransformCbf && posLastX == 0 && posLastY == 0 {
		subblockLastCoeffOffset--
	} else {
		coeffNumNonZero = 1
		if lastCoeff < 0 {
			coeffSigns = 1
		}
	}
	subblockCoeff[0] = absInt(lastCoeff)
	subblockLastOffset := subblockLastIndex << uint(2*shift)
	lastNonzeroPos = posLastIndex - subblockLastOffset
	firstNonzeroPos = posLastIndex - subblockLastOffset

	c1 := 1
	for subIdx := subblockLastIndex; subIdx >= 0; subIdx-- {
		subScan := scan.SubblockScan[subIdx]
		subScanY := subScan / scan.SubblockW
		subScanX := subScan - subScanY*scan.SubblockW
		subPosX := subScanX << uint(shift)
		subPosY := subScanY << uint(shift)

		sig := csbf[subScan]
		patternSigCtx := cabac.PatternNone
		isLastSubblock := subIdx == subblockLastIndex && !w.R.DisableTransformCbf
		isFirstSubblock := subIdx == 0 && !w.R.DisableTransformCbf
		right, below := subblockNeighborCsbf(csbf, subScanX, subScanY, scan.SubblockW, scan.SubblockH)
		_, patternSigCtx = cabac.SubblockCsbfCtx(right, below)
		if isLastSubblock || isFirstSubblock {
			if !sig {
				return xvcerr.Internal("implicitly-coded subblock csbf must be significant")
			}
		} else {
			ctxIdx, p := cabac.SubblockCsbfCtx(right, below)
			patternSigCtx = p
			bin := 0
			if sig {
				bin = 1
			}
			w.Enc.EncodeBin(bin, &w.Ctx.SubblockCsbf[ctxIdx])
		}
		if !sig {
			continue
		}

		for coeffIdx := subblockSize - subblockLastCoeffOffset; coeffIdx >= 0; coeffIdx-- {
			off := scan.CoeffScan[coeffIdx]
			cx := subPosX + (off & subblockMask)
			cy := subPosY + (off >> uint(shift))
			v := coeff[cy*stride+cx]
			notFirstSubblock := subIdx > 0
			if coeffIdx == 0 && notFirstSubblock && coeffNumNonZero == 0 {
				if v == 0 {
					return xvcerr.Internal("implicitly-coded coefficient must be nonzero")
				}
			} else {
				xInSub := cx - subPosX
				yInSub := cy - subPosY
				isDC := subIdx == 0
				ctxInc := cabac.SigCtxInc(patternSigCtx, cabac.ScanOrder(scanOrder), xInSub, yInSub, isDC, len(w.Ctx.CoeffSigMap))
				bin := 0
				if v != 0 {
					bin = 1
				}
				w.Enc.EncodeBin(bin, &w.Ctx.CoeffSigMap[ctxInc])
			}
			if v != 0 {
				subblockCoeff[coeffNumNonZero] = absInt(v)
				coeffNumNonZero++
				coeffSigns <<= 1
				if v < 0 {
					coeffSigns |= 1
				}
				if lastNonzeroPos == -1 {
					lastNonzeroPos = coeffIdx
				}
				firstNonzeroPos = coeffIdx
			}
		}
		subblockLastCoeffOffset = 1
		if coeffNumNonZero == 0 {
			lastNonzeroPos = -1
			firstNonzeroPos = subblockSize
			continue
		}

		maxC1 := maxNumC1Flags
		ctxSet := cabac.CtxSet(subIdx, comp != cu.ComponentLuma, c1 == 0)
		c1 = 1
		firstC2Idx := -1
		for i := 0; i < coeffNumNonZero && i < maxC1; i++ {
			gt1 := subblockCoeff[i] > 1
			ctxInc := cabac.Greater1CtxInc(ctxSet, c1)
			bin := 0
			if gt1 {
				bin = 1
			}
			w.Enc.EncodeBin(bin, &w.Ctx.CoeffGreater1[ctxInc%len(w.Ctx.CoeffGreater1)])
			if gt1 {
				c1 = 0
				if firstC2Idx == -1 {
					firstC2Idx = i
				}
			} else if c1 < 3 && c1 > 0 {
				c1++
			}
		}

		if firstC2Idx >= 0 {
			gt2 := subblockCoeff[firstC2Idx] > 2
			ctxInc := cabac.Greater2CtxInc(ctxSet)
			bin := 0
			if gt2 {
				bin = 1
			}
			w.Enc.EncodeBin(bin, &w.Ctx.CoeffGreater2[ctxInc%len(w.Ctx.CoeffGreater2)])
		}

		signHidden := !w.R.DisableTransformSignHiding && lastNonzeroPos-firstNonzeroPos > signHidingThreshold
		lastNonzeroPos = -1
		firstNonzeroPos = subblockSize

		if signHidden {
			w.Enc.EncodeBypassBins(coeffSigns>>1, coeffNumNonZero-1)
		} else {
			w.Enc.EncodeBypassBins(coeffSigns, coeffNumNonZero)
		}
		coeffSigns = 0

		if c1 == 0 || coeffNumNonZero > maxC1 {
			firstGreater2 := 1
			golombK := 0
			for i := 0; i < coeffNumNonZero; i++ {
				baseLevel := 1
				if i < maxC1 {
					baseLevel = 2 + firstGreater2
				}
				if subblockCoeff[i] >= baseLevel {
					w.writeCoeffRemainExpGolomb(subblockCoeff[i]-baseLevel, golombK)
					if subblockCoeff[i] > 3*(1<<uint(golombK)) && !w.R.DisableTransformAdaptiveExpGolomb {
						golombK++
						if golombK > maxGolombRiceK {
							golombK = maxGolombRiceK
						}
					}
				}
				if subblockCoeff[i] >= 2 {
					firstGreater2 = 0
				}
			}
		}
		coeffNumNonZero = 0
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// subblockNeighborCsbf reports whether the right and below subblock
// neighbors (in scan-grid coordinates) are coded, matching the lookups
// SyntaxWriter/SyntaxReader perform before deriving pattern_sig_ctx.
func subblockNeighborCsbf(csbf []bool, x, y, subW, subH int) (right, below bool) {
	if x+1 < subW {
		right = csbf[y*subW+x+1]
	}
	if y+1 < subH {
		below = csbf[(y+1)*subW+x]
	}
	return
}

// writeCoeffLastPos codes the truncated-unary-prefixed last-position
// syntax, matching SyntaxWriter::WriteCoeffLastPos.
func (w *Writer) writeCoeffLastPos(comp cu.Component, width, height int, scanOrder Order, lastX, lastY int) {
	if scanOrder == OrderVertical {
		lastX, lastY = lastY, lastX
		width, height = height, width
	}
	groupIdxX := lastPosGroupIdx(lastX)
	groupIdxY := lastPosGroupIdx(lastY)
	isChroma := comp != cu.ComponentLuma

	ctxLastX := 0
	for ; ctxLastX < groupIdxX; ctxLastX++ {
		ctxInc := cabac.LastPosCtxInc(isChroma, log2Int(width), ctxLastX)
		w.Enc.EncodeBin(1, &w.Ctx.CoeffLastPosX[ctxInc%len(w.Ctx.CoeffLastPosX)])
	}
	if groupIdxX < lastPosGroupIdx(width-1) {
		ctxInc := cabac.LastPosCtxInc(isChroma, log2Int(width), ctxLastX)
		w.Enc.EncodeBin(0, &w.Ctx.CoeffLastPosX[ctxInc%len(w.Ctx.CoeffLastPosX)])
	}
	ctxLastY := 0
	for ; ctxLastY < groupIdxY; ctxLastY++ {
		ctxInc := cabac.LastPosCtxInc(isChroma, log2Int(height), ctxLastY)
		w.Enc.EncodeBin(1, &w.Ctx.CoeffLastPosY[ctxInc%len(w.Ctx.CoeffLastPosY)])
	}
	if groupIdxY < lastPosGroupIdx(height-1) {
		ctxInc := cabac.LastPosCtxInc(isChroma, log2Int(height), ctxLastY)
		w.Enc.EncodeBin(0, &w.Ctx.CoeffLastPosY[ctxInc%len(w.Ctx.CoeffLastPosY)])
	}

	if groupIdxX > 3 {
		length := (groupIdxX - 2) >> 1
		remain := uint32(lastX - lastPosMinInGroup(groupIdxX))
		for i := length - 1; i >= 0; i-- {
			w.Enc.EncodeBypass(int((remain >> uint(i)) & 1))
		}
	}
	if groupIdxY > 3 {
		length := (groupIdxY - 2) >> 1
		remain := uint32(lastY - lastPosMinInGroup(groupIdxY))
		for i := length - 1; i >= 0; i-- {
			w.Enc.EncodeBypass(int((remain >> uint(i)) & 1))
		}
	}
}

func log2Int(v int) int {
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// writeCoeffRemainExpGolomb codes codeNumber with the HEVC bin-reduction
// rule, matching SyntaxWriter::WriteCoeffRemainExpGolomb.
func (w *Writer) writeCoeffRemainExpGolomb(codeNumber, k int) {
	if codeNumber < (coeffRemainBinReduction << uint(k)) {
		length := codeNumber >> uint(k)
		w.Enc.EncodeBypassBins(uint32((1<<uint(length+1))-2), length+1)
		w.Enc.EncodeBypassBins(uint32(codeNumber&((1<<uint(k))-1)), k)
		return
	}
	length := k
	codeNumber -= coeffRemainBinReduction << uint(k)
	for codeNumber >= (1 << uint(length)) {
		codeNumber -= 1 << uint(length)
		length++
	}
	numBins := coeffRemainBinReduction + length + 1 - k
	w.Enc.EncodeBypassBins(uint32((1<<uint(numBins))-2), numBins)
	w.Enc.EncodeBypassBins(uint32(codeNumber), length)
}

// WriteExpGolomb codes a kth-order Exp-Golomb code for absLevel, matching
// SyntaxWriter::WriteExpGolomb (used by MVD coding).
func (w *Writer) WriteExpGolomb(absLevel, k int) {
	var bins uint32
	numBins := 0
	for absLevel >= (1 << uint(k)) {
		bins = bins*2 + 1
		numBins++
		absLevel -= 1 << uint(k)
		k++
	}
	bins *= 2
	numBins++
	bins = (bins << uint(k)) | uint32(absLevel)
	numBins += k
	w.Enc.EncodeBypassBins(bins, numBins)
}
