package residual

import (
	"github.com/andersc/xvc/cabac"
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/xvcerr"
	"github.com/pkg/errors"
)

// ReadCoefficients decodes the nonzero coefficients of a width×height
// transform block coded in scanOrder, writing the reconstructed levels
// into coeff (indexed [y*stride+x], zeroing it first). It mirrors
// Writer.WriteCoefficients bin for bin, matching SyntaxReader's
// counterpart to SyntaxWriter::WriteCoeffSubblock.
func (r *Reader) ReadCoefficients(comp cu.Component, coeff []int, stride, width, height int, scanOrder Order) error {
	for y := 0; y < height; y++ {
		row := coeff[y*stride : y*stride+width]
		for x := range row {
			row[x] = 0
		}
	}

	shift := subblockShiftFor(width, height)
	scan := NewScan(scanOrder, width, height, shift)
	subblockSize := 1 << uint(2*shift)
	subblockMask := (1 << uint(shift)) - 1

	csbf := make([]bool, scan.SubblockW*scan.SubblockH)
	isChroma := comp != cu.ComponentLuma

	posLastX, posLastY, err := r.readCoeffLastPos(comp, width, height, scanOrder)
	if err != nil {
		return errors.Wrap(err, "residual: read last position")
	}
	if posLastX < 0 || posLastX >= width || posLastY < 0 || posLastY >= height {
		return xvcerr.InvalidStream("decoded last position outside block bounds")
	}

	subScanX, subScanY := posLastX>>uint(shift), posLastY>>uint(shift)
	subblockLastIndex := scan.SubblockScanInv[subScanY*scan.SubblockW+subScanX]
	xInSub, yInSub := posLastX&subblockMask, posLastY&subblockMask
	coeffIdxOfLast := scan.CoeffScanInv[(yInSub<<uint(shift))+xInSub]

	subblockLastCoeffOffset := (subblockSize - coeffIdxOfLast) + 1

	type sigPos struct{ x, y int }
	var positions [64]sigPos
	var levels [64]int

	coeffNumNonZero := 0
	lastNonzeroPos := coeffIdxOfLast
	firstNonzeroPos := coeffIdxOfLast

	if r.R.DisableTransformCbf && posLastX == 0 && posLastY == 0 {
		subblockLastCoeffOffset--
	} else {
		positions[0] = sigPos{posLastX, posLastY}
		levels[0] = 1
		coeffNumNonZero = 1
	}

	c1 := 1
	for subIdx := subblockLastIndex; subIdx >= 0; subIdx-- {
		subScan := scan.SubblockScan[subIdx]
		subScanY2 := subScan / scan.SubblockW
		subScanX2 := subScan - subScanY2*scan.SubblockW
		subPosX := subScanX2 << uint(shift)
		subPosY := subScanY2 << uint(shift)

		isLastSubblock := subIdx == subblockLastIndex && !r.R.DisableTransformCbf
		isFirstSubblock := subIdx == 0 && !r.R.DisableTransformCbf
		right, below := subblockNeighborCsbf(csbf, subScanX2, subScanY2, scan.SubblockW, scan.SubblockH)

		var sig bool
		var patternSigCtx cabac.PatternSigCtx
		if isLastSubblock || isFirstSubblock {
			sig = true
			_, patternSigCtx = cabac.SubblockCsbfCtx(right, below)
		} else {
			ctxIdx, p := cabac.SubblockCsbfCtx(right, below)
			patternSigCtx = p
			bin, err := r.Dec.DecodeBin(&r.Ctx.SubblockCsbf[ctxIdx])
			if err != nil {
				return errors.Wrap(err, "residual: decode subblock csbf")
			}
			sig = bin != 0
			if !sig && subIdx == subblockLastIndex {
				return xvcerr.InvalidStream("csbf decoded 0 for the subblock containing the last position")
			}
		}
		csbf[subScan] = sig
		if !sig {
			continue
		}

		for coeffIdx := subblockSize - subblockLastCoeffOffset; coeffIdx >= 0; coeffIdx-- {
			off := scan.CoeffScan[coeffIdx]
			cx := subPosX + (off & subblockMask)
			cy := subPosY + (off >> uint(shift))
			notFirstSubblock := subIdx > 0
			isDC := subIdx == 0

			var significant bool
			if coeffIdx == 0 && notFirstSubblock && coeffNumNonZero == 0 {
				significant = true
			} else {
				xInSub2 := cx - subPosX
				yInSub2 := cy - subPosY
				ctxInc := cabac.SigCtxInc(patternSigCtx, cabac.ScanOrder(scanOrder), xInSub2, yInSub2, isDC, len(r.Ctx.CoeffSigMap))
				bin, err := r.Dec.DecodeBin(&r.Ctx.CoeffSigMap[ctxInc])
				if err != nil {
					return errors.Wrap(err, "residual: decode significance flag")
				}
				significant = bin != 0
			}

			if significant {
				if coeffNumNonZero >= len(levels) {
					return xvcerr.InvalidStream("more significant coefficients than a subblock can hold")
				}
				positions[coeffNumNonZero] = sigPos{cx, cy}
				levels[coeffNumNonZero] = 1
				coeffNumNonZero++
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
		ctxSet := cabac.CtxSet(subIdx, isChroma, c1 == 0)
		c1 = 1
		firstC2Idx := -1
		var gt1 [maxNumC1Flags]bool
		for i := 0; i < coeffNumNonZero && i < maxC1; i++ {
			ctxInc := cabac.Greater1CtxInc(ctxSet, c1)
			bin, err := r.Dec.DecodeBin(&r.Ctx.CoeffGreater1[ctxInc%len(r.Ctx.CoeffGreater1)])
			if err != nil {
				return errors.Wrap(err, "residual: decode greater-than-1 flag")
			}
			gt1[i] = bin != 0
			levels[i] = 1
			if gt1[i] {
				levels[i] = 2
				c1 = 0
				if firstC2Idx == -1 {
					firstC2Idx = i
				}
			} else if c1 < 3 && c1 > 0 {
				c1++
			}
		}

		gt2 := false
		if firstC2Idx >= 0 {
			ctxInc := cabac.Greater2CtxInc(ctxSet)
			bin, err := r.Dec.DecodeBin(&r.Ctx.CoeffGreater2[ctxInc%len(r.Ctx.CoeffGreater2)])
			if err != nil {
				return errors.Wrap(err, "residual: decode greater-than-2 flag")
			}
			gt2 = bin != 0
			if gt2 {
				levels[firstC2Idx] = 3
			}
		}

		signHidden := !r.R.DisableTransformSignHiding && lastNonzeroPos-firstNonzeroPos > signHidingThreshold
		lastNonzeroPos = -1
		firstNonzeroPos = subblockSize

		numSigns := coeffNumNonZero
		if signHidden {
			numSigns--
		}
		var negative [64]bool
		for i := 0; i < numSigns; i++ {
			bit, err := r.Dec.DecodeBypass()
			if err != nil {
				return errors.Wrap(err, "residual: decode coefficient sign")
			}
			negative[i] = bit != 0
		}

		if c1 == 0 || coeffNumNonZero > maxC1 {
			firstGreater2 := 1
			golombK := 0
			for i := 0; i < coeffNumNonZero; i++ {
				baseLevel := 1
				if i < maxC1 {
					baseLevel = 2 + firstGreater2
				}
				needsRemainder := i >= maxC1 || (i < maxC1 && ((i == firstC2Idx && gt2) || (gt1[i] && i != firstC2Idx)))
				if needsRemainder {
					remain, err := r.readCoeffRemainExpGolomb(golombK)
					if err != nil {
						return errors.Wrap(err, "residual: decode coefficient remainder")
					}
					levels[i] = baseLevel + remain
					if levels[i] > 3*(1<<uint(golombK)) && !r.R.DisableTransformAdaptiveExpGolomb {
						golombK++
						if golombK > maxGolombRiceK {
							golombK = maxGolombRiceK
						}
					}
				}
				if levels[i] >= 2 {
					firstGreater2 = 0
				}
			}
		}

		sumAbs := 0
		for i := 0; i < coeffNumNonZero; i++ {
			sumAbs += levels[i]
		}
		if signHidden {
			negative[coeffNumNonZero-1] = sumAbs&1 != 0
		}
		for i := 0; i < coeffNumNonZero; i++ {
			v := levels[i]
			if negative[i] {
				v = -v
			}
			p := positions[i]
			coeff[p.y*stride+p.x] = v
		}

		coeffNumNonZero = 0
	}
	return nil
}

// readCoeffLastPos decodes the truncated-unary-prefixed last-position
// syntax, mirroring Writer.writeCoeffLastPos: both prefixes are read before
// either suffix.
func (r *Reader) readCoeffLastPos(comp cu.Component, width, height int, scanOrder Order) (int, int, error) {
	w, h := width, height
	if scanOrder == OrderVertical {
		w, h = h, w
	}
	isChroma := comp != cu.ComponentLuma

	groupX, err := r.readLastPosPrefix(r.Ctx.CoeffLastPosX[:], isChroma, w)
	if err != nil {
		return 0, 0, err
	}
	groupY, err := r.readLastPosPrefix(r.Ctx.CoeffLastPosY[:], isChroma, h)
	if err != nil {
		return 0, 0, err
	}
	x, err := r.readLastPosSuffix(groupX)
	if err != nil {
		return 0, 0, err
	}
	y, err := r.readLastPosSuffix(groupY)
	if err != nil {
		return 0, 0, err
	}

	if scanOrder == OrderVertical {
		return y, x, nil
	}
	return x, y, nil
}

func (r *Reader) readLastPosPrefix(ctxArray []cabac.ContextModel, isChroma bool, size int) (int, error) {
	maxGroup := lastPosGroupIdx(size - 1)
	log2 := log2Int(size)
	groupIdx := 0
	for groupIdx < maxGroup {
		ctxInc := cabac.LastPosCtxInc(isChroma, log2, groupIdx)
		bin, err := r.Dec.DecodeBin(&ctxArray[ctxInc%len(ctxArray)])
		if err != nil {
			return 0, err
		}
		if bin == 0 {
			break
		}
		groupIdx++
	}
	return groupIdx, nil
}

func (r *Reader) readLastPosSuffix(groupIdx int) (int, error) {
	pos := lastPosMinInGroup(groupIdx)
	if groupIdx > 3 {
		length := (groupIdx - 2) >> 1
		remain, err := r.Dec.DecodeBypassBins(length)
		if err != nil {
			return 0, err
		}
		pos += int(remain)
	}
	return pos, nil
}

// readCoeffRemainExpGolomb decodes a code number using the HEVC bin
// reduction rule, mirroring Writer.writeCoeffRemainExpGolomb.
func (r *Reader) readCoeffRemainExpGolomb(k int) (int, error) {
	prefix := 0
	for {
		bit, err := r.Dec.DecodeBypass()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		prefix++
		if prefix > 32 {
			return 0, xvcerr.InvalidStream("exp-golomb prefix ran away")
		}
	}

	if prefix < coeffRemainBinReduction {
		suffix, err := r.Dec.DecodeBypassBins(k)
		if err != nil {
			return 0, err
		}
		return (prefix << uint(k)) + int(suffix), nil
	}

	length := prefix - coeffRemainBinReduction + k
	suffix, err := r.Dec.DecodeBypassBins(length)
	if err != nil {
		return 0, err
	}
	codeNumber := coeffRemainBinReduction << uint(k)
	for l := k; l < length; l++ {
		codeNumber += 1 << uint(l)
	}
	return codeNumber + int(suffix), nil
}

// ReadExpGolomb decodes a kth-order Exp-Golomb code, mirroring
// Writer.WriteExpGolomb (used by MVD coding).
func (r *Reader) ReadExpGolomb(k int) (int, error) {
	length := 0
	for {
		bit, err := r.Dec.DecodeBypass()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		length++
		if length > 32 {
			return 0, xvcerr.InvalidStream("exp-golomb unary prefix ran away")
		}
	}

	value := 0
	kk := k
	for i := 0; i < length; i++ {
		value += 1 << uint(kk)
		kk++
	}
	suffix, err := r.Dec.DecodeBypassBins(kk)
	if err != nil {
		return 0, err
	}
	return value + int(suffix), nil
}
