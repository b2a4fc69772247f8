package intra

import "github.com/andersc/xvc/cu"

// NumIntraMpm is the size of the luma MPM shortlist (spec §4.4).
const NumIntraMpm = 3

// NumChromaModes is the size of the chroma derived-mode list (spec §4.4).
const NumChromaModes = 5

// LumaMpm is the three-candidate most-probable-mode shortlist for luma.
type LumaMpm [NumIntraMpm]cu.IntraMode

// ChromaModes is the five-candidate chroma mode list.
type ChromaModes [NumChromaModes]cu.IntraMode

// modeVerticalPlus8 substitutes for any chroma candidate that collides
// with the luma mode, matching IntraChromaMode::kVerticalPlus8.
const modeVerticalPlus8 cu.IntraMode = cu.ModeVertical + 8

// GetPredictorLuma derives the luma MPM list from the left/above
// neighbors' intra modes, matching IntraPrediction::GetPredictorLuma. A
// missing or non-intra neighbor is treated as DC, the HEVC-family
// convention for "neighbor unavailable."
func GetPredictorLuma(left, above cu.IntraMode, leftAvailable, leftIsIntra, aboveAvailable, aboveIsIntra bool) LumaMpm {
	l, a := cu.ModeDC, cu.ModeDC
	if leftAvailable && leftIsIntra {
		l = left
	}
	if aboveAvailable && aboveIsIntra {
		a = above
	}

	var mpm LumaMpm
	if l == a {
		if l > cu.ModeDC {
			mpm[0] = l
			mpm[1] = cu.IntraMode(((int(l)+29)%32)+2)
			mpm[2] = cu.IntraMode(((int(l)-1+32)%32)+2)
		} else {
			mpm[0] = cu.ModePlanar
			mpm[1] = cu.ModeDC
			mpm[2] = cu.ModeVertical
		}
		return mpm
	}

	mpm[0] = l
	mpm[1] = a
	if l > cu.ModePlanar && a > cu.ModePlanar {
		mpm[2] = cu.ModePlanar
	} else if int(l)+int(a) < 2 {
		mpm[2] = cu.ModeVertical
	} else {
		mpm[2] = cu.ModeDC
	}
	return mpm
}

// GetPredictorsChroma derives the five-entry chroma candidate list,
// substituting modeVerticalPlus8 for whichever fixed candidate collides
// with the luma mode, matching IntraPrediction::GetPredictorsChroma.
func GetPredictorsChroma(lumaMode cu.IntraMode) ChromaModes {
	preds := ChromaModes{
		cu.ModePlanar, cu.ModeVertical, cu.ModeHorizontal, cu.ModeDC, cu.ModeDMChroma,
	}
	for i := 0; i < len(preds)-1; i++ {
		if preds[i] == lumaMode {
			preds[i] = modeVerticalPlus8
			break
		}
	}
	return preds
}

// IndexOf returns the MPM index of mode within mpm, or -1 if mode is not
// a member.
func (m LumaMpm) IndexOf(mode cu.IntraMode) int {
	for i, c := range m {
		if c == mode {
			return i
		}
	}
	return -1
}

// Sorted returns the MPM list in ascending order, used to renumber
// non-MPM modes when writing the 5-bit fallback index (spec §4.4).
func (m LumaMpm) Sorted() LumaMpm {
	s := m
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
	if s[0] > s[2] {
		s[0], s[2] = s[2], s[0]
	}
	if s[1] > s[2] {
		s[1], s[2] = s[2], s[1]
	}
	return s
}

// RenumberNonMpm subtracts one from mode for every sorted MPM entry less
// than or equal to it, producing the 5-bit index written for a non-MPM
// mode (spec §4.4).
func RenumberNonMpm(mode cu.IntraMode, sorted LumaMpm) int {
	idx := int(mode)
	for i := len(sorted) - 1; i >= 0; i-- {
		if idx >= int(sorted[i]) {
			idx--
		}
	}
	return idx
}

// UnrenumberNonMpm is the inverse of RenumberNonMpm: given the decoded
// 5-bit index and the same ascending-sorted MPM list used to encode it,
// recovers the original mode by adding back one for every sorted entry at
// or below the running value, processed low to high.
func UnrenumberNonMpm(idx int, sorted LumaMpm) cu.IntraMode {
	for i := 0; i < len(sorted); i++ {
		if idx >= int(sorted[i]) {
			idx++
		}
	}
	return cu.IntraMode(idx)
}
