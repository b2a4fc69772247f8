package cabac

// Contexts is the named collection of ContextModel instances described in
// spec §4.3: one group per syntax-element role, each an array indexed by a
// small derived state. The grouping and accessor-helper shape mirrors the
// teacher's t1 package, which likewise keeps a small set of named context
// classes (CTXZCSTART..CTXZCEND, CTXSCSTART..CTXSCEND, CTXMRSTART..CTXMREND,
// CTXRL, CTXUNI — jpeg2000/t1/context.go) and derives the index into each
// from neighbor state via small pure functions (getZeroCodingContext,
// getSignCodingContext, getMagRefinementContext) rather than one flat
// global array; Contexts generalizes that pattern to the larger role set
// spec §4.3 lists by name.
type Contexts struct {
	CuSplitQuad   [3]ContextModel
	CuSplitBinary [3]ContextModel
	CuSkipFlag    [3]ContextModel
	CuMergeFlag   [1]ContextModel
	CuMergeIdx    [1]ContextModel
	CuPredMode    [1]ContextModel
	CuPartSize    [4]ContextModel
	CuRootCbf     [1]ContextModel
	CuCbfLuma     [2]ContextModel
	CuCbfChroma   [5]ContextModel

	IntraPredLuma   [1]ContextModel
	IntraPredChroma [1]ContextModel

	InterDir       [5]ContextModel
	InterMvd       [2]ContextModel
	InterMvpIdx    [1]ContextModel
	InterRefIdx    [2]ContextModel
	InterMergeFlag [1]ContextModel
	InterMergeIdx  [1]ContextModel

	CoeffSigMap   [44]ContextModel
	CoeffGreater1 [24]ContextModel
	CoeffGreater2 [6]ContextModel
	CoeffLastPosX [20]ContextModel
	CoeffLastPosY [20]ContextModel
	SubblockCsbf  [4]ContextModel
}

// PictureType selects which init-value table ResetStates draws from, the
// same way the teacher's jpeg2000/codestream QCD/COD segments key
// quantization behavior off picture/component type.
type PictureType int

const (
	PictureI PictureType = iota
	PictureP
	PictureB
)

// groupSeed assigns each named group a distinct seed so that otherwise
// identically-shaped groups (e.g. two 1-entry flag groups) don't collide on
// the same init_value, mirroring how a real init-value table gives every
// named context its own column.
type groupSeed uint8

const (
	seedSplitQuad groupSeed = iota
	seedSplitBinary
	seedSkipFlag
	seedMergeFlag
	seedMergeIdx
	seedPredMode
	seedPartSize
	seedRootCbf
	seedCbfLuma
	seedCbfChroma
	seedIntraLuma
	seedIntraChroma
	seedInterDir
	seedInterMvd
	seedInterMvpIdx
	seedInterRefIdx
	seedInterMergeFlag
	seedInterMergeIdx
	seedSigMap
	seedGreater1
	seedGreater2
	seedLastX
	seedLastY
	seedSubblockCsbf
)

// ResetStates re-initializes every context in every group for (qp,
// picType). The init values come from deriveInitValue, not from a
// transcribed per-context init-value table.
func (c *Contexts) ResetStates(qp int, picType PictureType) {
	resetGroup(c.CuSplitQuad[:], qp, picType, seedSplitQuad)
	resetGroup(c.CuSplitBinary[:], qp, picType, seedSplitBinary)
	resetGroup(c.CuSkipFlag[:], qp, picType, seedSkipFlag)
	resetGroup(c.CuMergeFlag[:], qp, picType, seedMergeFlag)
	resetGroup(c.CuMergeIdx[:], qp, picType, seedMergeIdx)
	resetGroup(c.CuPredMode[:], qp, picType, seedPredMode)
	resetGroup(c.CuPartSize[:], qp, picType, seedPartSize)
	resetGroup(c.CuRootCbf[:], qp, picType, seedRootCbf)
	resetGroup(c.CuCbfLuma[:], qp, picType, seedCbfLuma)
	resetGroup(c.CuCbfChroma[:], qp, picType, seedCbfChroma)
	resetGroup(c.IntraPredLuma[:], qp, picType, seedIntraLuma)
	resetGroup(c.IntraPredChroma[:], qp, picType, seedIntraChroma)
	resetGroup(c.InterDir[:], qp, picType, seedInterDir)
	resetGroup(c.InterMvd[:], qp, picType, seedInterMvd)
	resetGroup(c.InterMvpIdx[:], qp, picType, seedInterMvpIdx)
	resetGroup(c.InterRefIdx[:], qp, picType, seedInterRefIdx)
	resetGroup(c.InterMergeFlag[:], qp, picType, seedInterMergeFlag)
	resetGroup(c.InterMergeIdx[:], qp, picType, seedInterMergeIdx)
	resetGroup(c.CoeffSigMap[:], qp, picType, seedSigMap)
	resetGroup(c.CoeffGreater1[:], qp, picType, seedGreater1)
	resetGroup(c.CoeffGreater2[:], qp, picType, seedGreater2)
	resetGroup(c.CoeffLastPosX[:], qp, picType, seedLastX)
	resetGroup(c.CoeffLastPosY[:], qp, picType, seedLastY)
	resetGroup(c.SubblockCsbf[:], qp, picType, seedSubblockCsbf)
}

// resetGroup seeds every context in a group from a deterministic per-slot
// init_value, derived rather than transcribed from a fixed table (unlike
// the transition tables in tables.go, which are transcribed).
func resetGroup(group []ContextModel, qp int, picType PictureType, seed groupSeed) {
	for i := range group {
		initValue := deriveInitValue(seed, i, picType)
		group[i].Init(qp, initValue)
	}
}

// deriveInitValue produces an 8-bit init_value for context slot i of group
// seed under picType. The formula spreads values across the legal
// init_value range so that the result is stable and most (group, slot,
// picType) triples differ; distinct triples can still share a value (for
// example CoeffSigMap slot 37 and CoeffGreater1 slot 0).
func deriveInitValue(seed groupSeed, slot int, picType PictureType) uint8 {
	base := int(seed)*7 + slot*11 + int(picType)*19
	v := (base % 200) + 28 // keep clear of the extreme ends of the range
	return uint8(v)
}

// --- context-index derivation helpers (spec §4.3) ---

// SplitCtxInc returns the context increment for SplitQuad/SplitBinary based
// on whether the left/above neighbors were themselves split.
func SplitCtxInc(leftSplit, aboveSplit bool) int {
	inc := 0
	if leftSplit {
		inc++
	}
	if aboveSplit {
		inc++
	}
	return inc
}

// SkipCtxInc returns the context increment for SkipFlag based on whether
// the left/above neighbors are skip-coded.
func SkipCtxInc(leftSkip, aboveSkip bool) int {
	inc := 0
	if leftSkip {
		inc++
	}
	if aboveSkip {
		inc++
	}
	return inc
}

// PatternSigCtx is the 2-bit pattern derived from a subblock's right and
// below neighbor CSBFs, consumed both as the subblock-CSBF context and as
// an input to the coefficient significance context (spec §4.3).
type PatternSigCtx int

const (
	PatternNone       PatternSigCtx = 0
	PatternRightOnly  PatternSigCtx = 1
	PatternBelowOnly  PatternSigCtx = 2
	PatternBothRightBelow PatternSigCtx = 3
)

// SubblockCsbfCtx derives the CSBF context index and the pattern_sig_ctx
// output from the right and below subblocks' CSBF bits.
func SubblockCsbfCtx(rightCsbf, belowCsbf bool) (ctxIdx int, pattern PatternSigCtx) {
	r, b := 0, 0
	if rightCsbf {
		r = 1
	}
	if belowCsbf {
		b = 1
	}
	pattern = PatternSigCtx(r | (b << 1))
	// ctx index: 0 if neither neighbor set, 1 otherwise — matches the
	// binary "any coded neighbor" rule spec §4.3 describes.
	if r|b != 0 {
		ctxIdx = 1
	}
	return ctxIdx, pattern
}

// ScanOrder identifies the coefficient scan used within a transform block.
type ScanOrder int

const (
	ScanDiagonal ScanOrder = iota
	ScanHorizontal
	ScanVertical
)

// SigCtxInc derives the significance-map context increment from the
// pattern_sig_ctx of the containing subblock, the scan order, the position
// within the subblock, and whether this is the DC subblock (spec §4.3).
func SigCtxInc(pattern PatternSigCtx, scan ScanOrder, xInSub, yInSub int, isDCSubblock bool, numSigCtx int) int {
	if isDCSubblock && xInSub == 0 && yInSub == 0 {
		return 0
	}
	var base int
	switch scan {
	case ScanHorizontal:
		base = yInSub*2 + xInSub
	case ScanVertical:
		base = xInSub*2 + yInSub
	default:
		base = xInSub + yInSub
	}
	idx := int(pattern)*3 + (base % 3) + 3
	if numSigCtx <= 0 {
		return 0
	}
	return idx % numSigCtx
}

// CtxSet derives the greater-than-1/greater-than-2 context set (0..3) from
// the subblock position, whether this is a luma or chroma component, and
// whether a greater-than-1 flag was already seen in an earlier subblock of
// this pass (spec §4.3 and §4.4.1).
func CtxSet(subblockIdx int, isChroma bool, priorGreater1Seen bool) int {
	set := 0
	if subblockIdx > 0 && !isChroma {
		set = 2
	}
	if priorGreater1Seen {
		set++
	}
	if isChroma {
		return set % 2
	}
	return set % 4
}

// Greater1CtxInc maps a context set and the decaying c1 counter to a
// context increment within CoeffGreater1 (spec §4.3).
func Greater1CtxInc(ctxSet, c1 int) int {
	return ctxSet*4 + c1
}

// Greater2CtxInc maps a context set to its single CoeffGreater2 context.
func Greater2CtxInc(ctxSet int) int {
	return ctxSet
}

// LastPosCtxInc derives the last-position context increment from the
// component (luma/chroma), the block size log2, and the group index within
// the truncated-unary prefix (spec §4.3).
func LastPosCtxInc(isChroma bool, log2Size int, groupIdx int) int {
	var offset int
	if isChroma {
		offset = 15
	} else {
		offset = 3 * (log2Size - 2)
		if offset > 15 {
			offset = 15
		}
	}
	return offset + groupIdx
}
