// Package syntax implements SyntaxCoder (spec §4.4): the symmetric
// writer/reader pair that translates CU-level coding decisions — split
// flags, skip/merge/prediction-mode flags, intra modes via their MPM
// lists, inter motion syntax, and coded-block flags — into bins routed
// through cabac, deferring to residual for the coefficient subblock scan.
// Grounded on xvc_enc_lib/syntax_writer.cc's CU-header methods, mirrored
// bin-for-bin by a SyntaxReader counterpart, in the same writer/reader
// pairing the teacher repo uses for jpeg2000/t1's T1Encoder/T1Decoder and
// jpeg2000/t2's PacketEncoder/PacketDecoder.
package syntax

import (
	"github.com/andersc/xvc/cabac"
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/intra"
	"github.com/andersc/xvc/residual"
	"github.com/andersc/xvc/restrictions"
	"github.com/andersc/xvc/xvcerr"
	"github.com/pkg/errors"
)

// Writer codes CU header syntax elements, delegating coefficient coding to
// an embedded residual.Writer over the same encoder/contexts/restrictions.
type Writer struct {
	Enc   *cabac.Encoder
	Ctx   *cabac.Contexts
	R     *restrictions.Set
	Coeff *residual.Writer
}

// NewWriter builds a Writer over enc, using ctx for context lookups and r
// for feature toggles.
func NewWriter(enc *cabac.Encoder, ctx *cabac.Contexts, r *restrictions.Set) *Writer {
	return &Writer{Enc: enc, Ctx: ctx, R: r, Coeff: residual.NewWriter(enc, ctx, r)}
}

// Reader is the mirror-image decoder for Writer.
type Reader struct {
	Dec   *cabac.Decoder
	Ctx   *cabac.Contexts
	R     *restrictions.Set
	Coeff *residual.Reader
}

// NewReader builds a Reader over dec, using ctx for context lookups and r
// for feature toggles.
func NewReader(dec *cabac.Decoder, ctx *cabac.Contexts, r *restrictions.Set) *Reader {
	return &Reader{Dec: dec, Ctx: ctx, R: r, Coeff: residual.NewReader(dec, ctx, r)}
}

func boolBin(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- CU header: split flags ---

// WriteSplitQuad codes whether the current quad-tree node is split further,
// using the neighbor-split context derived by cabac.SplitCtxInc.
func (w *Writer) WriteSplitQuad(split, leftSplit, aboveSplit bool) {
	ctx := cabac.SplitCtxInc(leftSplit, aboveSplit)
	w.Enc.EncodeBin(boolBin(split), &w.Ctx.CuSplitQuad[ctx])
}

// ReadSplitQuad decodes the quad-tree split flag.
func (r *Reader) ReadSplitQuad(leftSplit, aboveSplit bool) (bool, error) {
	ctx := cabac.SplitCtxInc(leftSplit, aboveSplit)
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuSplitQuad[ctx])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode split_quad_flag")
	}
	return bin != 0, nil
}

// WriteSplitBinary codes the binary-tree split flag the same way as
// WriteSplitQuad, over the CuSplitBinary context group.
func (w *Writer) WriteSplitBinary(split, leftSplit, aboveSplit bool) {
	ctx := cabac.SplitCtxInc(leftSplit, aboveSplit)
	w.Enc.EncodeBin(boolBin(split), &w.Ctx.CuSplitBinary[ctx])
}

// ReadSplitBinary decodes the binary-tree split flag.
func (r *Reader) ReadSplitBinary(leftSplit, aboveSplit bool) (bool, error) {
	ctx := cabac.SplitCtxInc(leftSplit, aboveSplit)
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuSplitBinary[ctx])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode split_binary_flag")
	}
	return bin != 0, nil
}

// --- CU header: skip / merge / prediction mode ---

// WriteSkipFlag codes the skip flag using the neighbor-skip context.
func (w *Writer) WriteSkipFlag(skip, leftSkip, aboveSkip bool) {
	ctx := cabac.SkipCtxInc(leftSkip, aboveSkip)
	w.Enc.EncodeBin(boolBin(skip), &w.Ctx.CuSkipFlag[ctx])
}

// ReadSkipFlag decodes the skip flag.
func (r *Reader) ReadSkipFlag(leftSkip, aboveSkip bool) (bool, error) {
	ctx := cabac.SkipCtxInc(leftSkip, aboveSkip)
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuSkipFlag[ctx])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode skip_flag")
	}
	return bin != 0, nil
}

// WriteMergeFlag codes whether a non-skip inter CU is merge-coded.
func (w *Writer) WriteMergeFlag(merge bool) {
	w.Enc.EncodeBin(boolBin(merge), &w.Ctx.CuMergeFlag[0])
}

// ReadMergeFlag decodes the merge flag.
func (r *Reader) ReadMergeFlag() (bool, error) {
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuMergeFlag[0])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode merge_flag")
	}
	return bin != 0, nil
}

// WriteMergeIdx codes the merge candidate index as a truncated-unary code
// with cMax = numCand-1: the first bin is context-coded, the rest bypass,
// matching the binarization style the teacher's t2 package uses for its
// tag-tree truncated codes (jpeg2000/t2/packet_header_tagtree.go).
func (w *Writer) WriteMergeIdx(idx, numCand int) {
	w.writeTruncatedUnary(idx, numCand-1, &w.Ctx.CuMergeIdx[0])
}

// ReadMergeIdx decodes the merge candidate index.
func (r *Reader) ReadMergeIdx(numCand int) (int, error) {
	idx, err := r.readTruncatedUnary(numCand-1, &r.Ctx.CuMergeIdx[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode merge_idx")
	}
	return idx, nil
}

// WritePredMode codes the inter/intra decision for a non-skip CU.
func (w *Writer) WritePredMode(mode cu.PredMode) error {
	if mode == cu.PredModeSkip {
		return xvcerr.Internal("pred_mode must not be coded for a skip CU")
	}
	bin := 0
	if mode == cu.PredModeIntra {
		bin = 1
	}
	w.Enc.EncodeBin(bin, &w.Ctx.CuPredMode[0])
	return nil
}

// ReadPredMode decodes the inter/intra decision.
func (r *Reader) ReadPredMode() (cu.PredMode, error) {
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuPredMode[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode pred_mode")
	}
	if bin != 0 {
		return cu.PredModeIntra, nil
	}
	return cu.PredModeInter, nil
}

// WritePartitionType asserts the only partition type this implementation
// codes, matching spec §4.4's "asserts invariants (e.g. partition type =
// 2N×2N for the currently implemented configuration)". No bins are
// written: the alphabet in CabacContexts.CuPartSize is retained for a
// wider partition-type implementation but unused by this one.
func (w *Writer) WritePartitionType(pt cu.PartitionType) error {
	if pt != cu.Part2Nx2N {
		return xvcerr.Internal("only Part2Nx2N is implemented")
	}
	return nil
}

// ReadPartitionType returns the only legal partition type; no bins are
// consumed, mirroring WritePartitionType.
func (r *Reader) ReadPartitionType() cu.PartitionType { return cu.Part2Nx2N }

// --- CU header: intra modes ---

// WriteIntraModeLuma codes mode against its MPM list: flag=1 then a
// truncated-unary (cMax=2) bypass index when mode is in mpm; flag=0 then
// the renumbered 5-bit bypass index otherwise (spec §4.4).
func (w *Writer) WriteIntraModeLuma(mode cu.IntraMode, mpm intra.LumaMpm) {
	if idx := mpm.IndexOf(mode); idx >= 0 {
		w.Enc.EncodeBin(1, &w.Ctx.IntraPredLuma[0])
		if idx == 0 {
			w.Enc.EncodeBypass(0)
			return
		}
		w.Enc.EncodeBypass(1)
		w.Enc.EncodeBypass(idx - 1)
		return
	}
	w.Enc.EncodeBin(0, &w.Ctx.IntraPredLuma[0])
	sorted := mpm.Sorted()
	renumbered := intra.RenumberNonMpm(mode, sorted)
	w.Enc.EncodeBypassBins(uint32(renumbered), 5)
}

// ReadIntraModeLuma decodes a luma intra mode against mpm.
func (r *Reader) ReadIntraModeLuma(mpm intra.LumaMpm) (cu.IntraMode, error) {
	flag, err := r.Dec.DecodeBin(&r.Ctx.IntraPredLuma[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode prev_intra_luma_pred_flag")
	}
	if flag != 0 {
		bit0, err := r.Dec.DecodeBypass()
		if err != nil {
			return 0, errors.Wrap(err, "syntax: decode mpm_idx bit 0")
		}
		idx := 0
		if bit0 != 0 {
			bit1, err := r.Dec.DecodeBypass()
			if err != nil {
				return 0, errors.Wrap(err, "syntax: decode mpm_idx bit 1")
			}
			idx = 1 + bit1
		}
		return mpm[idx], nil
	}
	renumbered, err := r.Dec.DecodeBypassBins(5)
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode rem_intra_luma_pred_mode")
	}
	sorted := mpm.Sorted()
	return intra.UnrenumberNonMpm(int(renumbered), sorted), nil
}

// WriteIntraModeChroma codes a chroma intra mode: a context-coded flag
// (IntraPredChroma[0]) selects the derived mode (index 4, the common
// case), else two bypass bits select among the remaining four fixed
// candidates (spec §4.4).
func (w *Writer) WriteIntraModeChroma(mode cu.IntraMode, modes intra.ChromaModes) error {
	idx := -1
	for i, c := range modes {
		if c == mode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return xvcerr.Internal("chroma mode is not a member of its candidate list")
	}
	if idx == len(modes)-1 {
		w.Enc.EncodeBin(0, &w.Ctx.IntraPredChroma[0])
		return nil
	}
	w.Enc.EncodeBin(1, &w.Ctx.IntraPredChroma[0])
	w.Enc.EncodeBypassBins(uint32(idx), 2)
	return nil
}

// ReadIntraModeChroma decodes a chroma intra mode against modes.
func (r *Reader) ReadIntraModeChroma(modes intra.ChromaModes) (cu.IntraMode, error) {
	bit, err := r.Dec.DecodeBin(&r.Ctx.IntraPredChroma[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode intra_chroma_pred_mode flag")
	}
	if bit == 0 {
		return modes[len(modes)-1], nil
	}
	idx, err := r.Dec.DecodeBypassBins(2)
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode intra_chroma_pred_mode index")
	}
	return modes[idx], nil
}

// --- CU header: inter motion syntax ---

// WriteInterDir codes the prediction direction (0=L0, 1=L1, 2=Bi): a
// depth-indexed context bin selects Bi, then — for a uni-directional
// CU — a second, fixed-index context bin (InterDir[len(InterDir)-1])
// selects L0 vs. L1.
func (w *Writer) WriteInterDir(dir, ctxDepth int) {
	isBi := dir == 2
	biCtx := ctxDepth % (len(w.Ctx.InterDir) - 1)
	w.Enc.EncodeBin(boolBin(isBi), &w.Ctx.InterDir[biCtx])
	if !isBi {
		w.Enc.EncodeBin(dir, &w.Ctx.InterDir[len(w.Ctx.InterDir)-1])
	}
}

// ReadInterDir decodes the prediction direction.
func (r *Reader) ReadInterDir(ctxDepth int) (int, error) {
	biCtx := ctxDepth % (len(r.Ctx.InterDir) - 1)
	isBi, err := r.Dec.DecodeBin(&r.Ctx.InterDir[biCtx])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode inter_pred_idc")
	}
	if isBi != 0 {
		return 2, nil
	}
	bit, err := r.Dec.DecodeBin(&r.Ctx.InterDir[len(r.Ctx.InterDir)-1])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode ref_pic_list_idx")
	}
	return bit, nil
}

// WriteInterRefIdx codes a reference index as a truncated-unary code.
func (w *Writer) WriteInterRefIdx(idx, numRefIdx int) {
	w.writeTruncatedUnary(idx, numRefIdx-1, &w.Ctx.InterRefIdx[0])
}

// ReadInterRefIdx decodes a reference index.
func (r *Reader) ReadInterRefIdx(numRefIdx int) (int, error) {
	idx, err := r.readTruncatedUnary(numRefIdx-1, &r.Ctx.InterRefIdx[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode ref_idx")
	}
	return idx, nil
}

// WriteInterMvpIdx codes a motion-vector-predictor index as a
// truncated-unary code.
func (w *Writer) WriteInterMvpIdx(idx, numCand int) {
	w.writeTruncatedUnary(idx, numCand-1, &w.Ctx.InterMvpIdx[0])
}

// ReadInterMvpIdx decodes a motion-vector-predictor index.
func (r *Reader) ReadInterMvpIdx(numCand int) (int, error) {
	idx, err := r.readTruncatedUnary(numCand-1, &r.Ctx.InterMvpIdx[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode mvp_idx")
	}
	return idx, nil
}

// WriteInterMvd codes one motion-vector-difference component. In the
// normal variant it codes a nonzero flag (InterMvd[0]) and, when
// nonzero, a greater-than-1 flag (InterMvd[1]) followed by a 1st-order
// Exp-Golomb remainder of |mvd|-2 when set, then a bypass sign (spec
// §4.4 "MVD coding"). The restricted variant (Open Question in
// SPEC_FULL.md §D) drops both context flags entirely and instead codes
// |mvd| itself as a direct 1st-order Exp-Golomb value, with the sign
// coded only when that value is nonzero.
func (w *Writer) WriteInterMvd(v int, restricted bool) {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	sign := 0
	if v < 0 {
		sign = 1
	}

	if restricted {
		w.Coeff.WriteExpGolomb(abs, 1)
		if abs != 0 {
			w.Enc.EncodeBypass(sign)
		}
		return
	}

	nonzero := abs != 0
	w.Enc.EncodeBin(boolBin(nonzero), &w.Ctx.InterMvd[0])
	if !nonzero {
		return
	}
	gt1 := abs > 1
	w.Enc.EncodeBin(boolBin(gt1), &w.Ctx.InterMvd[1])
	if gt1 {
		w.Coeff.WriteExpGolomb(abs-2, 1)
	}
	w.Enc.EncodeBypass(sign)
}

// ReadInterMvd decodes one motion-vector-difference component.
func (r *Reader) ReadInterMvd(restricted bool) (int, error) {
	if restricted {
		abs, err := r.Coeff.ReadExpGolomb(1)
		if err != nil {
			return 0, errors.Wrap(err, "syntax: decode abs_mvd")
		}
		if abs == 0 {
			return 0, nil
		}
		sign, err := r.Dec.DecodeBypass()
		if err != nil {
			return 0, errors.Wrap(err, "syntax: decode mvd_sign_flag")
		}
		if sign != 0 {
			return -abs, nil
		}
		return abs, nil
	}

	nonzero, err := r.Dec.DecodeBin(&r.Ctx.InterMvd[0])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode abs_mvd_greater0_flag")
	}
	if nonzero == 0 {
		return 0, nil
	}
	gt1, err := r.Dec.DecodeBin(&r.Ctx.InterMvd[1])
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode abs_mvd_greater1_flag")
	}
	abs := 1
	if gt1 != 0 {
		remain, err := r.Coeff.ReadExpGolomb(1)
		if err != nil {
			return 0, errors.Wrap(err, "syntax: decode abs_mvd_minus2")
		}
		abs = remain + 2
	}
	sign, err := r.Dec.DecodeBypass()
	if err != nil {
		return 0, errors.Wrap(err, "syntax: decode mvd_sign_flag")
	}
	if sign != 0 {
		return -abs, nil
	}
	return abs, nil
}

// --- CU header: coded block flags ---

// WriteRootCbf codes the inter-CU root coded-block flag that gates
// whether any residual is present at all.
func (w *Writer) WriteRootCbf(cbf bool) {
	w.Enc.EncodeBin(boolBin(cbf), &w.Ctx.CuRootCbf[0])
}

// ReadRootCbf decodes the root coded-block flag.
func (r *Reader) ReadRootCbf() (bool, error) {
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuRootCbf[0])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode rqt_root_cbf")
	}
	return bin != 0, nil
}

// WriteCbf codes a per-component coded-block flag. depth selects the
// context within CuCbfLuma/CuCbfChroma, mirroring the transform-depth
// indexed contexts typical of this syntax element.
func (w *Writer) WriteCbf(comp cu.Component, cbf bool, depth int) {
	if comp == cu.ComponentLuma {
		w.Enc.EncodeBin(boolBin(cbf), &w.Ctx.CuCbfLuma[depth%len(w.Ctx.CuCbfLuma)])
		return
	}
	w.Enc.EncodeBin(boolBin(cbf), &w.Ctx.CuCbfChroma[depth%len(w.Ctx.CuCbfChroma)])
}

// ReadCbf decodes a per-component coded-block flag.
func (r *Reader) ReadCbf(comp cu.Component, depth int) (bool, error) {
	if comp == cu.ComponentLuma {
		bin, err := r.Dec.DecodeBin(&r.Ctx.CuCbfLuma[depth%len(r.Ctx.CuCbfLuma)])
		if err != nil {
			return false, errors.Wrap(err, "syntax: decode cbf_luma")
		}
		return bin != 0, nil
	}
	bin, err := r.Dec.DecodeBin(&r.Ctx.CuCbfChroma[depth%len(r.Ctx.CuCbfChroma)])
	if err != nil {
		return false, errors.Wrap(err, "syntax: decode cbf_chroma")
	}
	return bin != 0, nil
}

// --- shared truncated-unary helper ---

// writeTruncatedUnary codes idx as a truncated-unary code with maximum
// value cMax: the first bin uses ctx, the remaining bins (if any) are
// bypass-coded, a common HEVC-family binarization for small bounded
// indices (merge/reference/MVP indices).
func (w *Writer) writeTruncatedUnary(idx, cMax int, ctx *cabac.ContextModel) {
	if cMax <= 0 {
		return
	}
	if idx > 0 {
		w.Enc.EncodeBin(1, ctx)
	} else {
		w.Enc.EncodeBin(0, ctx)
		return
	}
	for i := 1; i < idx; i++ {
		w.Enc.EncodeBypass(1)
	}
	if idx < cMax {
		w.Enc.EncodeBypass(0)
	}
}

func (r *Reader) readTruncatedUnary(cMax int, ctx *cabac.ContextModel) (int, error) {
	if cMax <= 0 {
		return 0, nil
	}
	bin, err := r.Dec.DecodeBin(ctx)
	if err != nil {
		return 0, err
	}
	if bin == 0 {
		return 0, nil
	}
	idx := 1
	for idx < cMax {
		bit, err := r.Dec.DecodeBypass()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		idx++
	}
	return idx, nil
}
