package syntax

import (
	"testing"

	"github.com/andersc/xvc/cabac"
	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/intra"
	"github.com/andersc/xvc/restrictions"
)

func newPair() (*Writer, func() *Reader) {
	enc := cabac.NewEncoder()
	var wctx cabac.Contexts
	wctx.ResetStates(27, cabac.PictureI)
	w := NewWriter(enc, &wctx, restrictions.None)

	finish := func() *Reader {
		data := enc.FinishStream()
		dec, err := cabac.NewDecoder(data)
		if err != nil {
			panic(err)
		}
		var rctx cabac.Contexts
		rctx.ResetStates(27, cabac.PictureI)
		return NewReader(dec, &rctx, restrictions.None)
	}
	return w, finish
}

func TestSplitFlagsRoundTrip(t *testing.T) {
	w, finish := newPair()
	w.WriteSplitQuad(true, false, true)
	w.WriteSplitQuad(false, true, true)
	w.WriteSplitBinary(true, true, true)
	r := finish()

	got, err := r.ReadSplitQuad(false, true)
	if err != nil || got != true {
		t.Fatalf("ReadSplitQuad #1 = %v, %v", got, err)
	}
	got, err = r.ReadSplitQuad(true, true)
	if err != nil || got != false {
		t.Fatalf("ReadSplitQuad #2 = %v, %v", got, err)
	}
	got, err = r.ReadSplitBinary(true, true)
	if err != nil || got != true {
		t.Fatalf("ReadSplitBinary = %v, %v", got, err)
	}
}

func TestSkipAndMergeRoundTrip(t *testing.T) {
	w, finish := newPair()
	w.WriteSkipFlag(true, false, false)
	w.WriteMergeFlag(true)
	w.WriteMergeIdx(3, 5)
	r := finish()

	if got, err := r.ReadSkipFlag(false, false); err != nil || got != true {
		t.Fatalf("ReadSkipFlag = %v, %v", got, err)
	}
	if got, err := r.ReadMergeFlag(); err != nil || got != true {
		t.Fatalf("ReadMergeFlag = %v, %v", got, err)
	}
	if got, err := r.ReadMergeIdx(5); err != nil || got != 3 {
		t.Fatalf("ReadMergeIdx = %d, %v, want 3", got, err)
	}
}

func TestMergeIdxAllValuesRoundTrip(t *testing.T) {
	for numCand := 1; numCand <= 5; numCand++ {
		for idx := 0; idx < numCand; idx++ {
			w, finish := newPair()
			w.WriteMergeIdx(idx, numCand)
			r := finish()
			got, err := r.ReadMergeIdx(numCand)
			if err != nil || got != idx {
				t.Fatalf("numCand=%d idx=%d: got %d, %v", numCand, idx, got, err)
			}
		}
	}
}

func TestPredModeRoundTrip(t *testing.T) {
	w, finish := newPair()
	if err := w.WritePredMode(cu.PredModeIntra); err != nil {
		t.Fatalf("WritePredMode: %v", err)
	}
	if err := w.WritePredMode(cu.PredModeInter); err != nil {
		t.Fatalf("WritePredMode: %v", err)
	}
	r := finish()

	got, err := r.ReadPredMode()
	if err != nil || got != cu.PredModeIntra {
		t.Fatalf("ReadPredMode #1 = %v, %v", got, err)
	}
	got, err = r.ReadPredMode()
	if err != nil || got != cu.PredModeInter {
		t.Fatalf("ReadPredMode #2 = %v, %v", got, err)
	}
}

func TestWritePredModeRejectsSkip(t *testing.T) {
	w, _ := newPair()
	if err := w.WritePredMode(cu.PredModeSkip); err == nil {
		t.Fatalf("expected error coding pred_mode for a skip CU")
	}
}

func TestWritePartitionTypeRejectsNonSquare(t *testing.T) {
	w, _ := newPair()
	if err := w.WritePartitionType(cu.Part2NxN); err == nil {
		t.Fatalf("expected error for unsupported partition type")
	}
	if err := w.WritePartitionType(cu.Part2Nx2N); err != nil {
		t.Fatalf("WritePartitionType(Part2Nx2N): %v", err)
	}
}

func TestIntraModeLumaRoundTripMpmAndFallback(t *testing.T) {
	mpm := intra.LumaMpm{cu.IntraMode(5), cu.IntraMode(12), cu.IntraMode(20)}
	modes := []cu.IntraMode{5, 12, 20, 0, 3, 34}

	for _, mode := range modes {
		w, finish := newPair()
		w.WriteIntraModeLuma(mode, mpm)
		r := finish()
		got, err := r.ReadIntraModeLuma(mpm)
		if err != nil {
			t.Fatalf("mode=%d: ReadIntraModeLuma: %v", mode, err)
		}
		if got != mode {
			t.Fatalf("mode=%d: round-trip got %d", mode, got)
		}
	}
}

func TestIntraModeChromaRoundTrip(t *testing.T) {
	modes := intra.GetPredictorsChroma(cu.IntraMode(5))
	for _, mode := range modes {
		w, finish := newPair()
		if err := w.WriteIntraModeChroma(mode, modes); err != nil {
			t.Fatalf("mode=%d: WriteIntraModeChroma: %v", mode, err)
		}
		r := finish()
		got, err := r.ReadIntraModeChroma(modes)
		if err != nil || got != mode {
			t.Fatalf("mode=%d: round-trip got %d, %v", mode, got, err)
		}
	}
}

func TestIntraModeChromaRejectsNonMember(t *testing.T) {
	w, _ := newPair()
	modes := intra.GetPredictorsChroma(cu.IntraMode(5))
	if err := w.WriteIntraModeChroma(cu.IntraMode(99), modes); err == nil {
		t.Fatalf("expected error coding a chroma mode outside the candidate list")
	}
}

func TestInterDirRoundTrip(t *testing.T) {
	for _, dir := range []int{0, 1, 2} {
		w, finish := newPair()
		w.WriteInterDir(dir, 1)
		r := finish()
		got, err := r.ReadInterDir(1)
		if err != nil || got != dir {
			t.Fatalf("dir=%d: got %d, %v", dir, got, err)
		}
	}
}

func TestInterRefIdxAndMvpIdxRoundTrip(t *testing.T) {
	w, finish := newPair()
	w.WriteInterRefIdx(2, 4)
	w.WriteInterMvpIdx(1, 2)
	r := finish()

	if got, err := r.ReadInterRefIdx(4); err != nil || got != 2 {
		t.Fatalf("ReadInterRefIdx = %d, %v", got, err)
	}
	if got, err := r.ReadInterMvpIdx(2); err != nil || got != 1 {
		t.Fatalf("ReadInterMvpIdx = %d, %v", got, err)
	}
}

func TestInterMvdRoundTrip(t *testing.T) {
	values := []int{0, 1, -1, 2, -2, 17, -33}
	for _, restricted := range []bool{false, true} {
		for _, v := range values {
			w, finish := newPair()
			w.WriteInterMvd(v, restricted)
			r := finish()
			got, err := r.ReadInterMvd(restricted)
			if err != nil {
				t.Fatalf("v=%d restricted=%v: %v", v, restricted, err)
			}
			if got != v {
				t.Fatalf("v=%d restricted=%v: got %d", v, restricted, got)
			}
		}
	}
}

func TestRootCbfAndCbfRoundTrip(t *testing.T) {
	w, finish := newPair()
	w.WriteRootCbf(true)
	w.WriteCbf(cu.ComponentLuma, true, 0)
	w.WriteCbf(cu.ComponentCb, false, 1)
	r := finish()

	if got, err := r.ReadRootCbf(); err != nil || got != true {
		t.Fatalf("ReadRootCbf = %v, %v", got, err)
	}
	if got, err := r.ReadCbf(cu.ComponentLuma, 0); err != nil || got != true {
		t.Fatalf("ReadCbf luma = %v, %v", got, err)
	}
	if got, err := r.ReadCbf(cu.ComponentCb, 1); err != nil || got != false {
		t.Fatalf("ReadCbf chroma = %v, %v", got, err)
	}
}

func TestFullCuHeaderRoundTrip(t *testing.T) {
	w, finish := newPair()
	mpm := intra.LumaMpm{cu.ModePlanar, cu.ModeDC, cu.ModeVertical}

	w.WriteSplitQuad(false, false, false)
	if err := w.WritePredMode(cu.PredModeIntra); err != nil {
		t.Fatalf("WritePredMode: %v", err)
	}
	if err := w.WritePartitionType(cu.Part2Nx2N); err != nil {
		t.Fatalf("WritePartitionType: %v", err)
	}
	w.WriteIntraModeLuma(cu.IntraMode(18), mpm)
	chromaModes := intra.GetPredictorsChroma(cu.IntraMode(18))
	if err := w.WriteIntraModeChroma(chromaModes[4], chromaModes); err != nil {
		t.Fatalf("WriteIntraModeChroma: %v", err)
	}
	w.WriteCbf(cu.ComponentLuma, true, 0)
	r := finish()

	if split, err := r.ReadSplitQuad(false, false); err != nil || split {
		t.Fatalf("split = %v, %v", split, err)
	}
	if pm, err := r.ReadPredMode(); err != nil || pm != cu.PredModeIntra {
		t.Fatalf("pred mode = %v, %v", pm, err)
	}
	if r.ReadPartitionType() != cu.Part2Nx2N {
		t.Fatalf("partition type mismatch")
	}
	mode, err := r.ReadIntraModeLuma(mpm)
	if err != nil || mode != cu.IntraMode(18) {
		t.Fatalf("luma mode = %v, %v", mode, err)
	}
	cmode, err := r.ReadIntraModeChroma(chromaModes)
	if err != nil || cmode != chromaModes[4] {
		t.Fatalf("chroma mode = %v, %v", cmode, err)
	}
	if cbf, err := r.ReadCbf(cu.ComponentLuma, 0); err != nil || !cbf {
		t.Fatalf("cbf = %v, %v", cbf, err)
	}
}
