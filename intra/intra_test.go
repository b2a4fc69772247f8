package intra

import (
	"testing"

	"github.com/andersc/xvc/cu"
	"github.com/andersc/xvc/restrictions"
)

func TestComputeRefSamplesNoNeighbors(t *testing.T) {
	get := func(x, y int) uint8 { t.Fatalf("get should not be called with no neighbors"); return 0 }
	ref := ComputeRefSamples[uint8](cu.None, get, 8, 8, 4, 4, 8, restrictions.None)
	for _, v := range ref.Samples {
		if v != 128 {
			t.Fatalf("expected mid-grey fill, got %d", v)
		}
	}
}

func TestComputeRefSamplesAllNeighbors(t *testing.T) {
	pic := make([][]uint8, 32)
	for y := range pic {
		pic[y] = make([]uint8, 32)
		for x := range pic[y] {
			pic[y][x] = uint8(x + y)
		}
	}
	get := func(x, y int) uint8 { return pic[y][x] }
	n := cu.All(4, 4)
	ref := ComputeRefSamples[uint8](n, get, 8, 8, 4, 4, 8, restrictions.None)

	above := ref.Above(4)
	if len(above) != 9 {
		t.Fatalf("above arm length = %d, want 9", len(above))
	}
	if above[0] != pic[7][7] {
		t.Errorf("above-left corner mismatch: got %d want %d", above[0], pic[7][7])
	}
	left := ref.Left(4)
	if len(left) != 8 {
		t.Fatalf("left arm length = %d, want 8", len(left))
	}
	if left[0] != pic[8][7] {
		t.Errorf("left[0] mismatch: got %d want %d", left[0], pic[8][7])
	}
}

func TestComputeRefSamplesLeftOnlyPropagates(t *testing.T) {
	pic := make([][]uint8, 32)
	for y := range pic {
		pic[y] = make([]uint8, 32)
		for x := range pic[y] {
			pic[y][x] = 100
		}
	}
	get := func(x, y int) uint8 { return pic[y][x] }
	n := cu.NeighborState{Left: true, BelowLeftCount: 4}
	ref := ComputeRefSamples[uint8](n, get, 8, 8, 4, 4, 8, restrictions.None)

	above := ref.Above(4)
	for _, v := range above {
		if v != 100 {
			t.Errorf("expected above arm to propagate from left column, got %d", v)
		}
	}
}

func TestFilterRefSamplesEndpointsUnchanged(t *testing.T) {
	raw := NewRefSamples[uint8](4, 4)
	for i := range raw.Samples {
		raw.Samples[i] = uint8(i * 7 % 251)
	}
	filtered := FilterRefSamples(raw, 4, 4)
	if filtered.Samples[8] != raw.Samples[8] {
		t.Errorf("far above-right endpoint must be unchanged")
	}
	left := raw.Left(4)
	filteredLeft := filtered.Left(4)
	if filteredLeft[len(left)-1] != left[len(left)-1] {
		t.Errorf("far below-left endpoint must be unchanged")
	}
}

func TestPredIntraDCAllHundred(t *testing.T) {
	ref := NewRefSamples[uint8](4, 4)
	above := ref.Above(4)
	for i := range above {
		above[i] = 100
	}
	left := ref.Left(4)
	for i := range left {
		left[i] = 100
	}
	out := NewOutput[uint8](4, 4)
	predIntraDC(4, 4, true, ref, 8, restrictions.None, out)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if out[y][x] != 100 {
				t.Fatalf("DC(all 100) out[%d][%d] = %d, want 100", y, x, out[y][x])
			}
		}
	}
}

func TestPlanarCorner(t *testing.T) {
	ref := NewRefSamples[uint16](8, 8)
	above := ref.Above(8)
	for x := 0; x < 8; x++ {
		above[1+x] = uint16(100 + x)
	}
	above[9] = 200 // top-right
	left := ref.Left(8)
	for y := 0; y < 8; y++ {
		left[y] = uint16(100 + y)
	}
	left[8] = 50 // bottom-left
	out := NewOutput[uint16](8, 8)
	planarPred(8, 8, ref, out)
	// hor = (height-1)*above[0] + 1*bottomLeft = 7*100 + 50 = 750
	// ver = (width-1)*left[0] + 1*topRight   = 7*100 + 200 = 900
	// out[0][0] = (hor + ver + width) >> shift = (750+900+8) >> 4 = 103
	if out[0][0] != 103 {
		t.Errorf("planar corner = %d, want 103", out[0][0])
	}
}

func TestGetPredictorLumaEqualModes(t *testing.T) {
	mpm := GetPredictorLuma(cu.IntraMode(20), cu.IntraMode(20), true, true, true, true)
	if mpm[0] != cu.IntraMode(20) {
		t.Fatalf("mpm[0] = %d, want 20", mpm[0])
	}
	seen := map[cu.IntraMode]bool{}
	for _, m := range mpm {
		if seen[m] {
			t.Fatalf("MPM list has duplicate entry %d: %v", m, mpm)
		}
		seen[m] = true
	}
}

func TestGetPredictorLumaDistinctModes(t *testing.T) {
	mpm := GetPredictorLuma(cu.ModeHorizontal, cu.ModeVertical, true, true, true, true)
	seen := map[cu.IntraMode]bool{}
	for _, m := range mpm {
		if seen[m] {
			t.Fatalf("MPM list has duplicate entry %d: %v", m, mpm)
		}
		seen[m] = true
	}
}

func TestGetPredictorsChromaSubstitution(t *testing.T) {
	preds := GetPredictorsChroma(cu.ModeVertical)
	found := false
	for _, p := range preds {
		if p == modeVerticalPlus8 {
			found = true
		}
		if p == cu.ModeVertical {
			t.Fatalf("colliding chroma candidate was not substituted: %v", preds)
		}
	}
	if !found {
		t.Fatalf("expected modeVerticalPlus8 substitution, got %v", preds)
	}
}

func TestRenumberNonMpm(t *testing.T) {
	mpm := LumaMpm{cu.IntraMode(5), cu.IntraMode(12), cu.IntraMode(20)}
	sorted := mpm.Sorted()
	idx := RenumberNonMpm(cu.IntraMode(25), sorted)
	if idx != 22 {
		t.Errorf("RenumberNonMpm(25) = %d, want 22", idx)
	}
}
