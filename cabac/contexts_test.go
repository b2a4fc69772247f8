package cabac

import "testing"

func TestResetStatesIsDeterministic(t *testing.T) {
	var a, b Contexts
	a.ResetStates(27, PictureB)
	b.ResetStates(27, PictureB)
	if a != b {
		t.Fatalf("ResetStates is not deterministic for identical (qp, picType)")
	}
}

func TestResetStatesVariesByGroup(t *testing.T) {
	var c Contexts
	c.ResetStates(27, PictureI)
	if c.CuSplitQuad[0] == c.CuSkipFlag[0] {
		t.Fatalf("distinct groups collided on the same init state")
	}
}

func TestResetStatesVariesByPictureType(t *testing.T) {
	var i, p Contexts
	i.ResetStates(30, PictureI)
	p.ResetStates(30, PictureP)
	if i == p {
		t.Fatalf("PictureI and PictureP produced identical context state")
	}
}

func TestSplitCtxInc(t *testing.T) {
	cases := []struct {
		left, above bool
		want        int
	}{
		{false, false, 0},
		{true, false, 1},
		{false, true, 1},
		{true, true, 2},
	}
	for _, c := range cases {
		if got := SplitCtxInc(c.left, c.above); got != c.want {
			t.Errorf("SplitCtxInc(%v,%v) = %d, want %d", c.left, c.above, got, c.want)
		}
	}
}

func TestSubblockCsbfCtxPattern(t *testing.T) {
	cases := []struct {
		right, below bool
		wantPattern  PatternSigCtx
	}{
		{false, false, PatternNone},
		{true, false, PatternRightOnly},
		{false, true, PatternBelowOnly},
		{true, true, PatternBothRightBelow},
	}
	for _, c := range cases {
		_, pattern := SubblockCsbfCtx(c.right, c.below)
		if pattern != c.wantPattern {
			t.Errorf("SubblockCsbfCtx(%v,%v) pattern = %d, want %d", c.right, c.below, pattern, c.wantPattern)
		}
	}
}

func TestSigCtxIncDCSubblockIsZero(t *testing.T) {
	if got := SigCtxInc(PatternBothRightBelow, ScanDiagonal, 0, 0, true, 44); got != 0 {
		t.Errorf("DC position in DC subblock: got ctx %d, want 0", got)
	}
}

func TestSigCtxIncInRange(t *testing.T) {
	for p := PatternSigCtx(0); p < 4; p++ {
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				ctx := SigCtxInc(p, ScanDiagonal, x, y, false, 44)
				if ctx < 0 || ctx >= 44 {
					t.Fatalf("SigCtxInc out of range: %d", ctx)
				}
			}
		}
	}
}

func TestCtxSetInRange(t *testing.T) {
	for sb := 0; sb < 8; sb++ {
		for _, chroma := range []bool{false, true} {
			for _, prior := range []bool{false, true} {
				set := CtxSet(sb, chroma, prior)
				if set < 0 || set > 3 {
					t.Fatalf("CtxSet out of range: %d", set)
				}
			}
		}
	}
}

func TestGreater1CtxIncInRange(t *testing.T) {
	for set := 0; set < 4; set++ {
		for c1 := 0; c1 < 4; c1++ {
			inc := Greater1CtxInc(set, c1)
			if inc < 0 || inc >= 24 {
				t.Fatalf("Greater1CtxInc(%d,%d) = %d, out of [0,24)", set, c1, inc)
			}
		}
	}
}

func TestLastPosCtxIncMonotonicInSize(t *testing.T) {
	small := LastPosCtxInc(false, 2, 0)
	large := LastPosCtxInc(false, 5, 0)
	if large <= small {
		t.Errorf("expected larger log2Size to yield a larger base offset: small=%d large=%d", small, large)
	}
}
