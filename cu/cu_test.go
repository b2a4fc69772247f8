package cu

import "testing"

func TestChromaDims(t *testing.T) {
	cases := []struct {
		fmt  ChromaFormat
		w, h int
		cw, ch int
	}{
		{ChromaMonochrome, 16, 16, 0, 0},
		{Chroma420, 16, 16, 8, 8},
		{Chroma422, 16, 16, 8, 16},
		{Chroma444, 16, 16, 16, 16},
	}
	for _, c := range cases {
		u := &CodingUnit{Width: c.w, Height: c.h, ChromaFmt: c.fmt}
		gw, gh := u.ChromaDims()
		if gw != c.cw || gh != c.ch {
			t.Errorf("ChromaDims(%v, %dx%d) = %dx%d, want %dx%d", c.fmt, c.w, c.h, gw, gh, c.cw, c.ch)
		}
	}
}

func TestArenaNeighborOf(t *testing.T) {
	a := NewArena()
	a.Put(&CodingUnit{Tile: 0, X: 0, Y: 0, Width: 8, Height: 8})
	a.Put(&CodingUnit{Tile: 0, X: 8, Y: 0, Width: 8, Height: 8})
	a.Put(&CodingUnit{Tile: 0, X: 0, Y: 8, Width: 8, Height: 8})

	n := a.NeighborOf(0, 8, 8, 8, 8)
	if !n.Left {
		t.Errorf("expected left neighbor present")
	}
	if !n.Above {
		t.Errorf("expected above neighbor present")
	}
	if !n.AboveLeft {
		t.Errorf("expected above-left neighbor present")
	}
}

func TestArenaLeftAbove(t *testing.T) {
	a := NewArena()
	left := &CodingUnit{Tile: 0, X: 0, Y: 0, Width: 8, Height: 8}
	a.Put(left)
	cur := &CodingUnit{Tile: 0, X: 8, Y: 0, Width: 8, Height: 8}
	a.Put(cur)

	got, ok := a.Left(cur)
	if !ok || got != left {
		t.Fatalf("Left(cur) did not return the recorded left CU")
	}
	if _, ok := a.Above(cur); ok {
		t.Fatalf("Above(cur) should be absent at y=0")
	}
}

func TestNeighborStateHelpers(t *testing.T) {
	if None.AboveRight() || None.BelowLeft() {
		t.Fatalf("None neighbor state must report no availability")
	}
	n := All(4, 8)
	if !n.AboveRight() || !n.BelowLeft() {
		t.Fatalf("All(4,8) must report both arms available")
	}
}
