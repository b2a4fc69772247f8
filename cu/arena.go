package cu

// Arena stores CodingUnits indexed by (tile, x, y) so that left/above
// neighbor lookups are plain map arithmetic rather than pointer-chasing
// with ownership semantics, per spec §9: "store CUs in an arena indexed by
// (tile, x, y); neighbor lookups are arithmetic on the arena... Back-
// references carry 'lookup, not ownership' meaning." Grounded on the
// teacher's t2 codestream, which resolves tile-part and precinct lookups
// through an index keyed by (component, resolution, precinct) rather than
// embedded pointers (jpeg2000/t2/decoder.go, jpeg2000/t2/encoder.go).
type Arena struct {
	units map[key]*CodingUnit
}

type key struct {
	tile, x, y int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{units: make(map[key]*CodingUnit)}
}

// Put records cu at its own (Tile, X, Y) coordinate and at every sample
// position its Width×Height area covers.
func (a *Arena) Put(c *CodingUnit) {
	a.units[key{c.Tile, c.X, c.Y}] = c
	for y := c.Y; y < c.Y+c.Height; y++ {
		for x := c.X; x < c.X+c.Width; x++ {
			a.units[key{c.Tile, x, y}] = c
		}
	}
}

// Get looks up the CU covering sample position (tile, x, y).
func (a *Arena) Get(tile, x, y int) (*CodingUnit, bool) {
	c, ok := a.units[key{tile, x, y}]
	return c, ok
}

// Left returns the CU immediately to the left of c, if one has been
// reconstructed and recorded.
func (a *Arena) Left(c *CodingUnit) (*CodingUnit, bool) {
	if c.X == 0 {
		return nil, false
	}
	return a.Get(c.Tile, c.X-1, c.Y)
}

// Above returns the CU immediately above c, if one has been reconstructed
// and recorded.
func (a *Arena) Above(c *CodingUnit) (*CodingUnit, bool) {
	if c.Y == 0 {
		return nil, false
	}
	return a.Get(c.Tile, c.X, c.Y-1)
}

// Reset discards every recorded CU, readying the arena for the next tile
// or slice.
func (a *Arena) Reset() {
	a.units = make(map[key]*CodingUnit)
}

// NeighborOf derives the NeighborState for a block at (x, y, w, h) within
// tile, consulting only CUs already present in the arena — callers insert
// CUs in raster/decode order, so "present" means "already reconstructed."
func (a *Arena) NeighborOf(tile, x, y, w, h int) NeighborState {
	var n NeighborState
	if x > 0 {
		if _, ok := a.Get(tile, x-1, y); ok {
			n.Left = true
		}
	}
	if y > 0 {
		if _, ok := a.Get(tile, x, y-1); ok {
			n.Above = true
		}
		if x > 0 {
			if _, ok := a.Get(tile, x-1, y-1); ok {
				n.AboveLeft = true
			}
		}
	}
	if y > 0 {
		for i := 0; i < w; i++ {
			if _, ok := a.Get(tile, x+w+i, y-1); ok {
				n.AboveRightCount++
			} else {
				break
			}
		}
	}
	if x > 0 {
		for i := 0; i < h; i++ {
			if _, ok := a.Get(tile, x-1, y+h+i); ok {
				n.BelowLeftCount++
			} else {
				break
			}
		}
	}
	return n
}
