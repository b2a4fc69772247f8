// Package cu models the CodingUnit descriptor consumed by the syntax coder
// and intra predictor (spec §3, §6): block geometry, prediction mode, and
// lookups to already-reconstructed neighbors. Grounded on the teacher's
// jpeg2000/t2 PacketIterator, which likewise holds a read-only geometry
// descriptor (resolution levels, precincts, component counts) threaded
// through encode/decode without owning the pixel data itself.
package cu

// ChromaFormat selects the chroma subsampling of a picture.
type ChromaFormat int

const (
	ChromaMonochrome ChromaFormat = iota
	Chroma420
	Chroma422
	Chroma444
)

// PredMode is the top-level prediction decision for a CU.
type PredMode int

const (
	PredModeInter PredMode = iota
	PredModeIntra
	PredModeSkip
)

// PartitionType enumerates the prediction-block partitioning of a CU. Only
// Part2Nx2N is exercised by the currently implemented configuration (spec
// §4.4: "asserts invariants (e.g. partition type = 2N×2N for the currently
// implemented configuration)"); the others are retained so SyntaxCoder's
// PartitionType bins have a complete symbol alphabet to reject against.
type PartitionType int

const (
	Part2Nx2N PartitionType = iota
	Part2NxN
	PartNx2N
	PartNxN
)

// IntraMode is one of the 35 intra prediction modes: 0=Planar, 1=DC,
// 2..34=angular, with 10=Horizontal and 26=Vertical.
type IntraMode int

const (
	ModePlanar     IntraMode = 0
	ModeDC         IntraMode = 1
	ModeHorizontal IntraMode = 10
	ModeVertical   IntraMode = 26
	ModeDMChroma   IntraMode = -1 // derived-mode sentinel, never written directly
)

// NumIntraModes is the size of the luma intra-mode alphabet (spec §4.4).
const NumIntraModes = 35

// Component identifies a picture plane.
type Component int

const (
	ComponentLuma Component = iota
	ComponentCb
	ComponentCr
)

// CodingUnit is the read-only geometry and mode descriptor spec §3 and §6
// describe: "geometry (x, y, width, height per component), prediction mode
// (intra/inter), chroma format, QP, pointers to already-reconstructed left
// and above CU descriptors, and their intra modes if applicable." Neighbor
// lookups are by arena coordinate (see Arena), never by owned pointer, per
// the "lookup, not ownership" guidance in spec §9.
type CodingUnit struct {
	Tile int
	X, Y int
	Width, Height int

	ChromaFmt ChromaFormat
	QP        int

	PredMode      PredMode
	PartitionType PartitionType

	LumaIntraMode   IntraMode
	ChromaIntraMode IntraMode

	SkipFlag bool
}

// LumaDims returns the luma plane's width and height (equal to the CU's
// geometry, since geometry is specified in luma samples).
func (c *CodingUnit) LumaDims() (w, h int) { return c.Width, c.Height }

// ChromaDims returns a chroma plane's width and height for this CU's
// chroma format. Monochrome has no chroma planes; callers must check
// HasChroma first.
func (c *CodingUnit) ChromaDims() (w, h int) {
	switch c.ChromaFmt {
	case Chroma420:
		return c.Width / 2, c.Height / 2
	case Chroma422:
		return c.Width / 2, c.Height
	case Chroma444:
		return c.Width, c.Height
	default:
		return 0, 0
	}
}

// HasChroma reports whether this CU carries chroma planes at all.
func (c *CodingUnit) HasChroma() bool { return c.ChromaFmt != ChromaMonochrome }

// NeighborState records which reconstructed neighbors are available for a
// block, per spec §3: "five booleans describing which of {left, above,
// above-left, above-right (with count), below-left (with count)}
// reconstructed neighbors are available."
type NeighborState struct {
	Left      bool
	Above     bool
	AboveLeft bool

	AboveRightCount int
	BelowLeftCount  int
}

// AboveRight reports whether any above-right neighbor samples are
// available.
func (n NeighborState) AboveRight() bool { return n.AboveRightCount > 0 }

// BelowLeft reports whether any below-left neighbor samples are available.
func (n NeighborState) BelowLeft() bool { return n.BelowLeftCount > 0 }

// None is the neighbor state with nothing available: every arm must be
// filled with mid-grey by ComputeRefSamples (spec §4.5).
var None = NeighborState{}

// All reports a fully populated neighbor state for a block of the given
// height/width-derived counts, the common case inside a picture interior.
func All(aboveRightCount, belowLeftCount int) NeighborState {
	return NeighborState{
		Left: true, Above: true, AboveLeft: true,
		AboveRightCount: aboveRightCount,
		BelowLeftCount:  belowLeftCount,
	}
}
