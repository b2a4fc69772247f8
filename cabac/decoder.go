package cabac

import "github.com/andersc/xvc/xvcerr"

// Decoder is the arithmetic-coding read side, mirroring Encoder bin for bin
// (spec §4.2's "Decoding mirrors" contract). Grounded, alongside Encoder, on
// the decode-engine shape of the H.264 CABAC reference consulted in the
// retrieval pack (ausocean-av/codec/h264/h264dec's BinaryDecision, RenormD,
// DecodeBypass and DecodeTerminate routines), adapted to this codec's
// 64-state context tables.
type Decoder struct {
	data   []byte
	bitPos int

	low uint32 // the fetched "value", named low for symmetry with Encoder
	rng uint32
}

// NewDecoder creates a decoder over data and fetches the initial value.
func NewDecoder(data []byte) (*Decoder, error) {
	d := &Decoder{data: data, rng: initialRange}
	v, err := d.readBits(9)
	if err != nil {
		return nil, err
	}
	d.low = v
	return d, nil
}

func (d *Decoder) readBit() (uint32, error) {
	byteIdx := d.bitPos >> 3
	if byteIdx >= len(d.data) {
		return 0, xvcerr.StreamExhausted("arithmetic decoder ran out of input bytes")
	}
	shift := 7 - uint(d.bitPos&7)
	bit := (d.data[byteIdx] >> shift) & 1
	d.bitPos++
	return uint32(bit), nil
}

func (d *Decoder) readBits(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := d.readBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | b
	}
	return v, nil
}

// DecodeBin decodes one context-adaptive bin.
func (d *Decoder) DecodeBin(ctx *ContextModel) (int, error) {
	state := ctx.State()
	mps := ctx.MPS()
	qRangeIdx := (d.rng >> 6) & 3
	rLPS := rangeTabLps[state][qRangeIdx]

	d.rng -= rLPS
	var bin int
	if d.low >= d.rng {
		bin = 1 - mps
		d.low -= d.rng
		d.rng = rLPS
		ctx.UpdateLps()
	} else {
		bin = mps
		ctx.UpdateMps()
	}
	if err := d.renormalize(); err != nil {
		return 0, err
	}
	return bin, nil
}

// DecodeBypass decodes one equiprobable bin.
func (d *Decoder) DecodeBypass() (int, error) {
	bit, err := d.readBit()
	if err != nil {
		return 0, err
	}
	d.low = (d.low << 1) | bit
	if d.low >= d.rng {
		d.low -= d.rng
		return 1, nil
	}
	return 0, nil
}

// DecodeBypassBins decodes n equiprobable bins, most-significant bit first,
// and returns them packed into a uint32.
func (d *Decoder) DecodeBypassBins(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		b, err := d.DecodeBypass()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | uint32(b)
	}
	return v, nil
}

// DecodeBinTrm decodes the end-of-slice terminator bin. When it returns 1,
// decoding of this slice is complete and the decoder must not be used
// again.
func (d *Decoder) DecodeBinTrm() (int, error) {
	d.rng -= 2
	if d.low >= d.rng {
		return 1, nil
	}
	if err := d.renormalize(); err != nil {
		return 0, err
	}
	return 0, nil
}

func (d *Decoder) renormalize() error {
	for d.rng < 256 {
		bit, err := d.readBit()
		if err != nil {
			return err
		}
		d.rng <<= 1
		d.low = (d.low << 1) | bit
	}
	return nil
}
