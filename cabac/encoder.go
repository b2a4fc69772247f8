package cabac

// Encoder is the arithmetic-coding write side. It mirrors the teacher's
// mqc.MQEncoder (jpeg2000/mqc/encoder.go) in overall shape — a low/range
// pair of 32-bit registers, a per-instance output buffer, a context-coded
// and a bypass (equiprobable) entry point — but follows the low/range +
// pending-bits renormalization algorithm spec §4.2 describes (the classic
// H.264/HEVC-family CABAC engine, also consulted via the
// ausocean-av/codec/h264/h264dec reference's arithmetic decoding routines
// for the mirror-image decode side), rather than the MQ-coder's
// carry-register design.
type Encoder struct {
	low uint32
	rng uint32

	bitsOutstanding int
	firstBit        bool

	cur   byte
	nBits int
	buf   []byte

	finished bool
}

// initialRange is the starting probability interval width. It stays inside
// the renormalization invariant's upper half, [256, 512), the same
// invariant spec §3 requires after every bin.
const initialRange = 510

// NewEncoder creates a fresh arithmetic encoder with an empty output buffer.
func NewEncoder() *Encoder {
	return &Encoder{
		rng:      initialRange,
		firstBit: true,
		buf:      make([]byte, 0, 256),
	}
}

// EncodeBin codes one context-adaptive bin, narrowing range by the LPS
// sub-range derived from ctx's state (spec §4.2).
func (e *Encoder) EncodeBin(bin int, ctx *ContextModel) {
	state := ctx.State()
	mps := ctx.MPS()
	qRangeIdx := (e.rng >> 6) & 3
	rLPS := rangeTabLps[state][qRangeIdx]

	e.rng -= rLPS
	if bin != mps {
		e.low += e.rng
		e.rng = rLPS
		ctx.UpdateLps()
	} else {
		ctx.UpdateMps()
	}
	e.renormalize()
}

// EncodeBypass codes one equiprobable bin with no context lookup or update.
func (e *Encoder) EncodeBypass(bin int) {
	e.low <<= 1
	if bin != 0 {
		e.low += e.rng
	}
	switch {
	case e.low >= 1024:
		e.putBit(1)
		e.low -= 1024
	case e.low < 512:
		e.putBit(0)
	default:
		e.bitsOutstanding++
		e.low -= 512
	}
}

// EncodeBypassBins codes the low n bits of value, most-significant bit
// first, each as an independent bypass bin.
func (e *Encoder) EncodeBypassBins(value uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		e.EncodeBypass(int((value >> uint(i)) & 1))
	}
}

// EncodeBinTrm codes the end-of-slice terminator bin: a fixed LPS width of
// 2 regardless of context (spec §4.2).
func (e *Encoder) EncodeBinTrm(bin int) {
	e.rng -= 2
	if bin != 0 {
		e.low += e.rng
		e.rng = 2
	}
	e.renormalize()
}

// renormalize doubles range (and low) while range stays below 256,
// emitting or deferring one bit per shift and resolving carry via the
// pending-bits counter, per spec §4.2.
func (e *Encoder) renormalize() {
	for e.rng < 256 {
		switch {
		case e.low < 256:
			e.putBit(0)
		case e.low >= 512:
			e.low -= 512
			e.putBit(1)
		default:
			e.bitsOutstanding++
			e.low -= 256
		}
		e.rng <<= 1
		e.low <<= 1
	}
}

// putBit emits bit b, suppressing only the very first bit of the entire
// stream (a well-known one-bit saving the decoder's fixed-width init read
// compensates for automatically), then flushes any deferred
// bitsOutstanding bits with inverted polarity — the carry-propagation rule
// spec §4.2 calls out explicitly.
func (e *Encoder) putBit(b byte) {
	if e.firstBit {
		e.firstBit = false
	} else {
		e.emitBit(b)
	}
	for ; e.bitsOutstanding > 0; e.bitsOutstanding-- {
		e.emitBit(1 - b)
	}
}

// emitBit packs a single bit MSB-first into the output byte buffer (spec
// §6: "bits are packed MSB-first within each byte").
func (e *Encoder) emitBit(b byte) {
	e.cur = (e.cur << 1) | (b & 1)
	e.nBits++
	if e.nBits == 8 {
		e.buf = append(e.buf, e.cur)
		e.cur = 0
		e.nBits = 0
	}
}

// FinishStream flushes the encoder: it codes the terminator bin, emits the
// two remaining bits needed to disambiguate the final interval, then
// appends the mandatory `1` stop bit and zero-pads to the next byte
// boundary (spec §6). The encoder must not be used again afterward.
func (e *Encoder) FinishStream() []byte {
	if e.finished {
		return e.buf
	}
	e.EncodeBinTrm(1)
	e.putBit(byte((e.low >> 9) & 1))
	e.putBit(byte((e.low >> 8) & 1))
	e.emitBit(1) // rbsp-style stop bit
	for e.nBits != 0 {
		e.emitBit(0)
	}
	e.finished = true
	return e.buf
}

// Bytes returns the bytes emitted so far, without finishing the stream.
func (e *Encoder) Bytes() []byte { return e.buf }
