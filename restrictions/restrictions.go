// Package restrictions holds the process-wide feature-toggle bundle consulted
// by the syntax coder and intra predictor.
//
// Design Notes call for "a true global is not required; callers construct one
// Restrictions bundle per stream and pass it by shared read-only reference" —
// mirrored here on the teacher's own construction style, where
// t1.NewT1Decoder/NewT1Encoder take a cblkstyle bitmask once and derive
// read-only booleans (resetctx, termall, segmentation) for the object's
// lifetime (jpeg2000/t1/decoder.go, jpeg2000/t1/encoder.go).
package restrictions

// Set is an immutable bundle of conformance-profile toggles. Build one with
// New (or the zero value, which disables every restriction) and share it by
// pointer; nothing in this package mutates a Set after construction.
type Set struct {
	// DisableTransformCbf removes the implicit coded-sub-block-flag for the
	// DC subblock (§4.4.1 step 3).
	DisableTransformCbf bool

	// DisableTransformSignHiding forces all coefficient signs to be coded
	// explicitly, never hidden via level-sum parity (§4.4.1).
	DisableTransformSignHiding bool

	// DisableTransformAdaptiveExpGolomb freezes the Exp-Golomb rice
	// parameter k at its initial value instead of letting it grow (§4.4.1).
	DisableTransformAdaptiveExpGolomb bool

	// DisableIntraRefPadding disables all reference-sample padding; missing
	// neighbor samples stay at mid-grey instead of being propagated from
	// available neighbors (§4.5).
	DisableIntraRefPadding bool

	// DisableIntraDCPostFilter disables the DC-mode boundary post-filter
	// (§4.5).
	DisableIntraDCPostFilter bool

	// DisableIntraVerHorPostFilter disables the angular mode 10/26
	// (horizontal/vertical) boundary post-filter (§4.5).
	DisableIntraVerHorPostFilter bool
}

// None is the all-features-enabled (no restrictions disabled) profile.
var None = &Set{}

// New returns a Set with every flag false; it takes no arguments. Prefer
// struct literals at call sites; New exists for callers that assemble a
// profile from a decoded stream header field by field.
func New() *Set {
	return &Set{}
}
