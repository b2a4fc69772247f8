// Package xvcerr defines the error taxonomy shared by the arithmetic coder,
// syntax layer and intra predictor.
//
// Four kinds of failure can occur in the core, mirroring spec §7:
//   - ConfigurationError: bad setup (restrictions profile, bit depth, partition type).
//   - InvalidStream: the decoder observed a sequence that violates an implicit invariant.
//   - StreamExhausted: the decoder ran out of input bytes.
//   - InternalAssertion: an invariant the writer itself must never violate.
//
// Callers that need to attach positional context wrap one of the sentinel
// errors below with errors.Wrapf, following the pattern used by the H.264
// CABAC decode path consulted during design (ausocean-av's
// codec/h264/h264dec package wraps every arithmetic-decoding failure with
// github.com/pkg/errors before returning it).
package xvcerr

import "errors"

// Sentinel errors. Use errors.Is against these, or pkg/errors.Wrapf to add context.
var (
	ErrConfiguration   = errors.New("xvc: configuration error")
	ErrInvalidStream   = errors.New("xvc: invalid stream")
	ErrStreamExhausted = errors.New("xvc: stream exhausted")
	ErrInternal        = errors.New("xvc: internal assertion failed")
)

// Kind identifies which of the four taxonomy members an error belongs to.
type Kind int

const (
	KindConfiguration Kind = iota
	KindInvalidStream
	KindStreamExhausted
	KindInternal
)

// Error is a taxonomy-tagged error carrying a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindConfiguration:
		return ErrConfiguration
	case KindInvalidStream:
		return ErrInvalidStream
	case KindStreamExhausted:
		return ErrStreamExhausted
	default:
		return ErrInternal
	}
}

// Is reports an internal assertion as also matching ErrConfiguration, the
// category it is surfaced as (see Internal).
func (e *Error) Is(target error) bool {
	return e.Kind == KindInternal && target == ErrConfiguration
}

// Cause returns the wrapped lower-level error, if any.
func (e *Error) Cause() error { return e.err }

// Configuration reports a fatal setup-time error.
func Configuration(msg string) error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

// InvalidStream reports a decoder-side invariant violation.
func InvalidStream(msg string) error {
	return &Error{Kind: KindInvalidStream, Msg: msg}
}

// StreamExhausted reports the decoder running out of input.
func StreamExhausted(msg string) error {
	return &Error{Kind: KindStreamExhausted, Msg: msg}
}

// Internal reports a writer-side invariant violation. It is surfaced as a
// ConfigurationError: errors.Is matches it against both ErrInternal and
// ErrConfiguration. Callers that want an abort-on-debug behavior should
// check Kind == KindInternal themselves.
func Internal(msg string) error {
	return &Error{Kind: KindInternal, Msg: msg}
}
