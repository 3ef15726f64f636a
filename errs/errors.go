// Package errs defines the sentinel errors returned by the sequence codec.
//
// Callers match them with errors.Is; the codec wraps them with context using
// fmt.Errorf and %w.
package errs

import "errors"

var (
	// ErrNullArgument is returned when a required blob argument is itself absent,
	// as opposed to a present blob whose elements are null.
	ErrNullArgument = errors.New("null argument")

	// ErrMalformedStream is returned when header fields are inconsistent with the
	// stream length or a prefix, marker or payload cannot be decoded.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrIndexOutOfRange is returned for point or resolved range access outside [0, Count].
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrDimensionMismatch is returned when an index or range vector length differs from the rank.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEncodingUnsupported is returned for an unknown text encoding id or name,
	// or a string the selected encoding cannot represent.
	ErrEncodingUnsupported = errors.New("text encoding unsupported")

	ErrNullNotAllowed      = errors.New("null value in non-nullable sequence")
	ErrValueTooLarge       = errors.New("encoded value exceeds item width")
	ErrCountOverflow       = errors.New("count exceeds count width")
	ErrInvalidSizeCode     = errors.New("invalid size code")
	ErrInvalidNullStrategy = errors.New("invalid null strategy")
	ErrKindMismatch        = errors.New("element kind mismatch")
	ErrParse               = errors.New("literal parse error")
	ErrClosed              = errors.New("sequence closed")

	ErrInvalidEnvelope  = errors.New("invalid accumulator state envelope")
	ErrChecksumMismatch = errors.New("accumulator state checksum mismatch")
)
