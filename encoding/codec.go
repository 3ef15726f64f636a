package encoding

import (
	"fmt"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// Codec is the part of an element codec shared by every layout: identity,
// equality and the literal token grammar used by Parse and Format.
type Codec[T any] interface {
	// Kind identifies the element kind.
	Kind() format.Kind

	// Equal reports whether two non-null values are the same element.
	Equal(a, b T) bool

	// FormatLiteral renders v as a literal token, without quotes.
	FormatLiteral(v T) string

	// ParseLiteral parses a literal token previously produced by FormatLiteral.
	// Quotes are already removed by the lexer.
	ParseLiteral(s string) (T, error)

	// Quoted reports whether literal tokens of this kind are written in double quotes.
	Quoted() bool
}

// FixedCodec encodes every element in exactly Width bytes.
type FixedCodec[T any] interface {
	Codec[T]

	// Width returns the encoded element width in bytes.
	Width() int

	// Put encodes v into dst[:Width()].
	Put(engine endian.EndianEngine, dst []byte, v T)

	// Decode decodes src[:Width()]. A short src fails with errs.ErrMalformedStream.
	Decode(engine endian.EndianEngine, src []byte) (T, error)
}

// VariableCodec encodes elements as a payload of varying length.
// The length prefix is written by the sequence, not by the codec.
type VariableCodec[T any] interface {
	Codec[T]

	// Append appends the payload of v to dst.
	Append(engine endian.EndianEngine, dst []byte, v T) ([]byte, error)

	// Decode decodes an entire payload.
	Decode(engine endian.EndianEngine, src []byte) (T, error)
}

// BitCodec marks the boolean codec, whose sequences pack a value bit and a
// null bit per element.
type BitCodec interface {
	Codec[bool]

	// BitsPerElement returns the number of packed bits per element.
	BitsPerElement() int
}

// Checker is implemented by codecs whose Go type can hold values the encoding
// cannot represent. Check fails with errs.ErrValueTooLarge for such values.
type Checker[T any] interface {
	Check(v T) error
}

// CheckValue runs the codec's Check, if it has one.
func CheckValue[T any](codec Codec[T], v T) error {
	if c, ok := codec.(Checker[T]); ok {
		return c.Check(v)
	}

	return nil
}

func parseError(kind format.Kind, s string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s literal %q: %v", errs.ErrParse, kind, s, err) //nolint:errorlint
	}

	return fmt.Errorf("%w: %s literal %q", errs.ErrParse, kind, s)
}

func shortError(kind format.Kind, got, want int) error {
	return fmt.Errorf("%s element has %d bytes, want %d: %w", kind, got, want, errs.ErrMalformedStream)
}
