// Package encoding provides the element codecs of streamed sequences.
//
// Every element kind has one codec, selected by layout:
//
//   - FixedCodec: elements of a natural fixed width (integers, floats,
//     complex numbers, dates, date-times, intervals, GUIDs, int64 ranges).
//   - VariableCodec: length-prefixed payloads (text, binary, big integers,
//     decimals). The prefix width is chosen by the sequence layout.
//   - BitCodec: booleans, packed two bits per element.
//
// Codecs are stateless values and safe for concurrent use. Besides the binary
// form, each codec defines the literal token of its kind used by the
// sequence text syntax:
//
//	v, err := encoding.Int32.ParseLiteral("-7")
//	s := encoding.Int32.FormatLiteral(v) // "-7"
//
// Text codecs carry a character encoding, chosen explicitly, by numeric
// codepage or by IANA name:
//
//	cyr, err := encoding.TextByCodepage(1251)
//	utf16, err := encoding.TextByName("UTF-16LE")
package encoding
