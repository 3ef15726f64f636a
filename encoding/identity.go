package encoding

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/format"
)

// GUIDCodec stores a UUID as its 16 raw bytes in RFC 4122 order.
type GUIDCodec struct{}

// Int64Range is a closed interval [Lo, Hi] of 64-bit integers.
type Int64Range struct {
	Lo int64
	Hi int64
}

// Contains reports whether v lies within the range.
func (r Int64Range) Contains(v int64) bool {
	return r.Lo <= v && v <= r.Hi
}

// Int64RangeCodec stores Lo followed by Hi, 8 bytes each.
type Int64RangeCodec struct{}

// BoolCodec is the codec of boolean sequences. Booleans never use a null
// strategy: every element packs a value bit and a null bit.
type BoolCodec struct{}

var (
	GUID  FixedCodec[uuid.UUID]  = GUIDCodec{}
	Range FixedCodec[Int64Range] = Int64RangeCodec{}
	Bool  BitCodec               = BoolCodec{}
)

const rangeSeparator = ".."

func (GUIDCodec) Kind() format.Kind         { return format.KindGUID }
func (GUIDCodec) Width() int                { return 16 }
func (GUIDCodec) Quoted() bool              { return false }
func (GUIDCodec) Equal(a, b uuid.UUID) bool { return a == b }

func (GUIDCodec) Put(_ endian.EndianEngine, dst []byte, v uuid.UUID) {
	copy(dst[:16], v[:])
}

func (GUIDCodec) Decode(_ endian.EndianEngine, src []byte) (uuid.UUID, error) {
	if len(src) < 16 {
		return uuid.Nil, shortError(format.KindGUID, len(src), 16)
	}

	var id uuid.UUID
	copy(id[:], src[:16])

	return id, nil
}

func (GUIDCodec) FormatLiteral(v uuid.UUID) string {
	return v.String()
}

func (GUIDCodec) ParseLiteral(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, parseError(format.KindGUID, s, err)
	}

	return id, nil
}

func (Int64RangeCodec) Kind() format.Kind          { return format.KindInt64Range }
func (Int64RangeCodec) Width() int                 { return 16 }
func (Int64RangeCodec) Quoted() bool               { return false }
func (Int64RangeCodec) Equal(a, b Int64Range) bool { return a == b }

func (Int64RangeCodec) Put(engine endian.EndianEngine, dst []byte, v Int64Range) {
	engine.PutUint64(dst[0:8], uint64(v.Lo))  //nolint:gosec
	engine.PutUint64(dst[8:16], uint64(v.Hi)) //nolint:gosec
}

func (Int64RangeCodec) Decode(engine endian.EndianEngine, src []byte) (Int64Range, error) {
	if len(src) < 16 {
		return Int64Range{}, shortError(format.KindInt64Range, len(src), 16)
	}

	return Int64Range{
		Lo: int64(engine.Uint64(src[0:8])),  //nolint:gosec
		Hi: int64(engine.Uint64(src[8:16])), //nolint:gosec
	}, nil
}

// FormatLiteral renders the range as "lo..hi".
func (Int64RangeCodec) FormatLiteral(v Int64Range) string {
	return strconv.FormatInt(v.Lo, 10) + rangeSeparator + strconv.FormatInt(v.Hi, 10)
}

func (Int64RangeCodec) ParseLiteral(s string) (Int64Range, error) {
	loText, hiText, ok := strings.Cut(s, rangeSeparator)
	if !ok {
		return Int64Range{}, parseError(format.KindInt64Range, s, nil)
	}

	lo, err := strconv.ParseInt(strings.TrimSpace(loText), 10, 64)
	if err != nil {
		return Int64Range{}, parseError(format.KindInt64Range, s, err)
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(hiText), 10, 64)
	if err != nil {
		return Int64Range{}, parseError(format.KindInt64Range, s, err)
	}
	if lo > hi {
		return Int64Range{}, parseError(format.KindInt64Range, s, nil)
	}

	return Int64Range{Lo: lo, Hi: hi}, nil
}

func (BoolCodec) Kind() format.Kind    { return format.KindBool }
func (BoolCodec) Quoted() bool         { return false }
func (BoolCodec) BitsPerElement() int  { return 2 }
func (BoolCodec) Equal(a, b bool) bool { return a == b }

func (BoolCodec) FormatLiteral(v bool) string {
	return strconv.FormatBool(v)
}

func (BoolCodec) ParseLiteral(s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, parseError(format.KindBool, s, err)
	}

	return b, nil
}
