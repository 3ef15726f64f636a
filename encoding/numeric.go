package encoding

import (
	"math"
	"strconv"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/format"
)

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntCodec encodes signed and unsigned integers in their natural width.
type IntCodec[T integer] struct {
	kind   format.Kind
	width  int
	signed bool
}

var (
	Int8   FixedCodec[int8]   = IntCodec[int8]{kind: format.KindInt8, width: 1, signed: true}
	Int16  FixedCodec[int16]  = IntCodec[int16]{kind: format.KindInt16, width: 2, signed: true}
	Int32  FixedCodec[int32]  = IntCodec[int32]{kind: format.KindInt32, width: 4, signed: true}
	Int64  FixedCodec[int64]  = IntCodec[int64]{kind: format.KindInt64, width: 8, signed: true}
	Uint8  FixedCodec[uint8]  = IntCodec[uint8]{kind: format.KindUint8, width: 1}
	Uint16 FixedCodec[uint16] = IntCodec[uint16]{kind: format.KindUint16, width: 2}
	Uint32 FixedCodec[uint32] = IntCodec[uint32]{kind: format.KindUint32, width: 4}
	Uint64 FixedCodec[uint64] = IntCodec[uint64]{kind: format.KindUint64, width: 8}
)

func (c IntCodec[T]) Kind() format.Kind { return c.kind }
func (c IntCodec[T]) Width() int        { return c.width }
func (c IntCodec[T]) Quoted() bool      { return false }
func (c IntCodec[T]) Equal(a, b T) bool { return a == b }

func (c IntCodec[T]) Put(engine endian.EndianEngine, dst []byte, v T) {
	switch c.width {
	case 1:
		dst[0] = uint8(v) //nolint:gosec
	case 2:
		engine.PutUint16(dst, uint16(v)) //nolint:gosec
	case 4:
		engine.PutUint32(dst, uint32(v)) //nolint:gosec
	default:
		engine.PutUint64(dst, uint64(v)) //nolint:gosec
	}
}

func (c IntCodec[T]) Decode(engine endian.EndianEngine, src []byte) (T, error) {
	if len(src) < c.width {
		return 0, shortError(c.kind, len(src), c.width)
	}

	switch c.width {
	case 1:
		return T(src[0]), nil
	case 2:
		return T(engine.Uint16(src)), nil
	case 4:
		return T(engine.Uint32(src)), nil
	default:
		return T(engine.Uint64(src)), nil
	}
}

func (c IntCodec[T]) FormatLiteral(v T) string {
	if c.signed {
		return strconv.FormatInt(int64(v), 10)
	}

	return strconv.FormatUint(uint64(v), 10) //nolint:gosec
}

func (c IntCodec[T]) ParseLiteral(s string) (T, error) {
	if c.signed {
		n, err := strconv.ParseInt(s, 10, c.width*8)
		if err != nil {
			return 0, parseError(c.kind, s, err)
		}

		return T(n), nil
	}

	n, err := strconv.ParseUint(s, 10, c.width*8)
	if err != nil {
		return 0, parseError(c.kind, s, err)
	}

	return T(n), nil
}

// Float32Codec encodes IEEE 754 single precision values.
type Float32Codec struct{}

// Float64Codec encodes IEEE 754 double precision values.
type Float64Codec struct{}

var (
	Float32 FixedCodec[float32] = Float32Codec{}
	Float64 FixedCodec[float64] = Float64Codec{}
)

func (Float32Codec) Kind() format.Kind { return format.KindFloat32 }
func (Float32Codec) Width() int        { return 4 }
func (Float32Codec) Quoted() bool      { return false }

// Equal treats NaN as equal to NaN so that searches can find it.
func (Float32Codec) Equal(a, b float32) bool {
	return a == b || (a != a && b != b)
}

func (Float32Codec) Put(engine endian.EndianEngine, dst []byte, v float32) {
	engine.PutUint32(dst, math.Float32bits(v))
}

func (Float32Codec) Decode(engine endian.EndianEngine, src []byte) (float32, error) {
	if len(src) < 4 {
		return 0, shortError(format.KindFloat32, len(src), 4)
	}

	return math.Float32frombits(engine.Uint32(src)), nil
}

func (Float32Codec) FormatLiteral(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func (Float32Codec) ParseLiteral(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, parseError(format.KindFloat32, s, err)
	}

	return float32(f), nil
}

func (Float64Codec) Kind() format.Kind { return format.KindFloat64 }
func (Float64Codec) Width() int        { return 8 }
func (Float64Codec) Quoted() bool      { return false }

// Equal treats NaN as equal to NaN so that searches can find it.
func (Float64Codec) Equal(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func (Float64Codec) Put(engine endian.EndianEngine, dst []byte, v float64) {
	engine.PutUint64(dst, math.Float64bits(v))
}

func (Float64Codec) Decode(engine endian.EndianEngine, src []byte) (float64, error) {
	if len(src) < 8 {
		return 0, shortError(format.KindFloat64, len(src), 8)
	}

	return math.Float64frombits(engine.Uint64(src)), nil
}

func (Float64Codec) FormatLiteral(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (Float64Codec) ParseLiteral(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, parseError(format.KindFloat64, s, err)
	}

	return f, nil
}

// Complex64Codec encodes the real part followed by the imaginary part as float32.
type Complex64Codec struct{}

// Complex128Codec encodes the real part followed by the imaginary part as float64.
type Complex128Codec struct{}

var (
	Complex64  FixedCodec[complex64]  = Complex64Codec{}
	Complex128 FixedCodec[complex128] = Complex128Codec{}
)

func (Complex64Codec) Kind() format.Kind         { return format.KindComplex64 }
func (Complex64Codec) Width() int                { return 8 }
func (Complex64Codec) Quoted() bool              { return false }
func (Complex64Codec) Equal(a, b complex64) bool { return a == b }

func (Complex64Codec) Put(engine endian.EndianEngine, dst []byte, v complex64) {
	engine.PutUint32(dst[0:4], math.Float32bits(real(v)))
	engine.PutUint32(dst[4:8], math.Float32bits(imag(v)))
}

func (Complex64Codec) Decode(engine endian.EndianEngine, src []byte) (complex64, error) {
	if len(src) < 8 {
		return 0, shortError(format.KindComplex64, len(src), 8)
	}

	re := math.Float32frombits(engine.Uint32(src[0:4]))
	im := math.Float32frombits(engine.Uint32(src[4:8]))

	return complex(re, im), nil
}

func (Complex64Codec) FormatLiteral(v complex64) string {
	return strconv.FormatComplex(complex128(v), 'g', -1, 64)
}

func (Complex64Codec) ParseLiteral(s string) (complex64, error) {
	c, err := strconv.ParseComplex(s, 64)
	if err != nil {
		return 0, parseError(format.KindComplex64, s, err)
	}

	return complex64(c), nil
}

func (Complex128Codec) Kind() format.Kind          { return format.KindComplex128 }
func (Complex128Codec) Width() int                 { return 16 }
func (Complex128Codec) Quoted() bool               { return false }
func (Complex128Codec) Equal(a, b complex128) bool { return a == b }

func (Complex128Codec) Put(engine endian.EndianEngine, dst []byte, v complex128) {
	engine.PutUint64(dst[0:8], math.Float64bits(real(v)))
	engine.PutUint64(dst[8:16], math.Float64bits(imag(v)))
}

func (Complex128Codec) Decode(engine endian.EndianEngine, src []byte) (complex128, error) {
	if len(src) < 16 {
		return 0, shortError(format.KindComplex128, len(src), 16)
	}

	re := math.Float64frombits(engine.Uint64(src[0:8]))
	im := math.Float64frombits(engine.Uint64(src[8:16]))

	return complex(re, im), nil
}

func (Complex128Codec) FormatLiteral(v complex128) string {
	return strconv.FormatComplex(v, 'g', -1, 128)
}

func (Complex128Codec) ParseLiteral(s string) (complex128, error) {
	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, parseError(format.KindComplex128, s, err)
	}

	return c, nil
}
