package encoding

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// BinaryCodec stores raw byte blocks as-is.
type BinaryCodec struct{}

// BigIntCodec stores an arbitrary-precision integer as a sign byte
// (0 non-negative, 1 negative) followed by the big-endian magnitude.
// An empty payload decodes to zero.
type BigIntCodec struct{}

// DecimalCodec stores an arbitrary-precision decimal in the binary form of
// shopspring/decimal. An empty payload decodes to zero.
type DecimalCodec struct{}

var (
	Binary  VariableCodec[[]byte]          = BinaryCodec{}
	BigInt  VariableCodec[*big.Int]        = BigIntCodec{}
	Decimal VariableCodec[decimal.Decimal] = DecimalCodec{}
)

const hexPrefix = "0x"

func (BinaryCodec) Kind() format.Kind      { return format.KindBinary }
func (BinaryCodec) Quoted() bool           { return false }
func (BinaryCodec) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

func (BinaryCodec) Append(_ endian.EndianEngine, dst []byte, v []byte) ([]byte, error) {
	return append(dst, v...), nil
}

// Decode returns a copy of src, so the result never aliases stream buffers.
func (BinaryCodec) Decode(_ endian.EndianEngine, src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)

	return out, nil
}

// FormatLiteral renders the block as lowercase hex with a 0x prefix.
func (BinaryCodec) FormatLiteral(v []byte) string {
	return hexPrefix + hex.EncodeToString(v)
}

func (BinaryCodec) ParseLiteral(s string) ([]byte, error) {
	if len(s) < 2 || !strings.EqualFold(s[:2], hexPrefix) {
		return nil, parseError(format.KindBinary, s, nil)
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, parseError(format.KindBinary, s, err)
	}

	return b, nil
}

func (BigIntCodec) Kind() format.Kind { return format.KindBigInt }
func (BigIntCodec) Quoted() bool      { return false }

func (BigIntCodec) Equal(a, b *big.Int) bool {
	return bigOrZero(a).Cmp(bigOrZero(b)) == 0
}

func (BigIntCodec) Append(_ endian.EndianEngine, dst []byte, v *big.Int) ([]byte, error) {
	v = bigOrZero(v)
	sign := byte(0)
	if v.Sign() < 0 {
		sign = 1
	}
	dst = append(dst, sign)

	return append(dst, v.Bytes()...), nil
}

func (BigIntCodec) Decode(_ endian.EndianEngine, src []byte) (*big.Int, error) {
	if len(src) == 0 {
		return new(big.Int), nil
	}

	n := new(big.Int).SetBytes(src[1:])
	switch src[0] {
	case 0:
	case 1:
		n.Neg(n)
	default:
		return nil, fmt.Errorf("big integer sign byte 0x%02x: %w", src[0], errs.ErrMalformedStream)
	}

	return n, nil
}

func (BigIntCodec) FormatLiteral(v *big.Int) string {
	return bigOrZero(v).String()
}

func (BigIntCodec) ParseLiteral(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, parseError(format.KindBigInt, s, nil)
	}

	return n, nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}

func (DecimalCodec) Kind() format.Kind               { return format.KindDecimal }
func (DecimalCodec) Quoted() bool                    { return false }
func (DecimalCodec) Equal(a, b decimal.Decimal) bool { return a.Equal(b) }

func (DecimalCodec) Append(_ endian.EndianEngine, dst []byte, v decimal.Decimal) ([]byte, error) {
	b, err := v.MarshalBinary()
	if err != nil {
		return dst, fmt.Errorf("encode decimal %s: %w", v, err)
	}

	return append(dst, b...), nil
}

func (DecimalCodec) Decode(_ endian.EndianEngine, src []byte) (decimal.Decimal, error) {
	if len(src) == 0 {
		return decimal.Zero, nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalBinary(src); err != nil {
		return decimal.Zero, fmt.Errorf("decimal payload: %v: %w", err, errs.ErrMalformedStream) //nolint:errorlint
	}

	return d, nil
}

func (DecimalCodec) FormatLiteral(v decimal.Decimal) string {
	return v.String()
}

func (DecimalCodec) ParseLiteral(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, parseError(format.KindDecimal, s, err)
	}

	return d, nil
}
