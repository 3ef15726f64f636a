package format

import "math"

type (
	SizeCode        uint8
	NullStrategy    uint8
	Kind            uint8
	Layout          uint8
	CompressionType uint8
)

const (
	Size8  SizeCode = 0x1 // Size8 encodes a length-like field in 1 byte.
	Size16 SizeCode = 0x2 // Size16 encodes a length-like field in 2 bytes.
	Size32 SizeCode = 0x3 // Size32 encodes a length-like field in 4 bytes.
	Size64 SizeCode = 0x4 // Size64 encodes a length-like field in 8 bytes.

	NullBitmap   NullStrategy = 0x1 // NullBitmap tracks nulls in a shared bit-per-element map (compact).
	NullSentinel NullStrategy = 0x2 // NullSentinel tracks nulls with a marker byte per element.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	LayoutFixed    Layout = 0x1 // LayoutFixed stores every element in the same number of bytes.
	LayoutVariable Layout = 0x2 // LayoutVariable stores length prefixes followed by payload bytes.
	LayoutBit      Layout = 0x3 // LayoutBit packs a value bit and a null bit per element.
)

// Element kinds.
const (
	KindBool Kind = iota + 1
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindDate
	KindDateTime
	KindInterval
	KindGUID
	KindInt64Range
	KindText
	KindBinary
	KindBigInt
	KindDecimal
)

// Bytes returns the encoded byte width, or 0 for an unknown code.
func (s SizeCode) Bytes() int {
	switch s {
	case Size8:
		return 1
	case Size16:
		return 2
	case Size32:
		return 4
	case Size64:
		return 8
	default:
		return 0
	}
}

// Max returns the largest value representable in the width.
func (s SizeCode) Max() uint64 {
	switch s {
	case Size8:
		return math.MaxUint8
	case Size16:
		return math.MaxUint16
	case Size32:
		return math.MaxUint32
	case Size64:
		return math.MaxUint64
	default:
		return 0
	}
}

// IsValid reports whether s is one of the four defined codes.
func (s SizeCode) IsValid() bool {
	return s.Bytes() != 0
}

func (s SizeCode) String() string {
	switch s {
	case Size8:
		return "Size8"
	case Size16:
		return "Size16"
	case Size32:
		return "Size32"
	case Size64:
		return "Size64"
	default:
		return "Unknown"
	}
}

// SizeCodeOf returns the SizeCode for a byte width of 1, 2, 4 or 8.
func SizeCodeOf(width int) (SizeCode, bool) {
	switch width {
	case 1:
		return Size8, true
	case 2:
		return Size16, true
	case 4:
		return Size32, true
	case 8:
		return Size64, true
	default:
		return 0, false
	}
}

// StrategyOf maps the host's compact flag onto a NullStrategy.
func StrategyOf(compact bool) NullStrategy {
	if compact {
		return NullBitmap
	}

	return NullSentinel
}

func (n NullStrategy) IsValid() bool {
	return n == NullBitmap || n == NullSentinel
}

func (n NullStrategy) String() string {
	switch n {
	case NullBitmap:
		return "Bitmap"
	case NullSentinel:
		return "Sentinel"
	default:
		return "Unknown"
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutFixed:
		return "Fixed"
	case LayoutVariable:
		return "Variable"
	case LayoutBit:
		return "Bit"
	default:
		return "Unknown"
	}
}

var kindNames = map[Kind]string{
	KindBool:       "Bool",
	KindInt8:       "Int8",
	KindInt16:      "Int16",
	KindInt32:      "Int32",
	KindInt64:      "Int64",
	KindUint8:      "Uint8",
	KindUint16:     "Uint16",
	KindUint32:     "Uint32",
	KindUint64:     "Uint64",
	KindFloat32:    "Float32",
	KindFloat64:    "Float64",
	KindComplex64:  "Complex64",
	KindComplex128: "Complex128",
	KindDate:       "Date",
	KindDateTime:   "DateTime",
	KindInterval:   "Interval",
	KindGUID:       "GUID",
	KindInt64Range: "Int64Range",
	KindText:       "Text",
	KindBinary:     "Binary",
	KindBigInt:     "BigInt",
	KindDecimal:    "Decimal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "Unknown"
}

// Layout returns how elements of the kind are laid out in a sequence.
func (k Kind) Layout() Layout {
	switch k {
	case KindBool:
		return LayoutBit
	case KindText, KindBinary, KindBigInt, KindDecimal:
		return LayoutVariable
	default:
		return LayoutFixed
	}
}

// ParseKind looks a kind up by its String name, case-sensitively.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}

	return 0, false
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
