package section

import (
	"fmt"
	"math"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// Layout holds the encoding parameters of a sequence region.
//
// None of these fields are persisted: the region starts directly with the
// count field, so a reader must open a stream with the same Layout it was
// written with. The host knows them from the column type.
type Layout struct {
	// CountWidth is the width of the persisted element count.
	CountWidth format.SizeCode
	// ItemWidth is the width of each length prefix for variable-width kinds.
	ItemWidth format.SizeCode
	// Nullable reports whether elements may be null.
	Nullable bool
	// Strategy selects how nulls of fixed-width kinds are recorded.
	Strategy format.NullStrategy
	// BigEndian selects big-endian integers; little-endian is the format default.
	BigEndian bool
}

// DefaultLayout returns a nullable, bitmap-strategy layout with 32-bit counts
// and 32-bit item prefixes.
func DefaultLayout() Layout {
	return Layout{
		CountWidth: format.Size32,
		ItemWidth:  format.Size32,
		Nullable:   true,
		Strategy:   format.NullBitmap,
	}
}

// Validate checks the size codes and null strategy.
func (l Layout) Validate() error {
	if !l.CountWidth.IsValid() {
		return fmt.Errorf("count width %d: %w", l.CountWidth, errs.ErrInvalidSizeCode)
	}
	if !l.ItemWidth.IsValid() {
		return fmt.Errorf("item width %d: %w", l.ItemWidth, errs.ErrInvalidSizeCode)
	}
	if !l.Strategy.IsValid() {
		return fmt.Errorf("null strategy %d: %w", l.Strategy, errs.ErrInvalidNullStrategy)
	}

	return nil
}

// Engine returns the byte order engine selected by the layout.
func (l Layout) Engine() endian.EndianEngine {
	if l.BigEndian {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// HeaderSize returns the size of the persisted header in bytes.
func (l Layout) HeaderSize() int64 {
	return int64(l.CountWidth.Bytes())
}

// MaxCount returns the largest count the count field can hold.
func (l Layout) MaxCount() int {
	if m := l.CountWidth.Max(); m < math.MaxInt {
		return int(m) //nolint:gosec
	}

	return math.MaxInt
}

// HasBitmap reports whether a fixed-width region carries a null bitmap.
func (l Layout) HasBitmap() bool {
	return l.Nullable && l.Strategy == format.NullBitmap
}

// HasSentinel reports whether each fixed-width slot carries a marker byte.
func (l Layout) HasSentinel() bool {
	return l.Nullable && l.Strategy == format.NullSentinel
}

// BitmapSize returns ⌈count/8⌉ when the layout has a bitmap, else 0.
func (l Layout) BitmapSize(count int) int64 {
	if !l.HasBitmap() {
		return 0
	}

	return BitmapBytes(count)
}

// NullPrefix returns the reserved length prefix value that denotes a null
// variable-width element: the maximum value of ItemWidth.
func (l Layout) NullPrefix() uint64 {
	return l.ItemWidth.Max()
}

// MaxItemLength returns the largest payload a non-null variable-width element may have.
func (l Layout) MaxItemLength() int {
	if m := l.NullPrefix() - 1; m < math.MaxInt {
		return int(m) //nolint:gosec
	}

	return math.MaxInt
}

// BitmapBytes returns ⌈count/8⌉.
func BitmapBytes(count int) int64 {
	return (int64(count) + 7) / 8
}
