// Package powerlib stores typed, nullable arrays as self-describing binary
// blobs that a database can keep in a single varbinary column.
//
// A blob is a count followed by a null region and a slot region. Elements are
// addressed by position, so reads and writes touch only the bytes they need
// and the whole blob never has to be decoded.
//
// # Core Features
//
//   - Fixed and variable width element codecs for numeric, temporal, GUID,
//     range, text, binary, big integer and decimal kinds
//   - Null bitmaps or sentinel bytes for fixed slots, length prefixes for variable ones
//   - Configurable count and item widths from 8 to 64 bits
//   - Little or big endian layouts
//   - Range operations with default resolution of missing index and count
//   - Growable collections with insert, remove and append
//   - Regular (multi-dimensional) arrays with per-dimension range slicing
//   - Aggregate accumulators with a checksummed, optionally compressed,
//     transferable state
//
// # Basic Usage
//
// Building a nullable int32 array:
//
//	seq, err := powerlib.BuildSequence(encoding.Int32, []sql.Null[int32]{
//	    {V: 1, Valid: true},
//	    {},
//	    {V: 3, Valid: true},
//	})
//	if err != nil {
//	    return err
//	}
//	text, _ := blob.Format(seq) // {1,NULL,3}
//
// Reading an existing blob:
//
//	seq, err := powerlib.OpenSequence(encoding.Int32, data)
//	v, err := seq.Get(2)
//
// Working with a 2x3 regular array:
//
//	arr, err := powerlib.NewRegularArray(encoding.Float64, 2, 3)
//	err = arr.SetDim(sql.Null[float64]{V: 1.5, Valid: true}, 1, 2)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the blob,
// regular and aggregate packages. The wrappers always use an in-memory
// stream; use the blob package directly to work over files or custom
// streams.
//
//   - blob: streams, sequences, collections, regular arrays and literals
//   - encoding: element codecs
//   - format: size codes, null strategies, kinds and compression types
//   - regular: the dimension indexer
//   - aggregate: accumulators and the state envelope
//   - sqlfn: blob-in, blob-out functions with SQL NULL semantics
//   - compress: state compression codecs
package powerlib

import (
	"database/sql"

	"github.com/vaseug/PowerLib-sub000/aggregate"
	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/format"
	"github.com/vaseug/PowerLib-sub000/internal/hash"
)

// compactOptions select the smallest layout: 8-bit counts and item lengths.
var compactOptions = []blob.Option{
	blob.WithCountWidth(format.Size8),
	blob.WithItemWidth(format.Size8),
}

// NewSequence creates a sequence of length null elements in memory.
//
// Available options:
//   - blob.WithCountWidth(format.Size8|Size16|Size32|Size64)
//   - blob.WithItemWidth(format.Size8|Size16|Size32|Size64)
//   - blob.WithNullable(true|false)
//   - blob.WithNullStrategy(format.NullBitmap|NullSentinel)
//   - blob.WithLittleEndian() / blob.WithBigEndian()
//
// Non-nullable sequences are filled with the codec's zero value instead.
func NewSequence[T any](codec encoding.Codec[T], length int, opts ...blob.Option) (*blob.Sequence[T], error) {
	return blob.Create(blob.NewMemStream(), codec, length, opts...)
}

// BuildSequence creates an in-memory sequence holding values.
func BuildSequence[T any](codec encoding.Codec[T], values []sql.Null[T], opts ...blob.Option) (*blob.Sequence[T], error) {
	return blob.Build(blob.NewMemStream(), codec, values, opts...)
}

// BuildCompactSequence creates an in-memory sequence with 8-bit count and
// item widths. It fails with errs.ErrCountOverflow or errs.ErrValueTooLarge
// when values do not fit.
func BuildCompactSequence[T any](codec encoding.Codec[T], values []sql.Null[T]) (*blob.Sequence[T], error) {
	return blob.Build(blob.NewMemStream(), codec, values, compactOptions...)
}

// OpenSequence opens the blob data. The data is copied, so later writes
// through the sequence never modify the caller's slice.
func OpenSequence[T any](codec encoding.Codec[T], data []byte, opts ...blob.Option) (*blob.Sequence[T], error) {
	return blob.Open(blob.NewMemStreamBytes(clone(data)), codec, opts...)
}

// ParseSequence parses a literal such as {1,NULL,3} into an in-memory sequence.
func ParseSequence[T any](codec encoding.Codec[T], text string, opts ...blob.Option) (*blob.Sequence[T], error) {
	return blob.Parse(blob.NewMemStream(), codec, text, opts...)
}

// NewCollection creates an empty, growable in-memory collection.
func NewCollection[T any](codec encoding.Codec[T], opts ...blob.Option) (*blob.Collection[T], error) {
	return blob.NewCollection(blob.NewMemStream(), codec, opts...)
}

// OpenCollection opens a copy of data as a growable collection.
func OpenCollection[T any](codec encoding.Codec[T], data []byte, opts ...blob.Option) (*blob.Collection[T], error) {
	return blob.OpenCollection(blob.NewMemStreamBytes(clone(data)), codec, opts...)
}

// NewRegularArray creates an in-memory regular array with the given
// dimension lengths. Every element starts as null.
func NewRegularArray[T any](codec encoding.Codec[T], dims ...int) (*blob.RegularArray[T], error) {
	return blob.CreateRegular(blob.NewMemStream(), codec, dims)
}

// OpenRegularArray opens a copy of data as a regular array.
func OpenRegularArray[T any](codec encoding.Codec[T], data []byte, opts ...blob.Option) (*blob.RegularArray[T], error) {
	return blob.OpenRegular(blob.NewMemStreamBytes(clone(data)), codec, opts...)
}

// NewAccumulator creates an uninitialized aggregate accumulator.
//
// Available options:
//   - aggregate.WithStateCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - aggregate.WithSequenceOptions(blob options...)
func NewAccumulator[T any](codec encoding.Codec[T], opts ...aggregate.Option) (*aggregate.Accumulator[T], error) {
	return aggregate.New(codec, opts...)
}

// Checksum returns the xxHash64 of a raw blob. For a sequence stored at the
// start of data it equals the sequence's Fingerprint.
func Checksum(data []byte) uint64 {
	return hash.Checksum(data)
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	return out
}
