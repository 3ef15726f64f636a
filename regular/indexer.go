// Package regular maps between multi-dimensional indices and flat indices
// of a row-major rectangular array.
//
// For dimension lengths len[0..rank), the strides are
//
//	stride[rank-1] = 1
//	stride[d]      = stride[d+1] * len[d+1]
//
// and the flat index of indices idx is Σ idx[d]·stride[d]. The last dimension
// varies fastest.
//
//	x, err := regular.NewIndexer(2, 3)
//	flat, err := x.FlatIndex(1, 2) // 5
//	idx, err := x.DimIndices(5)    // [1 2]
package regular

import (
	"database/sql"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/vaseug/PowerLib-sub000/errs"
)

// Indexer holds the shape and strides of a regular array. It is immutable.
type Indexer struct {
	dims    []int
	strides []int
	length  int
}

// NewIndexer builds an indexer for the given dimension lengths.
//
// The rank must be at least 1 and every length non-negative; the flat
// length must fit in an int.
func NewIndexer(dims ...int) (*Indexer, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("rank 0: %w", errs.ErrDimensionMismatch)
	}

	x := &Indexer{
		dims:    slices.Clone(dims),
		strides: make([]int, len(dims)),
		length:  1,
	}

	for d := len(dims) - 1; d >= 0; d-- {
		n := dims[d]
		if n < 0 {
			return nil, fmt.Errorf("dimension %d length %d: %w", d, n, errs.ErrIndexOutOfRange)
		}
		x.strides[d] = x.length
		if n > 0 && x.length > math.MaxInt/n {
			return nil, fmt.Errorf("shape %v overflows flat length: %w", dims, errs.ErrCountOverflow)
		}
		x.length *= n
	}

	return x, nil
}

// Rank returns the number of dimensions.
func (x *Indexer) Rank() int {
	return len(x.dims)
}

// Dims returns a copy of the dimension lengths.
func (x *Indexer) Dims() []int {
	return slices.Clone(x.dims)
}

// DimLength returns the length of dimension d, or -1 when d is out of range.
func (x *Indexer) DimLength(d int) int {
	if d < 0 || d >= len(x.dims) {
		return -1
	}

	return x.dims[d]
}

// Stride returns the stride of dimension d.
func (x *Indexer) Stride(d int) int {
	return x.strides[d]
}

// FlatLength returns the number of elements, the product of all dimension lengths.
func (x *Indexer) FlatLength() int {
	return x.length
}

// FlatIndex returns the flat index of an element.
//
// It fails with errs.ErrDimensionMismatch when len(indices) differs from the
// rank and with errs.ErrIndexOutOfRange when a component is outside its
// dimension.
func (x *Indexer) FlatIndex(indices ...int) (int, error) {
	if len(indices) != len(x.dims) {
		return 0, fmt.Errorf("%d indices for rank %d: %w", len(indices), len(x.dims), errs.ErrDimensionMismatch)
	}

	flat := 0
	for d, i := range indices {
		if i < 0 || i >= x.dims[d] {
			return 0, fmt.Errorf("index %d outside dimension %d of length %d: %w", i, d, x.dims[d], errs.ErrIndexOutOfRange)
		}
		flat += i * x.strides[d]
	}

	return flat, nil
}

// DimIndices inverts FlatIndex.
func (x *Indexer) DimIndices(flat int) ([]int, error) {
	indices := make([]int, len(x.dims))
	if err := x.DimIndicesInto(flat, indices); err != nil {
		return nil, err
	}

	return indices, nil
}

// DimIndicesInto is DimIndices writing into dst, which must have Rank elements.
func (x *Indexer) DimIndicesInto(flat int, dst []int) error {
	if len(dst) != len(x.dims) {
		return fmt.Errorf("%d indices for rank %d: %w", len(dst), len(x.dims), errs.ErrDimensionMismatch)
	}
	if flat < 0 || flat >= x.length {
		return fmt.Errorf("flat index %d outside [0, %d): %w", flat, x.length, errs.ErrIndexOutOfRange)
	}

	for d, stride := range x.strides {
		dst[d] = flat / stride
		flat %= stride
	}

	return nil
}

// Range selects part of one dimension with the default-resolution rule:
// an absent Index takes the last Count elements, an absent Count runs to
// the end, and both absent select the whole dimension.
type Range struct {
	Index sql.Null[int]
	Count sql.Null[int]
}

// Whole selects an entire dimension.
var Whole Range

// Span is a resolved Range.
type Span struct {
	Start int
	Count int
}

// ResolveRanges resolves one Range per dimension against the shape.
// An empty ranges slice selects the whole array.
func (x *Indexer) ResolveRanges(ranges []Range) ([]Span, error) {
	if len(ranges) == 0 {
		ranges = make([]Range, len(x.dims))
	}
	if len(ranges) != len(x.dims) {
		return nil, fmt.Errorf("%d ranges for rank %d: %w", len(ranges), len(x.dims), errs.ErrDimensionMismatch)
	}

	spans := make([]Span, len(ranges))
	for d, r := range ranges {
		total := x.dims[d]
		var start, count int
		switch {
		case !r.Index.Valid && !r.Count.Valid:
			start, count = 0, total
		case !r.Index.Valid:
			start, count = total-r.Count.V, r.Count.V
		case !r.Count.Valid:
			start, count = r.Index.V, total-r.Index.V
		default:
			start, count = r.Index.V, r.Count.V
		}
		if start < 0 || count < 0 || start > total || count > total-start {
			return nil, fmt.Errorf("dimension %d range [%d, %d+%d) outside [0, %d]: %w",
				d, start, start, count, total, errs.ErrIndexOutOfRange)
		}
		spans[d] = Span{Start: start, Count: count}
	}

	return spans, nil
}

// EnumerateRangeIndex yields the flat indices of the Cartesian product of
// spans in row-major order. Spans must come from ResolveRanges.
func (x *Indexer) EnumerateRangeIndex(spans []Span) iter.Seq[int] {
	return func(yield func(int) bool) {
		for flat := range x.EnumerateRangeIndices(spans) {
			if !yield(flat) {
				return
			}
		}
	}
}

// EnumerateRangeIndices is EnumerateRangeIndex also yielding the indices of
// each element. The indices slice is reused between steps.
func (x *Indexer) EnumerateRangeIndices(spans []Span) iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		if len(spans) != len(x.dims) {
			return
		}
		for _, s := range spans {
			if s.Count == 0 {
				return
			}
		}

		indices := make([]int, len(spans))
		flat := 0
		for d, s := range spans {
			indices[d] = s.Start
			flat += s.Start * x.strides[d]
		}

		last := len(spans) - 1
		for {
			if !yield(flat, indices) {
				return
			}

			// Odometer step: bump the last dimension, carrying leftwards.
			d := last
			for ; d >= 0; d-- {
				indices[d]++
				flat += x.strides[d]
				if indices[d] < spans[d].Start+spans[d].Count {
					break
				}
				flat -= spans[d].Count * x.strides[d]
				indices[d] = spans[d].Start
			}
			if d < 0 {
				return
			}
		}
	}
}

// SpanDims returns the dimension lengths of the sub-array selected by spans.
func SpanDims(spans []Span) []int {
	dims := make([]int, len(spans))
	for d, s := range spans {
		dims[d] = s.Count
	}

	return dims
}
