package blob

import (
	"database/sql"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/regular"
	"github.com/vaseug/PowerLib-sub000/section"
)

// DimEntry is one element produced by a dimensional enumeration.
type DimEntry[T any] struct {
	FlatIndex int
	Indices   []int
	Value     sql.Null[T]
}

// RegularArray is a rectangular multi-dimensional array: a shape header
// followed by a flat sequence holding the elements in row-major order.
type RegularArray[T any] struct {
	seq *Sequence[T]
	idx *regular.Indexer
}

func newShape(layout section.Layout, dims []int) (section.ShapeHeader, *regular.Indexer, error) {
	idx, err := regular.NewIndexer(dims...)
	if err != nil {
		return section.ShapeHeader{}, nil, err
	}
	for d, n := range dims {
		if n > layout.MaxCount() {
			return section.ShapeHeader{}, nil, fmt.Errorf("dimension %d length %d exceeds %s: %w",
				d, n, layout.CountWidth, errs.ErrCountOverflow)
		}
	}

	return section.ShapeHeader{Layout: layout, Dims: idx.Dims()}, idx, nil
}

// CreateRegular replaces the contents of st with an array of the given shape
// filled like Create.
func CreateRegular[T any](st Stream, codec encoding.Codec[T], dims []int, opts ...Option) (*RegularArray[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return createRegular(st, codec, cfg.layout, dims)
}

func createRegular[T any](st Stream, codec encoding.Codec[T], layout section.Layout, dims []int) (*RegularArray[T], error) {
	if st == nil {
		return nil, fmt.Errorf("stream: %w", errs.ErrNullArgument)
	}

	shape, idx, err := newShape(layout, dims)
	if err != nil {
		return nil, err
	}
	if err := st.Truncate(0); err != nil {
		return nil, err
	}
	if err := writeFull(st, shape.Bytes(), 0); err != nil {
		return nil, err
	}

	seq, err := createAt(st, shape.Size(), codec, layout, idx.FlatLength())
	if err != nil {
		return nil, err
	}

	return &RegularArray[T]{seq: seq, idx: idx}, nil
}

// BuildRegular replaces the contents of st with an array of the given shape
// holding values in row-major order. len(values) must equal the product of dims.
func BuildRegular[T any](st Stream, codec encoding.Codec[T], dims []int, values []sql.Null[T], opts ...Option) (*RegularArray[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	if _, idx, err := newShape(cfg.layout, dims); err != nil {
		return nil, err
	} else if idx.FlatLength() != len(values) {
		return nil, fmt.Errorf("%d values for shape %v: %w", len(values), dims, errs.ErrDimensionMismatch)
	}

	a, err := createRegular(st, codec, cfg.layout, dims)
	if err != nil {
		return nil, err
	}
	if err := a.seq.SetValues(At(0), values); err != nil {
		return nil, err
	}

	return a, nil
}

// OpenRegular binds to an existing array in st.
func OpenRegular[T any](st Stream, codec encoding.Codec[T], opts ...Option) (*RegularArray[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("stream: %w", errs.ErrNullArgument)
	}

	w := cfg.layout.HeaderSize()
	head := make([]byte, min(w, st.Size()))
	if err := readFull(st, head, 0); err != nil {
		return nil, err
	}
	rank, err := section.ParseRank(cfg.layout, head)
	if err != nil {
		return nil, err
	}
	if rank == 0 || int64(rank) > st.Size()/w {
		return nil, malformed("rank %d does not fit stream of %d bytes", rank, st.Size())
	}

	raw := make([]byte, section.ShapeSize(cfg.layout, rank))
	if err := readFull(st, raw, 0); err != nil {
		return nil, err
	}
	shape, err := section.ParseShapeHeader(cfg.layout, raw)
	if err != nil {
		return nil, err
	}

	idx, err := regular.NewIndexer(shape.Dims...)
	if err != nil {
		return nil, fmt.Errorf("shape %v: %w", shape.Dims, errs.ErrMalformedStream)
	}

	seq, err := openAt(st, shape.Size(), codec, cfg.layout)
	if err != nil {
		return nil, err
	}
	if seq.Count() != idx.FlatLength() {
		return nil, malformed("shape %v holds %d elements, sequence has %d", shape.Dims, idx.FlatLength(), seq.Count())
	}

	return &RegularArray[T]{seq: seq, idx: idx}, nil
}

// Flat returns the flat sequence. Its count must not be changed.
func (a *RegularArray[T]) Flat() *Sequence[T] {
	return a.seq
}

// Indexer returns the shape indexer.
func (a *RegularArray[T]) Indexer() *regular.Indexer {
	return a.idx
}

// Rank returns the number of dimensions.
func (a *RegularArray[T]) Rank() int {
	return a.idx.Rank()
}

// Dims returns a copy of the dimension lengths.
func (a *RegularArray[T]) Dims() []int {
	return a.idx.Dims()
}

// DimLength returns the length of dimension d, or -1 when d is out of range.
func (a *RegularArray[T]) DimLength(d int) int {
	return a.idx.DimLength(d)
}

// FlatLength returns the number of elements.
func (a *RegularArray[T]) FlatLength() int {
	return a.idx.FlatLength()
}

// GetFlat returns the element at a flat index.
func (a *RegularArray[T]) GetFlat(i int) (sql.Null[T], error) {
	return a.seq.Get(i)
}

// SetFlat replaces the element at a flat index.
func (a *RegularArray[T]) SetFlat(i int, v sql.Null[T]) error {
	return a.seq.Set(i, v)
}

// GetDim returns the element at the given indices.
func (a *RegularArray[T]) GetDim(indices ...int) (sql.Null[T], error) {
	flat, err := a.idx.FlatIndex(indices...)
	if err != nil {
		return sql.Null[T]{}, err
	}

	return a.seq.Get(flat)
}

// SetDim replaces the element at the given indices.
func (a *RegularArray[T]) SetDim(v sql.Null[T], indices ...int) error {
	flat, err := a.idx.FlatIndex(indices...)
	if err != nil {
		return err
	}

	return a.seq.Set(flat, v)
}

// GetDimRange copies the sub-array selected by ranges into a new in-memory array.
func (a *RegularArray[T]) GetDimRange(ranges []regular.Range) (*RegularArray[T], error) {
	return a.CopyDimRange(NewMemStream(), ranges)
}

// CopyDimRange replaces the contents of dst with the sub-array selected by ranges.
func (a *RegularArray[T]) CopyDimRange(dst Stream, ranges []regular.Range) (*RegularArray[T], error) {
	if err := a.seq.check(); err != nil {
		return nil, err
	}

	spans, err := a.idx.ResolveRanges(ranges)
	if err != nil {
		return nil, err
	}

	out, err := createRegular(dst, a.seq.codec, a.seq.r.layout, regular.SpanDims(spans))
	if err != nil {
		return nil, err
	}

	vals := make([]sql.Null[T], 0, out.FlatLength())
	for flat := range a.idx.EnumerateRangeIndex(spans) {
		v, err := a.seq.slots.get(flat)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	if err := out.seq.SetValues(At(0), vals); err != nil {
		return nil, err
	}

	return out, nil
}

// SetDimRange writes src into the block whose origin is given per dimension.
//
// An absent origin component places src against the end of that dimension.
// src must have the same rank and fit inside the array.
func (a *RegularArray[T]) SetDimRange(origin []Pos, src *RegularArray[T]) error {
	if err := a.seq.check(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("source array: %w", errs.ErrNullArgument)
	}
	if src.Rank() != a.Rank() {
		return fmt.Errorf("source rank %d, target rank %d: %w", src.Rank(), a.Rank(), errs.ErrDimensionMismatch)
	}
	if len(origin) == 0 {
		origin = make([]Pos, a.Rank())
	}
	if len(origin) != a.Rank() {
		return fmt.Errorf("%d origin components for rank %d: %w", len(origin), a.Rank(), errs.ErrDimensionMismatch)
	}

	ranges := make([]regular.Range, a.Rank())
	for d := range ranges {
		ranges[d] = regular.Range{Index: origin[d], Count: At(src.DimLength(d))}
	}
	spans, err := a.idx.ResolveRanges(ranges)
	if err != nil {
		return err
	}

	vals, err := src.seq.Values()
	if err != nil {
		return err
	}
	if err := a.seq.checkNulls(vals); err != nil {
		return err
	}

	i := 0
	for start, n := range a.runs(spans) {
		if err := a.seq.slots.replace(start, n, vals[i:i+n]); err != nil {
			return err
		}
		i += n
	}

	return nil
}

// FillDimRange writes v into every element of the sub-array selected by ranges.
func (a *RegularArray[T]) FillDimRange(ranges []regular.Range, v sql.Null[T]) error {
	if err := a.seq.check(); err != nil {
		return err
	}

	spans, err := a.idx.ResolveRanges(ranges)
	if err != nil {
		return err
	}
	if err := a.seq.checkNulls([]sql.Null[T]{v}); err != nil {
		return err
	}

	var fill []sql.Null[T]
	for start, n := range a.runs(spans) {
		for len(fill) < n {
			fill = append(fill, v)
		}
		if err := a.seq.slots.replace(start, n, fill[:n]); err != nil {
			return err
		}
	}

	return nil
}

// runs yields the flat elements selected by spans as maximal runs of
// consecutive indices, each as (start, length), in row-major order.
func (a *RegularArray[T]) runs(spans []regular.Span) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		start, n := 0, 0
		for flat := range a.idx.EnumerateRangeIndex(spans) {
			if n > 0 && flat == start+n {
				n++
				continue
			}
			if n > 0 && !yield(start, n) {
				return
			}
			start, n = flat, 1
		}
		if n > 0 {
			yield(start, n)
		}
	}
}

// EnumerateDim returns an iterator over the sub-array selected by ranges in
// row-major order. Each entry carries its own copy of the indices.
func (a *RegularArray[T]) EnumerateDim(ranges []regular.Range) iter.Seq2[DimEntry[T], error] {
	return func(yield func(DimEntry[T], error) bool) {
		if err := a.seq.check(); err != nil {
			yield(DimEntry[T]{}, err)
			return
		}

		spans, err := a.idx.ResolveRanges(ranges)
		if err != nil {
			yield(DimEntry[T]{}, err)
			return
		}

		for flat, indices := range a.idx.EnumerateRangeIndices(spans) {
			v, err := a.seq.slots.get(flat)
			e := DimEntry[T]{FlatIndex: flat, Indices: slices.Clone(indices), Value: v}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Fingerprint returns the xxHash64 of the flat sequence region.
func (a *RegularArray[T]) Fingerprint() (uint64, error) {
	return a.seq.Fingerprint()
}

// Flush writes pending header changes.
func (a *RegularArray[T]) Flush() error {
	return a.seq.Flush()
}

// Close flushes and releases the stream reference.
func (a *RegularArray[T]) Close() error {
	return a.seq.Close()
}

// ParseRegular replaces the contents of st with the array described by a
// nested literal such as {{1,2,3},{4,5,6}}. The nesting depth is the rank;
// sibling lists must have equal lengths.
func ParseRegular[T any](st Stream, codec encoding.Codec[T], text string, opts ...Option) (*RegularArray[T], error) {
	root, err := parseLiteralTree(text)
	if err != nil {
		return nil, err
	}

	var dims []int
	for n := root; n.isList; n = n.list[0] {
		dims = append(dims, len(n.list))
		if len(n.list) == 0 {
			break
		}
	}

	vals := make([]sql.Null[T], 0)
	var walk func(n literalNode, d int) error
	walk = func(n literalNode, d int) error {
		if d == len(dims) {
			v, err := parseElement(codec, n)
			if err != nil {
				return err
			}
			vals = append(vals, v)

			return nil
		}
		if !n.isList || len(n.list) != dims[d] {
			return fmt.Errorf("%w: ragged literal at depth %d, want %d elements", errs.ErrParse, d, dims[d])
		}
		for _, c := range n.list {
			if err := walk(c, d+1); err != nil {
				return err
			}
		}

		return nil
	}
	if err := walk(root, 0); err != nil {
		return nil, err
	}

	return BuildRegular(st, codec, dims, vals, opts...)
}

// FormatRegular renders the array as a nested literal accepted by ParseRegular.
func FormatRegular[T any](a *RegularArray[T]) (string, error) {
	vals, err := a.seq.Values()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	dims := a.idx.Dims()
	i := 0
	var write func(d int)
	write = func(d int) {
		sb.WriteByte('{')
		for k := range dims[d] {
			if k > 0 {
				sb.WriteByte(',')
			}
			if d == len(dims)-1 {
				writeElement(&sb, a.seq.codec, vals[i])
				i++
			} else {
				write(d + 1)
			}
		}
		sb.WriteByte('}')
	}
	write(0)

	return sb.String(), nil
}
