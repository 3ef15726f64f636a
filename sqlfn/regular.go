package sqlfn

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/regular"
)

// RegularFunctions binds the host functions over regular array blobs.
//
// Shapes, index vectors and per-dimension ranges cross the boundary as Int32
// sequence blobs in the default layout.
type RegularFunctions[T any] struct {
	codec encoding.Codec[T]
	opts  []blob.Option
}

// NewRegular binds regular array functions for codec's kind.
func NewRegular[T any](codec encoding.Codec[T], opts ...blob.Option) *RegularFunctions[T] {
	return &RegularFunctions[T]{codec: codec, opts: opts}
}

// Ints encodes a host integer vector, such as a shape or an index vector.
// Components outside the int32 range fail with errs.ErrIndexOutOfRange.
func Ints(vals ...int) ([]byte, error) {
	nulls := make([]sql.Null[int32], len(vals))
	for i, v := range vals {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("component %d = %d: %w", i, v, errs.ErrIndexOutOfRange)
		}
		nulls[i] = sql.Null[int32]{V: int32(v), Valid: true}
	}

	st := blob.NewMemStream()
	defer st.Release()

	s, err := blob.Build(st, encoding.Int32, nulls)
	if err != nil {
		return nil, err
	}
	if err := s.Close(); err != nil {
		return nil, err
	}

	return bytes.Clone(st.Bytes()), nil
}

// decodeInts reads an Int32 sequence blob. Null elements stay null.
func decodeInts(b []byte) ([]sql.Null[int], error) {
	st := blob.NewMemStreamBytes(b)
	defer st.Release()

	s, err := blob.Open(st, encoding.Int32)
	if err != nil {
		return nil, err
	}
	vals, err := s.Values()
	if err != nil {
		return nil, err
	}

	out := make([]sql.Null[int], len(vals))
	for i, v := range vals {
		out[i] = sql.Null[int]{V: int(v.V), Valid: v.Valid}
	}

	return out, nil
}

// decodeIndices reads an index vector. ok is false when any component is null.
func decodeIndices(b []byte) (indices []int, ok bool, err error) {
	vals, err := decodeInts(b)
	if err != nil {
		return nil, false, err
	}

	indices = make([]int, len(vals))
	for i, v := range vals {
		if !v.Valid {
			return nil, false, nil
		}
		indices[i] = v.V
	}

	return indices, true, nil
}

// decodeRanges pairs an index blob and a count blob into ranges. Null
// components, and a NULL blob, leave that part of the range absent.
func decodeRanges(rank int, index, count []byte) ([]regular.Range, error) {
	ranges := make([]regular.Range, rank)
	for part, b := range [][]byte{index, count} {
		if b == nil {
			continue
		}
		vals, err := decodeInts(b)
		if err != nil {
			return nil, err
		}
		if len(vals) != rank {
			return nil, fmt.Errorf("%d range components for rank %d: %w", len(vals), rank, errs.ErrDimensionMismatch)
		}
		for d, v := range vals {
			if part == 0 {
				ranges[d].Index = v
			} else {
				ranges[d].Count = v
			}
		}
	}

	return ranges, nil
}

func (f *RegularFunctions[T]) read(b []byte, fn func(a *blob.RegularArray[T]) error) error {
	if b == nil {
		return nil
	}

	st := blob.NewMemStreamBytes(b)
	defer st.Release()

	a, err := blob.OpenRegular(st, f.codec, f.opts...)
	if err != nil {
		return err
	}

	return fn(a)
}

func (f *RegularFunctions[T]) mutate(b []byte, fn func(a *blob.RegularArray[T]) error) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("blob: %w", errs.ErrNullArgument)
	}

	st := blob.NewMemStreamBytes(b)
	defer st.Release()

	a, err := blob.OpenRegular(st, f.codec, f.opts...)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if err := a.Close(); err != nil {
		return nil, err
	}

	return bytes.Clone(st.Bytes()), nil
}

func (f *RegularFunctions[T]) build(fn func(st blob.Stream) (*blob.RegularArray[T], error)) ([]byte, error) {
	st := blob.NewMemStream()
	defer st.Release()

	a, err := fn(st)
	if err != nil {
		return nil, err
	}
	if err := a.Close(); err != nil {
		return nil, err
	}

	return bytes.Clone(st.Bytes()), nil
}

// Create returns an array of the given shape. A NULL shape yields NULL; a
// null dimension fails with errs.ErrNullArgument.
func (f *RegularFunctions[T]) Create(dims []byte) ([]byte, error) {
	if dims == nil {
		return nil, nil
	}

	shape, ok, err := decodeIndices(dims)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("null dimension length: %w", errs.ErrNullArgument)
	}

	return f.build(func(st blob.Stream) (*blob.RegularArray[T], error) {
		return blob.CreateRegular(st, f.codec, shape, f.opts...)
	})
}

// Parse converts a nested literal into an array. NULL yields NULL.
func (f *RegularFunctions[T]) Parse(text sql.NullString) ([]byte, error) {
	if !text.Valid || isNullLiteral(text.String) {
		return nil, nil
	}

	return f.build(func(st blob.Stream) (*blob.RegularArray[T], error) {
		return blob.ParseRegular(st, f.codec, text.String, f.opts...)
	})
}

// Format renders an array as a nested literal.
func (f *RegularFunctions[T]) Format(b []byte) (sql.NullString, error) {
	var out sql.NullString
	err := f.read(b, func(a *blob.RegularArray[T]) error {
		text, err := blob.FormatRegular(a)
		out = sql.NullString{String: text, Valid: err == nil}

		return err
	})

	return out, err
}

// Rank returns the number of dimensions.
func (f *RegularFunctions[T]) Rank(b []byte) (sql.Null[int], error) {
	var out sql.Null[int]
	err := f.read(b, func(a *blob.RegularArray[T]) error {
		out = sql.Null[int]{V: a.Rank(), Valid: true}
		return nil
	})

	return out, err
}

// FlatLength returns the number of elements.
func (f *RegularFunctions[T]) FlatLength(b []byte) (sql.Null[int], error) {
	var out sql.Null[int]
	err := f.read(b, func(a *blob.RegularArray[T]) error {
		out = sql.Null[int]{V: a.FlatLength(), Valid: true}
		return nil
	})

	return out, err
}

// DimLength returns the length of dimension d. A NULL d yields NULL.
func (f *RegularFunctions[T]) DimLength(b []byte, d sql.Null[int]) (sql.Null[int], error) {
	var out sql.Null[int]
	if !d.Valid {
		return out, nil
	}

	err := f.read(b, func(a *blob.RegularArray[T]) error {
		n := a.DimLength(d.V)
		if n < 0 {
			return fmt.Errorf("dimension %d of rank %d: %w", d.V, a.Rank(), errs.ErrIndexOutOfRange)
		}
		out = sql.Null[int]{V: n, Valid: true}

		return nil
	})

	return out, err
}

// GetFlat returns the element at a flat index.
func (f *RegularFunctions[T]) GetFlat(b []byte, index sql.Null[int]) (sql.Null[T], error) {
	var out sql.Null[T]
	if !index.Valid {
		return out, nil
	}

	err := f.read(b, func(a *blob.RegularArray[T]) error {
		v, err := a.GetFlat(index.V)
		out = v

		return err
	})

	return out, err
}

// SetFlat replaces the element at a flat index.
func (f *RegularFunctions[T]) SetFlat(b []byte, index sql.Null[int], v sql.Null[T]) ([]byte, error) {
	if b != nil && !index.Valid {
		return b, nil
	}

	return f.mutate(b, func(a *blob.RegularArray[T]) error {
		return a.SetFlat(index.V, v)
	})
}

// GetDim returns the element at an index vector. A NULL vector, or one with
// a null component, yields NULL.
func (f *RegularFunctions[T]) GetDim(b []byte, indices []byte) (sql.Null[T], error) {
	var out sql.Null[T]
	if indices == nil {
		return out, nil
	}

	err := f.read(b, func(a *blob.RegularArray[T]) error {
		idx, ok, err := decodeIndices(indices)
		if err != nil || !ok {
			return err
		}
		out, err = a.GetDim(idx...)

		return err
	})

	return out, err
}

// SetDim replaces the element at an index vector. A NULL vector, or one
// with a null component, leaves the blob unchanged.
func (f *RegularFunctions[T]) SetDim(b []byte, indices []byte, v sql.Null[T]) ([]byte, error) {
	if b != nil && indices == nil {
		return b, nil
	}

	var unchanged bool
	out, err := f.mutate(b, func(a *blob.RegularArray[T]) error {
		idx, ok, err := decodeIndices(indices)
		if err != nil {
			return err
		}
		if !ok {
			unchanged = true
			return nil
		}

		return a.SetDim(v, idx...)
	})
	if unchanged {
		return b, err
	}

	return out, err
}

// GetDimRange returns the sub-array selected per dimension by the index and
// count vectors.
func (f *RegularFunctions[T]) GetDimRange(b []byte, index, count []byte) ([]byte, error) {
	var out []byte
	err := f.read(b, func(a *blob.RegularArray[T]) error {
		ranges, err := decodeRanges(a.Rank(), index, count)
		if err != nil {
			return err
		}
		out, err = f.build(func(st blob.Stream) (*blob.RegularArray[T], error) {
			return a.CopyDimRange(st, ranges)
		})

		return err
	})

	return out, err
}

// SetDimRange writes src into the block starting at origin. A NULL src
// leaves the blob unchanged; a NULL origin or null components place src
// against the end of the dimension.
func (f *RegularFunctions[T]) SetDimRange(b []byte, origin []byte, src []byte) ([]byte, error) {
	if b != nil && src == nil {
		return b, nil
	}

	return f.mutate(b, func(a *blob.RegularArray[T]) error {
		var pos []blob.Pos
		if origin != nil {
			vals, err := decodeInts(origin)
			if err != nil {
				return err
			}
			pos = vals
		}

		return f.read(src, func(s *blob.RegularArray[T]) error {
			return a.SetDimRange(pos, s)
		})
	})
}

// FillDimRange writes v into every element of the selected sub-array.
func (f *RegularFunctions[T]) FillDimRange(b []byte, index, count []byte, v sql.Null[T]) ([]byte, error) {
	return f.mutate(b, func(a *blob.RegularArray[T]) error {
		ranges, err := decodeRanges(a.Rank(), index, count)
		if err != nil {
			return err
		}

		return a.FillDimRange(ranges, v)
	})
}

// EnumerateDim returns the (flat index, index vector, value) rows of the
// sub-array selected by the index and count vectors, in row-major order.
// A NULL blob yields no rows; an error is yielded as the last row.
func (f *RegularFunctions[T]) EnumerateDim(b []byte, index, count []byte) iter.Seq2[blob.DimEntry[T], error] {
	return func(yield func(blob.DimEntry[T], error) bool) {
		err := f.read(b, func(a *blob.RegularArray[T]) error {
			ranges, err := decodeRanges(a.Rank(), index, count)
			if err != nil {
				return err
			}
			for e, err := range a.EnumerateDim(ranges) {
				if err != nil {
					return err
				}
				if !yield(e, nil) {
					return errStop
				}
			}

			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(blob.DimEntry[T]{}, err)
		}
	}
}
