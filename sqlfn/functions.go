package sqlfn

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
)

// errStop ends a read early when the consumer of an enumeration stops.
var errStop = errors.New("enumeration stopped")

// Functions binds the host functions of one element kind and layout.
type Functions[T any] struct {
	codec encoding.Codec[T]
	opts  []blob.Option
}

// New binds functions for codec's kind. opts fix the layout of every blob
// the functions create or open.
func New[T any](codec encoding.Codec[T], opts ...blob.Option) *Functions[T] {
	return &Functions[T]{codec: codec, opts: opts}
}

// Codec returns the element codec.
func (f *Functions[T]) Codec() encoding.Codec[T] {
	return f.codec
}

// read opens b for a read-only call. It returns a nil sequence for a NULL blob.
func (f *Functions[T]) read(b []byte, fn func(s *blob.Sequence[T]) error) error {
	if b == nil {
		return nil
	}

	st := blob.NewMemStreamBytes(b)
	defer st.Release()

	s, err := blob.Open(st, f.codec, f.opts...)
	if err != nil {
		return err
	}

	return fn(s)
}

// mutate opens a copy of b, applies fn and returns the resulting blob.
func (f *Functions[T]) mutate(b []byte, fn func(c *blob.Collection[T]) error) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("blob: %w", errs.ErrNullArgument)
	}

	st := blob.NewMemStreamBytes(b)
	defer st.Release()

	c, err := blob.OpenCollection(st, f.codec, f.opts...)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := c.Close(); err != nil {
		return nil, err
	}

	return bytes.Clone(st.Bytes()), nil
}

// build encodes a fresh blob through fn.
func (f *Functions[T]) build(fn func(st blob.Stream) (*blob.Sequence[T], error)) ([]byte, error) {
	st := blob.NewMemStream()
	defer st.Release()

	s, err := fn(st)
	if err != nil {
		return nil, err
	}
	if err := s.Close(); err != nil {
		return nil, err
	}

	return bytes.Clone(st.Bytes()), nil
}

// Create returns a blob of count elements, null when the layout is
// nullable. A NULL count yields NULL.
func (f *Functions[T]) Create(count sql.Null[int]) ([]byte, error) {
	if !count.Valid {
		return nil, nil
	}

	return f.build(func(st blob.Stream) (*blob.Sequence[T], error) {
		return blob.Create(st, f.codec, count.V, f.opts...)
	})
}

// Build returns a blob holding vals.
func (f *Functions[T]) Build(vals []sql.Null[T]) ([]byte, error) {
	return f.build(func(st blob.Stream) (*blob.Sequence[T], error) {
		return blob.Build(st, f.codec, vals, f.opts...)
	})
}

// Parse converts a literal into a blob. A NULL string, or the literal NULL,
// yields NULL.
func (f *Functions[T]) Parse(text sql.NullString) ([]byte, error) {
	if !text.Valid || isNullLiteral(text.String) {
		return nil, nil
	}

	return f.build(func(st blob.Stream) (*blob.Sequence[T], error) {
		return blob.Parse(st, f.codec, text.String, f.opts...)
	})
}

// Format renders a blob as a literal. A NULL blob yields NULL.
func (f *Functions[T]) Format(b []byte) (sql.NullString, error) {
	var out sql.NullString
	err := f.read(b, func(s *blob.Sequence[T]) error {
		text, err := blob.Format(s)
		out = sql.NullString{String: text, Valid: err == nil}

		return err
	})

	return out, err
}

// Count returns the number of elements.
func (f *Functions[T]) Count(b []byte) (sql.Null[int], error) {
	var out sql.Null[int]
	err := f.read(b, func(s *blob.Sequence[T]) error {
		out = sql.Null[int]{V: s.Count(), Valid: true}
		return nil
	})

	return out, err
}

// Get returns one element. A NULL blob or index yields NULL.
func (f *Functions[T]) Get(b []byte, index sql.Null[int]) (sql.Null[T], error) {
	var out sql.Null[T]
	if !index.Valid {
		return out, nil
	}

	err := f.read(b, func(s *blob.Sequence[T]) error {
		v, err := s.Get(index.V)
		out = v

		return err
	})

	return out, err
}

// Set replaces one element. A NULL index leaves the blob unchanged.
func (f *Functions[T]) Set(b []byte, index sql.Null[int], v sql.Null[T]) ([]byte, error) {
	if b != nil && !index.Valid {
		return b, nil
	}

	return f.mutate(b, func(c *blob.Collection[T]) error {
		return c.Set(index.V, v)
	})
}

// IndexOf returns the index of the first element equal to v, or -1.
func (f *Functions[T]) IndexOf(b []byte, v sql.Null[T]) (sql.Null[int], error) {
	var out sql.Null[int]
	err := f.read(b, func(s *blob.Sequence[T]) error {
		i, err := s.IndexOf(v)
		out = sql.Null[int]{V: i, Valid: err == nil}

		return err
	})

	return out, err
}

// GetRange returns the resolved range as a new blob.
func (f *Functions[T]) GetRange(b []byte, index, count sql.Null[int]) ([]byte, error) {
	var out []byte
	err := f.read(b, func(s *blob.Sequence[T]) error {
		var err error
		out, err = f.build(func(st blob.Stream) (*blob.Sequence[T], error) {
			return s.CopyRange(st, index, count)
		})

		return err
	})

	return out, err
}

// SetRange writes the elements of src from index on. A NULL src leaves the
// blob unchanged.
func (f *Functions[T]) SetRange(b []byte, index sql.Null[int], src []byte) ([]byte, error) {
	if b != nil && src == nil {
		return b, nil
	}

	return f.mutate(b, func(c *blob.Collection[T]) error {
		return f.read(src, func(s *blob.Sequence[T]) error {
			return c.SetRange(index, s)
		})
	})
}

// SetRepeat writes v into every element of the resolved range.
func (f *Functions[T]) SetRepeat(b []byte, index sql.Null[int], v sql.Null[T], count sql.Null[int]) ([]byte, error) {
	return f.mutate(b, func(c *blob.Collection[T]) error {
		return c.SetRepeat(index, v, count)
	})
}

// Add appends v.
func (f *Functions[T]) Add(b []byte, v sql.Null[T]) ([]byte, error) {
	return f.mutate(b, func(c *blob.Collection[T]) error {
		return c.Add(v)
	})
}

// AddRange appends the elements of src. A NULL src leaves the blob unchanged.
func (f *Functions[T]) AddRange(b []byte, src []byte) ([]byte, error) {
	if b != nil && src == nil {
		return b, nil
	}

	return f.mutate(b, func(c *blob.Collection[T]) error {
		return f.read(src, func(s *blob.Sequence[T]) error {
			return c.AddSequence(s)
		})
	})
}

// Insert inserts v before index. A NULL index leaves the blob unchanged.
func (f *Functions[T]) Insert(b []byte, index sql.Null[int], v sql.Null[T]) ([]byte, error) {
	if b != nil && !index.Valid {
		return b, nil
	}

	return f.mutate(b, func(c *blob.Collection[T]) error {
		return c.Insert(index.V, v)
	})
}

// RemoveRange removes the resolved range.
func (f *Functions[T]) RemoveRange(b []byte, index, count sql.Null[int]) ([]byte, error) {
	return f.mutate(b, func(c *blob.Collection[T]) error {
		return c.RemoveRange(index, count)
	})
}

// Enumerate returns the rows of a table-valued function over the resolved
// range. A NULL blob yields no rows.
func (f *Functions[T]) Enumerate(b []byte, index, count sql.Null[int]) iter.Seq2[blob.Entry[T], error] {
	return func(yield func(blob.Entry[T], error) bool) {
		err := f.read(b, func(s *blob.Sequence[T]) error {
			for e, err := range s.EnumerateRange(index, count) {
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
			yield(blob.Entry[T]{}, err)
		}
	}
}

// Fingerprint returns the xxHash64 of the blob, reinterpreted as a signed
// bigint for the host.
func (f *Functions[T]) Fingerprint(b []byte) (sql.Null[int64], error) {
	var out sql.Null[int64]
	err := f.read(b, func(s *blob.Sequence[T]) error {
		sum, err := s.Fingerprint()
		out = sql.Null[int64]{V: int64(sum), Valid: err == nil} //nolint:gosec

		return err
	})

	return out, err
}

func isNullLiteral(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), blob.NullLiteral)
}
