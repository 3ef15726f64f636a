package blob

import (
	"database/sql"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
)

// Collection is a growable sequence. It shares the byte layout of Sequence
// and adds insertion and removal; the stream grows and shrinks with it.
type Collection[T any] struct {
	*Sequence[T]
}

// NewCollection replaces the contents of st with an empty collection.
func NewCollection[T any](st Stream, codec encoding.Codec[T], opts ...Option) (*Collection[T], error) {
	s, err := Create(st, codec, 0, opts...)
	if err != nil {
		return nil, err
	}

	return s.ToCollection(), nil
}

// OpenCollection binds a collection to an existing sequence in st.
func OpenCollection[T any](st Stream, codec encoding.Codec[T], opts ...Option) (*Collection[T], error) {
	s, err := Open(st, codec, opts...)
	if err != nil {
		return nil, err
	}

	return s.ToCollection(), nil
}

// Reserve hints that n more elements will be added. Only streams with a
// Grow(int) method, such as MemStream, use the hint.
func (c *Collection[T]) Reserve(n int) {
	g, ok := c.r.st.(interface{ Grow(n int) })
	if !ok || n <= 0 {
		return
	}

	var per int64 = 1
	switch sl := c.slots.(type) {
	case *fixedSlots[T]:
		per = sl.stride()
	case *varSlots[T]:
		per = sl.prefixWidth()
	}
	g.Grow(int(per*int64(n) + c.r.layout.BitmapSize(n)))
}

// Add appends v.
func (c *Collection[T]) Add(v sql.Null[T]) error {
	return c.AddRange(v)
}

// AddRange appends vals in order.
func (c *Collection[T]) AddRange(vals ...sql.Null[T]) error {
	if err := c.check(); err != nil {
		return err
	}

	return c.insert(c.r.count, vals)
}

// AddSequence appends every element of src.
func (c *Collection[T]) AddSequence(src *Sequence[T]) error {
	return c.SetRange(At(c.Count()), src)
}

// Insert inserts v before element i. i may equal Count.
func (c *Collection[T]) Insert(i int, v sql.Null[T]) error {
	return c.InsertRange(i, v)
}

// InsertRange inserts vals before element i. i may equal Count.
func (c *Collection[T]) InsertRange(i int, vals ...sql.Null[T]) error {
	if err := c.check(); err != nil {
		return err
	}
	if i < 0 || i > c.r.count {
		return fmt.Errorf("insert index %d outside [0, %d]: %w", i, c.r.count, errs.ErrIndexOutOfRange)
	}

	return c.insert(i, vals)
}

// RemoveAt removes element i.
func (c *Collection[T]) RemoveAt(i int) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := checkIndex(i, c.r.count); err != nil {
		return err
	}

	return c.replace(i, 1, nil)
}

// RemoveRange removes the resolved range.
func (c *Collection[T]) RemoveRange(index, count Pos) error {
	if err := c.check(); err != nil {
		return err
	}

	at, n, err := ResolveRange(c.r.count, index, count)
	if err != nil {
		return err
	}

	return c.replace(at, n, nil)
}

// Clear removes every element.
func (c *Collection[T]) Clear() error {
	return c.RemoveRange(Absent, Absent)
}
