package blob

import (
	"database/sql"
	"fmt"
	"iter"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/internal/hash"
	"github.com/vaseug/PowerLib-sub000/internal/pool"
	"github.com/vaseug/PowerLib-sub000/section"
)

// batchSize bounds the number of elements buffered in memory when values
// are copied between sequences.
const batchSize = 1024

// Entry is one element produced by an enumeration.
type Entry[T any] struct {
	Index int
	Value sql.Null[T]
}

// Sequence is a view over a streamed sequence of elements of type T.
//
// The view exclusively owns its stream region while it is open. Reads decode
// element bytes on every call; the element count is kept in memory and
// written to the stream by Flush and Close.
type Sequence[T any] struct {
	r      *region
	codec  encoding.Codec[T]
	slots  slotter[T]
	closed bool
}

func newSequence[T any](st Stream, base int64, codec encoding.Codec[T], layout section.Layout) (*Sequence[T], error) {
	if st == nil {
		return nil, fmt.Errorf("stream: %w", errs.ErrNullArgument)
	}

	r := newRegion(st, base, layout)
	slots, err := newSlotter(r, codec)
	if err != nil {
		return nil, err
	}

	return &Sequence[T]{r: r, codec: codec, slots: slots}, nil
}

func createAt[T any](st Stream, base int64, codec encoding.Codec[T], layout section.Layout, length int) (*Sequence[T], error) {
	if length < 0 {
		return nil, fmt.Errorf("length %d: %w", length, errs.ErrIndexOutOfRange)
	}
	if length > layout.MaxCount() {
		return nil, fmt.Errorf("length %d exceeds %s: %w", length, layout.CountWidth, errs.ErrCountOverflow)
	}

	s, err := newSequence(st, base, codec, layout)
	if err != nil {
		return nil, err
	}

	if err := st.Truncate(s.r.dataOff()); err != nil {
		return nil, err
	}
	s.r.count = length
	if err := s.r.writeHeader(); err != nil {
		return nil, err
	}
	if err := s.slots.create(length); err != nil {
		return nil, err
	}

	return s, nil
}

func openAt[T any](st Stream, base int64, codec encoding.Codec[T], layout section.Layout) (*Sequence[T], error) {
	s, err := newSequence(st, base, codec, layout)
	if err != nil {
		return nil, err
	}
	if err := s.r.readHeader(); err != nil {
		return nil, err
	}
	if err := s.slots.validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Create replaces the contents of st with a sequence of length elements.
//
// Elements are null, or the zero value of the kind when the sequence is not
// nullable. It fails with errs.ErrIndexOutOfRange when length < 0.
func Create[T any](st Stream, codec encoding.Codec[T], length int, opts ...Option) (*Sequence[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return createAt(st, 0, codec, cfg.layout, length)
}

// Build replaces the contents of st with a sequence holding values.
func Build[T any](st Stream, codec encoding.Codec[T], values []sql.Null[T], opts ...Option) (*Sequence[T], error) {
	s, err := Create(st, codec, 0, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.insert(0, values); err != nil {
		return nil, err
	}

	return s, nil
}

// BuildSeq replaces the contents of st with a sequence holding the values
// produced by seq, appended in batches.
func BuildSeq[T any](st Stream, codec encoding.Codec[T], seq iter.Seq[sql.Null[T]], opts ...Option) (*Sequence[T], error) {
	s, err := Create(st, codec, 0, opts...)
	if err != nil {
		return nil, err
	}

	batch := make([]sql.Null[T], 0, batchSize)
	for v := range seq {
		batch = append(batch, v)
		if len(batch) == batchSize {
			if err := s.insert(s.r.count, batch); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}
	if err := s.insert(s.r.count, batch); err != nil {
		return nil, err
	}

	return s, nil
}

// Open binds to an existing sequence in st. The options must describe the
// layout the sequence was created with.
//
// The header and region are checked against the stream size; an
// inconsistent stream fails with errs.ErrMalformedStream.
func Open[T any](st Stream, codec encoding.Codec[T], opts ...Option) (*Sequence[T], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return openAt(st, 0, codec, cfg.layout)
}

func (s *Sequence[T]) check() error {
	if s.closed {
		return errs.ErrClosed
	}

	return nil
}

// Count returns the number of elements.
func (s *Sequence[T]) Count() int {
	return s.r.count
}

// Layout returns the layout the sequence was created or opened with.
func (s *Sequence[T]) Layout() section.Layout {
	return s.r.layout
}

// Codec returns the element codec.
func (s *Sequence[T]) Codec() encoding.Codec[T] {
	return s.codec
}

// Stream returns the stream the sequence is bound to, or nil after Close.
func (s *Sequence[T]) Stream() Stream {
	if s.closed {
		return nil
	}

	return s.r.st
}

// Size returns the encoded size of the sequence in bytes.
func (s *Sequence[T]) Size() int64 {
	if s.closed {
		return 0
	}

	return s.r.st.Size() - s.r.base
}

// Get returns element i.
func (s *Sequence[T]) Get(i int) (sql.Null[T], error) {
	if err := s.check(); err != nil {
		return sql.Null[T]{}, err
	}
	if err := checkIndex(i, s.r.count); err != nil {
		return sql.Null[T]{}, err
	}

	return s.slots.get(i)
}

// Set replaces element i.
func (s *Sequence[T]) Set(i int, v sql.Null[T]) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := checkIndex(i, s.r.count); err != nil {
		return err
	}

	return s.replace(i, 1, []sql.Null[T]{v})
}

// IndexOf returns the index of the first element equal to v, or -1.
// A null v matches the first null element.
func (s *Sequence[T]) IndexOf(v sql.Null[T]) (int, error) {
	if err := s.check(); err != nil {
		return -1, err
	}

	for i := range s.r.count {
		e, err := s.slots.get(i)
		if err != nil {
			return -1, err
		}
		if s.equal(e, v) {
			return i, nil
		}
	}

	return -1, nil
}

func (s *Sequence[T]) equal(a, b sql.Null[T]) bool {
	if a.Valid != b.Valid {
		return false
	}

	return !a.Valid || s.codec.Equal(a.V, b.V)
}

// GetRange copies the resolved range into a new in-memory sequence with the
// same layout.
func (s *Sequence[T]) GetRange(index, count Pos) (*Sequence[T], error) {
	return s.CopyRange(NewMemStream(), index, count)
}

// CopyRange replaces the contents of dst with the resolved range, encoded
// with the same layout.
func (s *Sequence[T]) CopyRange(dst Stream, index, count Pos) (*Sequence[T], error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	at, n, err := ResolveRange(s.r.count, index, count)
	if err != nil {
		return nil, err
	}

	out, err := createAt(dst, 0, s.codec, s.r.layout, 0)
	if err != nil {
		return nil, err
	}
	if err := out.copyFrom(s, at, n, 0, 0); err != nil {
		return nil, err
	}
	if err := out.Flush(); err != nil {
		return nil, err
	}

	return out, nil
}

// SetRange writes the elements of src starting at the resolved index.
//
// An absent index writes src over the last src.Count() elements. Elements
// that fall past the end of the sequence are appended, so index may equal
// Count.
func (s *Sequence[T]) SetRange(index Pos, src *Sequence[T]) error {
	if err := s.check(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("source sequence: %w", errs.ErrNullArgument)
	}
	if err := src.check(); err != nil {
		return err
	}

	at, err := s.resolveWrite(index, src.r.count)
	if err != nil {
		return err
	}

	if src == s {
		vals, err := s.Values()
		if err != nil {
			return err
		}

		return s.writeAt(at, vals)
	}

	return s.copyFrom(src, 0, src.r.count, at, min(src.r.count, s.r.count-at))
}

// SetValues writes vals starting at the resolved index, like SetRange.
func (s *Sequence[T]) SetValues(index Pos, vals []sql.Null[T]) error {
	if err := s.check(); err != nil {
		return err
	}

	at, err := s.resolveWrite(index, len(vals))
	if err != nil {
		return err
	}

	return s.writeAt(at, vals)
}

func (s *Sequence[T]) resolveWrite(index Pos, n int) (int, error) {
	at := s.r.count - n
	if index.Valid {
		at = index.V
	}
	if at < 0 || at > s.r.count {
		return 0, fmt.Errorf("index %d outside [0, %d]: %w", at, s.r.count, errs.ErrIndexOutOfRange)
	}

	return at, nil
}

// writeAt overwrites from at, appending whatever falls past the end.
func (s *Sequence[T]) writeAt(at int, vals []sql.Null[T]) error {
	return s.replace(at, min(len(vals), s.r.count-at), vals)
}

// SetRepeat writes v into every element of the resolved range.
func (s *Sequence[T]) SetRepeat(index Pos, v sql.Null[T], count Pos) error {
	if err := s.check(); err != nil {
		return err
	}

	at, n, err := ResolveRange(s.r.count, index, count)
	if err != nil {
		return err
	}
	if err := s.checkNulls([]sql.Null[T]{v}); err != nil {
		return err
	}

	batch := make([]sql.Null[T], min(n, batchSize))
	for i := range batch {
		batch[i] = v
	}
	for done := 0; done < n; {
		m := min(len(batch), n-done)
		if err := s.slots.replace(at+done, m, batch[:m]); err != nil {
			return err
		}
		done += m
	}

	return nil
}

// copyFrom reads n elements of src from srcAt and writes them at dstAt,
// replacing removeN elements of s in total. removeN <= n.
func (s *Sequence[T]) copyFrom(src *Sequence[T], srcAt, n, dstAt, removeN int) error {
	batch := make([]sql.Null[T], 0, min(n, batchSize))
	for done := 0; done < n; {
		m := min(batchSize, n-done)
		batch = batch[:0]
		for i := range m {
			v, err := src.slots.get(srcAt + done + i)
			if err != nil {
				return err
			}
			batch = append(batch, v)
		}

		rm := min(m, max(removeN-done, 0))
		if err := s.replace(dstAt+done, rm, batch); err != nil {
			return err
		}
		done += m
	}

	return nil
}

// EnumerateRange returns an iterator over the resolved range.
//
// The range is resolved each time iteration starts. A resolution or decode
// error is yielded once and ends the iteration.
func (s *Sequence[T]) EnumerateRange(index, count Pos) iter.Seq2[Entry[T], error] {
	return func(yield func(Entry[T], error) bool) {
		if err := s.check(); err != nil {
			yield(Entry[T]{}, err)
			return
		}

		at, n, err := ResolveRange(s.r.count, index, count)
		if err != nil {
			yield(Entry[T]{}, err)
			return
		}

		for i := at; i < at+n; i++ {
			v, err := s.slots.get(i)
			if err != nil {
				yield(Entry[T]{Index: i}, err)
				return
			}
			if !yield(Entry[T]{Index: i, Value: v}, nil) {
				return
			}
		}
	}
}

// All returns an iterator over every element.
func (s *Sequence[T]) All() iter.Seq2[Entry[T], error] {
	return s.EnumerateRange(Absent, Absent)
}

// Values decodes every element into a slice.
func (s *Sequence[T]) Values() ([]sql.Null[T], error) {
	out := make([]sql.Null[T], 0, s.r.count)
	for e, err := range s.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, e.Value)
	}

	return out, nil
}

// ToCollection returns a growable view over the same bytes.
// The sequence must not be used separately afterwards.
func (s *Sequence[T]) ToCollection() *Collection[T] {
	return &Collection[T]{Sequence: s}
}

// Fingerprint returns the xxHash64 of the encoded sequence. Pending count
// changes are flushed first.
func (s *Sequence[T]) Fingerprint() (uint64, error) {
	if err := s.Flush(); err != nil {
		return 0, err
	}

	buf := pool.GetShiftBuffer()
	defer pool.PutShiftBuffer(buf)

	d := hash.NewDigest()
	end := s.r.st.Size()
	for off := s.r.base; off < end; {
		p := buf.B[:min(int64(len(buf.B)), end-off)]
		if err := readFull(s.r.st, p, off); err != nil {
			return 0, err
		}
		d.Write(p)
		off += int64(len(p))
	}

	return d.Sum64(), nil
}

// Flush writes a pending count change to the stream.
func (s *Sequence[T]) Flush() error {
	if err := s.check(); err != nil {
		return err
	}
	if !s.r.dirty {
		return nil
	}

	return s.r.writeHeader()
}

// Close flushes the count and releases the stream reference. The stream
// itself is not closed. Closing twice is a no-op.
func (s *Sequence[T]) Close() error {
	if s.closed {
		return nil
	}

	err := s.Flush()
	s.closed = true
	s.r.st = nil

	return err
}

func (s *Sequence[T]) checkNulls(vals []sql.Null[T]) error {
	if s.r.layout.Nullable {
		return nil
	}
	for i, v := range vals {
		if !v.Valid {
			return fmt.Errorf("value %d: %w", i, errs.ErrNullNotAllowed)
		}
	}

	return nil
}

func (s *Sequence[T]) insert(at int, vals []sql.Null[T]) error {
	return s.replace(at, 0, vals)
}

func (s *Sequence[T]) replace(at, removeN int, vals []sql.Null[T]) error {
	if removeN == 0 && len(vals) == 0 {
		return nil
	}
	if err := s.checkNulls(vals); err != nil {
		return err
	}
	if newCount := s.r.count - removeN + len(vals); newCount > s.r.layout.MaxCount() {
		return fmt.Errorf("count %d exceeds %s: %w", newCount, s.r.layout.CountWidth, errs.ErrCountOverflow)
	}

	return s.slots.replace(at, removeN, vals)
}
