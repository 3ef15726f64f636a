package blob

import (
	"database/sql"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/section"
)

// region is the untyped part of a sequence view: where the sequence lives in
// its stream, how it is laid out and how many elements it holds.
//
// The sequence occupies the stream from base to its end.
type region struct {
	st     Stream
	base   int64
	layout section.Layout
	engine endian.EndianEngine
	count  int
	dirty  bool // count differs from the persisted header
}

func newRegion(st Stream, base int64, layout section.Layout) *region {
	return &region{
		st:     st,
		base:   base,
		layout: layout,
		engine: layout.Engine(),
	}
}

// dataOff returns the stream offset right after the count header.
func (r *region) dataOff() int64 {
	return r.base + r.layout.HeaderSize()
}

// dataSize returns the number of bytes after the count header.
func (r *region) dataSize() int64 {
	return r.st.Size() - r.dataOff()
}

func (r *region) readHeader() error {
	buf := make([]byte, r.layout.HeaderSize())
	if err := readFull(r.st, buf, r.base); err != nil {
		return err
	}

	h, err := section.ParseSequenceHeader(r.layout, buf)
	if err != nil {
		return err
	}
	r.count = h.Count
	r.dirty = false

	return nil
}

func (r *region) writeHeader() error {
	h, err := section.NewSequenceHeader(r.layout, r.count)
	if err != nil {
		return err
	}
	if err := writeFull(r.st, h.Bytes(), r.base); err != nil {
		return err
	}
	r.dirty = false

	return nil
}

func (r *region) setCount(n int) {
	if n != r.count {
		r.count = n
		r.dirty = true
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, errs.ErrMalformedStream)...)
}

// slotter implements element storage for one layout.
type slotter[T any] interface {
	// create lays out count null (or zero, when not nullable) elements after
	// the header. The stream ends at the header when it is called.
	create(count int) error

	// validate checks the region against the count and the stream size.
	validate() error

	// get decodes element i, which is known to be in range.
	get(i int) (sql.Null[T], error)

	// replace replaces removeN elements at index at with vals and updates the count.
	replace(at, removeN int, vals []sql.Null[T]) error
}

func newSlotter[T any](r *region, codec encoding.Codec[T]) (slotter[T], error) {
	if _, ok := any(codec).(encoding.BitCodec); ok {
		if s, ok := any(&bitSlots{r: r}).(slotter[T]); ok {
			return s, nil
		}
	}
	if fc, ok := codec.(encoding.FixedCodec[T]); ok {
		return &fixedSlots[T]{r: r, codec: fc}, nil
	}
	if vc, ok := codec.(encoding.VariableCodec[T]); ok {
		return &varSlots[T]{r: r, codec: vc}, nil
	}

	return nil, fmt.Errorf("codec for %s has no known layout: %w", codec.Kind(), errs.ErrKindMismatch)
}

func getBit(b []byte, i int) bool {
	return b[i/8]&(1<<(i%8)) != 0
}

func setBit(b []byte, i int, v bool) {
	if v {
		b[i/8] |= 1 << (i % 8)
	} else {
		b[i/8] &^= 1 << (i % 8)
	}
}
