package blob

import (
	"database/sql"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/internal/pool"
)

// varSlots stores length-prefixed elements.
//
// Region: [prefix: ItemWidth] * count, then the payloads in element order.
// A prefix equal to ItemWidth.Max() marks a null element with no payload.
type varSlots[T any] struct {
	r     *region
	codec encoding.VariableCodec[T]

	// offs[i] is the payload offset of element i relative to the payload
	// start; offs[count] is the payload size. Nil until first needed.
	offs []int64
}

func (s *varSlots[T]) prefixWidth() int64 {
	return int64(s.r.layout.ItemWidth.Bytes())
}

func (s *varSlots[T]) payloadOff() int64 {
	return s.r.dataOff() + int64(s.r.count)*s.prefixWidth()
}

// prefixLen returns the payload length a prefix value denotes.
func (s *varSlots[T]) prefixLen(v uint64) (int64, bool, error) {
	layout := s.r.layout
	if v == layout.NullPrefix() {
		if !layout.Nullable {
			return 0, false, malformed("null prefix in a non-nullable sequence")
		}

		return 0, true, nil
	}
	if v > uint64(layout.MaxItemLength()) {
		return 0, false, malformed("item length %d exceeds %s", v, layout.ItemWidth)
	}

	return int64(v), false, nil //nolint:gosec
}

func (s *varSlots[T]) create(count int) error {
	r := s.r
	s.offs = make([]int64, count+1)
	if r.layout.Nullable {
		// A null prefix is all one bits in either byte order.
		return fill(r.st, r.dataOff(), int64(count)*s.prefixWidth(), 0xFF)
	}

	return r.st.Truncate(r.dataOff() + int64(count)*s.prefixWidth())
}

// validate scans the prefix table and rebuilds the offset table.
func (s *varSlots[T]) validate() error {
	r := s.r
	w := s.prefixWidth()
	size := r.dataSize()
	if int64(r.count) > size/w {
		return malformed("count %d exceeds region of %d bytes", r.count, size)
	}

	buf := pool.GetShiftBuffer()
	defer pool.PutShiftBuffer(buf)

	offs := make([]int64, r.count+1)
	perChunk := len(buf.B) / int(w)
	for i := 0; i < r.count; {
		m := min(perChunk, r.count-i)
		p := buf.B[:int64(m)*w]
		if err := readFull(r.st, p, r.dataOff()+int64(i)*w); err != nil {
			return err
		}
		for k := range m {
			v := endian.Sized(r.engine, r.layout.ItemWidth, p[int64(k)*w:])
			n, _, err := s.prefixLen(v)
			if err != nil {
				return fmt.Errorf("element %d: %w", i+k, err)
			}
			offs[i+k+1] = offs[i+k] + n
		}
		i += m
	}

	if payload := size - int64(r.count)*w; offs[r.count] != payload {
		return malformed("payload has %d bytes, prefixes describe %d", payload, offs[r.count])
	}
	s.offs = offs

	return nil
}

func (s *varSlots[T]) ensureOffsets() error {
	if s.offs != nil {
		return nil
	}

	return s.validate()
}

func (s *varSlots[T]) get(i int) (sql.Null[T], error) {
	if err := s.ensureOffsets(); err != nil {
		return sql.Null[T]{}, err
	}

	r := s.r
	w := s.prefixWidth()
	pb := make([]byte, w)
	if err := readFull(r.st, pb, r.dataOff()+int64(i)*w); err != nil {
		return sql.Null[T]{}, err
	}
	n, null, err := s.prefixLen(endian.Sized(r.engine, r.layout.ItemWidth, pb))
	if err != nil {
		return sql.Null[T]{}, err
	}
	if null {
		return sql.Null[T]{}, nil
	}
	if n != s.offs[i+1]-s.offs[i] {
		return sql.Null[T]{}, malformed("element %d prefix changed underneath the view", i)
	}

	payload := make([]byte, n)
	if err := readFull(r.st, payload, s.payloadOff()+s.offs[i]); err != nil {
		return sql.Null[T]{}, err
	}

	v, err := s.codec.Decode(r.engine, payload)
	if err != nil {
		return sql.Null[T]{}, err
	}

	return sql.Null[T]{V: v, Valid: true}, nil
}

func (s *varSlots[T]) replace(at, removeN int, vals []sql.Null[T]) error {
	if err := s.ensureOffsets(); err != nil {
		return err
	}

	r := s.r
	w := s.prefixWidth()
	maxLen := r.layout.MaxItemLength()

	scratch := pool.GetRegionBuffer()
	defer pool.PutRegionBuffer(scratch)

	payload := scratch.B[:0]
	prefixes := make([]byte, 0, int64(len(vals))*w)
	lens := make([]int64, len(vals))
	for k, v := range vals {
		if !v.Valid {
			prefixes = endian.AppendSized(r.engine, r.layout.ItemWidth, prefixes, r.layout.NullPrefix())
			continue
		}

		before := len(payload)
		var err error
		payload, err = s.codec.Append(r.engine, payload, v.V)
		if err != nil {
			return err
		}

		n := len(payload) - before
		if n > maxLen {
			return fmt.Errorf("element %d has %d bytes, %s allows %d: %w",
				at+k, n, r.layout.ItemWidth, maxLen, errs.ErrValueTooLarge)
		}
		prefixes = endian.AppendSized(r.engine, r.layout.ItemWidth, prefixes, uint64(n))
		lens[k] = int64(n)
	}
	scratch.B = payload

	// Payload first, while the prefix table still has its old size.
	oldStart, oldEnd := s.offs[at], s.offs[at+removeN]
	payloadAt := s.payloadOff() + oldStart
	if err := splice(r.st, payloadAt, oldEnd-oldStart, int64(len(payload))); err != nil {
		return err
	}
	if err := writeFull(r.st, payload, payloadAt); err != nil {
		return err
	}

	prefixAt := r.dataOff() + int64(at)*w
	if err := splice(r.st, prefixAt, int64(removeN)*w, int64(len(prefixes))); err != nil {
		return err
	}
	if err := writeFull(r.st, prefixes, prefixAt); err != nil {
		return err
	}

	newCount := r.count - removeN + len(vals)
	delta := int64(len(payload)) - (oldEnd - oldStart)
	offs := make([]int64, 0, newCount+1)
	offs = append(offs, s.offs[:at+1]...)
	cur := oldStart
	for _, n := range lens {
		cur += n
		offs = append(offs, cur)
	}
	for _, o := range s.offs[at+removeN+1:] {
		offs = append(offs, o+delta)
	}
	s.offs = offs
	r.setCount(newCount)

	return nil
}
