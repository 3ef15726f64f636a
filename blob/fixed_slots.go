package blob

import (
	"database/sql"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/section"
)

const (
	sentinelNull    = 0x00
	sentinelPresent = 0x01
)

// fixedSlots stores elements of a fixed width, optionally behind a null
// bitmap or a per-element sentinel byte.
//
// Region: [bitmap: ⌈count/8⌉]? [slot: sentinel? + width] * count.
type fixedSlots[T any] struct {
	r     *region
	codec encoding.FixedCodec[T]
}

func (s *fixedSlots[T]) stride() int64 {
	w := int64(s.codec.Width())
	if s.r.layout.HasSentinel() {
		w++
	}

	return w
}

func (s *fixedSlots[T]) itemsOff(count int) int64 {
	return s.r.dataOff() + s.r.layout.BitmapSize(count)
}

func (s *fixedSlots[T]) create(count int) error {
	r := s.r
	if r.layout.HasBitmap() {
		full := int64(count / 8)
		if err := fill(r.st, r.dataOff(), full, 0xFF); err != nil {
			return err
		}
		if rem := count % 8; rem > 0 {
			if err := writeFull(r.st, []byte{byte(1<<rem) - 1}, r.dataOff()+full); err != nil {
				return err
			}
		}
	}

	// Zero slots are null under the sentinel strategy and zero values otherwise.
	return r.st.Truncate(s.itemsOff(count) + int64(count)*s.stride())
}

func (s *fixedSlots[T]) validate() error {
	r := s.r
	size := r.dataSize()
	if int64(r.count) > size/s.stride() {
		return malformed("count %d exceeds region of %d bytes", r.count, size)
	}

	want := r.layout.BitmapSize(r.count) + int64(r.count)*s.stride()
	if size != want {
		return malformed("fixed region has %d bytes, want %d for %d elements", size, want, r.count)
	}

	return nil
}

func (s *fixedSlots[T]) get(i int) (sql.Null[T], error) {
	r := s.r
	if r.layout.HasBitmap() {
		var b [1]byte
		if err := readFull(r.st, b[:], r.dataOff()+int64(i/8)); err != nil {
			return sql.Null[T]{}, err
		}
		if getBit(b[:], i%8) {
			return sql.Null[T]{}, nil
		}
	}

	stride := s.stride()
	buf := make([]byte, stride)
	if err := readFull(r.st, buf, s.itemsOff(r.count)+int64(i)*stride); err != nil {
		return sql.Null[T]{}, err
	}

	if r.layout.HasSentinel() {
		switch buf[0] {
		case sentinelNull:
			return sql.Null[T]{}, nil
		case sentinelPresent:
			buf = buf[1:]
		default:
			return sql.Null[T]{}, malformed("element %d has null marker 0x%02x", i, buf[0])
		}
	}

	v, err := s.codec.Decode(r.engine, buf)
	if err != nil {
		return sql.Null[T]{}, err
	}

	return sql.Null[T]{V: v, Valid: true}, nil
}

func (s *fixedSlots[T]) replace(at, removeN int, vals []sql.Null[T]) error {
	r := s.r
	stride := s.stride()
	sentinel := r.layout.HasSentinel()

	slots := make([]byte, int64(len(vals))*stride)
	for k, v := range vals {
		if v.Valid {
			if err := encoding.CheckValue[T](s.codec, v.V); err != nil {
				return fmt.Errorf("element %d: %w", at+k, err)
			}
		}
		p := slots[int64(k)*stride : int64(k+1)*stride]
		if sentinel {
			if !v.Valid {
				continue
			}
			p[0] = sentinelPresent
			p = p[1:]
		}
		if v.Valid {
			s.codec.Put(r.engine, p, v.V)
		}
	}

	oldCount := r.count
	off := s.itemsOff(oldCount) + int64(at)*stride
	if err := splice(r.st, off, int64(removeN)*stride, int64(len(vals))*stride); err != nil {
		return err
	}
	if err := writeFull(r.st, slots, off); err != nil {
		return err
	}

	if r.layout.HasBitmap() {
		var err error
		if removeN == len(vals) {
			err = s.writeNullBits(at, vals)
		} else {
			err = s.rebuildBitmap(oldCount, at, removeN, vals)
		}
		if err != nil {
			return err
		}
	}

	r.setCount(oldCount - removeN + len(vals))

	return nil
}

// writeNullBits updates the bitmap bytes covering [at, at+len(vals)) in place.
func (s *fixedSlots[T]) writeNullBits(at int, vals []sql.Null[T]) error {
	if len(vals) == 0 {
		return nil
	}

	r := s.r
	first := at / 8
	last := (at + len(vals) - 1) / 8
	b := make([]byte, last-first+1)
	off := r.dataOff() + int64(first)
	if err := readFull(r.st, b, off); err != nil {
		return err
	}
	for k, v := range vals {
		setBit(b, at+k-first*8, !v.Valid)
	}

	return writeFull(r.st, b, off)
}

// rebuildBitmap rewrites the bitmap after elements were inserted or removed.
// The item region has already been spliced.
func (s *fixedSlots[T]) rebuildBitmap(oldCount, at, removeN int, vals []sql.Null[T]) error {
	r := s.r
	newCount := oldCount - removeN + len(vals)

	oldBm := make([]byte, section.BitmapBytes(oldCount))
	if err := readFull(r.st, oldBm, r.dataOff()); err != nil {
		return err
	}

	newBm := make([]byte, section.BitmapBytes(newCount))
	copy(newBm, oldBm[:at/8])
	for i := at / 8 * 8; i < at; i++ {
		setBit(newBm, i, getBit(oldBm, i))
	}
	for k, v := range vals {
		setBit(newBm, at+k, !v.Valid)
	}
	shift := len(vals) - removeN
	for i := at + removeN; i < oldCount; i++ {
		setBit(newBm, i+shift, getBit(oldBm, i))
	}

	if err := splice(r.st, r.dataOff(), int64(len(oldBm)), int64(len(newBm))); err != nil {
		return err
	}

	return writeFull(r.st, newBm, r.dataOff())
}
