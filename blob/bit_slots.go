package blob

import "database/sql"

const (
	bitValue = 0b01
	bitNull  = 0b10
)

// bitSlots packs booleans two bits per element: bit 2i holds the value and
// bit 2i+1 marks a null. The null strategy does not apply.
type bitSlots struct {
	r *region
}

func bitRegionBytes(count int) int64 {
	return (int64(count) + 3) / 4
}

func getPair(b []byte, j int) byte {
	return (b[j/4] >> ((j % 4) * 2)) & 0b11
}

func setPair(b []byte, j int, p byte) {
	sh := (j % 4) * 2
	b[j/4] = b[j/4]&^(0b11<<sh) | p<<sh
}

func pairOf(v sql.Null[bool]) byte {
	switch {
	case !v.Valid:
		return bitNull
	case v.V:
		return bitValue
	default:
		return 0
	}
}

func (s *bitSlots) create(count int) error {
	r := s.r
	if !r.layout.Nullable {
		return r.st.Truncate(r.dataOff() + bitRegionBytes(count))
	}

	full := int64(count / 4)
	if err := fill(r.st, r.dataOff(), full, 0xAA); err != nil {
		return err
	}
	if rem := count % 4; rem > 0 {
		var b [1]byte
		for j := range rem {
			setPair(b[:], j, bitNull)
		}

		return writeFull(r.st, b[:], r.dataOff()+full)
	}

	return nil
}

func (s *bitSlots) validate() error {
	r := s.r
	size := r.dataSize()
	if int64(r.count)/4 > size {
		return malformed("count %d exceeds region of %d bytes", r.count, size)
	}
	if want := bitRegionBytes(r.count); size != want {
		return malformed("bit region has %d bytes, want %d for %d elements", size, want, r.count)
	}

	return nil
}

func (s *bitSlots) get(i int) (sql.Null[bool], error) {
	r := s.r
	var b [1]byte
	if err := readFull(r.st, b[:], r.dataOff()+int64(i/4)); err != nil {
		return sql.Null[bool]{}, err
	}

	p := getPair(b[:], i%4)
	if p&bitNull != 0 {
		if !r.layout.Nullable {
			return sql.Null[bool]{}, malformed("element %d is null in a non-nullable sequence", i)
		}

		return sql.Null[bool]{}, nil
	}

	return sql.Null[bool]{V: p&bitValue != 0, Valid: true}, nil
}

func (s *bitSlots) replace(at, removeN int, vals []sql.Null[bool]) error {
	r := s.r
	oldCount := r.count
	newCount := oldCount - removeN + len(vals)

	if removeN == len(vals) {
		if len(vals) == 0 {
			return nil
		}

		first := at / 4
		last := (at + len(vals) - 1) / 4
		b := make([]byte, last-first+1)
		off := r.dataOff() + int64(first)
		if err := readFull(r.st, b, off); err != nil {
			return err
		}
		for k, v := range vals {
			setPair(b, at+k-first*4, pairOf(v))
		}

		return writeFull(r.st, b, off)
	}

	// Element pairs are not byte aligned, so everything from the byte holding
	// element at onward is rewritten.
	startByte := at / 4
	startElem := startByte * 4
	off := r.dataOff() + int64(startByte)

	oldTail := make([]byte, bitRegionBytes(oldCount)-int64(startByte))
	if err := readFull(r.st, oldTail, off); err != nil {
		return err
	}

	newTail := make([]byte, bitRegionBytes(newCount)-int64(startByte))
	j := 0
	for e := startElem; e < at; e++ {
		setPair(newTail, j, getPair(oldTail, e-startElem))
		j++
	}
	for _, v := range vals {
		setPair(newTail, j, pairOf(v))
		j++
	}
	for e := at + removeN; e < oldCount; e++ {
		setPair(newTail, j, getPair(oldTail, e-startElem))
		j++
	}

	if err := writeFull(r.st, newTail, off); err != nil {
		return err
	}
	if err := r.st.Truncate(off + int64(len(newTail))); err != nil {
		return err
	}
	r.setCount(newCount)

	return nil
}
