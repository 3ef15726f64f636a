package section

import (
	"fmt"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
)

// SequenceHeader is the header of a streamed sequence: the element count
// plus the layout it is interpreted with.
//
// Encoded form: [count: CountWidth bytes].
type SequenceHeader struct {
	Layout
	Count int
}

// NewSequenceHeader validates the layout and count.
func NewSequenceHeader(layout Layout, count int) (SequenceHeader, error) {
	if err := layout.Validate(); err != nil {
		return SequenceHeader{}, err
	}
	if count < 0 {
		return SequenceHeader{}, fmt.Errorf("count %d: %w", count, errs.ErrIndexOutOfRange)
	}
	if count > layout.MaxCount() {
		return SequenceHeader{}, fmt.Errorf("count %d exceeds %s: %w", count, layout.CountWidth, errs.ErrCountOverflow)
	}

	return SequenceHeader{Layout: layout, Count: count}, nil
}

// Bytes serializes the header.
func (h SequenceHeader) Bytes() []byte {
	b := make([]byte, h.CountWidth.Bytes())
	endian.PutSized(h.Engine(), h.CountWidth, b, uint64(h.Count)) //nolint:gosec

	return b
}

// Parse reads the count from data, which must hold exactly HeaderSize bytes.
func (h *SequenceHeader) Parse(data []byte) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if int64(len(data)) != h.HeaderSize() {
		return fmt.Errorf("header has %d bytes, want %d: %w", len(data), h.HeaderSize(), errs.ErrMalformedStream)
	}

	count := endian.Sized(h.Engine(), h.CountWidth, data)
	if count > uint64(h.MaxCount()) {
		return fmt.Errorf("count %d does not fit in int: %w", count, errs.ErrMalformedStream)
	}
	h.Count = int(count) //nolint:gosec

	return nil
}

// ParseSequenceHeader parses a header with the given layout from the start of data.
func ParseSequenceHeader(layout Layout, data []byte) (SequenceHeader, error) {
	h := SequenceHeader{Layout: layout}
	if int64(len(data)) < layout.HeaderSize() {
		return SequenceHeader{}, fmt.Errorf("stream shorter than header: %w", errs.ErrMalformedStream)
	}
	if err := h.Parse(data[:layout.HeaderSize()]); err != nil {
		return SequenceHeader{}, err
	}

	return h, nil
}
