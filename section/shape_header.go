package section

import (
	"fmt"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
)

// ShapeHeader precedes the flat sequence of a regular array.
//
// Encoded form: [rank: CountWidth] [dim_0 .. dim_{rank-1}: CountWidth each].
type ShapeHeader struct {
	Layout
	Dims []int
}

// Size returns the encoded size of the shape header.
func (h ShapeHeader) Size() int64 {
	return ShapeSize(h.Layout, len(h.Dims))
}

// ShapeSize returns the encoded size of a shape header of the given rank.
func ShapeSize(layout Layout, rank int) int64 {
	return int64(rank+1) * layout.HeaderSize()
}

// Bytes serializes the shape header.
func (h ShapeHeader) Bytes() []byte {
	w := h.CountWidth.Bytes()
	engine := h.Engine()
	b := make([]byte, 0, (len(h.Dims)+1)*w)
	b = endian.AppendSized(engine, h.CountWidth, b, uint64(len(h.Dims)))
	for _, d := range h.Dims {
		b = endian.AppendSized(engine, h.CountWidth, b, uint64(d)) //nolint:gosec
	}

	return b
}

// ParseRank reads the rank field from the first CountWidth bytes of data.
func ParseRank(layout Layout, data []byte) (int, error) {
	if int64(len(data)) < layout.HeaderSize() {
		return 0, fmt.Errorf("stream shorter than shape header: %w", errs.ErrMalformedStream)
	}

	rank := endian.Sized(layout.Engine(), layout.CountWidth, data)
	if rank > uint64(layout.MaxCount()) {
		return 0, fmt.Errorf("rank %d: %w", rank, errs.ErrMalformedStream)
	}

	return int(rank), nil //nolint:gosec
}

// ParseShapeHeader parses a complete shape header from data.
func ParseShapeHeader(layout Layout, data []byte) (ShapeHeader, error) {
	if err := layout.Validate(); err != nil {
		return ShapeHeader{}, err
	}

	rank, err := ParseRank(layout, data)
	if err != nil {
		return ShapeHeader{}, err
	}
	if int64(len(data)) < ShapeSize(layout, rank) {
		return ShapeHeader{}, fmt.Errorf("shape header truncated for rank %d: %w", rank, errs.ErrMalformedStream)
	}

	w := layout.CountWidth.Bytes()
	engine := layout.Engine()
	dims := make([]int, rank)
	for i := range dims {
		off := (i + 1) * w
		d := endian.Sized(engine, layout.CountWidth, data[off:off+w])
		if d > uint64(layout.MaxCount()) {
			return ShapeHeader{}, fmt.Errorf("dimension %d length %d: %w", i, d, errs.ErrMalformedStream)
		}
		dims[i] = int(d) //nolint:gosec
	}

	return ShapeHeader{Layout: layout, Dims: dims}, nil
}
