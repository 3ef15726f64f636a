package pool

import (
	"io"
	"sync"
)

const (
	RegionBufferDefaultSize  = 1024 * 4   // 4KiB, default backing for in-memory streams
	RegionBufferMaxThreshold = 1024 * 256 // 256KiB, larger buffers are not retained
	ShiftBufferSize          = 1024 * 32  // 32KiB, chunk size used when shifting stream tails
)

// ByteBuffer is a growable byte slice whose length is the logical stream size.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Write appends the contents of data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by RegionBufferDefaultSize; buffers beyond four times that
// grow by 25% of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := RegionBufferDefaultSize
	if cap(bb.B) > 4*RegionBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Resize sets the length to n. New bytes are zeroed.
func (bb *ByteBuffer) Resize(n int) {
	if n < 0 {
		panic("Resize: negative length")
	}

	cur := len(bb.B)
	if n <= cur {
		bb.B = bb.B[:n]
		return
	}

	bb.Grow(n - cur)
	bb.B = bb.B[:n]
	clear(bb.B[cur:n])
}

// ByteBufferPool is a pool of ByteBuffers backed by sync.Pool.
//
// Buffers whose capacity exceeds maxThreshold are dropped instead of being
// returned to the pool.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given default capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	regionPool = NewByteBufferPool(RegionBufferDefaultSize, RegionBufferMaxThreshold)
	shiftPool  = NewByteBufferPool(ShiftBufferSize, ShiftBufferSize)
)

// GetRegionBuffer retrieves a buffer for an in-memory stream.
func GetRegionBuffer() *ByteBuffer {
	return regionPool.Get()
}

// PutRegionBuffer returns an in-memory stream buffer to the pool.
func PutRegionBuffer(bb *ByteBuffer) {
	regionPool.Put(bb)
}

// GetShiftBuffer retrieves a ShiftBufferSize scratch buffer with full length.
// The contents are unspecified.
func GetShiftBuffer() *ByteBuffer {
	bb := shiftPool.Get()
	bb.Resize(ShiftBufferSize)

	return bb
}

// PutShiftBuffer returns a scratch buffer to the pool.
func PutShiftBuffer(bb *ByteBuffer) {
	shiftPool.Put(bb)
}
