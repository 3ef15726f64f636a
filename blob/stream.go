package blob

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/internal/pool"
)

// Stream is a random-access, resizable byte region a sequence is bound to.
//
// A sequence only reads and writes through the stream; it never closes it.
// Streams are not safe for concurrent use.
type Stream interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the current length of the region in bytes.
	Size() int64

	// Truncate changes the length of the region. Growing zero-fills.
	Truncate(size int64) error
}

// splicer is implemented by streams that can move their tail in place
// faster than the chunked copy used by splice.
type splicer interface {
	splice(off, removeN, insertN int64) error
}

// MemStream is an in-memory Stream backed by a pooled buffer.
type MemStream struct {
	buf *pool.ByteBuffer
}

var _ Stream = (*MemStream)(nil)

// NewMemStream returns an empty in-memory stream.
func NewMemStream() *MemStream {
	return &MemStream{buf: pool.GetRegionBuffer()}
}

// NewMemStreamBytes returns an in-memory stream holding a copy of data.
func NewMemStreamBytes(data []byte) *MemStream {
	m := NewMemStream()
	m.buf.MustWrite(data)

	return m
}

// ReadAt implements io.ReaderAt.
func (m *MemStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("read at negative offset %d", off)
	}
	if off >= int64(m.buf.Len()) {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n := copy(p, m.buf.B[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// WriteAt implements io.WriterAt. Writing past the end grows the stream.
func (m *MemStream) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("write at negative offset %d", off)
	}

	end := int(off) + len(p)
	if end > m.buf.Len() {
		m.buf.Resize(end)
	}

	return copy(m.buf.B[off:], p), nil
}

// Size returns the stream length.
func (m *MemStream) Size() int64 {
	return int64(m.buf.Len())
}

// Truncate resizes the stream, zero-filling any new bytes.
func (m *MemStream) Truncate(size int64) error {
	if size < 0 {
		return fmt.Errorf("truncate to negative size %d", size)
	}
	m.buf.Resize(int(size))

	return nil
}

// Grow reserves room for n more bytes without changing the length.
func (m *MemStream) Grow(n int) {
	m.buf.Grow(n)
}

// Bytes returns the stream contents. The slice is valid until the next write.
func (m *MemStream) Bytes() []byte {
	return m.buf.Bytes()
}

// Release returns the backing buffer to the pool.
// The stream must not be used afterwards.
func (m *MemStream) Release() {
	pool.PutRegionBuffer(m.buf)
	m.buf = nil
}

func (m *MemStream) splice(off, removeN, insertN int64) error {
	size := int64(m.buf.Len())
	tail := off + removeN
	if off < 0 || tail > size {
		return fmt.Errorf("splice [%d, %d) beyond stream size %d: %w", off, tail, size, errs.ErrMalformedStream)
	}

	delta := insertN - removeN
	if delta > 0 {
		m.buf.Resize(int(size + delta))
	}
	copy(m.buf.B[tail+delta:], m.buf.B[tail:size])
	if delta < 0 {
		m.buf.Resize(int(size + delta))
	}

	return nil
}

// FileStream adapts an *os.File to Stream.
//
// The size is tracked in memory after construction, so the file must not be
// resized by anyone else while the stream is in use.
type FileStream struct {
	f    *os.File
	size int64
}

var _ Stream = (*FileStream)(nil)

// NewFileStream wraps an open file. The caller keeps ownership of f.
func NewFileStream(f *os.File) (*FileStream, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.Name(), err)
	}

	return &FileStream{f: f, size: fi.Size()}, nil
}

// OpenFileStream opens (creating if needed) the named file for reading and writing.
// The returned stream owns the file; release it with Close.
func OpenFileStream(name string) (*FileStream, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	fs, err := NewFileStream(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return fs, nil
}

// ReadAt implements io.ReaderAt.
func (fs *FileStream) ReadAt(p []byte, off int64) (int, error) {
	return fs.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (fs *FileStream) WriteAt(p []byte, off int64) (int, error) {
	n, err := fs.f.WriteAt(p, off)
	if end := off + int64(n); end > fs.size {
		fs.size = end
	}

	return n, err
}

// Size returns the tracked file length.
func (fs *FileStream) Size() int64 {
	return fs.size
}

// Truncate resizes the file.
func (fs *FileStream) Truncate(size int64) error {
	if err := fs.f.Truncate(size); err != nil {
		return err
	}
	fs.size = size

	return nil
}

// Sync commits the file contents to stable storage.
func (fs *FileStream) Sync() error {
	return fs.f.Sync()
}

// Close closes the underlying file.
func (fs *FileStream) Close() error {
	return fs.f.Close()
}

// readFull fills p from off. A short read means the region ends before the
// layout says it should.
func readFull(st Stream, p []byte, off int64) error {
	n, err := st.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return fmt.Errorf("read %d of %d bytes at offset %d: %w", n, len(p), off, errs.ErrMalformedStream)
}

func writeFull(st Stream, p []byte, off int64) error {
	n, err := st.WriteAt(p, off)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}

	return nil
}

// fill writes n copies of b starting at off.
func fill(st Stream, off, n int64, b byte) error {
	if n <= 0 {
		return nil
	}

	buf := pool.GetShiftBuffer()
	defer pool.PutShiftBuffer(buf)

	chunk := buf.B
	for i := range chunk {
		chunk[i] = b
	}

	for n > 0 {
		m := min(n, int64(len(chunk)))
		if err := writeFull(st, chunk[:m], off); err != nil {
			return err
		}
		off += m
		n -= m
	}

	return nil
}

// splice replaces the removeN bytes at off with insertN bytes, shifting the
// rest of the stream. The content of the inserted bytes is unspecified.
func splice(st Stream, off, removeN, insertN int64) error {
	if removeN == insertN {
		return nil
	}
	if sp, ok := st.(splicer); ok {
		return sp.splice(off, removeN, insertN)
	}

	size := st.Size()
	tail := off + removeN
	if off < 0 || tail > size {
		return fmt.Errorf("splice [%d, %d) beyond stream size %d: %w", off, tail, size, errs.ErrMalformedStream)
	}

	buf := pool.GetShiftBuffer()
	defer pool.PutShiftBuffer(buf)

	chunk := int64(len(buf.B))
	delta := insertN - removeN

	if delta > 0 {
		if err := st.Truncate(size + delta); err != nil {
			return err
		}
		// Move the tail right, last chunk first.
		for end := size; end > tail; {
			start := max(tail, end-chunk)
			p := buf.B[:end-start]
			if err := readFull(st, p, start); err != nil {
				return err
			}
			if err := writeFull(st, p, start+delta); err != nil {
				return err
			}
			end = start
		}

		return nil
	}

	for pos := tail; pos < size; {
		end := min(size, pos+chunk)
		p := buf.B[:end-pos]
		if err := readFull(st, p, pos); err != nil {
			return err
		}
		if err := writeFull(st, p, pos+delta); err != nil {
			return err
		}
		pos = end
	}

	return st.Truncate(size + delta)
}
