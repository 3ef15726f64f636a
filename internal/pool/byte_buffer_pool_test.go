package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(64)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 64, bb.Cap())
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("abc"))
	n, err := bb.Write([]byte("de"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte("abcde"), bb.Bytes())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("no-op with enough capacity", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.Grow(10)
		require.Equal(t, 16, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(4)
		bb.MustWrite([]byte("abcd"))
		bb.Grow(1)
		require.Equal(t, 4+RegionBufferDefaultSize, bb.Cap())
		require.Equal(t, []byte("abcd"), bb.Bytes())
	})

	t.Run("grows at least by required bytes", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(RegionBufferDefaultSize * 3)
		require.GreaterOrEqual(t, bb.Cap(), RegionBufferDefaultSize*3)
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := RegionBufferDefaultSize * 8
		bb := NewByteBuffer(size)
		bb.Resize(size)
		bb.Grow(1)
		require.Equal(t, size+size/4, bb.Cap())
	})
}

func TestByteBuffer_Resize(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3, 4})

	bb.Resize(2)
	require.Equal(t, []byte{1, 2}, bb.Bytes())

	// Growing again must not resurrect the truncated bytes.
	bb.Resize(5)
	require.Equal(t, []byte{1, 2, 0, 0, 0}, bb.Bytes())

	require.Panics(t, func() { bb.Resize(-1) })
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte("xyz"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, "xyz", out.String())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("data"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	// Oversized buffers are dropped, nil is ignored.
	big := NewByteBuffer(128)
	require.NotPanics(t, func() { p.Put(big) })
	require.NotPanics(t, func() { p.Put(nil) })
}

func TestShiftBuffer(t *testing.T) {
	bb := GetShiftBuffer()
	defer PutShiftBuffer(bb)

	require.Equal(t, ShiftBufferSize, bb.Len())
}

func TestRegionBuffer(t *testing.T) {
	bb := GetRegionBuffer()
	require.Equal(t, 0, bb.Len())
	bb.MustWrite([]byte{1})
	PutRegionBuffer(bb)
}
