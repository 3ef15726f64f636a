package powerlib

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/aggregate"
	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

func bytesOf[T any](t *testing.T, s *blob.Sequence[T]) []byte {
	t.Helper()

	require.NoError(t, s.Flush())
	ms, ok := s.Stream().(*blob.MemStream)
	require.True(t, ok)

	return ms.Bytes()
}

// TestBuildSequence verifies the default layout of a small nullable array
func TestBuildSequence(t *testing.T) {
	seq, err := BuildSequence(encoding.Int32, []sql.Null[int32]{
		{V: 1, Valid: true},
		{},
		{V: 3, Valid: true},
	})
	require.NoError(t, err)

	text, err := blob.Format(seq)
	require.NoError(t, err)
	require.Equal(t, "{1,NULL,3}", text)

	// count, one bitmap byte with bit 1 set, three slots
	data := bytesOf(t, seq)
	require.Len(t, data, 4+1+12)
	require.Equal(t, byte(0x02), data[4])
}

// TestNewSequence verifies a new sequence starts with null elements
func TestNewSequence(t *testing.T) {
	seq, err := NewSequence(encoding.Float64, 4)
	require.NoError(t, err)
	require.Equal(t, 4, seq.Count())

	v, err := seq.Get(3)
	require.NoError(t, err)
	require.False(t, v.Valid)

	_, err = NewSequence(encoding.Float64, -1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

// TestBuildCompactSequence verifies 8-bit widths and their limits
func TestBuildCompactSequence(t *testing.T) {
	seq, err := BuildCompactSequence(encoding.Text, []sql.Null[string]{{V: "ab", Valid: true}, {}})
	require.NoError(t, err)
	require.Equal(t, format.Size8, seq.Layout().CountWidth)

	// count, then two one-byte length prefixes, then "ab"
	require.Equal(t, []byte{2, 2, 0xff, 'a', 'b'}, bytesOf(t, seq))

	long := make([]byte, 300)
	_, err = BuildCompactSequence(encoding.Binary, []sql.Null[[]byte]{{V: long, Valid: true}})
	require.ErrorIs(t, err, errs.ErrValueTooLarge)
}

// TestOpenSequence verifies reopened blobs are detached from the caller's bytes
func TestOpenSequence(t *testing.T) {
	src, err := ParseSequence(encoding.Int64, "{10,20,NULL}")
	require.NoError(t, err)
	data := bytesOf(t, src)
	orig := append([]byte(nil), data...)

	seq, err := OpenSequence(encoding.Int64, data)
	require.NoError(t, err)
	require.NoError(t, seq.Set(0, sql.Null[int64]{V: 99, Valid: true}))
	require.NoError(t, seq.Flush())
	require.Equal(t, orig, data)

	v, err := seq.Get(0)
	require.NoError(t, err)
	require.Equal(t, int64(99), v.V)

	_, err = OpenSequence(encoding.Int64, data[:5])
	require.ErrorIs(t, err, errs.ErrMalformedStream)
}

// TestCollection verifies the collection wrappers
func TestCollection(t *testing.T) {
	col, err := NewCollection(encoding.Text)
	require.NoError(t, err)
	require.NoError(t, col.AddRange(sql.Null[string]{V: "x", Valid: true}, sql.Null[string]{}))
	require.NoError(t, col.Close())

	data := col.Stream().(*blob.MemStream).Bytes()
	reopened, err := OpenCollection(encoding.Text, data)
	require.NoError(t, err)
	require.NoError(t, reopened.Insert(0, sql.Null[string]{V: "w", Valid: true}))

	text, err := blob.Format(reopened.Sequence)
	require.NoError(t, err)
	require.Equal(t, `{"w","x",NULL}`, text)
}

// TestRegularArray verifies the regular array wrappers
func TestRegularArray(t *testing.T) {
	arr, err := NewRegularArray(encoding.Float64, 2, 3)
	require.NoError(t, err)
	require.NoError(t, arr.SetDim(sql.Null[float64]{V: 1.5, Valid: true}, 1, 2))
	require.NoError(t, arr.Flush())

	data := arr.Flat().Stream().(*blob.MemStream).Bytes()
	reopened, err := OpenRegularArray(encoding.Float64, data)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, reopened.Dims())

	v, err := reopened.GetFlat(5)
	require.NoError(t, err)
	require.Equal(t, 1.5, v.V)

	_, err = NewRegularArray(encoding.Float64)
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

// TestNewAccumulator verifies the accumulator wrapper and its state transfer
func TestNewAccumulator(t *testing.T) {
	acc, err := NewAccumulator(encoding.Int32, aggregate.WithStateCompression(format.CompressionS2))
	require.NoError(t, err)
	require.NoError(t, acc.Init())
	require.NoError(t, acc.Accumulate(sql.Null[int32]{V: 7, Valid: true}))

	state, err := acc.MarshalBinary()
	require.NoError(t, err)

	other, err := NewAccumulator(encoding.Int32)
	require.NoError(t, err)
	require.NoError(t, other.UnmarshalBinary(state))
	require.Equal(t, 1, other.Count())

	_, err = NewAccumulator[int32](nil)
	require.ErrorIs(t, err, errs.ErrNullArgument)
}

// TestChecksum verifies the checksum matches the sequence fingerprint
func TestChecksum(t *testing.T) {
	seq, err := ParseSequence(encoding.Text, `{"a",NULL,"ccc"}`)
	require.NoError(t, err)

	fp, err := seq.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, fp, Checksum(bytesOf(t, seq)))
	require.NotEqual(t, Checksum(nil), Checksum([]byte{0}))
}
