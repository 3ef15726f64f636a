package blob

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

func TestCollection_Lifecycle(t *testing.T) {
	st := NewMemStream()
	col, err := NewCollection(st, encoding.Text)
	require.NoError(t, err)
	col.Reserve(16)

	require.NoError(t, col.Add(val("b")))
	require.NoError(t, col.AddRange(null[string](), val("d")))
	require.NoError(t, col.Insert(0, val("a")))
	require.NoError(t, col.InsertRange(4, val("e"), val("f")))
	require.Equal(t, `{"a","b",NULL,"d","e","f"}`, col.mustFormat(t))

	require.NoError(t, col.RemoveAt(2))
	require.Equal(t, `{"a","b","d","e","f"}`, col.mustFormat(t))

	require.NoError(t, col.RemoveRange(Absent, At(2)))
	require.Equal(t, `{"a","b","d"}`, col.mustFormat(t))

	more, err := Parse(NewMemStream(), encoding.Text, `{"x","y"}`)
	require.NoError(t, err)
	require.NoError(t, col.AddSequence(more))
	require.Equal(t, `{"a","b","d","x","y"}`, col.mustFormat(t))

	require.NoError(t, col.Close())
	reopened, err := OpenCollection(st, encoding.Text)
	require.NoError(t, err)
	require.Equal(t, 5, reopened.Count())

	require.NoError(t, reopened.Clear())
	require.Equal(t, 0, reopened.Count())
	require.NoError(t, reopened.Flush())
	require.Equal(t, []byte{0, 0, 0, 0}, st.Bytes())
}

func TestCollection_Errors(t *testing.T) {
	col, err := NewCollection(NewMemStream(), encoding.Int32)
	require.NoError(t, err)
	require.NoError(t, col.Add(val[int32](1)))

	require.ErrorIs(t, col.Insert(2, val[int32](1)), errs.ErrIndexOutOfRange)
	require.ErrorIs(t, col.Insert(-1, val[int32](1)), errs.ErrIndexOutOfRange)
	require.ErrorIs(t, col.RemoveAt(1), errs.ErrIndexOutOfRange)
	require.ErrorIs(t, col.RemoveRange(At(0), At(2)), errs.ErrIndexOutOfRange)

	require.NoError(t, col.Close())
	require.ErrorIs(t, col.Add(val[int32](2)), errs.ErrClosed)
}

func TestCollection_FixedBitmapGrowth(t *testing.T) {
	col, err := NewCollection(NewMemStream(), encoding.Uint8, WithCountWidth(format.Size16))
	require.NoError(t, err)

	// Crossing byte boundaries of the bitmap while inserting at the front.
	want := make([]sql.Null[uint8], 0, 20)
	for i := range 20 {
		v := null[uint8]()
		if i%3 != 0 {
			v = val(uint8(i))
		}
		require.NoError(t, col.Insert(0, v))
		want = append([]sql.Null[uint8]{v}, want...)
	}
	require.Equal(t, want, mustValues(t, col.Sequence))

	for range 13 {
		require.NoError(t, col.RemoveAt(1))
		want = append(want[:1], want[2:]...)
	}
	require.Equal(t, want, mustValues(t, col.Sequence))
	require.Equal(t, int64(2+1+7), col.Size())
}
