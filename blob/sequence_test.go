package blob

import (
	"database/sql"
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// ==============================================================================
// Byte layout
// ==============================================================================

func TestLayout_FixedBitmap(t *testing.T) {
	st := NewMemStream()
	seq, err := Create(st, encoding.Int32, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{
		3, 0, 0, 0, // count
		0x07, // all null
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}, st.Bytes())

	require.NoError(t, seq.Set(1, val[int32](5)))
	require.Equal(t, []byte{
		3, 0, 0, 0,
		0x05,
		0, 0, 0, 0, 5, 0, 0, 0, 0, 0, 0, 0,
	}, st.Bytes())
}

func TestLayout_FixedSentinel(t *testing.T) {
	st := NewMemStream()
	seq, err := Create(st, encoding.Int16, 2, WithCompact(false))
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 0, 0}, st.Bytes())

	require.NoError(t, seq.Set(0, val[int16](0x0102)))
	require.Equal(t, []byte{2, 0, 0, 0, 1, 0x02, 0x01, 0, 0, 0}, st.Bytes())

	v, err := seq.Get(1)
	require.NoError(t, err)
	require.False(t, v.Valid)
}

func TestLayout_Variable(t *testing.T) {
	st := NewMemStream()
	seq, err := Build(st, encoding.Text,
		[]sql.Null[string]{val("a"), null[string](), val("bcd")},
		WithCountWidth(format.Size8), WithItemWidth(format.Size8))
	require.NoError(t, err)
	require.NoError(t, seq.Flush())
	require.Equal(t, []byte{3, 1, 0xFF, 3, 'a', 'b', 'c', 'd'}, st.Bytes())
}

func TestLayout_Bool(t *testing.T) {
	st := NewMemStream()
	seq, err := Build(st, encoding.Bool,
		[]sql.Null[bool]{val(true), null[bool](), val(false)},
		WithCountWidth(format.Size8))
	require.NoError(t, err)
	require.NoError(t, seq.Flush())
	require.Equal(t, []byte{3, 0x09}, st.Bytes())

	st2 := NewMemStream()
	_, err = Create(st2, encoding.Bool, 5, WithCountWidth(format.Size8))
	require.NoError(t, err)
	require.Equal(t, []byte{5, 0xAA, 0x02}, st2.Bytes())
}

func TestLayout_BigEndianNonNullable(t *testing.T) {
	st := NewMemStream()
	seq, err := Create(st, encoding.Int32, 1, WithBigEndian(), WithNullable(false))
	require.NoError(t, err)
	require.NoError(t, seq.Set(0, val[int32](1)))
	require.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 1}, st.Bytes())
}

func TestLayout_CountWidths(t *testing.T) {
	for _, code := range []format.SizeCode{format.Size8, format.Size16, format.Size32, format.Size64} {
		t.Run(code.String(), func(t *testing.T) {
			st := NewMemStream()
			seq, err := Create(st, encoding.Uint8, 2, WithCountWidth(code), WithNullable(false))
			require.NoError(t, err)
			require.Equal(t, int64(code.Bytes()+2), st.Size())
			require.Equal(t, byte(2), st.Bytes()[0])
			require.Equal(t, int64(code.Bytes()+2), seq.Size())
		})
	}
}

// ==============================================================================
// Scenarios
// ==============================================================================

func TestScenario_NullableIntArray(t *testing.T) {
	seq, err := Create(NewMemStream(), encoding.Int32, 5)
	require.NoError(t, err)
	require.NoError(t, seq.Set(2, val[int32](7)))

	s, err := Format(seq)
	require.NoError(t, err)
	require.Equal(t, "{NULL,NULL,7,NULL,NULL}", s)
}

func TestScenario_TextArray(t *testing.T) {
	seq, err := Build(NewMemStream(), encoding.Text, []sql.Null[string]{val("a"), null[string](), val("bcd")})
	require.NoError(t, err)

	head, err := seq.GetRange(At(0), At(2))
	require.NoError(t, err)
	require.Equal(t, []sql.Null[string]{val("a"), null[string]()}, mustValues(t, head))

	src, err := Build(NewMemStream(), encoding.Text, []sql.Null[string]{val("x"), val("y")})
	require.NoError(t, err)
	require.NoError(t, seq.SetRange(At(1), src))
	require.Equal(t, []sql.Null[string]{val("a"), val("x"), val("y")}, mustValues(t, seq))
}

// ==============================================================================
// Create / Open
// ==============================================================================

func TestCreate_NegativeLength(t *testing.T) {
	_, err := Create(NewMemStream(), encoding.Int32, -1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
}

func TestCreate_CountOverflow(t *testing.T) {
	_, err := Create(NewMemStream(), encoding.Int32, 256, WithCountWidth(format.Size8))
	require.ErrorIs(t, err, errs.ErrCountOverflow)

	seq, err := Create(NewMemStream(), encoding.Int32, 255, WithCountWidth(format.Size8))
	require.NoError(t, err)
	err = seq.ToCollection().Add(val[int32](1))
	require.ErrorIs(t, err, errs.ErrCountOverflow)
}

func TestCreate_NilStream(t *testing.T) {
	_, err := Create[int32](nil, encoding.Int32, 1)
	require.ErrorIs(t, err, errs.ErrNullArgument)
}

func TestCreate_InvalidOptions(t *testing.T) {
	_, err := Create(NewMemStream(), encoding.Int32, 1, WithCountWidth(format.SizeCode(7)))
	require.ErrorIs(t, err, errs.ErrInvalidSizeCode)

	_, err = Create(NewMemStream(), encoding.Int32, 1, WithItemWidth(format.SizeCode(0)))
	require.ErrorIs(t, err, errs.ErrInvalidSizeCode)

	_, err = Create(NewMemStream(), encoding.Int32, 1, WithNullStrategy(format.NullStrategy(9)))
	require.ErrorIs(t, err, errs.ErrInvalidNullStrategy)
}

func TestCreate_NonNullableDefaults(t *testing.T) {
	ints, err := Create(NewMemStream(), encoding.Int64, 2, WithNullable(false))
	require.NoError(t, err)
	require.Equal(t, []sql.Null[int64]{val[int64](0), val[int64](0)}, mustValues(t, ints))

	texts, err := Create(NewMemStream(), encoding.Text, 2, WithNullable(false))
	require.NoError(t, err)
	require.Equal(t, []sql.Null[string]{val(""), val("")}, mustValues(t, texts))

	bools, err := Create(NewMemStream(), encoding.Bool, 3, WithNullable(false))
	require.NoError(t, err)
	require.Equal(t, []sql.Null[bool]{val(false), val(false), val(false)}, mustValues(t, bools))

	err = ints.Set(0, null[int64]())
	require.ErrorIs(t, err, errs.ErrNullNotAllowed)
	err = texts.SetRepeat(Absent, null[string](), Absent)
	require.ErrorIs(t, err, errs.ErrNullNotAllowed)
}

func TestOpen_RoundTrip(t *testing.T) {
	opts := []Option{WithCountWidth(format.Size16), WithItemWidth(format.Size16), WithBigEndian()}
	st := NewMemStream()
	seq, err := Build(st, encoding.Binary, nil, opts...)
	require.NoError(t, err)
	require.NoError(t, seq.SetValues(At(0), []sql.Null[[]byte]{val([]byte{1, 2}), null[[]byte](), val([]byte{})}))
	require.NoError(t, seq.Close())

	reopened, err := Open(st, encoding.Binary, opts...)
	require.NoError(t, err)
	require.Equal(t, 3, reopened.Count())
	require.Equal(t, []sql.Null[[]byte]{val([]byte{1, 2}), null[[]byte](), val([]byte{})}, mustValues(t, reopened))
}

func TestOpen_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		open func(Stream) error
	}{
		{
			name: "short header",
			data: []byte{1, 0},
			open: func(st Stream) error { _, err := Open(st, encoding.Int32); return err },
		},
		{
			name: "truncated fixed region",
			data: []byte{2, 0, 0, 0, 0x00, 1, 0, 0, 0, 2, 0, 0},
			open: func(st Stream) error { _, err := Open(st, encoding.Int32); return err },
		},
		{
			name: "trailing bytes",
			data: []byte{1, 0, 0, 0, 0x00, 1, 0, 0, 0, 9},
			open: func(st Stream) error { _, err := Open(st, encoding.Int32); return err },
		},
		{
			name: "huge count",
			data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0},
			open: func(st Stream) error { _, err := Open(st, encoding.Text); return err },
		},
		{
			name: "payload shorter than prefixes",
			data: []byte{2, 3, 1, 'a', 'b'},
			open: func(st Stream) error {
				_, err := Open(st, encoding.Text, WithCountWidth(format.Size8), WithItemWidth(format.Size8))
				return err
			},
		},
		{
			name: "null prefix in non-nullable",
			data: []byte{1, 0xFF},
			open: func(st Stream) error {
				_, err := Open(st, encoding.Text, WithCountWidth(format.Size8), WithItemWidth(format.Size8), WithNullable(false))
				return err
			},
		},
		{
			name: "bit region size",
			data: []byte{5, 0},
			open: func(st Stream) error { _, err := Open(st, encoding.Bool, WithCountWidth(format.Size8)); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.open(NewMemStreamBytes(tt.data))
			require.ErrorIs(t, err, errs.ErrMalformedStream)
		})
	}
}

func TestGet_BadSentinel(t *testing.T) {
	st := NewMemStreamBytes([]byte{1, 7, 5})
	seq, err := Open(st, encoding.Int8, WithCountWidth(format.Size8), WithCompact(false))
	require.NoError(t, err)

	_, err = seq.Get(0)
	require.ErrorIs(t, err, errs.ErrMalformedStream)
}

// ==============================================================================
// Point access
// ==============================================================================

func TestGetSet_OutOfRange(t *testing.T) {
	seq, err := Create(NewMemStream(), encoding.Float64, 2)
	require.NoError(t, err)

	_, err = seq.Get(2)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	_, err = seq.Get(-1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	require.ErrorIs(t, seq.Set(2, val(1.0)), errs.ErrIndexOutOfRange)
}

func TestSet_AllKinds(t *testing.T) {
	t.Run("BigInt", func(t *testing.T) {
		seq, err := Create(NewMemStream(), encoding.BigInt, 3)
		require.NoError(t, err)

		huge, _ := new(big.Int).SetString("98765432109876543210", 10)
		require.NoError(t, seq.Set(1, val(huge)))
		require.NoError(t, seq.Set(0, val(big.NewInt(-3))))

		got, err := seq.Get(1)
		require.NoError(t, err)
		require.Equal(t, 0, huge.Cmp(got.V))

		got, err = seq.Get(0)
		require.NoError(t, err)
		require.Equal(t, int64(-3), got.V.Int64())

		got, err = seq.Get(2)
		require.NoError(t, err)
		require.False(t, got.Valid)
	})

	t.Run("Decimal", func(t *testing.T) {
		seq, err := Create(NewMemStream(), encoding.Decimal, 2, WithItemWidth(format.Size8))
		require.NoError(t, err)
		require.NoError(t, seq.Set(1, val(decimal.RequireFromString("12.50"))))

		got, err := seq.Get(1)
		require.NoError(t, err)
		require.True(t, got.V.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("Bool", func(t *testing.T) {
		seq, err := Create(NewMemStream(), encoding.Bool, 9)
		require.NoError(t, err)
		require.NoError(t, seq.Set(4, val(true)))
		require.NoError(t, seq.Set(8, val(false)))

		vals := mustValues(t, seq)
		for i, v := range vals {
			switch i {
			case 4:
				require.Equal(t, val(true), v)
			case 8:
				require.Equal(t, val(false), v)
			default:
				require.False(t, v.Valid, "element %d", i)
			}
		}
	})
}

func TestSet_ValueTooLarge(t *testing.T) {
	seq, err := Create(NewMemStream(), encoding.Text, 1, WithItemWidth(format.Size8))
	require.NoError(t, err)

	require.NoError(t, seq.Set(0, val(strings.Repeat("x", 254))))
	err = seq.Set(0, val(strings.Repeat("x", 255)))
	require.ErrorIs(t, err, errs.ErrValueTooLarge)

	got, err := seq.Get(0)
	require.NoError(t, err)
	require.Len(t, got.V, 254, "failed write must leave the element unchanged")
}

func TestIndexOf(t *testing.T) {
	seq, err := Parse(NewMemStream(), encoding.Int32, "{4,NULL,7,4,NULL}")
	require.NoError(t, err)

	tests := []struct {
		v    sql.Null[int32]
		want int
	}{
		{val[int32](4), 0},
		{val[int32](7), 2},
		{null[int32](), 1},
		{val[int32](99), -1},
	}
	for _, tt := range tests {
		got, err := seq.IndexOf(tt.v)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "IndexOf(%v)", tt.v)
	}

	empty, err := Create(NewMemStream(), encoding.Int32, 0)
	require.NoError(t, err)
	got, err := empty.IndexOf(null[int32]())
	require.NoError(t, err)
	require.Equal(t, -1, got)
}

// ==============================================================================
// Ranges
// ==============================================================================

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name         string
		index, count Pos
		at, n        int
		err          bool
	}{
		{"both absent", Absent, Absent, 0, 5, false},
		{"index absent", Absent, At(2), 3, 2, false},
		{"count absent", At(1), Absent, 1, 4, false},
		{"both present", At(1), At(3), 1, 3, false},
		{"empty at end", At(5), At(0), 5, 0, false},
		{"count absent at end", At(5), Absent, 5, 0, false},
		{"past end", At(3), At(3), 0, 0, true},
		{"negative index", At(-1), Absent, 0, 0, true},
		{"count too big", Absent, At(6), 0, 0, true},
		{"index past end", At(6), Absent, 0, 0, true},
		{"negative count", At(0), At(-1), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, n, err := ResolveRange(5, tt.index, tt.count)
			if tt.err {
				require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.at, at)
			require.Equal(t, tt.n, n)
		})
	}
}

func TestGetRange_DefaultResolution(t *testing.T) {
	vals := []sql.Null[string]{val("a"), null[string](), val("c"), val("d"), null[string]()}
	seq, err := Build(NewMemStream(), encoding.Text, vals)
	require.NoError(t, err)

	all, err := seq.GetRange(Absent, Absent)
	require.NoError(t, err)
	require.Equal(t, vals, mustValues(t, all))

	last, err := seq.GetRange(Absent, At(2))
	require.NoError(t, err)
	require.Equal(t, vals[3:], mustValues(t, last))

	from, err := seq.GetRange(At(1), Absent)
	require.NoError(t, err)
	require.Equal(t, vals[1:], mustValues(t, from))

	_, err = seq.GetRange(At(4), At(2))
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	// The copy is a complete, independently openable sequence.
	mem, ok := from.Stream().(*MemStream)
	require.True(t, ok)
	reopened, err := Open(NewMemStreamBytes(mem.Bytes()), encoding.Text)
	require.NoError(t, err)
	require.Equal(t, vals[1:], mustValues(t, reopened))
}

func TestSetRange(t *testing.T) {
	build := func(t *testing.T, v ...int64) *Sequence[int64] {
		t.Helper()
		vals := make([]sql.Null[int64], len(v))
		for i, x := range v {
			if x < 0 {
				continue
			}
			vals[i] = val(x)
		}
		seq, err := Build(NewMemStream(), encoding.Int64, vals)
		require.NoError(t, err)

		return seq
	}

	t.Run("overwrite", func(t *testing.T) {
		seq := build(t, 1, 2, 3, 4)
		require.NoError(t, seq.SetRange(At(1), build(t, 8, -1)))
		require.Equal(t, build(t, 1, 8, -1, 4).mustFormat(t), seq.mustFormat(t))
	})

	t.Run("extends tail", func(t *testing.T) {
		seq := build(t, 1, 2, 3)
		require.NoError(t, seq.SetRange(At(2), build(t, 7, 8, 9)))
		require.Equal(t, "{1,2,7,8,9}", seq.mustFormat(t))
	})

	t.Run("append at count", func(t *testing.T) {
		seq := build(t, 1)
		require.NoError(t, seq.SetRange(At(1), build(t, 5)))
		require.Equal(t, "{1,5}", seq.mustFormat(t))
	})

	t.Run("absent index writes the tail", func(t *testing.T) {
		seq := build(t, 1, 2, 3, 4)
		require.NoError(t, seq.SetRange(Absent, build(t, 0, 0)))
		require.Equal(t, "{1,2,0,0}", seq.mustFormat(t))
	})

	t.Run("absent index longer than sequence", func(t *testing.T) {
		seq := build(t, 1)
		require.ErrorIs(t, seq.SetRange(Absent, build(t, 1, 2)), errs.ErrIndexOutOfRange)
	})

	t.Run("index past count", func(t *testing.T) {
		seq := build(t, 1)
		require.ErrorIs(t, seq.SetRange(At(2), build(t, 1)), errs.ErrIndexOutOfRange)
	})

	t.Run("self", func(t *testing.T) {
		seq := build(t, 1, 2)
		require.NoError(t, seq.SetRange(At(1), seq))
		require.Equal(t, "{1,1,2}", seq.mustFormat(t))
	})

	t.Run("nil source", func(t *testing.T) {
		seq := build(t, 1)
		require.ErrorIs(t, seq.SetRange(At(0), nil), errs.ErrNullArgument)
	})

	t.Run("round trip of a range", func(t *testing.T) {
		seq := build(t, 5, -1, 7, 8, -1, 10)
		want := seq.mustFormat(t)
		part, err := seq.GetRange(At(1), At(3))
		require.NoError(t, err)
		require.NoError(t, seq.SetRange(At(1), part))
		require.Equal(t, want, seq.mustFormat(t))
	})
}

func (s *Sequence[T]) mustFormat(t *testing.T) string {
	t.Helper()

	out, err := Format(s)
	require.NoError(t, err)

	return out
}

func TestSetRange_VariableWidthShifts(t *testing.T) {
	st := NewMemStream()
	seq, err := Parse(st, encoding.Text, `{"one","two","three","four"}`)
	require.NoError(t, err)

	src, err := Parse(NewMemStream(), encoding.Text, `{"a much longer replacement",NULL}`)
	require.NoError(t, err)
	require.NoError(t, seq.SetRange(At(1), src))
	require.Equal(t, `{"one","a much longer replacement",NULL,"four"}`, seq.mustFormat(t))

	short, err := Parse(NewMemStream(), encoding.Text, `{"x"}`)
	require.NoError(t, err)
	require.NoError(t, seq.SetRange(At(1), short))
	require.Equal(t, `{"one","x",NULL,"four"}`, seq.mustFormat(t))

	require.NoError(t, seq.Close())
	reopened, err := Open(st, encoding.Text)
	require.NoError(t, err)
	require.Equal(t, `{"one","x",NULL,"four"}`, reopened.mustFormat(t))
}

func TestSetRepeat(t *testing.T) {
	seq, err := Create(NewMemStream(), encoding.Int16, 6)
	require.NoError(t, err)

	require.NoError(t, seq.SetRepeat(At(1), val[int16](3), At(2)))
	require.Equal(t, "{NULL,3,3,NULL,NULL,NULL}", seq.mustFormat(t))

	require.NoError(t, seq.SetRepeat(Absent, val[int16](9), At(2)))
	require.Equal(t, "{NULL,3,3,NULL,9,9}", seq.mustFormat(t))

	require.NoError(t, seq.SetRepeat(At(2), null[int16](), Absent))
	require.Equal(t, "{NULL,3,NULL,NULL,NULL,NULL}", seq.mustFormat(t))

	require.ErrorIs(t, seq.SetRepeat(At(5), val[int16](1), At(2)), errs.ErrIndexOutOfRange)

	big, err := Create(NewMemStream(), encoding.Text, 3*batchSize+1)
	require.NoError(t, err)
	require.NoError(t, big.SetRepeat(Absent, val("z"), Absent))
	idx, err := big.IndexOf(null[string]())
	require.NoError(t, err)
	require.Equal(t, -1, idx)
	last, err := big.Get(3 * batchSize)
	require.NoError(t, err)
	require.Equal(t, val("z"), last)
}

// ==============================================================================
// Enumeration
// ==============================================================================

func TestEnumerateRange(t *testing.T) {
	seq, err := Parse(NewMemStream(), encoding.Uint32, "{10,20,NULL,40}")
	require.NoError(t, err)

	it := seq.EnumerateRange(At(1), At(2))
	for range 2 {
		var got []Entry[uint32]
		for e, err := range it {
			require.NoError(t, err)
			got = append(got, e)
		}
		require.Equal(t, []Entry[uint32]{
			{Index: 1, Value: val[uint32](20)},
			{Index: 2, Value: null[uint32]()},
		}, got)
	}

	count := 0
	for range seq.All() {
		count++
		break
	}
	require.Equal(t, 1, count)

	for _, err := range seq.EnumerateRange(At(3), At(5)) {
		require.ErrorIs(t, err, errs.ErrIndexOutOfRange)
	}
}

// ==============================================================================
// Lifecycle
// ==============================================================================

func TestClose(t *testing.T) {
	st := NewMemStream()
	seq, err := Build(st, encoding.Int8, []sql.Null[int8]{val[int8](1)})
	require.NoError(t, err)

	require.NoError(t, seq.Close())
	require.NoError(t, seq.Close())
	require.Equal(t, []byte{1, 0, 0, 0, 0, 1}, st.Bytes(), "Close flushes the count")
	require.Nil(t, seq.Stream())

	_, err = seq.Get(0)
	require.ErrorIs(t, err, errs.ErrClosed)
	require.ErrorIs(t, seq.Set(0, val[int8](2)), errs.ErrClosed)
	for _, err := range seq.All() {
		require.ErrorIs(t, err, errs.ErrClosed)
	}

	// The stream stays usable.
	again, err := Open(st, encoding.Int8)
	require.NoError(t, err)
	require.Equal(t, 1, again.Count())
}

func TestFingerprint(t *testing.T) {
	a, err := Parse(NewMemStream(), encoding.Text, `{"x",NULL}`)
	require.NoError(t, err)
	b, err := Parse(NewMemStream(), encoding.Text, `{"x",NULL}`)
	require.NoError(t, err)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	require.Equal(t, fa, fb)

	require.NoError(t, b.Set(1, val("y")))
	fb, err = b.Fingerprint()
	require.NoError(t, err)
	require.NotEqual(t, fa, fb)
}
