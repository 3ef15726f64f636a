package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	require.NoError(t, l.Validate())
	require.Equal(t, int64(4), l.HeaderSize())
	require.True(t, l.HasBitmap())
	require.False(t, l.HasSentinel())
	require.Equal(t, int64(2), l.BitmapSize(9))
	require.Equal(t, int64(0), l.BitmapSize(0))
}

func TestLayout_Validate(t *testing.T) {
	l := DefaultLayout()
	l.CountWidth = 0
	require.ErrorIs(t, l.Validate(), errs.ErrInvalidSizeCode)

	l = DefaultLayout()
	l.ItemWidth = 7
	require.ErrorIs(t, l.Validate(), errs.ErrInvalidSizeCode)

	l = DefaultLayout()
	l.Strategy = 0
	require.ErrorIs(t, l.Validate(), errs.ErrInvalidNullStrategy)
}

func TestLayout_NullPrefix(t *testing.T) {
	l := DefaultLayout()
	l.ItemWidth = format.Size8
	require.Equal(t, uint64(0xFF), l.NullPrefix())
	require.Equal(t, 254, l.MaxItemLength())

	l.ItemWidth = format.Size16
	require.Equal(t, uint64(0xFFFF), l.NullPrefix())
}

func TestLayout_SentinelHasNoBitmap(t *testing.T) {
	l := DefaultLayout()
	l.Strategy = format.NullSentinel
	require.False(t, l.HasBitmap())
	require.True(t, l.HasSentinel())
	require.Equal(t, int64(0), l.BitmapSize(100))

	l.Nullable = false
	require.False(t, l.HasSentinel())
}

func TestSequenceHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		count  int
		want   []byte
	}{
		{"size8", Layout{CountWidth: format.Size8, ItemWidth: format.Size8, Strategy: format.NullBitmap}, 5, []byte{5}},
		{"size16 le", Layout{CountWidth: format.Size16, ItemWidth: format.Size8, Strategy: format.NullBitmap}, 0x0102, []byte{0x02, 0x01}},
		{
			"size16 be",
			Layout{CountWidth: format.Size16, ItemWidth: format.Size8, Strategy: format.NullBitmap, BigEndian: true},
			0x0102, []byte{0x01, 0x02},
		},
		{"size32", DefaultLayout(), 7, []byte{7, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewSequenceHeader(tt.layout, tt.count)
			require.NoError(t, err)
			require.Equal(t, tt.want, h.Bytes())

			parsed, err := ParseSequenceHeader(tt.layout, append(h.Bytes(), 0xAA, 0xBB))
			require.NoError(t, err)
			require.Equal(t, tt.count, parsed.Count)
		})
	}
}

func TestNewSequenceHeader_Errors(t *testing.T) {
	l := DefaultLayout()
	l.CountWidth = format.Size8

	_, err := NewSequenceHeader(l, -1)
	require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

	_, err = NewSequenceHeader(l, 256)
	require.ErrorIs(t, err, errs.ErrCountOverflow)

	_, err = NewSequenceHeader(l, 255)
	require.NoError(t, err)
}

func TestParseSequenceHeader_Truncated(t *testing.T) {
	_, err := ParseSequenceHeader(DefaultLayout(), []byte{1, 2})
	require.ErrorIs(t, err, errs.ErrMalformedStream)

	h := SequenceHeader{Layout: DefaultLayout()}
	require.ErrorIs(t, h.Parse([]byte{1, 2, 3, 4, 5}), errs.ErrMalformedStream)
}
