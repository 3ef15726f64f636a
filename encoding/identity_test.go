package encoding

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

func TestGUIDCodec(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	fixedRoundTrip(t, GUID, id)
	require.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", GUID.FormatLiteral(id))

	buf := make([]byte, 16)
	GUID.Put(endian.GetBigEndianEngine(), buf, id)
	require.Equal(t, id[:], buf, "GUID bytes do not depend on byte order")

	_, err := GUID.ParseLiteral("not-a-guid")
	require.ErrorIs(t, err, errs.ErrParse)

	_, err = GUID.Decode(endian.GetLittleEndianEngine(), buf[:10])
	require.ErrorIs(t, err, errs.ErrMalformedStream)
}

func TestInt64RangeCodec(t *testing.T) {
	r := Int64Range{Lo: -5, Hi: 12}
	fixedRoundTrip(t, Range, r)
	require.Equal(t, "-5..12", Range.FormatLiteral(r))
	require.True(t, r.Contains(0))
	require.False(t, r.Contains(13))

	for _, bad := range []string{"1", "5..1", "a..b", "1..x"} {
		_, err := Range.ParseLiteral(bad)
		require.ErrorIs(t, err, errs.ErrParse, bad)
	}
}

func TestBoolCodec(t *testing.T) {
	require.Equal(t, format.KindBool, Bool.Kind())
	require.Equal(t, 2, Bool.BitsPerElement())
	require.Equal(t, "true", Bool.FormatLiteral(true))

	v, err := Bool.ParseLiteral("FALSE")
	require.NoError(t, err)
	require.False(t, v)

	_, err = Bool.ParseLiteral("maybe")
	require.ErrorIs(t, err, errs.ErrParse)
}
