package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

func testPayloads() map[string][]byte {
	random := make([]byte, 4096)
	x := uint32(2463534242)
	for i := range random {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		random[i] = byte(x)
	}

	return map[string][]byte{
		"single":     {0x42},
		"repetitive": bytes.Repeat([]byte("PLAS state "), 500),
		"zeros":      make([]byte, 64*1024),
		"random":     random,
	}
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err, ct.String())
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(format.CompressionType(0x7F), "state")
	require.ErrorIs(t, err, errs.ErrInvalidEnvelope)
	require.Contains(t, err.Error(), "state")
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err)

		for name, data := range testPayloads() {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				packed, err := codec.Compress(data)
				require.NoError(t, err)

				out, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, data, out)
			})
		}
	}
}

func TestCodec_Empty(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err)

		packed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, packed)

		out, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}

func TestCodec_Corrupted(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0x01, 0x02, 0x03}

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.ErrorContains(t, err, "decompression of state payload failed", ct.String())
	}
}

func TestNoOp_SharesMemory(t *testing.T) {
	data := []byte{1, 2, 3}
	out, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestMeasure(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 10000)

	packed, stats, err := Measure(NewS2Compressor(), format.CompressionS2, data)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), stats.OriginalSize)
	require.Equal(t, int64(len(packed)), stats.CompressedSize)
	require.Less(t, stats.Ratio(), 0.1)
	require.Greater(t, stats.SpaceSavings(), 90.0)

	require.Zero(t, Stats{}.Ratio())
}
