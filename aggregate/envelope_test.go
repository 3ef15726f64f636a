package aggregate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

func TestEnvelope_Layout(t *testing.T) {
	raw := []byte{3, 0, 0, 0, 1, 2, 3}
	data, err := sealState(raw, format.CompressionNone)
	require.NoError(t, err)

	require.Len(t, data, envelopeHeaderSize+len(raw))
	require.Equal(t, []byte{'P', 'L', 'A', 'S', 1, byte(format.CompressionNone), 0, 0}, data[:8])
	require.Equal(t, []byte{7, 0, 0, 0, 0, 0, 0, 0}, data[rawLenOffset:envelopeHeaderSize])
	require.Equal(t, raw, data[envelopeHeaderSize:])

	got, ct, err := openState(data)
	require.NoError(t, err)
	require.Equal(t, raw, got)
	require.Equal(t, format.CompressionNone, ct)
}

func TestEnvelope_Errors(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB, 0xCD}, 64)
	good, err := sealState(raw, format.CompressionNone)
	require.NoError(t, err)

	mutate := func(f func(b []byte) []byte) []byte {
		b := bytes.Clone(good)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"short", good[:envelopeHeaderSize-1], errs.ErrInvalidEnvelope},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), errs.ErrInvalidEnvelope},
		{"version", mutate(func(b []byte) []byte { b[4] = 2; return b }), errs.ErrInvalidEnvelope},
		{"compression", mutate(func(b []byte) []byte { b[5] = 0x7F; return b }), errs.ErrInvalidEnvelope},
		{"reserved", mutate(func(b []byte) []byte { b[7] = 1; return b }), errs.ErrInvalidEnvelope},
		{"payload flipped", mutate(func(b []byte) []byte { b[envelopeHeaderSize+3] ^= 0xFF; return b }), errs.ErrChecksumMismatch},
		{"checksum flipped", mutate(func(b []byte) []byte { b[checksumOffset] ^= 0x01; return b }), errs.ErrChecksumMismatch},
		{"truncated payload", good[:len(good)-1], errs.ErrChecksumMismatch},
		{"corrupt zstd", mutate(func(b []byte) []byte { b[5] = byte(format.CompressionZstd); return b }), errs.ErrInvalidEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := openState(tt.data)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEnvelope_CorruptPayloadNamesState(t *testing.T) {
	raw := bytes.Repeat([]byte{0x11, 0x22, 0x33}, 40)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		data, err := sealState(raw, ct)
		require.NoError(t, err)

		// keep the header, replace the payload with bytes no codec accepts
		data = append(data[:envelopeHeaderSize], 0xFF, 0xFE, 0xFD, 0xFC, 0x01, 0x02, 0x03)

		_, _, err = openState(data)
		require.ErrorIs(t, err, errs.ErrInvalidEnvelope, ct.String())
		require.ErrorContains(t, err, "decompress "+ct.String()+" state", ct.String())
		require.ErrorContains(t, err, "decompression of state payload failed", ct.String())
	}
}
