package aggregate

import (
	"bytes"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/compress"
	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
	"github.com/vaseug/PowerLib-sub000/internal/hash"
)

const (
	envelopeVersion    = 1
	envelopeHeaderSize = 24

	checksumOffset = 8
	rawLenOffset   = 16
)

var (
	envelopeMagic  = [4]byte{'P', 'L', 'A', 'S'}
	envelopeEngine = endian.GetLittleEndianEngine()
)

// sealState wraps raw state in an envelope, compressing it with ct.
func sealState(raw []byte, ct format.CompressionType) ([]byte, error) {
	codec, err := compress.CreateCodec(ct, "state")
	if err != nil {
		return nil, err
	}
	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress state: %w", err)
	}

	out := make([]byte, envelopeHeaderSize, envelopeHeaderSize+len(payload))
	copy(out, envelopeMagic[:])
	out[4] = envelopeVersion
	out[5] = byte(ct)
	envelopeEngine.PutUint64(out[checksumOffset:], hash.Checksum(raw))
	envelopeEngine.PutUint64(out[rawLenOffset:], uint64(len(raw)))

	return append(out, payload...), nil
}

// openState validates an envelope and returns the raw state it carries.
func openState(data []byte) ([]byte, format.CompressionType, error) {
	if len(data) < envelopeHeaderSize {
		return nil, 0, fmt.Errorf("%d bytes, header needs %d: %w", len(data), envelopeHeaderSize, errs.ErrInvalidEnvelope)
	}
	if !bytes.Equal(data[:4], envelopeMagic[:]) {
		return nil, 0, fmt.Errorf("magic %q: %w", data[:4], errs.ErrInvalidEnvelope)
	}
	if data[4] != envelopeVersion {
		return nil, 0, fmt.Errorf("version %d: %w", data[4], errs.ErrInvalidEnvelope)
	}
	if data[6] != 0 || data[7] != 0 {
		return nil, 0, fmt.Errorf("reserved bytes set: %w", errs.ErrInvalidEnvelope)
	}

	ct := format.CompressionType(data[5])
	codec, err := compress.CreateCodec(ct, "state")
	if err != nil {
		return nil, 0, err
	}

	raw, err := codec.Decompress(data[envelopeHeaderSize:])
	if err != nil {
		return nil, 0, fmt.Errorf("decompress %s state: %w: %w", ct, errs.ErrInvalidEnvelope, err)
	}

	rawLen := envelopeEngine.Uint64(data[rawLenOffset:])
	if uint64(len(raw)) != rawLen {
		return nil, 0, fmt.Errorf("state is %d bytes, envelope says %d: %w", len(raw), rawLen, errs.ErrChecksumMismatch)
	}
	if sum := envelopeEngine.Uint64(data[checksumOffset:]); hash.Checksum(raw) != sum {
		return nil, 0, fmt.Errorf("state checksum %016x, envelope says %016x: %w", hash.Checksum(raw), sum, errs.ErrChecksumMismatch)
	}

	return raw, ct, nil
}
