package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest is a streaming xxHash64 used to fingerprint regions read in chunks.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty streaming digest.
func NewDigest() Digest {
	return Digest{d: xxhash.New()}
}

// Write adds p to the running hash. It never fails.
func (d Digest) Write(p []byte) {
	_, _ = d.d.Write(p)
}

// Sum64 returns the hash of everything written so far.
func (d Digest) Sum64() uint64 {
	return d.d.Sum64()
}
