package compress

// ZstdCompressor provides Zstandard compression. It has the best ratio of the
// supported codecs and suits state that is shipped between hosts.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
