// Package compress provides the block codecs used for serialized aggregate
// state.
//
// Sequences themselves are never compressed: random access depends on the
// bytes staying where the layout puts them. Compression applies only to the
// opaque state that an aggregate accumulator hands to its host between
// partial aggregation steps.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): data passes through unchanged
//   - Zstd (format.CompressionZstd): best ratio, klauspost/compress by default,
//     valyala/gozstd when built with cgo and the gozstd tag
//   - S2 (format.CompressionS2): balanced speed and ratio
//   - LZ4 (format.CompressionLZ4): fastest decompression
//
// All codecs are safe for concurrent use.
//
//	codec, err := compress.CreateCodec(format.CompressionS2, "state")
//	packed, err := codec.Compress(raw)
//	raw, err = codec.Decompress(packed)
package compress
