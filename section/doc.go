// Package section defines the low-level binary structures of a streamed sequence blob.
//
// This package provides the foundational types that describe the physical layout
// of a blob: the Layout parameters a reader must agree on, the count header that
// opens every sequence region, and the shape header that prefixes a regular array.
//
// # Overview
//
// No layout parameter is persisted. A blob starts directly with its element count,
// so the host (usually the column type) must open a stream with the same Layout it
// was written with.
//
// # Sequence Structure
//
// A sequence region consists of a count field followed by an optional null region
// and the element slots:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Count (CountWidth bytes)                                │
//	├─────────────────────────────────────────────────────────┤
//	│ Null Region (fixed-width kinds, nullable only)          │
//	│  - Bitmap: ceil(count/8) bytes, LSB first, 1 = null     │
//	│  - Sentinel: folded into each slot, see below           │
//	├─────────────────────────────────────────────────────────┤
//	│ Slots                                                   │
//	│  - Fixed: count × (sentinel byte + element size)        │
//	│  - Variable: count × ItemWidth prefixes, then payloads  │
//	│  - Bool: 2 bits per element, value then null bit        │
//	└─────────────────────────────────────────────────────────┘
//
// # Null Encoding
//
//	Strategy  | Kinds     | Null marker
//	----------|-----------|--------------------------------------
//	Bitmap    | fixed     | bit set in the leading bitmap
//	Sentinel  | fixed     | leading slot byte 0 (1 = present)
//	Prefix    | variable  | item prefix equal to ItemWidth.Max()
//	Bool      | bool      | high bit of the 2-bit pair
//
// A null prefix is all one bits, so it reads the same in either byte order.
//
// # Regular Array Structure
//
// A regular array prefixes a plain sequence with its shape:
//
//	Bytes               | Field | Description
//	--------------------|-------|------------------------------
//	CountWidth          | Rank  | Number of dimensions (>= 1)
//	Rank × CountWidth   | Dims  | Length of each dimension
//	...                 | Seq   | Sequence of product(Dims) elements
//
// # Byte Order
//
// All multi-byte integers use the byte order selected by Layout.BigEndian, little-endian
// by default. Layout.Engine returns the matching endian engine:
//
//	engine := layout.Engine()
//	count := engine.Uint32(data)
//
// # Usage Examples
//
// Writing and parsing a count header:
//
//	h, err := section.NewSequenceHeader(section.DefaultLayout(), 3)
//	data := h.Bytes() // 03 00 00 00
//
//	parsed, err := section.ParseSequenceHeader(section.DefaultLayout(), data)
//
// Most users should interact with the blob package instead of using section directly.
package section
