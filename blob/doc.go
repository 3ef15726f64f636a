// Package blob stores homogeneous, possibly nullable sequences in a single
// binary region and gives random access to them without decoding the whole
// region.
//
// # Core Types
//
// **Streams**: the byte regions sequences live in
//   - MemStream: pooled in-memory buffer
//   - FileStream: an *os.File
//
// **Views**: typed access to a stream
//   - Sequence: point and range reads/writes, search, enumeration
//   - Collection: a Sequence that also inserts and removes elements
//   - RegularArray: a shape header plus a row-major flat Sequence
//
// # Layout
//
// A sequence region is
//
//	[count: CountWidth] [null bitmap?] [items]
//
// where the items are, depending on the element kind,
//
//   - fixed width: count slots of (sentinel byte? + width) bytes
//   - variable width: count length prefixes of ItemWidth bytes, then the payloads
//   - boolean: two bits per element, value then null
//
// The bitmap holds ⌈count/8⌉ bytes, bit i (LSB first) set when element i is
// null, and is present only for nullable fixed-width sequences using the
// bitmap strategy. Under the sentinel strategy each slot starts with 0x00 for
// null or 0x01 for present. A variable-width element is null when its prefix
// holds the maximum value of ItemWidth. Integers are little-endian unless
// WithBigEndian is given.
//
// Only the count is persisted, so a stream must be opened with the options it
// was created with:
//
//	st := blob.NewMemStream()
//	seq, err := blob.Create(st, encoding.Int32, 4, blob.WithCountWidth(format.Size16))
//	err = seq.Set(1, sql.Null[int32]{V: 7, Valid: true})
//	err = seq.Close()
//
//	seq, err = blob.Open(st, encoding.Int32, blob.WithCountWidth(format.Size16))
//
// # Ranges
//
// Wherever an (index, count) pair appears, either part may be Absent:
// both absent select everything, an absent index selects the last count
// elements and an absent count runs from index to the end.
//
//	tail, err := seq.GetRange(blob.Absent, blob.At(2)) // last two elements
//
// # Literals
//
// Parse and Format use the brace syntax {1,NULL,3}; regular arrays nest
// braces per dimension, {{1,2},{3,4}}.
//
// Views are not safe for concurrent use.
package blob
