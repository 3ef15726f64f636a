// Package aggregate collects rows of a database aggregate into a sequence.
//
// An Accumulator follows the host's aggregate lifecycle:
//
//	acc, err := aggregate.New(encoding.Int32)
//	acc.Init()
//	_ = acc.Accumulate(sql.Null[int32]{V: 1, Valid: true})
//	_ = acc.Accumulate(sql.Null[int32]{})
//	seq, err := acc.Terminate(blob.NewMemStream()) // {1,NULL}
//
// Partial aggregations on different workers are combined with Merge after the
// state has travelled through MarshalBinary and UnmarshalBinary. Merge appends,
// so the element order of a merged result follows merge order, not row order.
//
// # State Envelope
//
// Serialized state is
//
//	[magic "PLAS"] [version 1B] [compression 1B] [reserved 2B]
//	[xxhash64 of raw state 8B LE] [raw length 8B LE] [payload]
//
// where the raw state is the accumulated sequence region, empty for an
// accumulator that was never initialized, and the payload is that region
// compressed with the configured codec.
package aggregate
