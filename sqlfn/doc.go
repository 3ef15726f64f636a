// Package sqlfn is the boundary between a database host and the blob codec.
//
// Blobs cross the boundary as []byte, with nil standing for SQL NULL, and
// scalars as sql.Null values. The functions follow three-valued logic:
//
//   - a NULL blob passed to a read yields NULL
//   - a NULL scalar passed to a point operation yields NULL, or leaves the
//     blob unchanged for a mutation
//   - a NULL index or count passed to a range operation takes the default
//     range resolution of blob.ResolveRange
//   - a NULL blob passed to a mutation fails with errs.ErrNullArgument
//
// Mutations never modify their input slice; they return a new blob.
//
//	fn := sqlfn.New(encoding.Int32)
//	b, err := fn.Parse(sql.NullString{String: "{1,NULL,3}", Valid: true})
//	b, err = fn.Set(b, sql.Null[int]{V: 1, Valid: true}, sql.Null[int32]{V: 2, Valid: true})
//	s, err := fn.Format(b) // {1,2,3}
package sqlfn
