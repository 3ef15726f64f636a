package blob

import (
	"database/sql"
	"fmt"

	"github.com/vaseug/PowerLib-sub000/errs"
)

// Pos is an optional index or count argument.
type Pos = sql.Null[int]

// Absent is the Pos that selects the default for its position.
var Absent Pos

// At returns a present Pos.
func At(i int) Pos {
	return Pos{V: i, Valid: true}
}

// ResolveRange applies the default-resolution rule to an (index, count) pair
// over a sequence of total elements:
//
//   - both absent: the whole sequence
//   - index absent: the last count elements
//   - count absent: from index to the end
//
// The resolved range must lie within [0, total].
func ResolveRange(total int, index, count Pos) (int, int, error) {
	var at, n int
	switch {
	case !index.Valid && !count.Valid:
		at, n = 0, total
	case !index.Valid:
		at, n = total-count.V, count.V
	case !count.Valid:
		at, n = index.V, total-index.V
	default:
		at, n = index.V, count.V
	}

	if at < 0 || n < 0 || at > total || n > total-at {
		return 0, 0, fmt.Errorf("range [%d, %d+%d) outside [0, %d]: %w", at, at, n, total, errs.ErrIndexOutOfRange)
	}

	return at, n, nil
}

func checkIndex(i, count int) error {
	if i < 0 || i >= count {
		return fmt.Errorf("index %d outside [0, %d): %w", i, count, errs.ErrIndexOutOfRange)
	}

	return nil
}
