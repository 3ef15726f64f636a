package aggregate

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
	"github.com/vaseug/PowerLib-sub000/internal/options"
)

type state uint8

const (
	uninitialized state = iota
	accumulating
	finalized
)

func (s state) String() string {
	switch s {
	case uninitialized:
		return "uninitialized"
	case accumulating:
		return "accumulating"
	case finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Accumulator collects aggregate rows into an append-only sequence.
//
// It is not safe for concurrent use. One instance may be reused across
// groups by calling Init again.
type Accumulator[T any] struct {
	codec encoding.Codec[T]
	cfg   *config

	state state
	st    *blob.MemStream
	list  *blob.Collection[T]
}

// New creates an uninitialized accumulator for codec's element kind.
func New[T any](codec encoding.Codec[T], opts ...Option) (*Accumulator[T], error) {
	if codec == nil {
		return nil, fmt.Errorf("codec: %w", errs.ErrNullArgument)
	}

	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if _, err := blob.LayoutOf(cfg.seqOpts...); err != nil {
		return nil, err
	}

	return &Accumulator[T]{codec: codec, cfg: cfg}, nil
}

// Init starts a new group, discarding anything accumulated so far.
func (a *Accumulator[T]) Init() error {
	return a.reset(blob.NewMemStream(), false)
}

func (a *Accumulator[T]) reset(st *blob.MemStream, open bool) error {
	var (
		list *blob.Collection[T]
		err  error
	)
	if open {
		list, err = blob.OpenCollection(st, a.codec, a.cfg.seqOpts...)
	} else {
		list, err = blob.NewCollection(st, a.codec, a.cfg.seqOpts...)
	}
	if err != nil {
		st.Release()
		return err
	}

	a.release()
	a.st, a.list, a.state = st, list, accumulating

	return nil
}

func (a *Accumulator[T]) release() {
	if a.st != nil {
		a.st.Release()
	}
	a.st, a.list, a.state = nil, nil, uninitialized
}

// Initialized reports whether Init has been called for the current group.
func (a *Accumulator[T]) Initialized() bool {
	return a.state != uninitialized
}

// Count returns the number of accumulated elements.
func (a *Accumulator[T]) Count() int {
	if a.list == nil {
		return 0
	}

	return a.list.Count()
}

// Accumulate appends one row. It does nothing before Init.
func (a *Accumulator[T]) Accumulate(v sql.Null[T]) error {
	switch a.state {
	case uninitialized:
		return nil
	case finalized:
		return fmt.Errorf("accumulate while %s: %w", a.state, errs.ErrClosed)
	}

	return a.list.Add(v)
}

// Merge appends every element accumulated by other.
//
// An uninitialized other contributes nothing. An uninitialized receiver is
// initialized first, so merging partial states never loses rows.
func (a *Accumulator[T]) Merge(other *Accumulator[T]) error {
	if other == nil || other.state == uninitialized {
		return nil
	}
	if a.state == finalized {
		return fmt.Errorf("merge while %s: %w", a.state, errs.ErrClosed)
	}
	if a.state == uninitialized {
		if err := a.Init(); err != nil {
			return err
		}
	}

	return a.list.AddSequence(other.list.Sequence)
}

// Terminate writes the accumulated elements to dst as a sequence.
//
// It returns a nil sequence when Init was never called and an empty sequence
// when Init was called but no rows arrived. After Terminate only Init, the
// state methods and Release may be used.
func (a *Accumulator[T]) Terminate(dst blob.Stream) (*blob.Sequence[T], error) {
	if a.state == uninitialized {
		return nil, nil
	}

	seq, err := a.list.CopyRange(dst, blob.Absent, blob.Absent)
	if err != nil {
		return nil, err
	}
	a.state = finalized

	return seq, nil
}

// Release drops the accumulated state and returns the accumulator to the
// uninitialized state.
func (a *Accumulator[T]) Release() {
	a.release()
}

// MarshalBinary serializes the accumulated state into an envelope.
func (a *Accumulator[T]) MarshalBinary() ([]byte, error) {
	var raw []byte
	if a.state != uninitialized {
		if err := a.list.Flush(); err != nil {
			return nil, err
		}
		raw = a.st.Bytes()
	}

	return sealState(raw, a.cfg.compression)
}

// UnmarshalBinary replaces the state with one produced by MarshalBinary.
// The envelope may use any compression; the accumulator keeps its own
// setting for later MarshalBinary calls.
func (a *Accumulator[T]) UnmarshalBinary(data []byte) error {
	raw, _, err := openState(data)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		a.release()
		return nil
	}

	return a.reset(blob.NewMemStreamBytes(raw), true)
}

// WriteTo writes the serialized state to w.
func (a *Accumulator[T]) WriteTo(w io.Writer) (int64, error) {
	data, err := a.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)

	return int64(n), err
}

// ReadFrom reads serialized state from r until EOF.
func (a *Accumulator[T]) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}

	return int64(len(data)), a.UnmarshalBinary(data)
}
