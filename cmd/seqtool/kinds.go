package main

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaseug/PowerLib-sub000/blob"
	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// summary describes a blob for the inspect command.
type summary struct {
	Count       int
	Size        int64
	Dims        []int
	Fingerprint uint64
}

// kindTool runs the commands for one element kind.
type kindTool interface {
	parse(st blob.Stream, text string, regular bool, opts []blob.Option) (int, error)
	format(st blob.Stream, regular bool, opts []blob.Option) (string, error)
	inspect(st blob.Stream, regular bool, opts []blob.Option) (summary, error)
	get(st blob.Stream, index int, regular bool, opts []blob.Option) (string, error)
	set(st blob.Stream, index int, literal string, regular bool, opts []blob.Option) error
}

type tool[T any] struct {
	codec encoding.Codec[T]
}

func (t tool[T]) parse(st blob.Stream, text string, regular bool, opts []blob.Option) (int, error) {
	if regular {
		a, err := blob.ParseRegular(st, t.codec, text, opts...)
		if err != nil {
			return 0, err
		}

		return a.FlatLength(), a.Close()
	}

	s, err := blob.Parse(st, t.codec, text, opts...)
	if err != nil {
		return 0, err
	}

	return s.Count(), s.Close()
}

func (t tool[T]) format(st blob.Stream, regular bool, opts []blob.Option) (string, error) {
	if regular {
		a, err := blob.OpenRegular(st, t.codec, opts...)
		if err != nil {
			return "", err
		}

		return blob.FormatRegular(a)
	}

	s, err := blob.Open(st, t.codec, opts...)
	if err != nil {
		return "", err
	}

	return blob.Format(s)
}

// open binds the flat sequence of st. dims is nil unless regular is set.
func (t tool[T]) open(st blob.Stream, regular bool, opts []blob.Option) (*blob.Sequence[T], []int, error) {
	if !regular {
		s, err := blob.Open(st, t.codec, opts...)
		return s, nil, err
	}

	a, err := blob.OpenRegular(st, t.codec, opts...)
	if err != nil {
		return nil, nil, err
	}

	return a.Flat(), a.Dims(), nil
}

func (t tool[T]) inspect(st blob.Stream, regular bool, opts []blob.Option) (summary, error) {
	sum := summary{Size: st.Size()}

	s, dims, err := t.open(st, regular, opts)
	if err != nil {
		return summary{}, err
	}
	sum.Dims = dims

	sum.Count = s.Count()
	if sum.Fingerprint, err = s.Fingerprint(); err != nil {
		return summary{}, err
	}

	return sum, nil
}

func (t tool[T]) get(st blob.Stream, index int, regular bool, opts []blob.Option) (string, error) {
	s, _, err := t.open(st, regular, opts)
	if err != nil {
		return "", err
	}

	v, err := s.Get(index)
	if err != nil {
		return "", err
	}
	if !v.Valid {
		return blob.NullLiteral, nil
	}

	return t.codec.FormatLiteral(v.V), nil
}

func (t tool[T]) set(st blob.Stream, index int, literal string, regular bool, opts []blob.Option) error {
	vals, err := blob.ParseValues(t.codec, "{"+literal+"}")
	if err != nil {
		return err
	}
	if len(vals) != 1 {
		return fmt.Errorf("%w: %q is not a single element", errs.ErrParse, literal)
	}

	s, _, err := t.open(st, regular, opts)
	if err != nil {
		return err
	}
	if err := s.Set(index, vals[0]); err != nil {
		return err
	}

	return s.Close()
}

var kindTools = map[format.Kind]kindTool{
	format.KindBool:       tool[bool]{encoding.Bool},
	format.KindInt8:       tool[int8]{encoding.Int8},
	format.KindInt16:      tool[int16]{encoding.Int16},
	format.KindInt32:      tool[int32]{encoding.Int32},
	format.KindInt64:      tool[int64]{encoding.Int64},
	format.KindUint8:      tool[uint8]{encoding.Uint8},
	format.KindUint16:     tool[uint16]{encoding.Uint16},
	format.KindUint32:     tool[uint32]{encoding.Uint32},
	format.KindUint64:     tool[uint64]{encoding.Uint64},
	format.KindFloat32:    tool[float32]{encoding.Float32},
	format.KindFloat64:    tool[float64]{encoding.Float64},
	format.KindComplex64:  tool[complex64]{encoding.Complex64},
	format.KindComplex128: tool[complex128]{encoding.Complex128},
	format.KindDate:       tool[time.Time]{encoding.Date},
	format.KindDateTime:   tool[time.Time]{encoding.DateTime},
	format.KindInterval:   tool[time.Duration]{encoding.Interval},
	format.KindGUID:       tool[uuid.UUID]{encoding.GUID},
	format.KindInt64Range: tool[encoding.Int64Range]{encoding.Range},
	format.KindText:       tool[string]{encoding.Text},
	format.KindBinary:     tool[[]byte]{encoding.Binary},
	format.KindBigInt:     tool[*big.Int]{encoding.BigInt},
	format.KindDecimal:    tool[decimal.Decimal]{encoding.Decimal},
}

// kindNames lists the accepted --kind values.
func kindNames() []string {
	names := make([]string, 0, len(kindTools))
	for k := range kindTools {
		names = append(names, k.String())
	}
	slices.Sort(names)

	return names
}

// lookupTool resolves a kind name case-insensitively. A non-zero codepage
// selects the character encoding of Text elements.
func lookupTool(name string, codepage int) (kindTool, error) {
	for k, t := range kindTools {
		if !strings.EqualFold(k.String(), name) {
			continue
		}
		if codepage == 0 {
			return t, nil
		}
		if k != format.KindText {
			return nil, fmt.Errorf("codepage applies to Text only, not %s: %w", k, errs.ErrEncodingUnsupported)
		}
		codec, err := encoding.TextByCodepage(codepage)
		if err != nil {
			return nil, err
		}

		return tool[string]{codec}, nil
	}

	return nil, fmt.Errorf("unknown kind %q: %w", name, errs.ErrKindMismatch)
}
