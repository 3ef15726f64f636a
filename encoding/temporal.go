package encoding

import (
	"fmt"
	"math"
	"time"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

const (
	dateLayout  = "2006-01-02"
	secondsADay = 24 * 60 * 60
)

// Instants representable as int64 Unix nanoseconds.
var (
	minDateTime = time.Unix(0, math.MinInt64)
	maxDateTime = time.Unix(0, math.MaxInt64)
)

// DateCodec stores a calendar date as a signed 32-bit count of days since 1970-01-01.
// Decoded values are midnight UTC.
type DateCodec struct{}

// DateTimeCodec stores an instant as signed 64-bit Unix nanoseconds.
// Decoded values are in UTC.
type DateTimeCodec struct{}

// IntervalCodec stores a time.Duration as signed 64-bit nanoseconds.
type IntervalCodec struct{}

var (
	Date     FixedCodec[time.Time]     = DateCodec{}
	DateTime FixedCodec[time.Time]     = DateTimeCodec{}
	Interval FixedCodec[time.Duration] = IntervalCodec{}
)

func (DateCodec) Kind() format.Kind { return format.KindDate }
func (DateCodec) Width() int        { return 4 }
func (DateCodec) Quoted() bool      { return false }

// Equal compares calendar dates, ignoring the time of day.
func (DateCodec) Equal(a, b time.Time) bool {
	return daysOf(a) == daysOf(b)
}

// Check rejects dates whose day number does not fit in 32 bits.
func (DateCodec) Check(v time.Time) error {
	if d := daysOf(v); d < math.MinInt32 || d > math.MaxInt32 {
		return fmt.Errorf("%s %s: %w", format.KindDate, v.Format(dateLayout), errs.ErrValueTooLarge)
	}

	return nil
}

func (DateCodec) Put(engine endian.EndianEngine, dst []byte, v time.Time) {
	engine.PutUint32(dst, uint32(int32(daysOf(v)))) //nolint:gosec
}

func (DateCodec) Decode(engine endian.EndianEngine, src []byte) (time.Time, error) {
	if len(src) < 4 {
		return time.Time{}, shortError(format.KindDate, len(src), 4)
	}
	days := int32(engine.Uint32(src)) //nolint:gosec

	return time.Unix(int64(days)*secondsADay, 0).UTC(), nil
}

func (DateCodec) FormatLiteral(v time.Time) string {
	return v.UTC().Format(dateLayout)
}

func (DateCodec) ParseLiteral(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, parseError(format.KindDate, s, err)
	}

	return t, nil
}

func daysOf(t time.Time) int64 {
	secs := t.Unix()
	days := secs / secondsADay
	if secs%secondsADay < 0 {
		days--
	}

	return days
}

func (DateTimeCodec) Kind() format.Kind { return format.KindDateTime }
func (DateTimeCodec) Width() int        { return 8 }
func (DateTimeCodec) Quoted() bool      { return false }

func (DateTimeCodec) Equal(a, b time.Time) bool {
	return a.Equal(b)
}

// Check rejects instants outside the int64 Unix nanosecond range,
// roughly the years 1678 to 2262.
func (DateTimeCodec) Check(v time.Time) error {
	if v.Before(minDateTime) || v.After(maxDateTime) {
		return fmt.Errorf("%s %s outside %s..%s: %w", format.KindDateTime,
			v.UTC().Format(time.RFC3339Nano), minDateTime.UTC().Format(time.RFC3339Nano),
			maxDateTime.UTC().Format(time.RFC3339Nano), errs.ErrValueTooLarge)
	}

	return nil
}

func (DateTimeCodec) Put(engine endian.EndianEngine, dst []byte, v time.Time) {
	engine.PutUint64(dst, uint64(v.UnixNano())) //nolint:gosec
}

func (DateTimeCodec) Decode(engine endian.EndianEngine, src []byte) (time.Time, error) {
	if len(src) < 8 {
		return time.Time{}, shortError(format.KindDateTime, len(src), 8)
	}

	return time.Unix(0, int64(engine.Uint64(src))).UTC(), nil //nolint:gosec
}

func (DateTimeCodec) FormatLiteral(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}

func (DateTimeCodec) ParseLiteral(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, parseError(format.KindDateTime, s, err)
	}
	if err := (DateTimeCodec{}).Check(t); err != nil {
		return time.Time{}, parseError(format.KindDateTime, s, err)
	}

	return t.UTC(), nil
}

func (IntervalCodec) Kind() format.Kind             { return format.KindInterval }
func (IntervalCodec) Width() int                    { return 8 }
func (IntervalCodec) Quoted() bool                  { return false }
func (IntervalCodec) Equal(a, b time.Duration) bool { return a == b }

func (IntervalCodec) Put(engine endian.EndianEngine, dst []byte, v time.Duration) {
	engine.PutUint64(dst, uint64(v)) //nolint:gosec
}

func (IntervalCodec) Decode(engine endian.EndianEngine, src []byte) (time.Duration, error) {
	if len(src) < 8 {
		return 0, shortError(format.KindInterval, len(src), 8)
	}

	return time.Duration(engine.Uint64(src)), nil //nolint:gosec
}

func (IntervalCodec) FormatLiteral(v time.Duration) string {
	return v.String()
}

func (IntervalCodec) ParseLiteral(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, parseError(format.KindInterval, s, err)
	}

	return d, nil
}
