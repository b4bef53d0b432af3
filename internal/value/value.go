// Package value implements the tagged scalar Value that every cell in a
// Row holds, along with the coercions the evaluator and SQL result
// reader rely on.
package value

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pivotql/pivotql/internal/perr"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindNumber
	KindDate
)

// Value is a tagged scalar: exactly one of the accessors matching Kind
// is meaningful.
type Value struct {
	kind Kind
	b    bool
	s    string
	f    float64
	d    time.Time
}

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Number(f float64) Value { return Value{kind: KindNumber, f: f} }
func Date(d time.Time) Value { return Value{kind: KindDate, d: d} }

func (v Value) Kind() Kind          { return v.kind }
func (v Value) BoolVal() bool       { return v.b }
func (v Value) StringVal() string   { return v.s }
func (v Value) NumberVal() float64  { return v.f }
func (v Value) DateVal() time.Time  { return v.d }

// AsString renders a Value as text: String passes through, Number
// renders as a plain decimal, Date renders as a short general
// date/time, Bool renders as "True"/"False".
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindDate:
		return v.d.Format("1/2/2006 3:04:05 PM")
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	}
	return ""
}

// AsFloat coerces a Value to a float64: String is parsed as a double
// and fails on bad input, Number passes through, Date yields ticks
// (100ns units since 0001-01-01, the .NET DateTime.Ticks convention),
// Bool yields 1.0/0.0.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.f, nil
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, perr.New(perr.TypeError, "cannot parse %q as a number", v.s)
		}
		return f, nil
	case KindDate:
		return float64(ticksSinceEpoch(v.d)), nil
	case KindBool:
		if v.b {
			return 1.0, nil
		}
		return 0.0, nil
	}
	return 0, perr.New(perr.TypeError, "unreachable value kind")
}

// epoch is 0001-01-01T00:00:00Z, the .NET DateTime tick origin.
var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

const ticksPerSecond = 10_000_000

func ticksSinceEpoch(t time.Time) int64 {
	u := t.UTC()
	return (u.Unix()-epoch.Unix())*ticksPerSecond + int64(u.Nanosecond())/100
}

func (v Value) String() string {
	return fmt.Sprintf("Value(%s)", v.AsString())
}
