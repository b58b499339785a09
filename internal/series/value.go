package series

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
)

// Type is the scalar type of a column.
type Type int

const (
	TypeString Type = iota
	TypeInt64
	TypeFloat64
	TypeBool
	TypeDate
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// TypeOf maps an Arrow data type onto a column Type.
func TypeOf(dt arrow.DataType) (Type, bool) {
	//nolint:exhaustive // only the column types a table can hold
	switch dt.ID() {
	case arrow.STRING:
		return TypeString, true
	case arrow.INT64:
		return TypeInt64, true
	case arrow.FLOAT64:
		return TypeFloat64, true
	case arrow.BOOL:
		return TypeBool, true
	case arrow.DATE32:
		return TypeDate, true
	default:
		return 0, false
	}
}

// Value is a single table cell: a typed scalar, or the missing sentinel of a type.
// The zero Value is a missing string.
type Value struct {
	typ   Type
	valid bool
	str   string
	num   int64 // int64, bool as 0/1, date as days since the epoch
	flt   float64
}

// Missing returns the missing sentinel for the given type.
func Missing(t Type) Value { return Value{typ: t} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{typ: TypeString, valid: true, str: s} }

// Int64Value wraps an int64.
func Int64Value(i int64) Value { return Value{typ: TypeInt64, valid: true, num: i} }

// Float64Value wraps a float64.
func Float64Value(f float64) Value { return Value{typ: TypeFloat64, valid: true, flt: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value {
	v := Value{typ: TypeBool, valid: true}
	if b {
		v.num = 1
	}
	return v
}

// DateValue wraps the calendar date of t. The time of day is dropped.
func DateValue(t time.Time) Value {
	return Value{typ: TypeDate, valid: true, num: int64(arrow.Date32FromTime(t))}
}

func dateValue(d arrow.Date32) Value {
	return Value{typ: TypeDate, valid: true, num: int64(d)}
}

// Type returns the scalar type.
func (v Value) Type() Type { return v.typ }

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool { return !v.valid }

// Str returns the string payload, or "" for other types.
func (v Value) Str() string {
	if v.typ != TypeString || !v.valid {
		return ""
	}
	return v.str
}

// Int64 returns the integer payload, or 0 for other types.
func (v Value) Int64() int64 {
	if v.typ != TypeInt64 || !v.valid {
		return 0
	}
	return v.num
}

// Float64 returns the float payload, or 0 for other types.
func (v Value) Float64() float64 {
	if v.typ != TypeFloat64 || !v.valid {
		return 0
	}
	return v.flt
}

// Bool returns the boolean payload, or false for other types.
func (v Value) Bool() bool {
	return v.typ == TypeBool && v.valid && v.num == 1
}

// Time returns the date payload at midnight UTC, or the zero time for other types.
func (v Value) Time() time.Time {
	if v.typ != TypeDate || !v.valid {
		return time.Time{}
	}
	return arrow.Date32(v.num).ToTime()
}

// Number returns v as a float64 for numeric and boolean values (true is 1).
// ok is false for missing values and non-numeric types.
func (v Value) Number() (f float64, ok bool) {
	if !v.valid {
		return 0, false
	}
	//nolint:exhaustive // strings and dates are not numbers
	switch v.typ {
	case TypeInt64, TypeBool:
		return float64(v.num), true
	case TypeFloat64:
		return v.flt, true
	default:
		return 0, false
	}
}

// Equal reports exact equality: same type and same payload. Two missing values of
// the same type are equal. No coercion happens across types.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ || v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	switch v.typ {
	case TypeString:
		return v.str == o.str
	case TypeFloat64:
		return v.flt == o.flt || (math.IsNaN(v.flt) && math.IsNaN(o.flt))
	default:
		return v.num == o.num
	}
}

// IsNA reports whether v is missing or a float NaN. Neither has an order.
func (v Value) IsNA() bool {
	return !v.valid || (v.typ == TypeFloat64 && math.IsNaN(v.flt))
}

// Compare orders two values of the same type; missing and NaN sort after
// everything and compare equal to each other. Numeric types compare across int64,
// float64 and bool.
func (v Value) Compare(o Value) int {
	vna, ona := v.IsNA(), o.IsNA()
	switch {
	case vna && ona:
		return 0
	case vna:
		return 1
	case ona:
		return -1
	}
	if v.typ == TypeString && o.typ == TypeString {
		switch {
		case v.str < o.str:
			return -1
		case v.str > o.str:
			return 1
		}
		return 0
	}
	a, aok := v.Number()
	b, bok := o.Number()
	if !aok || !bok {
		a, b = float64(v.num), float64(o.num)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// AppendKey appends an unambiguous binary encoding of v, used for hashing group keys.
func (v Value) AppendKey(buf *bytes.Buffer) {
	buf.WriteByte(byte(v.typ))
	if !v.valid {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	var scratch [8]byte
	switch v.typ {
	case TypeString:
		binary.LittleEndian.PutUint64(scratch[:], uint64(len(v.str)))
		buf.Write(scratch[:])
		buf.WriteString(v.str)
	case TypeFloat64:
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v.flt))
		buf.Write(scratch[:])
	default:
		binary.LittleEndian.PutUint64(scratch[:], uint64(v.num))
		buf.Write(scratch[:])
	}
}

// String formats v for tabular output. Missing values print as NaN (NaT for dates).
func (v Value) String() string {
	if !v.valid {
		if v.typ == TypeDate {
			return "NaT"
		}
		return "NaN"
	}
	switch v.typ {
	case TypeString:
		return v.str
	case TypeInt64:
		return strconv.FormatInt(v.num, 10)
	case TypeFloat64:
		return strconv.FormatFloat(v.flt, 'f', 6, 64)
	case TypeBool:
		return strconv.FormatBool(v.num == 1)
	case TypeDate:
		return v.Time().Format(time.DateOnly)
	default:
		return ""
	}
}
