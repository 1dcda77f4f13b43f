// Package metric carries derived numbers that may be not computable.
//
// Every division performed by the calculation engines goes through SafeDiv so
// that a zero head count, zero weight gain or zero days on feed surfaces as an
// explicit not-computable Value instead of NaN, Inf or a panic. Not-computable
// values serialize to JSON null and render as "N/A".
package metric

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// NotComputableLabel is what a not-computable value renders as.
const NotComputableLabel = "N/A"

// Value is a float64 that may be absent.
type Value struct {
	v  float64
	ok bool
}

// NA is the not-computable value.
var NA = Value{}

// Of wraps v. Non-finite inputs collapse to NA.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Value{v: v, ok: true}
}

// SafeDiv returns num/den, or NA when den is zero, negative or either operand
// is not finite.
func SafeDiv(num, den float64) Value {
	if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return NA
	}
	return Of(num / den)
}

// Valid reports whether the value was computable.
func (m Value) Valid() bool { return m.ok }

// Equal reports whether both values are not computable or hold the same number.
func (m Value) Equal(o Value) bool { return m.ok == o.ok && (!m.ok || m.v == o.v) }

// Float64 returns the raw number and whether it is valid.
func (m Value) Float64() (float64, bool) { return m.v, m.ok }

// Or returns the number, or fallback when not computable.
func (m Value) Or(fallback float64) float64 {
	if !m.ok {
		return fallback
	}
	return m.v
}

// Map applies fn to a computable value and keeps NA as NA.
func (m Value) Map(fn func(float64) float64) Value {
	if !m.ok {
		return NA
	}
	return Of(fn(m.v))
}

// Round rounds to the given number of decimal places.
func (m Value) Round(places int) Value {
	return m.Map(func(v float64) float64 { return Round(v, places) })
}

// Format renders the value with a printf verb, or "N/A".
func (m Value) Format(verb string) string {
	if !m.ok {
		return NotComputableLabel
	}
	return fmt.Sprintf(verb, m.v)
}

func (m Value) String() string { return m.Format("%.2f") }

// MarshalJSON emits null for not-computable values.
func (m Value) MarshalJSON() ([]byte, error) {
	if !m.ok {
		return []byte("null"), nil
	}
	return json.Marshal(m.v)
}

// UnmarshalJSON accepts a number or null.
func (m *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = NA
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("metric value: %w", err)
	}
	*m = Of(v)
	return nil
}

// MarshalBSONValue stores not-computable values as BSON null.
func (m Value) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !m.ok {
		return bsontype.Null, nil, nil
	}
	return bsontype.Double, bsoncore.AppendDouble(nil, m.v), nil
}

// UnmarshalBSONValue reads a BSON double, int or null.
func (m *Value) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*m = NA
	case bsontype.Double:
		v, _, ok := bsoncore.ReadDouble(data)
		if !ok {
			return fmt.Errorf("metric value: malformed double")
		}
		*m = Of(v)
	case bsontype.Int32:
		v, _, ok := bsoncore.ReadInt32(data)
		if !ok {
			return fmt.Errorf("metric value: malformed int32")
		}
		*m = Of(float64(v))
	case bsontype.Int64:
		v, _, ok := bsoncore.ReadInt64(data)
		if !ok {
			return fmt.Errorf("metric value: malformed int64")
		}
		*m = Of(float64(v))
	default:
		return fmt.Errorf("metric value: unsupported bson type %s", t)
	}
	return nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
