// Package numconv coerces loosely-typed numeric fields from the inference API
// into finite float64 values.
package numconv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coerce converts v to a finite number. The boolean is false when v carries
// no usable value: nil, empty text, the "null"/"nan" sentinels, unparsable
// text, or a non-finite result.
func Coerce(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}

	var s string
	switch x := v.(type) {
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case *float64:
		if x == nil {
			return 0, false
		}
		return finite(*x)
	case json.Number:
		s = x.String()
	case string:
		s = x
	case []byte:
		s = string(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprintf("%v", x)
	}

	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// OrZero returns the coerced value, or 0 when there is none.
func OrZero(v any) float64 {
	f, _ := Coerce(v)
	return f
}

// Ptr returns the coerced value as a pointer, nil when there is none.
func Ptr(v any) *float64 {
	f, ok := Coerce(v)
	if !ok {
		return nil
	}
	return &f
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Value holds a raw JSON scalar whose numeric meaning is resolved lazily
// through Coerce. The zero Value has no value.
type Value struct {
	raw any
}

// Of wraps an arbitrary value.
func Of(v any) Value {
	return Value{raw: v}
}

// UnmarshalJSON keeps the decoded scalar as-is.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v.raw = raw
	return nil
}

// MarshalJSON writes the coerced number, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	f, ok := v.Float()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Float returns the coerced number.
func (v Value) Float() (float64, bool) {
	return Coerce(v.raw)
}

// OrZero returns the coerced number or 0.
func (v Value) OrZero() float64 {
	return OrZero(v.raw)
}

// Raw returns the value as decoded.
func (v Value) Raw() any {
	return v.raw
}
