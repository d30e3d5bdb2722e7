package models

import (
	"encoding/json"
	"math"
)

// Value is an optional indicator point. Positions before an indicator's
// lookback are not Valid.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the undefined value.
var None = Value{}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Series is an indicator output aligned 1:1 with its input.
type Series []Value

// NewSeries returns an all-undefined series of length n.
func NewSeries(n int) Series {
	return make(Series, n)
}

// At returns the value at i, counting from the end when i is negative.
func (s Series) At(i int) Value {
	if i < 0 {
		i += len(s)
	}
	if i < 0 || i >= len(s) {
		return None
	}
	return s[i]
}

// Last returns the most recent value.
func (s Series) Last() Value { return s.At(-1) }

// LeadingInvalid counts undefined values before the first defined one.
func (s Series) LeadingInvalid() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return len(s)
}

// Defined returns the defined values in order, dropping undefined ones.
func (s Series) Defined() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Valid {
			out = append(out, v.V)
		}
	}
	return out
}
