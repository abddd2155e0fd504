package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// OptionalFloat is a float64 that may be absent.
// Absence is explicit; zero is a legitimate value.
type OptionalFloat struct {
	value float64
	set   bool
}

// Some wraps a present value
func Some(v float64) OptionalFloat {
	return OptionalFloat{value: v, set: true}
}

// None returns an absent value
func None() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is present
func (o OptionalFloat) Get() (float64, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present
func (o OptionalFloat) IsSet() bool {
	return o.set
}

// Usable reports whether a value is present and finite
func (o OptionalFloat) Usable() bool {
	return o.set && !math.IsNaN(o.value) && !math.IsInf(o.value, 0)
}

// Ptr returns a pointer to a copy of the value, or nil when absent
func (o OptionalFloat) Ptr() *float64 {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// FromPtr converts a nullable pointer (e.g. a scanned SQL column)
func FromPtr(p *float64) OptionalFloat {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// MarshalJSON encodes absent and non-finite values as null
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Usable() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(o.value, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
