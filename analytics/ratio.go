package analytics

import (
	"encoding/json"
	"fmt"
	"math"
)

// Ratio is a float result whose denominator may be zero. An undefined Ratio
// (no losses, no variance) is distinct from a finite zero.
type Ratio struct {
	value   float64
	defined bool
}

func FiniteRatio(v float64) Ratio {
	return Ratio{value: v, defined: true}
}

func UndefinedRatio() Ratio {
	return Ratio{}
}

// Defined reports whether the ratio has a finite value.
func (r Ratio) Defined() bool { return r.defined }

// Value returns the finite value, or 0 when undefined.
func (r Ratio) Value() float64 {
	if !r.defined {
		return 0
	}
	return r.value
}

// Float returns the value with undefined mapped to +Inf, for threshold
// comparisons where "no losses" ranks above every finite ratio.
func (r Ratio) Float() float64 {
	if !r.defined {
		return math.Inf(1)
	}
	return r.value
}

func (r Ratio) String() string {
	if !r.defined {
		return "undefined"
	}
	return fmt.Sprintf("%.2f", r.value)
}

// MarshalJSON writes a number, or the string "undefined".
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte(`"undefined"`), nil
	}
	return json.Marshal(r.value)
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
