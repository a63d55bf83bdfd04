// Package numeric centralizes coercion of engine values into finite,
// non-negative, rounded amounts. Every component boundary of the payroll
// engine passes its numbers through here instead of guarding ad hoc.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Finite returns v, or 0 when v is NaN or ±Inf.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative returns Finite(v) clamped at zero. The second return value
// reports whether the input had to be altered.
func NonNegative(v float64) (float64, bool) {
	f := Finite(v)
	if f < 0 {
		return 0, true
	}
	return f, f != v
}

// IsValid reports whether v is a finite, non-negative number.
func IsValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Round rounds half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	return Float(decimal.NewFromFloat(Finite(v)).Round(places))
}

// Currency returns a finite amount rounded to a whole currency unit.
func Currency(v float64) decimal.Decimal {
	return decimal.NewFromFloat(Finite(v)).Round(0)
}

// Hours returns a finite amount rounded to two decimal places.
func Hours(v float64) decimal.Decimal {
	return decimal.NewFromFloat(Finite(v)).Round(2)
}

// Float converts d back to a float64 for further arithmetic.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
