// Package formulas holds the guarded arithmetic and statistics helpers used by the analytics engine.
// Every helper returns a finite number: NaN and Inf never escape.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return Finite(stat.Mean(data, nil))
}

// SafeDiv divides numerator by denominator, returning 0 when the denominator is zero
// or the quotient is not finite.
func SafeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return Finite(numerator / denominator)
}

// SafeDivPtr is SafeDiv with an explicit null for a zero denominator.
func SafeDivPtr(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := Finite(numerator / denominator)
	return &v
}

// DeltaPct returns the percentage change from previous to current.
//
// A zero previous value has no meaningful ratio, so it maps to a fixed sentinel:
// 100 when current is positive, 0 otherwise.
func DeltaPct(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return Finite((current - previous) / math.Abs(previous) * 100)
}

// Pct returns part / whole × 100, or 0 when whole is zero.
func Pct(part, whole float64) float64 {
	return SafeDiv(part, whole) * 100
}

// NonNegative clamps negative values to zero.
func NonNegative(v float64) float64 {
	if v < 0 || isNaN(v) {
		return 0
	}
	return v
}

// Finite replaces NaN and ±Inf with zero.
func Finite(v float64) float64 {
	if isNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isNaN(v float64) bool {
	return math.IsNaN(v)
}
