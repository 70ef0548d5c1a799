// Package mathutil provides common decimal utility functions for currency math.
package mathutil

import (
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Only display and comparison code should call this.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// Div divides a by b retaining InternalPrecision decimals.
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, constants.InternalPrecision)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// PercentToRate converts a percentage such as 1.5 into the rate 0.015. The
// conversion is exact at any precision.
func PercentToRate(percent decimal.Decimal) decimal.Decimal {
	return percent.Shift(-2)
}

// PowInt raises base to a non-negative integer exponent by repeated
// multiplication, so the result is exact.
func PowInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for i := 0; i < exp; i++ {
		result = result.Mul(base)
	}
	return result
}
