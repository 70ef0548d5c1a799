// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

// D parses a decimal literal and panics on error. Only for known-good test
// inputs.
func D(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// AssertDecimal fails the test when got is not numerically equal to want.
func AssertDecimal(t testing.TB, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(D(want)) {
		t.Errorf("%s = %s, expected %s", name, got, want)
	}
}
