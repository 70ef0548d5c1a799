package mathutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Round up at midpoint", "1.235", "1.24"},
		{"Round down below midpoint", "1.234", "1.23"},
		{"No rounding needed", "1.23", "1.23"},
		{"Large number", "12345.678", "12345.68"},
		{"Negative number round down", "-1.234", "-1.23"},
		{"Zero", "0", "0"},
		{"Very small positive", "0.001", "0"},
		{"Nearly two cents", "0.019", "0.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(d(tt.input))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("Round(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(d("100.004"), d("100"), d("0.01")) {
		t.Error("expected values to be within tolerance")
	}
	if WithinTolerance(d("100.02"), d("100"), d("0.01")) {
		t.Error("expected values to be outside tolerance")
	}
}

func TestPercentToRate(t *testing.T) {
	tests := []struct {
		name     string
		percent  string
		expected string
	}{
		{"Default rate", "1.5", "0.015"},
		{"Zero", "0", "0"},
		{"Whole percent", "100", "1"},
		{"Tiny rate", "0.000000000000001", "0.00000000000000001"},
		{"High precision", "1.23456789012345678901", "0.0123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentToRate(d(tt.percent))
			if !got.Equal(d(tt.expected)) {
				t.Errorf("PercentToRate(%s) = %s, expected %s", tt.percent, got, tt.expected)
			}
			if !d(tt.percent).IsZero() && got.IsZero() {
				t.Errorf("PercentToRate(%s) lost a nonzero rate", tt.percent)
			}
		})
	}
}

func TestPowInt(t *testing.T) {
	tests := []struct {
		base     string
		exp      int
		expected string
	}{
		{"2", 0, "1"},
		{"2", 10, "1024"},
		{"1.1", 2, "1.21"},
		{"1.015", 3, "1.045678375"},
	}

	for _, tt := range tests {
		if got := PowInt(d(tt.base), tt.exp); !got.Equal(d(tt.expected)) {
			t.Errorf("PowInt(%s, %d) = %s, expected %s", tt.base, tt.exp, got, tt.expected)
		}
	}
}

func TestDiv(t *testing.T) {
	got := Div(d("1"), d("3"))
	if got.Exponent() != -16 {
		t.Errorf("expected 16 decimals, got exponent %d", got.Exponent())
	}
	if !Round(got).Equal(d("0.33")) {
		t.Errorf("Div(1, 3) rounded = %s, expected 0.33", Round(got))
	}
}
