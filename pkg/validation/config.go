// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

const (
	// highMonthlyRatePercent flags monthly rates above 5%
	highMonthlyRatePercent = "5"

	// longTermMonths flags terms above ten years
	longTermMonths = 120
)

// PolicyWarnings reports lending policies that are valid but unusual.
func PolicyWarnings(capacityFraction, monthlyRatePercent decimal.Decimal, termMonths int) []string {
	var warnings []string

	if capacityFraction.GreaterThan(decimal.RequireFromString(constants.CapacityWarningFraction)) {
		warnings = append(warnings, fmt.Sprintf(
			"Capacity fraction %s commits more than half of the client's income to one installment",
			capacityFraction))
	}

	if monthlyRatePercent.GreaterThan(decimal.RequireFromString(highMonthlyRatePercent)) {
		warnings = append(warnings, fmt.Sprintf(
			"Monthly interest rate %s%% is above %s%%", monthlyRatePercent, highMonthlyRatePercent))
	}

	if monthlyRatePercent.IsZero() {
		warnings = append(warnings, "Monthly interest rate is zero; maximum amount equals total repayment")
	}

	if termMonths > longTermMonths {
		warnings = append(warnings, fmt.Sprintf(
			"Term of %d months exceeds %d months", termMonths, longTermMonths))
	}

	return warnings
}
