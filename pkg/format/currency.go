// Package format converts between display strings and decimal amounts at the
// user-facing boundary. Amounts are rendered the es-BO way: "." groups
// thousands and "," separates decimals.
package format

import (
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with separators and the Bolivianos
// suffix (e.g., "-1.234,56 Bs").
func Currency(amount decimal.Decimal) string {
	return NumericCurrency(amount) + " " + constants.CurrencySymbol
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1.234,56").
func NumericCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(constants.DecimalPlaces)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(rounded.Abs())
}

// Percent renders a percentage with a decimal comma (e.g., "1,5%").
func Percent(value decimal.Decimal) string {
	return strings.Replace(value.String(), ".", ",", 1) + "%"
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.DecimalPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "," + decPart
}
