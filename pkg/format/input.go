package format

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyAmount is returned when no digits were entered.
	ErrEmptyAmount = errors.New("amount is empty")

	// ErrNegativeAmount is returned for amounts with a leading minus sign.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrMalformedGrouping is returned when thousands groups are not three
	// digits long, as in "1.2.3".
	ErrMalformedGrouping = errors.New("malformed digit grouping")

	// ErrAmountOutOfRange is returned for amounts with too many integer or
	// fractional digits.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// Amount bounds. Checked on the exponent and digit count so that values like
// 1e999999999 are rejected without being expanded.
const (
	maxIntegerDigits    = 12
	maxFractionalDigits = 8
)

// ParseAmount normalizes a locale-formatted amount into a decimal. Both
// "5.000,50" and "5,000.50" are accepted, as is a trailing or leading "Bs".
// When only one kind of separator appears, a single occurrence followed by
// exactly three digits is read as a thousands separator. Thousands groups
// must be three digits long.
func ParseAmount(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	s = trimCurrencySymbol(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")

	for _, r := range s {
		if r != '.' && r != ',' && !unicode.IsDigit(r) {
			return decimal.Zero, fmt.Errorf("invalid character %q in amount %q", r, input)
		}
	}

	normalized, err := normalizeSeparators(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	if strings.Trim(normalized, ".") == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	if err := CheckRange(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ParseDecimal parses a plain decimal literal such as a JSON number,
// exponent notation included, under the same bounds as ParseAmount.
func ParseDecimal(input string) (decimal.Decimal, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if err := CheckRange(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// CheckRange rejects amounts with more than 12 integer digits or more than 8
// decimal places. It inspects only the coefficient and exponent.
func CheckRange(amount decimal.Decimal) error {
	exp := amount.Exponent()
	if exp < -maxFractionalDigits {
		return fmt.Errorf("%w: more than %d decimal places", ErrAmountOutOfRange, maxFractionalDigits)
	}
	if amount.IsZero() {
		return nil
	}
	if int64(amount.NumDigits())+int64(exp) > maxIntegerDigits {
		return fmt.Errorf("%w: more than %d integer digits", ErrAmountOutOfRange, maxIntegerDigits)
	}
	return nil
}

func trimCurrencySymbol(s string) string {
	upper := strings.ToUpper(s)
	symbol := strings.ToUpper(constants.CurrencySymbol)
	switch {
	case strings.HasSuffix(upper, symbol):
		return strings.TrimSpace(s[:len(s)-len(symbol)])
	case strings.HasPrefix(upper, symbol):
		return strings.TrimSpace(s[len(symbol):])
	}
	return s
}

func normalizeSeparators(s string) (string, error) {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep, groupSep, last := ".", ",", lastDot
		if lastComma > lastDot {
			decimalSep, groupSep, last = ",", ".", lastComma
		}
		integer := s[:last]
		if strings.Contains(integer, decimalSep) || !validGrouping(integer, groupSep) {
			return "", ErrMalformedGrouping
		}
		return strings.ReplaceAll(integer, groupSep, "") + "." + s[last+1:], nil
	case lastComma >= 0:
		return resolveSingleSeparator(s, ",", lastComma)
	case lastDot >= 0:
		return resolveSingleSeparator(s, ".", lastDot)
	}
	return s, nil
}

func resolveSingleSeparator(s, sep string, last int) (string, error) {
	if strings.Count(s, sep) > 1 {
		if !validGrouping(s, sep) {
			return "", ErrMalformedGrouping
		}
		return strings.ReplaceAll(s, sep, ""), nil
	}
	if len(s)-last-1 == 3 && validGrouping(s, sep) {
		return strings.ReplaceAll(s, sep, ""), nil
	}
	return strings.Replace(s, sep, ".", 1), nil
}

// validGrouping reports whether s splits on sep into a leading group of one
// to three digits followed by groups of exactly three.
func validGrouping(s, sep string) bool {
	groups := strings.Split(s, sep)
	if len(groups[0]) == 0 || len(groups[0]) > 3 && len(groups) > 1 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// SanitizeClientName keeps letters, spaces, apostrophes and hyphens, and
// collapses runs of whitespace. Digits and symbols are dropped.
func SanitizeClientName(name string) string {
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsSpace(r), r == '\'', r == '-':
			return r
		}
		return -1
	}, name)
	return strings.Join(strings.Fields(filtered), " ")
}
