package decimal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Cent is the default tolerance used when comparing invoice totals
var Cent = decimal.New(1, -2)

// ParseAmount parses a CII amount element value (e.g. "1200.50").
// Surrounding whitespace is ignored; an empty value is an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Round2 rounds to two decimal places (cents)
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// NearlyEqual reports whether a and b differ by at most tolerance
func NearlyEqual(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// Format renders an amount with two decimals and an optional currency code
func Format(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + currency
}
