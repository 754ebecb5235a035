package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount half-up to 2 decimals.
// Pricing applies this exactly once per line, at the final summation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatUSD formats a positive savings amount as "-$X.XX" for receipts.
// Zero and negative inputs still render as a savings line ("-$0.00").
func FormatUSD(d decimal.Decimal) string {
	if d.IsNegative() {
		d = d.Neg()
	}
	return "-$" + d.StringFixed(2)
}

// ParsePrice parses a POS price string ("7.00", "$7.00", " 7 ") into a decimal.
// Returns false when the string is empty or not a number.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
