package decimal

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Tolerance is the largest difference treated as equal when comparing
// amounts rounded to cents
var Tolerance = decimal.New(1, -2)

// amountPattern is the NF-e TDec shape: up to 15 integer digits and 10
// fraction digits, no sign and no exponent.
var amountPattern = regexp.MustCompile(`^\d{1,15}([.,]\d{1,10})?$`)

// ParseAmount parses a numeric field leniently. Text outside the plain
// decimal shape yields zero, including signs, exponents and thousands
// separators. A comma decimal separator is accepted ("10,50").
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return Zero
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return Zero
	}
	return d
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// WithinTolerance reports whether a and b differ by at most Tolerance
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
