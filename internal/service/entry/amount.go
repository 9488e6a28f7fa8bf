package entry

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses user typed numeric text. Blank or invalid text, and
// non finite values, yield 0.
func ParseDecimal(text string) float64 {
	v, _ := parseOptional(text)
	return v
}

// parseOptional reports whether text holds a usable plain decimal number.
// Digit separators, hex and special values such as NaN are rejected.
func parseOptional(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsRune(text, '_') {
		return 0, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ComputeAmount returns fat*rate*qty rounded half up to two decimals.
func ComputeAmount(fat, rate, qty float64) float64 {
	amount := decimal.NewFromFloat(fat).
		Mul(decimal.NewFromFloat(rate)).
		Mul(decimal.NewFromFloat(qty)).
		Round(2)
	return amount.InexactFloat64()
}
