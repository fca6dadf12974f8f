// Package currencyutils normalizes amounts typed by hand into decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyAffix matches a leading or trailing currency symbol or ISO code.
var currencyAffix = regexp.MustCompile(`^[€$£¥₣]|^[A-Z]{3}|[€$£¥₣]$|[A-Z]{3}$`)

// Parse converts an amount such as "1'234.56", "1.234,56", "CHF 12.50" or "12,5"
// into a decimal. The empty string is an error.
func Parse(value string) (decimal.Decimal, error) {
	normalized := Normalize(value)
	if normalized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", value, err)
	}
	return amount, nil
}

// Normalize strips currency affixes, spaces and thousands separators and turns a
// decimal comma into a point.
func Normalize(value string) string {
	s := strings.Join(strings.Fields(value), "")
	s = currencyAffix.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}
