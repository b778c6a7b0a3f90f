package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// minAmountDigits guards against stray single-digit matches such as a guest
// count or a table number being read as a price.
const minAmountDigits = 2

// ParseAmount converts a price token as printed on a receipt into a decimal.
//
// Receipts mix "1.234,56", "1,234.56" and cent-less "48,637" with no reliable
// locale signal, so separators are disambiguated by position: when the last
// separator is followed by exactly three digits every separator is a
// thousands grouping, otherwise the last separator is the decimal point.
// The second return value is false when the token has fewer than two digits
// or does not describe a positive amount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	digits := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '.' || r == ',':
			b.WriteRune(r)
		}
	}
	if digits < minAmountDigits {
		return decimal.Zero, false
	}

	core := strings.Trim(b.String(), ".,")

	var normalized string
	last := strings.LastIndexAny(core, ".,")
	switch {
	case last < 0:
		normalized = core
	case len(core)-last-1 == 3:
		normalized = stripSeparators(core)
	default:
		normalized = stripSeparators(core[:last]) + "." + core[last+1:]
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil || !value.IsPositive() {
		return decimal.Zero, false
	}
	return value, true
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}

// parsePercent reads a percentage figure such as "10" or "8,875".
func parsePercent(raw string) (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil || value.IsNegative() {
		return decimal.Zero, false
	}
	return value, true
}
