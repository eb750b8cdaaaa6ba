package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"INR": "₹",
}

// FormatPrice renders price in en-US currency notation, e.g. "$1,234.50".
// Currencies without a symbol are prefixed with their code.
func FormatPrice(price float64, currency string) string {
	d := decimal.NewFromFloat(price).Round(2)

	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	amount := groupThousands(whole) + "." + frac

	prefix, ok := currencySymbols[currency]
	if !ok {
		prefix = currency + " "
	}

	if d.IsNegative() {
		return "-" + prefix + amount
	}
	return prefix + amount
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
