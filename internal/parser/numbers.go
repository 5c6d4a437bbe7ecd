package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarkers = strings.NewReplacer(" ", "", " ", "", "€", "", "EUR", "")

// NormalizeNumber converts a Spanish-locale numeric string to a float.
// "12.500,45" -> 12500.45, "2.500" -> 2500, "185,75" -> 185.75.
// When both separators appear, "." is the thousands separator and "," the
// decimal one. A lone comma is decimal only if at most two digits follow it.
// Unparseable input reports ok=false; it is never an error.
func NormalizeNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	text = currencyMarkers.Replace(strings.TrimSpace(text))

	hasDot := strings.Contains(text, ".")
	hasComma := strings.Contains(text, ",")

	switch {
	case hasDot && hasComma:
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case hasComma:
		parts := strings.Split(text, ",")
		if len(parts[len(parts)-1]) <= 2 {
			text = strings.ReplaceAll(text, ",", ".")
		} else {
			text = strings.ReplaceAll(text, ",", "")
		}
	case hasDot:
		// A lone dot is ambiguous the same way: "2.500" is two and a half
		// thousand in Spanish, "60.00" is sixty euros on machine exports.
		parts := strings.Split(text, ".")
		if len(parts[len(parts)-1]) > 2 {
			text = strings.ReplaceAll(text, ".", "")
		}
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
