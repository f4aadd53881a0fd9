package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency formats an amount in minor units.
// Example: Currency(2999900, "USD") => "$29,999.00"
func Currency(minor int64, currency string) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	var out string
	switch strings.ToUpper(currency) {
	case "JPY":
		out = "¥" + printer.Sprintf("%d", minor)
	case "USD", "":
		out = "$" + printer.Sprintf("%d", minor/100) + fmt.Sprintf(".%02d", minor%100)
	default:
		out = strings.ToUpper(currency) + " " + printer.Sprintf("%d", minor)
	}
	if neg {
		return "-" + out
	}
	return out
}

// USD is Currency for the storefront currency.
func USD(minor int64) string { return Currency(minor, "USD") }

// Dollars formats a whole-dollar amount without cents, e.g. "$500".
func Dollars(whole int) string { return "$" + printer.Sprintf("%d", whole) }

// Number formats an integer with thousands grouping.
func Number(n int) string { return printer.Sprintf("%d", n) }

// Date formats time in a short form.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Percent returns the whole-number discount from original to price.
func Percent(price, original int64) int {
	if original <= 0 || price >= original {
		return 0
	}
	return int((original - price) * 100 / original)
}
