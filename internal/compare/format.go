package compare

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Thousands renders n with comma grouping, e.g. 29990 -> "29,990".
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatPrice renders a price as "₹29,990", or "N/A" when absent.
func FormatPrice(currency string, price *int) string {
	if price == nil {
		return "N/A"
	}
	return currency + Thousands(*price)
}

// FormatCount renders a review count with grouping, or "N/A" when absent.
func FormatCount(n *int) string {
	if n == nil {
		return "N/A"
	}
	return Thousands(*n)
}

// FormatRating renders a rating with one decimal, or "N/A" when absent.
func FormatRating(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return printer.Sprintf("%.1f", *r)
}
