package compare

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/CompareGoat/internal/scoring"
)

// NoWinner is the recommendation text when nothing could be ranked.
const NoWinner = "Not enough data to choose a clear winner."

// Recommend writes the best-value summary for best.
func Recommend(best *scoring.Valued, currency string) string {
	if best == nil || best.Product == nil {
		return NoWinner
	}
	p := best.Product

	var b strings.Builder
	fmt.Fprintf(&b, "We recommend %s as the best overall value.\n", p.Title)
	fmt.Fprintf(&b, "- Overall score (Price + Rating): %.1f/100\n", best.Value)
	fmt.Fprintf(&b, "- Rating: %s★ with %s reviews\n", FormatRating(p.Rating), Thousands(p.ReviewsOr(0)))
	fmt.Fprintf(&b, "- Approx. price: %s\n", FormatPrice(currency, p.Price))
	if p.URL != "" {
		fmt.Fprintf(&b, "- Link: %s\n", p.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
