package deck

import (
	"fmt"
	"strings"
)

// FormatDeckList writes one "<qty>x <name>" line per entry, in order.
// ParseDeckList reads the output back to the same entries.
func FormatDeckList(cards ParsedDeck) string {
	var sb strings.Builder
	for i, card := range cards {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%dx %s", card.Quantity, card.Name))
	}
	return sb.String()
}
