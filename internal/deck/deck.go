// Package deck parses free-text decklists and checks them against singleton
// format rules without a card database.
package deck

import "strings"

// CardEntry is a single decklist line: a quantity and a card name.
type CardEntry struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// ParsedDeck keeps entries in input order.
type ParsedDeck []CardEntry

// TotalCards returns the sum of all quantities.
func (d ParsedDeck) TotalCards() int {
	total := 0
	for _, c := range d {
		total += c.Quantity
	}
	return total
}

// normalizeName is the comparison key for duplicate detection.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
