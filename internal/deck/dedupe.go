package deck

// RemoveDuplicates keeps the first occurrence of every non-basic card, with
// its quantity forced to 1. Basic lands pass through untouched. The input is
// not modified.
func RemoveDuplicates(cards ParsedDeck) ParsedDeck {
	seen := make(map[string]bool, len(cards))
	out := make(ParsedDeck, 0, len(cards))

	for _, card := range cards {
		if IsBasicLand(card.Name) {
			out = append(out, card)
			continue
		}

		key := normalizeName(card.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, CardEntry{Quantity: 1, Name: card.Name})
	}

	return out
}
