package deck

import (
	"regexp"
	"strconv"
	"strings"
)

// sectionWords mark category labels such as "Creatures (30)" or "Win Condition:".
var sectionWords = []string{
	"commander",
	"creatures",
	"lands",
	"artifacts",
	"enchantments",
	"instants",
	"sorceries",
	"planeswalkers",
	"strategy",
	"win condition",
}

// cardLinePattern matches "4 Lightning Bolt" and "4x Lightning Bolt".
var cardLinePattern = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)

// ParseDeckList converts decklist text into entries. Headers, section labels
// and unrecognized lines are dropped; it never fails, malformed input just
// yields fewer entries.
//
// Accepted line shapes:
//
//	1x Sol Ring
//	1 Arcane Signet
//	Forest
func ParseDeckList(text string) ParsedDeck {
	deck := make(ParsedDeck, 0)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if entry, ok := parseLine(line); ok {
			deck = append(deck, entry)
		}
	}

	return deck
}

func parseLine(line string) (CardEntry, bool) {
	// Markdown-style heading
	if strings.HasPrefix(line, "#") {
		return CardEntry{}, false
	}

	startsWithDigit := line[0] >= '0' && line[0] <= '9'
	if !startsWithDigit && isSectionLabel(line) {
		return CardEntry{}, false
	}

	if matches := cardLinePattern.FindStringSubmatch(line); matches != nil {
		quantity, err := strconv.Atoi(matches[1])
		name := strings.TrimSpace(matches[2])
		if err != nil || quantity < 1 || name == "" {
			return CardEntry{}, false
		}
		return CardEntry{Quantity: quantity, Name: name}, true
	}

	// Bare card name on its own line
	if !startsWithDigit && !strings.Contains(line, ":") && len(line) > 2 {
		return CardEntry{Quantity: 1, Name: line}, true
	}

	return CardEntry{}, false
}

func isSectionLabel(line string) bool {
	lower := strings.ToLower(line)
	for _, word := range sectionWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
