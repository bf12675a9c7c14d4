package profile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

// Alphabet is the closed set of color letters in WUBRG order.
var Alphabet = []string{"W", "U", "B", "R", "G"}

var colorNames = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
}

// colorSuggestions pairs each color with a deck idea that showcases it.
var colorSuggestions = map[string]string{
	"W": "tokens",
	"U": "spellslinger",
	"B": "aristocrats",
	"R": "dragons",
	"G": "ramp",
}

// ColorName returns the full name for a letter, or the letter itself when
// it is outside the alphabet.
func ColorName(letter string) string {
	if name, ok := colorNames[strings.ToUpper(letter)]; ok {
		return name
	}
	return letter
}

// ComboKey canonicalizes color letters into a WUBRG-ordered key. Unknown
// letters and repeats are dropped, so ["u","W","x","U"] becomes "WU".
func ComboKey(letters []string) string {
	present := make(map[string]bool, len(letters))
	for _, l := range letters {
		present[strings.ToUpper(strings.TrimSpace(l))] = true
	}

	var sb strings.Builder
	for _, letter := range Alphabet {
		if present[letter] {
			sb.WriteString(letter)
		}
	}
	return sb.String()
}

// ComboName renders a combo key as full color names joined by "/".
func ComboName(key string) string {
	if key == "" {
		return "Colorless"
	}
	names := make([]string, 0, len(key))
	for _, r := range key {
		names = append(names, ColorName(string(r)))
	}
	return strings.Join(names, "/")
}

// UnusedColors returns the letters that appear in none of the combos, in
// WUBRG order.
func UnusedColors(combos []patterns.RankedEntry) []string {
	used := make([]string, 0, len(Alphabet))
	for _, combo := range combos {
		for _, r := range strings.ToUpper(combo.Name) {
			used = append(used, string(r))
		}
	}
	return lo.Without(Alphabet, lo.Uniq(used)...)
}

// ColorRecommendation is the exploration line for an unused color.
func ColorRecommendation(letter string) string {
	name := ColorName(letter)
	return fmt.Sprintf("Try %s (%s): a mono-%s %s deck is a good introduction", name, letter, name, colorSuggestions[letter])
}
