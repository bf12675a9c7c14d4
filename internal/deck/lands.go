package deck

import "strings"

// basicLands are exempt from the singleton rule. Matching is exact and
// case-sensitive.
var basicLands = map[string]bool{
	"Plains":                true,
	"Island":                true,
	"Swamp":                 true,
	"Mountain":              true,
	"Forest":                true,
	"Wastes":                true,
	"Snow-Covered Plains":   true,
	"Snow-Covered Island":   true,
	"Snow-Covered Swamp":    true,
	"Snow-Covered Mountain": true,
	"Snow-Covered Forest":   true,
	"Snow-Covered Wastes":   true,
}

// landHints are substrings that usually mean a land. This is deliberately
// loose: "Gatekeeper" matches and "Watery Grave" does not.
var landHints = []string{"land", "temple", "fountain", "shock", "gate"}

// IsBasicLand reports whether name is exactly a basic land name.
func IsBasicLand(name string) bool {
	return basicLands[name]
}

// BasicLandNames returns the basic land allow-list.
func BasicLandNames() []string {
	names := make([]string, 0, len(basicLands))
	for _, color := range []string{"Plains", "Island", "Swamp", "Mountain", "Forest", "Wastes"} {
		names = append(names, color, "Snow-Covered "+color)
	}
	return names
}

// LooksLikeLand applies the land-count heuristic to a card name.
func LooksLikeLand(name string) bool {
	lower := strings.ToLower(name)
	for basic := range basicLands {
		if lower == strings.ToLower(basic) {
			return true
		}
	}
	for _, hint := range landHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
