package deck

import (
	"fmt"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

const (
	// DefaultDeckSize is the Commander deck size.
	DefaultDeckSize = 100

	expectedLandsMulticolor = 36
	expectedLandsMonoColor  = 32
	landWarningSlack        = 5
)

// ValidateOptions is the format policy applied by ValidateParsedDeck.
type ValidateOptions struct {
	ExpectedSize int  `json:"expectedSize"`
	IsMonoColor  bool `json:"isMonoColor"`
}

// Duplicate is a non-basic card that appears more than once.
type Duplicate struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ValidationResult reports every finding. IsValid is true iff Errors is empty.
type ValidationResult struct {
	IsValid     bool        `json:"isValid"`
	TotalCards  int         `json:"totalCards"`
	UniqueCards int         `json:"uniqueCards"`
	LandCount   int         `json:"landCount"`
	Duplicates  []Duplicate `json:"duplicates"`
	Errors      []string    `json:"errors"`
	Warnings    []string    `json:"warnings"`
	Cards       ParsedDeck  `json:"cards"`
}

// ValidateParsedDeck checks singleton, deck size and a land-count heuristic.
// It never fails: everything it finds is reported in Errors or Warnings.
func ValidateParsedDeck(cards ParsedDeck, opts *ValidateOptions) *ValidationResult {
	expectedSize := DefaultDeckSize
	isMono := false
	if opts != nil {
		if opts.ExpectedSize > 0 {
			expectedSize = opts.ExpectedSize
		}
		isMono = opts.IsMonoColor
	}

	if cards == nil {
		cards = ParsedDeck{}
	}

	result := &ValidationResult{
		Duplicates: make([]Duplicate, 0),
		Errors:     make([]string, 0),
		Warnings:   make([]string, 0),
		Cards:      cards,
	}

	nonBasic := patterns.NewFrequencyMap()
	unique := patterns.NewFrequencyMap()

	for _, card := range cards {
		result.TotalCards += card.Quantity
		unique.Add(normalizeName(card.Name), card.Quantity)

		if !IsBasicLand(card.Name) {
			nonBasic.Add(normalizeName(card.Name), card.Quantity)
		}

		if LooksLikeLand(card.Name) {
			result.LandCount += card.Quantity
		}
	}
	result.UniqueCards = unique.Len()

	// Singleton rule
	for _, entry := range nonBasic.Entries() {
		if entry.Count > 1 {
			result.Duplicates = append(result.Duplicates, Duplicate{Name: entry.Name, Count: entry.Count})
			result.Errors = append(result.Errors,
				fmt.Sprintf("Duplicate card: %s (%d copies)", entry.Name, entry.Count))
		}
	}

	// Deck size
	if result.TotalCards != expectedSize {
		diff := expectedSize - result.TotalCards
		direction := "short"
		if diff < 0 {
			diff = -diff
			direction = "over"
		}
		result.Errors = append(result.Errors,
			fmt.Sprintf("Deck has %d cards, expected %d (%d %s)", result.TotalCards, expectedSize, diff, direction))
	}

	// Mana base
	expectedLands := expectedLandsMulticolor
	if isMono {
		expectedLands = expectedLandsMonoColor
	}
	if result.LandCount < expectedLands-landWarningSlack {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Low land count: %d lands detected, around %d recommended", result.LandCount, expectedLands))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateDeckList parses text and validates the result.
func ValidateDeckList(text string, opts *ValidateOptions) *ValidationResult {
	return ValidateParsedDeck(ParseDeckList(text), opts)
}
