// Package profile mines a user's decks for recurring patterns and turns them
// into insights and exploration recommendations.
package profile

import (
	"strings"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

// topLimit caps TopCommanders and TopColorCombos.
const topLimit = 5

// CardRef is the nested card object used by deck sites.
type CardRef struct {
	Name string `json:"name"`
}

// CommanderSlot is one entry of a deck's commanders list.
type CommanderSlot struct {
	Card CardRef `json:"card"`
}

// DeckRecord is a user deck as supplied by a profile source.
type DeckRecord struct {
	Name          string          `json:"name"`
	Format        string          `json:"format"`
	Commanders    []CommanderSlot `json:"commanders"`
	ColorIdentity []string        `json:"colorIdentity"`
}

// CommanderNames returns the non-empty commander names.
func (d DeckRecord) CommanderNames() []string {
	names := make([]string, 0, len(d.Commanders))
	for _, c := range d.Commanders {
		if name := strings.TrimSpace(c.Card.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// UserPattern aggregates a user's decks.
type UserPattern struct {
	Formats        *patterns.FrequencyMap `json:"formats"`
	Commanders     *patterns.FrequencyMap `json:"commanders"`
	Colors         *patterns.FrequencyMap `json:"colors"`
	FavoriteFormat string                 `json:"favoriteFormat,omitempty"`
	TopCommanders  []patterns.RankedEntry `json:"topCommanders"`
	TopColorCombos []patterns.RankedEntry `json:"topColorCombos"`
}

// BuildUserPattern counts formats, commanders and color combinations.
// Decks without any color letters do not contribute a color combo.
func BuildUserPattern(decks []DeckRecord) *UserPattern {
	p := &UserPattern{
		Formats:    patterns.NewFrequencyMap(),
		Commanders: patterns.NewFrequencyMap(),
		Colors:     patterns.NewFrequencyMap(),
	}

	for _, d := range decks {
		if format := strings.TrimSpace(d.Format); format != "" {
			p.Formats.Add(format, 1)
		}
		for _, name := range d.CommanderNames() {
			p.Commanders.Add(name, 1)
		}
		if key := ComboKey(d.ColorIdentity); key != "" {
			p.Colors.Add(key, 1)
		}
	}

	if fav := patterns.MostCommon(p.Formats); fav != nil {
		p.FavoriteFormat = fav.Name
	}
	p.TopCommanders = patterns.TopN(p.Commanders, topLimit)
	p.TopColorCombos = patterns.TopN(p.Colors, topLimit)

	return p
}
