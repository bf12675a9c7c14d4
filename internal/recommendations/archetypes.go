package recommendations

import "strings"

// Archetype is a named deck strategy.
type Archetype string

const (
	ArchetypeAggro        Archetype = "Aggro"
	ArchetypeControl      Archetype = "Control"
	ArchetypeCombo        Archetype = "Combo"
	ArchetypeMidrange     Archetype = "Midrange"
	ArchetypeTribal       Archetype = "Tribal"
	ArchetypeVoltron      Archetype = "Voltron"
	ArchetypeAristocrats  Archetype = "Aristocrats"
	ArchetypeSpellslinger Archetype = "Spellslinger"
	ArchetypeTokens       Archetype = "Tokens"
	ArchetypeStax         Archetype = "Stax"
	ArchetypeGroupHug     Archetype = "Group Hug"
	ArchetypeReanimator   Archetype = "Reanimator"
)

// KnownArchetypes is the default list gap detection draws from, in the
// order suggestions are made.
var KnownArchetypes = []Archetype{
	ArchetypeAggro,
	ArchetypeControl,
	ArchetypeCombo,
	ArchetypeMidrange,
	ArchetypeTribal,
	ArchetypeVoltron,
	ArchetypeAristocrats,
	ArchetypeSpellslinger,
	ArchetypeTokens,
	ArchetypeStax,
	ArchetypeGroupHug,
	ArchetypeReanimator,
}

// Matches reports whether a free-form strategy label names this archetype.
func (a Archetype) Matches(strategy string) bool {
	return strings.EqualFold(strings.TrimSpace(strategy), string(a))
}
