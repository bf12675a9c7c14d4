package profile

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

// General recommendations appended to every profile.
const (
	RecommendExploreArchetypes = "Explore different archetypes: if you mostly build midrange, try a combo or control shell"
	RecommendVaryPowerLevel    = "Vary your power level: keep one casual deck and one tuned deck to match different pods"
	RecommendTrackDecks        = "Publish more decklists so color and format patterns can be analyzed"
	RecommendTryNewCommander   = "Try a commander outside your favorites to broaden your card pool knowledge"
)

// GenerateInsights renders the pattern as ordered insight lines.
func GenerateInsights(p *UserPattern) []string {
	insights := make([]string, 0, 4)
	if p == nil {
		return insights
	}

	if p.FavoriteFormat != "" {
		insights = append(insights, fmt.Sprintf("Favorite format: %s", p.FavoriteFormat))
	}

	if len(p.TopCommanders) > 0 {
		top := p.TopCommanders[0]
		insights = append(insights, fmt.Sprintf("Most played commander: %s (%s)", top.Name, plural(top.Count, "deck")))

		next := p.TopCommanders[1:]
		if len(next) > 2 {
			next = next[:2]
		}
		if len(next) > 0 {
			names := make([]string, len(next))
			for i, c := range next {
				names[i] = c.Name
			}
			insights = append(insights, fmt.Sprintf("Also plays: %s", strings.Join(names, ", ")))
		}
	}

	if len(p.TopColorCombos) > 0 {
		top := p.TopColorCombos[0]
		insights = append(insights, fmt.Sprintf("Favorite colors: %s (%s)", ComboName(top.Name), plural(top.Count, "deck")))
	}

	return insights
}

// GenerateRecommendations suggests every color the user has not touched,
// then the two general recommendations.
func GenerateRecommendations(p *UserPattern) []string {
	var combos []patterns.RankedEntry
	if p != nil {
		combos = p.TopColorCombos
	}

	recs := make([]string, 0, len(Alphabet)+2)
	for _, letter := range UnusedColors(combos) {
		recs = append(recs, ColorRecommendation(letter))
	}
	return append(recs, RecommendExploreArchetypes, RecommendVaryPowerLevel)
}

// CoarseProfile is the reduced profile some sites expose: commander
// popularity without colors.
type CoarseProfile struct {
	Username           string                 `json:"username"`
	DeckCount          int                    `json:"deckCount"`
	FavoriteCommanders *patterns.FrequencyMap `json:"favoriteCommanders"`
}

// GenerateCoarseInsights lists favorite commanders with their counts.
func GenerateCoarseInsights(p *CoarseProfile) []string {
	insights := make([]string, 0)
	if p == nil {
		return insights
	}
	if p.DeckCount > 0 {
		insights = append(insights, fmt.Sprintf("%s found", plural(p.DeckCount, "deck")))
	}
	for _, entry := range patterns.TopN(p.FavoriteCommanders, topLimit) {
		insights = append(insights, fmt.Sprintf("Plays %s (%s)", entry.Name, plural(entry.Count, "deck")))
	}
	return insights
}

// GenerateCoarseRecommendations returns the fixed recommendations for
// profiles without color data.
func GenerateCoarseRecommendations(*CoarseProfile) []string {
	return []string{RecommendTrackDecks, RecommendTryNewCommander}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
