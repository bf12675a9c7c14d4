package recommendations

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
	"github.com/ramonehamilton/deck-insight/internal/profile"
)

// BudgetUnavailable is reported until card prices are integrated.
const BudgetUnavailable = "Budget substitutions unavailable: pricing data integration pending"

// maxGaps caps each kind of gap.
const maxGaps = 3

// maxAcquire caps the acquisition lines.
const maxAcquire = 5

// HistoryAnalysis summarizes the recorded builds.
type HistoryAnalysis struct {
	TotalBuilds         int                    `json:"totalBuilds"`
	MostPlayedCommander *patterns.RankedEntry  `json:"mostPlayedCommander"`
	FavoriteStrategy    *patterns.RankedEntry  `json:"favoriteStrategy"`
	FavoriteColors      *patterns.RankedEntry  `json:"favoriteColors"`
	Staples             []patterns.RankedEntry `json:"staples"`
}

// AnalyzeHistory derives favorites and staples from the history. Staples are
// cards seen more than once across all card lists, so a card repeated inside
// a single build counts too.
func (e *Engine) AnalyzeHistory() *HistoryAnalysis {
	commanders := patterns.NewFrequencyMap()
	strategies := patterns.NewFrequencyMap()
	colors := e.colorCombos()
	cards := patterns.NewFrequencyMap()

	for _, h := range e.history {
		if c := strings.TrimSpace(h.Commander); c != "" {
			commanders.Add(c, 1)
		}
		if s := strings.TrimSpace(h.Strategy); s != "" {
			strategies.Add(s, 1)
		}
		for _, card := range h.Cards {
			if name := strings.TrimSpace(card.Name); name != "" {
				cards.Add(name, 1)
			}
		}
	}

	return &HistoryAnalysis{
		TotalBuilds:         len(e.history),
		MostPlayedCommander: patterns.MostCommon(commanders),
		FavoriteStrategy:    patterns.MostCommon(strategies),
		FavoriteColors:      patterns.MostCommon(colors),
		Staples: lo.Filter(patterns.Ranked(cards), func(r patterns.RankedEntry, _ int) bool {
			return r.Count > 1
		}),
	}
}

func (e *Engine) colorCombos() *patterns.FrequencyMap {
	combos := patterns.NewFrequencyMap()
	for _, h := range e.history {
		if key := profile.ComboKey(h.Colors); key != "" {
			combos.Add(key, 1)
		}
	}
	return combos
}

// Gaps lists colors and strategies the user has not tried yet.
type Gaps struct {
	Colors     []string `json:"colors"`
	Strategies []string `json:"strategies"`
}

// FindGaps merges the history's color combos with the profile's top combos
// (pattern may be nil) and reports the first unused colors and archetypes.
func (e *Engine) FindGaps(pattern *profile.UserPattern) *Gaps {
	combos := patterns.Ranked(e.colorCombos())
	if pattern != nil {
		combos = append(combos, pattern.TopColorCombos...)
	}

	played := lo.FilterMap(e.history, func(h HistoryEntry, _ int) (string, bool) {
		return h.Strategy, strings.TrimSpace(h.Strategy) != ""
	})
	unplayed := lo.Filter(e.archetypes, func(a Archetype, _ int) bool {
		return !lo.ContainsBy(played, a.Matches)
	})

	return &Gaps{
		Colors:     lo.Slice(profile.UnusedColors(combos), 0, maxGaps),
		Strategies: lo.Slice(lo.Map(unplayed, func(a Archetype, _ int) string { return string(a) }), 0, maxGaps),
	}
}

// Bundle groups recommendations by purpose.
type Bundle struct {
	Strengths []string `json:"strengths"`
	Explore   []string `json:"explore"`
	Acquire   []string `json:"acquire"`
	Budget    []string `json:"budget"`
}

// Recommend combines history analysis, gaps and the optional profile.
func (e *Engine) Recommend(pattern *profile.UserPattern) *Bundle {
	analysis := e.AnalyzeHistory()
	gaps := e.FindGaps(pattern)

	bundle := &Bundle{
		Strengths: strengths(analysis, pattern),
		Explore:   make([]string, 0, len(gaps.Colors)+len(gaps.Strategies)),
		Acquire:   make([]string, 0, maxAcquire),
		Budget:    []string{BudgetUnavailable},
	}

	for _, letter := range gaps.Colors {
		bundle.Explore = append(bundle.Explore, fmt.Sprintf("Try a %s deck (%s)", profile.ColorName(letter), letter))
	}
	for _, s := range gaps.Strategies {
		bundle.Explore = append(bundle.Explore, fmt.Sprintf("Try the %s archetype", s))
	}

	for _, staple := range lo.Slice(analysis.Staples, 0, maxAcquire) {
		bundle.Acquire = append(bundle.Acquire, fmt.Sprintf("Keep %s on hand: it appears in %d of your builds", staple.Name, staple.Count))
	}
	if len(bundle.Acquire) == 0 {
		bundle.Acquire = append(bundle.Acquire, "No staples yet: cards reused across builds will be listed here")
	}

	return bundle
}

func strengths(analysis *HistoryAnalysis, pattern *profile.UserPattern) []string {
	out := make([]string, 0, 4)
	if c := analysis.MostPlayedCommander; c != nil {
		out = append(out, fmt.Sprintf("You build most often around %s (%d builds)", c.Name, c.Count))
	}
	if s := analysis.FavoriteStrategy; s != nil {
		out = append(out, fmt.Sprintf("Your go-to strategy is %s", s.Name))
	}
	if c := analysis.FavoriteColors; c != nil {
		out = append(out, fmt.Sprintf("You favor %s", profile.ComboName(c.Name)))
	}
	if pattern != nil && pattern.FavoriteFormat != "" {
		out = append(out, fmt.Sprintf("Your favorite format is %s", pattern.FavoriteFormat))
	}
	if len(out) == 0 {
		out = append(out, "Record a few builds to surface your strengths")
	}
	return out
}
