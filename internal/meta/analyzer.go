package meta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

const (
	popularCount     = 3
	emergingCap      = 3
	emergingMaxShare = 5.0
)

// Trends groups deck names by popularity. Declining has no rule yet and is
// always empty.
type Trends struct {
	Popular   []string `json:"popular"`
	Emerging  []string `json:"emerging"`
	Declining []string `json:"declining"`
}

// RankedDeck is a record with its normalized share and tier.
type RankedDeck struct {
	DeckRecord
	Share float64 `json:"share"`
	Tier  int     `json:"tier"`
}

// Analysis is the result of analyzing one format's meta.
type Analysis struct {
	Format      string                 `json:"format"`
	TopDecks    []RankedDeck           `json:"topDecks"`
	Trends      Trends                 `json:"trends"`
	ColorTrends []patterns.RankedEntry `json:"colorTrends"`
	Summary     []string               `json:"summary"`
	Source      string                 `json:"source,omitempty"`
	AnalyzedAt  time.Time              `json:"analyzedAt"`

	// Degraded is set when the source failed and the analysis fell back to
	// the empty result. SourceErr holds the failure.
	Degraded  bool   `json:"degraded"`
	SourceErr error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// ClassifyTrends applies the popularity rules. The first three records are
// popular regardless of share; records with 0 < share < 5 are emerging,
// capped at three.
func ClassifyTrends(records []DeckRecord) Trends {
	trends := Trends{
		Popular:   make([]string, 0, popularCount),
		Emerging:  make([]string, 0, emergingCap),
		Declining: make([]string, 0),
	}

	for i, record := range records {
		if i < popularCount {
			trends.Popular = append(trends.Popular, record.Name)
		}

		share := record.MetaShare.Float()
		if share > 0 && share < emergingMaxShare && len(trends.Emerging) < emergingCap {
			trends.Emerging = append(trends.Emerging, record.Name)
		}
	}

	return trends
}

// Summarize produces the human-readable summary lines.
func Summarize(records []DeckRecord) []string {
	if len(records) == 0 {
		return []string{
			"Unable to fetch meta data at this time",
			"Try again later or check the source site directly",
		}
	}

	top := records[0]
	summary := []string{
		fmt.Sprintf("Analyzed %d decks", len(records)),
		fmt.Sprintf("Most played: %s (%s of meta)", top.Name, top.MetaShare),
	}
	if len(records) >= popularCount {
		summary = append(summary, "Top 3 strategies dominate the current meta")
	}
	return summary
}

// ColorTrends ranks colors across deck names. Letters are counted once per
// deck whose name reveals them.
func ColorTrends(records []DeckRecord) []patterns.RankedEntry {
	counts := patterns.NewFrequencyMap()
	for _, record := range records {
		for _, letter := range ColorsFromName(record.Name) {
			counts.Add(string(letter), 1)
		}
	}
	return patterns.Ranked(counts)
}

// Analyze runs classification and summary over already-fetched records.
func Analyze(format string, records []DeckRecord) *Analysis {
	top := make([]RankedDeck, 0, len(records))
	for _, record := range records {
		share := record.MetaShare.Float()
		top = append(top, RankedDeck{DeckRecord: record, Share: share, Tier: TierFor(share)})
	}

	return &Analysis{
		Format:      format,
		TopDecks:    top,
		Trends:      ClassifyTrends(records),
		ColorTrends: ColorTrends(records),
		Summary:     Summarize(records),
		AnalyzedAt:  time.Now(),
	}
}

// AnalyzerConfig configures an Analyzer.
type AnalyzerConfig struct {
	Source Source
	Logger *slog.Logger
}

// Analyzer fetches listings from a Source and analyzes them.
type Analyzer struct {
	source Source
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. A nil source behaves like a source that
// always fails.
func NewAnalyzer(config AnalyzerConfig) *Analyzer {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{source: config.Source, logger: logger}
}

// ErrNoSource is reported when the analyzer has no source configured.
var ErrNoSource = errors.New("no meta source configured")

// AnalyzeFormat fetches and analyzes a format. A failed fetch is collapsed
// into the same empty analysis an empty listing produces; Degraded and
// SourceErr tell the two apart.
func (a *Analyzer) AnalyzeFormat(ctx context.Context, format string) *Analysis {
	var (
		result *FetchResult
		err    error
	)
	if a.source == nil {
		err = ErrNoSource
	} else {
		result, err = a.source.FetchMetaDecks(ctx, format)
	}

	if err != nil {
		a.logger.Warn("meta fetch failed, returning empty analysis", "format", format, "error", err)
		analysis := Analyze(format, nil)
		analysis.Degraded = true
		analysis.SourceErr = err
		analysis.Error = err.Error()
		if a.source != nil {
			analysis.Source = a.source.Name()
		}
		return analysis
	}

	analysis := Analyze(format, result.Records)
	analysis.Source = result.Source
	a.logger.Debug("meta analyzed", "format", format, "decks", len(result.Records))
	return analysis
}
