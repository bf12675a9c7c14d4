package meta

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func records(shares ...string) []DeckRecord {
	out := make([]DeckRecord, 0, len(shares))
	for i, share := range shares {
		out = append(out, DeckRecord{
			Name:      string(rune('A' + i)),
			URL:       "https://example.test/" + string(rune('a'+i)),
			MetaShare: ShareValue(share),
		})
	}
	return out
}

func TestNormalizeShare(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"5.2%", 5.2},
		{"5.2", 5.2},
		{"  8.5 % ", 8.5},
		{"0%", 0},
		{"", 0},
		{"n/a", 0},
		{"-3%", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"12", 12},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.InDelta(t, tt.want, NormalizeShare(tt.raw), 1e-9)
		})
	}
}

func TestShareValue_UnmarshalJSON(t *testing.T) {
	var decoded []DeckRecord
	payload := `[
		{"name":"A","url":"u","metaShare":"8.5%"},
		{"name":"B","url":"u","metaShare":4.25},
		{"name":"C","url":"u","metaShare":null},
		{"name":"D","url":"u"},
		{"name":"E","url":"u","metaShare":true}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, ShareValue("8.5%"), decoded[0].MetaShare)
	assert.InDelta(t, 4.25, decoded[1].MetaShare.Float(), 1e-9)
	assert.Equal(t, 0.0, decoded[2].MetaShare.Float())
	assert.Equal(t, 0.0, decoded[3].MetaShare.Float())
	assert.Equal(t, 0.0, decoded[4].MetaShare.Float())
}

func TestClassifyTrends(t *testing.T) {
	trends := ClassifyTrends(records("10%", "8%", "6%", "4%", "2%"))

	assert.Equal(t, []string{"A", "B", "C"}, trends.Popular)
	assert.Equal(t, []string{"D", "E"}, trends.Emerging)
	assert.Empty(t, trends.Declining)
	assert.NotNil(t, trends.Declining)
}

func TestClassifyTrends_PopularIgnoresShare(t *testing.T) {
	trends := ClassifyTrends(records("1%", "junk", "0", "3%", "4.9", "2%", "0.5%"))

	assert.Equal(t, []string{"A", "B", "C"}, trends.Popular)
	// A (1%) is also emerging; capped at three matches
	assert.Equal(t, []string{"A", "D", "E"}, trends.Emerging)
}

func TestClassifyTrends_BoundaryShares(t *testing.T) {
	trends := ClassifyTrends(records("50%", "40%", "30%", "5%", "0%", "5.0"))
	assert.Empty(t, trends.Emerging, "0 and 5 are excluded")
}

func TestSummarize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		summary := Summarize(nil)
		require.Len(t, summary, 2)
		assert.Contains(t, summary[0], "Unable to fetch")
	})

	t.Run("fewer than three", func(t *testing.T) {
		summary := Summarize([]DeckRecord{{Name: "Mono Red", MetaShare: "8.5%"}, {Name: "Dimir", MetaShare: "3%"}})
		assert.Equal(t, []string{
			"Analyzed 2 decks",
			"Most played: Mono Red (8.5% of meta)",
		}, summary)
	})

	t.Run("three or more", func(t *testing.T) {
		summary := Summarize(records("10", "8%", "6%"))
		require.Len(t, summary, 3)
		assert.Equal(t, "Most played: A (10 of meta)", summary[1])
		assert.Equal(t, "Top 3 strategies dominate the current meta", summary[2])
	})
}

func TestAnalyze(t *testing.T) {
	input := []DeckRecord{
		{Name: "Izzet Prowess", MetaShare: "12.1%"},
		{Name: "Mono-Red Aggro", MetaShare: "9%"},
		{Name: "Dimir Control", MetaShare: "3.3%"},
		{Name: "Gruul Stompy", MetaShare: "0.2%"},
	}

	analysis := Analyze("standard", input)

	assert.Equal(t, "standard", analysis.Format)
	require.Len(t, analysis.TopDecks, 4)
	assert.Equal(t, 1, analysis.TopDecks[0].Tier)
	assert.Equal(t, 2, analysis.TopDecks[2].Tier)
	assert.Equal(t, 4, analysis.TopDecks[3].Tier)
	assert.Equal(t, []string{"Dimir Control", "Gruul Stompy"}, analysis.Trends.Emerging)

	// U: Izzet, Dimir; R: Izzet, Mono-Red, Gruul; B: Dimir; G: Gruul
	require.NotEmpty(t, analysis.ColorTrends)
	assert.Equal(t, "R", analysis.ColorTrends[0].Name)
	assert.Equal(t, 3, analysis.ColorTrends[0].Count)
	assert.False(t, analysis.Degraded)
}

func TestAnalyzer_AnalyzeFormat(t *testing.T) {
	source := &StaticSource{Records: map[string][]DeckRecord{
		"commander": records("10%", "8%", "6%", "4%"),
	}}
	analyzer := NewAnalyzer(AnalyzerConfig{Source: source, Logger: quietLogger()})

	analysis := analyzer.AnalyzeFormat(context.Background(), "commander")
	assert.False(t, analysis.Degraded)
	assert.Equal(t, "static", analysis.Source)
	assert.Len(t, analysis.TopDecks, 4)
	assert.Equal(t, "Analyzed 4 decks", analysis.Summary[0])
}

func TestAnalyzer_AnalyzeFormat_EmptyVersusFailure(t *testing.T) {
	ctx := context.Background()

	empty := NewAnalyzer(AnalyzerConfig{Source: &StaticSource{}, Logger: quietLogger()}).
		AnalyzeFormat(ctx, "pauper")

	failing := NewAnalyzer(AnalyzerConfig{
		Source: &StaticSource{Err: errors.New("connection refused")},
		Logger: quietLogger(),
	}).AnalyzeFormat(ctx, "pauper")

	// Both collapse to the same summary...
	assert.Equal(t, empty.Summary, failing.Summary)
	assert.Empty(t, failing.TopDecks)

	// ...but remain distinguishable.
	assert.False(t, empty.Degraded)
	assert.Nil(t, empty.SourceErr)
	assert.True(t, failing.Degraded)
	var fetchErr *FetchError
	require.ErrorAs(t, failing.SourceErr, &fetchErr)
	assert.Equal(t, "pauper", fetchErr.Format)
	assert.Contains(t, failing.Error, "connection refused")
}

func TestAnalyzer_NoSource(t *testing.T) {
	analysis := NewAnalyzer(AnalyzerConfig{Logger: quietLogger()}).AnalyzeFormat(context.Background(), "modern")
	assert.True(t, analysis.Degraded)
	assert.ErrorIs(t, analysis.SourceErr, ErrNoSource)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, 1, TierFor(5))
	assert.Equal(t, 2, TierFor(4.99))
	assert.Equal(t, 3, TierFor(0.5))
	assert.Equal(t, 4, TierFor(0.49))
	assert.Equal(t, 4, TierFor(0))
}
