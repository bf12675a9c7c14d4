package charts

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

func sampleAnalysis() *meta.Analysis {
	return &meta.Analysis{
		Format: "modern",
		Source: "static",
		TopDecks: []meta.RankedDeck{
			{DeckRecord: meta.DeckRecord{Name: "Boros Energy"}, Share: 12.5, Tier: 1},
			{DeckRecord: meta.DeckRecord{Name: "Amulet Titan"}, Share: 3.1, Tier: 2},
		},
	}
}

func TestMetaSharePoints(t *testing.T) {
	points := MetaSharePoints(sampleAnalysis())
	require.Len(t, points, 2)
	assert.Equal(t, DataPoint{Label: "Boros Energy", Value: 12.5}, points[0])
	assert.Nil(t, MetaSharePoints(nil))
}

func TestRenderMetaShare(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMetaShare(&buf, sampleAnalysis(), DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "modern meta share")
	assert.Contains(t, html, "Boros Energy")
	assert.Contains(t, html, "Amulet Titan")
}

func TestRenderMetaShare_NilAnalysis(t *testing.T) {
	assert.Error(t, RenderMetaShare(io.Discard, nil, DefaultChartConfig()))
}

func TestRenderFrequencies_EmptyColorsFallback(t *testing.T) {
	var buf bytes.Buffer
	entries := []patterns.RankedEntry{{Name: "Izzet", Count: 3}, {Name: "Golgari", Count: 1}}
	require.NoError(t, RenderFrequencies(&buf, entries, ChartConfig{Title: "Color combos"}))
	assert.Contains(t, buf.String(), "Izzet")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "meta.html")
	err := WriteFile(path, func(w io.Writer) error {
		return RenderMetaShare(w, sampleAnalysis(), DefaultChartConfig())
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Boros Energy")
}
