package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/recommendations"
	"github.com/ramonehamilton/deck-insight/internal/session"
)

type fixture struct {
	dispatcher *Dispatcher
	sessions   *session.Registry
	knowledge  *knowledge.Base
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions, err := session.NewRegistry(session.Config{MaxSessions: 8, Logger: logger})
	require.NoError(t, err)
	kb := knowledge.New(logger)

	metaSource := &meta.StaticSource{Records: map[string][]meta.DeckRecord{
		"commander": {
			{Name: "Atraxa Superfriends", MetaShare: "9.1%"},
			{Name: "Krenko Goblins", MetaShare: "6%"},
			{Name: "Yuriko Ninjas", MetaShare: "4.4%"},
			{Name: "Edgar Vampires", MetaShare: "3%"},
		},
	}}
	profileSource := &profile.StaticSource{Decks: map[string][]profile.DeckRecord{
		"alice": {
			{Name: "Goblins", Format: "commander", ColorIdentity: []string{"R"},
				Commanders: []profile.CommanderSlot{{Card: profile.CardRef{Name: "Krenko"}}}},
			{Name: "Esper", Format: "commander", ColorIdentity: []string{"W", "U", "B"},
				Commanders: []profile.CommanderSlot{{Card: profile.CardRef{Name: "Raffine"}}}},
		},
	}}

	d := NewDispatcher(Config{
		Analyzer:  meta.NewAnalyzer(meta.AnalyzerConfig{Source: metaSource, Logger: logger}),
		Profiles:  profile.NewGenerator(profile.GeneratorConfig{Source: profileSource, Logger: logger}),
		Knowledge: kb,
		Sessions:  sessions,
		Logger:    logger,
	})
	return &fixture{dispatcher: d, sessions: sessions, knowledge: kb}
}

func args(t *testing.T, v map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestNames_AllHaveHandlers(t *testing.T) {
	f := newFixture(t)
	for _, name := range Names() {
		_, ok := f.dispatcher.handlers[name]
		assert.True(t, ok, "missing handler for %s", name)
	}
	assert.Len(t, f.dispatcher.handlers, len(Names()))
}

func TestCall_UnknownTool(t *testing.T) {
	_, err := newFixture(t).dispatcher.Call(context.Background(), "summon_dragon", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestCall_ArgsMustBeObject(t *testing.T) {
	_, err := newFixture(t).dispatcher.Call(context.Background(), string(FormatDeck), []byte(`["x"]`))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestValidateDeck(t *testing.T) {
	f := newFixture(t)
	list := "2 Sol Ring\n1 Arcane Signet\n10 Forest"

	result, err := f.dispatcher.Call(context.Background(), string(ValidateDeck), args(t, map[string]any{
		"decklist": list,
		"format":   "brawl",
	}))
	require.NoError(t, err)

	assert.Equal(t, ValidateDeck, result.Tool)
	validation, ok := result.Data.(*deck.ValidationResult)
	require.True(t, ok)
	assert.False(t, validation.IsValid)
	assert.Equal(t, 13, validation.TotalCards)
	assert.Contains(t, strings.Join(result.Lines, "\n"), "Duplicate card: sol ring (2 copies)")
	assert.Contains(t, strings.Join(result.Lines, "\n"), "expected 60")
}

func TestValidateDeck_RequiresDecklist(t *testing.T) {
	_, err := newFixture(t).dispatcher.Call(context.Background(), string(ValidateDeck), []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestFormatDeck(t *testing.T) {
	result, err := newFixture(t).dispatcher.Call(context.Background(), string(FormatDeck), args(t, map[string]any{
		"decklist": "2 Sol Ring\nForest\nForest",
		"dedupe":   true,
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"1x Sol Ring\n1x Forest\n1x Forest"}, result.Lines)
}

func TestAnalyzeMeta(t *testing.T) {
	result, err := newFixture(t).dispatcher.Call(context.Background(), string(AnalyzeMeta), []byte(`{"format":"commander"}`))
	require.NoError(t, err)

	analysis := result.Data.(*meta.Analysis)
	assert.Equal(t, []string{"Yuriko Ninjas", "Edgar Vampires"}, analysis.Trends.Emerging)
	assert.Equal(t, "Analyzed 4 decks", result.Lines[0])
}

func TestAnalyzeProfile_RemembersDecks(t *testing.T) {
	f := newFixture(t)

	result, err := f.dispatcher.Call(context.Background(), string(AnalyzeProfile), []byte(`{"username":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "Favorite format: commander", result.Lines[0])

	assert.Len(t, f.knowledge.Decks("alice"), 2)
}

func TestAnalyzeProfile_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.Call(ctx, string(AnalyzeProfile), []byte(`{"username":"nobody"}`))
	assert.ErrorIs(t, err, profile.ErrUserNotFound)

	_, err = f.dispatcher.Call(ctx, string(AnalyzeProfile), []byte(`{"username":"alice","source":"myspace"}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = f.dispatcher.Call(ctx, string(AnalyzeProfile), []byte(`{"username":"alice","source":"archidekt"}`))
	assert.ErrorIs(t, err, profile.ErrNoSource)
}

func TestSessionTools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.sessions.Create().ID

	call := func(name Name, v map[string]any) *Result {
		v["session"] = id
		result, err := f.dispatcher.Call(ctx, string(name), args(t, v))
		require.NoError(t, err)
		return result
	}

	call(RecordBuild, map[string]any{"commander": "Krenko", "strategy": "Tribal", "colors": []string{"R"}, "cards": []any{"Sol Ring"}})
	result := call(RecordBuild, map[string]any{"commander": "Krenko", "colors": []string{"R"}, "cards": []any{map[string]string{"name": "Sol Ring"}}})
	assert.Equal(t, []string{"Recorded build 2"}, result.Lines)

	_, err := f.dispatcher.Call(ctx, string(AnalyzeProfile), []byte(`{"username":"alice"}`))
	require.NoError(t, err)

	result = call(GetRecommendations, map[string]any{"username": "alice"})
	bundle := result.Data.(*recommendations.Bundle)
	assert.Contains(t, bundle.Strengths, "You build most often around Krenko (2 builds)")
	assert.Contains(t, bundle.Strengths, "Your favorite format is commander")
	assert.Equal(t, []string{"Try a Green deck (G)", "Try the Aggro archetype", "Try the Control archetype", "Try the Combo archetype"}, bundle.Explore)
	assert.Equal(t, []string{recommendations.BudgetUnavailable}, bundle.Budget)

	exported := call(ExportHistory, map[string]any{})
	raw, ok := exported.Data.(json.RawMessage)
	require.True(t, ok)

	call(ClearHistory, map[string]any{})
	result = call(ImportHistory, map[string]any{"history": string(raw)})
	assert.Equal(t, []string{"Imported 2 builds"}, result.Lines)

	result = call(ImportHistory, map[string]any{"history": json.RawMessage(raw)})
	assert.Equal(t, []string{"Imported 2 builds"}, result.Lines)
}

func TestImportHistory_RejectsNonArray(t *testing.T) {
	f := newFixture(t)
	id := f.sessions.Create().ID

	_, err := f.dispatcher.Call(context.Background(), string(ImportHistory), args(t, map[string]any{
		"session": id,
		"history": map[string]string{"commander": "Krenko"},
	}))
	assert.ErrorIs(t, err, recommendations.ErrNotArray)

	_, err = f.dispatcher.Call(context.Background(), string(ImportHistory), args(t, map[string]any{
		"session": id,
		"history": "[{oops",
	}))
	assert.ErrorIs(t, err, recommendations.ErrInvalidHistory)
}

func TestSessionTools_UnknownSession(t *testing.T) {
	_, err := newFixture(t).dispatcher.Call(context.Background(), string(ClearHistory), []byte(`{"session":"nope"}`))
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestUnavailableCollaborators(t *testing.T) {
	d := NewDispatcher(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	ctx := context.Background()

	for _, name := range []Name{AnalyzeMeta, AnalyzeProfile, RecordBuild} {
		_, err := d.Call(ctx, string(name), []byte(`{"format":"x","username":"x","session":"x"}`))
		assert.True(t, errors.Is(err, ErrUnavailable), "%s: %v", name, err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	_, _ = f.dispatcher.Call(context.Background(), string(FormatDeck), []byte(`{"decklist":"1 Sol Ring"}`))
	_, _ = f.dispatcher.Call(context.Background(), string(FormatDeck), []byte(`{}`))

	stats := f.dispatcher.Stats()
	assert.Equal(t, uint64(2), stats.Calls)
	assert.Equal(t, uint64(1), stats.Errors)
	assert.Equal(t, 2, stats.Tools[string(FormatDeck)].Calls)
}
