package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoSource is returned when a Generator has no source for the request.
var ErrNoSource = errors.New("no profile source configured")

// Report is the outcome of analyzing one user.
type Report struct {
	Username        string       `json:"username"`
	Source          string       `json:"source"`
	DeckCount       int          `json:"deckCount"`
	Pattern         *UserPattern `json:"pattern,omitempty"`
	Insights        []string     `json:"insights"`
	Recommendations []string     `json:"recommendations"`

	// Decks are the fetched decks, kept for callers that remember them.
	Decks []DeckRecord `json:"-"`
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Source       Source
	CoarseSource CoarseSource
	Logger       *slog.Logger
}

// Generator fetches user profiles and turns them into reports.
type Generator struct {
	source       Source
	coarseSource CoarseSource
	logger       *slog.Logger
}

// NewGenerator creates a new generator.
func NewGenerator(config GeneratorConfig) *Generator {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		source:       config.Source,
		coarseSource: config.CoarseSource,
		logger:       logger,
	}
}

// AnalyzeUser fetches a user's decks and builds a full report. Source
// failures are returned to the caller unchanged in meaning.
func (g *Generator) AnalyzeUser(ctx context.Context, username string) (*Report, error) {
	if g.source == nil {
		return nil, ErrNoSource
	}

	decks, err := g.source.FetchUserDecks(ctx, username)
	if err != nil {
		g.logger.Warn("profile fetch failed", "source", g.source.Name(), "user", username, "error", err)
		return nil, fmt.Errorf("failed to analyze profile %s: %w", username, err)
	}

	report := Analyze(decks)
	report.Username = username
	report.Source = g.source.Name()

	g.logger.Info("analyzed profile", "user", username, "decks", len(decks))
	return report, nil
}

// AnalyzeCoarseUser does the same for a source without color data.
func (g *Generator) AnalyzeCoarseUser(ctx context.Context, username string) (*Report, error) {
	if g.coarseSource == nil {
		return nil, ErrNoSource
	}

	coarse, err := g.coarseSource.FetchCoarseProfile(ctx, username)
	if err != nil {
		g.logger.Warn("profile fetch failed", "source", g.coarseSource.Name(), "user", username, "error", err)
		return nil, fmt.Errorf("failed to analyze profile %s: %w", username, err)
	}

	return &Report{
		Username:        username,
		Source:          g.coarseSource.Name(),
		DeckCount:       coarse.DeckCount,
		Insights:        GenerateCoarseInsights(coarse),
		Recommendations: GenerateCoarseRecommendations(coarse),
	}, nil
}

// Analyze builds a report from decks already in hand.
func Analyze(decks []DeckRecord) *Report {
	pattern := BuildUserPattern(decks)
	return &Report{
		DeckCount:       len(decks),
		Decks:           decks,
		Pattern:         pattern,
		Insights:        GenerateInsights(pattern),
		Recommendations: GenerateRecommendations(pattern),
	}
}
