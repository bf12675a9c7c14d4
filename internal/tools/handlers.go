package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/recommendations"
)

func (d *Dispatcher) validateDeck(_ context.Context, args gjson.Result) (*Result, error) {
	text, err := requireString(args, "decklist")
	if err != nil {
		return nil, err
	}

	preset, _ := deck.PresetFor(args.Get("format").String())
	opts := preset.Options(args.Get("mono").Bool())
	if size := args.Get("size").Int(); size > 0 {
		opts.ExpectedSize = int(size)
	}

	result := deck.ValidateDeckList(text, opts)
	metrics.RecordValidation(result.IsValid)

	lines := []string{fmt.Sprintf("%d cards, %d unique, %d lands", result.TotalCards, result.UniqueCards, result.LandCount)}
	if result.IsValid {
		lines = append(lines, fmt.Sprintf("Deck is legal for %s", preset.Name))
	}
	lines = append(lines, result.Errors...)
	lines = append(lines, result.Warnings...)

	return &Result{Lines: lines, Data: result}, nil
}

func (d *Dispatcher) formatDeck(_ context.Context, args gjson.Result) (*Result, error) {
	text, err := requireString(args, "decklist")
	if err != nil {
		return nil, err
	}

	cards := deck.ParseDeckList(text)
	if args.Get("dedupe").Bool() {
		cards = deck.RemoveDuplicates(cards)
	}
	formatted := deck.FormatDeckList(cards)

	return &Result{Lines: []string{formatted}, Data: cards}, nil
}

func (d *Dispatcher) analyzeMeta(ctx context.Context, args gjson.Result) (*Result, error) {
	if d.analyzer == nil {
		return nil, fmt.Errorf("%w: meta analyzer", ErrUnavailable)
	}
	format, err := requireString(args, "format")
	if err != nil {
		return nil, err
	}

	analysis := d.analyzer.AnalyzeFormat(ctx, format)
	return &Result{Lines: analysis.Summary, Data: analysis}, nil
}

func (d *Dispatcher) analyzeProfile(ctx context.Context, args gjson.Result) (*Result, error) {
	if d.profiles == nil {
		return nil, fmt.Errorf("%w: profile generator", ErrUnavailable)
	}
	username, err := requireString(args, "username")
	if err != nil {
		return nil, err
	}

	var report *profile.Report
	switch source := args.Get("source").String(); source {
	case "", "moxfield":
		report, err = d.profiles.AnalyzeUser(ctx, username)
	case "archidekt":
		report, err = d.profiles.AnalyzeCoarseUser(ctx, username)
	default:
		return nil, fmt.Errorf("%w: unknown profile source %q", ErrInvalidArgs, source)
	}
	if err != nil {
		return nil, err
	}

	if d.knowledge != nil && report.Decks != nil {
		d.knowledge.Remember(username, report.Decks)
	}

	lines := append(append([]string{}, report.Insights...), report.Recommendations...)
	return &Result{Lines: lines, Data: report}, nil
}

// withEngine runs fn against the engine of the session named in args.
func (d *Dispatcher) withEngine(args gjson.Result, fn func(*recommendations.Engine) (*Result, error)) (*Result, error) {
	if d.sessions == nil {
		return nil, fmt.Errorf("%w: session registry", ErrUnavailable)
	}
	id, err := requireString(args, "session")
	if err != nil {
		return nil, err
	}

	var result *Result
	err = d.sessions.WithSession(id, func(e *recommendations.Engine) error {
		var fnErr error
		result, fnErr = fn(e)
		return fnErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) recordBuild(_ context.Context, args gjson.Result) (*Result, error) {
	entry := recommendations.HistoryEntry{
		Commander: args.Get("commander").String(),
		Strategy:  args.Get("strategy").String(),
		Colors:    stringList(args.Get("colors")),
	}
	if cards := args.Get("cards"); cards.IsArray() {
		if err := json.Unmarshal([]byte(cards.Raw), &entry.Cards); err != nil {
			return nil, fmt.Errorf("%w: cards: %v", ErrInvalidArgs, err)
		}
	}

	return d.withEngine(args, func(e *recommendations.Engine) (*Result, error) {
		stored := e.AddBuild(entry)
		return &Result{
			Lines: []string{fmt.Sprintf("Recorded build %d", e.Len())},
			Data:  stored,
		}, nil
	})
}

func (d *Dispatcher) getRecommendations(_ context.Context, args gjson.Result) (*Result, error) {
	var pattern *profile.UserPattern
	if username := args.Get("username").String(); username != "" && d.knowledge != nil {
		pattern, _ = d.knowledge.Pattern(username)
	}

	return d.withEngine(args, func(e *recommendations.Engine) (*Result, error) {
		bundle := e.Recommend(pattern)

		lines := make([]string, 0, 8)
		lines = append(lines, bundle.Strengths...)
		lines = append(lines, bundle.Explore...)
		lines = append(lines, bundle.Acquire...)
		lines = append(lines, bundle.Budget...)
		return &Result{Lines: lines, Data: bundle}, nil
	})
}

func (d *Dispatcher) exportHistory(_ context.Context, args gjson.Result) (*Result, error) {
	return d.withEngine(args, func(e *recommendations.Engine) (*Result, error) {
		data, err := e.ExportHistory()
		if err != nil {
			return nil, err
		}
		return &Result{
			Lines: []string{fmt.Sprintf("Exported %d builds", e.Len())},
			Data:  json.RawMessage(data),
		}, nil
	})
}

func (d *Dispatcher) importHistory(_ context.Context, args gjson.Result) (*Result, error) {
	history := args.Get("history")
	if !history.Exists() {
		return nil, fmt.Errorf("%w: history is required", ErrInvalidArgs)
	}

	// A string argument carries the exported JSON itself.
	raw := history.Raw
	if history.Type == gjson.String {
		raw = history.String()
	}

	return d.withEngine(args, func(e *recommendations.Engine) (*Result, error) {
		if err := e.ImportHistory([]byte(raw)); err != nil {
			return nil, err
		}
		return &Result{Lines: []string{fmt.Sprintf("Imported %d builds", e.Len())}}, nil
	})
}

func (d *Dispatcher) clearHistory(_ context.Context, args gjson.Result) (*Result, error) {
	return d.withEngine(args, func(e *recommendations.Engine) (*Result, error) {
		e.ClearHistory()
		return &Result{Lines: []string{"History cleared"}}, nil
	})
}
