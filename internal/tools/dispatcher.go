// Package tools exposes the deck-insight operations as named tools that
// take JSON arguments, the surface used by conversational agents.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/session"
)

// Name identifies a tool.
type Name string

const (
	ValidateDeck       Name = "validate_deck"
	FormatDeck         Name = "format_deck"
	AnalyzeMeta        Name = "analyze_meta"
	AnalyzeProfile     Name = "analyze_profile"
	RecordBuild        Name = "record_build"
	GetRecommendations Name = "get_recommendations"
	ExportHistory      Name = "export_history"
	ImportHistory      Name = "import_history"
	ClearHistory       Name = "clear_history"
)

// Names lists every tool in a stable order.
func Names() []Name {
	return []Name{
		ValidateDeck,
		FormatDeck,
		AnalyzeMeta,
		AnalyzeProfile,
		RecordBuild,
		GetRecommendations,
		ExportHistory,
		ImportHistory,
		ClearHistory,
	}
}

var (
	// ErrUnknownTool is returned for names outside the table.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArgs is returned when arguments are not a JSON object or a
	// required argument is missing.
	ErrInvalidArgs = errors.New("invalid tool arguments")

	// ErrUnavailable is returned when the collaborator a tool needs was not
	// configured.
	ErrUnavailable = errors.New("tool dependency not configured")
)

// Result is a tool's output: display lines plus structured data.
type Result struct {
	Tool  Name     `json:"tool"`
	Lines []string `json:"lines"`
	Data  any      `json:"data,omitempty"`
}

type handler func(ctx context.Context, args gjson.Result) (*Result, error)

// Config wires a Dispatcher to its collaborators. Any of them may be nil;
// tools that need a missing one fail with ErrUnavailable.
type Config struct {
	Analyzer  *meta.Analyzer
	Profiles  *profile.Generator
	Knowledge *knowledge.Base
	Sessions  *session.Registry
	Stats     *metrics.ToolStats
	Logger    *slog.Logger
}

// Dispatcher resolves tool names to handlers.
type Dispatcher struct {
	analyzer  *meta.Analyzer
	profiles  *profile.Generator
	knowledge *knowledge.Base
	sessions  *session.Registry
	stats     *metrics.ToolStats
	logger    *slog.Logger

	handlers map[Name]handler
}

// NewDispatcher builds the dispatch table.
func NewDispatcher(config Config) *Dispatcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stats := config.Stats
	if stats == nil {
		stats = metrics.NewToolStats()
	}

	d := &Dispatcher{
		analyzer:  config.Analyzer,
		profiles:  config.Profiles,
		knowledge: config.Knowledge,
		sessions:  config.Sessions,
		stats:     stats,
		logger:    logger,
	}

	d.handlers = map[Name]handler{
		ValidateDeck:       d.validateDeck,
		FormatDeck:         d.formatDeck,
		AnalyzeMeta:        d.analyzeMeta,
		AnalyzeProfile:     d.analyzeProfile,
		RecordBuild:        d.recordBuild,
		GetRecommendations: d.getRecommendations,
		ExportHistory:      d.exportHistory,
		ImportHistory:      d.importHistory,
		ClearHistory:       d.clearHistory,
	}
	return d
}

// Call runs the named tool. Empty args are treated as {}.
func (d *Dispatcher) Call(ctx context.Context, name string, args []byte) (*Result, error) {
	h, ok := d.handlers[Name(name)]
	if !ok {
		d.logger.Warn("unknown tool requested", "tool", name)
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if len(args) == 0 {
		args = []byte("{}")
	}
	if !gjson.ValidBytes(args) || !gjson.ParseBytes(args).IsObject() {
		return nil, fmt.Errorf("%w: arguments must be a JSON object", ErrInvalidArgs)
	}

	start := time.Now()
	result, err := h(ctx, gjson.ParseBytes(args))
	d.stats.Observe(name, time.Since(start), err)

	if err != nil {
		d.logger.Debug("tool failed", "tool", name, "error", err)
		return nil, err
	}
	result.Tool = Name(name)
	return result, nil
}

// Stats returns per-tool call statistics.
func (d *Dispatcher) Stats() metrics.StatsSnapshot {
	return d.stats.Snapshot()
}

func requireString(args gjson.Result, key string) (string, error) {
	v := args.Get(key)
	if !v.Exists() || v.String() == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgs, key)
	}
	return v.String(), nil
}

func stringList(v gjson.Result) []string {
	var out []string
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, item.String())
		return true
	})
	return out
}
