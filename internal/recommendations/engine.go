// Package recommendations keeps a session's build history and turns it,
// together with an optional user profile, into actionable suggestions.
package recommendations

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"
)

// ErrNotArray is returned by ImportHistory for well-formed JSON that is not
// an array.
var ErrNotArray = errors.New("history payload is not a JSON array")

// ErrInvalidHistory is returned by ImportHistory for malformed JSON or array
// elements that do not decode as builds.
var ErrInvalidHistory = errors.New("invalid history payload")

// Engine holds the build history for one session. It is not safe for
// concurrent use; callers serialize access per session.
type Engine struct {
	history    []HistoryEntry
	now        func() time.Time
	logger     *slog.Logger
	archetypes []Archetype
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to stamp builds.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithArchetypes replaces the archetypes used for strategy gaps.
func WithArchetypes(archetypes ...Archetype) Option {
	return func(e *Engine) {
		e.archetypes = archetypes
	}
}

// NewEngine creates an engine with an empty history.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		history:    []HistoryEntry{},
		now:        time.Now,
		logger:     slog.Default(),
		archetypes: KnownArchetypes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddBuild appends a build and returns it as stored. An empty timestamp is
// filled from the engine clock.
func (e *Engine) AddBuild(entry HistoryEntry) HistoryEntry {
	stored := entry.clone()
	if stored.Timestamp == "" {
		stored.Timestamp = e.now().UTC().Format(time.RFC3339)
	}
	e.history = append(e.history, stored)

	e.logger.Debug("recorded build", "commander", stored.Commander, "strategy", stored.Strategy, "builds", len(e.history))
	return stored.clone()
}

// History returns a copy of the recorded builds, oldest first.
func (e *Engine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	for i, h := range e.history {
		out[i] = h.clone()
	}
	return out
}

// Len returns the number of recorded builds.
func (e *Engine) Len() int {
	return len(e.history)
}

// ClearHistory drops every recorded build.
func (e *Engine) ClearHistory() {
	e.history = []HistoryEntry{}
}

// ExportHistory encodes the history as a JSON array.
func (e *Engine) ExportHistory() ([]byte, error) {
	data, err := json.Marshal(e.history)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

// ImportHistory replaces the history with a previously exported array.
// Malformed JSON and non-array payloads are rejected and leave the current
// history untouched.
func (e *Engine) ImportHistory(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("failed to import history: %w: malformed JSON", ErrInvalidHistory)
	}
	if !gjson.ParseBytes(data).IsArray() {
		return ErrNotArray
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to import history: %w: %v", ErrInvalidHistory, err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}

	e.history = entries
	e.logger.Info("imported history", "builds", len(entries))
	return nil
}
