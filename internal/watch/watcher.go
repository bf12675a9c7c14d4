// Package watch re-validates decklist files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
)

// Result is the outcome of validating one file.
type Result struct {
	Path       string                 `json:"path"`
	Validation *deck.ValidationResult `json:"validation,omitempty"`
	Err        error                  `json:"-"`
	At         time.Time              `json:"at"`
}

// Config holds configuration for a Watcher.
type Config struct {
	// Dir is the directory to watch. Subdirectories are not followed.
	Dir string

	// Extensions selects which files are validated.
	// Default: .txt
	Extensions []string

	// Debounce is how long a file must stay quiet before it is validated.
	// Default: 250ms
	Debounce time.Duration

	// Options are passed to the validator. Default: Commander preset.
	Options *deck.ValidateOptions

	Logger *slog.Logger
}

// Watcher validates decklists in a directory whenever they are written.
type Watcher struct {
	dir        string
	extensions []string
	debounce   time.Duration
	options    *deck.ValidateOptions
	logger     *slog.Logger
}

// New creates a Watcher. The directory must exist.
func New(config *Config) (*Watcher, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", config.Dir)
	}

	w := &Watcher{
		dir:        config.Dir,
		extensions: config.Extensions,
		debounce:   config.Debounce,
		options:    config.Options,
		logger:     config.Logger,
	}
	if len(w.extensions) == 0 {
		w.extensions = []string{".txt"}
	}
	w.extensions = lo.Map(w.extensions, func(ext string, _ int) string {
		return strings.ToLower(ext)
	})
	if w.debounce <= 0 {
		w.debounce = 250 * time.Millisecond
	}
	if w.options == nil {
		w.options = deck.PresetCommander.Options(false)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Matches reports whether path has one of the watched extensions.
func (w *Watcher) Matches(path string) bool {
	return lo.Contains(w.extensions, strings.ToLower(filepath.Ext(path)))
}

// ValidateFile reads and validates a single decklist.
func (w *Watcher) ValidateFile(path string) Result {
	res := Result{Path: path, At: time.Now()}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read decklist: %w", err)
		return res
	}
	res.Validation = deck.ValidateDeckList(string(data), w.options)
	metrics.RecordValidation(res.Validation.IsValid)
	return res
}

// Scan validates every matching file currently in the directory, in name
// order.
func (w *Watcher) Scan() ([]Result, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read watch directory: %w", err)
	}

	paths := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return filepath.Join(w.dir, e.Name()), !e.IsDir() && w.Matches(e.Name())
	})
	sort.Strings(paths)

	return lo.Map(paths, func(p string, _ int) Result { return w.ValidateFile(p) }), nil
}

// Run watches the directory until ctx is cancelled, calling handle for each
// re-validated file. handle runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(Result)) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	w.logger.Info("Watching decklists", "dir", w.dir, "extensions", w.extensions)

	// path -> time of the last write seen
	pending := make(map[string]time.Time)

	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.Matches(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				pending[event.Name] = time.Now()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				delete(pending, event.Name)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", werr)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)
				res := w.ValidateFile(path)
				if res.Err != nil {
					w.logger.Warn("Failed to validate decklist", "path", path, "error", res.Err)
				}
				handle(res)
			}
		}
	}
}

// tickInterval is how often pending writes are checked: half the debounce,
// never below a millisecond.
func (w *Watcher) tickInterval() time.Duration {
	return max(w.debounce/2, time.Millisecond)
}
