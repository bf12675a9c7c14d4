// Package app assembles the deck-insight components from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ramonehamilton/deck-insight/internal/api"
	"github.com/ramonehamilton/deck-insight/internal/config"
	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/session"
	"github.com/ramonehamilton/deck-insight/internal/storage"
	"github.com/ramonehamilton/deck-insight/internal/tools"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Analyzer  *meta.Analyzer
	Profiles  *profile.Generator
	Knowledge *knowledge.Base
	Sessions  *session.Registry
	Tools     *tools.Dispatcher
	Stats     *metrics.ToolStats

	// DB and Snapshots are nil when no database path is configured.
	DB        *storage.DB
	Snapshots *storage.SnapshotRepository
}

// Options overrides collaborators, mainly for tests and offline runs.
type Options struct {
	MetaSource    meta.Source
	ProfileSource profile.Source
	CoarseSource  profile.CoarseSource
}

// NewLogger builds the CLI's text logger. Debug mode lowers the level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// New validates cfg and wires every component. Close releases the database.
func New(cfg *config.Config, logger *slog.Logger, opts *Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts == nil {
		opts = &Options{}
	}

	a := &App{Config: cfg, Logger: logger, Stats: metrics.NewToolStats()}

	metaSource := opts.MetaSource
	if metaSource == nil {
		metaSource = meta.NewGoldfishClient(&meta.GoldfishConfig{
			BaseURL:        cfg.Meta.BaseURL,
			CacheTTL:       cfg.MetaCacheTTL(),
			CacheSize:      cfg.Meta.CacheSize,
			RequestTimeout: cfg.MetaRequestTimeout(),
			RateLimitMs:    cfg.Meta.RateLimitMs,
			Logger:         logger,
		})
	}
	a.Analyzer = meta.NewAnalyzer(meta.AnalyzerConfig{Source: metaSource, Logger: logger})

	profileSource := opts.ProfileSource
	if profileSource == nil {
		profileSource = profile.NewMoxfieldClient(a.profileClientConfig(cfg.Profile.MoxfieldURL))
	}
	coarseSource := opts.CoarseSource
	if coarseSource == nil {
		coarseSource = profile.NewArchidektClient(a.profileClientConfig(cfg.Profile.ArchidektURL))
	}
	a.Profiles = profile.NewGenerator(profile.GeneratorConfig{
		Source:       profileSource,
		CoarseSource: coarseSource,
		Logger:       logger,
	})

	a.Knowledge = knowledge.New(logger)

	registry, err := session.NewRegistry(session.Config{MaxSessions: cfg.Sessions.MaxSessions, Logger: logger})
	if err != nil {
		return nil, err
	}
	a.Sessions = registry

	a.Tools = tools.NewDispatcher(tools.Config{
		Analyzer:  a.Analyzer,
		Profiles:  a.Profiles,
		Knowledge: a.Knowledge,
		Sessions:  a.Sessions,
		Stats:     a.Stats,
		Logger:    logger,
	})

	if cfg.Storage.DBPath != "" {
		dbConfig := storage.DefaultConfig(cfg.Storage.DBPath)
		dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
		db, err := storage.Open(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.DB = db
		a.Snapshots = storage.NewSnapshotRepository(db)
	}

	return a, nil
}

func (a *App) profileClientConfig(baseURL string) *profile.ClientConfig {
	return &profile.ClientConfig{
		BaseURL:        baseURL,
		RequestTimeout: a.Config.ProfileRequestTimeout(),
		RateLimitMs:    a.Config.Profile.RateLimitMs,
		CacheTTL:       a.Config.ProfileCacheTTL(),
		Logger:         a.Logger,
	}
}

// ValidateOptions returns validation options for format, falling back to
// the configured default format when format is empty.
func (a *App) ValidateOptions(format string, mono bool, size int) (deck.Preset, *deck.ValidateOptions) {
	if format == "" {
		format = a.Config.Validation.DefaultFormat
	}
	preset, _ := deck.PresetFor(format)
	opts := preset.Options(mono)
	if size > 0 {
		opts.ExpectedSize = size
	}
	return preset, opts
}

// ServerServices exposes the components to the REST API.
func (a *App) ServerServices() *api.Services {
	return &api.Services{
		Analyzer:      a.Analyzer,
		Profiles:      a.Profiles,
		Knowledge:     a.Knowledge,
		Sessions:      a.Sessions,
		Tools:         a.Tools,
		Snapshots:     a.Snapshots,
		KeepKnowledge: a.Config.Storage.KeepKnowledge,
		DefaultFormat: a.Config.Validation.DefaultFormat,
	}
}

// RestoreKnowledge loads the newest knowledge snapshot, if any. It returns
// the number of users loaded.
func (a *App) RestoreKnowledge(ctx context.Context) (int, error) {
	if a.Snapshots == nil {
		return 0, nil
	}
	snap, err := a.Snapshots.LatestKnowledge(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	users := a.Knowledge.Import(snap.Payload)
	a.Logger.Info("Restored knowledge base", "users", users, "saved", snap.CreatedAt.Format(time.RFC3339))
	return users, nil
}

// PersistKnowledge stores the knowledge base as a new snapshot. Empty
// bases are not stored.
func (a *App) PersistKnowledge(ctx context.Context) error {
	if a.Snapshots == nil {
		return nil
	}
	users := len(a.Knowledge.Users())
	if users == 0 {
		return nil
	}
	data, err := a.Knowledge.Export()
	if err != nil {
		return err
	}
	if _, err := a.Snapshots.SaveKnowledge(ctx, users, data, a.Config.Storage.KeepKnowledge); err != nil {
		return err
	}
	a.Logger.Info("Saved knowledge base", "users", users)
	return nil
}

// EncryptionConfig returns the snapshot file encryption settings, nil when
// no passphrase is configured.
func (a *App) EncryptionConfig() *storage.EncryptionConfig {
	if a.Config.Storage.SnapshotPassphrase == "" {
		return nil
	}
	return storage.DefaultEncryptionConfig(a.Config.Storage.SnapshotPassphrase)
}

// Close releases the database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
