package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/deck-insight/internal/deck"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Snapshot database configuration
	Storage StorageConfig `toml:"storage"`

	// Meta listing scraper configuration
	Meta MetaConfig `toml:"meta"`

	// Profile site clients configuration
	Profile ProfileConfig `toml:"profile"`

	// Decklist validation defaults
	Validation ValidationConfig `toml:"validation"`

	// Session registry configuration
	Sessions SessionsConfig `toml:"sessions"`

	// Directory watcher configuration
	Watch WatchConfig `toml:"watch"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains REST API settings.
type ServerConfig struct {
	Port        int      `toml:"port"`         // Listen port
	CORSOrigins []string `toml:"cors_origins"` // Allowed CORS origins
}

// StorageConfig contains snapshot database settings.
type StorageConfig struct {
	DBPath             string `toml:"db_path"`             // SQLite file; empty disables snapshots
	AutoMigrate        bool   `toml:"auto_migrate"`        // Run migrations on startup
	SnapshotPassphrase string `toml:"snapshot_passphrase"` // Encrypts snapshot files when set
	KeepKnowledge      int    `toml:"keep_knowledge"`      // Knowledge snapshots to retain
}

// MetaConfig contains meta listing scraper settings.
type MetaConfig struct {
	BaseURL        string `toml:"base_url"`        // MTGGoldfish base URL
	RateLimitMs    int    `toml:"rate_limit_ms"`   // Minimum delay between requests
	CacheTTL       string `toml:"cache_ttl"`       // Listing cache TTL (e.g., "4h")
	CacheSize      int    `toml:"cache_size"`      // Cached formats
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout (e.g., "30s")
}

// ProfileConfig contains profile site settings.
type ProfileConfig struct {
	MoxfieldURL    string `toml:"moxfield_url"`    // Moxfield API base URL
	ArchidektURL   string `toml:"archidekt_url"`   // Archidekt base URL
	RateLimitMs    int    `toml:"rate_limit_ms"`   // Minimum delay between requests
	CacheTTL       string `toml:"cache_ttl"`       // Profile cache TTL
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout
}

// ValidationConfig contains decklist validation defaults.
type ValidationConfig struct {
	DefaultFormat string `toml:"default_format"` // Preset used when none is given
}

// SessionsConfig contains session registry settings.
type SessionsConfig struct {
	MaxSessions int `toml:"max_sessions"` // Sessions kept before LRU eviction
}

// WatchConfig contains decklist directory watcher settings.
type WatchConfig struct {
	Extensions []string `toml:"extensions"` // File extensions to validate
	Debounce   string   `toml:"debounce"`   // Delay before re-validating a changed file
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Storage: StorageConfig{
			DBPath:        "",
			AutoMigrate:   true,
			KeepKnowledge: 10,
		},
		Meta: MetaConfig{
			BaseURL:        "https://www.mtggoldfish.com",
			RateLimitMs:    1000,
			CacheTTL:       "4h",
			CacheSize:      32,
			RequestTimeout: "30s",
		},
		Profile: ProfileConfig{
			MoxfieldURL:    "https://api2.moxfield.com",
			ArchidektURL:   "https://archidekt.com",
			RateLimitMs:    1000,
			CacheTTL:       "30m",
			RequestTimeout: "30s",
		},
		Validation: ValidationConfig{
			DefaultFormat: deck.PresetCommander.Name,
		},
		Sessions: SessionsConfig{
			MaxSessions: 256,
		},
		Watch: WatchConfig{
			Extensions: []string{".txt", ".dek"},
			Debounce:   "250ms",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns ~/.deck-insight/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".deck-insight", "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Returns default config if the
// file doesn't exist. Keys missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo saves the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	durations := map[string]string{
		"meta cache TTL":          c.Meta.CacheTTL,
		"meta request timeout":    c.Meta.RequestTimeout,
		"profile cache TTL":       c.Profile.CacheTTL,
		"profile request timeout": c.Profile.RequestTimeout,
		"watch debounce":          c.Watch.Debounce,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Meta.RateLimitMs < 0 || c.Profile.RateLimitMs < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}

	if c.Meta.CacheSize < 0 {
		return fmt.Errorf("meta cache size cannot be negative: %d", c.Meta.CacheSize)
	}

	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive: %d", c.Sessions.MaxSessions)
	}

	if _, ok := deck.PresetFor(c.Validation.DefaultFormat); !ok {
		return fmt.Errorf("unknown default format %q", c.Validation.DefaultFormat)
	}

	return nil
}

// MetaCacheTTL returns the meta cache TTL as a duration.
func (c *Config) MetaCacheTTL() time.Duration {
	return mustDuration(c.Meta.CacheTTL)
}

// MetaRequestTimeout returns the meta request timeout as a duration.
func (c *Config) MetaRequestTimeout() time.Duration {
	return mustDuration(c.Meta.RequestTimeout)
}

// ProfileCacheTTL returns the profile cache TTL as a duration.
func (c *Config) ProfileCacheTTL() time.Duration {
	return mustDuration(c.Profile.CacheTTL)
}

// ProfileRequestTimeout returns the profile request timeout as a duration.
func (c *Config) ProfileRequestTimeout() time.Duration {
	return mustDuration(c.Profile.RequestTimeout)
}

// WatchDebounce returns the watcher debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return mustDuration(c.Watch.Debounce)
}

// mustDuration parses a duration already checked by Validate. Unparsable
// values yield 0.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
