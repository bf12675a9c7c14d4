package meta

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/deck-insight/internal/metrics"
)

// GoldfishConfig configures the MTGGoldfish client.
type GoldfishConfig struct {
	// BaseURL is the MTGGoldfish base URL.
	BaseURL string

	// CacheTTL is how long fetched listings are reused.
	CacheTTL time.Duration

	// CacheSize bounds the number of cached formats.
	CacheSize int

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout time.Duration

	// RateLimitMs is the minimum number of milliseconds between requests.
	RateLimitMs int

	// Extractor parses the metagame page. Defaults to GoldfishExtractor.
	Extractor Extractor

	Logger *slog.Logger
}

// DefaultGoldfishConfig returns default configuration.
func DefaultGoldfishConfig() *GoldfishConfig {
	return &GoldfishConfig{
		BaseURL:        "https://www.mtggoldfish.com",
		CacheTTL:       4 * time.Hour,
		CacheSize:      32,
		RequestTimeout: 30 * time.Second,
		RateLimitMs:    1000,
	}
}

// formatPaths maps format names to MTGGoldfish metagame pages.
var formatPaths = map[string]string{
	"commander":      "/metagame/commander/full",
	"brawl":          "/metagame/brawl/full",
	"historic_brawl": "/metagame/historic_brawl/full",
	"standard":       "/metagame/standard/full",
	"historic":       "/metagame/historic/full",
	"explorer":       "/metagame/explorer/full",
	"pioneer":        "/metagame/pioneer/full",
	"modern":         "/metagame/modern/full",
	"legacy":         "/metagame/legacy/full",
	"vintage":        "/metagame/vintage/full",
	"pauper":         "/metagame/pauper/full",
	"timeless":       "/metagame/timeless/full",
}

// GoldfishClient fetches meta listings from MTGGoldfish.
type GoldfishClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      *expirable.LRU[string, *FetchResult]
	extractor  Extractor
	logger     *slog.Logger
}

// NewGoldfishClient creates a new MTGGoldfish client.
func NewGoldfishClient(config *GoldfishConfig) *GoldfishClient {
	if config == nil {
		config = DefaultGoldfishConfig()
	}

	extractor := config.Extractor
	if extractor == nil {
		extractor = GoldfishExtractor{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 32
	}
	limit := rate.Inf
	if config.RateLimitMs > 0 {
		limit = rate.Every(time.Duration(config.RateLimitMs) * time.Millisecond)
	}

	return &GoldfishClient{
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		baseURL:   strings.TrimRight(config.BaseURL, "/"),
		limiter:   rate.NewLimiter(limit, 1),
		cache:     expirable.NewLRU[string, *FetchResult](cacheSize, nil, config.CacheTTL),
		extractor: extractor,
		logger:    logger,
	}
}

// Name implements Source.
func (c *GoldfishClient) Name() string {
	return "mtggoldfish"
}

// SupportedFormats lists the formats with a known metagame page.
func SupportedFormats() []string {
	return []string{
		"commander",
		"brawl",
		"historic_brawl",
		"standard",
		"historic",
		"explorer",
		"pioneer",
		"modern",
		"legacy",
		"vintage",
		"pauper",
		"timeless",
	}
}

// IsFormatSupported checks if a format has a metagame page.
func IsFormatSupported(format string) bool {
	_, ok := formatPaths[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

// FetchMetaDecks implements Source.
func (c *GoldfishClient) FetchMetaDecks(ctx context.Context, format string) (*FetchResult, error) {
	key := strings.ToLower(strings.TrimSpace(format))

	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	result, err := c.fetch(ctx, key)
	if err != nil {
		metrics.SourceFetchFailures.WithLabelValues(c.Name()).Inc()
		return nil, err
	}

	c.cache.Add(key, result)
	return result, nil
}

// ClearCache drops every cached listing.
func (c *GoldfishClient) ClearCache() {
	c.cache.Purge()
}

func (c *GoldfishClient) fetch(ctx context.Context, format string) (*FetchResult, error) {
	urlPath, ok := formatPaths[format]
	if !ok {
		return nil, &FetchError{Source: c.Name(), Format: format, Err: fmt.Errorf("unsupported format: %s", format)}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Source: c.Name(), Format: format, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+urlPath, nil)
	if err != nil {
		return nil, &FetchError{Source: c.Name(), Format: format, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "deck-insight/1.0")
	req.Header.Set("Accept", "text/html")

	c.logger.Debug("fetching meta page", "source", c.Name(), "format", format)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: c.Name(), Format: format, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: c.Name(), Format: format, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: c.Name(), Format: format, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	records := c.extractor.Extract(string(body))
	for i := range records {
		if strings.HasPrefix(records[i].URL, "/") {
			records[i].URL = c.baseURL + records[i].URL
		}
	}

	return &FetchResult{
		Source:    c.Name(),
		Format:    format,
		Records:   records,
		FetchedAt: time.Now(),
	}, nil
}
