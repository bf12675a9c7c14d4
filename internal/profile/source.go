package profile

import (
	"context"
	"errors"
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

// Source fetches the public decks of a user.
type Source interface {
	Name() string
	FetchUserDecks(ctx context.Context, username string) ([]DeckRecord, error)
}

// CoarseSource fetches a profile that carries no color information.
type CoarseSource interface {
	Name() string
	FetchCoarseProfile(ctx context.Context, username string) (*CoarseProfile, error)
}

// ErrUserNotFound is returned when the site has no such user.
var ErrUserNotFound = errors.New("user not found")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Source, e.StatusCode)
}

// ClientConfig configures a profile site client.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration

	// RateLimitMs is the minimum number of milliseconds between requests.
	RateLimitMs int

	CacheTTL  time.Duration
	CacheSize int

	Logger *slog.Logger
}

// pageFetcher is the HTTP plumbing shared by the profile clients: paced
// requests and a short-lived body cache.
type pageFetcher struct {
	source     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *expirable.LRU[string, []byte]
	logger     *slog.Logger
}

func newPageFetcher(source string, config *ClientConfig) *pageFetcher {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := config.CacheSize
	if size <= 0 {
		size = 64
	}
	limit := rate.Inf
	if config.RateLimitMs > 0 {
		limit = rate.Every(time.Duration(config.RateLimitMs) * time.Millisecond)
	}

	return &pageFetcher{
		source:     source,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      expirable.NewLRU[string, []byte](size, nil, config.CacheTTL),
		logger:     logger,
	}
}

// get fetches baseURL+path. Every failure is counted.
func (f *pageFetcher) get(ctx context.Context, path, accept string) ([]byte, error) {
	body, err := f.doGet(ctx, path, accept)
	if err != nil {
		metrics.ProfileFetchFailures.WithLabelValues(f.source).Inc()
		return nil, err
	}
	return body, nil
}

func (f *pageFetcher) doGet(ctx context.Context, path, accept string) ([]byte, error) {
	if cached, ok := f.cache.Get(path); ok {
		return cached, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "deck-insight/1.0")
	req.Header.Set("Accept", accept)

	f.logger.Debug("fetching profile page", "source", f.source, "path", path)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Source: f.source, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	f.cache.Add(path, body)
	return body, nil
}

// StaticSource serves fixed decks per user. Useful for tests and offline runs.
type StaticSource struct {
	Decks map[string][]DeckRecord
	Err   error
}

// Name implements Source.
func (s *StaticSource) Name() string {
	return "static"
}

// FetchUserDecks implements Source.
func (s *StaticSource) FetchUserDecks(ctx context.Context, username string) ([]DeckRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	decks, ok := s.Decks[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return decks, nil
}
