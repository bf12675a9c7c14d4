package profile

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

// DefaultArchidektConfig returns default configuration.
func DefaultArchidektConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://archidekt.com",
		RequestTimeout: 30 * time.Second,
		RateLimitMs:    1000,
		CacheTTL:       30 * time.Minute,
		CacheSize:      64,
	}
}

// ArchidektClient scrapes the public profile page. The page lists deck
// tiles with their commanders but no color identity.
type ArchidektClient struct {
	fetcher *pageFetcher
}

// NewArchidektClient creates a new Archidekt client.
func NewArchidektClient(config *ClientConfig) *ArchidektClient {
	if config == nil {
		config = DefaultArchidektConfig()
	}
	return &ArchidektClient{fetcher: newPageFetcher("archidekt", config)}
}

// Name implements CoarseSource.
func (c *ArchidektClient) Name() string {
	return "archidekt"
}

// FetchCoarseProfile implements CoarseSource.
func (c *ArchidektClient) FetchCoarseProfile(ctx context.Context, username string) (*CoarseProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	body, err := c.fetcher.get(ctx, "/u/"+url.PathEscape(username), "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archidekt profile for %s: %w", username, err)
	}

	profile := ExtractCoarseProfile(string(body))
	profile.Username = username
	return profile, nil
}

var (
	deckLinkPattern  = regexp.MustCompile(`href=["']/decks/(\d+)`)
	commanderPattern = regexp.MustCompile(`(?is)<[^>]*class=["'][^"']*commander[^"']*["'][^>]*>\s*([^<]+?)\s*<`)
)

// ExtractCoarseProfile counts distinct deck links and commander labels on a
// profile page. Unrecognized markup yields an empty profile.
func ExtractCoarseProfile(markup string) *CoarseProfile {
	profile := &CoarseProfile{FavoriteCommanders: patterns.NewFrequencyMap()}

	seen := make(map[string]bool)
	for _, m := range deckLinkPattern.FindAllStringSubmatch(markup, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			profile.DeckCount++
		}
	}

	for _, m := range commanderPattern.FindAllStringSubmatch(markup, -1) {
		name := strings.TrimSpace(html.UnescapeString(m[1]))
		if name != "" {
			profile.FavoriteCommanders.Add(name, 1)
		}
	}

	return profile
}
