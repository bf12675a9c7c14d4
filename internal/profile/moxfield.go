package profile

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultMoxfieldConfig returns default configuration.
func DefaultMoxfieldConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://api2.moxfield.com",
		RequestTimeout: 30 * time.Second,
		RateLimitMs:    1000,
		CacheTTL:       30 * time.Minute,
		CacheSize:      64,
	}
}

// MoxfieldClient reads public deck listings from the Moxfield API.
type MoxfieldClient struct {
	fetcher *pageFetcher
}

// NewMoxfieldClient creates a new Moxfield client.
func NewMoxfieldClient(config *ClientConfig) *MoxfieldClient {
	if config == nil {
		config = DefaultMoxfieldConfig()
	}
	return &MoxfieldClient{fetcher: newPageFetcher("moxfield", config)}
}

// Name implements Source.
func (c *MoxfieldClient) Name() string {
	return "moxfield"
}

// FetchUserDecks implements Source.
func (c *MoxfieldClient) FetchUserDecks(ctx context.Context, username string) ([]DeckRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	path := fmt.Sprintf("/v2/users/%s/decks?pageNumber=1&pageSize=100", url.PathEscape(username))
	body, err := c.fetcher.get(ctx, path, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch moxfield decks for %s: %w", username, err)
	}

	decks, err := DecodeMoxfieldDecks(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode moxfield decks for %s: %w", username, err)
	}
	return decks, nil
}

// DecodeMoxfieldDecks reads the deck list payload. It accepts either a bare
// array or an object wrapping the array under "data". Commanders are read
// from commanders[].card.name, falling back to commanders[].name.
func DecodeMoxfieldDecks(body []byte) ([]DeckRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON payload")
	}

	root := gjson.ParseBytes(body)
	list := root
	if !root.IsArray() {
		list = root.Get("data")
		if !list.IsArray() {
			return nil, fmt.Errorf("payload has no deck array")
		}
	}

	decks := make([]DeckRecord, 0, len(list.Array()))
	list.ForEach(func(_, item gjson.Result) bool {
		deck := DeckRecord{
			Name:   item.Get("name").String(),
			Format: item.Get("format").String(),
		}

		item.Get("commanders").ForEach(func(_, c gjson.Result) bool {
			name := c.Get("card.name").String()
			if name == "" {
				name = c.Get("name").String()
			}
			if name != "" {
				deck.Commanders = append(deck.Commanders, CommanderSlot{Card: CardRef{Name: name}})
			}
			return true
		})

		item.Get("colorIdentity").ForEach(func(_, letter gjson.Result) bool {
			deck.ColorIdentity = append(deck.ColorIdentity, letter.String())
			return true
		})

		decks = append(decks, deck)
		return true
	})

	return decks, nil
}
