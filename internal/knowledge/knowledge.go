// Package knowledge remembers the decks seen for each user so profile
// patterns survive between requests.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/ramonehamilton/deck-insight/internal/profile"
)

// Entry is the exported form of one user's decks.
type Entry struct {
	Username string               `json:"username"`
	Decks    []profile.DeckRecord `json:"decks"`
}

// Base is a concurrency-safe store of decks keyed by username. Usernames
// are compared case-insensitively.
type Base struct {
	mu     sync.RWMutex
	users  map[string]*Entry
	order  []string
	logger *slog.Logger
}

// New creates an empty knowledge base.
func New(logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{
		users:  make(map[string]*Entry),
		logger: logger,
	}
}

func key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Remember replaces the decks stored for username.
func (b *Base) Remember(username string, decks []profile.DeckRecord) {
	k := key(username)
	if k == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[k]; !ok {
		b.order = append(b.order, k)
	}
	b.users[k] = &Entry{
		Username: strings.TrimSpace(username),
		Decks:    append([]profile.DeckRecord(nil), decks...),
	}
}

// Decks returns the stored decks for username, or nil.
func (b *Base) Decks(username string) []profile.DeckRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.users[key(username)]
	if !ok {
		return nil
	}
	return append([]profile.DeckRecord(nil), entry.Decks...)
}

// Pattern aggregates the stored decks for username. The second result is
// false when nothing is known about the user.
func (b *Base) Pattern(username string) (*profile.UserPattern, bool) {
	decks := b.Decks(username)
	if decks == nil {
		return nil, false
	}
	return profile.BuildUserPattern(decks), true
}

// Users returns the known usernames in the order they were first stored.
func (b *Base) Users() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	users := make([]string, 0, len(b.order))
	for _, k := range b.order {
		users = append(users, b.users[k].Username)
	}
	return users
}

// Export encodes every entry as a JSON array.
func (b *Base) Export() ([]byte, error) {
	b.mu.RLock()
	entries := make([]Entry, 0, len(b.order))
	for _, k := range b.order {
		entries = append(entries, *b.users[k])
	}
	b.mu.RUnlock()

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode knowledge base: %w", err)
	}
	return data, nil
}

// Import replaces the contents with an exported array. It is best effort:
// malformed JSON, a payload that is not an array, or an array that does not
// decode all leave the base empty without an error. It returns the number
// of users loaded.
func (b *Base) Import(data []byte) int {
	var entries []Entry
	if gjson.ValidBytes(data) && gjson.ParseBytes(data).IsArray() {
		if err := json.Unmarshal(data, &entries); err != nil {
			b.logger.Warn("discarding undecodable knowledge import", "error", err)
			entries = nil
		}
	} else {
		b.logger.Warn("knowledge import is not a JSON array, starting empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.users = make(map[string]*Entry, len(entries))
	b.order = nil
	for i := range entries {
		k := key(entries[i].Username)
		if k == "" {
			continue
		}
		if _, ok := b.users[k]; !ok {
			b.order = append(b.order, k)
		}
		entry := entries[i]
		b.users[k] = &entry
	}
	return len(b.order)
}
