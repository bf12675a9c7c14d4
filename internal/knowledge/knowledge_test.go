package knowledge

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-insight/internal/profile"
)

func newBase() *Base {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decks() []profile.DeckRecord {
	return []profile.DeckRecord{
		{Name: "Goblins", Format: "commander", ColorIdentity: []string{"R"},
			Commanders: []profile.CommanderSlot{{Card: profile.CardRef{Name: "Krenko"}}}},
		{Name: "Esper", Format: "brawl", ColorIdentity: []string{"W", "U", "B"}},
	}
}

func TestBase_RememberAndPattern(t *testing.T) {
	b := newBase()
	b.Remember("Alice", decks())

	assert.Len(t, b.Decks("alice"), 2)
	assert.Nil(t, b.Decks("bob"))

	p, ok := b.Pattern(" ALICE ")
	require.True(t, ok)
	assert.Equal(t, "commander", p.FavoriteFormat)
	assert.Equal(t, 1, p.Commanders.Count("Krenko"))

	_, ok = b.Pattern("bob")
	assert.False(t, ok)
}

func TestBase_RememberIgnoresBlankUser(t *testing.T) {
	b := newBase()
	b.Remember("  ", decks())
	assert.Empty(t, b.Users())
}

func TestBase_ExportImport(t *testing.T) {
	src := newBase()
	src.Remember("Alice", decks())
	src.Remember("Bob", decks()[:1])

	data, err := src.Export()
	require.NoError(t, err)

	dst := newBase()
	assert.Equal(t, 2, dst.Import(data))
	assert.Equal(t, []string{"Alice", "Bob"}, dst.Users())
	assert.Equal(t, src.Decks("alice"), dst.Decks("alice"))
}

func TestBase_ImportIsLenient(t *testing.T) {
	payloads := map[string]string{
		"malformed":      `[{"username":`,
		"object":         `{"username":"Alice"}`,
		"null":           `null`,
		"wrong elements": `[{"username":"Alice","decks":"none"}]`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			b := newBase()
			b.Remember("Carol", decks())

			assert.Zero(t, b.Import([]byte(payload)))
			assert.Empty(t, b.Users())
		})
	}
}

func TestBase_ExportEmpty(t *testing.T) {
	data, err := newBase().Export()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestBase_ConcurrentAccess(t *testing.T) {
	b := newBase()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Remember("alice", decks())
			_, _ = b.Pattern("alice")
			_, _ = b.Export()
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"alice"}, b.Users())
}
