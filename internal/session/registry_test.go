package session

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-insight/internal/recommendations"
)

func newRegistry(t *testing.T, size int) *Registry {
	t.Helper()
	r, err := NewRegistry(Config{
		MaxSessions: size,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return r
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r := newRegistry(t, 4)
	a := r.Create()
	b := r.Create()
	require.NotEqual(t, a.ID, b.ID)

	require.NoError(t, r.WithSession(a.ID, func(e *recommendations.Engine) error {
		e.AddBuild(recommendations.HistoryEntry{Commander: "Krenko"})
		return nil
	}))

	var countA, countB int
	require.NoError(t, r.WithSession(a.ID, func(e *recommendations.Engine) error {
		countA = e.Len()
		return nil
	}))
	require.NoError(t, r.WithSession(b.ID, func(e *recommendations.Engine) error {
		countB = e.Len()
		return nil
	}))

	assert.Equal(t, 1, countA)
	assert.Equal(t, 0, countB)
}

func TestRegistry_NotFound(t *testing.T) {
	r := newRegistry(t, 4)

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Delete("missing"), ErrNotFound)
	assert.ErrorIs(t, r.WithSession("missing", func(*recommendations.Engine) error { return nil }), ErrNotFound)
}

func TestRegistry_Delete(t *testing.T) {
	r := newRegistry(t, 4)
	s := r.Create()

	require.NoError(t, r.Delete(s.ID))
	assert.Zero(t, r.Len())
	_, err := r.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_EvictsLeastRecentlyUsed(t *testing.T) {
	r := newRegistry(t, 2)
	first := r.Create()
	second := r.Create()

	_, err := r.Get(first.ID)
	require.NoError(t, err)

	r.Create()
	assert.Equal(t, 2, r.Len())

	_, err = r.Get(second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(first.ID)
	assert.NoError(t, err)
}

func TestRegistry_WithSessionReturnsError(t *testing.T) {
	r := newRegistry(t, 4)
	s := r.Create()
	boom := errors.New("boom")

	assert.ErrorIs(t, r.WithSession(s.ID, func(*recommendations.Engine) error { return boom }), boom)
}

func TestRegistry_ConcurrentBuilds(t *testing.T) {
	r := newRegistry(t, 4)
	s := r.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.WithSession(s.ID, func(e *recommendations.Engine) error {
				e.AddBuild(recommendations.HistoryEntry{Strategy: "Tokens"})
				return nil
			})
		}()
	}
	wg.Wait()

	_ = r.WithSession(s.ID, func(e *recommendations.Engine) error {
		assert.Equal(t, 20, e.Len())
		return nil
	})
}
