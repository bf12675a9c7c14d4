// Package session gives every API or tool session its own recommendation
// engine so build histories never mix.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ramonehamilton/deck-insight/internal/metrics"
	"github.com/ramonehamilton/deck-insight/internal/recommendations"
)

// ErrNotFound is returned for unknown or evicted session ids.
var ErrNotFound = errors.New("session not found")

// DefaultMaxSessions bounds the registry when no size is configured.
const DefaultMaxSessions = 256

// Session owns one engine. Use Registry.WithSession to touch the engine.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	mu     sync.Mutex
	engine *recommendations.Engine
}

// Registry is a bounded set of sessions. The least recently used session
// is evicted once the limit is reached.
type Registry struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *Session]
	newOpts  []recommendations.Option
	logger   *slog.Logger
}

// Config configures a Registry.
type Config struct {
	MaxSessions int

	// EngineOptions are applied to every new session's engine.
	EngineOptions []recommendations.Option

	Logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(config Config) (*Registry, error) {
	size := config.MaxSessions
	if size <= 0 {
		size = DefaultMaxSessions
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{newOpts: config.EngineOptions, logger: logger}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		r.logger.Debug("session evicted", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	r.sessions = cache
	return r, nil
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		engine:    recommendations.NewEngine(r.engineOptions()...),
	}

	r.mu.Lock()
	r.sessions.Add(s.ID, s)
	metrics.ActiveSessions.Set(float64(r.sessions.Len()))
	r.mu.Unlock()

	r.logger.Info("session created", "session", s.ID)
	return s
}

func (r *Registry) engineOptions() []recommendations.Option {
	return append([]recommendations.Option{recommendations.WithLogger(r.logger)}, r.newOpts...)
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes the session for id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sessions.Remove(id) {
		return ErrNotFound
	}
	metrics.ActiveSessions.Set(float64(r.sessions.Len()))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.Len()
}

// WithSession runs fn with exclusive access to the session's engine.
func (r *Registry) WithSession(id string, fn func(*recommendations.Engine) error) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}
