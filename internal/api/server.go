package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/session"
	"github.com/ramonehamilton/deck-insight/internal/storage"
	"github.com/ramonehamilton/deck-insight/internal/tools"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	origins    []string
	logger     *slog.Logger

	// WebSocket hub for real-time events
	wsHub *websocket.Hub

	services *Services
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	CORSOrigins []string
	Logger      *slog.Logger
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        8080,
		CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// Services holds the components the API serves. Analyzer, Profiles and
// Snapshots may be nil; their endpoints then answer 503.
type Services struct {
	Analyzer      *meta.Analyzer
	Profiles      *profile.Generator
	Knowledge     *knowledge.Base
	Sessions      *session.Registry
	Tools         *tools.Dispatcher
	Snapshots     *storage.SnapshotRepository
	KeepKnowledge int
	DefaultFormat string
}

// NewServer creates a new API server. Missing core services are created
// with defaults.
func NewServer(cfg *Config, services *Services) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if services == nil {
		services = &Services{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = DefaultConfig().CORSOrigins
	}

	if services.Knowledge == nil {
		services.Knowledge = knowledge.New(logger)
	}
	if services.Sessions == nil {
		registry, err := session.NewRegistry(session.Config{Logger: logger})
		if err != nil {
			return nil, err
		}
		services.Sessions = registry
	}
	if services.Tools == nil {
		services.Tools = tools.NewDispatcher(tools.Config{
			Analyzer:  services.Analyzer,
			Profiles:  services.Profiles,
			Knowledge: services.Knowledge,
			Sessions:  services.Sessions,
			Logger:    logger,
		})
	}

	s := &Server{
		router:   chi.NewRouter(),
		port:     cfg.Port,
		origins:  origins,
		logger:   logger,
		services: services,
	}
	s.wsHub = websocket.NewHub(logger, s.originAllowed)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request metrics
	s.router.Use(metricsMiddleware)

	// Request timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT only (not GET/DELETE/OPTIONS)
	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// originAllowed applies the CORS origin list to WebSocket handshakes.
// Requests without an Origin header come from non-browser clients.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok && strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the hub and the API server in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Events returns the publisher that feeds WebSocket clients.
func (s *Server) Events() websocket.Publisher {
	return s.wsHub
}
