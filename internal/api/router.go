package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/deck-insight/internal/api/handlers"
	"github.com/ramonehamilton/deck-insight/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	svc := s.services

	// Health check and metrics (no versioning)
	s.router.Get("/health", s.healthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Deck routes
		deckHandler := handlers.NewDeckHandler(svc.DefaultFormat, s.wsHub)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/presets", deckHandler.GetPresets)
			r.Post("/parse", deckHandler.ParseDeckList)
			r.Post("/validate", deckHandler.ValidateDeckList)
			r.Post("/dedupe", deckHandler.DedupeDeckList)
			r.Post("/format", deckHandler.FormatDeckList)
		})

		// Meta routes
		var analyzer handlers.MetaAnalyzer
		if svc.Analyzer != nil {
			analyzer = svc.Analyzer
		}
		metaHandler := handlers.NewMetaHandler(analyzer, s.wsHub)
		r.Route("/meta", func(r chi.Router) {
			r.Get("/formats", metaHandler.GetFormats)
			r.Get("/{format}", metaHandler.GetMeta)
			r.Get("/{format}/chart", metaHandler.GetMetaChart)
		})

		// Profile routes
		var profiles handlers.ProfileAnalyzer
		if svc.Profiles != nil {
			profiles = svc.Profiles
		}
		profileHandler := handlers.NewProfileHandler(profiles, svc.Knowledge)
		r.Get("/profiles/{username}", profileHandler.GetProfile)

		// Session routes
		var historyStore handlers.HistoryStore
		if svc.Snapshots != nil {
			historyStore = svc.Snapshots
		}
		sessionHandler := handlers.NewSessionHandler(svc.Sessions, svc.Knowledge, historyStore, s.wsHub)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Delete("/", sessionHandler.DeleteSession)
				r.Post("/builds", sessionHandler.RecordBuild)
				r.Get("/history", sessionHandler.GetHistory)
				r.Put("/history", sessionHandler.ImportHistory)
				r.Delete("/history", sessionHandler.ClearHistory)
				r.Get("/recommendations", sessionHandler.GetRecommendations)
				r.Post("/snapshot", sessionHandler.SaveSnapshot)
				r.Post("/restore", sessionHandler.RestoreSnapshot)
			})
		})

		// Tool routes
		toolHandler := handlers.NewToolHandler(svc.Tools)
		r.Route("/tools", func(r chi.Router) {
			r.Get("/", toolHandler.ListTools)
			r.Post("/{name}", toolHandler.CallTool)
		})

		// Knowledge routes
		var knowledgeStore handlers.KnowledgeStore
		if svc.Snapshots != nil {
			knowledgeStore = svc.Snapshots
		}
		knowledgeHandler := handlers.NewKnowledgeHandler(svc.Knowledge, knowledgeStore, svc.KeepKnowledge, s.logger)
		r.Get("/knowledge", knowledgeHandler.GetKnowledge)
		r.Put("/knowledge", knowledgeHandler.PutKnowledge)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "deck-insight-api",
		"sessions": s.services.Sessions.Len(),
	})
}
