package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/recommendations"
	"github.com/ramonehamilton/deck-insight/internal/session"
	"github.com/ramonehamilton/deck-insight/internal/storage"
)

// HistoryStore persists history exports per session.
type HistoryStore interface {
	SaveHistory(ctx context.Context, sessionID string, count int, payload []byte) (*storage.Snapshot, error)
	LatestHistory(ctx context.Context, sessionID string) (*storage.Snapshot, error)
}

// SessionHandler handles session and build history requests.
type SessionHandler struct {
	sessions  *session.Registry
	knowledge *knowledge.Base
	store     HistoryStore
	events    websocket.Publisher
}

// NewSessionHandler creates a new SessionHandler. kb, store and events
// may be nil.
func NewSessionHandler(sessions *session.Registry, kb *knowledge.Base, store HistoryStore, events websocket.Publisher) *SessionHandler {
	return &SessionHandler{sessions: sessions, knowledge: kb, store: store, events: events}
}

// CreateSession starts a new session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	s := h.sessions.Create()
	publish(h.events, websocket.EventSessionCreated, s)
	response.Created(w, s)
}

// DeleteSession ends a session.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	publish(h.events, websocket.EventSessionDeleted, map[string]string{"id": id})
	response.NoContent(w)
}

// RecordBuildRequest is one build to add to a session's history.
type RecordBuildRequest struct {
	Commander string                    `json:"commander"`
	Strategy  string                    `json:"strategy"`
	Colors    []string                  `json:"colors"`
	Cards     []recommendations.CardRef `json:"cards"`
	Timestamp string                    `json:"timestamp,omitempty"`
}

// RecordBuild appends a build to the session's history.
func (h *SessionHandler) RecordBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req RecordBuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errInvalidBody)
		return
	}

	var stored recommendations.HistoryEntry
	err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		stored = e.AddBuild(recommendations.HistoryEntry{
			Commander: req.Commander,
			Strategy:  req.Strategy,
			Colors:    req.Colors,
			Cards:     req.Cards,
			Timestamp: req.Timestamp,
		})
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	publish(h.events, websocket.EventBuildRecorded, map[string]any{"session": id, "build": stored})
	response.Created(w, stored)
}

// GetHistory returns the session's history, paginated with the page and
// page_size query parameters.
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var history []recommendations.HistoryEntry
	if err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		history = e.History()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 50)
	start := min((page-1)*pageSize, len(history))
	end := min(start+pageSize, len(history))

	response.Paginated(w, history[start:end], page, pageSize, len(history))
}

// ImportHistory replaces the session's history with the request body.
// Anything but a JSON array is rejected and the history is left unchanged.
func (h *SessionHandler) ImportHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		response.BadRequest(w, errInvalidBody)
		return
	}

	var count int
	err = h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		if err := e.ImportHistory(body); err != nil {
			return err
		}
		count = e.Len()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	publish(h.events, websocket.EventHistoryChanged, map[string]any{"session": id, "builds": count})
	response.Success(w, map[string]int{"builds": count})
}

// ClearHistory empties the session's history.
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		e.ClearHistory()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}

	publish(h.events, websocket.EventHistoryChanged, map[string]any{"session": id, "builds": 0})
	response.NoContent(w)
}

// GetRecommendations returns the session's recommendation bundle. The
// optional username query parameter folds in that user's remembered
// profile.
func (h *SessionHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var pattern *profile.UserPattern
	if username := r.URL.Query().Get("username"); username != "" && h.knowledge != nil {
		pattern, _ = h.knowledge.Pattern(username)
	}

	var bundle *recommendations.Bundle
	if err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		bundle = e.Recommend(pattern)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, bundle)
}

// SaveSnapshot persists the session's history export.
func (h *SessionHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.ServiceUnavailable(w, errors.New("snapshot storage is not configured"))
		return
	}
	id := chi.URLParam(r, "sessionID")

	var (
		payload []byte
		count   int
	)
	if err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		var err error
		payload, err = e.ExportHistory()
		count = e.Len()
		return err
	}); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.store.SaveHistory(r.Context(), id, count, payload)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Created(w, snap)
}

// RestoreSnapshot loads the newest stored snapshot into the session. The
// from query parameter restores another session's snapshot, such as one
// saved before a restart.
func (h *SessionHandler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.ServiceUnavailable(w, errors.New("snapshot storage is not configured"))
		return
	}
	id := chi.URLParam(r, "sessionID")
	from := r.URL.Query().Get("from")
	if from == "" {
		from = id
	}

	// Fail on an unknown session before touching storage.
	if _, err := h.sessions.Get(id); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.store.LatestHistory(r.Context(), from)
	if err != nil {
		writeError(w, err)
		return
	}

	var count int
	if err := h.sessions.WithSession(id, func(e *recommendations.Engine) error {
		if err := e.ImportHistory(snap.Payload); err != nil {
			return err
		}
		count = e.Len()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}

	publish(h.events, websocket.EventHistoryChanged, map[string]any{"session": id, "builds": count})
	response.Success(w, map[string]any{"builds": count, "snapshot": snap})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
