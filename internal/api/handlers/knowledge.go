package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/storage"
)

// maxImportBytes caps history and knowledge import bodies.
const maxImportBytes = 8 << 20

// KnowledgeStore persists knowledge base exports.
type KnowledgeStore interface {
	SaveKnowledge(ctx context.Context, count int, payload []byte, keep int) (*storage.Snapshot, error)
}

// KnowledgeHandler exposes the shared knowledge base.
type KnowledgeHandler struct {
	base   *knowledge.Base
	store  KnowledgeStore
	keep   int
	logger *slog.Logger
}

// NewKnowledgeHandler creates a new KnowledgeHandler. store may be nil, in
// which case imports are not persisted.
func NewKnowledgeHandler(base *knowledge.Base, store KnowledgeStore, keep int, logger *slog.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeHandler{base: base, store: store, keep: keep, logger: logger}
}

// GetKnowledge returns the knowledge base export.
func (h *KnowledgeHandler) GetKnowledge(w http.ResponseWriter, _ *http.Request) {
	data, err := h.base.Export()
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, json.RawMessage(data))
}

// PutKnowledge replaces the knowledge base with the request body. Bodies
// that are not an array of entries leave the base empty.
func (h *KnowledgeHandler) PutKnowledge(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		response.BadRequest(w, errInvalidBody)
		return
	}

	users := h.base.Import(body)

	if h.store != nil {
		if data, err := h.base.Export(); err == nil {
			if _, err := h.store.SaveKnowledge(r.Context(), users, data, h.keep); err != nil {
				h.logger.Warn("Failed to persist knowledge snapshot", "error", err)
			}
		}
	}

	response.Success(w, map[string]int{"users": users})
}
