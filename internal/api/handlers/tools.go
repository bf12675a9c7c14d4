package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/tools"
)

// ToolHandler exposes the tool dispatcher over HTTP.
type ToolHandler struct {
	dispatcher *tools.Dispatcher
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(dispatcher *tools.Dispatcher) *ToolHandler {
	return &ToolHandler{dispatcher: dispatcher}
}

// ListTools returns the tool names and their call statistics.
func (h *ToolHandler) ListTools(w http.ResponseWriter, _ *http.Request) {
	names := lo.Map(tools.Names(), func(n tools.Name, _ int) string { return string(n) })
	response.Success(w, map[string]any{
		"tools": names,
		"stats": h.dispatcher.Stats(),
	})
}

// CallTool runs the named tool with the request body as its arguments.
func (h *ToolHandler) CallTool(w http.ResponseWriter, r *http.Request) {
	args, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		response.BadRequest(w, errInvalidBody)
		return
	}

	result, err := h.dispatcher.Call(r.Context(), chi.URLParam(r, "name"), args)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}
