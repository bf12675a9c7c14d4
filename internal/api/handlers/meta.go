package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/charts"
	"github.com/ramonehamilton/deck-insight/internal/meta"
)

// MetaAnalyzer analyzes one format's meta.
type MetaAnalyzer interface {
	AnalyzeFormat(ctx context.Context, format string) *meta.Analysis
}

// MetaHandler handles meta-related API requests.
type MetaHandler struct {
	analyzer MetaAnalyzer
	events   websocket.Publisher
}

// NewMetaHandler creates a new MetaHandler.
func NewMetaHandler(analyzer MetaAnalyzer, events websocket.Publisher) *MetaHandler {
	return &MetaHandler{analyzer: analyzer, events: events}
}

func (h *MetaHandler) analyze(w http.ResponseWriter, r *http.Request) (*meta.Analysis, bool) {
	if h.analyzer == nil {
		response.ServiceUnavailable(w, meta.ErrNoSource)
		return nil, false
	}
	format := chi.URLParam(r, "format")
	if format == "" {
		response.BadRequest(w, errors.New("format is required"))
		return nil, false
	}
	return h.analyzer.AnalyzeFormat(r.Context(), format), true
}

// GetMeta returns the meta analysis of a format. A failed source yields a
// degraded analysis with status 200.
func (h *MetaHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analyze(w, r)
	if !ok {
		return
	}
	publish(h.events, websocket.EventMetaAnalyzed, map[string]any{
		"format":   analysis.Format,
		"decks":    len(analysis.TopDecks),
		"degraded": analysis.Degraded,
	})
	response.Success(w, analysis)
}

// GetMetaChart renders the format's meta share as an HTML bar chart.
func (h *MetaHandler) GetMetaChart(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.analyze(w, r)
	if !ok {
		return
	}
	if analysis.Degraded {
		if errors.Is(analysis.SourceErr, meta.ErrNoSource) {
			response.ServiceUnavailable(w, analysis.SourceErr)
			return
		}
		response.BadGateway(w, analysis.SourceErr)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderMetaShare(w, analysis, charts.DefaultChartConfig()); err != nil {
		response.InternalError(w, err)
	}
}

// GetFormats lists the formats the meta source can scrape.
func (h *MetaHandler) GetFormats(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, meta.SupportedFormats())
}
