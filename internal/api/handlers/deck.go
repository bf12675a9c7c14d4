package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
)

// DeckHandler handles decklist parsing and validation requests.
type DeckHandler struct {
	defaultFormat string
	events        websocket.Publisher
}

// NewDeckHandler creates a new DeckHandler. defaultFormat names the preset
// used when a request gives none.
func NewDeckHandler(defaultFormat string, events websocket.Publisher) *DeckHandler {
	return &DeckHandler{defaultFormat: defaultFormat, events: events}
}

// DeckListRequest is the body shared by the deck endpoints.
type DeckListRequest struct {
	DeckList string `json:"decklist"`
	Format   string `json:"format,omitempty"`
	Mono     bool   `json:"mono,omitempty"`
	Size     int    `json:"size,omitempty"`
	Dedupe   bool   `json:"dedupe,omitempty"`
}

// FormattedDeck is the response of the dedupe and format endpoints.
type FormattedDeck struct {
	Cards deck.ParsedDeck `json:"cards"`
	Text  string          `json:"text"`
}

func decodeDeckList(w http.ResponseWriter, r *http.Request) (*DeckListRequest, bool) {
	var req DeckListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errInvalidBody)
		return nil, false
	}
	if req.DeckList == "" {
		response.BadRequest(w, errors.New("decklist is required"))
		return nil, false
	}
	return &req, true
}

// ParseDeckList returns the parsed entries of a decklist.
func (h *DeckHandler) ParseDeckList(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckList(w, r)
	if !ok {
		return
	}
	response.Success(w, deck.ParseDeckList(req.DeckList))
}

// ValidateDeckList validates a decklist against a format preset.
func (h *DeckHandler) ValidateDeckList(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckList(w, r)
	if !ok {
		return
	}

	format := req.Format
	if format == "" {
		format = h.defaultFormat
	}
	preset, _ := deck.PresetFor(format)
	opts := preset.Options(req.Mono)
	if req.Size > 0 {
		opts.ExpectedSize = req.Size
	}

	result := deck.ValidateDeckList(req.DeckList, opts)
	metrics.RecordValidation(result.IsValid)
	publish(h.events, websocket.EventDeckValidated, result)

	response.Success(w, result)
}

// DedupeDeckList collapses a decklist to one copy of each card.
func (h *DeckHandler) DedupeDeckList(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckList(w, r)
	if !ok {
		return
	}
	cards := deck.RemoveDuplicates(deck.ParseDeckList(req.DeckList))
	response.Success(w, FormattedDeck{Cards: cards, Text: deck.FormatDeckList(cards)})
}

// FormatDeckList normalizes a decklist's text, deduplicating on request.
func (h *DeckHandler) FormatDeckList(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeckList(w, r)
	if !ok {
		return
	}
	cards := deck.ParseDeckList(req.DeckList)
	if req.Dedupe {
		cards = deck.RemoveDuplicates(cards)
	}
	response.Success(w, FormattedDeck{Cards: cards, Text: deck.FormatDeckList(cards)})
}

// PresetsResponse lists the format presets and the cards exempt from the
// singleton rule.
type PresetsResponse struct {
	Presets    []deck.Preset `json:"presets"`
	BasicLands []string      `json:"basicLands"`
}

// GetPresets lists the supported format presets.
func (h *DeckHandler) GetPresets(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, PresetsResponse{
		Presets:    []deck.Preset{deck.PresetCommander, deck.PresetBrawl, deck.PresetOathbreaker},
		BasicLands: deck.BasicLandNames(),
	})
}
