package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/knowledge"
	"github.com/ramonehamilton/deck-insight/internal/profile"
)

// ProfileAnalyzer builds profile reports from the public deck sites.
type ProfileAnalyzer interface {
	AnalyzeUser(ctx context.Context, username string) (*profile.Report, error)
	AnalyzeCoarseUser(ctx context.Context, username string) (*profile.Report, error)
}

// ProfileHandler handles profile insight requests.
type ProfileHandler struct {
	profiles  ProfileAnalyzer
	knowledge *knowledge.Base
}

// NewProfileHandler creates a new ProfileHandler. Fetched decks are
// remembered in kb when it is non-nil.
func NewProfileHandler(profiles ProfileAnalyzer, kb *knowledge.Base) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, knowledge: kb}
}

// GetProfile returns insights and recommendations for a user. The source
// query parameter picks the site: moxfield (default) or archidekt.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		response.ServiceUnavailable(w, profile.ErrNoSource)
		return
	}
	username := chi.URLParam(r, "username")
	if username == "" {
		response.BadRequest(w, errors.New("username is required"))
		return
	}

	var (
		report *profile.Report
		err    error
	)
	switch source := r.URL.Query().Get("source"); source {
	case "", "moxfield":
		report, err = h.profiles.AnalyzeUser(r.Context(), username)
	case "archidekt":
		report, err = h.profiles.AnalyzeCoarseUser(r.Context(), username)
	default:
		response.BadRequest(w, fmt.Errorf("unknown profile source %q", source))
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, profile.ErrUserNotFound):
		response.NotFound(w, err)
		return
	case errors.Is(err, profile.ErrNoSource):
		response.ServiceUnavailable(w, err)
		return
	default:
		response.BadGateway(w, err)
		return
	}

	if h.knowledge != nil && report.Decks != nil {
		h.knowledge.Remember(username, report.Decks)
	}
	response.Success(w, report)
}
