package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/deck-insight/internal/api/response"
	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/profile"
	"github.com/ramonehamilton/deck-insight/internal/recommendations"
	"github.com/ramonehamilton/deck-insight/internal/session"
	"github.com/ramonehamilton/deck-insight/internal/storage"
	"github.com/ramonehamilton/deck-insight/internal/tools"
)

var errInvalidBody = errors.New("invalid request body")

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var statusErr *profile.StatusError
	switch {
	case errors.Is(err, tools.ErrUnknownTool),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, profile.ErrUserNotFound),
		errors.Is(err, storage.ErrNoSnapshot):
		response.NotFound(w, err)
	case errors.Is(err, tools.ErrInvalidArgs),
		errors.Is(err, recommendations.ErrNotArray),
		errors.Is(err, recommendations.ErrInvalidHistory):
		response.BadRequest(w, err)
	case errors.Is(err, tools.ErrUnavailable),
		errors.Is(err, profile.ErrNoSource),
		errors.Is(err, meta.ErrNoSource):
		response.ServiceUnavailable(w, err)
	case errors.As(err, &statusErr):
		response.BadGateway(w, err)
	default:
		response.InternalError(w, err)
	}
}

func publish(p websocket.Publisher, eventType string, data any) {
	if p != nil {
		p.Publish(eventType, data)
	}
}
