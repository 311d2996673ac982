package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// GameStore is the subset of the persistence layer the HTTP handlers need.
type GameStore interface {
	CreateGame(ctx context.Context, config store.GameConfig) (*store.Game, error)
	GetGame(ctx context.Context, gameID string) (*store.Game, error)
	GetPlayers(ctx context.Context, gameID string) ([]*store.Player, error)
	GetPlayer(ctx context.Context, gameID, playerID string) (*store.Player, error)
	GetEventsVisibleTo(ctx context.Context, gameID, playerID string) ([]*store.Event, error)
}

// ActionDispatcher applies a decoded game action; implemented by the engine's
// StateMachine.
type ActionDispatcher interface {
	Handle(ctx context.Context, action *engine.Action) (*engine.Result, error)
}

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// ClaimsContextKey is the context key for the verified session claims (set
// by the RequirePlayer middleware).
const ClaimsContextKey contextKey = "claims"

// ClaimsFromRequest returns the session claims set by RequirePlayer, or nil.
func ClaimsFromRequest(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ClaimsContextKey).(*auth.Claims)
	return claims
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, into any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(into)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses: NotFound 404,
// Invalid 400, Conflict 409, bad token 401, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrConflict), errors.Is(err, store.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
