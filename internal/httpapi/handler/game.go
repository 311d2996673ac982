package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// PlayerNameMaxLen caps player names at join time.
const PlayerNameMaxLen = 64

// GameHandler handles the player-facing game endpoints.
type GameHandler struct {
	store      GameStore
	dispatcher ActionDispatcher
	tokens     *auth.TokenManager
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(st GameStore, dispatcher ActionDispatcher, tokens *auth.TokenManager) *GameHandler {
	return &GameHandler{store: st, dispatcher: dispatcher, tokens: tokens}
}

type joinGameRequest struct {
	Name string `json:"name"`
}

// joinGameResponse carries the player's credentials: the secret is shown once
// and can later be exchanged for a fresh token.
type joinGameResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Secret   string `json:"secret"`
	Token    string `json:"token"`
}

// JoinGame handles POST /api/games/{game_id}/join
//
// @Summary      Join game
// @Description  Join a lobby that has not started. Returns the player's secret (shown once) and a session token for the websocket and event endpoints.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        game_id  path      string           true  "Game ID"
// @Param        body     body      joinGameRequest  true  "Request body"
// @Success      201      {object}  joinGameResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse  "Game already started"
// @Router       /api/games/{game_id}/join [post]
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	var req joinGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) > PlayerNameMaxLen {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("name must be at most %d characters", PlayerNameMaxLen),
		})
		return
	}

	result, err := h.dispatcher.Handle(r.Context(), &engine.Action{
		ID:      uuid.NewString(),
		GameID:  gameID,
		Type:    engine.ActionJoinGame,
		Payload: &engine.JoinGamePayload{Name: req.Name},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(gameID, result.Player.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinGameResponse{
		PlayerID: result.Player.ID,
		Name:     result.Player.Name,
		Secret:   result.Secret,
		Token:    token,
	})
}

type tokenRequest struct {
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// IssueToken handles POST /api/games/{game_id}/players/{player_id}/token
//
// @Summary      Issue session token
// @Description  Exchange the player's secret for a fresh session token, e.g. after a reconnect.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        game_id    path      string        true  "Game ID"
// @Param        player_id  path      string        true  "Player ID"
// @Param        body       body      tokenRequest  true  "Request body"
// @Success      200        {object}  tokenResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /api/games/{game_id}/players/{player_id}/token [post]
func (h *GameHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	playerID := chi.URLParam(r, "player_id")

	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil || req.Secret == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "secret is required"})
		return
	}

	player, err := h.store.GetPlayer(r.Context(), gameID, playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !auth.CheckSecret(player.SecretHash, req.Secret) {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	token, err := h.tokens.Issue(gameID, playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type eventsResponse struct {
	Events []*store.Event `json:"events"`
}

// ListEvents handles GET /api/games/{game_id}/events
//
// @Summary      List events
// @Description  The game's event history as visible to the authenticated player: broadcasts plus the events addressed to them. Lets a reconnecting client catch up before resuming on the websocket.
// @Tags         games
// @Produce      json
// @Param        game_id  path      string  true  "Game ID"
// @Security     BearerAuth
// @Success      200  {object}  eventsResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/games/{game_id}/events [get]
func (h *GameHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	claims := ClaimsFromRequest(r)
	if claims == nil || claims.GameID != gameID {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	if _, err := h.store.GetGame(r.Context(), gameID); err != nil {
		writeError(w, r, err)
		return
	}
	events, err := h.store.GetEventsVisibleTo(r.Context(), gameID, claims.PlayerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*store.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}
