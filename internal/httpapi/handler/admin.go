package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// AdminHandler handles the game-master endpoints that create and drive games.
type AdminHandler struct {
	store      GameStore
	dispatcher ActionDispatcher
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(st GameStore, dispatcher ActionDispatcher) *AdminHandler {
	return &AdminHandler{store: st, dispatcher: dispatcher}
}

// gameResponse is the admin view of a game: the full record plus the joined
// players (with roles once assigned).
type gameResponse struct {
	Game    *store.Game     `json:"game"`
	Players []*store.Player `json:"players"`
}

// CreateGame handles POST /api/admin/games
//
// @Summary      Create game
// @Description  Create a new game lobby. Rule configuration is resolved when the game starts.
// @Tags         admin
// @Produce      json
// @Success      201  {object}  gameResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/games [post]
func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.store.CreateGame(r.Context(), store.GameConfig{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameResponse{Game: game, Players: []*store.Player{}})
}

// GetGame handles GET /api/admin/games/{game_id}
//
// @Summary      Get game
// @Description  Full game record including player roles. Not for player clients.
// @Tags         admin
// @Produce      json
// @Param        game_id  path      string  true  "Game ID"
// @Success      200      {object}  gameResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/admin/games/{game_id} [get]
func (h *AdminHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	game, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	players, err := h.store.GetPlayers(r.Context(), gameID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{Game: game, Players: players})
}

// StartGame handles POST /api/admin/games/{game_id}/start
//
// @Summary      Start game
// @Description  Locks the roster, assigns roles, and moves the game to team selection. The body may override player order, roles, and assassination attempts; omitted fields fall back to the defaults for the player count.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        game_id  path      string                   true   "Game ID"
// @Param        body     body      engine.StartGamePayload  false  "Overrides"
// @Success      200      {object}  gameResponse
// @Failure      400      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /api/admin/games/{game_id}/start [post]
func (h *AdminHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")

	var payload engine.StartGamePayload
	if err := decodeJSON(r, &payload); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(payload.PlayerIDs) == 0 {
		players, err := h.store.GetPlayers(r.Context(), gameID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, player := range players {
			payload.PlayerIDs = append(payload.PlayerIDs, player.ID)
		}
	}

	result, err := h.dispatcher.Handle(r.Context(), &engine.Action{
		ID:      uuid.NewString(),
		GameID:  gameID,
		Type:    engine.ActionStartGame,
		Payload: &payload,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	players, err := h.store.GetPlayers(r.Context(), gameID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{Game: result.Game, Players: players})
}
