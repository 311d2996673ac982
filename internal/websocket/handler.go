package websocket

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/metrics"
	"github.com/roundtable-games/avalon-server/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect cross-origin; auth is the token, not the origin.
		return true
	},
}

// ConnectionStore records which connection currently belongs to a player.
type ConnectionStore interface {
	GetPlayer(ctx context.Context, gameID, playerID string) (*store.Player, error)
	UpsertConnection(ctx context.Context, conn *store.Connection) error
	DeleteConnection(ctx context.Context, gameID, playerID, connectionID string) error
}

// Handler upgrades authenticated players to a websocket connection.
type Handler struct {
	hub        *Hub
	store      ConnectionStore
	dispatcher ActionDispatcher
	tokens     *auth.TokenManager
	logger     zerolog.Logger
}

// NewHandler creates a websocket Handler.
func NewHandler(hub *Hub, st ConnectionStore, dispatcher ActionDispatcher, tokens *auth.TokenManager, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		store:      st,
		dispatcher: dispatcher,
		tokens:     tokens,
		logger:     logger,
	}
}

// ServeWS handles GET /api/games/{game_id}/ws?token=... It verifies the
// session token, records the connection (replacing any previous one for the
// player), and starts the pumps.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	token := r.URL.Query().Get("token")
	if gameID == "" || token == "" {
		http.Error(w, "game_id and token are required", http.StatusBadRequest)
		return
	}

	claims, err := h.tokens.Verify(token)
	if err != nil || claims.GameID != gameID {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if _, err := h.store.GetPlayer(r.Context(), gameID, claims.PlayerID); err != nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}

	connectionID := uuid.NewString()
	if err := h.store.UpsertConnection(r.Context(), &store.Connection{
		GameID:       gameID,
		PlayerID:     claims.PlayerID,
		ConnectionID: connectionID,
	}); err != nil {
		h.logger.Error().Err(err).Str("game_id", gameID).Msg("record connection")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	client := &Client{
		hub:          h.hub,
		conn:         conn,
		dispatcher:   h.dispatcher,
		logger:       h.logger,
		send:         make(chan *ServerFrame, 256),
		GameID:       gameID,
		PlayerID:     claims.PlayerID,
		ConnectionID: connectionID,
		ctx:          context.Background(),
	}
	h.hub.register <- client
	metrics.ConnectionsActive.Inc()

	go client.writePump()
	go func() {
		defer metrics.ConnectionsActive.Dec()
		client.readPump()
		if err := h.store.DeleteConnection(context.Background(), gameID, claims.PlayerID, connectionID); err != nil {
			h.logger.Warn().Err(err).Str("game_id", gameID).Msg("delete connection")
		}
	}()
}
