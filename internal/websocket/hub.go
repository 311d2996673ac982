package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// broadcastConcurrency caps parallel deliveries per fan-out.
const broadcastConcurrency = 16

// Hub maintains the set of active clients per game and fans events out to
// them. It implements the engine's Messenger: Broadcast reaches every
// connection of a game, Notify reaches one player's connections. A slow
// client whose send buffer is full is dropped rather than blocking the
// fan-out.
type Hub struct {
	// Registered clients by game_id -> client set
	games map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	logger zerolog.Logger
	mu     sync.RWMutex
}

// NewHub creates a Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub's registration loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.games[client.GameID] == nil {
				h.games[client.GameID] = make(map[*Client]bool)
			}
			h.games[client.GameID][client] = true
			total := len(h.games[client.GameID])
			h.mu.Unlock()
			h.logger.Info().Str("game_id", client.GameID).Str("player_id", client.PlayerID).
				Int("total", total).Msg("ws client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if game, ok := h.games[client.GameID]; ok {
				if _, ok := game[client]; ok {
					delete(game, client)
					client.closeSend()
					if len(game) == 0 {
						delete(h.games, client.GameID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info().Str("game_id", client.GameID).Str("player_id", client.PlayerID).
				Msg("ws client unregistered")
		}
	}
}

// Broadcast delivers the event to every connection of its game, in parallel
// with bounded concurrency, and waits for completion. Per-connection
// failures are logged and dropped.
func (h *Hub) Broadcast(ctx context.Context, event *store.Event) error {
	return h.deliver(ctx, event, h.clientsOf(event.GameID))
}

// Notify delivers the event to the player's connections only.
func (h *Hub) Notify(ctx context.Context, playerID string, event *store.Event) error {
	var targets []*Client
	for _, client := range h.clientsOf(event.GameID) {
		if client.PlayerID == playerID {
			targets = append(targets, client)
		}
	}
	return h.deliver(ctx, event, targets)
}

func (h *Hub) clientsOf(gameID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.games[gameID]))
	for client := range h.games[gameID] {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) deliver(_ context.Context, event *store.Event, clients []*Client) error {
	if len(clients) == 0 {
		return nil
	}
	frame := eventFrame(event)
	var group errgroup.Group
	group.SetLimit(broadcastConcurrency)
	for _, client := range clients {
		client := client
		group.Go(func() error {
			if !client.trySend(frame) {
				h.logger.Warn().Str("game_id", client.GameID).Str("player_id", client.PlayerID).
					Str("type", event.Type).Msg("client unavailable, dropping frame")
			}
			return nil
		})
	}
	return group.Wait()
}

// ClientCount returns the number of connections for a game.
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
