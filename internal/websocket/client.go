package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roundtable-games/avalon-server/internal/engine"
	"github.com/roundtable-games/avalon-server/internal/store"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// ActionDispatcher applies a decoded action; implemented by the engine's
// StateMachine.
type ActionDispatcher interface {
	Handle(ctx context.Context, action *engine.Action) (*engine.Result, error)
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	dispatcher ActionDispatcher
	logger     zerolog.Logger

	// Buffered channel of outbound frames. All sends and the close go
	// through trySend/closeSend: the hub closes the channel on unregister
	// while broadcasts may still hold a stale snapshot of this client.
	send   chan *ServerFrame
	sendMu sync.Mutex
	closed bool

	GameID       string
	PlayerID     string
	ConnectionID string

	// Background context: action handling is not tied to the HTTP request
	// lifecycle, which ends after the upgrade.
	ctx context.Context
}

// readPump reads action frames from the connection, dispatches them, and
// reports rejections back on the socket as error frames.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("game_id", c.GameID).Str("player_id", c.PlayerID).
					Msg("websocket read error")
			}
			break
		}

		var frame ActionFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.sendError("malformed frame")
			continue
		}
		c.handleAction(&frame)
	}
}

func (c *Client) handleAction(frame *ActionFrame) {
	action, err := engine.DecodeAction(uuid.NewString(), c.GameID, c.PlayerID,
		engine.ActionType(frame.ActionType), frame.Payload)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if _, err := c.dispatcher.Handle(c.ctx, action); err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalid), errors.Is(err, engine.ErrConflict),
			errors.Is(err, store.ErrNotFound):
			c.sendError(err.Error())
		default:
			c.logger.Error().Err(err).Str("game_id", c.GameID).
				Str("action", frame.ActionType).Msg("action dispatch failed")
			c.sendError("internal error")
		}
	}
}

func (c *Client) sendError(message string) {
	c.trySend(errorFrame(message))
}

// trySend queues a frame without blocking. Returns false when the client has
// been unregistered or its buffer is full.
func (c *Client) trySend(frame *ServerFrame) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once. Only the hub calls
// this, on unregister.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump writes queued frames to the connection and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := json.NewEncoder(w).Encode(frame); err != nil {
				c.logger.Warn().Err(err).Msg("encode outbound frame")
			}

			// Drain queued frames into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := json.NewEncoder(w).Encode(<-c.send); err != nil {
					c.logger.Warn().Err(err).Msg("encode queued frame")
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
