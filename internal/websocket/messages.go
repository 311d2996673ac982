package websocket

import (
	"encoding/json"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// ActionFrame is the envelope for messages from client to server: one game
// action per frame.
type ActionFrame struct {
	ActionType string          `json:"action_type"`
	Payload    json.RawMessage `json:"payload"`
}

// ServerFrame is the envelope for messages from server to client.
// Type is "event" or "error".
type ServerFrame struct {
	Type  string       `json:"type"`
	Event *store.Event `json:"event,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Server frame types.
const (
	FrameTypeEvent = "event"
	FrameTypeError = "error"
)

func eventFrame(event *store.Event) *ServerFrame {
	return &ServerFrame{Type: FrameTypeEvent, Event: event}
}

func errorFrame(message string) *ServerFrame {
	return &ServerFrame{Type: FrameTypeError, Error: message}
}
