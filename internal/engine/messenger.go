package engine

import (
	"context"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// Messenger delivers persisted events to connected clients. Broadcast
// reaches every connection of the event's game; Notify reaches one player.
// Delivery failures are the messenger's problem: they are logged per
// connection and never fail the action.
type Messenger interface {
	Broadcast(ctx context.Context, event *store.Event) error
	Notify(ctx context.Context, playerID string, event *store.Event) error
}
