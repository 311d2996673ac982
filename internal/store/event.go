package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// CreateEvent appends an event to the game's event log. The event's ID and
// Timestamp must already be set by the caller so that what is persisted
// matches what is dispatched.
func (s *Store) CreateEvent(ctx context.Context, event *Event) error {
	payloadJSON := []byte("{}")
	if len(event.Payload) > 0 {
		var err error
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	recipients := event.Recipients
	if recipients == nil {
		recipients = []string{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, game_id, type, recipients, payload_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.GameID, event.Type, recipients, payloadJSON, event.Timestamp)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEvents returns the game's events in append order.
func (s *Store) GetEvents(ctx context.Context, gameID string) ([]*Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, type, recipients, payload_json, created_at
		FROM events WHERE game_id = $1 ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			event       Event
			payloadJSON []byte
		)
		if err := rows.Scan(&event.ID, &event.GameID, &event.Type,
			&event.Recipients, &payloadJSON, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(payloadJSON, &event.Payload); err != nil {
			event.Payload = map[string]any{}
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return events, nil
}

// GetEventsVisibleTo returns the game's events the player may see: public
// events plus events addressed to them, in append order.
func (s *Store) GetEventsVisibleTo(ctx context.Context, gameID, playerID string) ([]*Event, error) {
	events, err := s.GetEvents(ctx, gameID)
	if err != nil {
		return nil, err
	}
	visible := make([]*Event, 0, len(events))
	for _, event := range events {
		if event.VisibleTo(playerID) {
			visible = append(visible, event)
		}
	}
	return visible, nil
}
