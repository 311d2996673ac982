package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertConnection records the player's current connection, replacing any
// previous one for the same (game, player).
func (s *Store) UpsertConnection(ctx context.Context, conn *Connection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO connections (game_id, player_id, connection_id, connected_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (game_id, player_id)
		DO UPDATE SET connection_id = EXCLUDED.connection_id, connected_at = now()`,
		conn.GameID, conn.PlayerID, conn.ConnectionID)
	if err != nil {
		return fmt.Errorf("upsert connection: %w", err)
	}
	return nil
}

// GetConnection returns the player's connection record, or ErrNotFound.
func (s *Store) GetConnection(ctx context.Context, gameID, playerID string) (*Connection, error) {
	var conn Connection
	err := s.pool.QueryRow(ctx, `
		SELECT game_id, player_id, connection_id, connected_at
		FROM connections WHERE game_id = $1 AND player_id = $2`,
		gameID, playerID).
		Scan(&conn.GameID, &conn.PlayerID, &conn.ConnectionID, &conn.ConnectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get connection %s: %w", playerID, ErrNotFound)
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return &conn, nil
}

// DeleteConnection removes the connection record if connectionID still owns
// it. A reconnect that already replaced the record is left alone.
func (s *Store) DeleteConnection(ctx context.Context, gameID, playerID, connectionID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM connections
		WHERE game_id = $1 AND player_id = $2 AND connection_id = $3`,
		gameID, playerID, connectionID)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}
