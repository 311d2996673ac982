package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateGame inserts a new game in GAME_SETUP with the given config.
func (s *Store) CreateGame(ctx context.Context, config GameConfig) (*Game, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO games (id, status, state, config_json, player_ids)
		VALUES ($1, $2, $3, $4, '{}')
		RETURNING id, status, state, config_json, player_ids, leader_id,
		          assassination_attempts, result, created_at, updated_at`,
		uuid.NewString(), StatusNotStarted, StateGameSetup, configJSON)

	game, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return game, nil
}

// GetGame returns the game by id, or ErrNotFound.
func (s *Store) GetGame(ctx context.Context, gameID string) (*Game, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, status, state, config_json, player_ids, leader_id,
		       assassination_attempts, result, created_at, updated_at
		FROM games WHERE id = $1`, gameID)

	game, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get game %s: %w", gameID, ErrNotFound)
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// UpdateGame persists all mutable game fields except state, which is written
// separately as the final step of a dispatch (see UpdateGameState).
func (s *Store) UpdateGame(ctx context.Context, game *Game) error {
	var attempts pgtype.Int4
	if game.AssassinationAttempts != nil {
		attempts = pgtype.Int4{Int32: int32(*game.AssassinationAttempts), Valid: true}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE games
		SET status = $2, player_ids = $3, leader_id = $4,
		    assassination_attempts = $5, result = $6, updated_at = now()
		WHERE id = $1`,
		game.ID, game.Status, game.PlayerIDs, stringToText(game.LeaderID),
		attempts, stringToText(string(game.Result)))
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update game %s: %w", game.ID, ErrNotFound)
	}
	return nil
}

// UpdateGameState persists only the state column.
func (s *Store) UpdateGameState(ctx context.Context, gameID string, state StateName) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE games SET state = $2, updated_at = now() WHERE id = $1`,
		gameID, state)
	if err != nil {
		return fmt.Errorf("update game state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update game state %s: %w", gameID, ErrNotFound)
	}
	return nil
}

func scanGame(row pgx.Row) (*Game, error) {
	var (
		game       Game
		configJSON []byte
		leaderID   pgtype.Text
		attempts   pgtype.Int4
		result     pgtype.Text
	)
	err := row.Scan(&game.ID, &game.Status, &game.State, &configJSON,
		&game.PlayerIDs, &leaderID, &attempts, &result,
		&game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(configJSON, &game.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	game.LeaderID = textToString(leaderID)
	if attempts.Valid {
		n := int(attempts.Int32)
		game.AssassinationAttempts = &n
	}
	game.Result = GameResult(textToString(result))
	return &game, nil
}
