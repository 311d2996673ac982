package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreatePlayerRequest contains the data needed to add a player to a game.
type CreatePlayerRequest struct {
	GameID     string
	Name       string
	SecretHash string
}

// CreatePlayer inserts a new player for a game.
func (s *Store) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*Player, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO players (id, game_id, name, secret_hash, known_player_ids)
		VALUES ($1, $2, $3, $4, '{}')
		RETURNING id, game_id, name, secret_hash, role, known_player_ids, created_at`,
		uuid.NewString(), req.GameID, req.Name, req.SecretHash)

	player, err := scanPlayer(row)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}

// GetPlayer returns the player by game and id, or ErrNotFound.
func (s *Store) GetPlayer(ctx context.Context, gameID, playerID string) (*Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, game_id, name, secret_hash, role, known_player_ids, created_at
		FROM players WHERE game_id = $1 AND id = $2`, gameID, playerID)

	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get player %s: %w", playerID, ErrNotFound)
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return player, nil
}

// GetPlayers returns all players of a game ordered by join time.
func (s *Store) GetPlayers(ctx context.Context, gameID string) ([]*Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, name, secret_hash, role, known_player_ids, created_at
		FROM players WHERE game_id = $1 ORDER BY created_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	defer rows.Close()

	var players []*Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	return players, nil
}

// UpdatePlayer persists the player's role and known player ids.
func (s *Store) UpdatePlayer(ctx context.Context, player *Player) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE players SET role = $3, known_player_ids = $4
		WHERE game_id = $1 AND id = $2`,
		player.GameID, player.ID, stringToText(string(player.Role)), player.KnownPlayerIDs)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update player %s: %w", player.ID, ErrNotFound)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*Player, error) {
	var (
		player Player
		role   pgtype.Text
	)
	err := row.Scan(&player.ID, &player.GameID, &player.Name, &player.SecretHash,
		&role, &player.KnownPlayerIDs, &player.CreatedAt)
	if err != nil {
		return nil, err
	}
	player.Role = Role(textToString(role))
	return &player, nil
}
