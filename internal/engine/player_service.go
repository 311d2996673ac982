package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/roundtable-games/avalon-server/internal/auth"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// PlayerService handles joining and role assignment.
type PlayerService struct {
	store  Store
	events *EventService
	rng    *rand.Rand
}

// NewPlayerService creates a PlayerService. rng drives the role shuffle and
// may be seeded for deterministic tests.
func NewPlayerService(st Store, events *EventService, rng *rand.Rand) *PlayerService {
	return &PlayerService{store: st, events: events, rng: rng}
}

// HandleJoinGame adds a player to a not-yet-started game. It returns the
// created player and the plaintext secret, which is shown to the caller once
// and stored only as a hash.
func (s *PlayerService) HandleJoinGame(ctx context.Context, game *store.Game, payload *JoinGamePayload) (*store.Player, string, error) {
	if payload.Name == "" {
		return nil, "", fmt.Errorf("player name is required: %w", ErrInvalid)
	}
	if game.Status != store.StatusNotStarted {
		return nil, "", fmt.Errorf("game %s already started: %w", game.ID, ErrConflict)
	}

	secret, err := auth.GenerateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, "", err
	}

	player, err := s.store.CreatePlayer(ctx, store.CreatePlayerRequest{
		GameID:     game.ID,
		Name:       payload.Name,
		SecretHash: hash,
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.events.PlayerJoined(ctx, game.ID, player.ID, player.Name); err != nil {
		return nil, "", err
	}
	return player, secret, nil
}

// AssignRoles shuffles the game's players and deals roles exactly once at
// game start. Players past the end of the role list become Villagers. Each
// player's known_player_ids is every other player whose role their own role
// may see.
func (s *PlayerService) AssignRoles(ctx context.Context, gameID string, roles []store.Role, knownRoles map[store.Role][]store.Role) ([]*store.Player, error) {
	players, err := s.store.GetPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.rng.Shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})

	for i, player := range players {
		if i < len(roles) {
			player.Role = roles[i]
		} else {
			player.Role = store.RoleVillager
		}
	}

	for _, player := range players {
		visible := knownRoles[player.Role]
		player.KnownPlayerIDs = []string{}
		for _, other := range players {
			if other.ID == player.ID {
				continue
			}
			for _, role := range visible {
				if other.Role == role {
					player.KnownPlayerIDs = append(player.KnownPlayerIDs, other.ID)
					break
				}
			}
		}
		if err := s.store.UpdatePlayer(ctx, player); err != nil {
			return nil, err
		}
	}
	return players, nil
}
