package engine

import (
	"context"
	"fmt"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// GameService handles game start, the assassination phase, and game end.
type GameService struct {
	store   Store
	events  *EventService
	players *PlayerService
}

// NewGameService creates a GameService.
func NewGameService(st Store, events *EventService, players *PlayerService) *GameService {
	return &GameService{store: st, events: events, players: players}
}

// HandleStartGame validates the roster, assigns roles, fixes the rotation
// order, and flips the game to InProgress.
func (s *GameService) HandleStartGame(ctx context.Context, game *store.Game, payload *StartGamePayload) error {
	if game.Status != store.StatusNotStarted {
		return fmt.Errorf("game %s is %s: %w", game.ID, game.Status, ErrConflict)
	}
	if len(payload.PlayerIDs) == 0 {
		return fmt.Errorf("player_ids is required: %w", ErrInvalid)
	}

	players, err := s.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return err
	}
	if len(players) != len(payload.PlayerIDs) {
		return fmt.Errorf("player_ids does not match joined players: %w", ErrInvalid)
	}
	joined := make(map[string]bool, len(players))
	for _, player := range players {
		joined[player.ID] = true
	}
	for _, id := range payload.PlayerIDs {
		if !joined[id] {
			return fmt.Errorf("unknown player %s in player_ids: %w", id, ErrInvalid)
		}
	}

	config, err := DefaultConfig(len(players))
	if err != nil {
		return err
	}
	if len(payload.Roles) > 0 {
		config.Roles = payload.Roles
	}
	if len(payload.KnownRoles) > 0 {
		config.KnownRoles = payload.KnownRoles
	}
	if payload.AssassinationAttempts != nil {
		config.AssassinationAttempts = *payload.AssassinationAttempts
	}

	assigned, err := s.players.AssignRoles(ctx, game.ID, config.Roles, config.KnownRoles)
	if err != nil {
		return err
	}

	game.Config = config
	game.PlayerIDs = payload.PlayerIDs
	game.Status = store.StatusInProgress
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return err
	}

	return s.events.GameStarted(ctx, game.ID, assigned)
}

// OnEnterEndGame starts the assassination phase, or ends the game outright
// when no attempts remain. Errors if the game does not have exactly one
// assassin.
func (s *GameService) OnEnterEndGame(ctx context.Context, game *store.Game) error {
	attempts := s.remainingAttempts(game)
	if attempts == 0 {
		if game.Result == "" {
			game.Result = store.ResultGoodWon
		}
		return s.HandleGameEnded(ctx, game)
	}

	players, err := s.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return err
	}
	var assassin *store.Player
	count := 0
	for _, player := range players {
		if player.Role == store.RoleAssassin {
			assassin = player
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("game %s has %d assassins, want 1: %w", game.ID, count, ErrConflict)
	}

	if err := s.events.AssassinationStarted(ctx, game.ID, attempts); err != nil {
		return err
	}
	return s.events.AssassinationTargetRequested(ctx, game.ID, assassin.ID)
}

// HandleSubmitAssassinationTarget resolves one assassination attempt.
// Hitting Merlin ends the game for Evil; a miss with no attempts left ends
// it for Good. Returns whether the game finished.
func (s *GameService) HandleSubmitAssassinationTarget(ctx context.Context, game *store.Game, payload *SubmitAssassinationTargetPayload) (bool, error) {
	if payload.TargetID == "" {
		return false, fmt.Errorf("target_id is required: %w", ErrInvalid)
	}
	target, err := s.store.GetPlayer(ctx, game.ID, payload.TargetID)
	if err != nil {
		return false, err
	}

	attempts := s.remainingAttempts(game)
	if attempts <= 0 {
		return false, fmt.Errorf("no assassination attempts left: %w", ErrConflict)
	}
	attempts--
	game.AssassinationAttempts = &attempts
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return false, err
	}

	successful := target.Role == store.RoleMerlin
	if err := s.events.AssassinationResolved(ctx, game.ID, target.ID, successful); err != nil {
		return false, err
	}

	if successful {
		game.Result = store.ResultEvilWon
		return true, s.HandleGameEnded(ctx, game)
	}
	if attempts == 0 {
		game.Result = store.ResultGoodWon
		return true, s.HandleGameEnded(ctx, game)
	}
	return false, nil
}

// HandleGameEnded finishes the game and reveals every role.
func (s *GameService) HandleGameEnded(ctx context.Context, game *store.Game) error {
	game.Status = store.StatusFinished
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return err
	}

	players, err := s.store.GetPlayers(ctx, game.ID)
	if err != nil {
		return err
	}
	roles := make(map[string]string, len(players))
	for _, player := range players {
		roles[player.ID] = string(player.Role)
	}
	return s.events.GameEnded(ctx, game.ID, roles)
}

func (s *GameService) remainingAttempts(game *store.Game) int {
	if game.AssassinationAttempts != nil {
		return *game.AssassinationAttempts
	}
	return game.Config.AssassinationAttempts
}
