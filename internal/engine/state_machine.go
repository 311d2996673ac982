package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/roundtable-games/avalon-server/internal/metrics"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// Result is what a successful dispatch hands back to the transport layer.
// Player and Secret are set only for JoinGame.
type Result struct {
	Game   *store.Game
	Player *store.Player
	Secret string
}

type stateHandler func(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error)

// StateMachine dispatches actions against the persisted game record. It is
// a stateless façade over the store: the current state is read from the
// Game record at the start of each dispatch and the new state is written
// back as the final step. Concurrent actions for the same game are
// serialized with a per-game lock.
type StateMachine struct {
	store   Store
	events  *EventService
	players *PlayerService
	rounds  *RoundService
	quests  *QuestService
	games   *GameService
	logger  zerolog.Logger
	tracer  trace.Tracer

	handlers map[store.StateName]stateHandler

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStateMachine wires the services and builds the state table. rng seeds
// role assignment and may be fixed for deterministic tests.
func NewStateMachine(st Store, messenger Messenger, logger zerolog.Logger, rng *rand.Rand) *StateMachine {
	events := NewEventService(st, messenger, logger)
	players := NewPlayerService(st, events, rng)
	rounds := NewRoundService(st, events)
	quests := NewQuestService(st, events, rounds)
	games := NewGameService(st, events, players)

	m := &StateMachine{
		store:   st,
		events:  events,
		players: players,
		rounds:  rounds,
		quests:  quests,
		games:   games,
		logger:  logger,
		tracer:  otel.Tracer("engine"),
		locks:   make(map[string]*sync.Mutex),
	}
	m.handlers = map[store.StateName]stateHandler{
		store.StateGameSetup:     m.handleGameSetup,
		store.StateTeamSelection: m.handleTeamSelection,
		store.StateRoundVoting:   m.handleRoundVoting,
		store.StateQuestVoting:   m.handleQuestVoting,
		store.StateEndGame:       m.handleEndGame,
	}
	return m
}

// Handle dispatches one action: validate, apply through the owning state's
// handler, run the entered state's on-enter hook (applying at most one
// fast-forward), and persist the new state last.
func (m *StateMachine) Handle(ctx context.Context, action *Action) (*Result, error) {
	if action.Payload == nil {
		return nil, fmt.Errorf("action payload is missing: %w", ErrInvalid)
	}

	lock := m.gameLock(action.GameID)
	lock.Lock()
	defer lock.Unlock()

	ctx, span := m.tracer.Start(ctx, "engine.Handle",
		trace.WithAttributes(
			attribute.String("game.id", action.GameID),
			attribute.String("action.type", string(action.Type)),
		))
	defer span.End()

	result, err := m.dispatch(ctx, action)
	status := "ok"
	if err != nil {
		status = "error"
		m.logger.Debug().Err(err).Str("game_id", action.GameID).
			Str("action", string(action.Type)).Msg("action rejected")
	}
	metrics.ActionsTotal.WithLabelValues(string(action.Type), status).Inc()
	return result, err
}

func (m *StateMachine) dispatch(ctx context.Context, action *Action) (*Result, error) {
	game, err := m.store.GetGame(ctx, action.GameID)
	if err != nil {
		return nil, err
	}

	handler, ok := m.handlers[game.State]
	if !ok {
		return nil, fmt.Errorf("game %s in unknown state %s", game.ID, game.State)
	}

	next, result, err := handler(ctx, game, action)
	if err != nil {
		return nil, err
	}

	if next != game.State {
		next, err = m.enter(ctx, game, next)
		if err != nil {
			return nil, err
		}
	}
	if err := m.store.UpdateGameState(ctx, game.ID, next); err != nil {
		return nil, err
	}
	game.State = next

	if result == nil {
		result = &Result{}
	}
	result.Game = game

	m.logger.Info().Str("game_id", game.ID).Str("action", string(action.Type)).
		Str("state", string(next)).Msg("action applied")
	return result, nil
}

// enter runs the target state's on-enter hook and applies at most one
// fast-forward: if team selection redirects to end game, the end-game hook
// runs, but no further redirection is followed.
func (m *StateMachine) enter(ctx context.Context, game *store.Game, next store.StateName) (store.StateName, error) {
	switch next {
	case store.StateTeamSelection:
		forward, err := m.quests.OnEnterTeamSelection(ctx, game)
		if err != nil {
			return "", err
		}
		if forward != "" {
			if forward == store.StateEndGame {
				if err := m.games.OnEnterEndGame(ctx, game); err != nil {
					return "", err
				}
			}
			return forward, nil
		}
	case store.StateQuestVoting:
		if err := m.quests.OnEnterQuestVoting(ctx, game); err != nil {
			return "", err
		}
	case store.StateEndGame:
		if err := m.games.OnEnterEndGame(ctx, game); err != nil {
			return "", err
		}
	}
	return next, nil
}

func (m *StateMachine) handleGameSetup(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error) {
	switch action.Type {
	case ActionJoinGame:
		payload, ok := action.Payload.(*JoinGamePayload)
		if !ok {
			return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
		}
		player, secret, err := m.players.HandleJoinGame(ctx, game, payload)
		if err != nil {
			return "", nil, err
		}
		return store.StateGameSetup, &Result{Player: player, Secret: secret}, nil
	case ActionStartGame:
		payload, ok := action.Payload.(*StartGamePayload)
		if !ok {
			return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
		}
		if err := m.games.HandleStartGame(ctx, game, payload); err != nil {
			return "", nil, err
		}
		return store.StateTeamSelection, nil, nil
	default:
		return "", nil, rejectAction(game.State, action.Type)
	}
}

func (m *StateMachine) handleTeamSelection(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error) {
	if action.Type != ActionSubmitTeamProposal {
		return "", nil, rejectAction(game.State, action.Type)
	}
	payload, ok := action.Payload.(*SubmitTeamProposalPayload)
	if !ok {
		return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
	}
	if err := m.rounds.HandleSubmitTeamProposal(ctx, game, action.PlayerID, payload); err != nil {
		return "", nil, err
	}
	return store.StateRoundVoting, nil, nil
}

func (m *StateMachine) handleRoundVoting(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error) {
	if action.Type != ActionCastRoundVote {
		return "", nil, rejectAction(game.State, action.Type)
	}
	payload, ok := action.Payload.(*CastRoundVotePayload)
	if !ok {
		return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
	}
	completed, passed, err := m.rounds.HandleCastRoundVote(ctx, game, payload)
	if err != nil {
		return "", nil, err
	}
	switch {
	case !completed:
		return store.StateRoundVoting, nil, nil
	case passed:
		return store.StateQuestVoting, nil, nil
	default:
		return store.StateTeamSelection, nil, nil
	}
}

func (m *StateMachine) handleQuestVoting(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error) {
	if action.Type != ActionCastQuestVote {
		return "", nil, rejectAction(game.State, action.Type)
	}
	payload, ok := action.Payload.(*CastQuestVotePayload)
	if !ok {
		return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
	}
	completed, majority, err := m.quests.HandleCastQuestVote(ctx, game, payload)
	if err != nil {
		return "", nil, err
	}
	switch {
	case !completed:
		return store.StateQuestVoting, nil, nil
	case majority:
		return store.StateEndGame, nil, nil
	default:
		return store.StateTeamSelection, nil, nil
	}
}

func (m *StateMachine) handleEndGame(ctx context.Context, game *store.Game, action *Action) (store.StateName, *Result, error) {
	if action.Type != ActionSubmitAssassinationTarget {
		return "", nil, rejectAction(game.State, action.Type)
	}
	if game.Status == store.StatusFinished {
		return "", nil, fmt.Errorf("game %s is finished: %w", game.ID, ErrConflict)
	}
	payload, ok := action.Payload.(*SubmitAssassinationTargetPayload)
	if !ok {
		return "", nil, fmt.Errorf("wrong payload for %s: %w", action.Type, ErrInvalid)
	}
	if _, err := m.games.HandleSubmitAssassinationTarget(ctx, game, payload); err != nil {
		return "", nil, err
	}
	return store.StateEndGame, nil, nil
}

func rejectAction(state store.StateName, actionType ActionType) error {
	return fmt.Errorf("state %s does not accept %s: %w", state, actionType, ErrInvalid)
}

func (m *StateMachine) gameLock(gameID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[gameID] = lock
	}
	return lock
}
