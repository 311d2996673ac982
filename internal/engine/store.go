package engine

import (
	"context"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// Store is the record store surface the engine depends on, implemented by
// *store.Store and by the in-memory fake in tests.
type Store interface {
	GetGame(ctx context.Context, gameID string) (*store.Game, error)
	UpdateGame(ctx context.Context, game *store.Game) error
	UpdateGameState(ctx context.Context, gameID string, state store.StateName) error

	CreatePlayer(ctx context.Context, req store.CreatePlayerRequest) (*store.Player, error)
	GetPlayer(ctx context.Context, gameID, playerID string) (*store.Player, error)
	GetPlayers(ctx context.Context, gameID string) ([]*store.Player, error)
	UpdatePlayer(ctx context.Context, player *store.Player) error

	CreateQuest(ctx context.Context, gameID string, questNumber int) (*store.Quest, error)
	GetQuest(ctx context.Context, gameID string, questNumber int) (*store.Quest, error)
	GetQuests(ctx context.Context, gameID string) ([]*store.Quest, error)
	UpdateQuest(ctx context.Context, quest *store.Quest) error

	CreateRound(ctx context.Context, req store.CreateRoundRequest) (*store.Round, error)
	GetRound(ctx context.Context, gameID string, questNumber, roundNumber int) (*store.Round, error)
	GetCurrentRound(ctx context.Context, gameID string, questNumber int) (*store.Round, error)
	UpdateRound(ctx context.Context, round *store.Round) error

	CreateRoundVote(ctx context.Context, vote *store.RoundVote) error
	GetRoundVotes(ctx context.Context, gameID string, questNumber, roundNumber int) ([]*store.RoundVote, error)
	CreateQuestVote(ctx context.Context, vote *store.QuestVote) error
	GetQuestVotes(ctx context.Context, gameID string, questNumber int) ([]*store.QuestVote, error)

	CreateEvent(ctx context.Context, event *store.Event) error
}
