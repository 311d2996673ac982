package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu         sync.Mutex
	games      map[string]*store.Game
	players    map[string][]*store.Player
	quests     map[string][]*store.Quest
	rounds     map[string][]*store.Round
	roundVotes []*store.RoundVote
	questVotes []*store.QuestVote
	events     []*store.Event
}

func newMemStore() *memStore {
	return &memStore{
		games:   make(map[string]*store.Game),
		players: make(map[string][]*store.Player),
		quests:  make(map[string][]*store.Quest),
		rounds:  make(map[string][]*store.Round),
	}
}

// seedGame inserts a fresh game in GAME_SETUP.
func (s *memStore) seedGame(gameID string) *store.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	game := &store.Game{
		ID:     gameID,
		Status: store.StatusNotStarted,
		State:  store.StateGameSetup,
	}
	s.games[gameID] = game
	return copyGame(game)
}

func copyGame(g *store.Game) *store.Game {
	out := *g
	out.PlayerIDs = append([]string(nil), g.PlayerIDs...)
	if g.AssassinationAttempts != nil {
		n := *g.AssassinationAttempts
		out.AssassinationAttempts = &n
	}
	return &out
}

func copyPlayer(p *store.Player) *store.Player {
	out := *p
	out.KnownPlayerIDs = append([]string(nil), p.KnownPlayerIDs...)
	return &out
}

func copyQuest(q *store.Quest) *store.Quest {
	out := *q
	out.TeamMemberIDs = append([]string(nil), q.TeamMemberIDs...)
	return &out
}

func copyRound(r *store.Round) *store.Round {
	out := *r
	out.TeamMemberIDs = append([]string(nil), r.TeamMemberIDs...)
	return &out
}

func (s *memStore) GetGame(_ context.Context, gameID string) (*store.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyGame(game), nil
}

func (s *memStore) UpdateGame(_ context.Context, game *store.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.games[game.ID]
	if !ok {
		return store.ErrNotFound
	}
	updated := copyGame(game)
	updated.State = current.State
	s.games[game.ID] = updated
	return nil
}

func (s *memStore) UpdateGameState(_ context.Context, gameID string, state store.StateName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return store.ErrNotFound
	}
	game.State = state
	return nil
}

func (s *memStore) CreatePlayer(_ context.Context, req store.CreatePlayerRequest) (*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := &store.Player{
		ID:         fmt.Sprintf("player-%d", len(s.players[req.GameID])+1),
		GameID:     req.GameID,
		Name:       req.Name,
		SecretHash: req.SecretHash,
	}
	s.players[req.GameID] = append(s.players[req.GameID], player)
	return copyPlayer(player), nil
}

func (s *memStore) GetPlayer(_ context.Context, gameID, playerID string) (*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, player := range s.players[gameID] {
		if player.ID == playerID {
			return copyPlayer(player), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) GetPlayers(_ context.Context, gameID string) ([]*store.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Player, 0, len(s.players[gameID]))
	for _, player := range s.players[gameID] {
		out = append(out, copyPlayer(player))
	}
	return out, nil
}

func (s *memStore) UpdatePlayer(_ context.Context, player *store.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.players[player.GameID] {
		if existing.ID == player.ID {
			s.players[player.GameID][i] = copyPlayer(player)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) CreateQuest(_ context.Context, gameID string, questNumber int) (*store.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, quest := range s.quests[gameID] {
		if quest.QuestNumber == questNumber {
			return nil, store.ErrConflict
		}
	}
	quest := &store.Quest{GameID: gameID, QuestNumber: questNumber}
	s.quests[gameID] = append(s.quests[gameID], quest)
	return copyQuest(quest), nil
}

func (s *memStore) GetQuest(_ context.Context, gameID string, questNumber int) (*store.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, quest := range s.quests[gameID] {
		if quest.QuestNumber == questNumber {
			return copyQuest(quest), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) GetQuests(_ context.Context, gameID string) ([]*store.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Quest, 0, len(s.quests[gameID]))
	for _, quest := range s.quests[gameID] {
		out = append(out, copyQuest(quest))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestNumber < out[j].QuestNumber })
	return out, nil
}

func (s *memStore) UpdateQuest(_ context.Context, quest *store.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.quests[quest.GameID] {
		if existing.QuestNumber == quest.QuestNumber {
			s.quests[quest.GameID][i] = copyQuest(quest)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) CreateRound(_ context.Context, req store.CreateRoundRequest) (*store.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, round := range s.rounds[req.GameID] {
		if round.QuestNumber == req.QuestNumber && round.RoundNumber == req.RoundNumber {
			return nil, store.ErrConflict
		}
	}
	round := &store.Round{
		GameID:      req.GameID,
		QuestNumber: req.QuestNumber,
		RoundNumber: req.RoundNumber,
		LeaderID:    req.LeaderID,
	}
	s.rounds[req.GameID] = append(s.rounds[req.GameID], round)
	return copyRound(round), nil
}

func (s *memStore) GetRound(_ context.Context, gameID string, questNumber, roundNumber int) (*store.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, round := range s.rounds[gameID] {
		if round.QuestNumber == questNumber && round.RoundNumber == roundNumber {
			return copyRound(round), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memStore) GetCurrentRound(_ context.Context, gameID string, questNumber int) (*store.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var current *store.Round
	for _, round := range s.rounds[gameID] {
		if round.QuestNumber != questNumber {
			continue
		}
		if current == nil || round.RoundNumber > current.RoundNumber {
			current = round
		}
	}
	if current == nil {
		return nil, store.ErrNotFound
	}
	return copyRound(current), nil
}

func (s *memStore) UpdateRound(_ context.Context, round *store.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.rounds[round.GameID] {
		if existing.QuestNumber == round.QuestNumber && existing.RoundNumber == round.RoundNumber {
			s.rounds[round.GameID][i] = copyRound(round)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) CreateRoundVote(_ context.Context, vote *store.RoundVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roundVotes {
		if existing.GameID == vote.GameID && existing.QuestNumber == vote.QuestNumber &&
			existing.RoundNumber == vote.RoundNumber && existing.PlayerID == vote.PlayerID {
			return store.ErrConflict
		}
	}
	v := *vote
	s.roundVotes = append(s.roundVotes, &v)
	return nil
}

func (s *memStore) GetRoundVotes(_ context.Context, gameID string, questNumber, roundNumber int) ([]*store.RoundVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.RoundVote
	for _, vote := range s.roundVotes {
		if vote.GameID == gameID && vote.QuestNumber == questNumber && vote.RoundNumber == roundNumber {
			v := *vote
			out = append(out, &v)
		}
	}
	return out, nil
}

func (s *memStore) CreateQuestVote(_ context.Context, vote *store.QuestVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.questVotes {
		if existing.GameID == vote.GameID && existing.QuestNumber == vote.QuestNumber &&
			existing.PlayerID == vote.PlayerID {
			return store.ErrConflict
		}
	}
	v := *vote
	s.questVotes = append(s.questVotes, &v)
	return nil
}

func (s *memStore) GetQuestVotes(_ context.Context, gameID string, questNumber int) ([]*store.QuestVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.QuestVote
	for _, vote := range s.questVotes {
		if vote.GameID == gameID && vote.QuestNumber == questNumber {
			v := *vote
			out = append(out, &v)
		}
	}
	return out, nil
}

func (s *memStore) CreateEvent(_ context.Context, event *store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *event
	e.Recipients = append([]string(nil), event.Recipients...)
	s.events = append(s.events, &e)
	return nil
}

// eventsOfType returns persisted events of the given type, in append order.
func (s *memStore) eventsOfType(eventType string) []*store.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.Event
	for _, event := range s.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func (s *memStore) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// recordingMessenger captures dispatches for assertions.
type recordingMessenger struct {
	mu         sync.Mutex
	broadcasts []*store.Event
	notifies   map[string][]*store.Event
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{notifies: make(map[string][]*store.Event)}
}

func (m *recordingMessenger) Broadcast(_ context.Context, event *store.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, event)
	return nil
}

func (m *recordingMessenger) Notify(_ context.Context, playerID string, event *store.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifies[playerID] = append(m.notifies[playerID], event)
	return nil
}

func (m *recordingMessenger) notifiedTypes(playerID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, event := range m.notifies[playerID] {
		out = append(out, event.Type)
	}
	return out
}
