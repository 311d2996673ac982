package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// QuestService handles the quest lifecycle: creation, quest-vote tallying
// with the fifth-quest tolerance rule, and majority detection.
type QuestService struct {
	store  Store
	events *EventService
	rounds *RoundService
}

// NewQuestService creates a QuestService.
func NewQuestService(st Store, events *EventService, rounds *RoundService) *QuestService {
	return &QuestService{store: st, events: events, rounds: rounds}
}

// OnEnterTeamSelection runs when the game enters team selection. If the open
// quest just burned its fifth round, the quest is marked failed; when that
// yields a majority the returned state fast-forwards the machine to end
// game. Otherwise it ensures a live quest and opens a fresh round.
func (s *QuestService) OnEnterTeamSelection(ctx context.Context, game *store.Game) (store.StateName, error) {
	last, err := s.lastQuest(ctx, game.ID)
	if err != nil {
		return "", err
	}

	if last != nil && !last.Completed() {
		failed, err := s.failOnExhaustedRounds(ctx, game, last)
		if err != nil {
			return "", err
		}
		if failed {
			majority, err := s.HasMajority(ctx, game.ID)
			if err != nil {
				return "", err
			}
			if majority {
				return store.StateEndGame, nil
			}
		}
	}

	if last == nil || last.Completed() {
		questNumber := 1
		if last != nil {
			questNumber = last.QuestNumber + 1
		}
		quest, err := s.store.CreateQuest(ctx, game.ID, questNumber)
		if err != nil {
			return "", err
		}
		if err := s.events.QuestStarted(ctx, game.ID, quest.QuestNumber); err != nil {
			return "", err
		}
		last = quest
	}

	if _, err := s.rounds.CreateRound(ctx, game, last.QuestNumber); err != nil {
		return "", err
	}
	return "", nil
}

// failOnExhaustedRounds marks the quest failed when its final round was
// voted down, and reports whether it did.
func (s *QuestService) failOnExhaustedRounds(ctx context.Context, game *store.Game, quest *store.Quest) (bool, error) {
	round, err := s.store.GetCurrentRound(ctx, game.ID, quest.QuestNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if round.RoundNumber < game.Config.MaxRound || round.Result != store.VoteFail {
		return false, nil
	}

	quest.Result = store.VoteFail
	if err := s.store.UpdateQuest(ctx, quest); err != nil {
		return false, err
	}
	if err := s.events.QuestCompleted(ctx, game.ID, quest.QuestNumber, store.VoteFail); err != nil {
		return false, err
	}
	return true, nil
}

// OnEnterQuestVoting announces the quest vote and privately asks each team
// member to cast theirs.
func (s *QuestService) OnEnterQuestVoting(ctx context.Context, game *store.Game) error {
	quest, err := s.lastQuest(ctx, game.ID)
	if err != nil {
		return err
	}
	if quest == nil {
		return fmt.Errorf("game %s has no quest: %w", game.ID, store.ErrNotFound)
	}
	if err := s.events.QuestVoteStarted(ctx, game.ID, quest.QuestNumber, quest.TeamMemberIDs); err != nil {
		return err
	}
	return s.events.QuestVoteRequested(ctx, game.ID, quest.QuestNumber, quest.TeamMemberIDs)
}

// HandleCastQuestVote records one team member's vote and, once the whole
// team has voted, completes the quest. A quest passes iff the number of Fail
// votes is within tolerance: zero, except the fifth quest of a ten-player
// game which tolerates one. Returns whether the quest completed and whether
// a majority now exists.
func (s *QuestService) HandleCastQuestVote(ctx context.Context, game *store.Game, payload *CastQuestVotePayload) (completed, majority bool, err error) {
	if payload.IsApproved == nil || payload.PlayerID == "" {
		return false, false, fmt.Errorf("quest vote payload incomplete: %w", ErrInvalid)
	}
	quest, err := s.store.GetQuest(ctx, game.ID, payload.QuestNumber)
	if err != nil {
		return false, false, err
	}
	if quest.Completed() {
		return false, false, fmt.Errorf("quest %d already completed: %w", payload.QuestNumber, ErrInvalid)
	}

	onTeam := false
	for _, id := range quest.TeamMemberIDs {
		if id == payload.PlayerID {
			onTeam = true
			break
		}
	}
	if !onTeam {
		return false, false, fmt.Errorf("player %s is not on the quest team: %w", payload.PlayerID, ErrInvalid)
	}

	votes, err := s.store.GetQuestVotes(ctx, game.ID, payload.QuestNumber)
	if err != nil {
		return false, false, err
	}
	for _, vote := range votes {
		if vote.PlayerID == payload.PlayerID {
			return false, false, fmt.Errorf("player %s already voted: %w", payload.PlayerID, ErrInvalid)
		}
	}

	result := store.VoteFail
	if *payload.IsApproved {
		result = store.VotePass
	}
	vote := &store.QuestVote{
		GameID:      game.ID,
		QuestNumber: payload.QuestNumber,
		PlayerID:    payload.PlayerID,
		Result:      result,
	}
	if err := s.store.CreateQuestVote(ctx, vote); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, false, fmt.Errorf("player %s already voted: %w", payload.PlayerID, ErrInvalid)
		}
		return false, false, err
	}
	if err := s.events.QuestVoteCast(ctx, game.ID, payload.QuestNumber, payload.PlayerID, result); err != nil {
		return false, false, err
	}

	votes = append(votes, vote)
	if len(votes) < len(quest.TeamMemberIDs) {
		return false, false, nil
	}

	fails := 0
	for _, v := range votes {
		if v.Result == store.VoteFail {
			fails++
		}
	}
	tolerance := 0
	if payload.QuestNumber == 5 && len(game.PlayerIDs) == 10 {
		tolerance = 1
	}
	outcome := store.VoteFail
	if fails <= tolerance {
		outcome = store.VotePass
	}

	quest.Result = outcome
	if err := s.store.UpdateQuest(ctx, quest); err != nil {
		return false, false, err
	}
	if err := s.events.QuestCompleted(ctx, game.ID, payload.QuestNumber, outcome); err != nil {
		return false, false, err
	}

	majority, err = s.HasMajority(ctx, game.ID)
	if err != nil {
		return false, false, err
	}
	return true, majority, nil
}

// HasMajority reports whether three quests share an outcome.
func (s *QuestService) HasMajority(ctx context.Context, gameID string) (bool, error) {
	quests, err := s.store.GetQuests(ctx, gameID)
	if err != nil {
		return false, err
	}
	passed, failed := 0, 0
	for _, quest := range quests {
		switch quest.Result {
		case store.VotePass:
			passed++
		case store.VoteFail:
			failed++
		}
	}
	return passed >= 3 || failed >= 3, nil
}

func (s *QuestService) lastQuest(ctx context.Context, gameID string) (*store.Quest, error) {
	quests, err := s.store.GetQuests(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(quests) == 0 {
		return nil, nil
	}
	return quests[len(quests)-1], nil
}
