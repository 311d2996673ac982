package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// RoundService handles the round lifecycle: creation with leader rotation,
// team proposals, and round-vote tallying.
type RoundService struct {
	store  Store
	events *EventService
}

// NewRoundService creates a RoundService.
func NewRoundService(st Store, events *EventService) *RoundService {
	return &RoundService{store: st, events: events}
}

// CreateRound opens the next round of the quest, rotating the leader one
// position through player_ids (the first round of a game starts at
// player_ids[0]).
func (s *RoundService) CreateRound(ctx context.Context, game *store.Game, questNumber int) (*store.Round, error) {
	roundNumber := 1
	current, err := s.store.GetCurrentRound(ctx, game.ID, questNumber)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if current != nil {
		roundNumber = current.RoundNumber + 1
	}

	leaderID := s.nextLeader(game)
	game.LeaderID = leaderID
	if err := s.store.UpdateGame(ctx, game); err != nil {
		return nil, err
	}

	round, err := s.store.CreateRound(ctx, store.CreateRoundRequest{
		GameID:      game.ID,
		QuestNumber: questNumber,
		RoundNumber: roundNumber,
		LeaderID:    leaderID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.events.RoundStarted(ctx, game.ID, questNumber, roundNumber, leaderID); err != nil {
		return nil, err
	}
	teamSize := game.Config.QuestTeamSize[questNumber]
	if err := s.events.TeamSelectionRequested(ctx, game.ID, questNumber, roundNumber, teamSize); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *RoundService) nextLeader(game *store.Game) string {
	if len(game.PlayerIDs) == 0 {
		return ""
	}
	idx := -1
	for i, id := range game.PlayerIDs {
		if id == game.LeaderID {
			idx = i
			break
		}
	}
	return game.PlayerIDs[(idx+1)%len(game.PlayerIDs)]
}

// HandleSubmitTeamProposal records the leader's team on the current round.
func (s *RoundService) HandleSubmitTeamProposal(ctx context.Context, game *store.Game, actorID string, payload *SubmitTeamProposalPayload) error {
	round, err := s.store.GetRound(ctx, game.ID, payload.QuestNumber, payload.RoundNumber)
	if err != nil {
		return err
	}
	if round.Completed() {
		return fmt.Errorf("round %d/%d already completed: %w", payload.QuestNumber, payload.RoundNumber, ErrInvalid)
	}
	if actorID != round.LeaderID {
		return fmt.Errorf("player %s is not the leader: %w", actorID, ErrInvalid)
	}

	teamSize := game.Config.QuestTeamSize[payload.QuestNumber]
	if len(payload.TeamMemberIDs) != teamSize {
		return fmt.Errorf("team size %d, want %d: %w", len(payload.TeamMemberIDs), teamSize, ErrInvalid)
	}

	known := make(map[string]bool, len(game.PlayerIDs))
	for _, id := range game.PlayerIDs {
		known[id] = true
	}
	seen := make(map[string]bool, len(payload.TeamMemberIDs))
	for _, id := range payload.TeamMemberIDs {
		if !known[id] {
			return fmt.Errorf("unknown team member %s: %w", id, ErrInvalid)
		}
		if seen[id] {
			return fmt.Errorf("duplicate team member %s: %w", id, ErrInvalid)
		}
		seen[id] = true
	}

	round.TeamMemberIDs = payload.TeamMemberIDs
	if err := s.store.UpdateRound(ctx, round); err != nil {
		return err
	}
	return s.events.TeamProposalSubmitted(ctx, game.ID, payload.QuestNumber, payload.RoundNumber, payload.TeamMemberIDs)
}

// HandleCastRoundVote records one approval vote and, once every player has
// voted, completes the round. The proposal passes iff approvals form a
// strict majority. On a pass the approved team is copied onto the quest.
// Returns whether the round completed and whether it passed.
func (s *RoundService) HandleCastRoundVote(ctx context.Context, game *store.Game, payload *CastRoundVotePayload) (completed, passed bool, err error) {
	if payload.IsApproved == nil || payload.PlayerID == "" {
		return false, false, fmt.Errorf("round vote payload incomplete: %w", ErrInvalid)
	}
	if _, err := s.store.GetPlayer(ctx, game.ID, payload.PlayerID); err != nil {
		return false, false, err
	}
	quest, err := s.store.GetQuest(ctx, game.ID, payload.QuestNumber)
	if err != nil {
		return false, false, err
	}
	if quest.Completed() {
		return false, false, fmt.Errorf("quest %d already completed: %w", payload.QuestNumber, ErrInvalid)
	}
	round, err := s.store.GetRound(ctx, game.ID, payload.QuestNumber, payload.RoundNumber)
	if err != nil {
		return false, false, err
	}
	if round.Completed() {
		return false, false, fmt.Errorf("round %d/%d already completed: %w", payload.QuestNumber, payload.RoundNumber, ErrInvalid)
	}

	votes, err := s.store.GetRoundVotes(ctx, game.ID, payload.QuestNumber, payload.RoundNumber)
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
	vote := &store.RoundVote{
		GameID:      game.ID,
		QuestNumber: payload.QuestNumber,
		RoundNumber: payload.RoundNumber,
		PlayerID:    payload.PlayerID,
		Result:      result,
	}
	if err := s.store.CreateRoundVote(ctx, vote); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, false, fmt.Errorf("player %s already voted: %w", payload.PlayerID, ErrInvalid)
		}
		return false, false, err
	}
	if err := s.events.RoundVoteCast(ctx, game.ID, payload.QuestNumber, payload.RoundNumber, payload.PlayerID, result); err != nil {
		return false, false, err
	}

	votes = append(votes, vote)
	if len(votes) < len(game.PlayerIDs) {
		return false, false, nil
	}

	approvals := 0
	for _, v := range votes {
		if v.Result == store.VotePass {
			approvals++
		}
	}
	outcome := store.VoteFail
	if approvals*2 > len(game.PlayerIDs) {
		outcome = store.VotePass
	}

	round.Result = outcome
	if err := s.store.UpdateRound(ctx, round); err != nil {
		return false, false, err
	}
	if outcome == store.VotePass {
		quest.TeamMemberIDs = round.TeamMemberIDs
		if err := s.store.UpdateQuest(ctx, quest); err != nil {
			return false, false, err
		}
	}
	if err := s.events.RoundCompleted(ctx, game.ID, payload.QuestNumber, payload.RoundNumber, outcome); err != nil {
		return false, false, err
	}
	return true, outcome == store.VotePass, nil
}
