package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roundtable-games/avalon-server/internal/metrics"
	"github.com/roundtable-games/avalon-server/internal/store"
)

// Event type strings. These are part of the public protocol.
const (
	EventPlayerJoined                  = "PLAYER_JOINED"
	EventGameStarted                   = "GAME_STARTED"
	EventQuestStarted                  = "QUEST_STARTED"
	EventRoundStarted                  = "ROUND_STARTED"
	EventTeamSelectionRequested        = "TEAM_SELECTION_REQUESTED"
	EventTeamProposalSubmitted         = "TEAM_PROPOSAL_SUBMITTED"
	EventRoundVoteCast                 = "ROUND_VOTE_CAST"
	EventRoundCompleted                = "ROUND_COMPLETED"
	EventQuestVoteStarted              = "QUEST_VOTE_STARTED"
	EventQuestVoteRequested            = "QUEST_VOTE_REQUESTED"
	EventQuestVoteCast                 = "QUEST_VOTE_CAST"
	EventQuestCompleted                = "QUEST_COMPLETED"
	EventAssassinationStarted          = "ASSASSINATION_STARTED"
	EventAssassinationTargetRequested  = "ASSASSINATION_TARGET_REQUESTED"
	EventAssassinationSucceeded        = "ASSASSINATION_SUCCEEDED"
	EventAssassinationFailed           = "ASSASSINATION_FAILED"
	EventGameEnded                     = "GAME_ENDED"
)

// EventService constructs domain events with their recipient lists, persists
// them, and hands them to the Messenger. Recipients are fixed here, at the
// constructor boundary; the transport never decides visibility.
type EventService struct {
	store     Store
	messenger Messenger
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewEventService creates an EventService.
func NewEventService(st Store, messenger Messenger, logger zerolog.Logger) *EventService {
	return &EventService{
		store:     st,
		messenger: messenger,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// PlayerJoined broadcasts that a player joined the game.
func (s *EventService) PlayerJoined(ctx context.Context, gameID, playerID, playerName string) error {
	payload := map[string]any{"player_id": playerID, "player_name": playerName}
	return s.broadcast(ctx, gameID, EventPlayerJoined, payload)
}

// GameStarted sends each player their private role and known players.
func (s *EventService) GameStarted(ctx context.Context, gameID string, players []*store.Player) error {
	byID := make(map[string]*store.Player, len(players))
	for _, player := range players {
		byID[player.ID] = player
	}
	for _, player := range players {
		known := make([]map[string]any, 0, len(player.KnownPlayerIDs))
		for _, knownID := range player.KnownPlayerIDs {
			known = append(known, map[string]any{
				"id":   knownID,
				"name": byID[knownID].Name,
			})
		}
		payload := map[string]any{
			"role":          string(player.Role),
			"known_players": known,
		}
		if err := s.notify(ctx, gameID, EventGameStarted, []string{player.ID}, payload); err != nil {
			return err
		}
	}
	return nil
}

// QuestStarted broadcasts that a new quest opened.
func (s *EventService) QuestStarted(ctx context.Context, gameID string, questNumber int) error {
	return s.broadcast(ctx, gameID, EventQuestStarted, map[string]any{"quest_number": questNumber})
}

// RoundStarted broadcasts a new round with its leader.
func (s *EventService) RoundStarted(ctx context.Context, gameID string, questNumber, roundNumber int, leaderID string) error {
	payload := map[string]any{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"leader_id":    leaderID,
	}
	return s.broadcast(ctx, gameID, EventRoundStarted, payload)
}

// TeamSelectionRequested broadcasts that the leader must pick a team of the
// given size.
func (s *EventService) TeamSelectionRequested(ctx context.Context, gameID string, questNumber, roundNumber, teamSize int) error {
	payload := map[string]any{
		"quest_number":      questNumber,
		"round_number":      roundNumber,
		"number_of_players": teamSize,
	}
	return s.broadcast(ctx, gameID, EventTeamSelectionRequested, payload)
}

// TeamProposalSubmitted broadcasts the leader's proposed team.
func (s *EventService) TeamProposalSubmitted(ctx context.Context, gameID string, questNumber, roundNumber int, teamMemberIDs []string) error {
	payload := map[string]any{
		"quest_number":    questNumber,
		"round_number":    roundNumber,
		"team_member_ids": teamMemberIDs,
	}
	return s.broadcast(ctx, gameID, EventTeamProposalSubmitted, payload)
}

// RoundVoteCast broadcasts one player's team-approval vote.
func (s *EventService) RoundVoteCast(ctx context.Context, gameID string, questNumber, roundNumber int, playerID string, result store.VoteResult) error {
	payload := map[string]any{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"player_id":    playerID,
		"result":       string(result),
	}
	return s.broadcast(ctx, gameID, EventRoundVoteCast, payload)
}

// RoundCompleted broadcasts the outcome of a round vote.
func (s *EventService) RoundCompleted(ctx context.Context, gameID string, questNumber, roundNumber int, result store.VoteResult) error {
	payload := map[string]any{
		"quest_number": questNumber,
		"round_number": roundNumber,
		"result":       string(result),
	}
	return s.broadcast(ctx, gameID, EventRoundCompleted, payload)
}

// QuestVoteStarted broadcasts that the quest's team is voting.
func (s *EventService) QuestVoteStarted(ctx context.Context, gameID string, questNumber int, teamMemberIDs []string) error {
	payload := map[string]any{
		"quest_number":    questNumber,
		"team_member_ids": teamMemberIDs,
	}
	return s.broadcast(ctx, gameID, EventQuestVoteStarted, payload)
}

// QuestVoteRequested asks each team member, privately, to cast their vote.
func (s *EventService) QuestVoteRequested(ctx context.Context, gameID string, questNumber int, teamMemberIDs []string) error {
	payload := map[string]any{
		"quest_number":    questNumber,
		"team_member_ids": teamMemberIDs,
	}
	event, err := s.createEvent(ctx, gameID, EventQuestVoteRequested, teamMemberIDs, payload)
	if err != nil {
		return err
	}
	for _, memberID := range teamMemberIDs {
		s.dispatchNotify(ctx, memberID, event)
	}
	return nil
}

// QuestVoteCast broadcasts one team member's quest vote.
func (s *EventService) QuestVoteCast(ctx context.Context, gameID string, questNumber int, playerID string, result store.VoteResult) error {
	payload := map[string]any{
		"quest_number": questNumber,
		"player_id":    playerID,
		"result":       string(result),
	}
	return s.broadcast(ctx, gameID, EventQuestVoteCast, payload)
}

// QuestCompleted broadcasts the outcome of a quest.
func (s *EventService) QuestCompleted(ctx context.Context, gameID string, questNumber int, result store.VoteResult) error {
	payload := map[string]any{
		"quest_number": questNumber,
		"result":       string(result),
	}
	return s.broadcast(ctx, gameID, EventQuestCompleted, payload)
}

// AssassinationStarted broadcasts the start of the assassination phase.
func (s *EventService) AssassinationStarted(ctx context.Context, gameID string, attempts int) error {
	return s.broadcast(ctx, gameID, EventAssassinationStarted, map[string]any{"assassination_attempts": attempts})
}

// AssassinationTargetRequested asks the assassin, privately, for a target.
func (s *EventService) AssassinationTargetRequested(ctx context.Context, gameID, assassinID string) error {
	return s.notify(ctx, gameID, EventAssassinationTargetRequested, []string{assassinID}, map[string]any{})
}

// AssassinationResolved broadcasts the outcome of an assassination attempt.
func (s *EventService) AssassinationResolved(ctx context.Context, gameID, targetID string, successful bool) error {
	payload := map[string]any{
		"target_id":     targetID,
		"is_successful": successful,
	}
	eventType := EventAssassinationFailed
	if successful {
		eventType = EventAssassinationSucceeded
	}
	return s.broadcast(ctx, gameID, eventType, payload)
}

// GameEnded broadcasts the final role reveal.
func (s *EventService) GameEnded(ctx context.Context, gameID string, playerRoles map[string]string) error {
	return s.broadcast(ctx, gameID, EventGameEnded, map[string]any{"player_roles": playerRoles})
}

func (s *EventService) broadcast(ctx context.Context, gameID, eventType string, payload map[string]any) error {
	event, err := s.createEvent(ctx, gameID, eventType, nil, payload)
	if err != nil {
		return err
	}
	if err := s.messenger.Broadcast(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("game_id", gameID).Str("type", eventType).
			Msg("broadcast failed")
	}
	return nil
}

func (s *EventService) notify(ctx context.Context, gameID, eventType string, recipients []string, payload map[string]any) error {
	event, err := s.createEvent(ctx, gameID, eventType, recipients, payload)
	if err != nil {
		return err
	}
	for _, recipient := range recipients {
		s.dispatchNotify(ctx, recipient, event)
	}
	return nil
}

func (s *EventService) dispatchNotify(ctx context.Context, playerID string, event *store.Event) {
	if err := s.messenger.Notify(ctx, playerID, event); err != nil {
		s.logger.Warn().Err(err).Str("game_id", event.GameID).Str("type", event.Type).
			Str("player_id", playerID).Msg("notify failed")
	}
}

func (s *EventService) createEvent(ctx context.Context, gameID, eventType string, recipients []string, payload map[string]any) (*store.Event, error) {
	event := &store.Event{
		ID:         s.newID(),
		GameID:     gameID,
		Type:       eventType,
		Recipients: recipients,
		Payload:    payload,
		Timestamp:  s.now(),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("persist %s event: %w", eventType, err)
	}
	metrics.EventsTotal.WithLabelValues(eventType).Inc()
	return event, nil
}
