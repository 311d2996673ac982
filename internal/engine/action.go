package engine

import (
	"encoding/json"
	"fmt"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// ActionType identifies a player or admin action.
type ActionType string

const (
	ActionJoinGame                  ActionType = "JoinGame"
	ActionStartGame                 ActionType = "StartGame"
	ActionSubmitTeamProposal        ActionType = "SubmitTeamProposal"
	ActionCastRoundVote             ActionType = "CastRoundVote"
	ActionCastQuestVote             ActionType = "CastQuestVote"
	ActionSubmitAssassinationTarget ActionType = "SubmitAssassinationTarget"
)

// Action is one exogenous input to the state machine. Payload holds the
// typed payload struct matching Type.
type Action struct {
	ID       string
	GameID   string
	PlayerID string
	Type     ActionType
	Payload  any
}

// JoinGamePayload is the payload of a JoinGame action.
type JoinGamePayload struct {
	Name string `json:"name"`
}

// StartGamePayload is the payload of a StartGame action. Roles, KnownRoles
// and AssassinationAttempts override the defaults for the player count when
// present.
type StartGamePayload struct {
	PlayerIDs             []string                    `json:"player_ids"`
	AssassinationAttempts *int                        `json:"assassination_attempts,omitempty"`
	Roles                 []store.Role                `json:"roles,omitempty"`
	KnownRoles            map[store.Role][]store.Role `json:"known_roles,omitempty"`
}

// SubmitTeamProposalPayload is the payload of a SubmitTeamProposal action.
type SubmitTeamProposalPayload struct {
	QuestNumber   int      `json:"quest_number"`
	RoundNumber   int      `json:"round_number"`
	TeamMemberIDs []string `json:"team_member_ids"`
}

// CastRoundVotePayload is the payload of a CastRoundVote action.
type CastRoundVotePayload struct {
	QuestNumber int    `json:"quest_number"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
	IsApproved  *bool  `json:"is_approved"`
}

// CastQuestVotePayload is the payload of a CastQuestVote action.
type CastQuestVotePayload struct {
	QuestNumber int    `json:"quest_number"`
	PlayerID    string `json:"player_id"`
	IsApproved  *bool  `json:"is_approved"`
}

// SubmitAssassinationTargetPayload is the payload of a
// SubmitAssassinationTarget action.
type SubmitAssassinationTargetPayload struct {
	TargetID string `json:"target_id"`
}

// DecodeAction builds a typed Action from a raw JSON payload.
func DecodeAction(id, gameID, playerID string, actionType ActionType, raw json.RawMessage) (*Action, error) {
	action := &Action{
		ID:       id,
		GameID:   gameID,
		PlayerID: playerID,
		Type:     actionType,
	}

	var payload any
	switch actionType {
	case ActionJoinGame:
		payload = &JoinGamePayload{}
	case ActionStartGame:
		payload = &StartGamePayload{}
	case ActionSubmitTeamProposal:
		payload = &SubmitTeamProposalPayload{}
	case ActionCastRoundVote:
		payload = &CastRoundVotePayload{}
	case ActionCastQuestVote:
		payload = &CastQuestVotePayload{}
	case ActionSubmitAssassinationTarget:
		payload = &SubmitAssassinationTargetPayload{}
	default:
		return nil, fmt.Errorf("unknown action type %q: %w", actionType, ErrInvalid)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("action payload is missing: %w", ErrInvalid)
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", actionType, ErrInvalid)
	}
	action.Payload = payload
	return action, nil
}
