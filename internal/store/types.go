package store

import "time"

// GameStatus is the coarse lifecycle of a game record.
type GameStatus string

const (
	StatusNotStarted GameStatus = "NotStarted"
	StatusInProgress GameStatus = "InProgress"
	StatusFinished   GameStatus = "Finished"
)

// StateName identifies the state machine state persisted on the Game record.
type StateName string

const (
	StateGameSetup     StateName = "GAME_SETUP"
	StateTeamSelection StateName = "TEAM_SELECTION"
	StateRoundVoting   StateName = "ROUND_VOTING"
	StateQuestVoting   StateName = "QUEST_VOTING"
	StateEndGame       StateName = "END_GAME"
)

// Role is a hidden role dealt to a player at game start.
type Role string

const (
	RoleMerlin   Role = "Merlin"
	RolePercival Role = "Percival"
	RoleMordred  Role = "Mordred"
	RoleMorgana  Role = "Morgana"
	RoleAssassin Role = "Assassin"
	RoleOberon   Role = "Oberon"
	RoleVillager Role = "Villager"
)

// VoteResult is the outcome of a round vote, quest vote, round, or quest.
type VoteResult string

const (
	VotePass VoteResult = "Pass"
	VoteFail VoteResult = "Fail"
)

// GameResult is the winning side of a finished game.
type GameResult string

const (
	ResultGoodWon GameResult = "Good"
	ResultEvilWon GameResult = "Evil"
)

// GameConfig is the per-game rules table, fixed at game start.
// QuestTeamSize maps quest number (1..5) to the required team size for the
// player count of this game.
type GameConfig struct {
	QuestTeamSize         map[int]int     `json:"quest_team_size"`
	MaxRound              int             `json:"max_round"`
	Roles                 []Role          `json:"roles"`
	KnownRoles            map[Role][]Role `json:"known_roles"`
	AssassinationAttempts int             `json:"assassination_attempts"`
}

// Game is the root record that owns all other per-game records.
type Game struct {
	ID     string     `json:"id"`
	Status GameStatus `json:"status"`
	State  StateName  `json:"state"`
	Config GameConfig `json:"config"`
	// PlayerIDs is set once at game start and fixes the leader rotation order.
	PlayerIDs []string `json:"player_ids"`
	LeaderID  string   `json:"leader_id,omitempty"`
	// AssassinationAttempts is the runtime counter; nil until first read, in
	// which case Config.AssassinationAttempts applies.
	AssassinationAttempts *int       `json:"assassination_attempts,omitempty"`
	Result                GameResult `json:"result,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Player is a participant of one game. Role and KnownPlayerIDs are assigned
// exactly once at game start and never change.
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	// SecretHash is the bcrypt hash of the join secret; never exposed.
	SecretHash     string    `json:"-"`
	Role           Role      `json:"role,omitempty"`
	KnownPlayerIDs []string  `json:"known_player_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Quest is one of up to five sequential sub-games.
type Quest struct {
	GameID        string     `json:"game_id"`
	QuestNumber   int        `json:"quest_number"`
	TeamMemberIDs []string   `json:"team_member_ids"`
	Result        VoteResult `json:"result,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Completed reports whether the quest has a final result.
func (q *Quest) Completed() bool { return q != nil && q.Result != "" }

// Round is one attempt to assemble and approve a team for a quest.
type Round struct {
	GameID        string     `json:"game_id"`
	QuestNumber   int        `json:"quest_number"`
	RoundNumber   int        `json:"round_number"`
	LeaderID      string     `json:"leader_id"`
	TeamMemberIDs []string   `json:"team_member_ids"`
	Result        VoteResult `json:"result,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Completed reports whether the round has a final result.
func (r *Round) Completed() bool { return r != nil && r.Result != "" }

// RoundVote is one player's approve/reject vote on a team proposal.
type RoundVote struct {
	GameID      string     `json:"game_id"`
	QuestNumber int        `json:"quest_number"`
	RoundNumber int        `json:"round_number"`
	PlayerID    string     `json:"player_id"`
	Result      VoteResult `json:"result"`
}

// QuestVote is one team member's pass/fail vote on a quest.
type QuestVote struct {
	GameID      string     `json:"game_id"`
	QuestNumber int        `json:"quest_number"`
	PlayerID    string     `json:"player_id"`
	Result      VoteResult `json:"result"`
}

// Event is an append-only domain event. Empty Recipients means public;
// otherwise only the listed players may see it.
type Event struct {
	ID         string         `json:"id"`
	GameID     string         `json:"game_id"`
	Type       string         `json:"type"`
	Recipients []string       `json:"recipients,omitempty"`
	Payload    map[string]any `json:"payload"`
	Timestamp  time.Time      `json:"timestamp"`
}

// VisibleTo reports whether the event may be delivered to the player.
func (e *Event) VisibleTo(playerID string) bool {
	if len(e.Recipients) == 0 {
		return true
	}
	for _, id := range e.Recipients {
		if id == playerID {
			return true
		}
	}
	return false
}

// Connection maps a player to their current websocket connection.
// Overwritten on reconnect.
type Connection struct {
	GameID       string    `json:"game_id"`
	PlayerID     string    `json:"player_id"`
	ConnectionID string    `json:"connection_id"`
	ConnectedAt  time.Time `json:"connected_at"`
}
