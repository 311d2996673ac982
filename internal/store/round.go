package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateRoundRequest contains the data needed to open a new round.
type CreateRoundRequest struct {
	GameID      string
	QuestNumber int
	RoundNumber int
	LeaderID    string
}

// CreateRound inserts the round for (game, quest, round_number).
func (s *Store) CreateRound(ctx context.Context, req CreateRoundRequest) (*Round, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO rounds (game_id, quest_number, round_number, leader_id, team_member_ids)
		VALUES ($1, $2, $3, $4, '{}')
		RETURNING game_id, quest_number, round_number, leader_id, team_member_ids, result, created_at`,
		req.GameID, req.QuestNumber, req.RoundNumber, req.LeaderID)

	round, err := scanRound(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create round %d/%d: %w", req.QuestNumber, req.RoundNumber, ErrConflict)
		}
		return nil, fmt.Errorf("create round: %w", err)
	}
	return round, nil
}

// GetRound returns the round by quest and round number, or ErrNotFound.
func (s *Store) GetRound(ctx context.Context, gameID string, questNumber, roundNumber int) (*Round, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT game_id, quest_number, round_number, leader_id, team_member_ids, result, created_at
		FROM rounds WHERE game_id = $1 AND quest_number = $2 AND round_number = $3`,
		gameID, questNumber, roundNumber)

	round, err := scanRound(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get round %d/%d: %w", questNumber, roundNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("get round: %w", err)
	}
	return round, nil
}

// GetCurrentRound returns the highest-numbered round of the quest, or
// ErrNotFound when the quest has no rounds yet.
func (s *Store) GetCurrentRound(ctx context.Context, gameID string, questNumber int) (*Round, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT game_id, quest_number, round_number, leader_id, team_member_ids, result, created_at
		FROM rounds WHERE game_id = $1 AND quest_number = $2
		ORDER BY round_number DESC LIMIT 1`, gameID, questNumber)

	round, err := scanRound(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("current round of quest %d: %w", questNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("get current round: %w", err)
	}
	return round, nil
}

// UpdateRound persists the round's team and result.
func (s *Store) UpdateRound(ctx context.Context, round *Round) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rounds SET team_member_ids = $4, result = $5
		WHERE game_id = $1 AND quest_number = $2 AND round_number = $3`,
		round.GameID, round.QuestNumber, round.RoundNumber,
		round.TeamMemberIDs, stringToText(string(round.Result)))
	if err != nil {
		return fmt.Errorf("update round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update round %d/%d: %w", round.QuestNumber, round.RoundNumber, ErrNotFound)
	}
	return nil
}

func scanRound(row pgx.Row) (*Round, error) {
	var (
		round  Round
		result pgtype.Text
	)
	err := row.Scan(&round.GameID, &round.QuestNumber, &round.RoundNumber,
		&round.LeaderID, &round.TeamMemberIDs, &result, &round.CreatedAt)
	if err != nil {
		return nil, err
	}
	round.Result = VoteResult(textToString(result))
	return &round, nil
}
