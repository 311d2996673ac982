package store

import (
	"context"
	"fmt"
)

// CreateRoundVote records a player's team-approval vote. A second vote by the
// same player in the same round returns ErrConflict.
func (s *Store) CreateRoundVote(ctx context.Context, vote *RoundVote) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO round_votes (game_id, quest_number, round_number, player_id, result)
		VALUES ($1, $2, $3, $4, $5)`,
		vote.GameID, vote.QuestNumber, vote.RoundNumber, vote.PlayerID, vote.Result)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("round vote by %s: %w", vote.PlayerID, ErrConflict)
		}
		return fmt.Errorf("create round vote: %w", err)
	}
	return nil
}

// GetRoundVotes returns all votes cast in the round.
func (s *Store) GetRoundVotes(ctx context.Context, gameID string, questNumber, roundNumber int) ([]*RoundVote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, quest_number, round_number, player_id, result
		FROM round_votes
		WHERE game_id = $1 AND quest_number = $2 AND round_number = $3
		ORDER BY player_id`, gameID, questNumber, roundNumber)
	if err != nil {
		return nil, fmt.Errorf("get round votes: %w", err)
	}
	defer rows.Close()

	var votes []*RoundVote
	for rows.Next() {
		var vote RoundVote
		if err := rows.Scan(&vote.GameID, &vote.QuestNumber, &vote.RoundNumber,
			&vote.PlayerID, &vote.Result); err != nil {
			return nil, fmt.Errorf("scan round vote: %w", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get round votes: %w", err)
	}
	return votes, nil
}

// CreateQuestVote records a team member's pass/fail vote. A second vote by the
// same player in the same quest returns ErrConflict.
func (s *Store) CreateQuestVote(ctx context.Context, vote *QuestVote) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quest_votes (game_id, quest_number, player_id, result)
		VALUES ($1, $2, $3, $4)`,
		vote.GameID, vote.QuestNumber, vote.PlayerID, vote.Result)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("quest vote by %s: %w", vote.PlayerID, ErrConflict)
		}
		return fmt.Errorf("create quest vote: %w", err)
	}
	return nil
}

// GetQuestVotes returns all votes cast on the quest.
func (s *Store) GetQuestVotes(ctx context.Context, gameID string, questNumber int) ([]*QuestVote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, quest_number, player_id, result
		FROM quest_votes
		WHERE game_id = $1 AND quest_number = $2
		ORDER BY player_id`, gameID, questNumber)
	if err != nil {
		return nil, fmt.Errorf("get quest votes: %w", err)
	}
	defer rows.Close()

	var votes []*QuestVote
	for rows.Next() {
		var vote QuestVote
		if err := rows.Scan(&vote.GameID, &vote.QuestNumber,
			&vote.PlayerID, &vote.Result); err != nil {
			return nil, fmt.Errorf("scan quest vote: %w", err)
		}
		votes = append(votes, &vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get quest votes: %w", err)
	}
	return votes, nil
}
