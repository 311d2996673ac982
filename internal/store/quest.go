package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateQuest inserts the quest for (game, quest_number).
func (s *Store) CreateQuest(ctx context.Context, gameID string, questNumber int) (*Quest, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO quests (game_id, quest_number, team_member_ids)
		VALUES ($1, $2, '{}')
		RETURNING game_id, quest_number, team_member_ids, result, created_at`,
		gameID, questNumber)

	quest, err := scanQuest(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create quest %d: %w", questNumber, ErrConflict)
		}
		return nil, fmt.Errorf("create quest: %w", err)
	}
	return quest, nil
}

// GetQuest returns the quest by number, or ErrNotFound.
func (s *Store) GetQuest(ctx context.Context, gameID string, questNumber int) (*Quest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT game_id, quest_number, team_member_ids, result, created_at
		FROM quests WHERE game_id = $1 AND quest_number = $2`, gameID, questNumber)

	quest, err := scanQuest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get quest %d: %w", questNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("get quest: %w", err)
	}
	return quest, nil
}

// GetQuests returns all quests of a game ordered by quest number.
func (s *Store) GetQuests(ctx context.Context, gameID string) ([]*Quest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT game_id, quest_number, team_member_ids, result, created_at
		FROM quests WHERE game_id = $1 ORDER BY quest_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get quests: %w", err)
	}
	defer rows.Close()

	var quests []*Quest
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quest: %w", err)
		}
		quests = append(quests, quest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get quests: %w", err)
	}
	return quests, nil
}

// UpdateQuest persists the quest's team and result.
func (s *Store) UpdateQuest(ctx context.Context, quest *Quest) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quests SET team_member_ids = $3, result = $4
		WHERE game_id = $1 AND quest_number = $2`,
		quest.GameID, quest.QuestNumber, quest.TeamMemberIDs,
		stringToText(string(quest.Result)))
	if err != nil {
		return fmt.Errorf("update quest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update quest %d: %w", quest.QuestNumber, ErrNotFound)
	}
	return nil
}

func scanQuest(row pgx.Row) (*Quest, error) {
	var (
		quest  Quest
		result pgtype.Text
	)
	err := row.Scan(&quest.GameID, &quest.QuestNumber, &quest.TeamMemberIDs,
		&result, &quest.CreatedAt)
	if err != nil {
		return nil, err
	}
	quest.Result = VoteResult(textToString(result))
	return &quest, nil
}
