package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// seedTenPlayerQuestFive sets up a ten-player game on quest five with a
// five-member team ready to vote.
func seedTenPlayerQuestFive(t *testing.T) (*QuestService, *memStore, *store.Game, []string) {
	t.Helper()
	st := newMemStore()
	game := st.seedGame("game-1")

	playerIDs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		playerIDs = append(playerIDs, fmt.Sprintf("player-%d", i+1))
	}
	seedPlayers(t, st, "game-1", 10)

	config, err := DefaultConfig(10)
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	game.Config = config
	game.PlayerIDs = playerIDs
	game.Status = store.StatusInProgress
	if err := st.UpdateGame(context.Background(), game); err != nil {
		t.Fatalf("update game: %v", err)
	}

	for n := 1; n <= 4; n++ {
		quest, err := st.CreateQuest(context.Background(), "game-1", n)
		if err != nil {
			t.Fatalf("create quest %d: %v", n, err)
		}
		if n%2 == 0 {
			quest.Result = store.VoteFail
		} else {
			quest.Result = store.VotePass
		}
		if err := st.UpdateQuest(context.Background(), quest); err != nil {
			t.Fatalf("update quest %d: %v", n, err)
		}
	}

	team := playerIDs[:config.QuestTeamSize[5]]
	quest, err := st.CreateQuest(context.Background(), "game-1", 5)
	if err != nil {
		t.Fatalf("create quest 5: %v", err)
	}
	quest.TeamMemberIDs = team
	if err := st.UpdateQuest(context.Background(), quest); err != nil {
		t.Fatalf("update quest 5: %v", err)
	}

	events := NewEventService(st, newRecordingMessenger(), zerolog.Nop())
	rounds := NewRoundService(st, events)
	service := NewQuestService(st, events, rounds)

	game, _ = st.GetGame(context.Background(), "game-1")
	return service, st, game, team
}

func TestTenPlayerFifthQuestToleratesOneFail(t *testing.T) {
	service, st, game, team := seedTenPlayerQuestFive(t)

	for i, playerID := range team {
		approved := i != 0
		completed, _, err := service.HandleCastQuestVote(context.Background(), game, &CastQuestVotePayload{
			QuestNumber: 5,
			PlayerID:    playerID,
			IsApproved:  &approved,
		})
		if err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
		if completed != (i == len(team)-1) {
			t.Fatalf("vote %d: completed = %v", i, completed)
		}
	}

	quest, _ := st.GetQuest(context.Background(), "game-1", 5)
	if quest.Result != store.VotePass {
		t.Errorf("quest 5 with one fail = %s, want Pass", quest.Result)
	}
}

func TestTenPlayerFifthQuestFailsOnTwoFails(t *testing.T) {
	service, st, game, team := seedTenPlayerQuestFive(t)

	for i, playerID := range team {
		approved := i > 1
		if _, _, err := service.HandleCastQuestVote(context.Background(), game, &CastQuestVotePayload{
			QuestNumber: 5,
			PlayerID:    playerID,
			IsApproved:  &approved,
		}); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}

	quest, _ := st.GetQuest(context.Background(), "game-1", 5)
	if quest.Result != store.VoteFail {
		t.Errorf("quest 5 with two fails = %s, want Fail", quest.Result)
	}
}

func TestHasMajority(t *testing.T) {
	st := newMemStore()
	st.seedGame("game-1")
	events := NewEventService(st, newRecordingMessenger(), zerolog.Nop())
	service := NewQuestService(st, events, NewRoundService(st, events))

	for n, result := range map[int]store.VoteResult{1: store.VotePass, 2: store.VoteFail, 3: store.VotePass} {
		quest, err := st.CreateQuest(context.Background(), "game-1", n)
		if err != nil {
			t.Fatalf("create quest %d: %v", n, err)
		}
		quest.Result = result
		if err := st.UpdateQuest(context.Background(), quest); err != nil {
			t.Fatalf("update quest %d: %v", n, err)
		}
	}

	majority, err := service.HasMajority(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("has majority: %v", err)
	}
	if majority {
		t.Error("two passes should not be a majority")
	}

	quest, _ := st.CreateQuest(context.Background(), "game-1", 4)
	quest.Result = store.VotePass
	if err := st.UpdateQuest(context.Background(), quest); err != nil {
		t.Fatalf("update quest 4: %v", err)
	}
	majority, err = service.HasMajority(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("has majority: %v", err)
	}
	if !majority {
		t.Error("three passes should be a majority")
	}
}

func TestDefaultConfigRejectsBadPlayerCounts(t *testing.T) {
	for _, count := range []int{4, 11, 0} {
		if _, err := DefaultConfig(count); err == nil {
			t.Errorf("DefaultConfig(%d) should fail", count)
		}
	}
	config, err := DefaultConfig(5)
	if err != nil {
		t.Fatalf("DefaultConfig(5): %v", err)
	}
	if config.QuestTeamSize[1] != 2 || config.QuestTeamSize[5] != 3 {
		t.Errorf("five-player team sizes wrong: %v", config.QuestTeamSize)
	}
	if config.AssassinationAttempts != 1 {
		t.Errorf("attempts = %d, want 1", config.AssassinationAttempts)
	}
}
