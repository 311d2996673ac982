package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGameLifecycle(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	st := NewStore(pool)
	ctx := context.Background()

	t.Run("create with defaults", func(t *testing.T) {
		game, err := st.CreateGame(ctx, GameConfig{})
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}
		if game.ID == "" {
			t.Error("expected game ID to be set")
		}
		if game.Status != StatusNotStarted {
			t.Errorf("expected status %q, got %q", StatusNotStarted, game.Status)
		}
		if game.State != StateGameSetup {
			t.Errorf("expected state %q, got %q", StateGameSetup, game.State)
		}
		if game.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("get missing game", func(t *testing.T) {
		_, err := st.GetGame(ctx, uuid.NewString())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update preserves state", func(t *testing.T) {
		game, err := st.CreateGame(ctx, GameConfig{})
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}

		attempts := 1
		game.Status = StatusInProgress
		game.PlayerIDs = []string{"p1", "p2", "p3", "p4", "p5"}
		game.LeaderID = "p1"
		game.AssassinationAttempts = &attempts
		game.Config = GameConfig{
			QuestTeamSize:         map[int]int{1: 2, 2: 3, 3: 2, 4: 3, 5: 3},
			MaxRound:              5,
			AssassinationAttempts: 1,
		}
		if err := st.UpdateGame(ctx, game); err != nil {
			t.Fatalf("UpdateGame failed: %v", err)
		}

		got, err := st.GetGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGame failed: %v", err)
		}
		if got.Status != StatusInProgress || got.LeaderID != "p1" {
			t.Errorf("update not persisted: %+v", got)
		}
		if got.State != StateGameSetup {
			t.Errorf("UpdateGame must not change state, got %q", got.State)
		}
		if got.AssassinationAttempts == nil || *got.AssassinationAttempts != 1 {
			t.Errorf("assassination attempts not persisted: %v", got.AssassinationAttempts)
		}
		if got.Config.QuestTeamSize[2] != 3 {
			t.Errorf("config not persisted: %+v", got.Config)
		}

		if err := st.UpdateGameState(ctx, game.ID, StateTeamSelection); err != nil {
			t.Fatalf("UpdateGameState failed: %v", err)
		}
		got, err = st.GetGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGame failed: %v", err)
		}
		if got.State != StateTeamSelection {
			t.Errorf("expected state %q, got %q", StateTeamSelection, got.State)
		}
	})
}

func TestPlayersAndVotes(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	st := NewStore(pool)
	ctx := context.Background()

	game, err := st.CreateGame(ctx, GameConfig{})
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	t.Run("players ordered by join time", func(t *testing.T) {
		names := []string{"alice", "bob", "carol"}
		for _, name := range names {
			if _, err := st.CreatePlayer(ctx, CreatePlayerRequest{
				GameID:     game.ID,
				Name:       name,
				SecretHash: "hash-" + name,
			}); err != nil {
				t.Fatalf("CreatePlayer(%s) failed: %v", name, err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		players, err := st.GetPlayers(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetPlayers failed: %v", err)
		}
		if len(players) != 3 {
			t.Fatalf("expected 3 players, got %d", len(players))
		}
		for i, name := range names {
			if players[i].Name != name {
				t.Errorf("player %d: expected %q, got %q", i, name, players[i].Name)
			}
		}
	})

	t.Run("duplicate quest conflicts", func(t *testing.T) {
		if _, err := st.CreateQuest(ctx, game.ID, 1); err != nil {
			t.Fatalf("CreateQuest failed: %v", err)
		}
		if _, err := st.CreateQuest(ctx, game.ID, 1); !errors.Is(err, ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("duplicate round vote conflicts", func(t *testing.T) {
		if _, err := st.CreateRound(ctx, CreateRoundRequest{
			GameID: game.ID, QuestNumber: 1, RoundNumber: 1, LeaderID: "p1",
		}); err != nil {
			t.Fatalf("CreateRound failed: %v", err)
		}
		vote := &RoundVote{GameID: game.ID, QuestNumber: 1, RoundNumber: 1, PlayerID: "p1", Result: VotePass}
		if err := st.CreateRoundVote(ctx, vote); err != nil {
			t.Fatalf("CreateRoundVote failed: %v", err)
		}
		if err := st.CreateRoundVote(ctx, vote); !errors.Is(err, ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
		votes, err := st.GetRoundVotes(ctx, game.ID, 1, 1)
		if err != nil {
			t.Fatalf("GetRoundVotes failed: %v", err)
		}
		if len(votes) != 1 {
			t.Errorf("expected 1 vote, got %d", len(votes))
		}
	})
}

func TestEventVisibility(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	st := NewStore(pool)
	ctx := context.Background()

	game, err := st.CreateGame(ctx, GameConfig{})
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	events := []*Event{
		{ID: uuid.NewString(), GameID: game.ID, Type: "PLAYER_JOINED",
			Payload: map[string]any{"id": "p1", "name": "alice"}, Timestamp: time.Now().UTC()},
		{ID: uuid.NewString(), GameID: game.ID, Type: "QUEST_VOTE_REQUESTED",
			Recipients: []string{"p2"}, Payload: map[string]any{}, Timestamp: time.Now().UTC()},
	}
	for _, event := range events {
		if err := st.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	all, err := st.GetEvents(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].Type != "PLAYER_JOINED" {
		t.Errorf("expected insertion order, got %q first", all[0].Type)
	}

	visible, err := st.GetEventsVisibleTo(ctx, game.ID, "p1")
	if err != nil {
		t.Fatalf("GetEventsVisibleTo failed: %v", err)
	}
	if len(visible) != 1 || visible[0].Type != "PLAYER_JOINED" {
		t.Errorf("p1 should only see the broadcast, got %+v", visible)
	}

	visible, err = st.GetEventsVisibleTo(ctx, game.ID, "p2")
	if err != nil {
		t.Fatalf("GetEventsVisibleTo failed: %v", err)
	}
	if len(visible) != 2 {
		t.Errorf("p2 should see both events, got %d", len(visible))
	}
}

func TestConnectionUpsert(t *testing.T) {
	pool := SetupTestDB(t)
	defer pool.Close()

	st := NewStore(pool)
	ctx := context.Background()

	game, err := st.CreateGame(ctx, GameConfig{})
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	first := &Connection{GameID: game.ID, PlayerID: "p1", ConnectionID: "conn-1"}
	if err := st.UpsertConnection(ctx, first); err != nil {
		t.Fatalf("UpsertConnection failed: %v", err)
	}
	second := &Connection{GameID: game.ID, PlayerID: "p1", ConnectionID: "conn-2"}
	if err := st.UpsertConnection(ctx, second); err != nil {
		t.Fatalf("UpsertConnection (reconnect) failed: %v", err)
	}

	got, err := st.GetConnection(ctx, game.ID, "p1")
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	if got.ConnectionID != "conn-2" {
		t.Errorf("expected reconnect to win, got %q", got.ConnectionID)
	}

	// Stale delete from the replaced connection must not remove the new one.
	if err := st.DeleteConnection(ctx, game.ID, "p1", "conn-1"); err != nil {
		t.Fatalf("DeleteConnection (stale) failed: %v", err)
	}
	if _, err := st.GetConnection(ctx, game.ID, "p1"); err != nil {
		t.Errorf("connection should survive a stale delete: %v", err)
	}

	if err := st.DeleteConnection(ctx, game.ID, "p1", "conn-2"); err != nil {
		t.Fatalf("DeleteConnection failed: %v", err)
	}
	if _, err := st.GetConnection(ctx, game.ID, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
