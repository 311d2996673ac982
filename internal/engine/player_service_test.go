package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roundtable-games/avalon-server/internal/store"
)

func seedPlayers(t *testing.T, st *memStore, gameID string, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		player, err := st.CreatePlayer(context.Background(), store.CreatePlayerRequest{
			GameID:     gameID,
			Name:       "player",
			SecretHash: "hash",
		})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		ids = append(ids, player.ID)
	}
	return ids
}

func TestAssignRolesKnownPlayers(t *testing.T) {
	st := newMemStore()
	st.seedGame("game-1")
	seedPlayers(t, st, "game-1", 7)

	events := NewEventService(st, newRecordingMessenger(), zerolog.Nop())
	service := NewPlayerService(st, events, rand.New(rand.NewSource(42)))

	roles := DefaultRoles[7]
	assigned, err := service.AssignRoles(context.Background(), "game-1", roles, DefaultKnownRoles)
	if err != nil {
		t.Fatalf("assign roles: %v", err)
	}
	if len(assigned) != 7 {
		t.Fatalf("assigned %d players, want 7", len(assigned))
	}

	counts := make(map[store.Role]int)
	for _, player := range assigned {
		counts[player.Role]++
	}
	for _, role := range roles {
		if counts[role] != 1 {
			t.Errorf("role %s dealt %d times, want 1", role, counts[role])
		}
	}
	if counts[store.RoleVillager] != 7-len(roles) {
		t.Errorf("villagers = %d, want %d", counts[store.RoleVillager], 7-len(roles))
	}

	byID := make(map[string]*store.Player)
	for _, player := range assigned {
		byID[player.ID] = player
	}
	for _, player := range assigned {
		visible := make(map[store.Role]bool)
		for _, role := range DefaultKnownRoles[player.Role] {
			visible[role] = true
		}
		want := make(map[string]bool)
		for _, other := range assigned {
			if other.ID != player.ID && visible[other.Role] {
				want[other.ID] = true
			}
		}
		if len(want) != len(player.KnownPlayerIDs) {
			t.Errorf("%s known players = %v, want %d ids", player.Role, player.KnownPlayerIDs, len(want))
			continue
		}
		for _, id := range player.KnownPlayerIDs {
			if !want[id] {
				t.Errorf("%s should not know %s (%s)", player.Role, id, byID[id].Role)
			}
		}
	}
}

func TestAssignRolesDeterministicWithSeed(t *testing.T) {
	run := func() []store.Role {
		st := newMemStore()
		st.seedGame("game-1")
		seedPlayers(t, st, "game-1", 5)
		events := NewEventService(st, newRecordingMessenger(), zerolog.Nop())
		service := NewPlayerService(st, events, rand.New(rand.NewSource(7)))
		assigned, err := service.AssignRoles(context.Background(), "game-1", fivePlayerRoles, DefaultKnownRoles)
		if err != nil {
			t.Fatalf("assign roles: %v", err)
		}
		out := make([]store.Role, 0, len(assigned))
		for _, player := range assigned {
			out = append(out, player.Role)
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded shuffle not deterministic: %v vs %v", first, second)
		}
	}
}

func TestHandleJoinGameRejectsStartedGame(t *testing.T) {
	st := newMemStore()
	game := st.seedGame("game-1")
	game.Status = store.StatusInProgress
	if err := st.UpdateGame(context.Background(), game); err != nil {
		t.Fatalf("update game: %v", err)
	}

	events := NewEventService(st, newRecordingMessenger(), zerolog.Nop())
	service := NewPlayerService(st, events, rand.New(rand.NewSource(1)))

	game, _ = st.GetGame(context.Background(), "game-1")
	if _, _, err := service.HandleJoinGame(context.Background(), game, &JoinGamePayload{Name: "late"}); err == nil {
		t.Fatal("expected join on started game to fail")
	}
}
