package engine

import (
	"fmt"

	"github.com/roundtable-games/avalon-server/internal/store"
)

// DefaultAssassinationAttempts is the number of guesses the assassin gets
// unless the game overrides it.
const DefaultAssassinationAttempts = 1

// DefaultQuestTeamSize maps player count to the required team size per quest.
var DefaultQuestTeamSize = map[int]map[int]int{
	5:  {1: 2, 2: 3, 3: 2, 4: 3, 5: 3},
	6:  {1: 2, 2: 3, 3: 4, 4: 3, 5: 4},
	7:  {1: 2, 2: 3, 3: 3, 4: 4, 5: 4},
	8:  {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
	9:  {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
	10: {1: 3, 2: 4, 3: 4, 4: 5, 5: 5},
}

// DefaultRoles maps player count to the special roles dealt; remaining
// players become Villagers.
var DefaultRoles = map[int][]store.Role{
	5:  {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana},
	6:  {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana},
	7:  {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana, store.RoleAssassin},
	8:  {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana, store.RoleAssassin},
	9:  {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana, store.RoleAssassin},
	10: {store.RoleMerlin, store.RolePercival, store.RoleMordred, store.RoleMorgana, store.RoleAssassin, store.RoleOberon},
}

// DefaultKnownRoles maps a role to the roles it learns at game start.
var DefaultKnownRoles = map[store.Role][]store.Role{
	store.RoleMerlin:   {store.RoleMorgana, store.RoleAssassin, store.RoleOberon},
	store.RolePercival: {store.RoleMerlin, store.RoleMorgana},
	store.RoleMordred:  {store.RoleMorgana, store.RoleAssassin, store.RoleOberon},
	store.RoleMorgana:  {store.RoleMordred, store.RoleAssassin, store.RoleOberon},
	store.RoleAssassin: {store.RoleMordred, store.RoleMorgana, store.RoleOberon},
	store.RoleOberon:   {},
	store.RoleVillager: {},
}

// DefaultConfig returns the rules table for the given player count (5..10).
func DefaultConfig(playerCount int) (store.GameConfig, error) {
	teamSize, ok := DefaultQuestTeamSize[playerCount]
	if !ok {
		return store.GameConfig{}, fmt.Errorf("unsupported player count %d: %w", playerCount, ErrInvalid)
	}
	roles := DefaultRoles[playerCount]
	return store.GameConfig{
		QuestTeamSize:         teamSize,
		MaxRound:              5,
		Roles:                 append([]store.Role(nil), roles...),
		KnownRoles:            DefaultKnownRoles,
		AssassinationAttempts: DefaultAssassinationAttempts,
	}, nil
}
