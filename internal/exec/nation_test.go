package exec

import (
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/game"
)

func TestBotSpawnerSeedsNationsAndBots(t *testing.T) {
	tun := testTuning()
	tun.SpawnPhaseTurns = 40
	g := game.NewGame("test", testMap(40, 40), tun, game.Options{
		Difficulty: game.DifficultyMedium, Nations: 2, Bots: 1,
	}, zap.NewNop())

	g.AddExecution(NewBotSpawnerExecution())
	runTicks(g, 40)

	var nations, bots int
	for _, p := range g.Players() {
		switch p.Type() {
		case game.PlayerFakeHuman:
			nations++
			if !p.HasSpawned() {
				t.Fatalf("nation %s never spawned", p.ID())
			}
			if got := p.Troops(); got != 20_000 {
				t.Fatalf("medium nation starts with %v troops, want 20000", got)
			}
		case game.PlayerBot:
			bots++
		}
	}
	if nations != 2 || bots != 1 {
		t.Fatalf("spawned %d nations and %d bots, want 2 and 1", nations, bots)
	}
}

func TestNationStartTroopsScaleWithDifficulty(t *testing.T) {
	cases := []struct {
		d    game.Difficulty
		want float64
	}{
		{game.DifficultyEasy, 10_000},
		{game.DifficultyMedium, 20_000},
		{game.DifficultyHard, 35_000},
		{game.DifficultyImpossible, 50_000},
	}
	for _, c := range cases {
		g := game.NewGame("test", testMap(20, 20), testTuning(),
			game.Options{Difficulty: c.d, DisableNPCs: true}, zap.NewNop())
		p := g.AddPlayer(game.PlayerInfo{ID: "n1", Name: "Aurelia", Type: game.PlayerFakeHuman})
		if p.Troops() != c.want {
			t.Fatalf("%s nation starts with %v troops, want %v", c.d, p.Troops(), c.want)
		}
	}
}

func TestNationExpandsIntoFreeLand(t *testing.T) {
	tun := testTuning()
	tun.SpawnPhaseTurns = 10
	g := game.NewGame("test", testMap(40, 40), tun, game.Options{Nations: 1}, zap.NewNop())

	g.AddExecution(NewBotSpawnerExecution())
	runTicks(g, 10)

	var nation *game.Player
	for _, p := range g.Players() {
		if p.Type() == game.PlayerFakeHuman {
			nation = p
		}
	}
	if nation == nil || !nation.HasSpawned() {
		t.Fatalf("no nation on the map after the spawn phase")
	}

	spawned := nation.NumTilesOwned()
	runTicks(g, 300)
	if nation.NumTilesOwned() <= spawned {
		t.Fatalf("nation never expanded past its %d spawn tiles", spawned)
	}
}
