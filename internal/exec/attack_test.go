package exec

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/game"
	"warfront.io/internal/tuning"
)

// testMap is all plains inside the water frame.
func testMap(w, h int) *game.GameMap {
	terrain := make([]game.TerrainType, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				terrain[y*w+x] = game.Water
			} else {
				terrain[y*w+x] = game.Plains
			}
		}
	}
	return game.NewGameMap(w, h, terrain)
}

func testTuning() tuning.Tuning {
	tun := tuning.Defaults()
	tun.SpawnPhaseTurns = 0
	tun.SpawnImmunity = 0
	return tun
}

func newTestGame(t *testing.T, size int) *game.Game {
	t.Helper()
	return game.NewGame("test", testMap(size, size), testTuning(), game.Options{DisableNPCs: true}, zap.NewNop())
}

func addTestPlayer(g *game.Game, id string) *game.Player {
	return g.AddPlayer(game.PlayerInfo{
		ID: game.PlayerID(id), ClientID: game.ClientID(id), Name: id, Type: game.PlayerHuman,
	})
}

// conquerRect hands the inclusive tile rectangle to p directly, bypassing
// the spawn machinery so tests control territory exactly.
func conquerRect(g *game.Game, p *game.Player, x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p.Conquer(g.Map().Ref(x, y))
		}
	}
}

func runTicks(g *game.Game, n int) {
	for i := 0; i < n; i++ {
		g.ExecuteNextTick()
	}
}

func TestAttackExpandsIntoTerraNullius(t *testing.T) {
	g := newTestGame(t, 30)
	p1 := addTestPlayer(g, "p1")
	conquerRect(g, p1, 4, 4, 6, 6)
	p1.RemoveTroops(p1.Troops())
	p1.AddTroops(10_000)

	g.AddExecution(NewAttackExecution(p1.ID(), "", 5_000, 0, false))
	runTicks(g, 200)

	if p1.NumTilesOwned() <= 9 {
		t.Fatalf("attack conquered nothing, still %d tiles", p1.NumTilesOwned())
	}
}

func TestRetreatReturnsSurvivorsWithoutMalus(t *testing.T) {
	g := newTestGame(t, 30)
	p1 := addTestPlayer(g, "p1")
	conquerRect(g, p1, 4, 4, 6, 6)
	p1.RemoveTroops(p1.Troops())
	p1.AddTroops(10_000)

	g.AddExecution(NewAttackExecution(p1.ID(), "", 4_000, 0, false))
	runTicks(g, 5)

	attacks := p1.OutgoingAttacks()
	if len(attacks) != 1 {
		t.Fatalf("expected one outgoing attack, got %d", len(attacks))
	}
	a := attacks[0]
	before := p1.Troops()
	remaining := a.Troops()

	a.Retreat()
	runTicks(g, 3)

	// Wilderness retreats pay no malus: every remaining troop comes home.
	want := before + remaining
	if math.Abs(p1.Troops()-want) > 1e-6 {
		t.Fatalf("troops after retreat %v, want %v", p1.Troops(), want)
	}
	if a.IsActive() {
		t.Fatalf("attack still active after retreat")
	}
}

func TestRetreatAgainstPlayerPaysMalus(t *testing.T) {
	g := newTestGame(t, 30)
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p1, 1, 1, 10, 28)
	conquerRect(g, p2, 11, 1, 28, 28)
	p1.RemoveTroops(p1.Troops())
	p1.AddTroops(10_000)
	p2.RemoveTroops(p2.Troops())

	g.AddExecution(NewAttackExecution(p1.ID(), p2.ID(), 4_000, 0, false))
	runTicks(g, 3)

	a := p1.OutgoingAttacks()[0]
	before := p1.Troops()
	remaining := a.Troops()

	a.Retreat()
	runTicks(g, 3)

	malus := g.Config().T.RetreatMalusPercent
	want := before + remaining*(1-malus/100)
	if math.Abs(p1.Troops()-want) > 1e-6 {
		t.Fatalf("troops after retreat %v, want %v (malus %v%%)", p1.Troops(), want, malus)
	}
	if a.Stats().TroopsLost < remaining*malus/100 {
		t.Fatalf("malus not recorded in stats: lost %v", a.Stats().TroopsLost)
	}
}

func TestWinCheckDeclaresWinnerAtThreshold(t *testing.T) {
	g := newTestGame(t, 20)
	p := addTestPlayer(g, "p1")
	conquerRect(g, p, 1, 1, 18, 18)

	g.AddExecution(NewWinCheckExecution())
	runTicks(g, 1)

	id, done := g.Winner()
	if !done {
		t.Fatalf("no winner declared at full map control")
	}
	if id != p.ID() {
		t.Fatalf("winner %s, want %s", id, p.ID())
	}
}
