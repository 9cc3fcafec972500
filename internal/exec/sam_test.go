package exec

import (
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/game"
)

func TestSAMInterceptsAtomBomb(t *testing.T) {
	g := newTestGame(t, 80)
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p1, 7, 7, 13, 13)
	conquerRect(g, p2, 57, 57, 63, 63)
	p1.AddGold(1 << 40)
	p2.AddGold(1 << 40)

	g.AddExecution(NewMissileSiloExecution(p1.ID(), g.Map().Ref(10, 10)))
	g.AddExecution(NewSAMLauncherExecution(p2.ID(), g.Map().Ref(60, 60)))
	runTicks(g, 1)

	sams := p2.UnitsOfType(game.UnitSAMLauncher)
	if len(sams) != 1 {
		t.Fatalf("SAM launcher not built")
	}
	sam := sams[0]

	landBefore := p2.NumTilesOwned()
	g.AddExecution(NewNukeExecution(game.UnitAtomBomb, p1.ID(), g.Map().Ref(62, 62)))

	var bomb *game.Unit
	for i := 0; i < 120; i++ {
		g.ExecuteNextTick()
		if bomb == nil {
			if bombs := g.Units(game.UnitAtomBomb); len(bombs) > 0 {
				bomb = bombs[0]
			}
		}
	}

	if bomb == nil {
		t.Fatalf("atom bomb never launched")
	}
	if bomb.IsActive() {
		t.Fatalf("atom bomb still in flight after 120 ticks")
	}
	if p2.NumTilesOwned() != landBefore {
		t.Fatalf("bomb detonated: p2 tiles %d -> %d", landBefore, p2.NumTilesOwned())
	}
	if g.Map().NumFalloutTiles() != 0 {
		t.Fatalf("fallout on the map, bomb was not intercepted")
	}
	if got, want := sam.Stock(game.StockMissiles), p2.Effects().SamInterceptors-1; got != want {
		t.Fatalf("interceptor stock %d, want %d after one engagement", got, want)
	}
}

func TestWarheadPointDefenseRollsHitChance(t *testing.T) {
	for _, tc := range []struct {
		chance  float64
		fallout bool
	}{
		{1, false},
		{0, true},
	} {
		tun := testTuning()
		tun.SamWarheadHittingChance = tc.chance
		g := game.NewGame("test", testMap(80, 80), tun, game.Options{DisableNPCs: true}, zap.NewNop())
		p1 := addTestPlayer(g, "p1")
		p2 := addTestPlayer(g, "p2")
		conquerRect(g, p1, 7, 7, 13, 13)
		conquerRect(g, p2, 57, 57, 63, 63)
		p2.AddGold(1 << 40)

		g.AddExecution(NewSAMLauncherExecution(p2.ID(), g.Map().Ref(60, 60)))
		runTicks(g, 1)

		g.AddExecution(newWarheadExecution(p1.ID(), g.Map().Ref(20, 20), g.Map().Ref(62, 62), mirvWarheadSpeed))
		runTicks(g, 40)

		if got := g.Map().NumFalloutTiles() > 0; got != tc.fallout {
			t.Fatalf("hit chance %v: warhead got through=%v, want %v", tc.chance, got, tc.fallout)
		}
	}
}

func TestSamPausesBetweenInterceptorShots(t *testing.T) {
	g := newTestGame(t, 80)
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p1, 7, 7, 13, 13)
	conquerRect(g, p2, 57, 57, 63, 63)
	p1.AddGold(1 << 40)
	p2.AddGold(1 << 40)

	g.AddExecution(NewMissileSiloExecution(p1.ID(), g.Map().Ref(10, 10)))
	g.AddExecution(NewSAMLauncherExecution(p2.ID(), g.Map().Ref(60, 60)))
	runTicks(g, 1)
	sam := p2.UnitsOfType(game.UnitSAMLauncher)[0]

	g.AddExecution(NewNukeExecution(game.UnitAtomBomb, p1.ID(), g.Map().Ref(62, 62)))
	fired := false
	for i := 0; i < 60 && !fired; i++ {
		g.ExecuteNextTick()
		fired = sam.Stock(game.StockMissiles) < p2.Effects().SamInterceptors
	}

	if !fired {
		t.Fatalf("sam never fired at the inbound bomb")
	}
	// Interceptors remain, so the launcher re-aims instead of going on the
	// full reload cooldown.
	if !sam.IsInCooldown() {
		t.Fatalf("sam not pausing after a shot with interceptors left")
	}
}

func TestRadarExtendsSamEngagementRange(t *testing.T) {
	run := func(withRadar bool) bool {
		g := newTestGame(t, 160)
		p1 := addTestPlayer(g, "p1")
		p2 := addTestPlayer(g, "p2")
		conquerRect(g, p1, 7, 7, 13, 13)
		conquerRect(g, p2, 27, 127, 33, 133)
		p1.AddGold(1 << 40)
		p2.AddGold(1 << 40)

		g.AddExecution(NewMissileSiloExecution(p1.ID(), g.Map().Ref(10, 10)))
		g.AddExecution(NewSAMLauncherExecution(p2.ID(), g.Map().Ref(30, 130)))
		runTicks(g, 1)
		if withRadar {
			p2.BuildUnit(game.UnitRadar, g.Map().Ref(32, 132), 0)
		}

		// The flight path passes about 120 tiles from the launcher: outside
		// its own search range, inside the radar envelope.
		g.AddExecution(NewNukeExecution(game.UnitAtomBomb, p1.ID(), g.Map().Ref(150, 12)))
		runTicks(g, 120)
		return g.Map().NumFalloutTiles() == 0
	}

	if run(false) {
		t.Fatalf("bomb outside the bare search range was engaged")
	}
	if !run(true) {
		t.Fatalf("radar-backed launcher let the bomb through")
	}
}

func TestSiloLaunchSpendsTubeAndRegenerates(t *testing.T) {
	g := newTestGame(t, 40)
	p := addTestPlayer(g, "p1")
	conquerRect(g, p, 7, 7, 13, 13)
	p.AddGold(1 << 40)

	g.AddExecution(NewMissileSiloExecution(p.ID(), g.Map().Ref(10, 10)))
	runTicks(g, 1)

	silo := p.UnitsOfType(game.UnitMissileSilo)[0]
	if got, want := silo.Stock(game.StockLaunchTubes), p.Effects().MissileSiloTubes; got != want {
		t.Fatalf("fresh silo stocked %d tubes, want %d", got, want)
	}

	// Nuke our own wilderness border; the launch empties the tube.
	g.AddExecution(NewNukeExecution(game.UnitAtomBomb, p.ID(), g.Map().Ref(30, 30)))
	runTicks(g, 4)

	if silo.Stock(game.StockLaunchTubes) != 0 {
		t.Fatalf("launch did not spend a tube: %d left", silo.Stock(game.StockLaunchTubes))
	}
	if !silo.IsInCooldown() {
		t.Fatalf("empty silo not on cooldown")
	}

	runTicks(g, p.Effects().MissileSiloTubeRegenTime+2)
	if silo.Stock(game.StockLaunchTubes) == 0 {
		t.Fatalf("tube did not regenerate")
	}
}

func TestSiloWithTubesLeftTakesShortCooldown(t *testing.T) {
	g := newTestGame(t, 40)
	p := addTestPlayer(g, "p1")
	conquerRect(g, p, 7, 7, 13, 13)
	p.AddGold(1 << 40)

	g.AddExecution(NewMissileSiloExecution(p.ID(), g.Map().Ref(10, 10)))
	runTicks(g, 1)
	silo := p.UnitsOfType(game.UnitMissileSilo)[0]
	silo.SetStock(game.StockLaunchTubes, 2)

	g.AddExecution(NewNukeExecution(game.UnitAtomBomb, p.ID(), g.Map().Ref(30, 30)))
	runTicks(g, 4)

	if got := silo.Stock(game.StockLaunchTubes); got != 1 {
		t.Fatalf("launch left %d tubes, want 1", got)
	}
	if !silo.IsInCooldown() {
		t.Fatalf("silo skipped the launch pause")
	}
	runTicks(g, g.Config().T.SiloCooldown+2)
	if silo.IsInCooldown() {
		t.Fatalf("silo with a loaded tube still cooling past the launch pause")
	}
}
