package exec

import (
	"testing"

	"warfront.io/internal/game"
)

func TestConstructionBuildsCityAndChargesOnce(t *testing.T) {
	g := newTestGame(t, 30)
	p := addTestPlayer(g, "p1")
	conquerRect(g, p, 8, 8, 12, 12)

	cost := g.Config().UnitCost(game.UnitCity)
	duration := g.Config().ConstructionDuration(game.UnitCity)
	p.RemoveGold(p.Gold())
	p.AddGold(2 * cost)

	g.AddExecution(NewConstructionExecution(p.ID(), g.Map().Ref(10, 10), game.UnitCity))
	runTicks(g, 1)

	if len(p.UnitsOfType(game.UnitConstruction)) != 1 {
		t.Fatalf("scaffold not placed")
	}
	if p.Gold() != cost {
		t.Fatalf("gold %d after start, want %d held in the scaffold", p.Gold(), cost)
	}

	// duration countdown ticks, the completion tick, then the structure
	// execution spawned by completion runs on the tick after that.
	runTicks(g, duration+2)

	if len(p.UnitsOfType(game.UnitCity)) != 1 {
		t.Fatalf("city not completed after %d ticks", duration+3)
	}
	if len(p.UnitsOfType(game.UnitConstruction)) != 0 {
		t.Fatalf("scaffold survived completion")
	}
	// Refund then final charge: exactly one cost paid overall.
	if p.Gold() != cost {
		t.Fatalf("gold %d after completion, want %d", p.Gold(), cost)
	}
}

func TestConstructionRefusesDisabledUnit(t *testing.T) {
	g := game.NewGame("test", testMap(30, 30), testTuning(), game.Options{
		DisableNPCs:   true,
		DisabledUnits: []string{"City"},
	}, nil)
	p := addTestPlayer(g, "p1")
	conquerRect(g, p, 8, 8, 12, 12)
	p.AddGold(1 << 40)

	e := NewConstructionExecution(p.ID(), g.Map().Ref(10, 10), game.UnitCity)
	if err := e.Init(g, 0); err == nil {
		t.Fatalf("disabled unit type accepted")
	}
	if e.IsActive() {
		t.Fatalf("execution stayed active after refused init")
	}
}
