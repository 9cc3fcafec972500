package exec

import (
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/game"
)

// seaMap is open water dotted with plains islands given as inclusive tile
// rectangles.
func seaMap(w, h int, islands ...[4]int) *game.GameMap {
	terrain := make([]game.TerrainType, w*h)
	for _, r := range islands {
		for y := r[1]; y <= r[3]; y++ {
			for x := r[0]; x <= r[2]; x++ {
				terrain[y*w+x] = game.Plains
			}
		}
	}
	return game.NewGameMap(w, h, terrain)
}

func TestWarshipCapturesTradeShipAndReroutesCargo(t *testing.T) {
	gm := seaMap(40, 40, [4]int{2, 2, 8, 8}, [4]int{31, 2, 37, 8}, [4]int{2, 31, 8, 37})
	g := game.NewGame("test", gm, testTuning(), game.Options{DisableNPCs: true}, zap.NewNop())
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	p3 := addTestPlayer(g, "p3")
	conquerRect(g, p1, 2, 31, 8, 37)
	conquerRect(g, p2, 2, 2, 8, 8)
	conquerRect(g, p3, 31, 2, 37, 8)

	p1.BuildUnit(game.UnitPort, g.Map().Ref(5, 34), 0)
	p2.BuildUnit(game.UnitPort, g.Map().Ref(5, 5), 0)
	dstPort := p3.BuildUnit(game.UnitPort, g.Map().Ref(34, 5), 0)

	// The raider sits on the trade lane between the two harbors.
	g.AddExecution(NewWarshipExecution(p1.ID(), g.Map().Ref(20, 5)))
	g.AddExecution(NewTradeShipExecution(p2.ID(), g.Map().Ref(5, 5), dstPort))
	runTicks(g, 200)

	if p1.Gold() == 0 {
		t.Fatalf("captured cargo never delivered to the captor's harbor")
	}
	if p2.Gold() != 0 || p3.Gold() != 0 {
		t.Fatalf("original traders were paid despite the capture: p2=%d p3=%d", p2.Gold(), p3.Gold())
	}
	if len(g.Units(game.UnitWarship)) != 1 {
		t.Fatalf("warship lost in a trade ship engagement")
	}
}

func TestWarshipSinksInvasionTransport(t *testing.T) {
	gm := seaMap(40, 40, [4]int{2, 2, 8, 8}, [4]int{31, 2, 37, 8})
	g := game.NewGame("test", gm, testTuning(), game.Options{DisableNPCs: true}, zap.NewNop())
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p2, 2, 2, 8, 8)
	p2.AddTroops(10_000)

	g.AddExecution(NewWarshipExecution(p1.ID(), g.Map().Ref(20, 5)))
	g.AddExecution(NewTransportExecution(p2.ID(), "", 2_000, g.Map().Ref(34, 5)))
	runTicks(g, 100)

	if len(g.Units(game.UnitTransportShip)) != 0 {
		t.Fatalf("transport still afloat past the blockade")
	}
	if owner := g.Owner(g.Map().Ref(34, 5)); owner != nil {
		t.Fatalf("invasion landed: beachhead owned by %s", owner)
	}
}

func TestWarshipsTradeOneForOne(t *testing.T) {
	gm := seaMap(40, 40, [4]int{2, 2, 8, 8})
	g := game.NewGame("test", gm, testTuning(), game.Options{DisableNPCs: true}, zap.NewNop())
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")

	g.AddExecution(NewWarshipExecution(p1.ID(), g.Map().Ref(15, 20)))
	g.AddExecution(NewWarshipExecution(p2.ID(), g.Map().Ref(25, 20)))
	runTicks(g, 50)

	if n := len(g.Units(game.UnitWarship)); n != 0 {
		t.Fatalf("%d warships survived a mutual engagement, want 0", n)
	}
}
