package exec

import (
	"testing"

	"warfront.io/internal/game"
)

func TestPortsRunTradeRoutesPayingBothSides(t *testing.T) {
	g := newTestGame(t, 40)
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p1, 2, 2, 8, 8)
	conquerRect(g, p2, 31, 2, 37, 8)

	g.AddExecution(NewPortExecution(p1.ID(), g.Map().Ref(5, 5)))
	g.AddExecution(NewPortExecution(p2.ID(), g.Map().Ref(34, 5)))

	for i := 0; i < 1500 && (p1.Gold() == 0 || p2.Gold() == 0); i++ {
		g.ExecuteNextTick()
	}

	// One delivery pays the shipper and the receiving harbor the same route
	// payout.
	dist := g.Map().ManhattanDist(g.Map().Ref(5, 5), g.Map().Ref(34, 5))
	payout := g.Config().TradeShipGold(dist)
	if p1.Gold() < payout || p2.Gold() < payout {
		t.Fatalf("trade paid p1=%d p2=%d, want both >= %d", p1.Gold(), p2.Gold(), payout)
	}
}

func TestEmbargoStopsTradeBothDirections(t *testing.T) {
	g := newTestGame(t, 40)
	p1 := addTestPlayer(g, "p1")
	p2 := addTestPlayer(g, "p2")
	conquerRect(g, p1, 2, 2, 8, 8)
	conquerRect(g, p2, 31, 2, 37, 8)
	p1.SetEmbargo(p2, true)

	g.AddExecution(NewPortExecution(p1.ID(), g.Map().Ref(5, 5)))
	g.AddExecution(NewPortExecution(p2.ID(), g.Map().Ref(34, 5)))

	for i := 0; i < 400; i++ {
		g.ExecuteNextTick()
		if len(g.Units(game.UnitTradeShip)) != 0 {
			t.Fatalf("trade ship sailed under embargo at tick %d", i)
		}
	}
	if p1.Gold() != 0 || p2.Gold() != 0 {
		t.Fatalf("embargoed ports still earned gold: p1=%d p2=%d", p1.Gold(), p2.Gold())
	}
}
