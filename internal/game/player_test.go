package game

import (
	"testing"

	"warfront.io/internal/tuning"
)

func TestTroopAccounting(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")
	p.RemoveTroops(p.Troops())
	p.AddTroops(100)

	if got := p.RemoveTroops(30); got != 30 {
		t.Fatalf("removed %v, want 30", got)
	}
	if p.Troops() != 70 {
		t.Fatalf("troops %v, want 70", p.Troops())
	}

	// Dust-sized removals are ignored to keep float drift out of the
	// lockstep state.
	if got := p.RemoveTroops(0.5); got != 0 {
		t.Fatalf("sub-unit removal returned %v", got)
	}
	if p.Troops() != 70 {
		t.Fatalf("troops %v after ignored removal, want 70", p.Troops())
	}

	if got := p.RemoveTroops(1000); got != 70 {
		t.Fatalf("over-removal returned %v, want 70", got)
	}
	if p.Troops() != 0 {
		t.Fatalf("troops %v, want 0", p.Troops())
	}
}

func TestWorkersRoundUpWithFloorOfOne(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")

	p.RemoveWorkers(1 << 40)
	if p.Workers() != 1 {
		t.Fatalf("workers floor is %v, want 1", p.Workers())
	}
	p.AddWorkers(10.2)
	if p.Workers() != 12 {
		t.Fatalf("workers %v, want ceil(11.2) = 12", p.Workers())
	}
}

func TestOffensiveTroopsSumOutgoingAttacks(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	p1.CreateAttack(p2, 1000.7, 0, false)
	p1.CreateAttack(nil, 500.9, 0, false)
	if got := p1.OffensiveTroops(); got != 1501 {
		t.Fatalf("offensive troops %v, want floor(1501.6) = 1501", got)
	}
}

func TestUnlockTechIdempotent(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")

	tech := tuning.Techs[0]
	p.AddGold(2 * tech.Cost)

	if !p.UnlockTech(tech.ID) {
		t.Fatalf("first unlock refused")
	}
	if !p.HasTech(tech.ID) {
		t.Fatalf("tech not recorded")
	}
	goldAfter := p.Gold()

	// Second unlock: no-op, no charge.
	if p.UnlockTech(tech.ID) {
		t.Fatalf("repeat unlock reported success")
	}
	if p.Gold() != goldAfter {
		t.Fatalf("repeat unlock charged gold: %d -> %d", goldAfter, p.Gold())
	}
}

func TestUnlockTechRequiresGold(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")
	p.RemoveGold(p.Gold())

	tech := tuning.Techs[0]
	if p.UnlockTech(tech.ID) {
		t.Fatalf("unlock succeeded with no gold")
	}
	if p.HasTech(tech.ID) {
		t.Fatalf("tech recorded without payment")
	}
}

func TestBreakAllianceMarksTraitor(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	al := p1.FormAlliance(p2)
	if !p1.IsAlliedWith(p2) || !p2.IsAlliedWith(p1) {
		t.Fatalf("alliance not symmetric")
	}

	p1.BreakAlliance(al)
	if p1.IsAlliedWith(p2) || p2.IsAlliedWith(p1) {
		t.Fatalf("alliance survived the break")
	}
	if !p1.IsTraitor() {
		t.Fatalf("breaker not marked traitor")
	}
	if p2.IsTraitor() {
		t.Fatalf("victim marked traitor")
	}
}

func TestTraitorMarkExpires(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	al := p1.FormAlliance(p2)
	p1.BreakAlliance(al)
	if !p1.IsTraitor() {
		t.Fatalf("not marked traitor")
	}
	for i := 0; i < g.Config().TraitorDurationTicks()+1; i++ {
		g.ExecuteNextTick()
	}
	if p1.IsTraitor() {
		t.Fatalf("traitor mark did not expire")
	}
}

func TestSetTroopRatiosRejectsOutOfRange(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")

	if err := p.SetTroopRatios(0.5, 0.25); err != nil {
		t.Fatalf("valid ratios rejected: %v", err)
	}
	if err := p.SetTroopRatios(1.5, 0); err == nil {
		t.Fatalf("target ratio above 1 accepted")
	}
	if err := p.SetTroopRatios(0.5, -0.1); err == nil {
		t.Fatalf("negative reserve ratio accepted")
	}
}
