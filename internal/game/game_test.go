package game

import (
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/tuning"
)

// flatMap builds a map that is all plains inside the water frame.
func flatMap(w, h int) *GameMap {
	terrain := make([]TerrainType, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				terrain[y*w+x] = Water
			} else {
				terrain[y*w+x] = Plains
			}
		}
	}
	return NewGameMap(w, h, terrain)
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	tun := tuning.Defaults()
	tun.SpawnPhaseTurns = 0
	tun.SpawnImmunity = 0
	return NewGame("test", flatMap(20, 20), tun, Options{DisableNPCs: true}, zap.NewNop())
}

func addPlayer(g *Game, id string) *Player {
	return g.AddPlayer(PlayerInfo{
		ID: PlayerID(id), ClientID: ClientID(id), Name: id, Type: PlayerHuman,
	})
}

// A tile has exactly one owner; conquering moves it atomically.
func TestConquerIsExclusive(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	tile := g.Map().Ref(5, 5)
	p1.Conquer(tile)
	if g.Owner(tile) != p1 {
		t.Fatalf("p1 does not own conquered tile")
	}
	if p1.NumTilesOwned() != 1 {
		t.Fatalf("p1 owns %d tiles, want 1", p1.NumTilesOwned())
	}

	p2.Conquer(tile)
	if g.Owner(tile) != p2 {
		t.Fatalf("ownership did not transfer")
	}
	if p1.NumTilesOwned() != 0 || p2.NumTilesOwned() != 1 {
		t.Fatalf("counts wrong after transfer: p1=%d p2=%d", p1.NumTilesOwned(), p2.NumTilesOwned())
	}
}

// Interior tiles fall off the border set as the territory grows around
// them.
func TestBorderCacheTracksFrontier(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")

	center := g.Map().Ref(10, 10)
	p.Conquer(center)
	if len(p.BorderTilesSorted()) != 1 {
		t.Fatalf("single tile should be its own border")
	}

	// Surround the center completely.
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		p.Conquer(g.Map().Ref(10+d[0], 10+d[1]))
	}
	for _, b := range p.BorderTilesSorted() {
		if b == center {
			t.Fatalf("enclosed tile still on border")
		}
	}
	if len(p.BorderTilesSorted()) != 4 {
		t.Fatalf("border size %d, want 4", len(p.BorderTilesSorted()))
	}
}

// Structures on a conquered tile change hands, except types that are
// destroyed on capture.
func TestConquerCapturesStructures(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	cityTile := g.Map().Ref(4, 4)
	labTile := g.Map().Ref(12, 12)
	p1.Conquer(cityTile)
	p1.Conquer(labTile)
	p1.AddGold(1 << 40)
	city := p1.BuildUnit(UnitCity, cityTile, 0)
	lab := p1.BuildUnit(UnitResearchLab, labTile, 0)

	p2.Conquer(cityTile)
	if city.Owner() != p2 || !city.IsActive() {
		t.Fatalf("city was not captured")
	}

	p2.Conquer(labTile)
	if lab.IsActive() {
		t.Fatalf("research lab should be destroyed on capture")
	}
}

// The state hash must be insensitive to call order and sensitive to any
// state change.
func TestHashStableAndSensitive(t *testing.T) {
	g := newTestGame(t)
	p := addPlayer(g, "p1")
	p.Conquer(g.Map().Ref(5, 5))

	h1 := g.Hash()
	if h2 := g.Hash(); h2 != h1 {
		t.Fatalf("hash changed without state change")
	}
	if len(h1) != 64 {
		t.Fatalf("hash length %d, want 64 hex chars", len(h1))
	}

	p.Conquer(g.Map().Ref(5, 6))
	if g.Hash() == h1 {
		t.Fatalf("hash blind to a conquered tile")
	}

	before := g.Hash()
	p.AddGold(1)
	if g.Hash() == before {
		t.Fatalf("hash blind to gold")
	}
}

// Executions added during a tick must not run until the next tick.
type recordingExecution struct {
	active  bool
	ranAt   []Tick
	spawner bool
	g       *Game
}

func (e *recordingExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *recordingExecution) IsActive() bool               { return e.active }
func (e *recordingExecution) Init(g *Game, tick Tick) error {
	e.g = g
	return nil
}
func (e *recordingExecution) Tick(tick Tick) {
	e.ranAt = append(e.ranAt, tick)
	if e.spawner && len(e.ranAt) == 1 {
		e.g.AddExecution(&recordingExecution{active: true})
	}
}

func TestExecutionsAddedMidTickRunNextTick(t *testing.T) {
	g := newTestGame(t)
	parent := &recordingExecution{active: true, spawner: true}
	g.AddExecution(parent)

	g.ExecuteNextTick()
	if len(parent.ranAt) != 1 || parent.ranAt[0] != 0 {
		t.Fatalf("parent ran at %v", parent.ranAt)
	}
	if g.NumExecutions() != 1 {
		t.Fatalf("child adopted too early: %d active executions", g.NumExecutions())
	}

	g.ExecuteNextTick()
	if g.NumExecutions() != 2 {
		t.Fatalf("child not adopted on the next tick")
	}
}

func TestEliminatedPlayerSurfacesInUpdates(t *testing.T) {
	g := newTestGame(t)
	p1 := addPlayer(g, "p1")
	p2 := addPlayer(g, "p2")

	tile := g.Map().Ref(7, 7)
	p1.Conquer(tile)
	_, _, _ = g.Updates().Drain()

	p2.Conquer(tile)
	_, _, eliminated := g.Updates().Drain()
	found := false
	for _, id := range eliminated {
		if id == p1.ID() {
			found = true
		}
	}
	if !found {
		t.Fatalf("elimination not reported: %+v", eliminated)
	}
}
