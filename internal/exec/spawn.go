package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// SpawnExecution places (or re-places) a player on the map during the spawn
// phase. Re-spawning relinquishes the previous pick first, so a player only
// ever holds one spawn site when the phase ends.
type SpawnExecution struct {
	active   bool
	g        *game.Game
	playerID game.PlayerID
	tile     game.TileRef
}

func NewSpawnExecution(playerID game.PlayerID, tile game.TileRef) *SpawnExecution {
	return &SpawnExecution{active: true, playerID: playerID, tile: tile}
}

func (e *SpawnExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *SpawnExecution) IsActive() bool               { return e.active }

func (e *SpawnExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	if g.Map().IsWater(e.tile) {
		e.active = false
		return fmt.Errorf("spawn: tile %d is water", e.tile)
	}
	if _, ok := g.PlayerByID(e.playerID); !ok {
		e.active = false
		return fmt.Errorf("spawn: player %s not found", e.playerID)
	}
	return nil
}

func (e *SpawnExecution) Tick(tick game.Tick) {
	e.active = false
	if !e.g.InSpawnPhase() {
		return
	}
	p, ok := e.g.PlayerByID(e.playerID)
	if !ok {
		return
	}

	respawn := p.HasSpawned()
	if respawn {
		for _, t := range p.TilesSorted() {
			p.Relinquish(t)
		}
	}
	for _, t := range spawnTiles(e.g, e.tile) {
		p.Conquer(t)
	}
	p.MarkSpawned()

	if !respawn {
		e.g.AddExecution(NewPlayerExecution(e.playerID))
		switch p.Type() {
		case game.PlayerBot:
			e.g.AddExecution(NewBotExecution(e.playerID))
		case game.PlayerFakeHuman:
			e.g.AddExecution(NewNationExecution(e.playerID))
		}
	}
}

// spawnTiles is the starting footprint: every free land tile within euclidean
// distance 3 of the chosen tile, in ascending tile order.
func spawnTiles(g *game.Game, center game.TileRef) []game.TileRef {
	gm := g.Map()
	cx, cy := gm.XY(center)
	var out []game.TileRef
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if dx*dx+dy*dy > 9 || !gm.InBounds(cx+dx, cy+dy) {
				continue
			}
			t := gm.Ref(cx+dx, cy+dy)
			if gm.IsLand(t) && !gm.HasOwner(t) {
				out = append(out, t)
			}
		}
	}
	return out
}
