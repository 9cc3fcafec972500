package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// StructureExecution hosts the passive structures (cities, defense posts,
// barracks, hospitals and so on): build the unit, follow ownership
// transfers, count down repairs, and die with the unit. Structures with real
// behavior (silos, SAM launchers, ports, warships) have their own
// executions.
type StructureExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	tile    game.TileRef
	typ     game.UnitType

	player *game.Player
	unit   *game.Unit
}

func NewStructureExecution(ownerID game.PlayerID, tile game.TileRef, typ game.UnitType) *StructureExecution {
	return &StructureExecution{active: true, ownerID: ownerID, tile: tile, typ: typ}
}

func (e *StructureExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *StructureExecution) IsActive() bool               { return e.active }

func (e *StructureExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("structure: owner %s not found", e.ownerID)
	}
	e.player = p

	spawn, ok := p.CanBuild(e.typ, e.tile)
	if !ok {
		e.active = false
		return fmt.Errorf("structure: %s cannot build %s at %d", p, e.typ, e.tile)
	}
	e.unit = p.BuildUnit(e.typ, spawn, 0)
	return nil
}

func (e *StructureExecution) Tick(tick game.Tick) {
	if !e.unit.IsActive() {
		e.active = false
		return
	}
	// Capture transfers happen in the conquer path; just follow along.
	e.player = e.unit.Owner()
}
