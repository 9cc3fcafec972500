package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// ConstructionExecution runs the Building -> Complete countdown for any
// buildable unit type. Gold is taken when the scaffold goes up and refunded
// the instant before the finished unit charges it again, so a captured
// scaffold hands the invested gold to the captor.
type ConstructionExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	tile    game.TileRef
	typ     game.UnitType

	player       *game.Player
	construction *game.Unit
	cost         int64
	ticksLeft    int
}

func NewConstructionExecution(ownerID game.PlayerID, tile game.TileRef, typ game.UnitType) *ConstructionExecution {
	return &ConstructionExecution{active: true, ownerID: ownerID, tile: tile, typ: typ}
}

func (e *ConstructionExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *ConstructionExecution) IsActive() bool               { return e.active }

func (e *ConstructionExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("construction: owner %s not found", e.ownerID)
	}
	if g.Config().IsUnitDisabled(e.typ) {
		e.active = false
		return fmt.Errorf("construction: %s is disabled in this lobby", e.typ)
	}
	e.player = p
	return nil
}

func (e *ConstructionExecution) Tick(tick game.Tick) {
	if e.construction == nil {
		duration := e.g.Config().ConstructionDuration(e.typ)
		if duration == 0 {
			e.complete()
			e.active = false
			return
		}
		spawn, ok := e.player.CanBuild(e.typ, e.tile)
		if !ok {
			e.active = false
			return
		}
		e.construction = e.player.BuildUnit(game.UnitConstruction, spawn, 0)
		e.construction.SetConstructionType(e.typ)
		e.cost = e.g.Config().UnitCost(e.typ)
		e.player.RemoveGold(e.cost)
		e.ticksLeft = duration
		return
	}

	if !e.construction.IsActive() {
		e.active = false
		return
	}
	// Ownership may have transferred with the tile.
	e.player = e.construction.Owner()

	if e.ticksLeft == 0 {
		e.construction.Delete()
		e.player.AddGold(e.cost)
		e.complete()
		e.active = false
		return
	}
	e.ticksLeft--
}

func (e *ConstructionExecution) complete() {
	id := e.player.ID()
	switch e.typ {
	case game.UnitCruiseMissile, game.UnitAtomBomb, game.UnitHydrogenBomb:
		e.g.AddExecution(NewNukeExecution(e.typ, id, e.tile))
	case game.UnitMIRV:
		e.g.AddExecution(NewMIRVExecution(id, e.tile))
	case game.UnitMissileSilo:
		e.g.AddExecution(NewMissileSiloExecution(id, e.tile))
	case game.UnitSAMLauncher:
		e.g.AddExecution(NewSAMLauncherExecution(id, e.tile))
	case game.UnitPort:
		e.g.AddExecution(NewPortExecution(id, e.tile))
	case game.UnitWarship:
		e.g.AddExecution(NewWarshipExecution(id, e.tile))
	default:
		e.g.AddExecution(NewStructureExecution(id, e.tile, e.typ))
	}
}
