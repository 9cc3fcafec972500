package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// MissileSiloExecution builds a silo and runs its launch-tube reload machine.
// Tubes only regenerate while below the owner's tube cap; launches are made
// by NukeExecution, which decrements the stock directly.
type MissileSiloExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	tile    game.TileRef

	player     *game.Player
	silo       *game.Unit
	nextReload int
}

func NewMissileSiloExecution(ownerID game.PlayerID, tile game.TileRef) *MissileSiloExecution {
	return &MissileSiloExecution{active: true, ownerID: ownerID, tile: tile}
}

func (e *MissileSiloExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *MissileSiloExecution) IsActive() bool               { return e.active }

func (e *MissileSiloExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("silo: owner %s not found", e.ownerID)
	}
	e.player = p

	spawn, ok := p.CanBuild(game.UnitMissileSilo, e.tile)
	if !ok {
		e.active = false
		return fmt.Errorf("silo: %s cannot build at %d", p, e.tile)
	}
	e.silo = p.BuildUnit(game.UnitMissileSilo, spawn, 0)
	e.silo.SetStock(game.StockLaunchTubes, p.Effects().MissileSiloTubes)
	e.nextReload = p.Effects().MissileSiloTubeRegenTime
	return nil
}

func (e *MissileSiloExecution) Tick(tick game.Tick) {
	if !e.silo.IsActive() {
		e.active = false
		return
	}
	e.player = e.silo.Owner()

	maxTubes := e.player.Effects().MissileSiloTubes
	regen := e.player.Effects().MissileSiloTubeRegenTime
	if e.silo.Stock(game.StockLaunchTubes) < maxTubes {
		e.nextReload--
		if e.nextReload <= 0 {
			e.silo.AddStock(game.StockLaunchTubes, 1)
			e.nextReload = regen
		}
	} else {
		e.nextReload = regen
	}
}
