package exec

import (
	"fmt"
	"sort"

	"warfront.io/internal/game"
)

// NukeExecution is the life of one warhead: a short launch delay, spawning at
// a silo with a loaded tube, a ballistic flight, and the detonation. Blast
// tiles inside the inner radius are destroyed with certainty; the outer ring
// resolves per tile with a seeded coin flip so every replica draws the same
// crater.
type NukeExecution struct {
	active bool
	g      *game.Game

	typ      game.UnitType
	senderID game.PlayerID
	dst      game.TileRef
	src      game.TileRef
	hasSrc   bool
	speed    int

	player     *game.Player
	nuke       *game.Unit
	rand       *game.Rand
	delayTicks int

	toDestroy []game.TileRef
}

func NewNukeExecution(typ game.UnitType, senderID game.PlayerID, dst game.TileRef) *NukeExecution {
	return &NukeExecution{active: true, typ: typ, senderID: senderID, dst: dst, delayTicks: 2, speed: -1}
}

// newWarheadExecution is used by a separating MIRV: the warhead spawns midair
// at the bus position and dives immediately.
func newWarheadExecution(senderID game.PlayerID, src, dst game.TileRef, speed int) *NukeExecution {
	return &NukeExecution{
		active: true, typ: game.UnitMIRVWarhead, senderID: senderID,
		dst: dst, src: src, hasSrc: true, speed: speed,
	}
}

func (e *NukeExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *NukeExecution) IsActive() bool               { return e.active }

func (e *NukeExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.senderID)
	if !ok {
		e.active = false
		return fmt.Errorf("nuke: sender %s not found", e.senderID)
	}
	e.player = p
	e.rand = game.NewRand(int64(tick) + 1)
	if e.speed == -1 {
		e.speed = g.Config().T.NukeSpeed
	}
	return nil
}

func (e *NukeExecution) Tick(tick game.Tick) {
	if e.delayTicks > 0 {
		e.delayTicks--
		return
	}

	if e.nuke == nil {
		spawn := e.src
		if !e.hasSrc {
			s, ok := e.player.CanBuild(e.typ, e.dst)
			if !ok {
				e.active = false
				return
			}
			spawn = s
		}
		e.nuke = e.player.BuildUnit(e.typ, spawn, 0)
		e.nuke.SetTargetTile(e.dst)

		// Launching spends a tube; an empty silo goes on full cooldown,
		// one with tubes left pauses only for the launch cooldown.
		for _, silo := range e.player.UnitsOfType(game.UnitMissileSilo) {
			if silo.Tile() != spawn {
				continue
			}
			silo.RemoveStock(game.StockLaunchTubes, 1)
			if silo.Stock(game.StockLaunchTubes) == 0 {
				silo.SetCooldown(e.player.Effects().MissileSiloTubeRegenTime)
			} else {
				silo.SetCooldown(e.g.Config().T.SiloCooldown)
			}
			break
		}
		return
	}

	// Intercepted mid-flight.
	if !e.nuke.IsActive() {
		e.active = false
		return
	}

	for i := 0; i < e.speed; i++ {
		next, done := airStep(e.g.Map(), e.nuke.Tile(), e.dst)
		if done {
			e.detonate()
			return
		}
		e.nuke.Move(next)
	}
}

// tilesToDestroy computes the crater once: all tiles within the inner radius
// plus a 50% sample of the outer ring, in ascending tile order.
func (e *NukeExecution) tilesToDestroy() []game.TileRef {
	if e.toDestroy != nil {
		return e.toDestroy
	}
	gm := e.g.Map()
	inner, outer := e.g.Config().NukeMagnitude(e.typ)
	inner2, outer2 := inner*inner, outer*outer
	cx, cy := gm.XY(e.dst)

	for dy := -outer; dy <= outer; dy++ {
		for dx := -outer; dx <= outer; dx++ {
			if !gm.InBounds(cx+dx, cy+dy) {
				continue
			}
			d2 := dx*dx + dy*dy
			if d2 > outer2 {
				continue
			}
			if d2 <= inner2 || e.rand.Chance(2) {
				e.toDestroy = append(e.toDestroy, gm.Ref(cx+dx, cy+dy))
			}
		}
	}
	return e.toDestroy
}

func (e *NukeExecution) detonate() {
	gm := e.g.Map()
	toDestroy := e.tilesToDestroy()
	isCruise := e.typ == game.UnitCruiseMissile

	damagedTiles := make(map[uint16]int)
	for _, tile := range toDestroy {
		owner := e.g.Owner(tile)
		if owner != nil {
			damagedTiles[owner.SmallID()]++
			if !isCruise {
				owner.Relinquish(tile)
			}
			cfg := e.g.Config()
			owner.RemoveTroops(cfg.NukeDeathFactor(owner.Troops(), float64(owner.NumTilesOwned())))
			owner.RemoveWorkers(cfg.NukeDeathFactor(owner.Workers(), float64(owner.NumTilesOwned())))
			for _, a := range owner.OutgoingAttacks() {
				a.SetTroops(a.Troops() - cfg.NukeDeathFactor(a.Troops(), float64(owner.NumTilesOwned())))
			}
			for _, ship := range owner.UnitsOfType(game.UnitTransportShip) {
				ship.SetTroops(ship.Troops() - cfg.NukeDeathFactor(ship.Troops(), float64(owner.NumTilesOwned())))
			}
		}
		if gm.IsLand(tile) && !isCruise {
			gm.SetFallout(tile, true)
		}
	}

	e.breakAlliances(damagedTiles)
	e.damageUnits()

	e.nuke.SetReachedTarget()
	e.nuke.Delete()
	e.active = false
}

// breakAlliances severs any alliance with a player who lost more than the
// configured tile threshold. MIRV warheads are exempt: the bus already paid
// the diplomatic price.
func (e *NukeExecution) breakAlliances(damagedTiles map[uint16]int) {
	if e.typ == game.UnitMIRVWarhead {
		return
	}
	threshold := e.g.Config().T.NukeAllianceBreak
	ids := make([]int, 0, len(damagedTiles))
	for id := range damagedTiles {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		if damagedTiles[uint16(id)] <= threshold {
			continue
		}
		other := e.g.PlayerBySmallID(uint16(id))
		if other == nil || other == e.player {
			continue
		}
		if al := e.player.AllianceWith(other); al != nil {
			e.player.BreakAlliance(al)
		}
		other.UpdateRelation(e.player, -100)
	}
}

// damageUnits applies collateral to ground units in the outer radius. A
// cruise missile knocks out defensive structures (or finishes off ones
// already damaged); every other warhead levels everything.
func (e *NukeExecution) damageUnits() {
	_, outer := e.g.Config().NukeMagnitude(e.typ)
	outer2 := outer * outer
	for _, u := range e.g.Units() {
		if u.Type().IsNukeType() || u == e.nuke {
			continue
		}
		if e.g.Map().EuclideanDistSquared(e.dst, u.Tile()) >= outer2 {
			continue
		}
		if e.typ != game.UnitCruiseMissile {
			u.Delete()
			continue
		}
		switch u.Type() {
		case game.UnitSAMLauncher, game.UnitDefensePost, game.UnitMissileSilo:
			if u.IsDamaged() {
				u.Delete()
			} else {
				u.SetRepairCooldown(e.g.Config().T.UnitRepairCooldown)
			}
		}
	}
}
