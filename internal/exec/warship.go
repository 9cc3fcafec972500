package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

const (
	warshipSpeed       = 2
	warshipSearchRange = 100
	warshipPatrolRange = 50
	warshipFireRange   = 5
)

// WarshipExecution patrols the waters around its launch point and engages
// hostile shipping once its gun reaches: transports are sunk, trade ships
// captured, and an enemy warship trades itself one for one.
type WarshipExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	center  game.TileRef

	player *game.Player
	ship   *game.Unit
	rand   *game.Rand
	patrol game.TileRef
	target *game.Unit
}

func NewWarshipExecution(ownerID game.PlayerID, tile game.TileRef) *WarshipExecution {
	return &WarshipExecution{active: true, ownerID: ownerID, center: tile}
}

func (e *WarshipExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *WarshipExecution) IsActive() bool               { return e.active }

func (e *WarshipExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("warship: owner %s not found", e.ownerID)
	}
	e.player = p

	spawn, ok := p.CanBuild(game.UnitWarship, e.center)
	if !ok {
		e.active = false
		return fmt.Errorf("warship: %s cannot launch at %d", p, e.center)
	}
	e.ship = p.BuildUnit(game.UnitWarship, spawn, 0)
	e.rand = game.NewRand(int64(e.ship.ID()))
	e.patrol = e.center
	return nil
}

func (e *WarshipExecution) Tick(tick game.Tick) {
	if !e.ship.IsActive() {
		e.active = false
		return
	}
	e.player = e.ship.Owner()

	if e.target != nil && (!e.target.IsActive() || e.player.IsFriendly(e.target.Owner())) {
		e.target = nil
	}
	if e.target == nil {
		e.target = e.acquireTarget()
	}
	if e.target == nil {
		e.patrolStep()
		return
	}

	gm := e.g.Map()
	for i := 0; i < warshipSpeed; i++ {
		if gm.ManhattanDist(e.ship.Tile(), e.target.Tile()) <= warshipFireRange {
			e.engage()
			return
		}
		next, done := airStep(gm, e.ship.Tile(), e.target.Tile())
		if done {
			e.engage()
			return
		}
		e.ship.Move(next)
	}
	if gm.ManhattanDist(e.ship.Tile(), e.target.Tile()) <= warshipFireRange {
		e.engage()
	}
}

// acquireTarget picks the nearest hostile ship in range by manhattan
// distance, unit id breaking ties.
func (e *WarshipExecution) acquireTarget() *game.Unit {
	gm := e.g.Map()
	var best *game.Unit
	bestD := 0
	ships := e.g.Units(game.UnitTransportShip, game.UnitTradeShip, game.UnitWarship)
	for _, u := range ships {
		if e.player.IsFriendly(u.Owner()) {
			continue
		}
		d := gm.ManhattanDist(e.ship.Tile(), u.Tile())
		if d >= warshipSearchRange {
			continue
		}
		if best == nil || d < bestD || (d == bestD && u.ID() < best.ID()) {
			best, bestD = u, d
		}
	}
	return best
}

func (e *WarshipExecution) engage() {
	switch e.target.Type() {
	case game.UnitTransportShip:
		e.target.Delete()
	case game.UnitTradeShip:
		e.player.CaptureUnit(e.target)
	case game.UnitWarship:
		e.target.Delete()
		e.ship.Delete()
	}
	e.target = nil
}

func (e *WarshipExecution) patrolStep() {
	next, done := airStep(e.g.Map(), e.ship.Tile(), e.patrol)
	if done {
		e.patrol = e.nextPatrolTile()
		return
	}
	e.ship.Move(next)
}

// nextPatrolTile samples water tiles in a box around the patrol center,
// falling back to the center when the draw keeps landing on terrain.
func (e *WarshipExecution) nextPatrolTile() game.TileRef {
	gm := e.g.Map()
	cx, cy := gm.XY(e.center)
	for i := 0; i < 20; i++ {
		x := cx + e.rand.NextInt(-warshipPatrolRange/2, warshipPatrolRange/2+1)
		y := cy + e.rand.NextInt(-warshipPatrolRange/2, warshipPatrolRange/2+1)
		if !gm.InBounds(x, y) {
			continue
		}
		t := gm.Ref(x, y)
		if gm.IsWater(t) {
			return t
		}
	}
	return e.center
}
