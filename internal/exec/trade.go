package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

const tradeShipSpeed = 3

// PortExecution builds a harbor and runs its trade loop: every so often a
// freighter departs for another player's port, paying both sides on arrival.
// Ports never trade across an embargo in either direction.
type PortExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	tile    game.TileRef

	player *game.Player
	port   *game.Unit
	rand   *game.Rand
}

func NewPortExecution(ownerID game.PlayerID, tile game.TileRef) *PortExecution {
	return &PortExecution{active: true, ownerID: ownerID, tile: tile}
}

func (e *PortExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *PortExecution) IsActive() bool               { return e.active }

func (e *PortExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("port: owner %s not found", e.ownerID)
	}
	e.player = p

	spawn, ok := p.CanBuild(game.UnitPort, e.tile)
	if !ok {
		e.active = false
		return fmt.Errorf("port: %s cannot build at %d", p, e.tile)
	}
	e.port = p.BuildUnit(game.UnitPort, spawn, 0)
	e.rand = game.NewRand(int64(e.port.ID()))
	return nil
}

func (e *PortExecution) Tick(tick game.Tick) {
	if !e.port.IsActive() {
		e.active = false
		return
	}
	e.player = e.port.Owner()
	if e.port.IsDamaged() {
		return
	}

	rate := e.g.Config().TradeShipSpawnRate(len(e.g.Units(game.UnitPort)))
	if !e.rand.Chance(rate) {
		return
	}
	dst := e.pickDestination()
	if dst == nil {
		return
	}
	e.g.AddExecution(NewTradeShipExecution(e.player.ID(), e.port.Tile(), dst))
}

// pickDestination draws a random foreign port that neither side embargoes.
// Allies and teammates are fair trade partners.
func (e *PortExecution) pickDestination() *game.Unit {
	var eligible []*game.Unit
	for _, u := range e.g.Units(game.UnitPort) {
		other := u.Owner()
		if other == e.player {
			continue
		}
		if e.player.HasEmbargoAgainst(other) || other.HasEmbargoAgainst(e.player) {
			continue
		}
		eligible = append(eligible, u)
	}
	if len(eligible) == 0 {
		return nil
	}
	return eligible[e.rand.NextInt(0, len(eligible))]
}

// TradeShipExecution sails a freighter from its home port to the destination
// port. On arrival the ship's owner and the destination owner each earn the
// route payout. A warship capturing the ship mid-route reroutes the cargo to
// the captor's nearest port; the captor then collects alone.
type TradeShipExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	src     game.TileRef
	dstPort *game.Unit

	owner *game.Player
	ship  *game.Unit
}

func NewTradeShipExecution(ownerID game.PlayerID, src game.TileRef, dstPort *game.Unit) *TradeShipExecution {
	return &TradeShipExecution{active: true, ownerID: ownerID, src: src, dstPort: dstPort}
}

func (e *TradeShipExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *TradeShipExecution) IsActive() bool               { return e.active }

func (e *TradeShipExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("trade ship: owner %s not found", e.ownerID)
	}
	e.owner = p
	e.ship = p.BuildUnit(game.UnitTradeShip, e.src, 0)
	e.ship.SetTargetTile(e.dstPort.Tile())
	return nil
}

func (e *TradeShipExecution) Tick(tick game.Tick) {
	if !e.ship.IsActive() {
		// Sunk.
		e.active = false
		return
	}

	if e.ship.Owner() != e.owner {
		e.owner = e.ship.Owner()
		e.dstPort = e.nearestOwnPort()
		if e.dstPort == nil {
			e.ship.Delete()
			e.active = false
			return
		}
		e.ship.SetTargetTile(e.dstPort.Tile())
	}

	if !e.dstPort.IsActive() {
		e.ship.Delete()
		e.active = false
		return
	}

	for i := 0; i < tradeShipSpeed; i++ {
		next, done := airStep(e.g.Map(), e.ship.Tile(), e.dstPort.Tile())
		if done {
			e.deliver()
			return
		}
		e.ship.Move(next)
	}
}

func (e *TradeShipExecution) deliver() {
	gold := e.g.Config().TradeShipGold(e.g.Map().ManhattanDist(e.src, e.dstPort.Tile()))
	e.owner.AddGold(gold)
	if recipient := e.dstPort.Owner(); recipient != e.owner {
		recipient.AddGold(gold)
		recipient.UpdateRelation(e.owner, 2)
	}
	e.ship.SetReachedTarget()
	e.ship.Delete()
	e.active = false
}

// nearestOwnPort is where a captured cargo reroutes to, euclidean from the
// ship's position, creation order breaking ties.
func (e *TradeShipExecution) nearestOwnPort() *game.Unit {
	var best *game.Unit
	bestD := -1
	for _, u := range e.owner.UnitsOfType(game.UnitPort) {
		d := e.g.Map().EuclideanDistSquared(e.ship.Tile(), u.Tile())
		if bestD == -1 || d < bestD {
			best, bestD = u, d
		}
	}
	return best
}
