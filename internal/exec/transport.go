package exec

import (
	"fmt"
	"math"

	"warfront.io/internal/game"
)

const boatSpeed = 5

// TransportExecution carries a naval invasion force: load troops at the
// border tile nearest the landing site, sail, then hand the force to a
// pre-loaded AttackExecution on landing. A retreat order sails the boat home
// and returns the troops intact.
type TransportExecution struct {
	active bool
	g      *game.Game

	ownerID  game.PlayerID
	targetID game.PlayerID
	troops   float64
	dst      game.TileRef

	owner *game.Player
	ship  *game.Unit
	src   game.TileRef
}

// NewTransportExecution builds a boat attack. troops < 0 uses the configured
// boat load; an empty targetID invades unclaimed shoreline.
func NewTransportExecution(ownerID, targetID game.PlayerID, troops float64, dst game.TileRef) *TransportExecution {
	return &TransportExecution{
		active: true, ownerID: ownerID, targetID: targetID, troops: troops, dst: dst,
	}
}

func (e *TransportExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *TransportExecution) IsActive() bool               { return e.active }

func (e *TransportExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	owner, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("transport: owner %s not found", e.ownerID)
	}
	e.owner = owner

	if e.targetID != "" {
		target, ok := g.PlayerByID(e.targetID)
		if !ok {
			e.active = false
			return fmt.Errorf("transport: target %s not found", e.targetID)
		}
		if owner.IsOnSameTeam(target) {
			e.active = false
			return fmt.Errorf("transport: %s and %s are on the same team", owner, target)
		}
	}
	if g.Map().IsWater(e.dst) {
		e.active = false
		return fmt.Errorf("transport: destination %d is water", e.dst)
	}
	if len(owner.UnitsOfType(game.UnitTransportShip)) >= g.Config().T.NavalInvasionMaxCount {
		e.active = false
		return fmt.Errorf("transport: %s already has the maximum number of invasions at sea", owner)
	}

	src, ok := e.departureTile()
	if !ok {
		e.active = false
		return fmt.Errorf("transport: %s has no coastal border tile", owner)
	}
	e.src = src

	if e.troops < 0 {
		e.troops = g.Config().BoatAttackAmount(owner)
	}
	e.troops = math.Min(owner.Troops(), e.troops)
	owner.RemoveTroops(e.troops)

	e.ship = owner.BuildUnit(game.UnitTransportShip, src, e.troops)
	e.ship.SetTargetTile(e.dst)
	return nil
}

// departureTile picks the owner's border tile closest to the landing site,
// lowest tile ref on ties.
func (e *TransportExecution) departureTile() (game.TileRef, bool) {
	gm := e.g.Map()
	best := game.TileRef(0)
	bestDist := -1
	for _, t := range e.owner.BorderTilesSorted() {
		d := gm.EuclideanDistSquared(t, e.dst)
		if bestDist == -1 || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, bestDist != -1
}

func (e *TransportExecution) Tick(tick game.Tick) {
	if !e.ship.IsActive() {
		// Sunk with all hands.
		e.active = false
		return
	}

	dst := e.dst
	if e.ship.IsRetreating() {
		dst = e.src
	}

	for i := 0; i < boatSpeed; i++ {
		next, done := airStep(e.g.Map(), e.ship.Tile(), dst)
		if !done {
			e.ship.Move(next)
			continue
		}
		e.land(dst)
		return
	}
}

func (e *TransportExecution) land(dst game.TileRef) {
	e.active = false
	e.ship.SetReachedTarget()
	defer e.ship.Delete()

	if e.ship.IsRetreating() {
		e.owner.AddTroops(e.ship.Troops())
		return
	}

	// The landing only sticks if the shore still belongs to who we came
	// for; otherwise the force comes home.
	holder := e.g.Owner(dst)
	var holderID game.PlayerID
	if holder != nil {
		holderID = holder.ID()
	}
	if holder == e.owner || holderID != e.targetID {
		e.owner.AddTroops(e.ship.Troops())
		return
	}
	// Seize the beachhead, then fight outward from it.
	e.owner.Conquer(dst)
	e.g.AddExecution(newAttackExecutionPreloaded(e.ownerID, e.targetID, e.ship.Troops(), dst))
}
