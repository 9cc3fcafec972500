// Package exec contains every Execution: the tick-driven state machines that
// are the only mutators of game state. One Execution per intent type, plus
// the standing per-player and per-unit behaviors.
package exec

import (
	"fmt"
	"math"

	"warfront.io/internal/game"
)

// AttackExecution drives one ground attack to completion: it maintains a
// min-priority frontier of contested border tiles and converts the attack's
// troop pool into tile captures over time.
type AttackExecution struct {
	active bool

	g     *game.Game
	rand  *game.Rand
	owner *game.Player
	// nil target means terra nullius.
	target *game.Player

	ownerID  game.PlayerID
	targetID game.PlayerID

	startTroops    float64
	hasStartTroops bool
	sourceTile     game.TileRef
	hasSource      bool
	removeTroops   bool

	attack      *game.Attack
	toConquer   game.TileHeap
	shouldBreak bool
	mergedAway  bool
	neighborBuf []game.TileRef
}

// NewAttackExecution builds a ground attack. An empty targetID attacks terra
// nullius; troops < 0 uses the configured default commitment.
func NewAttackExecution(ownerID, targetID game.PlayerID, troops float64, source game.TileRef, hasSource bool) *AttackExecution {
	return &AttackExecution{
		active:         true,
		ownerID:        ownerID,
		targetID:       targetID,
		startTroops:    troops,
		hasStartTroops: troops >= 0,
		sourceTile:     source,
		hasSource:      hasSource,
		removeTroops:   true,
	}
}

// newAttackExecutionPreloaded is used by boat landings: the troops already
// left the owner's pool when the boat departed.
func newAttackExecutionPreloaded(ownerID, targetID game.PlayerID, troops float64, source game.TileRef) *AttackExecution {
	e := NewAttackExecution(ownerID, targetID, troops, source, true)
	e.removeTroops = false
	return e
}

func (e *AttackExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *AttackExecution) IsActive() bool               { return e.active }

func (e *AttackExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	e.rand = game.NewRand(123)

	owner, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("attack: player %s not found", e.ownerID)
	}
	e.owner = owner

	if e.targetID != "" {
		target, ok := g.PlayerByID(e.targetID)
		if !ok {
			e.active = false
			return fmt.Errorf("attack: target %s not found", e.targetID)
		}
		e.target = target
	}

	if e.target == e.owner {
		e.active = false
		return fmt.Errorf("attack: %s cannot attack itself", e.owner)
	}

	if e.target != nil {
		if game.Tick(g.Config().T.SpawnPhaseTurns+g.Config().T.SpawnImmunity) > g.Ticks() {
			e.active = false
			return fmt.Errorf("attack: cannot attack player during immunity phase")
		}
		if e.owner.IsOnSameTeam(e.target) {
			e.active = false
			return fmt.Errorf("attack: %s and %s are on the same team", e.owner, e.target)
		}
		if e.target.Type() != game.PlayerBot && e.owner.Type() != game.PlayerBot {
			e.target.SetEmbargo(e.owner, true)
		}
	}

	if !e.hasStartTroops {
		e.startTroops = g.Config().AttackAmount(e.owner)
	}
	if e.removeTroops {
		e.startTroops = math.Min(e.owner.Troops(), e.startTroops)
		e.owner.RemoveTroops(e.startTroops)
	}
	e.attack = e.owner.CreateAttack(e.target, e.startTroops, e.sourceTile, e.hasSource)

	if e.hasSource {
		e.addNeighbors(e.sourceTile)
	} else {
		e.refreshToConquer()
	}

	// An existing attack on the same target absorbs this one.
	for _, outgoing := range e.owner.OutgoingAttacks() {
		if outgoing == e.attack {
			continue
		}
		if outgoing.Target() == e.attack.Target() && sameSource(outgoing, e.attack) {
			outgoing.SetTroops(outgoing.Troops() + e.attack.Troops())
			e.attack.Delete()
			e.active = false
			return nil
		}
	}

	if e.target != nil {
		if e.owner.IsAlliedWith(e.target) {
			// Defer the break to the first tick; init must not mutate
			// diplomacy state.
			e.shouldBreak = true
		}
		e.target.UpdateRelation(e.owner, -80)
	}
	return nil
}

func sameSource(a, b *game.Attack) bool {
	at, aok := a.SourceTile()
	bt, bok := b.SourceTile()
	return aok == bok && (!aok || at == bt)
}

func (e *AttackExecution) Tick(tick game.Tick) {
	if e.attack.Troops() < 1 {
		e.attack.Delete()
		e.active = false
		return
	}

	maxLosses := e.attack.Troops() / 80
	tickLosses := 0.0

	// Reinforce from the reserve when outnumbered.
	if tick%8 == 0 && e.target != nil && !e.mergedAway &&
		e.attack.Troops() < e.target.Troops()*3 {
		if e.owner.ReserveTroopRatio() >= 1 {
			return
		}
		toAdd := math.Floor(e.owner.Troops() * (1 - e.owner.ReserveTroopRatio()) / 20)
		if toAdd > 0 {
			e.owner.RemoveTroops(toAdd)
			e.attack.SetTroops(e.attack.Troops() + toAdd)
		}
	}

	// Periodic self-heal: rebuild the frontier and fold duplicate attacks.
	if tick%100 == 0 {
		e.refreshToConquer()
		for _, outgoing := range e.owner.OutgoingAttacks() {
			if outgoing == e.attack {
				continue
			}
			if outgoing.Target() == e.attack.Target() && sameSource(outgoing, e.attack) {
				if e.attack.Troops() < outgoing.Troops() {
					outgoing.SetTroops(outgoing.Troops() + e.attack.Troops())
					e.active = false
					e.mergedAway = true
					e.attack.Delete()
				}
				return
			}
		}
	}

	troopCount := e.attack.Troops()

	if e.attack.HasRetreated() {
		if e.target != nil {
			e.retreat(e.g.Config().T.RetreatMalusPercent)
		} else {
			e.retreat(0)
		}
		return
	}
	if e.attack.IsRetreating() {
		// One-tick pause between the order and the withdrawal.
		e.attack.ExecuteRetreat()
		return
	}
	if !e.attack.IsActive() {
		e.active = false
		return
	}

	if e.shouldBreak {
		e.shouldBreak = false
		if al := e.owner.AllianceWith(e.target); al != nil {
			e.owner.BreakAlliance(al)
		}
	}
	if e.target != nil && e.owner.IsAlliedWith(e.target) {
		// An alliance formed after the attack started calls it off.
		e.retreat(0)
		return
	}

	attackAttempts := e.g.Config().AttackTilesPerTick(
		troopCount, e.attack.BorderSize()+e.rand.NextInt(0, 5))

	for attackAttempts > 0 {
		if tickLosses > maxLosses {
			break
		}
		if e.toConquer.Len() == 0 {
			e.refreshToConquer()
			if e.toConquer.Len() == 0 {
				e.retreat(0)
				break
			}
		}

		tileToConquer, _ := e.toConquer.Dequeue()
		e.attack.RemoveBorderTile(tileToConquer)

		// Guard against frontier staleness: other attacks may have taken
		// this tile or cut it off since it was enqueued.
		onBorder := false
		for _, n := range e.neighbors(tileToConquer) {
			if e.g.Owner(n) == e.owner {
				onBorder = true
				break
			}
		}
		if e.g.Owner(tileToConquer) != e.target || !onBorder {
			continue
		}
		e.addNeighbors(tileToConquer)

		res := e.g.Config().AttackLogic(e.g, troopCount, e.owner, e.target, tileToConquer)
		attackAttempts -= res.AttemptsToConquer

		trickleback := e.hospitalTrickleback(res.AttackerTroopLoss)
		adjustment := res.AttackerTroopLoss - trickleback
		troopCount -= adjustment
		tickLosses += adjustment

		e.attack.SetTroops(troopCount)
		if e.target != nil {
			e.target.RemoveTroops(res.DefenderTroopLoss)
		}
		e.owner.Conquer(tileToConquer)
		e.handleDeadDefender()
		e.attack.Stats().TilesConquered++
	}

	e.attack.Stats().TroopsLost += tickLosses
	e.attack.Stats().TicksActive++
}

// hospitalTrickleback returns troops recovered from this tick's losses via
// hospitals, capped at the effect's hospital count.
func (e *AttackExecution) hospitalTrickleback(loss float64) float64 {
	hospitals := len(e.owner.UnitsOfType(game.UnitHospital))
	if max := e.owner.Effects().HospitalMaxNumber; hospitals > max {
		hospitals = max
	}
	return float64(hospitals) * e.owner.Effects().HospitalBonusTroopTrickleback / 100 * loss
}

// refreshToConquer rebuilds the frontier from the owner's current border set.
func (e *AttackExecution) refreshToConquer() {
	e.toConquer.Clear()
	e.attack.ClearBorder()
	for _, tile := range e.owner.BorderTilesSorted() {
		e.addNeighbors(tile)
	}
}

// addNeighbors enqueues every adjacent tile owned by the target. Priority is
// lowest-first: random jitter, a penalty per surrounding attacker-owned tile
// (discourages filling pockets first) and a bonus for harder terrain.
func (e *AttackExecution) addNeighbors(tile game.TileRef) {
	gm := e.g.Map()
	tickNow := e.g.Ticks()
	var outer, inner [4]game.TileRef
	for _, neighbor := range gm.Neighbors(tile, outer[:0]) {
		if gm.IsWater(neighbor) || e.g.Owner(neighbor) != e.target {
			continue
		}
		e.attack.AddBorderTile(neighbor)
		numOwnedByMe := 0
		for _, n := range gm.Neighbors(neighbor, inner[:0]) {
			if e.g.Owner(n) == e.owner {
				numOwnedByMe++
			}
		}

		var mag float64
		switch gm.Terrain(neighbor) {
		case game.Plains:
			mag = 1
		case game.Highland:
			mag = 1.5
		case game.Mountain:
			mag = 2
		}

		priority := float64(e.rand.NextInt(0, 7)+10)*(1+float64(numOwnedByMe)*0.5-mag/2) +
			float64(tickNow)
		e.toConquer.Enqueue(neighbor, priority)
	}
}

func (e *AttackExecution) neighbors(t game.TileRef) []game.TileRef {
	e.neighborBuf = e.g.Map().Neighbors(t, e.neighborBuf[:0])
	return e.neighborBuf
}

// retreat returns the remaining troops to the owner, minus the malus.
func (e *AttackExecution) retreat(malusPercent float64) {
	deaths := e.attack.Troops() * malusPercent / 100
	survivors := e.attack.Troops() - deaths
	e.owner.AddTroops(survivors)
	e.attack.Stats().TroopsLost += deaths
	e.attack.Delete()
	e.active = false
}

// handleDeadDefender absorbs a nearly-dead defender: their gold transfers to
// the conqueror and their remaining scraps of territory are redistributed to
// whoever borders them.
func (e *AttackExecution) handleDeadDefender() {
	if e.target == nil || e.target.NumTilesOwned() >= 100 {
		return
	}
	e.owner.AddGold(e.target.RemoveGold(e.target.Gold()))

	for i := 0; i < 10; i++ {
		for _, tile := range e.target.TilesSorted() {
			borders := false
			for _, n := range e.neighbors(tile) {
				if e.g.Owner(n) == e.owner {
					borders = true
					break
				}
			}
			if borders {
				e.owner.Conquer(tile)
				continue
			}
			for _, n := range e.neighbors(tile) {
				if o := e.g.Owner(n); o != nil && o != e.target {
					o.Conquer(tile)
					break
				}
			}
		}
	}
}
