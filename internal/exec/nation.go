package exec

import (
	"fmt"
	"sort"

	"warfront.io/internal/game"
)

// NationExecution is the brain of a computer-controlled nation. Nations play
// a rougher cut of a human game: they draft down as their army grows, expand
// into free land while any borders them, fortify and develop their territory,
// pick fights with the weakest neighbor, and answer a siege with atom bombs
// once they own a silo. Every decision draws from a rand stream seeded by the
// nation's id, so all replicas run the same nation.
type NationExecution struct {
	active   bool
	g        *game.Game
	playerID game.PlayerID
	player   *game.Player
	rand     *game.Rand

	attackRate int
	attackTick int
	lastExpand game.Tick
}

func NewNationExecution(playerID game.PlayerID) *NationExecution {
	return &NationExecution{active: true, playerID: playerID}
}

func (e *NationExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *NationExecution) IsActive() bool               { return e.active }

func (e *NationExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("nation: player %s not found", e.playerID)
	}
	e.player = p
	e.rand = game.NewRand(game.SimpleHash(string(e.playerID)) + game.SimpleHash(g.ID()))
	e.attackRate = e.rand.NextInt(40, 80)
	e.attackTick = e.rand.NextInt(0, e.attackRate)
	return nil
}

func (e *NationExecution) Tick(tick game.Tick) {
	if !e.player.IsAlive() {
		e.active = false
		return
	}

	// Free land is taken greedily, off the normal decision cadence.
	if tick-e.lastExpand >= 20 && bordersFreeLand(e.g, e.player) {
		e.lastExpand = tick
		e.g.AddExecution(NewAttackExecution(e.playerID, "", -1, 0, false))
		return
	}

	if int(tick)%e.attackRate != e.attackTick {
		return
	}

	e.adjustDraft()
	e.buildStructures()
	e.maybeNuke()
	e.maybeAttack()
}

// adjustDraft tapers the troop draft as the army grows so a big nation keeps
// a working economy.
func (e *NationExecution) adjustDraft() {
	troops := e.player.Troops()
	ratio := e.player.TargetTroopRatio()
	switch {
	case troops > 200_000 && ratio > 0.4:
		e.setTargetRatio(0.4)
	case troops > 100_000 && ratio > 0.45:
		e.setTargetRatio(0.45)
	case troops > 25_000 && ratio > 0.5:
		e.setTargetRatio(0.5)
	}
}

func (e *NationExecution) setTargetRatio(target float64) {
	_ = e.player.SetTroopRatios(target, e.player.ReserveTroopRatio())
}

// buildStructures works through a development budget that scales with the
// nation's size: defense first, then cities, then the late-game pieces.
func (e *NationExecution) buildStructures() {
	switch n := e.player.NumTilesOwned(); {
	case n < 300:
		e.maybeBuild(game.UnitDefensePost, 1)
		e.maybeBuild(game.UnitCity, 1)
	case n < 1000:
		e.maybeBuild(game.UnitDefensePost, 2)
		e.maybeBuild(game.UnitCity, 2)
	default:
		e.maybeBuild(game.UnitCity, 4)
		e.maybeBuild(game.UnitPort, 1)
		e.maybeBuild(game.UnitSAMLauncher, 1)
		e.maybeBuild(game.UnitDefensePost, 3)
		e.maybeBuild(game.UnitMissileSilo, 1)
	}
}

func (e *NationExecution) maybeBuild(typ game.UnitType, maxNum int) {
	if len(e.player.UnitsOfType(typ)) >= maxNum {
		return
	}
	cfg := e.g.Config()
	if cfg.IsUnitDisabled(typ) || e.player.Gold() < cfg.UnitCost(typ) {
		return
	}
	tile, ok := e.randTerritoryTile(e.player)
	if !ok {
		return
	}
	if _, ok := e.player.CanBuild(typ, tile); !ok {
		return
	}
	e.g.AddExecution(NewConstructionExecution(e.playerID, tile, typ))
}

// maybeNuke fires an atom bomb at the territory of the strongest player
// currently attacking the nation. Bots are beneath nuclear retaliation.
func (e *NationExecution) maybeNuke() {
	cfg := e.g.Config()
	if cfg.IsUnitDisabled(game.UnitAtomBomb) || e.player.Gold() < cfg.UnitCost(game.UnitAtomBomb) {
		return
	}
	if _, ok := e.player.CanBuild(game.UnitAtomBomb, 0); !ok {
		return
	}
	enemy := e.biggestThreat()
	if enemy == nil || enemy.Type() == game.PlayerBot {
		return
	}
	tile, ok := e.randTerritoryTile(enemy)
	if !ok {
		return
	}
	e.g.AddExecution(NewNukeExecution(game.UnitAtomBomb, e.playerID, tile))
}

// biggestThreat is the attacker with the most troops committed against the
// nation right now, or nil when nobody is attacking.
func (e *NationExecution) biggestThreat() *game.Player {
	var threat *game.Player
	var troops float64
	for _, a := range e.player.IncomingAttacks() {
		if !a.IsActive() {
			continue
		}
		if threat == nil || a.Troops() > troops {
			threat, troops = a.Attacker(), a.Troops()
		}
	}
	return threat
}

func (e *NationExecution) maybeAttack() {
	neighbors := e.unfriendlyNeighbors()
	if len(neighbors) == 0 {
		return
	}
	// Half the time the weakest neighbor, half the time a random one.
	target := neighbors[0]
	if !e.rand.Chance(2) {
		target = neighbors[e.rand.NextInt(0, len(neighbors))]
	}
	if e.discouraged(target) && !e.rand.Chance(4) {
		return
	}
	e.g.AddExecution(NewAttackExecution(e.playerID, target.ID(), -1, 0, false))
}

// discouraged softens nations against humans who kept their word, on the
// gentler difficulties only.
func (e *NationExecution) discouraged(target *game.Player) bool {
	switch e.g.Config().Opts.Difficulty {
	case game.DifficultyHard, game.DifficultyImpossible:
		return false
	}
	return target.Type() == game.PlayerHuman && !target.IsTraitor()
}

// unfriendlyNeighbors returns the bordering players the nation may attack,
// weakest first, small id breaking ties.
func (e *NationExecution) unfriendlyNeighbors() []*game.Player {
	gm := e.g.Map()
	var buf [4]game.TileRef
	seen := make(map[uint16]bool)
	var out []*game.Player
	for _, t := range e.player.BorderTilesSorted() {
		for _, n := range gm.Neighbors(t, buf[:0]) {
			o := e.g.Owner(n)
			if o == nil || o == e.player || seen[o.SmallID()] {
				continue
			}
			seen[o.SmallID()] = true
			if e.player.IsFriendly(o) {
				continue
			}
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Troops() != out[j].Troops() {
			return out[i].Troops() < out[j].Troops()
		}
		return out[i].SmallID() < out[j].SmallID()
	})
	return out
}

func (e *NationExecution) randTerritoryTile(p *game.Player) (game.TileRef, bool) {
	tiles := p.TilesSorted()
	if len(tiles) == 0 {
		return 0, false
	}
	return tiles[e.rand.NextInt(0, len(tiles))], true
}
