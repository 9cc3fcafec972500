package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// BotExecution is the server-side brain of a bot player. It is deliberately
// crude: keep the army stocked, expand into free land while any remains, then
// pick on the weakest unfriendly neighbor. Every decision draws from a rand
// stream seeded by the bot's id, so all replicas run the same bot.
type BotExecution struct {
	active   bool
	g        *game.Game
	playerID game.PlayerID
	player   *game.Player
	rand     *game.Rand

	attackCooldown int
}

func NewBotExecution(playerID game.PlayerID) *BotExecution {
	return &BotExecution{active: true, playerID: playerID}
}

func (e *BotExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *BotExecution) IsActive() bool               { return e.active }

func (e *BotExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("bot: player %s not found", e.playerID)
	}
	e.player = p
	e.rand = game.NewRand(game.SimpleHash(string(e.playerID)))
	e.attackCooldown = e.rand.NextInt(10, 50)
	return nil
}

func (e *BotExecution) Tick(tick game.Tick) {
	if !e.player.IsAlive() {
		e.active = false
		return
	}
	e.attackCooldown--
	if e.attackCooldown > 0 {
		return
	}
	e.attackCooldown = e.rand.NextInt(30, 80)

	if bordersFreeLand(e.g, e.player) {
		e.g.AddExecution(NewAttackExecution(e.playerID, "", -1, 0, false))
		return
	}
	if target := e.weakestNeighbor(); target != nil {
		e.g.AddExecution(NewAttackExecution(e.playerID, target.ID(), -1, 0, false))
	}
}

// bordersFreeLand reports whether any unowned land tile touches the player's
// border.
func bordersFreeLand(g *game.Game, p *game.Player) bool {
	gm := g.Map()
	var buf [4]game.TileRef
	for _, t := range p.BorderTilesSorted() {
		for _, n := range gm.Neighbors(t, buf[:0]) {
			if gm.IsLand(n) && !gm.HasOwner(n) {
				return true
			}
		}
	}
	return false
}

// weakestNeighbor returns the bordering unfriendly player with the fewest
// troops, small id breaking ties via the sorted border sweep.
func (e *BotExecution) weakestNeighbor() *game.Player {
	gm := e.g.Map()
	var buf [4]game.TileRef
	seen := make(map[uint16]bool)
	var weakest *game.Player
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
			if weakest == nil || o.Troops() < weakest.Troops() {
				weakest = o
			}
		}
	}
	return weakest
}
