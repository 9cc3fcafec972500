package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// economyInterval is how often (in ticks) gold and population accrue.
const economyInterval = 10

// PlayerExecution is the standing per-player behavior: economy accrual, the
// troop/worker draft toward the target ratio, and cleanup when the player
// loses their last tile.
type PlayerExecution struct {
	active   bool
	g        *game.Game
	playerID game.PlayerID
	player   *game.Player
}

func NewPlayerExecution(playerID game.PlayerID) *PlayerExecution {
	return &PlayerExecution{active: true, playerID: playerID}
}

func (e *PlayerExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *PlayerExecution) IsActive() bool               { return e.active }

func (e *PlayerExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("player execution: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *PlayerExecution) Tick(tick game.Tick) {
	p := e.player
	if !p.IsAlive() {
		for _, u := range p.Units() {
			u.Delete()
		}
		e.active = false
		return
	}

	if tick%economyInterval != 0 {
		return
	}
	cfg := e.g.Config()

	p.AddGold(cfg.GoldAdditionRate(p))

	popInc := cfg.PopulationIncreaseRate(p)
	p.AddWorkers(popInc * (1 - p.TargetTroopRatio()))
	p.AddTroops(popInc * p.TargetTroopRatio())

	adj := cfg.TroopAdjustmentRate(p)
	if adj >= 0 {
		p.AddTroops(adj)
		p.RemoveWorkers(adj)
	} else {
		p.RemoveTroops(-adj)
		p.AddWorkers(-adj)
	}
}
