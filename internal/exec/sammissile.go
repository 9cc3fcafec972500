package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// SAMMissileExecution flies one interceptor at a tracked inbound. Atom bombs
// and cruise missiles are slow enough that a hit is certain on intercept;
// hydrogen bombs are harder targets and resolve by configured chance.
type SAMMissileExecution struct {
	active bool
	g      *game.Game

	spawn    game.TileRef
	ownerID  game.PlayerID
	owner    *game.Player
	launcher *game.Unit
	target   *game.Unit
	missile  *game.Unit
	rand     *game.Rand
}

func NewSAMMissileExecution(spawn game.TileRef, ownerID game.PlayerID, launcher, target *game.Unit) *SAMMissileExecution {
	return &SAMMissileExecution{
		active:   true,
		spawn:    spawn,
		ownerID:  ownerID,
		launcher: launcher,
		target:   target,
	}
}

func (e *SAMMissileExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *SAMMissileExecution) IsActive() bool               { return e.active }

func (e *SAMMissileExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("sam missile: owner %s not found", e.ownerID)
	}
	e.owner = p
	e.rand = game.NewRand(int64(tick) + 1)
	return nil
}

func (e *SAMMissileExecution) Tick(tick game.Tick) {
	if e.missile == nil {
		e.missile = e.owner.BuildUnit(game.UnitSAMMissile, e.spawn, 0)
	}
	if !e.missile.IsActive() {
		e.active = false
		return
	}

	// MIRV warheads are handled by the launcher's point defense, never by a
	// flying interceptor.
	engageable := e.target.Type() == game.UnitCruiseMissile ||
		e.target.Type() == game.UnitAtomBomb ||
		e.target.Type() == game.UnitHydrogenBomb
	if !e.target.IsActive() || !e.launcher.IsActive() ||
		e.target.Owner() == e.missile.Owner() || !engageable {
		e.missile.Delete()
		e.active = false
		return
	}

	for i := 0; i < e.owner.Effects().SamMissileSpeed; i++ {
		next, done := airStep(e.g.Map(), e.missile.Tile(), e.target.Tile())
		if !done {
			e.missile.Move(next)
			continue
		}
		e.active = false
		if e.intercepted() {
			e.target.Delete()
		} else {
			e.target.SetTargetedBySAM(false)
		}
		e.missile.Delete()
		return
	}
}

func (e *SAMMissileExecution) intercepted() bool {
	if e.target.Type() == game.UnitHydrogenBomb {
		return e.rand.Next() < e.g.Config().T.SamHittingChance
	}
	return true
}
