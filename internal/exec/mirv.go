package exec

import (
	"fmt"
	"sort"

	"warfront.io/internal/game"
)

const (
	// The bus separates this far (euclidean) from the aim point.
	mirvSeparationDist = 80
	mirvWarheadCount   = 12
	mirvWarheadSpeed   = 10
	mirvSpreadRadius   = 60
)

// MIRVExecution flies the bus toward the aim point and separates into
// independent warheads targeting enemy-held tiles spread around it. Each
// warhead is its own NukeExecution; the bus itself never detonates.
type MIRVExecution struct {
	active bool
	g      *game.Game

	senderID game.PlayerID
	dst      game.TileRef

	player *game.Player
	mirv   *game.Unit
	rand   *game.Rand
}

func NewMIRVExecution(senderID game.PlayerID, dst game.TileRef) *MIRVExecution {
	return &MIRVExecution{active: true, senderID: senderID, dst: dst}
}

func (e *MIRVExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *MIRVExecution) IsActive() bool               { return e.active }

func (e *MIRVExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.senderID)
	if !ok {
		e.active = false
		return fmt.Errorf("mirv: sender %s not found", e.senderID)
	}
	e.player = p
	e.rand = game.NewRand(int64(tick) + 1)
	return nil
}

func (e *MIRVExecution) Tick(tick game.Tick) {
	if e.mirv == nil {
		spawn, ok := e.player.CanBuild(game.UnitMIRV, e.dst)
		if !ok {
			e.active = false
			return
		}
		e.mirv = e.player.BuildUnit(game.UnitMIRV, spawn, 0)
		e.mirv.SetTargetTile(e.dst)
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
	if !e.mirv.IsActive() {
		e.active = false
		return
	}

	speed := e.g.Config().T.NukeSpeed * 2
	for i := 0; i < speed; i++ {
		if e.g.Map().EuclideanDistSquared(e.mirv.Tile(), e.dst) <= mirvSeparationDist*mirvSeparationDist {
			e.separate()
			return
		}
		next, done := airStep(e.g.Map(), e.mirv.Tile(), e.dst)
		if done {
			e.separate()
			return
		}
		e.mirv.Move(next)
	}
}

// separate spawns the warheads at the bus position and retires the bus.
func (e *MIRVExecution) separate() {
	gm := e.g.Map()
	cx, cy := gm.XY(e.dst)
	targets := make(map[game.TileRef]bool)
	targets[e.dst] = true
	for attempts := 0; len(targets) < mirvWarheadCount && attempts < 200; attempts++ {
		dx := e.rand.NextInt(-mirvSpreadRadius, mirvSpreadRadius+1)
		dy := e.rand.NextInt(-mirvSpreadRadius, mirvSpreadRadius+1)
		if !gm.InBounds(cx+dx, cy+dy) {
			continue
		}
		targets[gm.Ref(cx+dx, cy+dy)] = true
	}

	for _, t := range sortedTiles(targets) {
		e.g.AddExecution(newWarheadExecution(e.senderID, e.mirv.Tile(), t, mirvWarheadSpeed))
	}
	e.mirv.SetReachedTarget()
	e.mirv.Delete()
	e.active = false
}

func sortedTiles(set map[game.TileRef]bool) []game.TileRef {
	out := make([]game.TileRef, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
