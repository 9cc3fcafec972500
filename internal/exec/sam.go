package exec

import (
	"fmt"
	"sort"

	"warfront.io/internal/game"
)

// MIRV warheads come in too fast for a normal engagement; launchers engage
// warheads terminal on a tile near them without expending an interceptor,
// each kill resolving by the configured warhead hit chance, but only inside
// a much tighter protection footprint.
const (
	mirvWarheadSearchRadius     = 400
	mirvWarheadProtectionRadius = 50
)

// SAMLauncherExecution builds a SAM site and runs its engagement loop:
// reload interceptors, pick the most dangerous inbound (hydrogen bombs
// first, then by distance), and fire a SAMMissileExecution at it.
type SAMLauncherExecution struct {
	active bool
	g      *game.Game

	ownerID game.PlayerID
	tile    game.TileRef

	player     *game.Player
	sam        *game.Unit
	rand       *game.Rand
	nextReload int
}

func NewSAMLauncherExecution(ownerID game.PlayerID, tile game.TileRef) *SAMLauncherExecution {
	return &SAMLauncherExecution{active: true, ownerID: ownerID, tile: tile}
}

func (e *SAMLauncherExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *SAMLauncherExecution) IsActive() bool               { return e.active }

func (e *SAMLauncherExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.ownerID)
	if !ok {
		e.active = false
		return fmt.Errorf("sam: owner %s not found", e.ownerID)
	}
	e.player = p

	spawn, ok := p.CanBuild(game.UnitSAMLauncher, e.tile)
	if !ok {
		e.active = false
		return fmt.Errorf("sam: %s cannot build at %d", p, e.tile)
	}
	e.sam = p.BuildUnit(game.UnitSAMLauncher, spawn, 0)
	e.sam.SetStock(game.StockMissiles, p.Effects().SamInterceptors)
	e.nextReload = p.Effects().SamReloadTime
	e.rand = game.NewRand(int64(e.sam.ID()))
	return nil
}

func (e *SAMLauncherExecution) Tick(tick game.Tick) {
	if !e.sam.IsActive() {
		e.active = false
		return
	}
	e.player = e.sam.Owner()

	e.handleReloads()

	if e.sam.IsDamaged() {
		return
	}

	warheads := e.findMIRVWarheadTargets()
	if len(warheads) > 0 && !e.sam.IsInCooldown() {
		hit := e.g.Config().T.SamWarheadHittingChance
		for _, w := range warheads {
			if e.rand.Next() < hit {
				w.Delete()
			}
		}
		e.sam.SetCooldown(e.g.Config().T.SAMCooldown)
		return
	}

	target := e.singleTarget()
	if target == nil || target.TargetedBySAM() || e.sam.IsInCooldown() {
		return
	}
	e.attemptFire(target)
}

// searchRange is the engagement envelope: the launcher's own search range,
// extended to the radar range when an undamaged friendly radar is sited
// within its own range of the launcher.
func (e *SAMLauncherExecution) searchRange() int {
	rng := e.player.Effects().SamSearchRange
	radarRng := e.player.Effects().RadarRange
	if radarRng <= rng {
		return rng
	}
	for _, r := range e.player.UnitsOfType(game.UnitRadar) {
		if r.IsDamaged() {
			continue
		}
		if e.g.Map().EuclideanDistSquared(e.sam.Tile(), r.Tile()) <= radarRng*radarRng {
			return radarRng
		}
	}
	return rng
}

// findMIRVWarheadTargets returns hostile warheads whose destination falls
// inside the protection footprint, in creation order.
func (e *SAMLauncherExecution) findMIRVWarheadTargets() []*game.Unit {
	var out []*game.Unit
	for _, u := range e.g.NearbyUnits(e.sam.Tile(), mirvWarheadSearchRadius, game.UnitMIRVWarhead) {
		if u.Owner() == e.player || e.player.IsFriendly(u.Owner()) {
			continue
		}
		dst, ok := u.TargetTile()
		if !ok {
			continue
		}
		if e.g.Map().ManhattanDist(dst, e.sam.Tile()) < mirvWarheadProtectionRadius {
			out = append(out, u)
		}
	}
	return out
}

// singleTarget picks the inbound to engage: hydrogen bombs before anything
// else, then nearest by manhattan distance, unit id breaking ties.
func (e *SAMLauncherExecution) singleTarget() *game.Unit {
	nukes := e.g.NearbyUnits(e.sam.Tile(), e.searchRange(),
		game.UnitCruiseMissile, game.UnitAtomBomb, game.UnitHydrogenBomb)

	hostile := nukes[:0]
	for _, u := range nukes {
		if u.Owner() != e.player && !e.player.IsFriendly(u.Owner()) {
			hostile = append(hostile, u)
		}
	}
	if len(hostile) == 0 {
		return nil
	}
	sort.Slice(hostile, func(i, j int) bool {
		hi := hostile[i].Type() == game.UnitHydrogenBomb
		hj := hostile[j].Type() == game.UnitHydrogenBomb
		if hi != hj {
			return hi
		}
		di := e.g.Map().ManhattanDist(hostile[i].Tile(), e.sam.Tile())
		dj := e.g.Map().ManhattanDist(hostile[j].Tile(), e.sam.Tile())
		if di != dj {
			return di < dj
		}
		return hostile[i].ID() < hostile[j].ID()
	})
	return hostile[0]
}

func (e *SAMLauncherExecution) handleReloads() {
	if e.sam.Stock(game.StockMissiles) < e.player.Effects().SamInterceptors {
		e.nextReload--
		if e.nextReload <= 0 {
			e.sam.AddStock(game.StockMissiles, 1)
			e.nextReload = e.player.Effects().SamReloadTime
		}
	} else {
		e.nextReload = e.player.Effects().SamReloadTime
	}
}

func (e *SAMLauncherExecution) attemptFire(target *game.Unit) {
	if e.sam.Stock(game.StockMissiles) == 0 {
		cooldown := e.nextReload
		if cooldown == 0 {
			cooldown = e.player.Effects().SamReloadTime
		}
		e.sam.SetCooldown(cooldown)
		return
	}

	target.SetTargetedBySAM(true)
	e.g.AddExecution(NewSAMMissileExecution(e.sam.Tile(), e.player.ID(), e.sam, target))
	e.sam.RemoveStock(game.StockMissiles, 1)

	if e.sam.Stock(game.StockMissiles) == 0 {
		e.sam.SetCooldown(e.player.Effects().SamReloadTime)
		e.nextReload = e.player.Effects().SamReloadTime
	} else {
		// Brief re-aim pause between shots while interceptors remain.
		e.sam.SetCooldown(e.g.Config().T.SAMCooldown)
	}
}
