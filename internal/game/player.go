package game

import (
	"fmt"
	"sort"

	"warfront.io/internal/tuning"
)

type PlayerID = string
type ClientID = string

type PlayerType uint8

const (
	PlayerHuman PlayerType = iota
	PlayerFakeHuman
	PlayerBot
)

func (t PlayerType) String() string {
	switch t {
	case PlayerHuman:
		return "Human"
	case PlayerFakeHuman:
		return "FakeHuman"
	default:
		return "Bot"
	}
}

// PlayerTypeByName resolves the wire name of a player type.
func PlayerTypeByName(name string) (PlayerType, bool) {
	switch name {
	case "Human":
		return PlayerHuman, true
	case "FakeHuman":
		return PlayerFakeHuman, true
	case "Bot":
		return PlayerBot, true
	}
	return 0, false
}

// PlayerInfo is the immutable identity a player spawns with.
type PlayerInfo struct {
	ID       PlayerID
	ClientID ClientID
	Name     string
	Type     PlayerType
	Team     string
}

// Alliance links two players. Breaking it marks the breaker a traitor for a
// while, which debuffs their defense.
type Alliance struct {
	a, b    *Player
	created Tick
}

func (al *Alliance) Other(p *Player) *Player {
	if al.a == p {
		return al.b
	}
	return al.a
}

// Player holds one participant's mutable state. Troops and workers are floats
// internally; every externally visible count is floored (troops) or ceiled
// (workers) so replicas agree on the integers they hash and display.
type Player struct {
	g *Game

	info    PlayerInfo
	smallID uint16

	gold    int64
	troops  float64
	workers float64

	targetTroopRatio  float64 // 0..1
	reserveTroopRatio float64 // 0..1

	tiles   map[TileRef]struct{}
	borders map[TileRef]struct{}

	units []*Unit

	incomingAttacks []*Attack
	outgoingAttacks []*Attack

	relations map[uint16]int // -100..100, keyed by other player's small id
	alliances map[uint16]*Alliance
	embargoes map[uint16]bool
	// Pending alliance requests keyed by requestor small id.
	allianceRequests map[uint16]Tick

	targetSmallID uint16 // most recent target_player mark, 0 = none

	techs   map[string]bool
	effects tuning.Effects

	markedTraitorTick Tick
	hasTraitorMark    bool

	disconnected bool
	hasSpawned   bool
}

func (p *Player) ID() PlayerID       { return p.info.ID }
func (p *Player) ClientID() ClientID { return p.info.ClientID }
func (p *Player) Name() string       { return p.info.Name }
func (p *Player) Type() PlayerType   { return p.info.Type }
func (p *Player) Team() string       { return p.info.Team }
func (p *Player) SmallID() uint16    { return p.smallID }
func (p *Player) Info() PlayerInfo   { return p.info }

func (p *Player) String() string {
	return fmt.Sprintf("%s(%s)", p.info.Name, p.info.ID)
}

// Alive means owning at least one tile. Dead players stay registered so ids
// keep resolving, they just stop mattering.
func (p *Player) IsAlive() bool { return len(p.tiles) > 0 }

func (p *Player) HasSpawned() bool { return p.hasSpawned }
func (p *Player) MarkSpawned()     { p.hasSpawned = true }

func (p *Player) IsDisconnected() bool   { return p.disconnected }
func (p *Player) SetDisconnected(v bool) { p.disconnected = v }

// Gold.

func (p *Player) Gold() int64 { return p.gold }

func (p *Player) AddGold(g int64) {
	if g < 0 {
		p.RemoveGold(-g)
		return
	}
	p.gold += g
}

func (p *Player) RemoveGold(g int64) int64 {
	if g <= 0 {
		return 0
	}
	if g > p.gold {
		g = p.gold
	}
	p.gold -= g
	return g
}

// Troops / workers / population.

func (p *Player) Troops() float64 { return p.troops }

func (p *Player) AddTroops(t float64) {
	if t < 0 {
		p.RemoveTroops(-t)
		return
	}
	p.troops += t
}

// RemoveTroops removes up to t troops and returns how many were removed.
// Requests of one troop or less are ignored, matching the engine's historical
// behavior of not bleeding fractional armies.
func (p *Player) RemoveTroops(t float64) float64 {
	if t <= 1 {
		return 0
	}
	if t > p.troops {
		t = p.troops
	}
	p.troops -= t
	return t
}

func (p *Player) Workers() float64 {
	w := p.workers
	if w < 1 {
		w = 1
	}
	return ceil(w)
}

func (p *Player) AddWorkers(w float64) { p.workers += w }

func (p *Player) RemoveWorkers(w float64) {
	p.workers -= w
	if p.workers < 1 {
		p.workers = 1
	}
}

// OffensiveTroops is the floor of all troops currently committed to outgoing
// attacks.
func (p *Player) OffensiveTroops() float64 {
	var t float64
	for _, a := range p.outgoingAttacks {
		t += a.troops
	}
	return floor(t)
}

// Population = troops + workers + offensive troops, floored. Troops clamp at
// zero, workers at one.
func (p *Player) Population() float64 {
	if p.troops < 0 {
		p.troops = 0
	}
	if p.workers < 1 {
		p.workers = 1
	}
	return floor(floor(p.troops) + p.Workers() + p.OffensiveTroops())
}

func (p *Player) TargetTroopRatio() float64  { return p.targetTroopRatio }
func (p *Player) ReserveTroopRatio() float64 { return p.reserveTroopRatio }

func (p *Player) SetTroopRatios(target, reserve float64) error {
	if target < 0 || target > 1 || reserve < 0 || reserve > 1 {
		return fmt.Errorf("invalid troop ratios %v/%v", target, reserve)
	}
	p.targetTroopRatio = target
	p.reserveTroopRatio = reserve
	return nil
}

// Tiles and borders.

func (p *Player) NumTilesOwned() int { return len(p.tiles) }

func (p *Player) OwnsTile(t TileRef) bool {
	_, ok := p.tiles[t]
	return ok
}

// TilesSorted returns the owned tiles in ascending order. Simulation code
// must use this, never range the map directly: map order would desync
// replicas.
func (p *Player) TilesSorted() []TileRef {
	out := make([]TileRef, 0, len(p.tiles))
	for t := range p.tiles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BorderTilesSorted returns the cached border set in ascending order.
func (p *Player) BorderTilesSorted() []TileRef {
	out := make([]TileRef, 0, len(p.borders))
	for t := range p.borders {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Player) NumBorderTiles() int { return len(p.borders) }

// Conquer transfers tile ownership to p. This is the single path by which
// ownership ever changes; see Game.Conquer.
func (p *Player) Conquer(t TileRef) {
	p.g.Conquer(p, t)
}

// Relinquish gives a tile back to terra nullius.
func (p *Player) Relinquish(t TileRef) {
	if !p.OwnsTile(t) {
		panic("cannot relinquish tile not owned by this player")
	}
	p.g.relinquish(t)
}

// Units.

func (p *Player) Units() []*Unit { return p.units }

// UnitsOfType returns p's active units of the given types in creation order.
func (p *Player) UnitsOfType(types ...UnitType) []*Unit {
	var out []*Unit
	for _, u := range p.units {
		if !u.active {
			continue
		}
		for _, t := range types {
			if u.typ == t {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

func (p *Player) removeUnit(u *Unit) {
	for i, x := range p.units {
		if x == u {
			p.units = append(p.units[:i], p.units[i+1:]...)
			return
		}
	}
}

// BuildUnit creates a unit owned by p at the spawn tile, deducting its cost.
// Cost deduction and registration are atomic with respect to the tick loop.
func (p *Player) BuildUnit(typ UnitType, spawn TileRef, troops float64) *Unit {
	if p.g.cfg.IsUnitDisabled(typ) {
		panic(fmt.Sprintf("attempted to build disabled unit %s", typ))
	}
	u := p.g.newUnit(typ, p, spawn, troops)
	p.units = append(p.units, u)
	p.RemoveGold(p.g.cfg.UnitCost(typ))
	p.RemoveTroops(troops)
	p.g.updates.unitChanged(u)
	return u
}

// CaptureUnit applies the per-type capture rule: research labs are destroyed,
// everything else transfers to p.
func (p *Player) CaptureUnit(u *Unit) {
	if u.owner == p {
		panic(fmt.Sprintf("cannot capture unit, %s already owns %d", p, u.id))
	}
	if destroyedOnCapture[u.typ] {
		u.Delete()
		return
	}
	u.owner.removeUnit(u)
	u.setOwner(p)
	p.units = append(p.units, u)
	p.g.updates.unitChanged(u)
}

// CanBuild verifies placement rules and returns the effective spawn tile.
// Structures need an owned land tile clear of other structures within the
// configured minimum distance; missiles need a silo with a loaded tube.
func (p *Player) CanBuild(typ UnitType, tile TileRef) (TileRef, bool) {
	switch {
	case typ.IsNukeType():
		for _, silo := range p.UnitsOfType(UnitMissileSilo) {
			if !silo.IsInCooldown() && !silo.IsDamaged() && silo.Stock(StockLaunchTubes) > 0 {
				return silo.tile, true
			}
		}
		return 0, false
	case typ == UnitWarship || typ == UnitTransportShip || typ == UnitTradeShip:
		if !p.g.gm.IsWater(tile) {
			return 0, false
		}
		return tile, true
	default:
		if !p.OwnsTile(tile) || p.g.gm.IsWater(tile) {
			return 0, false
		}
		minDist := p.g.cfg.T.StructureMinDist
		for _, u := range p.units {
			if !u.active || !u.typ.IsStructure() {
				continue
			}
			if p.g.gm.ManhattanDist(u.tile, tile) < minDist {
				return 0, false
			}
		}
		return tile, true
	}
}

// Attacks.

func (p *Player) OutgoingAttacks() []*Attack { return p.outgoingAttacks }
func (p *Player) IncomingAttacks() []*Attack { return p.incomingAttacks }

// CreateAttack registers a new outgoing attack. target nil means terra
// nullius.
func (p *Player) CreateAttack(target *Player, troops float64, source TileRef, hasSource bool) *Attack {
	a := p.g.newAttack(p, target, troops, source, hasSource)
	p.outgoingAttacks = append(p.outgoingAttacks, a)
	if target != nil {
		target.incomingAttacks = append(target.incomingAttacks, a)
	}
	return a
}

func (p *Player) removeAttack(a *Attack) {
	for i, x := range p.outgoingAttacks {
		if x == a {
			p.outgoingAttacks = append(p.outgoingAttacks[:i], p.outgoingAttacks[i+1:]...)
			break
		}
	}
	if a.target != nil {
		t := a.target
		for i, x := range t.incomingAttacks {
			if x == a {
				t.incomingAttacks = append(t.incomingAttacks[:i], t.incomingAttacks[i+1:]...)
				break
			}
		}
	}
}

// Diplomacy.

func (p *Player) Relation(other *Player) int {
	return p.relations[other.smallID]
}

func (p *Player) UpdateRelation(other *Player, delta int) {
	if other == p {
		return
	}
	r := p.relations[other.smallID] + delta
	if r > 100 {
		r = 100
	}
	if r < -100 {
		r = -100
	}
	p.relations[other.smallID] = r
}

func (p *Player) AllianceWith(other *Player) *Alliance {
	if other == nil {
		return nil
	}
	return p.alliances[other.smallID]
}

func (p *Player) IsAlliedWith(other *Player) bool {
	return p.AllianceWith(other) != nil
}

func (p *Player) IsOnSameTeam(other *Player) bool {
	return p.info.Team != "" && other != nil && p.info.Team == other.info.Team
}

// IsFriendly covers teammates and allies; the SAM layer uses it to avoid
// shooting down friendly ordnance.
func (p *Player) IsFriendly(other *Player) bool {
	return other != nil && (p == other || p.IsOnSameTeam(other) || p.IsAlliedWith(other))
}

// FormAlliance links both players. Requests-in-flight for either direction
// are consumed.
func (p *Player) FormAlliance(other *Player) *Alliance {
	if p.IsAlliedWith(other) {
		return p.alliances[other.smallID]
	}
	al := &Alliance{a: p, b: other, created: p.g.tick}
	p.alliances[other.smallID] = al
	other.alliances[p.smallID] = al
	delete(p.allianceRequests, other.smallID)
	delete(other.allianceRequests, p.smallID)
	return al
}

// BreakAlliance dissolves the alliance and marks p a traitor.
func (p *Player) BreakAlliance(al *Alliance) {
	other := al.Other(p)
	delete(p.alliances, other.smallID)
	delete(other.alliances, p.smallID)
	p.markedTraitorTick = p.g.tick
	p.hasTraitorMark = true
	other.UpdateRelation(p, -100)
}

// IsTraitor reports a recent alliance break; traitors defend at a debuff.
func (p *Player) IsTraitor() bool {
	if !p.hasTraitorMark {
		return false
	}
	return p.g.tick-p.markedTraitorTick < Tick(p.g.cfg.TraitorDurationTicks())
}

func (p *Player) AddAllianceRequest(from *Player) {
	p.allianceRequests[from.smallID] = p.g.tick
}

func (p *Player) TakeAllianceRequest(from *Player) bool {
	if _, ok := p.allianceRequests[from.smallID]; !ok {
		return false
	}
	delete(p.allianceRequests, from.smallID)
	return true
}

func (p *Player) HasEmbargoAgainst(other *Player) bool {
	return p.embargoes[other.smallID]
}

func (p *Player) SetEmbargo(other *Player, v bool) {
	if v {
		p.embargoes[other.smallID] = true
	} else {
		delete(p.embargoes, other.smallID)
	}
}

func (p *Player) SetTarget(other *Player) {
	p.targetSmallID = other.smallID
}

func (p *Player) Target() *Player {
	if p.targetSmallID == 0 {
		return nil
	}
	return p.g.PlayerBySmallID(p.targetSmallID)
}

// Tech.

func (p *Player) HasTech(id string) bool { return p.techs[id] }

// UnlockTech applies the tech's effect and charges its cost. Unlocking the
// same tech twice is a no-op the second time.
func (p *Player) UnlockTech(id string) bool {
	if p.techs[id] {
		return false
	}
	t, ok := tuning.TechByID(id)
	if !ok {
		return false
	}
	if p.gold < t.Cost {
		return false
	}
	p.RemoveGold(t.Cost)
	p.techs[id] = true
	tuning.ApplyTech(&p.effects, id)
	return true
}

// Effects returns the player's current tunable set (tech-modified).
func (p *Player) Effects() *tuning.Effects { return &p.effects }
