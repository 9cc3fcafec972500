// Package game is the deterministic simulation core. Everything in here must
// behave identically on every replica: no wall clocks, no goroutines, no raw
// map iteration in any code path that mutates state.
package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"warfront.io/internal/tuning"
)

// Tick counts simulation steps since game start. One sealed turn advances the
// game by exactly one tick.
type Tick int

// Execution is a stateful behavior that runs once per tick until it reports
// inactive. Executions added during tick T are initialized and first run at
// tick T+1. Init failure deactivates the execution permanently.
type Execution interface {
	Init(g *Game, tick Tick) error
	Tick(tick Tick)
	IsActive() bool
	ActiveDuringSpawnPhase() bool
}

// Game owns the full simulation state for one match.
type Game struct {
	id  string
	gm  *GameMap
	cfg *Config

	tick Tick
	rand *Rand
	log  *zap.Logger

	players   []*Player
	bySmallID []*Player // index = smallID, [0] is the terra nullius slot
	byID      map[PlayerID]*Player
	byClient  map[ClientID]*Player

	units      []*Unit
	nextUnitID UnitID

	attacks      []*Attack
	nextAttackID int

	executions []Execution
	pending    []Execution

	updates Updates

	winnerID  PlayerID
	hasWinner bool
}

func NewGame(id string, gm *GameMap, t tuning.Tuning, opts Options, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		id:        id,
		gm:        gm,
		cfg:       NewConfig(t, opts),
		rand:      NewRand(SimpleHash(id) + 1),
		log:       log,
		bySmallID: []*Player{nil},
		byID:      make(map[PlayerID]*Player),
		byClient:  make(map[ClientID]*Player),
	}
	return g
}

func (g *Game) ID() string      { return g.id }
func (g *Game) Map() *GameMap   { return g.gm }
func (g *Game) Config() *Config { return g.cfg }
func (g *Game) Ticks() Tick     { return g.tick }

// Rand is the shared executor random stream; executions that need their own
// stream seed a fresh one from a stable id instead.
func (g *Game) Rand() *Rand { return g.rand }

func (g *Game) Log() *zap.Logger { return g.log }

func (g *Game) InSpawnPhase() bool {
	return g.tick < Tick(g.cfg.T.SpawnPhaseTurns)
}

// Players.

// AddPlayer registers a player and assigns the next dense small id. Call
// order is fixed by the start info, so small ids agree across replicas.
func (g *Game) AddPlayer(info PlayerInfo) *Player {
	if _, ok := g.byID[info.ID]; ok {
		panic(fmt.Sprintf("player %s already registered", info.ID))
	}
	p := &Player{
		g:                g,
		info:             info,
		smallID:          uint16(len(g.bySmallID)),
		targetTroopRatio: 1,
		tiles:            make(map[TileRef]struct{}),
		borders:          make(map[TileRef]struct{}),
		relations:        make(map[uint16]int),
		alliances:        make(map[uint16]*Alliance),
		embargoes:        make(map[uint16]bool),
		allianceRequests: make(map[uint16]Tick),
		techs:            make(map[string]bool),
		effects:          tuning.DefaultEffects(),
	}
	p.troops = g.cfg.StartTroops(info)
	g.players = append(g.players, p)
	g.bySmallID = append(g.bySmallID, p)
	g.byID[info.ID] = p
	if info.ClientID != "" {
		g.byClient[info.ClientID] = p
	}
	return p
}

// Players returns all players in registration order.
func (g *Game) Players() []*Player { return g.players }

func (g *Game) PlayerByID(id PlayerID) (*Player, bool) {
	p, ok := g.byID[id]
	return p, ok
}

func (g *Game) PlayerByClientID(id ClientID) (*Player, bool) {
	p, ok := g.byClient[id]
	return p, ok
}

func (g *Game) PlayerBySmallID(id uint16) *Player {
	if int(id) >= len(g.bySmallID) {
		return nil
	}
	return g.bySmallID[id]
}

// Owner returns the player owning t, or nil for terra nullius.
func (g *Game) Owner(t TileRef) *Player {
	return g.PlayerBySmallID(g.gm.OwnerID(t))
}

// Tiles.

// Conquer is the single ownership-transfer path. It keeps the per-player tile
// and border caches consistent: a tile is a border tile iff any of its
// neighbors is land it does not own or water.
func (g *Game) Conquer(p *Player, t TileRef) {
	if g.gm.IsWater(t) {
		panic("cannot conquer water tile")
	}
	prev := g.Owner(t)
	if prev == p {
		return
	}
	if prev != nil {
		delete(prev.tiles, t)
		delete(prev.borders, t)
	}
	g.gm.setOwner(t, p.smallID)
	p.tiles[t] = struct{}{}
	g.gm.SetFallout(t, false)
	g.refreshBordersAround(t)
	g.updates.tileChanged()
	if prev != nil {
		for _, u := range g.units {
			if u.active && u.tile == t && u.owner == prev && u.typ.IsStructure() {
				p.CaptureUnit(u)
			}
		}
		if !prev.IsAlive() {
			g.updates.playerEliminated(prev)
		}
	}
}

func (g *Game) relinquish(t TileRef) {
	prev := g.Owner(t)
	if prev == nil {
		return
	}
	delete(prev.tiles, t)
	delete(prev.borders, t)
	g.gm.setOwner(t, 0)
	g.refreshBordersAround(t)
	g.updates.tileChanged()
	if !prev.IsAlive() {
		g.updates.playerEliminated(prev)
	}
}

// refreshBordersAround recomputes border membership for t and its neighbors
// after an ownership change touching t.
func (g *Game) refreshBordersAround(t TileRef) {
	var buf [5]TileRef
	affected := append(buf[:0], t)
	affected = g.gm.Neighbors(t, affected)
	var nbuf [4]TileRef
	for _, a := range affected {
		owner := g.Owner(a)
		if owner == nil {
			continue
		}
		border := false
		for _, n := range g.gm.Neighbors(a, nbuf[:0]) {
			if g.gm.IsWater(n) || g.gm.OwnerID(n) != owner.smallID {
				border = true
				break
			}
		}
		if border {
			owner.borders[a] = struct{}{}
		} else {
			delete(owner.borders, a)
		}
	}
}

// Units.

func (g *Game) newUnit(typ UnitType, owner *Player, tile TileRef, troops float64) *Unit {
	g.nextUnitID++
	u := &Unit{
		g:        g,
		id:       g.nextUnitID,
		typ:      typ,
		owner:    owner,
		tile:     tile,
		lastTile: tile,
		active:   true,
		troops:   troops,
	}
	g.units = append(g.units, u)
	return u
}

// Units returns all live units in creation order.
func (g *Game) Units(types ...UnitType) []*Unit {
	var out []*Unit
	for _, u := range g.units {
		if !u.active {
			continue
		}
		if len(types) == 0 {
			out = append(out, u)
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

func (g *Game) UnitByID(id UnitID) *Unit {
	for _, u := range g.units {
		if u.id == id && u.active {
			return u
		}
	}
	return nil
}

// NearbyUnits returns live units of the given types within euclidean range of
// tile, in creation order.
func (g *Game) NearbyUnits(tile TileRef, rng int, types ...UnitType) []*Unit {
	rsq := rng * rng
	var out []*Unit
	for _, u := range g.Units(types...) {
		if g.gm.EuclideanDistSquared(tile, u.tile) <= rsq {
			out = append(out, u)
		}
	}
	return out
}

// Attacks.

func (g *Game) newAttack(attacker, target *Player, troops float64, source TileRef, hasSource bool) *Attack {
	g.nextAttackID++
	a := &Attack{
		id:         fmt.Sprintf("attack-%d", g.nextAttackID),
		attacker:   attacker,
		target:     target,
		troops:     troops,
		sourceTile: source,
		hasSource:  hasSource,
		active:     true,
	}
	g.attacks = append(g.attacks, a)
	return a
}

func (g *Game) Attacks() []*Attack {
	out := make([]*Attack, 0, len(g.attacks))
	for _, a := range g.attacks {
		if a.active {
			out = append(out, a)
		}
	}
	return out
}

// Executions.

// AddExecution schedules executions to start on the next tick. Never runs
// anything inline: additions made while a tick is executing stay invisible
// until the tick after.
func (g *Game) AddExecution(execs ...Execution) {
	g.pending = append(g.pending, execs...)
}

// ExecuteNextTick advances the simulation by one tick: adopt pending
// executions, initialize them, run every active execution in FIFO order,
// prune the finished, then advance the clock.
func (g *Game) ExecuteNextTick() {
	adopt := g.pending
	g.pending = nil
	for _, e := range adopt {
		if err := e.Init(g, g.tick); err != nil {
			g.log.Warn("execution init failed",
				zap.String("game", g.id),
				zap.Int("tick", int(g.tick)),
				zap.Error(err))
			continue
		}
		g.executions = append(g.executions, e)
	}

	inSpawn := g.InSpawnPhase()
	for _, e := range g.executions {
		if inSpawn && !e.ActiveDuringSpawnPhase() {
			continue
		}
		if e.IsActive() {
			e.Tick(g.tick)
		}
	}

	live := g.executions[:0]
	for _, e := range g.executions {
		if e.IsActive() {
			live = append(live, e)
		}
	}
	g.executions = live

	g.pruneUnits()
	g.pruneAttacks()
	g.tick++
}

func (g *Game) pruneUnits() {
	live := g.units[:0]
	for _, u := range g.units {
		if u.active {
			live = append(live, u)
		}
	}
	g.units = live
}

func (g *Game) pruneAttacks() {
	live := g.attacks[:0]
	for _, a := range g.attacks {
		if a.active {
			live = append(live, a)
		}
	}
	g.attacks = live
}

func (g *Game) NumPendingExecutions() int { return len(g.pending) }
func (g *Game) NumExecutions() int        { return len(g.executions) }

// Winner.

func (g *Game) SetWinner(p *Player) {
	if g.hasWinner {
		return
	}
	g.winnerID = p.ID()
	g.hasWinner = true
}

func (g *Game) Winner() (PlayerID, bool) {
	return g.winnerID, g.hasWinner
}

func (g *Game) Updates() *Updates { return &g.updates }

// RecordChat surfaces an emoji or quick-chat line through the updates
// snapshot. Chat never feeds back into simulation state.
func (g *Game) RecordChat(from, recipient PlayerID, message string) {
	g.updates.chat(ChatEvent{From: from, Recipient: recipient, Message: message})
}

// PlayersSortedByTiles returns live players ordered by territory descending,
// small id ascending on ties. Used for win checks and ranking.
func (g *Game) PlayersSortedByTiles() []*Player {
	out := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p.IsAlive() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].tiles) != len(out[j].tiles) {
			return len(out[i].tiles) > len(out[j].tiles)
		}
		return out[i].smallID < out[j].smallID
	})
	return out
}
