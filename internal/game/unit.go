package game

type UnitID uint32

type UnitType uint8

const (
	UnitCity UnitType = iota
	UnitPort
	UnitMissileSilo
	UnitSAMLauncher
	UnitDefensePost
	UnitBarracks
	UnitHospital
	UnitMetropolis
	UnitPowerPlant
	UnitRadar
	UnitResearchLab
	UnitWarship
	UnitTransportShip
	UnitTradeShip
	UnitCruiseMissile
	UnitAtomBomb
	UnitHydrogenBomb
	UnitMIRV
	UnitMIRVWarhead
	UnitSAMMissile
	UnitShell
	UnitConstruction

	numUnitTypes
)

var unitTypeNames = [numUnitTypes]string{
	"City", "Port", "MissileSilo", "SAMLauncher", "DefensePost", "Barracks",
	"Hospital", "Metropolis", "PowerPlant", "Radar", "ResearchLab", "Warship",
	"TransportShip", "TradeShip", "CruiseMissile", "AtomBomb", "HydrogenBomb",
	"MIRV", "MIRVWarhead", "SAMMissile", "Shell", "Construction",
}

func (t UnitType) String() string {
	if int(t) < len(unitTypeNames) {
		return unitTypeNames[t]
	}
	return "Unknown"
}

// UnitTypeByName resolves the wire name of a unit type. ok is false for
// unknown names; callers treat that as a stale intent.
func UnitTypeByName(name string) (UnitType, bool) {
	for i, n := range unitTypeNames {
		if n == name {
			return UnitType(i), true
		}
	}
	return 0, false
}

// IsNukeType covers every airborne warhead the SAM layer can engage.
func (t UnitType) IsNukeType() bool {
	switch t {
	case UnitCruiseMissile, UnitAtomBomb, UnitHydrogenBomb, UnitMIRV, UnitMIRVWarhead:
		return true
	}
	return false
}

func (t UnitType) IsStructure() bool {
	switch t {
	case UnitCity, UnitPort, UnitMissileSilo, UnitSAMLauncher, UnitDefensePost,
		UnitBarracks, UnitHospital, UnitMetropolis, UnitPowerPlant, UnitRadar,
		UnitResearchLab, UnitConstruction:
		return true
	}
	return false
}

// Stock counter names. These are wire-visible in stats output, so they keep
// their historical spellings.
const (
	StockLaunchTubes = "Launch Tubes"
	StockMissiles    = "missiles"
)

// destroyedOnCapture is the fixed capture rule table: these types are lost
// forever when their tile is conquered, everything else changes owner.
var destroyedOnCapture = map[UnitType]bool{
	UnitResearchLab: true,
}

// Unit is a built structure or mobile object. Deletion is terminal: a deleted
// unit is never reactivated, only pruned from the registries.
type Unit struct {
	g *Game

	id       UnitID
	typ      UnitType
	owner    *Player
	tile     TileRef
	lastTile TileRef

	active bool
	troops float64

	cooldownEnd Tick
	repairEnd   Tick

	// Generic ammo/material counters ("Launch Tubes", "missiles", ...).
	stock map[string]int

	targetTile    TileRef
	hasTargetTile bool
	targetedBySAM bool
	reachedTarget bool
	retreating    bool

	// Set on Construction units only.
	constructionType UnitType
}

func (u *Unit) ID() UnitID        { return u.id }
func (u *Unit) Type() UnitType    { return u.typ }
func (u *Unit) Owner() *Player    { return u.owner }
func (u *Unit) Tile() TileRef     { return u.tile }
func (u *Unit) LastTile() TileRef { return u.lastTile }
func (u *Unit) IsActive() bool    { return u.active }

func (u *Unit) Troops() float64 { return u.troops }
func (u *Unit) SetTroops(t float64) {
	if t < 0 {
		t = 0
	}
	u.troops = t
}

func (u *Unit) Move(t TileRef) {
	u.lastTile = u.tile
	u.tile = t
}

func (u *Unit) setOwner(p *Player) {
	u.owner = p
}

// Delete deactivates the unit. The game registry prunes it at the end of the
// tick; callers must not hold it past that.
func (u *Unit) Delete() {
	if !u.active {
		return
	}
	u.active = false
	u.owner.removeUnit(u)
	u.g.updates.unitChanged(u)
}

func (u *Unit) SetCooldown(ticks int) {
	u.cooldownEnd = u.g.tick + Tick(ticks)
}

func (u *Unit) IsInCooldown() bool {
	return u.cooldownEnd > u.g.tick
}

func (u *Unit) SetRepairCooldown(ticks int) {
	u.repairEnd = u.g.tick + Tick(ticks)
}

// IsDamaged reports whether the unit is knocked out and waiting on repairs
// (cruise-missile splash puts defensive structures in this state).
func (u *Unit) IsDamaged() bool {
	return u.repairEnd > u.g.tick
}

func (u *Unit) Stock(name string) int {
	return u.stock[name]
}

func (u *Unit) SetStock(name string, v int) {
	if u.stock == nil {
		u.stock = make(map[string]int, 2)
	}
	u.stock[name] = v
}

func (u *Unit) AddStock(name string, v int) {
	u.SetStock(name, u.stock[name]+v)
}

func (u *Unit) RemoveStock(name string, v int) {
	n := u.stock[name] - v
	if n < 0 {
		n = 0
	}
	u.SetStock(name, n)
}

func (u *Unit) TargetTile() (TileRef, bool) {
	return u.targetTile, u.hasTargetTile
}

func (u *Unit) SetTargetTile(t TileRef) {
	u.targetTile = t
	u.hasTargetTile = true
}

func (u *Unit) TargetedBySAM() bool     { return u.targetedBySAM }
func (u *Unit) SetTargetedBySAM(v bool) { u.targetedBySAM = v }

func (u *Unit) SetReachedTarget() { u.reachedTarget = true }

// OrderRetreat turns a mobile unit around; its execution decides what
// "home" means.
func (u *Unit) OrderRetreat()      { u.retreating = true }
func (u *Unit) IsRetreating() bool { return u.retreating }

func (u *Unit) ConstructionType() UnitType     { return u.constructionType }
func (u *Unit) SetConstructionType(t UnitType) { u.constructionType = t }
