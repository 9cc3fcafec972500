package game

import (
	"math"

	"warfront.io/internal/tuning"
)

type Difficulty uint8

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
	DifficultyImpossible
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return "Impossible"
	}
}

// DifficultyByName resolves the wire name of a difficulty, defaulting to
// Medium for anything unrecognized.
func DifficultyByName(name string) Difficulty {
	switch name {
	case "Easy":
		return DifficultyEasy
	case "Hard":
		return DifficultyHard
	case "Impossible":
		return DifficultyImpossible
	}
	return DifficultyMedium
}

// Options are the per-lobby switches chosen at game creation. They ship in
// the start info so replicas agree on them.
type Options struct {
	Difficulty     Difficulty
	Bots           int
	Nations        int
	DisableNPCs    bool
	InstantBuild   bool
	InfiniteGold   bool
	InfiniteTroops bool
	DisabledUnits  []string
}

// Config binds the static balance table to one game's options. All the
// balance math lives here so executions stay thin.
type Config struct {
	T    tuning.Tuning
	Opts Options

	disabled map[UnitType]bool
}

func NewConfig(t tuning.Tuning, opts Options) *Config {
	c := &Config{T: t, Opts: opts}
	c.disabled = make(map[UnitType]bool, len(opts.DisabledUnits))
	for _, name := range opts.DisabledUnits {
		if typ, ok := UnitTypeByName(name); ok {
			c.disabled[typ] = true
		}
	}
	return c
}

func (c *Config) IsUnitDisabled(typ UnitType) bool { return c.disabled[typ] }

func (c *Config) SpawnNPCs() bool { return !c.Opts.DisableNPCs }

func (c *Config) UnitCost(typ UnitType) int64 {
	if c.Opts.InfiniteGold {
		return 0
	}
	return c.T.UnitCost[typ.String()]
}

func (c *Config) ConstructionDuration(typ UnitType) int {
	if c.Opts.InstantBuild {
		return 0
	}
	return c.T.ConstructionDuration[typ.String()]
}

func (c *Config) TraitorDurationTicks() int { return c.T.TraitorDurationTicks }

func (c *Config) difficultyModifier() float64 {
	switch c.Opts.Difficulty {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 3
	case DifficultyHard:
		return 9
	default:
		return 18
	}
}

// AttackResult is one frontier step's verdict: losses on both sides plus how
// many failed attempts the tile costs before it falls.
type AttackResult struct {
	AttackerTroopLoss float64
	DefenderTroopLoss float64
	AttemptsToConquer float64
}

// AttackLogic computes terrain-, defense- and fallout-adjusted losses for one
// contested tile. defender nil means terra nullius.
func (c *Config) AttackLogic(g *Game, attackTroops float64, attacker, defender *Player, tileToConquer TileRef) AttackResult {
	var mag, speed float64
	switch g.gm.Terrain(tileToConquer) {
	case Plains:
		mag, speed = c.T.PlainsMagnitude, c.T.PlainsSpeed
	case Highland:
		mag, speed = c.T.HighlandMagnitude, c.T.HighlandSpeed
	case Mountain:
		mag, speed = c.T.MountainMagnitude, c.T.MountainSpeed
	default:
		panic("attack on water tile")
	}

	if defender != nil {
		for _, dp := range g.NearbyUnits(tileToConquer, c.T.DefensePostRange, UnitDefensePost) {
			if dp.Owner() == defender && !dp.IsDamaged() {
				mag *= c.T.DefensePostBonus
				speed *= c.T.DefensePostBonus / 2
				break
			}
		}
	}

	if g.gm.HasFallout(tileToConquer) {
		ratio := float64(g.gm.NumFalloutTiles()) / float64(g.gm.NumLandTiles())
		mod := c.FalloutDefenseModifier(ratio)
		mag *= mod
		speed *= mod
	}

	if defender != nil && defender.Type() == PlayerBot && attacker.Type() != PlayerBot {
		mag *= 0.8
	}

	largeSpeedMalus := 1.0
	if n := attacker.NumTilesOwned(); n > c.T.LargeAttackerTiles {
		largeSpeedMalus = math.Pow(float64(c.T.LargeAttackerTiles)/float64(n), 0.6) + 1
	}

	if defender != nil {
		loss := mag * 0.8
		if defender.IsTraitor() {
			loss *= c.T.TraitorDefenseDebuff
		}
		return AttackResult{
			AttackerTroopLoss: loss,
			DefenderTroopLoss: defender.Troops() / float64(defender.NumTilesOwned()),
			AttemptsToConquer: 2 * speed * largeSpeedMalus,
		}
	}
	loss := mag / 5
	if attacker.Type() == PlayerBot {
		loss = mag / 10
	}
	return AttackResult{
		AttackerTroopLoss: loss,
		AttemptsToConquer: clampf(2000*math.Max(10, speed)/attackTroops, 5, 100),
	}
}

// FalloutDefenseModifier maps the global fallout ratio [0,1] to a defense
// multiplier in [5, 3].
func (c *Config) FalloutDefenseModifier(falloutRatio float64) float64 {
	return 5 - falloutRatio*2
}

// AttackTilesPerTick bounds how many frontier tiles an attack may process per
// tick: wider fronts and bigger armies push faster.
func (c *Config) AttackTilesPerTick(attackTroops float64, numAdjacentTilesWithEnemy int) float64 {
	return 10*float64(numAdjacentTilesWithEnemy) + 3*math.Sqrt(attackTroops)
}

// AttackAmount is the default troop commitment of a ground attack intent that
// names no explicit amount.
func (c *Config) AttackAmount(attacker *Player) float64 {
	if attacker.Type() == PlayerBot {
		return attacker.Troops() / c.T.AttackDivisorBot
	}
	return attacker.Troops() / c.T.AttackDivisorHuman
}

// BoatAttackAmount is the troop load of a naval invasion.
func (c *Config) BoatAttackAmount(attacker *Player) float64 {
	return floor(attacker.Troops() / c.T.BoatAttackDivisor)
}

func (c *Config) StartTroops(info PlayerInfo) float64 {
	switch info.Type {
	case PlayerBot:
		return c.T.StartTroopsBot
	case PlayerFakeHuman:
		switch c.Opts.Difficulty {
		case DifficultyEasy:
			return 10_000
		case DifficultyMedium:
			return 20_000
		case DifficultyHard:
			return 35_000
		default:
			return 50_000
		}
	default:
		if c.Opts.InfiniteTroops {
			return 1_000_000
		}
		return c.T.StartTroopsHuman
	}
}

// MaxPopulation grows with the 0.6th power of territory plus a flat bonus per
// city. Bots cap at half; nation difficulty scales fake humans.
func (c *Config) MaxPopulation(p *Player) float64 {
	if p.Type() == PlayerHuman && c.Opts.InfiniteTroops {
		return 1_000_000_000
	}
	maxPop := 2*(math.Pow(float64(p.NumTilesOwned()), 0.6)*1000+50_000) +
		float64(len(p.UnitsOfType(UnitCity)))*c.T.CityPopulationBonus

	switch p.Type() {
	case PlayerBot:
		return maxPop / 2
	case PlayerHuman:
		return maxPop
	}
	switch c.Opts.Difficulty {
	case DifficultyEasy:
		return maxPop * 0.5
	case DifficultyMedium:
		return maxPop
	case DifficultyHard:
		return maxPop * 1.5
	default:
		return maxPop * 2
	}
}

// PopulationIncreaseRate returns the population delta for one economy tick.
// Growth is proportional to the reproducing population and tapers to zero as
// the max is approached.
func (c *Config) PopulationIncreaseRate(p *Player) float64 {
	max := c.MaxPopulation(p)
	basePopGrowthRate := 1400/max + 1.0/160
	reproductionPop := 0.8*p.Troops() + 1.1*p.Workers()
	toAdd := 10 + basePopGrowthRate*reproductionPop
	toAdd *= 1 - p.Population()/max

	switch p.Type() {
	case PlayerBot:
		toAdd *= 0.7
	case PlayerFakeHuman:
		switch c.Opts.Difficulty {
		case DifficultyEasy:
			toAdd *= 0.9
		case DifficultyHard:
			toAdd *= 1.1
		case DifficultyImpossible:
			toAdd *= 1.2
		}
	}

	return math.Min(p.Population()+toAdd, max) - p.Population()
}

// GoldAdditionRate is gold earned per economy tick, floored to an integer.
func (c *Config) GoldAdditionRate(p *Player) int64 {
	workerGold := c.T.WorkerGoldMultiplier * math.Pow(p.Workers(), c.T.WorkerGoldExponent)
	cityGold := float64(len(p.UnitsOfType(UnitCity))) * c.T.CityGold
	portGold := float64(len(p.UnitsOfType(UnitPort))) * c.T.PortGold
	ppGold := float64(len(p.UnitsOfType(UnitPowerPlant))) * float64(p.Effects().PowerPlantGoldGeneration)

	total := (workerGold + cityGold + portGold + ppGold) * p.Effects().GoldGenMultiplier
	if math.IsInf(total, 0) || math.IsNaN(total) {
		total = 0
	}
	return int64(floor(total))
}

// TroopAdjustmentRate moves troops toward the player's target ratio, rate
// limited by max population. Drafting down runs five times faster than up.
func (c *Config) TroopAdjustmentRate(p *Player) float64 {
	maxDiff := c.MaxPopulation(p) / 1600
	target := p.Population() * p.TargetTroopRatio()
	diff := target - (p.Troops() + p.OffensiveTroops())
	if math.Abs(diff) < maxDiff {
		return diff
	}
	adjustment := 2 * maxDiff
	if diff < 0 {
		return -adjustment * 5
	}
	return adjustment
}

// NukeMagnitude returns the certain-destruction and probabilistic blast radii
// for a warhead type.
func (c *Config) NukeMagnitude(typ UnitType) (inner, outer int) {
	switch typ {
	case UnitMIRVWarhead:
		return c.T.MIRVWarheadInner, c.T.MIRVWarheadOuter
	case UnitCruiseMissile:
		return c.T.CruiseMissileInner, c.T.CruiseMissileOuter
	case UnitAtomBomb:
		return c.T.AtomBombInner, c.T.AtomBombOuter
	case UnitHydrogenBomb:
		return c.T.HydrogenBombInner, c.T.HydrogenBombOuter
	}
	panic("unknown nuke type " + typ.String())
}

// NukeDeathFactor scales blast casualties by how densely the victim's humans
// are packed.
func (c *Config) NukeDeathFactor(humans, tilesOwned float64) float64 {
	return c.T.NukeDeathFactor * humans / math.Max(1, tilesOwned)
}

// TradeShipGold pays out superlinearly with route length.
func (c *Config) TradeShipGold(dist int) int64 {
	return int64(floor(10_000 + 150*math.Pow(float64(dist), 1.1)))
}

// TradeShipSpawnRate is the per-tick spawn odds denominator for one port.
// It grows with the number of ports on the map so total trade volume rises
// sublinearly.
func (c *Config) TradeShipSpawnRate(numPorts int) int {
	rate := int(math.Round(10 * math.Pow(float64(numPorts), 0.6)))
	if rate < 1 {
		rate = 1
	}
	if rate > 50 {
		rate = 50
	}
	return rate
}

func floor(v float64) float64 { return math.Floor(v) }
func ceil(v float64) float64  { return math.Ceil(v) }

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
