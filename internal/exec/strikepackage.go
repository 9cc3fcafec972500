package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// StrikePackageType selects a pre-planned phase list.
type StrikePackageType string

const (
	StrikeMilitary      StrikePackageType = "military_strike"
	StrikeScorchedEarth StrikePackageType = "scorched_earth"
	StrikeCruiseMissile StrikePackageType = "cruise_missile"
	StrikeAtomBomb      StrikePackageType = "atom_bomb"
)

type strikePhase struct {
	name         string
	missileType  game.UnitType
	targetTypes  []game.UnitType
	overkill     int
	launchDecoys bool
}

var strikePhases = map[StrikePackageType][]strikePhase{
	StrikeMilitary: {
		{name: "Interceptor Suppression", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitSAMLauncher}, overkill: 3},
		{name: "Silo Strike", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitMissileSilo}, overkill: 2},
		{name: "Defense Post Strike", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitDefensePost}, overkill: 2},
	},
	StrikeScorchedEarth: {
		{name: "Interceptor Suppression", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitSAMLauncher}, overkill: 3},
		{name: "Silo Strike", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitMissileSilo}, overkill: 2},
		{name: "Defense Post Strike", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitDefensePost}, overkill: 2},
		{name: "City Annihilation", missileType: game.UnitAtomBomb, targetTypes: []game.UnitType{game.UnitCity}, overkill: 1, launchDecoys: true},
	},
	StrikeCruiseMissile: {
		{name: "Defense Post Strike", missileType: game.UnitCruiseMissile, targetTypes: []game.UnitType{game.UnitDefensePost}, overkill: 2},
	},
	StrikeAtomBomb: {
		{name: "City Annihilation", missileType: game.UnitAtomBomb, targetTypes: []game.UnitType{game.UnitCity}, overkill: 1, launchDecoys: true},
	},
}

// StrikePackageExecution walks an ordered phase list against one enemy,
// firing a salvo per phase with per-phase overkill, then waiting out a fixed
// cooldown before the next phase. Phases with no live targets are skipped
// immediately.
type StrikePackageExecution struct {
	active bool
	g      *game.Game

	requestorID game.PlayerID
	targetID    game.PlayerID
	packageType StrikePackageType

	phaseIndex    int
	phaseCooldown int
}

func NewStrikePackageExecution(requestorID, targetID game.PlayerID, packageType StrikePackageType) *StrikePackageExecution {
	return &StrikePackageExecution{
		active: true, requestorID: requestorID, targetID: targetID, packageType: packageType,
	}
}

func (e *StrikePackageExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *StrikePackageExecution) IsActive() bool               { return e.active }

func (e *StrikePackageExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	if _, ok := strikePhases[e.packageType]; !ok {
		e.active = false
		return fmt.Errorf("strike package: unknown type %q", e.packageType)
	}
	if _, ok := g.PlayerByID(e.requestorID); !ok {
		e.active = false
		return fmt.Errorf("strike package: requestor %s not found", e.requestorID)
	}
	if _, ok := g.PlayerByID(e.targetID); !ok {
		e.active = false
		return fmt.Errorf("strike package: target %s not found", e.targetID)
	}
	return nil
}

func (e *StrikePackageExecution) Tick(tick game.Tick) {
	if e.phaseCooldown > 0 {
		e.phaseCooldown--
		return
	}
	phases := strikePhases[e.packageType]
	if e.phaseIndex >= len(phases) {
		e.active = false
		return
	}

	target, ok := e.g.PlayerByID(e.targetID)
	if !ok || !target.IsAlive() {
		e.active = false
		return
	}
	phase := phases[e.phaseIndex]

	var targets []*game.Unit
	for _, typ := range phase.targetTypes {
		targets = append(targets, target.UnitsOfType(typ)...)
	}
	if len(targets) == 0 {
		e.advancePhase()
		return
	}

	for _, u := range targets {
		for i := 0; i < phase.overkill; i++ {
			e.g.AddExecution(NewNukeExecution(phase.missileType, e.requestorID, u.Tile()))
		}
		if phase.launchDecoys {
			e.g.AddExecution(NewNukeExecution(game.UnitCruiseMissile, e.requestorID, u.Tile()))
		}
	}

	e.phaseCooldown = e.g.Config().T.StrikePhaseCooldown
	e.advancePhase()
}

func (e *StrikePackageExecution) advancePhase() {
	e.phaseIndex++
	if e.phaseIndex >= len(strikePhases[e.packageType]) {
		e.active = false
	}
}
