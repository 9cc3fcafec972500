// Package tuning holds every numeric balance parameter the simulation reads.
// All values are part of the determinism contract: two replicas of the same
// game must load identical tuning, so the server ships the effective tuning in
// the game start info and clients never reload it mid-game.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TurnIntervalMs   int `yaml:"turn_interval_ms" json:"turn_interval_ms"`
	SpawnPhaseTurns  int `yaml:"spawn_phase_turns" json:"spawn_phase_turns"`
	SpawnImmunity    int `yaml:"spawn_immunity_ticks" json:"spawn_immunity_ticks"`
	MaxGameDurationS int `yaml:"max_game_duration_s" json:"max_game_duration_s"`

	// Attack resolution.
	RetreatMalusPercent     float64 `yaml:"retreat_malus_percent" json:"retreat_malus_percent"`
	PlainsMagnitude         float64 `yaml:"plains_magnitude" json:"plains_magnitude"`
	HighlandMagnitude       float64 `yaml:"highland_magnitude" json:"highland_magnitude"`
	MountainMagnitude       float64 `yaml:"mountain_magnitude" json:"mountain_magnitude"`
	PlainsSpeed             float64 `yaml:"plains_speed" json:"plains_speed"`
	HighlandSpeed           float64 `yaml:"highland_speed" json:"highland_speed"`
	MountainSpeed           float64 `yaml:"mountain_speed" json:"mountain_speed"`
	DefensePostRange        int     `yaml:"defense_post_range" json:"defense_post_range"`
	DefensePostBonus        float64 `yaml:"defense_post_bonus" json:"defense_post_bonus"`
	SamHittingChance        float64 `yaml:"sam_hitting_chance" json:"sam_hitting_chance"`
	SamWarheadHittingChance float64 `yaml:"sam_warhead_hitting_chance" json:"sam_warhead_hitting_chance"`
	SAMCooldown             int     `yaml:"sam_cooldown" json:"sam_cooldown"`
	SiloCooldown            int     `yaml:"silo_cooldown" json:"silo_cooldown"`
	TraitorDefenseDebuff    float64 `yaml:"traitor_defense_debuff" json:"traitor_defense_debuff"`
	TraitorDurationTicks    int     `yaml:"traitor_duration_ticks" json:"traitor_duration_ticks"`
	LargeAttackerTiles      int     `yaml:"large_attacker_tiles" json:"large_attacker_tiles"`
	AttackDivisorHuman      float64 `yaml:"attack_divisor_human" json:"attack_divisor_human"`
	AttackDivisorBot        float64 `yaml:"attack_divisor_bot" json:"attack_divisor_bot"`
	BoatAttackDivisor       float64 `yaml:"boat_attack_divisor" json:"boat_attack_divisor"`
	NavalInvasionMaxCount   int     `yaml:"naval_invasion_max_count" json:"naval_invasion_max_count"`

	// Economy.
	CityPopulationBonus  float64 `yaml:"city_population_bonus" json:"city_population_bonus"`
	CityGold             float64 `yaml:"city_gold" json:"city_gold"`
	PortGold             float64 `yaml:"port_gold" json:"port_gold"`
	WorkerGoldExponent   float64 `yaml:"worker_gold_exponent" json:"worker_gold_exponent"`
	WorkerGoldMultiplier float64 `yaml:"worker_gold_multiplier" json:"worker_gold_multiplier"`
	StartTroopsHuman     float64 `yaml:"start_troops_human" json:"start_troops_human"`
	StartTroopsBot       float64 `yaml:"start_troops_bot" json:"start_troops_bot"`

	// Nukes.
	CruiseMissileInner int     `yaml:"cruise_missile_inner" json:"cruise_missile_inner"`
	CruiseMissileOuter int     `yaml:"cruise_missile_outer" json:"cruise_missile_outer"`
	AtomBombInner      int     `yaml:"atom_bomb_inner" json:"atom_bomb_inner"`
	AtomBombOuter      int     `yaml:"atom_bomb_outer" json:"atom_bomb_outer"`
	HydrogenBombInner  int     `yaml:"hydrogen_bomb_inner" json:"hydrogen_bomb_inner"`
	HydrogenBombOuter  int     `yaml:"hydrogen_bomb_outer" json:"hydrogen_bomb_outer"`
	MIRVWarheadInner   int     `yaml:"mirv_warhead_inner" json:"mirv_warhead_inner"`
	MIRVWarheadOuter   int     `yaml:"mirv_warhead_outer" json:"mirv_warhead_outer"`
	NukeSpeed          int     `yaml:"nuke_speed" json:"nuke_speed"`
	NukeDeathFactor    float64 `yaml:"nuke_death_factor" json:"nuke_death_factor"`
	NukeAllianceBreak  int     `yaml:"nuke_alliance_break_tiles" json:"nuke_alliance_break_tiles"`

	// Structures.
	StructureMinDist     int              `yaml:"structure_min_dist" json:"structure_min_dist"`
	UnitRepairCooldown   int              `yaml:"unit_repair_cooldown" json:"unit_repair_cooldown"`
	ConstructionDuration map[string]int   `yaml:"construction_duration" json:"construction_duration"`
	UnitCost             map[string]int64 `yaml:"unit_cost" json:"unit_cost"`

	// Strike packages.
	StrikePhaseCooldown int `yaml:"strike_phase_cooldown" json:"strike_phase_cooldown"`

	// Win condition.
	WinPercentage int `yaml:"win_percentage" json:"win_percentage"`

	// Lockstep.
	HashCheckInterval int `yaml:"hash_check_interval" json:"hash_check_interval"`
	DesyncNoticeSpan  int `yaml:"desync_notice_span" json:"desync_notice_span"`
	DisconnectedMs    int `yaml:"disconnected_ms" json:"disconnected_ms"`
	PingTimeoutMs     int `yaml:"ping_timeout_ms" json:"ping_timeout_ms"`
	MaxClientsPerIP   int `yaml:"max_clients_per_ip" json:"max_clients_per_ip"`

	Workers int `yaml:"workers" json:"workers"`
}

// Defaults mirrors the shipped balance table. Loading a tuning file overrides
// individual fields; absent fields keep these values.
func Defaults() Tuning {
	return Tuning{
		TurnIntervalMs:   125,
		SpawnPhaseTurns:  150,
		SpawnImmunity:    40,
		MaxGameDurationS: 3 * 60 * 60,

		RetreatMalusPercent:     25,
		PlainsMagnitude:         85,
		HighlandMagnitude:       100,
		MountainMagnitude:       120,
		PlainsSpeed:             16.5,
		HighlandSpeed:           20,
		MountainSpeed:           25,
		DefensePostRange:        35,
		DefensePostBonus:        6,
		SamHittingChance:        0.8,
		SamWarheadHittingChance: 0.5,
		SAMCooldown:             45,
		SiloCooldown:            100,
		TraitorDefenseDebuff:    0.5,
		TraitorDurationTicks:    600,
		LargeAttackerTiles:      75_000,
		AttackDivisorHuman:      20,
		AttackDivisorBot:        40,
		BoatAttackDivisor:       5,
		NavalInvasionMaxCount:   3,

		CityPopulationBonus:  250_000,
		CityGold:             50,
		PortGold:             30,
		WorkerGoldExponent:   0.87,
		WorkerGoldMultiplier: 0.025,
		StartTroopsHuman:     20_000,
		StartTroopsBot:       12_500,

		CruiseMissileInner: 5,
		CruiseMissileOuter: 10,
		AtomBombInner:      12,
		AtomBombOuter:      30,
		HydrogenBombInner:  50,
		HydrogenBombOuter:  75,
		MIRVWarheadInner:   6,
		MIRVWarheadOuter:   16,
		NukeSpeed:          4,
		NukeDeathFactor:    5,
		NukeAllianceBreak:  100,

		StructureMinDist:   15,
		UnitRepairCooldown: 240,
		ConstructionDuration: map[string]int{
			"City": 20, "Port": 20, "MissileSilo": 40, "SAMLauncher": 30,
			"DefensePost": 15, "Warship": 25, "CruiseMissile": 10,
			"AtomBomb": 40, "HydrogenBomb": 80, "MIRV": 120,
			"Barracks": 20, "Hospital": 25, "Metropolis": 60,
			"PowerPlant": 30, "Radar": 20, "ResearchLab": 30,
		},
		UnitCost: map[string]int64{
			"City": 125_000, "Port": 125_000, "MissileSilo": 1_000_000,
			"SAMLauncher": 1_500_000, "DefensePost": 50_000,
			"Warship": 250_000, "CruiseMissile": 400_000,
			"AtomBomb": 750_000, "HydrogenBomb": 5_000_000,
			"MIRV": 25_000_000, "Barracks": 100_000, "Hospital": 250_000,
			"Metropolis": 4_000_000, "PowerPlant": 500_000,
			"Radar": 200_000, "ResearchLab": 300_000,
			"TransportShip": 0, "MIRVWarhead": 0, "SAMMissile": 0,
			"Construction": 0, "Shell": 0, "TradeShip": 0,
		},

		StrikePhaseCooldown: 30,

		WinPercentage: 80,

		HashCheckInterval: 10,
		DesyncNoticeSpan:  100,
		DisconnectedMs:    30_000,
		PingTimeoutMs:     60_000,
		MaxClientsPerIP:   3,

		Workers: 4,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
