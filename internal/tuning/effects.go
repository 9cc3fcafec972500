package tuning

// Effects is the per-player tunable set that tech unlocks operate on. The
// original design kept these in a free-form string->number bag; a typed struct
// keeps the same runtime behavior while making every knob enumerable.
type Effects struct {
	SamMissileSpeed int
	SamSearchRange  int
	SamInterceptors int
	SamReloadTime   int

	MissileSiloTubes         int
	MissileSiloTubeRegenTime int

	HospitalMaxNumber             int
	HospitalBonusTroopTrickleback float64 // percent of losses trickled back per hospital

	PowerPlantGoldGeneration int64
	GoldGenMultiplier        float64

	RadarRange int
}

func DefaultEffects() Effects {
	return Effects{
		SamMissileSpeed: 12,
		SamSearchRange:  100,
		SamInterceptors: 2,
		SamReloadTime:   240,

		MissileSiloTubes:         1,
		MissileSiloTubeRegenTime: 240,

		HospitalMaxNumber:             3,
		HospitalBonusTroopTrickleback: 1,

		PowerPlantGoldGeneration: 250,
		GoldGenMultiplier:        1,

		RadarRange: 200,
	}
}

// Tech is one unlockable entry of the static tech table.
type Tech struct {
	ID   string
	Name string
	Cost int64
}

// Techs is the shipped tech table. Unlocking is idempotent per player and id;
// gold is deducted exactly once.
var Techs = []Tech{
	{ID: "samReload1", Name: "Crew Drills", Cost: 300_000},
	{ID: "samRange1", Name: "Chemical Reformulation", Cost: 800_000},
	{ID: "samSpeed1", Name: "Solid Fuel Additives", Cost: 1_250_000},
	{ID: "samInterceptor1", Name: "More is Better", Cost: 4_000_000},
	{ID: "siloTubes1", Name: "Second Tube", Cost: 6_000_000},
	{ID: "eco1", Name: "Basic Economy", Cost: 500_000},
	{ID: "eco2", Name: "Tax Reform", Cost: 1_500_000},
	{ID: "hospital1", Name: "Field Medicine", Cost: 750_000},
}

// TechByID returns the table entry, or false for an unknown id.
func TechByID(id string) (Tech, bool) {
	for _, t := range Techs {
		if t.ID == id {
			return t, true
		}
	}
	return Tech{}, false
}

// ApplyTech mutates e with the effect of the given tech. Unknown ids are a
// no-op; callers validate against the table before charging gold.
func ApplyTech(e *Effects, techID string) {
	switch techID {
	case "samReload1":
		e.SamReloadTime -= 50
		if e.SamReloadTime < 40 {
			e.SamReloadTime = 40
		}
	case "samRange1":
		e.SamSearchRange += e.SamSearchRange / 4
	case "samSpeed1":
		e.SamMissileSpeed += e.SamMissileSpeed / 3
	case "samInterceptor1":
		e.SamInterceptors++
	case "siloTubes1":
		e.MissileSiloTubes++
	case "eco1":
		e.GoldGenMultiplier *= 1.05
	case "eco2":
		e.GoldGenMultiplier *= 1.10
	case "hospital1":
		e.HospitalBonusTroopTrickleback += 1
	}
}
