package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// nationNames seeds the computer nations the lobby asks for; the table wraps
// when a lobby wants more nations than it has names.
var nationNames = []string{
	"Aurelia", "Borovia", "Cascadia", "Drakmar", "Eldoria", "Frostheim",
	"Galloway", "Hesperia", "Istria", "Jotunmark", "Kestrelia", "Lusatia",
}

// BotSpawnerExecution seeds the lobby-configured NPCs during the spawn
// phase, one every few ticks, at random free land tiles. Nations go first so
// their small ids stay stable regardless of the bot count.
type BotSpawnerExecution struct {
	active  bool
	g       *game.Game
	rand    *game.Rand
	nations int
	bots    int
}

func NewBotSpawnerExecution() *BotSpawnerExecution {
	return &BotSpawnerExecution{active: true}
}

func (e *BotSpawnerExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *BotSpawnerExecution) IsActive() bool               { return e.active }

func (e *BotSpawnerExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	e.rand = game.NewRand(game.SimpleHash(g.ID()) + 2)
	opts := g.Config().Opts
	if !g.Config().SpawnNPCs() || (opts.Bots == 0 && opts.Nations == 0) {
		e.active = false
	}
	return nil
}

func (e *BotSpawnerExecution) Tick(tick game.Tick) {
	opts := e.g.Config().Opts
	if !e.g.InSpawnPhase() || (e.nations >= opts.Nations && e.bots >= opts.Bots) {
		e.active = false
		return
	}
	if tick%2 != 0 {
		return
	}
	tile, ok := e.freeSpawnTile()
	if !ok {
		e.active = false
		return
	}

	var info game.PlayerInfo
	if e.nations < opts.Nations {
		e.nations++
		info = game.PlayerInfo{
			ID:   game.PlayerID(fmt.Sprintf("nation-%d", e.nations)),
			Name: nationNames[(e.nations-1)%len(nationNames)],
			Type: game.PlayerFakeHuman,
		}
	} else {
		e.bots++
		info = game.PlayerInfo{
			ID:   game.PlayerID(fmt.Sprintf("bot-%d", e.bots)),
			Name: fmt.Sprintf("Bot %d", e.bots),
			Type: game.PlayerBot,
		}
	}
	p := e.g.AddPlayer(info)
	e.g.AddExecution(NewSpawnExecution(p.ID(), tile))
}

// freeSpawnTile samples up to 50 random tiles looking for unowned land.
func (e *BotSpawnerExecution) freeSpawnTile() (game.TileRef, bool) {
	gm := e.g.Map()
	n := gm.Width() * gm.Height()
	for i := 0; i < 50; i++ {
		t := game.TileRef(e.rand.NextInt(0, n))
		if gm.IsLand(t) && !gm.HasOwner(t) {
			return t, true
		}
	}
	return 0, false
}
