package exec

import "warfront.io/internal/game"

// WinCheckExecution declares a winner once a player controls the configured
// share of all land. It runs for the whole match and checks every ten ticks.
type WinCheckExecution struct {
	active bool
	g      *game.Game
}

func NewWinCheckExecution() *WinCheckExecution {
	return &WinCheckExecution{active: true}
}

func (e *WinCheckExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *WinCheckExecution) IsActive() bool               { return e.active }

func (e *WinCheckExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	return nil
}

func (e *WinCheckExecution) Tick(tick game.Tick) {
	if tick%10 != 0 {
		return
	}
	if _, done := e.g.Winner(); done {
		e.active = false
		return
	}
	needed := e.g.Map().NumLandTiles() * e.g.Config().T.WinPercentage / 100
	ranked := e.g.PlayersSortedByTiles()
	if len(ranked) == 0 {
		return
	}
	if top := ranked[0]; top.NumTilesOwned() >= needed && needed > 0 {
		e.g.SetWinner(top)
		e.active = false
	}
}
