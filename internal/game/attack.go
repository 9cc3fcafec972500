package game

// Attack is the ongoing conquest of a target's territory (or terra nullius
// when target is nil). The execution layer drives it; this struct is the
// shared bookkeeping both sides can see.
type Attack struct {
	id       string
	attacker *Player
	target   *Player

	troops float64

	sourceTile TileRef
	hasSource  bool

	active     bool
	retreating bool
	retreated  bool

	// Contested frontier tiles currently enqueued; sized for the per-tick
	// attempt budget.
	border map[TileRef]struct{}

	stats AttackStats
}

// AttackStats accumulates what the attack cost so far. Pure reporting, never
// read back by the resolution math.
type AttackStats struct {
	TilesConquered int
	TroopsLost     float64
	TicksActive    int
}

func (a *Attack) ID() string        { return a.id }
func (a *Attack) Attacker() *Player { return a.attacker }

// Target returns nil for a terra nullius attack.
func (a *Attack) Target() *Player { return a.target }

func (a *Attack) Troops() float64 { return a.troops }

func (a *Attack) SetTroops(t float64) {
	if t < 0 {
		t = 0
	}
	a.troops = t
}

func (a *Attack) SourceTile() (TileRef, bool) {
	return a.sourceTile, a.hasSource
}

func (a *Attack) IsActive() bool { return a.active }

// Retreat flags the attack for orderly withdrawal. The execution applies the
// retreat malus and returns the remaining troops on its next tick.
func (a *Attack) Retreat() {
	a.retreating = true
}

func (a *Attack) IsRetreating() bool { return a.retreating }

// ExecuteRetreat completes a pending retreat order. Retreated attacks return
// their troops to the attacker on the next tick; exhausted ones do not.
func (a *Attack) ExecuteRetreat() { a.retreated = true }

func (a *Attack) HasRetreated() bool { return a.retreated }

func (a *Attack) BorderSize() int { return len(a.border) }

func (a *Attack) AddBorderTile(t TileRef) {
	if a.border == nil {
		a.border = make(map[TileRef]struct{})
	}
	a.border[t] = struct{}{}
}

func (a *Attack) RemoveBorderTile(t TileRef) { delete(a.border, t) }

func (a *Attack) ClearBorder() { a.border = make(map[TileRef]struct{}) }

// Delete removes the attack from both players' registries. Terminal.
func (a *Attack) Delete() {
	if !a.active {
		return
	}
	a.active = false
	a.attacker.removeAttack(a)
}

func (a *Attack) Stats() *AttackStats { return &a.stats }
