package game

// Updates collects per-tick change notices for whoever drives the game (the
// runner logs eliminations, the server reports winners). It is observational
// only: nothing in the simulation ever reads it back, so draining or ignoring
// it cannot affect determinism.
type Updates struct {
	tilesChanged int
	unitEvents   []UnitEvent
	eliminated   []PlayerID
	chats        []ChatEvent
}

// ChatEvent is an emoji or quick-chat line addressed to one player, or to
// everyone when Recipient is empty.
type ChatEvent struct {
	From      PlayerID
	Recipient PlayerID
	Message   string
}

// UnitEvent records a unit creation, transfer or deletion.
type UnitEvent struct {
	ID     UnitID
	Type   UnitType
	Owner  PlayerID
	Tile   TileRef
	Active bool
}

func (u *Updates) tileChanged() { u.tilesChanged++ }

func (u *Updates) unitChanged(unit *Unit) {
	u.unitEvents = append(u.unitEvents, UnitEvent{
		ID:     unit.id,
		Type:   unit.typ,
		Owner:  unit.owner.ID(),
		Tile:   unit.tile,
		Active: unit.active,
	})
}

func (u *Updates) playerEliminated(p *Player) {
	u.eliminated = append(u.eliminated, p.ID())
}

func (u *Updates) chat(e ChatEvent) { u.chats = append(u.chats, e) }

// DrainChats returns chat lines recorded since the last drain.
func (u *Updates) DrainChats() []ChatEvent {
	out := u.chats
	u.chats = nil
	return out
}

// Drain returns everything recorded since the last drain and resets.
func (u *Updates) Drain() (tilesChanged int, units []UnitEvent, eliminated []PlayerID) {
	tilesChanged = u.tilesChanged
	units = u.unitEvents
	eliminated = u.eliminated
	u.tilesChanged = 0
	u.unitEvents = nil
	u.eliminated = nil
	return
}
