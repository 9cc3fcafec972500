package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// SetTroopRatiosExecution applies a troop_ratio intent.
type SetTroopRatiosExecution struct {
	active   bool
	playerID game.PlayerID
	target   float64
	reserve  float64
	player   *game.Player
}

func NewSetTroopRatiosExecution(playerID game.PlayerID, target, reserve float64) *SetTroopRatiosExecution {
	return &SetTroopRatiosExecution{active: true, playerID: playerID, target: target, reserve: reserve}
}

func (e *SetTroopRatiosExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *SetTroopRatiosExecution) IsActive() bool               { return e.active }

func (e *SetTroopRatiosExecution) Init(g *game.Game, tick game.Tick) error {
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("troop ratios: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *SetTroopRatiosExecution) Tick(tick game.Tick) {
	e.active = false
	if err := e.player.SetTroopRatios(e.target, e.reserve); err != nil {
		return
	}
}

// UnlockTechExecution applies an unlock_tech intent. Unlocking is idempotent:
// a repeat unlock of the same tech changes nothing and charges nothing.
type UnlockTechExecution struct {
	active   bool
	playerID game.PlayerID
	techID   string
	player   *game.Player
}

func NewUnlockTechExecution(playerID game.PlayerID, techID string) *UnlockTechExecution {
	return &UnlockTechExecution{active: true, playerID: playerID, techID: techID}
}

func (e *UnlockTechExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *UnlockTechExecution) IsActive() bool               { return e.active }

func (e *UnlockTechExecution) Init(g *game.Game, tick game.Tick) error {
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("unlock tech: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *UnlockTechExecution) Tick(tick game.Tick) {
	e.active = false
	e.player.UnlockTech(e.techID)
}

// RetreatExecution flags an outgoing attack for withdrawal (cancel_attack).
type RetreatExecution struct {
	active   bool
	playerID game.PlayerID
	attackID string
	player   *game.Player
}

func NewRetreatExecution(playerID game.PlayerID, attackID string) *RetreatExecution {
	return &RetreatExecution{active: true, playerID: playerID, attackID: attackID}
}

func (e *RetreatExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *RetreatExecution) IsActive() bool               { return e.active }

func (e *RetreatExecution) Init(g *game.Game, tick game.Tick) error {
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("retreat: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *RetreatExecution) Tick(tick game.Tick) {
	e.active = false
	for _, a := range e.player.OutgoingAttacks() {
		if a.ID() == e.attackID {
			a.Retreat()
			return
		}
	}
}

// CancelBoatExecution turns a transport ship around (cancel_boat).
type CancelBoatExecution struct {
	active   bool
	playerID game.PlayerID
	unitID   game.UnitID
	g        *game.Game
	player   *game.Player
}

func NewCancelBoatExecution(playerID game.PlayerID, unitID game.UnitID) *CancelBoatExecution {
	return &CancelBoatExecution{active: true, playerID: playerID, unitID: unitID}
}

func (e *CancelBoatExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *CancelBoatExecution) IsActive() bool               { return e.active }

func (e *CancelBoatExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("cancel boat: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *CancelBoatExecution) Tick(tick game.Tick) {
	e.active = false
	u := e.g.UnitByID(e.unitID)
	if u == nil || u.Owner() != e.player || u.Type() != game.UnitTransportShip {
		return
	}
	u.OrderRetreat()
}

// MarkDisconnectedExecution applies the synthetic mark_disconnected intent the
// server injects when a client times out, and its reverse on reconnect. Every
// replica flips the flag at the same tick, which is the whole point of
// routing disconnects through the turn log.
type MarkDisconnectedExecution struct {
	active       bool
	playerID     game.PlayerID
	disconnected bool
	player       *game.Player
}

func NewMarkDisconnectedExecution(playerID game.PlayerID, disconnected bool) *MarkDisconnectedExecution {
	return &MarkDisconnectedExecution{active: true, playerID: playerID, disconnected: disconnected}
}

func (e *MarkDisconnectedExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *MarkDisconnectedExecution) IsActive() bool               { return e.active }

func (e *MarkDisconnectedExecution) Init(g *game.Game, tick game.Tick) error {
	p, ok := g.PlayerByID(e.playerID)
	if !ok {
		e.active = false
		return fmt.Errorf("mark disconnected: player %s not found", e.playerID)
	}
	e.player = p
	return nil
}

func (e *MarkDisconnectedExecution) Tick(tick game.Tick) {
	e.active = false
	e.player.SetDisconnected(e.disconnected)
}

// EmojiExecution surfaces an emoji to the updates snapshot. recipientID empty
// broadcasts to everyone.
type EmojiExecution struct {
	active      bool
	senderID    game.PlayerID
	recipientID game.PlayerID
	emoji       string
	g           *game.Game
}

func NewEmojiExecution(senderID, recipientID game.PlayerID, emoji string) *EmojiExecution {
	return &EmojiExecution{active: true, senderID: senderID, recipientID: recipientID, emoji: emoji}
}

func (e *EmojiExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *EmojiExecution) IsActive() bool               { return e.active }

func (e *EmojiExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	if _, ok := g.PlayerByID(e.senderID); !ok {
		e.active = false
		return fmt.Errorf("emoji: sender %s not found", e.senderID)
	}
	return nil
}

func (e *EmojiExecution) Tick(tick game.Tick) {
	e.active = false
	e.g.RecordChat(e.senderID, e.recipientID, e.emoji)
}

// QuickChatExecution surfaces a canned chat line keyed by its message id.
type QuickChatExecution struct {
	active      bool
	senderID    game.PlayerID
	recipientID game.PlayerID
	key         string
	g           *game.Game
}

func NewQuickChatExecution(senderID, recipientID game.PlayerID, key string) *QuickChatExecution {
	return &QuickChatExecution{active: true, senderID: senderID, recipientID: recipientID, key: key}
}

func (e *QuickChatExecution) ActiveDuringSpawnPhase() bool { return true }
func (e *QuickChatExecution) IsActive() bool               { return e.active }

func (e *QuickChatExecution) Init(g *game.Game, tick game.Tick) error {
	e.g = g
	if _, ok := g.PlayerByID(e.senderID); !ok {
		e.active = false
		return fmt.Errorf("quick chat: sender %s not found", e.senderID)
	}
	return nil
}

func (e *QuickChatExecution) Tick(tick game.Tick) {
	e.active = false
	e.g.RecordChat(e.senderID, e.recipientID, e.key)
}
