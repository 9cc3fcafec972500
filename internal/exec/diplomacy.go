package exec

import (
	"fmt"

	"warfront.io/internal/game"
)

// The diplomacy executions are one-shot: they resolve their players at init,
// apply the state change on their single tick, and deactivate.

type AllianceRequestExecution struct {
	active      bool
	requestorID game.PlayerID
	recipientID game.PlayerID
	requestor   *game.Player
	recipient   *game.Player
}

func NewAllianceRequestExecution(requestorID, recipientID game.PlayerID) *AllianceRequestExecution {
	return &AllianceRequestExecution{active: true, requestorID: requestorID, recipientID: recipientID}
}

func (e *AllianceRequestExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *AllianceRequestExecution) IsActive() bool               { return e.active }

func (e *AllianceRequestExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.requestor, e.recipient, err = resolvePair(g, e.requestorID, e.recipientID, "alliance request")
	if err != nil {
		e.active = false
	}
	return err
}

func (e *AllianceRequestExecution) Tick(tick game.Tick) {
	e.active = false
	if e.requestor.IsAlliedWith(e.recipient) {
		return
	}
	e.recipient.AddAllianceRequest(e.requestor)
}

type AllianceReplyExecution struct {
	active      bool
	requestorID game.PlayerID // the original requestor
	recipientID game.PlayerID // the player replying
	accept      bool
	requestor   *game.Player
	recipient   *game.Player
}

func NewAllianceReplyExecution(requestorID, recipientID game.PlayerID, accept bool) *AllianceReplyExecution {
	return &AllianceReplyExecution{
		active: true, requestorID: requestorID, recipientID: recipientID, accept: accept,
	}
}

func (e *AllianceReplyExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *AllianceReplyExecution) IsActive() bool               { return e.active }

func (e *AllianceReplyExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.requestor, e.recipient, err = resolvePair(g, e.requestorID, e.recipientID, "alliance reply")
	if err != nil {
		e.active = false
	}
	return err
}

func (e *AllianceReplyExecution) Tick(tick game.Tick) {
	e.active = false
	if !e.recipient.TakeAllianceRequest(e.requestor) {
		return
	}
	if !e.accept {
		e.requestor.UpdateRelation(e.recipient, -10)
		return
	}
	e.recipient.FormAlliance(e.requestor)
	e.requestor.UpdateRelation(e.recipient, 30)
	e.recipient.UpdateRelation(e.requestor, 30)
}

type BreakAllianceExecution struct {
	active    bool
	breakerID game.PlayerID
	otherID   game.PlayerID
	breaker   *game.Player
	other     *game.Player
}

func NewBreakAllianceExecution(breakerID, otherID game.PlayerID) *BreakAllianceExecution {
	return &BreakAllianceExecution{active: true, breakerID: breakerID, otherID: otherID}
}

func (e *BreakAllianceExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *BreakAllianceExecution) IsActive() bool               { return e.active }

func (e *BreakAllianceExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.breaker, e.other, err = resolvePair(g, e.breakerID, e.otherID, "break alliance")
	if err != nil {
		e.active = false
	}
	return err
}

func (e *BreakAllianceExecution) Tick(tick game.Tick) {
	e.active = false
	if al := e.breaker.AllianceWith(e.other); al != nil {
		e.breaker.BreakAlliance(al)
	}
}

type EmbargoExecution struct {
	active   bool
	ownerID  game.PlayerID
	targetID game.PlayerID
	enable   bool
	owner    *game.Player
	target   *game.Player
}

func NewEmbargoExecution(ownerID, targetID game.PlayerID, enable bool) *EmbargoExecution {
	return &EmbargoExecution{active: true, ownerID: ownerID, targetID: targetID, enable: enable}
}

func (e *EmbargoExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *EmbargoExecution) IsActive() bool               { return e.active }

func (e *EmbargoExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.owner, e.target, err = resolvePair(g, e.ownerID, e.targetID, "embargo")
	if err != nil {
		e.active = false
	}
	return err
}

func (e *EmbargoExecution) Tick(tick game.Tick) {
	e.active = false
	e.owner.SetEmbargo(e.target, e.enable)
}

type TargetPlayerExecution struct {
	active      bool
	requestorID game.PlayerID
	targetID    game.PlayerID
	requestor   *game.Player
	target      *game.Player
}

func NewTargetPlayerExecution(requestorID, targetID game.PlayerID) *TargetPlayerExecution {
	return &TargetPlayerExecution{active: true, requestorID: requestorID, targetID: targetID}
}

func (e *TargetPlayerExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *TargetPlayerExecution) IsActive() bool               { return e.active }

func (e *TargetPlayerExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.requestor, e.target, err = resolvePair(g, e.requestorID, e.targetID, "target player")
	if err != nil {
		e.active = false
	}
	return err
}

func (e *TargetPlayerExecution) Tick(tick game.Tick) {
	e.active = false
	if e.requestor.IsFriendly(e.target) {
		return
	}
	e.requestor.SetTarget(e.target)
	e.target.UpdateRelation(e.requestor, -20)
}

type DonateGoldExecution struct {
	active      bool
	senderID    game.PlayerID
	recipientID game.PlayerID
	amount      int64
	sender      *game.Player
	recipient   *game.Player
}

func NewDonateGoldExecution(senderID, recipientID game.PlayerID, amount int64) *DonateGoldExecution {
	return &DonateGoldExecution{active: true, senderID: senderID, recipientID: recipientID, amount: amount}
}

func (e *DonateGoldExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *DonateGoldExecution) IsActive() bool               { return e.active }

func (e *DonateGoldExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.sender, e.recipient, err = resolvePair(g, e.senderID, e.recipientID, "donate gold")
	if err != nil {
		e.active = false
		return err
	}
	if e.amount <= 0 {
		e.active = false
		return fmt.Errorf("donate gold: invalid amount %d", e.amount)
	}
	return nil
}

func (e *DonateGoldExecution) Tick(tick game.Tick) {
	e.active = false
	moved := e.sender.RemoveGold(e.amount)
	e.recipient.AddGold(moved)
	e.recipient.UpdateRelation(e.sender, 10)
}

type DonateTroopsExecution struct {
	active      bool
	senderID    game.PlayerID
	recipientID game.PlayerID
	amount      float64
	sender      *game.Player
	recipient   *game.Player
}

func NewDonateTroopsExecution(senderID, recipientID game.PlayerID, amount float64) *DonateTroopsExecution {
	return &DonateTroopsExecution{active: true, senderID: senderID, recipientID: recipientID, amount: amount}
}

func (e *DonateTroopsExecution) ActiveDuringSpawnPhase() bool { return false }
func (e *DonateTroopsExecution) IsActive() bool               { return e.active }

func (e *DonateTroopsExecution) Init(g *game.Game, tick game.Tick) error {
	var err error
	e.sender, e.recipient, err = resolvePair(g, e.senderID, e.recipientID, "donate troops")
	if err != nil {
		e.active = false
		return err
	}
	if e.amount <= 0 {
		e.active = false
		return fmt.Errorf("donate troops: invalid amount %v", e.amount)
	}
	return nil
}

func (e *DonateTroopsExecution) Tick(tick game.Tick) {
	e.active = false
	moved := e.sender.RemoveTroops(e.amount)
	e.recipient.AddTroops(moved)
	e.recipient.UpdateRelation(e.sender, 10)
}

func resolvePair(g *game.Game, aID, bID game.PlayerID, what string) (*game.Player, *game.Player, error) {
	a, ok := g.PlayerByID(aID)
	if !ok {
		return nil, nil, fmt.Errorf("%s: player %s not found", what, aID)
	}
	b, ok := g.PlayerByID(bID)
	if !ok {
		return nil, nil, fmt.Errorf("%s: player %s not found", what, bID)
	}
	if a == b {
		return nil, nil, fmt.Errorf("%s: %s targeting itself", what, aID)
	}
	return a, b, nil
}
