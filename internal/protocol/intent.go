package protocol

// Intent kinds. These are the only player actions the simulation accepts;
// everything a replica does between turns is derived deterministically.
const (
	IntentSpawn            = "spawn"
	IntentAttack           = "attack"
	IntentBoat             = "boat"
	IntentBuildUnit        = "build_unit"
	IntentAllianceRequest  = "allianceRequest"
	IntentAllianceReply    = "allianceRequestReply"
	IntentBreakAlliance    = "breakAlliance"
	IntentTargetPlayer     = "targetPlayer"
	IntentStrikePackage    = "strike_package"
	IntentEmoji            = "emoji"
	IntentQuickChat        = "quick_chat"
	IntentDonateGold       = "donate_gold"
	IntentDonateTroops     = "donate_troops"
	IntentTroopRatio       = "troop_ratio"
	IntentEmbargo          = "embargo"
	IntentUnlockTech       = "unlock_tech"
	IntentCancelAttack     = "cancel_attack"
	IntentCancelBoat       = "cancel_boat"
	IntentMarkDisconnected = "mark_disconnected"
)

// Intent is the flat union of every intent kind. Only the fields for the
// given Type are meaningful; the rest stay at their zero value and are
// omitted on the wire. ClientID is stamped by the server from the session,
// never trusted from the payload.
type Intent struct {
	Type     string `json:"type"`
	ClientID string `json:"clientID"`
	PlayerID string `json:"playerID,omitempty"`

	// attack, boat, alliance and diplomacy intents.
	TargetID string   `json:"targetID,omitempty"`
	Troops   *float64 `json:"troops,omitempty"`

	// spawn, boat, build_unit.
	Tile     *uint32 `json:"tile,omitempty"`
	UnitType string  `json:"unitType,omitempty"`

	// allianceRequestReply.
	Accept *bool `json:"accept,omitempty"`

	// embargo: "start" or "stop".
	Action string `json:"action,omitempty"`

	// donate_gold.
	Gold *int64 `json:"gold,omitempty"`

	// troop_ratio.
	TargetRatio  *float64 `json:"targetRatio,omitempty"`
	ReserveRatio *float64 `json:"reserveRatio,omitempty"`

	// unlock_tech.
	TechID string `json:"techID,omitempty"`

	// strike_package.
	PackageType string `json:"packageType,omitempty"`

	// emoji, quick_chat. RecipientID empty means broadcast.
	RecipientID  string `json:"recipientID,omitempty"`
	Emoji        string `json:"emoji,omitempty"`
	QuickChatKey string `json:"quickChatKey,omitempty"`

	// cancel_attack.
	AttackID string `json:"attackID,omitempty"`

	// cancel_boat.
	UnitID *uint32 `json:"unitID,omitempty"`

	// mark_disconnected (server-injected only).
	Disconnected *bool `json:"disconnected,omitempty"`
}

// Turn is the sealed batch of intents for one simulation tick. Turns are
// what the server archives and what reconnecting clients replay; an empty
// Intents slice is still a turn and still advances the clock.
type Turn struct {
	TurnNumber int      `json:"turnNumber"`
	GameID     string   `json:"gameID"`
	Intents    []Intent `json:"intents"`

	// Hash is filled in by clients when reporting, never broadcast.
	Hash string `json:"hash,omitempty"`
}
