// Package protocol defines the JSON wire format between game clients and the
// lockstep server. Messages are flat structs routed by their "type" field;
// every client->server message carries the game and client IDs so a worker
// can validate routing without session state.
package protocol

import "encoding/json"

const Version = "1.0"

// Client -> server message types.
const (
	TypeJoin   = "join"
	TypeIntent = "intent"
	TypePing   = "ping"
	TypeHash   = "hash"
	TypeWinner = "winner"
)

// Server -> client message types.
const (
	TypePrestart = "prestart"
	TypeStart    = "start"
	TypeTurn     = "turn"
	TypeDesync   = "desync"
	TypeError    = "error"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
