package protocol

import "warfront.io/internal/tuning"

// JoinMsg is the first message on a fresh socket. LastTurn > 0 asks the
// server to replay the turn log from that point instead of from zero.
type JoinMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	GameID          string `json:"gameID"`
	ClientID        string `json:"clientID"`
	PersistentID    string `json:"persistentID"`
	Username        string `json:"username"`
	LastTurn        int    `json:"lastTurn"`
}

// IntentMsg submits one intent for sequencing into a future turn.
type IntentMsg struct {
	Type     string `json:"type"`
	GameID   string `json:"gameID"`
	ClientID string `json:"clientID"`
	Intent   Intent `json:"intent"`
}

// PingMsg is a keepalive; the server tracks the last one per client.
type PingMsg struct {
	Type     string `json:"type"`
	GameID   string `json:"gameID"`
	ClientID string `json:"clientID"`
}

// HashMsg reports the client's state hash for a finished turn.
type HashMsg struct {
	Type       string `json:"type"`
	GameID     string `json:"gameID"`
	ClientID   string `json:"clientID"`
	TurnNumber int    `json:"turnNumber"`
	Hash       string `json:"hash"`
}

// WinnerMsg reports the client's view of the game result. The server
// records the majority report in the archive.
type WinnerMsg struct {
	Type            string        `json:"type"`
	GameID          string        `json:"gameID"`
	ClientID        string        `json:"clientID"`
	Winner          string        `json:"winner"`
	AllPlayersStats []PlayerStats `json:"allPlayersStats"`
}

// PlayerStats is the per-player scoreboard a client submits with its
// winner report.
type PlayerStats struct {
	ClientID       string `json:"clientID"`
	Gold           int64  `json:"gold"`
	TilesOwned     int    `json:"tilesOwned"`
	TilesConquered int    `json:"tilesConquered"`
	TroopsLost     int64  `json:"troopsLost"`
}

// PrestartMsg tells joined clients which map to load before the first turn.
type PrestartMsg struct {
	Type    string  `json:"type"`
	GameMap MapInfo `json:"gameMap"`
}

// StartMsg carries everything a replica needs to reconstruct the game
// deterministically, plus the turn log so far for late joiners.
type StartMsg struct {
	Type          string        `json:"type"`
	Turns         []Turn        `json:"turns"`
	GameStartInfo GameStartInfo `json:"gameStartInfo"`
}

// TurnMsg broadcasts one sealed turn.
type TurnMsg struct {
	Type string `json:"type"`
	Turn Turn   `json:"turn"`
}

// DesyncMsg is sent to clients whose reported hash disagrees with the
// majority for a checked turn.
type DesyncMsg struct {
	Type                   string `json:"type"`
	Turn                   int    `json:"turn"`
	CorrectHash            string `json:"correctHash"`
	YourHash               string `json:"yourHash,omitempty"`
	ClientsWithCorrectHash int    `json:"clientsWithCorrectHash"`
	TotalActiveClients     int    `json:"totalActiveClients"`
}

// ErrorMsg rejects a single malformed message without dropping the socket.
type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// MapInfo identifies the generated map. Replicas regenerate it from the
// seed, so the dimensions travel with it as a sanity check.
type MapInfo struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`
}

// GameStartInfo pins down the deterministic inputs of a match: map, tuning,
// options and the player roster in spawn order. Two replicas fed the same
// GameStartInfo and turn log produce identical state hashes.
type GameStartInfo struct {
	GameID  string         `json:"gameID"`
	GameMap MapInfo        `json:"gameMap"`
	Config  GameConfig     `json:"config"`
	Players []PlayerRecord `json:"players"`
}

// GameConfig is the wire form of the match options plus the effective
// tuning table.
type GameConfig struct {
	Difficulty     string        `json:"difficulty"`
	Bots           int           `json:"bots"`
	Nations        int           `json:"nations"`
	DisableNPCs    bool          `json:"disableNPCs"`
	InstantBuild   bool          `json:"instantBuild"`
	InfiniteGold   bool          `json:"infiniteGold"`
	InfiniteTroops bool          `json:"infiniteTroops"`
	DisabledUnits  []string      `json:"disabledUnits,omitempty"`
	Tuning         tuning.Tuning `json:"tuning"`
}

// PlayerRecord is one roster entry. Order matters: replicas add players in
// slice order so small IDs match across the fleet.
type PlayerRecord struct {
	PlayerID   string `json:"playerID"`
	ClientID   string `json:"clientID,omitempty"`
	Username   string `json:"username"`
	PlayerType string `json:"playerType"`
	Team       string `json:"team,omitempty"`
}

// LobbyInfo is the public-lobby listing entry served over HTTP.
type LobbyInfo struct {
	GameID       string  `json:"gameID"`
	NumClients   int     `json:"numClients"`
	MsUntilStart int64   `json:"msUntilStart"`
	GameMap      MapInfo `json:"gameMap"`
}
