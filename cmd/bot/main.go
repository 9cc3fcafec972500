// Command bot is a headless lockstep client: it joins a game, runs the
// deterministic replica against the broadcast turn log, reports state
// hashes, and spawns somewhere free so lobbies can fill for load tests.
package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"warfront.io/internal/game"
	"warfront.io/internal/protocol"
	"warfront.io/internal/runner"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/ws", "ws url")
		gameID = flag.String("game", "", "game id to join")
		name   = flag.String("name", "bot", "display name")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	if *gameID == "" {
		logger.Fatal("missing -game")
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatal("dial", zap.Error(err))
	}
	defer conn.Close()

	clientID := uuid.NewString()[:8]
	join := protocol.JoinMsg{
		Type:            protocol.TypeJoin,
		ProtocolVersion: protocol.Version,
		GameID:          *gameID,
		ClientID:        clientID,
		PersistentID:    uuid.NewString(),
		Username:        *name,
	}
	if err := conn.WriteJSON(join); err != nil {
		logger.Fatal("send join", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	pinger := time.NewTicker(10 * time.Second)
	defer pinger.Stop()
	go func() {
		for range pinger.C {
			_ = conn.WriteJSON(protocol.PingMsg{Type: protocol.TypePing, GameID: *gameID, ClientID: clientID})
		}
	}()

	var replica *runner.Replica
	spawned := false

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Info("connection closed", zap.Error(err))
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}

		switch base.Type {
		case protocol.TypePrestart:
			logger.Info("game starting soon")

		case protocol.TypeStart:
			var m protocol.StartMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				logger.Fatal("bad start message", zap.Error(err))
			}
			replica, err = runner.NewReplica(m.GameStartInfo, logger)
			if err != nil {
				logger.Fatal("build replica", zap.Error(err))
			}
			for _, turn := range m.Turns {
				if err := replica.ApplyTurn(turn); err != nil {
					logger.Fatal("catch up", zap.Error(err))
				}
			}
			logger.Info("replica running",
				zap.Int("players", len(m.GameStartInfo.Players)),
				zap.Int("caughtUp", len(m.Turns)))

		case protocol.TypeTurn:
			if replica == nil {
				continue
			}
			var m protocol.TurnMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			if err := replica.ApplyTurn(m.Turn); err != nil {
				logger.Fatal("apply turn", zap.Int("turn", m.Turn.TurnNumber), zap.Error(err))
			}
			interval := replica.Game().Config().T.HashCheckInterval
			if interval > 0 && m.Turn.TurnNumber%interval == 0 {
				_ = conn.WriteJSON(protocol.HashMsg{
					Type:       protocol.TypeHash,
					GameID:     *gameID,
					ClientID:   clientID,
					TurnNumber: m.Turn.TurnNumber,
					Hash:       replica.Hash(),
				})
			}
			if !spawned {
				spawned = true
				if tile, ok := pickSpawn(replica); ok {
					_ = conn.WriteJSON(protocol.IntentMsg{
						Type:     protocol.TypeIntent,
						GameID:   *gameID,
						ClientID: clientID,
						Intent: protocol.Intent{
							Type: protocol.IntentSpawn,
							Tile: &tile,
						},
					})
				}
			}

		case protocol.TypeDesync:
			var m protocol.DesyncMsg
			_ = json.Unmarshal(msg, &m)
			logger.Error("desynced from majority",
				zap.Int("turn", m.Turn),
				zap.String("correct", m.CorrectHash),
				zap.String("mine", m.YourHash))
		}
	}
}

// pickSpawn scans the replica's map for a free land tile, starting from a
// client-local random offset. The game's own RNG is simulation state and
// must never be consumed here.
func pickSpawn(r *runner.Replica) (uint32, bool) {
	gm := r.Game().Map()
	n := gm.Width() * gm.Height()
	start := rand.Intn(n)
	for i := 0; i < n; i++ {
		t := game.TileRef((start + i) % n)
		if gm.IsLand(t) && !gm.HasOwner(t) {
			return uint32(t), true
		}
	}
	return 0, false
}
