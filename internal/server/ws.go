package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"warfront.io/internal/protocol"
	"warfront.io/schemas"
)

// validateIntent checks an intent submission against the published schema
// before it can reach the turn log.
func validateIntent(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if err := schemas.Intent.Validate(v); err != nil {
		return fmt.Errorf("intent rejected by schema")
	}
	return nil
}

// WSHandler upgrades sockets and bridges them to the game manager. One
// reader loop and one writer goroutine per connection; the writer drains
// the client's out channel so broadcasts never block a game.
type WSHandler struct {
	manager  *Manager
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(m *Manager, log *zap.Logger) *WSHandler {
	return &WSHandler{
		manager: m,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Handle(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	gs, client := h.handshake(conn, clientIP(r))
	if gs == nil {
		return
	}

	done := make(chan struct{})

	// Writer goroutine.
	go func() {
		defer close(done)
		for b := range client.Out() {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	}()

	// Reader loop.
	readTimeout := time.Duration(gs.cfg.Tuning.PingTimeoutMs) * time.Millisecond
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.dispatch(gs, client, conn, msg)
	}

	gs.Leave(client.ClientID)
	conn.Close()
	<-done
}

// dispatch routes one inbound message. A malformed message gets an error
// reply and is otherwise ignored; the socket stays up.
func (h *WSHandler) dispatch(gs *GameServer, client *Client, conn *websocket.Conn, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		client.Send(protocol.ErrorMsg{Type: protocol.TypeError, Error: "malformed json"})
		return
	}
	client.Touch()

	switch base.Type {
	case protocol.TypePing:
		gs.OnPing(client.ClientID)

	case protocol.TypeIntent:
		var m protocol.IntentMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			client.Send(protocol.ErrorMsg{Type: protocol.TypeError, Error: "malformed intent"})
			return
		}
		if err := validateIntent(msg); err != nil {
			client.Send(protocol.ErrorMsg{Type: protocol.TypeError, Error: err.Error()})
			return
		}
		if err := gs.OnIntent(client.ClientID, m.Intent); err != nil {
			client.Send(protocol.ErrorMsg{Type: protocol.TypeError, Error: err.Error()})
		}

	case protocol.TypeHash:
		var m protocol.HashMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		gs.OnHash(client.ClientID, m.TurnNumber, m.Hash)

	case protocol.TypeWinner:
		var m protocol.WinnerMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return
		}
		gs.OnWinner(client.ClientID, m.Winner, m.AllPlayersStats)

	default:
		client.Send(protocol.ErrorMsg{Type: protocol.TypeError, Error: "unknown message type " + base.Type})
	}
}

// handshake reads the join message and seats the client in its game.
func (h *WSHandler) handshake(conn *websocket.Conn, ip string) (*GameServer, *Client) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeJoin {
		h.refuse(conn, "expected join")
		return nil, nil
	}
	var join protocol.JoinMsg
	if err := json.Unmarshal(msg, &join); err != nil {
		h.refuse(conn, "malformed join")
		return nil, nil
	}
	if join.ProtocolVersion != "" && join.ProtocolVersion != protocol.Version {
		h.refuse(conn, "bad protocol_version")
		return nil, nil
	}
	if join.GameID == "" || join.ClientID == "" {
		h.refuse(conn, "missing ids")
		return nil, nil
	}
	if join.Username == "" {
		join.Username = "anon"
	}

	gs, ok := h.manager.Game(join.GameID)
	if !ok {
		h.refuse(conn, "no such game")
		return nil, nil
	}

	client := NewClient(join.ClientID, join.PersistentID, join.Username, ip)
	if err := gs.Join(client, join.LastTurn); err != nil {
		h.refuse(conn, err.Error())
		return nil, nil
	}
	h.log.Info("client joined",
		zap.String("game", join.GameID),
		zap.String("client", join.ClientID),
		zap.Int("lastTurn", join.LastTurn))
	return gs, client
}

func (h *WSHandler) refuse(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
