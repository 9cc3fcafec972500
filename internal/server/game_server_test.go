package server

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/protocol"
	"warfront.io/internal/tuning"
)

func testGameServer(t *testing.T) *GameServer {
	t.Helper()
	cfg := protocol.GameConfig{
		Difficulty: "Medium",
		Tuning:     tuning.Defaults(),
	}
	gmap := protocol.MapInfo{Width: 40, Height: 40, Seed: 7}
	return NewGameServer("g1", gmap, cfg, 0, false, NewAlerter("", zap.NewNop()), nil, zap.NewNop())
}

func joinN(t *testing.T, s *GameServer, n int) []*Client {
	t.Helper()
	clients := make([]*Client, n)
	for i := range clients {
		id := string(rune('a' + i))
		c := NewClient("c"+id, "p"+id, "user"+id, "10.0.0."+id)
		if err := s.Join(c, 0); err != nil {
			t.Fatalf("join %s: %v", c.ClientID, err)
		}
		clients[i] = c
	}
	return clients
}

// drainTypes empties a client's send queue and returns the message types
// seen, in order.
func drainTypes(c *Client) []string {
	var types []string
	for {
		select {
		case b := <-c.out:
			base, _ := protocol.DecodeBase(b)
			types = append(types, base.Type)
		default:
			return types
		}
	}
}

func TestDesyncMajorityFlagsMinorityOnly(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 5)
	if !s.start() {
		t.Fatalf("start failed")
	}

	if !s.EndTurn() {
		t.Fatalf("end turn 0")
	}
	good := strings.Repeat("a", 64)
	for i, c := range clients {
		h := good
		switch i {
		case 3:
			h = strings.Repeat("b", 64)
		case 4:
			h = strings.Repeat("c", 64)
		}
		s.OnHash(c.ClientID, 0, h)
	}

	// Turn 0 is checked once turn 10 seals.
	for i := 0; i < 10; i++ {
		if !s.EndTurn() {
			t.Fatalf("end turn %d", i+1)
		}
	}

	for i, c := range clients {
		got := drainTypes(c)
		desyncs := 0
		for _, typ := range got {
			if typ == protocol.TypeDesync {
				desyncs++
			}
		}
		if i < 3 && desyncs != 0 {
			t.Fatalf("majority client %d flagged desynced", i)
		}
		if i >= 3 && desyncs != 1 {
			t.Fatalf("minority client %d got %d desync notices, want 1", i, desyncs)
		}
	}
}

// When half the fleet disagrees there is no trustworthy majority; every
// reporting client gets flagged.
func TestDesyncHalfFleetFlagsEveryone(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 4)
	if !s.start() {
		t.Fatalf("start failed")
	}
	_ = s.EndTurn()
	for i, c := range clients {
		h := strings.Repeat("a", 64)
		if i >= 2 {
			h = strings.Repeat("b", 64)
		}
		s.OnHash(c.ClientID, 0, h)
	}
	for i := 0; i < 10; i++ {
		_ = s.EndTurn()
	}

	for i, c := range clients {
		desyncs := 0
		for _, typ := range drainTypes(c) {
			if typ == protocol.TypeDesync {
				desyncs++
			}
		}
		if desyncs != 1 {
			t.Fatalf("client %d got %d desync notices, want 1", i, desyncs)
		}
	}
}

func TestDesyncNoticeCarriesMajorityCount(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 5)
	if !s.start() {
		t.Fatalf("start failed")
	}
	_ = s.EndTurn()
	good := strings.Repeat("a", 64)
	for i, c := range clients {
		h := good
		if i == 4 {
			h = strings.Repeat("f", 64)
		}
		s.OnHash(c.ClientID, 0, h)
	}
	for i := 0; i < 10; i++ {
		_ = s.EndTurn()
	}

	var notice protocol.DesyncMsg
	found := false
	for len(clients[4].out) > 0 {
		b := <-clients[4].out
		base, _ := protocol.DecodeBase(b)
		if base.Type == protocol.TypeDesync {
			_ = json.Unmarshal(b, &notice)
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("minority client got no desync notice")
	}
	if notice.Turn != 0 || notice.CorrectHash != good {
		t.Fatalf("bad notice: %+v", notice)
	}
	if notice.ClientsWithCorrectHash != 4 || notice.TotalActiveClients != 5 {
		t.Fatalf("bad counts: %+v", notice)
	}
}

// An intent that arrives after a turn seals rides the next turn, never an
// earlier one.
func TestIntentNeverBackdated(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 2)
	if !s.start() {
		t.Fatalf("start failed")
	}

	_ = s.EndTurn()
	if err := s.OnIntent(clients[0].ClientID, protocol.Intent{Type: protocol.IntentAttack, TargetID: "cb"}); err != nil {
		t.Fatalf("intent: %v", err)
	}
	_ = s.EndTurn()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) != 2 {
		t.Fatalf("want 2 turns, got %d", len(s.turns))
	}
	if len(s.turns[0].Intents) != 0 {
		t.Fatalf("intent backdated into sealed turn 0")
	}
	if len(s.turns[1].Intents) != 1 || s.turns[1].Intents[0].Type != protocol.IntentAttack {
		t.Fatalf("intent missing from turn 1: %+v", s.turns[1])
	}
	if s.turns[1].Intents[0].ClientID != clients[0].ClientID {
		t.Fatalf("server did not stamp session client id")
	}
}

func TestMarkDisconnectedRefusedFromClients(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 2)
	if !s.start() {
		t.Fatalf("start failed")
	}
	err := s.OnIntent(clients[0].ClientID, protocol.Intent{Type: protocol.IntentMarkDisconnected})
	if err == nil {
		t.Fatalf("mark_disconnected accepted from a client")
	}
}

func TestJoinRefusesFourthFromSameIP(t *testing.T) {
	s := testGameServer(t)
	for i := 0; i < 3; i++ {
		c := NewClient("c"+string(rune('0'+i)), "p"+string(rune('0'+i)), "u", "1.2.3.4")
		if err := s.Join(c, 0); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	c := NewClient("c9", "p9", "u", "1.2.3.4")
	if err := s.Join(c, 0); err == nil {
		t.Fatalf("fourth client from one IP admitted")
	}
}

func TestReconnectReplaysTurnLog(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 2)
	if !s.start() {
		t.Fatalf("start failed")
	}
	for i := 0; i < 5; i++ {
		_ = s.EndTurn()
	}
	s.Leave(clients[0].ClientID)

	rejoined := NewClient(clients[0].ClientID, clients[0].PersistentID, "usera", "10.0.0.a")
	if err := s.Join(rejoined, 3); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	var start protocol.StartMsg
	select {
	case b := <-rejoined.out:
		if err := json.Unmarshal(b, &start); err != nil || start.Type != protocol.TypeStart {
			t.Fatalf("expected start message, got %s", b)
		}
	default:
		t.Fatalf("no message after rejoin")
	}
	if len(start.Turns) != 2 {
		t.Fatalf("want turns 3..4 replayed, got %d turns", len(start.Turns))
	}
	if start.Turns[0].TurnNumber != 3 {
		t.Fatalf("replay starts at %d, want 3", start.Turns[0].TurnNumber)
	}

	// The reconnect clears the disconnect flag via the turn log.
	_ = s.EndTurn()
	s.mu.Lock()
	last := s.turns[len(s.turns)-1]
	s.mu.Unlock()
	found := false
	for _, in := range last.Intents {
		if in.Type == protocol.IntentMarkDisconnected && in.ClientID == rejoined.ClientID &&
			in.Disconnected != nil && !*in.Disconnected {
			found = true
		}
	}
	if !found {
		t.Fatalf("reconnect did not inject mark_disconnected=false: %+v", last.Intents)
	}
}

func TestKickBansPersistentID(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 3)
	if !s.start() {
		t.Fatalf("start failed")
	}
	if !s.Kick(clients[1].ClientID) {
		t.Fatalf("kick failed")
	}
	back := NewClient(clients[1].ClientID, clients[1].PersistentID, "userb", "10.0.0.b")
	if err := s.Join(back, 0); err == nil {
		t.Fatalf("kicked client rejoined")
	}
}

func TestWinnerNeedsMajority(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 3)
	if !s.start() {
		t.Fatalf("start failed")
	}
	s.OnWinner(clients[0].ClientID, "ca", nil)
	if s.Phase() != PhaseActive {
		t.Fatalf("single vote ended the game")
	}
	s.OnWinner(clients[1].ClientID, "ca", nil)
	if s.Phase() != PhaseFinished {
		t.Fatalf("majority vote did not end the game")
	}
}

// One client repeating its winner report must never add up to a majority.
func TestWinnerVoteCountedOncePerClient(t *testing.T) {
	s := testGameServer(t)
	clients := joinN(t, s, 3)
	if !s.start() {
		t.Fatalf("start failed")
	}
	for i := 0; i < 5; i++ {
		s.OnWinner(clients[0].ClientID, "ca", nil)
	}
	if s.Phase() != PhaseActive {
		t.Fatalf("repeated votes from one client ended the game")
	}
	s.OnWinner(clients[1].ClientID, "ca", nil)
	if s.Phase() != PhaseFinished {
		t.Fatalf("majority vote did not end the game")
	}
}
