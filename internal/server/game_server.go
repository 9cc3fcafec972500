package server

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warfront.io/internal/archive"
	"warfront.io/internal/protocol"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseActive:
		return "Active"
	default:
		return "Finished"
	}
}

// GameServer sequences one match. It never simulates: it seals intents into
// turns on a fixed cadence, broadcasts them, and cross-checks the state
// hashes the replicas report. The simulation authority is the majority of
// clients, which is what makes desync detection meaningful.
type GameServer struct {
	id   string
	log  *zap.Logger
	cfg  protocol.GameConfig
	gmap protocol.MapInfo
	prod bool

	alerter *Alerter
	arc     *archive.Archive

	mu      sync.Mutex
	phase   Phase
	clients map[string]*Client
	kicked  map[string]bool
	roster  []protocol.PlayerRecord
	turns   []protocol.Turn
	pending []protocol.Intent

	// turn -> clientID -> reported hash. Pruned after each check.
	hashes map[int]map[string]string

	winnerVotes map[string]int
	winnerVoted map[string]bool
	winnerStats []protocol.PlayerStats
	winner      string

	createdAt time.Time
	startAt   time.Time
	startedAt time.Time
	alertSent bool

	stop     chan struct{}
	stopOnce sync.Once
}

func NewGameServer(id string, gmap protocol.MapInfo, cfg protocol.GameConfig, startIn time.Duration, prod bool, alerter *Alerter, arc *archive.Archive, log *zap.Logger) *GameServer {
	return &GameServer{
		id:          id,
		log:         log.With(zap.String("game", id)),
		cfg:         cfg,
		gmap:        gmap,
		prod:        prod,
		alerter:     alerter,
		arc:         arc,
		clients:     make(map[string]*Client),
		kicked:      make(map[string]bool),
		hashes:      make(map[int]map[string]string),
		winnerVotes: make(map[string]int),
		winnerVoted: make(map[string]bool),
		createdAt:   time.Now(),
		startAt:     time.Now().Add(startIn),
		stop:        make(chan struct{}),
	}
}

func (s *GameServer) ID() string { return s.id }

func (s *GameServer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *GameServer) LobbyInfo() protocol.LobbyInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.LobbyInfo{
		GameID:       s.id,
		NumClients:   len(s.clients),
		MsUntilStart: time.Until(s.startAt).Milliseconds(),
		GameMap:      s.gmap,
	}
}

// Run drives the match lifecycle: lobby countdown, prestart warning, start,
// then the turn ticker until the game finishes. Call it on its own
// goroutine; Stop shuts it down.
func (s *GameServer) Run() {
	select {
	case <-time.After(time.Until(s.startAt)):
	case <-s.stop:
		return
	}

	s.broadcast(protocol.PrestartMsg{Type: protocol.TypePrestart, GameMap: s.gmap})

	select {
	case <-time.After(2 * time.Second):
	case <-s.stop:
		return
	}

	if !s.start() {
		return
	}

	interval := time.Duration(s.cfg.Tuning.TurnIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.After(time.Duration(s.cfg.Tuning.MaxGameDurationS) * time.Second)

	for {
		select {
		case <-ticker.C:
			if !s.EndTurn() {
				return
			}
		case <-deadline:
			s.finish("")
			return
		case <-s.stop:
			return
		}
	}
}

func (s *GameServer) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// start freezes the roster and broadcasts the start info. Roster order is
// sorted by client ID so every replica assigns the same small IDs.
func (s *GameServer) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		s.phase = PhaseFinished
		return false
	}

	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s.roster = s.roster[:0]
	for _, id := range ids {
		c := s.clients[id]
		s.roster = append(s.roster, protocol.PlayerRecord{
			PlayerID:   id,
			ClientID:   id,
			Username:   c.Username,
			PlayerType: "Human",
		})
	}

	s.phase = PhaseActive
	s.startedAt = time.Now()
	msg := protocol.StartMsg{
		Type:          protocol.TypeStart,
		Turns:         nil,
		GameStartInfo: s.startInfoLocked(),
	}
	for _, c := range s.clients {
		c.Send(msg)
	}
	s.log.Info("game started", zap.Int("clients", len(s.roster)))
	return true
}

func (s *GameServer) startInfoLocked() protocol.GameStartInfo {
	players := make([]protocol.PlayerRecord, len(s.roster))
	copy(players, s.roster)
	return protocol.GameStartInfo{
		GameID:  s.id,
		GameMap: s.gmap,
		Config:  s.cfg,
		Players: players,
	}
}

// Join admits or re-admits a client. In the lobby it registers a fresh
// seat; mid-game it only accepts client IDs from the frozen roster and
// replays the turn log from lastTurn.
func (s *GameServer) Join(c *Client, lastTurn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kicked[c.PersistentID] {
		return fmt.Errorf("client %s is kicked from game %s", c.ClientID, s.id)
	}
	if s.prod {
		for _, other := range s.clients {
			if other.PersistentID == c.PersistentID && other.ClientID != c.ClientID {
				return fmt.Errorf("persistent id already joined game %s", s.id)
			}
		}
	}

	switch s.phase {
	case PhaseLobby:
		if prev, ok := s.clients[c.ClientID]; ok {
			prev.CloseOut()
		} else if n := s.countIPLocked(c.IP); n >= s.cfg.Tuning.MaxClientsPerIP {
			return fmt.Errorf("too many clients from %s", c.IP)
		}
		s.clients[c.ClientID] = c
		return nil

	case PhaseActive:
		if !s.inRosterLocked(c.ClientID) {
			return fmt.Errorf("client %s is not part of game %s", c.ClientID, s.id)
		}
		if prev, ok := s.clients[c.ClientID]; ok {
			prev.CloseOut()
		}
		s.clients[c.ClientID] = c

		if lastTurn < 0 || lastTurn > len(s.turns) {
			lastTurn = 0
		}
		replay := make([]protocol.Turn, len(s.turns)-lastTurn)
		copy(replay, s.turns[lastTurn:])
		c.Send(protocol.StartMsg{
			Type:          protocol.TypeStart,
			Turns:         replay,
			GameStartInfo: s.startInfoLocked(),
		})
		// The reconnect itself travels through the turn log so every
		// replica clears the flag at the same tick.
		s.pending = append(s.pending, protocol.Intent{
			Type:         protocol.IntentMarkDisconnected,
			ClientID:     c.ClientID,
			Disconnected: boolPtr(false),
		})
		return nil
	}
	return fmt.Errorf("game %s is over", s.id)
}

func (s *GameServer) countIPLocked(ip string) int {
	n := 0
	for _, c := range s.clients {
		if c.IP == ip {
			n++
		}
	}
	return n
}

func (s *GameServer) inRosterLocked(clientID string) bool {
	for _, r := range s.roster {
		if r.ClientID == clientID {
			return true
		}
	}
	return false
}

// Leave drops the socket but keeps the seat: the player may reconnect, and
// until they do the heartbeat sweep marks them disconnected in-game.
func (s *GameServer) Leave(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[clientID]; ok {
		c.CloseOut()
		if s.phase == PhaseLobby {
			delete(s.clients, clientID)
		}
	}
}

// Kick bans the client's persistent ID and cuts the socket.
func (s *GameServer) Kick(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return false
	}
	s.kicked[c.PersistentID] = true
	c.CloseOut()
	delete(s.clients, clientID)
	if s.phase == PhaseActive {
		s.pending = append(s.pending, protocol.Intent{
			Type:         protocol.IntentMarkDisconnected,
			ClientID:     clientID,
			Disconnected: boolPtr(true),
		})
	}
	s.log.Info("kicked client", zap.String("client", clientID))
	return true
}

// OnIntent queues a client intent for the next turn. The session's client
// ID is stamped over whatever the payload claimed, and the server-only
// mark_disconnected kind is refused outright.
func (s *GameServer) OnIntent(clientID string, in protocol.Intent) error {
	if in.Type == protocol.IntentMarkDisconnected {
		return fmt.Errorf("intent type %s is server-injected only", in.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return fmt.Errorf("game %s is not running", s.id)
	}
	if _, ok := s.clients[clientID]; !ok {
		return fmt.Errorf("client %s is not connected", clientID)
	}
	in.ClientID = clientID
	s.pending = append(s.pending, in)
	return nil
}

func (s *GameServer) OnPing(clientID string) {
	s.mu.Lock()
	c, ok := s.clients[clientID]
	s.mu.Unlock()
	if ok {
		c.Touch()
	}
}

func (s *GameServer) OnHash(clientID string, turnNumber int, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive || turnNumber >= len(s.turns) {
		return
	}
	m, ok := s.hashes[turnNumber]
	if !ok {
		m = make(map[string]string)
		s.hashes[turnNumber] = m
	}
	m[clientID] = hash
}

// OnWinner tallies one client's view of the result. Each client gets one
// vote; the match ends once a strict majority of the roster agrees.
func (s *GameServer) OnWinner(clientID, winner string, stats []protocol.PlayerStats) {
	s.mu.Lock()
	if s.phase != PhaseActive || s.winnerVoted[clientID] {
		s.mu.Unlock()
		return
	}
	s.winnerVoted[clientID] = true
	s.winnerVotes[winner]++
	if s.winnerStats == nil {
		s.winnerStats = stats
	}
	votes := s.winnerVotes[winner]
	needed := len(s.roster)/2 + 1
	s.mu.Unlock()

	if votes >= needed {
		s.finish(winner)
	}
}

// EndTurn seals the pending intents into the next turn and broadcasts it.
// Returns false once the game is over.
func (s *GameServer) EndTurn() bool {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return false
	}

	s.sweepHeartbeatsLocked()

	turn := protocol.Turn{
		TurnNumber: len(s.turns),
		GameID:     s.id,
		Intents:    s.pending,
	}
	s.pending = nil
	s.turns = append(s.turns, turn)

	msg := protocol.TurnMsg{Type: protocol.TypeTurn, Turn: turn}
	for _, c := range s.clients {
		c.Send(msg)
	}

	s.checkHashesLocked(turn.TurnNumber)
	s.mu.Unlock()
	return true
}

// sweepHeartbeatsLocked injects disconnect flags for silent clients and
// drops the ones past the hard ping timeout.
func (s *GameServer) sweepHeartbeatsLocked() {
	now := time.Now()
	flagAfter := time.Duration(s.cfg.Tuning.DisconnectedMs) * time.Millisecond
	dropAfter := time.Duration(s.cfg.Tuning.PingTimeoutMs) * time.Millisecond

	for id, c := range s.clients {
		silent := now.Sub(c.LastPing())
		switch {
		case silent > dropAfter:
			s.log.Info("dropping silent client", zap.String("client", id))
			c.CloseOut()
			delete(s.clients, id)
			if !c.markedAway {
				s.pending = append(s.pending, protocol.Intent{
					Type:         protocol.IntentMarkDisconnected,
					ClientID:     id,
					Disconnected: boolPtr(true),
				})
			}
		case silent > flagAfter && !c.markedAway:
			c.markedAway = true
			s.pending = append(s.pending, protocol.Intent{
				Type:         protocol.IntentMarkDisconnected,
				ClientID:     id,
				Disconnected: boolPtr(true),
			})
		case silent <= flagAfter && c.markedAway:
			c.markedAway = false
			s.pending = append(s.pending, protocol.Intent{
				Type:         protocol.IntentMarkDisconnected,
				ClientID:     id,
				Disconnected: boolPtr(false),
			})
		}
	}
}

// checkHashesLocked runs the majority vote for the turn that fell out of
// the reporting window. Clients disagreeing with the majority get one
// desync notice; a desync that persists past the configured span raises an
// operator alert.
func (s *GameServer) checkHashesLocked(sealedTurn int) {
	interval := s.cfg.Tuning.HashCheckInterval
	if interval <= 0 || sealedTurn < interval || sealedTurn%interval != 0 {
		return
	}
	checked := sealedTurn - interval
	reports := s.hashes[checked]
	delete(s.hashes, checked)
	if len(reports) < 2 {
		return
	}

	correct := majorityHash(reports)
	agree := 0
	for _, h := range reports {
		if h == correct {
			agree++
		}
	}
	// With half or more of the fleet off the majority, no client can be
	// trusted; everyone who reported gets flagged.
	allBad := (len(reports)-agree)*2 >= len(reports)

	for id, h := range reports {
		c, ok := s.clients[id]
		if !ok {
			continue
		}
		if h == correct && !allBad {
			c.firstBadTurn = -1
			c.desyncNotice = false
			continue
		}
		if c.firstBadTurn < 0 {
			c.firstBadTurn = checked
		}
		if !c.desyncNotice {
			c.desyncNotice = true
			c.Send(protocol.DesyncMsg{
				Type:                   protocol.TypeDesync,
				Turn:                   checked,
				CorrectHash:            correct,
				YourHash:               h,
				ClientsWithCorrectHash: agree,
				TotalActiveClients:     len(reports),
			})
			s.log.Warn("client desynced",
				zap.String("client", id),
				zap.Int("turn", checked),
				zap.Int("agree", agree),
				zap.Int("reporting", len(reports)))
		}
		if !s.alertSent && checked-c.firstBadTurn >= s.cfg.Tuning.DesyncNoticeSpan {
			s.alertSent = true
			s.alerter.DesyncAlert(s.id, id, checked, agree, len(reports))
		}
	}
}

// majorityHash picks the most reported hash; ties go to the smallest hash
// so the outcome never depends on map order.
func majorityHash(reports map[string]string) string {
	counts := make(map[string]int, len(reports))
	for _, h := range reports {
		counts[h]++
	}
	best, bestN := "", 0
	for h, n := range counts {
		if n > bestN || (n == bestN && h < best) {
			best, bestN = h, n
		}
	}
	return best
}

func (s *GameServer) finish(winner string) {
	s.mu.Lock()
	if s.phase == PhaseFinished {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseFinished
	s.winner = winner
	rec := archive.GameRecord{
		Info:      s.startInfoLocked(),
		Turns:     s.turns,
		Winner:    winner,
		Stats:     s.winnerStats,
		StartedAt: s.startedAt,
		EndedAt:   time.Now(),
	}
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	if s.arc != nil {
		s.arc.Save(rec)
	}
	for _, c := range clients {
		c.CloseOut()
	}
	s.Stop()
	s.log.Info("game finished", zap.String("winner", winner), zap.Int("turns", len(rec.Turns)))
}

// NewGameID mints a lobby identifier.
func NewGameID() string {
	return uuid.NewString()[:8]
}

func (s *GameServer) broadcast(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.Send(v)
	}
}

func boolPtr(v bool) *bool { return &v }
