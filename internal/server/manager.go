package server

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"warfront.io/internal/archive"
	"warfront.io/internal/protocol"
	"warfront.io/internal/tuning"
)

// Worker owns a shard of games. Sharding is by game ID hash so every
// message for a match lands on the same worker without coordination.
type Worker struct {
	index int
	log   *zap.Logger

	mu    sync.Mutex
	games map[string]*GameServer
}

func newWorker(index int, log *zap.Logger) *Worker {
	return &Worker{
		index: index,
		log:   log.With(zap.Int("worker", index)),
		games: make(map[string]*GameServer),
	}
}

func (w *Worker) add(s *GameServer) {
	w.mu.Lock()
	w.games[s.ID()] = s
	w.mu.Unlock()
}

func (w *Worker) get(gameID string) (*GameServer, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.games[gameID]
	return s, ok
}

func (w *Worker) sweepFinished() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, s := range w.games {
		if s.Phase() == PhaseFinished {
			delete(w.games, id)
		}
	}
}

// Status summarizes a worker for the admin endpoint.
type WorkerStatus struct {
	Worker int `json:"worker"`
	Lobby  int `json:"lobby"`
	Active int `json:"active"`
}

func (w *Worker) status() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := WorkerStatus{Worker: w.index}
	for _, s := range w.games {
		switch s.Phase() {
		case PhaseLobby:
			st.Lobby++
		case PhaseActive:
			st.Active++
		}
	}
	return st
}

// ManagerConfig carries process-wide settings the per-game config does not.
type ManagerConfig struct {
	Tuning     tuning.Tuning
	Production bool
	AlertURL   string
	LobbyTime  time.Duration
	ArchiveDir string
}

// Manager spreads games across workers and is the single entry point the
// transport and API layers resolve games through.
type Manager struct {
	cfg     ManagerConfig
	log     *zap.Logger
	alerter *Alerter
	arc     *archive.Archive
	workers []*Worker
}

func NewManager(cfg ManagerConfig, log *zap.Logger) (*Manager, error) {
	n := cfg.Tuning.Workers
	if n <= 0 {
		n = 1
	}
	m := &Manager{
		cfg:     cfg,
		log:     log,
		alerter: NewAlerter(cfg.AlertURL, log),
		workers: make([]*Worker, n),
	}
	for i := range m.workers {
		m.workers[i] = newWorker(i, log)
	}
	if cfg.ArchiveDir != "" {
		arc, err := archive.Open(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		m.arc = arc
	}
	return m, nil
}

func (m *Manager) Close() error {
	for _, w := range m.workers {
		w.mu.Lock()
		for _, s := range w.games {
			s.Stop()
		}
		w.mu.Unlock()
	}
	if m.arc != nil {
		return m.arc.Close()
	}
	return nil
}

func (m *Manager) workerFor(gameID string) *Worker {
	h := fnv.New32a()
	_, _ = h.Write([]byte(gameID))
	return m.workers[h.Sum32()%uint32(len(m.workers))]
}

// CreateGame opens a lobby. The game's turn loop starts on its own
// goroutine and the lobby countdown begins immediately.
func (m *Manager) CreateGame(gameID string, gmap protocol.MapInfo, cfg protocol.GameConfig) (*GameServer, error) {
	if gameID == "" {
		gameID = NewGameID()
	}
	w := m.workerFor(gameID)
	if _, ok := w.get(gameID); ok {
		return nil, fmt.Errorf("game %s already exists", gameID)
	}
	cfg.Tuning = m.cfg.Tuning
	s := NewGameServer(gameID, gmap, cfg, m.cfg.LobbyTime, m.cfg.Production, m.alerter, m.arc, m.log)
	w.add(s)
	go s.Run()
	w.sweepFinished()
	return s, nil
}

func (m *Manager) Game(gameID string) (*GameServer, bool) {
	return m.workerFor(gameID).get(gameID)
}

// PublicLobbies lists joinable games, soonest start first.
func (m *Manager) PublicLobbies() []protocol.LobbyInfo {
	var out []protocol.LobbyInfo
	for _, w := range m.workers {
		w.mu.Lock()
		for _, s := range w.games {
			if s.Phase() == PhaseLobby {
				out = append(out, s.LobbyInfo())
			}
		}
		w.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MsUntilStart != out[j].MsUntilStart {
			return out[i].MsUntilStart < out[j].MsUntilStart
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

func (m *Manager) WorkerStatus() []WorkerStatus {
	out := make([]WorkerStatus, len(m.workers))
	for i, w := range m.workers {
		out[i] = w.status()
	}
	return out
}
