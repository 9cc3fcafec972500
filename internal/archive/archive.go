// Package archive persists finished games: one zstd-compressed JSON record
// per game plus a SQLite index for lookups. Writes go through a single
// goroutine so game servers never block on disk.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"warfront.io/internal/protocol"
)

// GameRecord is everything needed to replay a finished game bit-for-bit:
// the start info plus the full sealed turn log.
type GameRecord struct {
	Info      protocol.GameStartInfo `json:"gameStartInfo"`
	Turns     []protocol.Turn        `json:"turns"`
	Winner    string                 `json:"winner,omitempty"`
	Stats     []protocol.PlayerStats `json:"allPlayersStats,omitempty"`
	StartedAt time.Time              `json:"startedAt"`
	EndedAt   time.Time              `json:"endedAt"`
}

type Archive struct {
	baseDir string
	db      *sql.DB

	ch     chan GameRecord
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

func Open(baseDir string) (*Archive, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("archive: empty base dir")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, "index.db"))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &Archive{
		baseDir: baseDir,
		db:      db,
		ch:      make(chan GameRecord, 256),
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.loop()
	}()
	return a, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only write pattern.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			winner TEXT,
			num_turns INTEGER NOT NULL,
			num_players INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) Close() error {
	var err error
	a.once.Do(func() {
		a.closed.Store(true)
		close(a.ch)
		a.wg.Wait()
		err = a.db.Close()
	})
	return err
}

// Save queues a finished game for persistence. Saving never blocks the
// caller; if the writer falls behind, the record is dropped.
func (a *Archive) Save(rec GameRecord) {
	if a == nil || a.closed.Load() {
		return
	}
	select {
	case a.ch <- rec:
	default:
	}
}

func (a *Archive) loop() {
	for rec := range a.ch {
		path, err := a.writeRecord(rec)
		if err != nil {
			continue
		}
		_, _ = a.db.Exec(
			`INSERT OR REPLACE INTO games
			 (game_id, path, winner, num_turns, num_players, started_at, ended_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Info.GameID, path, rec.Winner, len(rec.Turns), len(rec.Info.Players),
			rec.StartedAt.UTC().Format(time.RFC3339Nano),
			rec.EndedAt.UTC().Format(time.RFC3339Nano),
		)
	}
}

func (a *Archive) writeRecord(rec GameRecord) (string, error) {
	day := rec.EndedAt.UTC().Format("2006-01-02")
	dir := filepath.Join(a.baseDir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, rec.Info.GameID+".json.zst")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return "", err
	}
	if err := json.NewEncoder(enc).Encode(rec); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// Lookup resolves a game ID to its record path via the index.
func (a *Archive) Lookup(gameID string) (string, bool) {
	var path string
	err := a.db.QueryRow(`SELECT path FROM games WHERE game_id = ?`, gameID).Scan(&path)
	if err != nil {
		return "", false
	}
	return path, true
}

// ReadRecord loads an archived game for replay verification.
func ReadRecord(path string) (GameRecord, error) {
	var rec GameRecord
	f, err := os.Open(path)
	if err != nil {
		return rec, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return rec, err
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&rec); err != nil {
		return rec, err
	}
	return rec, nil
}
