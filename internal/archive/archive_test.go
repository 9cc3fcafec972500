package archive_test

import (
	"testing"
	"time"

	"warfront.io/internal/archive"
	"warfront.io/internal/protocol"
	"warfront.io/internal/tuning"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a, err := archive.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	rec := archive.GameRecord{
		Info: protocol.GameStartInfo{
			GameID:  "g1",
			GameMap: protocol.MapInfo{Width: 40, Height: 40, Seed: 7},
			Config:  protocol.GameConfig{Difficulty: "Medium", Tuning: tuning.Defaults()},
			Players: []protocol.PlayerRecord{
				{PlayerID: "p1", ClientID: "c1", Username: "alice", PlayerType: "Human"},
			},
		},
		Turns: []protocol.Turn{
			{TurnNumber: 0, GameID: "g1"},
			{TurnNumber: 1, GameID: "g1", Intents: []protocol.Intent{
				{Type: protocol.IntentSpawn, ClientID: "c1"},
			}},
		},
		Winner:    "p1",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
	a.Save(rec)
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	a2, err := archive.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a2.Close()

	path, ok := a2.Lookup("g1")
	if !ok {
		t.Fatalf("game not indexed")
	}
	got, err := archive.ReadRecord(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Info.GameID != "g1" || len(got.Turns) != 2 || got.Winner != "p1" {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Turns[1].Intents[0].Type != protocol.IntentSpawn {
		t.Fatalf("intent lost in round trip")
	}
	if got.Info.Config.Tuning.SpawnPhaseTurns != tuning.Defaults().SpawnPhaseTurns {
		t.Fatalf("tuning lost in round trip")
	}
}

func TestArchiveLookupMiss(t *testing.T) {
	a, err := archive.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	if _, ok := a.Lookup("nope"); ok {
		t.Fatalf("expected miss")
	}
}
