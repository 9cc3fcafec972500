package runner_test

import (
	"testing"

	"go.uber.org/zap"

	"warfront.io/internal/protocol"
	"warfront.io/internal/runner"
	"warfront.io/internal/tuning"
)

func testStartInfo() protocol.GameStartInfo {
	t := tuning.Defaults()
	t.SpawnPhaseTurns = 5
	t.SpawnImmunity = 0
	return protocol.GameStartInfo{
		GameID:  "g1",
		GameMap: protocol.MapInfo{Width: 40, Height: 40, Seed: 7},
		Config: protocol.GameConfig{
			Difficulty:  "Medium",
			Bots:        0,
			DisableNPCs: true,
			Tuning:      t,
		},
		Players: []protocol.PlayerRecord{
			{PlayerID: "p1", ClientID: "c1", Username: "alice", PlayerType: "Human"},
			{PlayerID: "p2", ClientID: "c2", Username: "bob", PlayerType: "Human"},
		},
	}
}

func intentPtr[T any](v T) *T { return &v }

// scriptedTurns spawns both players, then has p1 press a sustained attack
// on p2. Enough turns to conquer tiles and move the economy.
func scriptedTurns(n int) []protocol.Turn {
	turns := make([]protocol.Turn, n)
	for i := range turns {
		turns[i] = protocol.Turn{TurnNumber: i, GameID: "g1"}
	}
	turns[0].Intents = []protocol.Intent{
		{Type: protocol.IntentSpawn, ClientID: "c1", Tile: intentPtr(uint32(41 + 5))},
		{Type: protocol.IntentSpawn, ClientID: "c2", Tile: intentPtr(uint32(41 + 20))},
	}
	turns[6].Intents = []protocol.Intent{
		{Type: protocol.IntentAttack, ClientID: "c1", TargetID: "", Troops: intentPtr(8000.0)},
	}
	turns[20].Intents = []protocol.Intent{
		{Type: protocol.IntentAttack, ClientID: "c1", TargetID: "p2", Troops: intentPtr(5000.0)},
	}
	return turns
}

// Two replicas fed the same start info and turn log must report identical
// hashes at every turn.
func TestReplicaReplayDeterminism(t *testing.T) {
	log := zap.NewNop()
	a, err := runner.NewReplica(testStartInfo(), log)
	if err != nil {
		t.Fatalf("replica a: %v", err)
	}
	b, err := runner.NewReplica(testStartInfo(), log)
	if err != nil {
		t.Fatalf("replica b: %v", err)
	}

	for _, turn := range scriptedTurns(60) {
		if err := a.ApplyTurn(turn); err != nil {
			t.Fatalf("a turn %d: %v", turn.TurnNumber, err)
		}
		if err := b.ApplyTurn(turn); err != nil {
			t.Fatalf("b turn %d: %v", turn.TurnNumber, err)
		}
		ha, hb := a.Hash(), b.Hash()
		if ha != hb {
			t.Fatalf("hash diverged at turn %d: %s vs %s", turn.TurnNumber, ha, hb)
		}
	}
	if a.Game().Ticks() != 60 {
		t.Fatalf("expected 60 ticks, got %d", a.Game().Ticks())
	}
}

// The scripted attack must actually change the world: p1 ends up owning
// tiles beyond its spawn blob.
func TestReplicaConquestProgress(t *testing.T) {
	r, err := runner.NewReplica(testStartInfo(), zap.NewNop())
	if err != nil {
		t.Fatalf("replica: %v", err)
	}
	for _, turn := range scriptedTurns(60) {
		if err := r.ApplyTurn(turn); err != nil {
			t.Fatalf("turn %d: %v", turn.TurnNumber, err)
		}
	}
	p1, ok := r.Game().PlayerByID("p1")
	if !ok {
		t.Fatalf("p1 missing")
	}
	if p1.NumTilesOwned() <= 13 {
		t.Fatalf("expected p1 to expand beyond its spawn blob, owns %d tiles", p1.NumTilesOwned())
	}
}

func TestReplicaRefusesOutOfOrderTurn(t *testing.T) {
	r, err := runner.NewReplica(testStartInfo(), zap.NewNop())
	if err != nil {
		t.Fatalf("replica: %v", err)
	}
	if err := r.ApplyTurn(protocol.Turn{TurnNumber: 0, GameID: "g1"}); err != nil {
		t.Fatalf("turn 0: %v", err)
	}
	if err := r.ApplyTurn(protocol.Turn{TurnNumber: 2, GameID: "g1"}); err == nil {
		t.Fatalf("expected rejection of turn 2 after turn 0")
	}
	if r.TurnNumber() != 1 {
		t.Fatalf("turn counter moved on rejected turn: %d", r.TurnNumber())
	}
}

// Malformed intents are dropped without stalling the turn.
func TestReplicaDropsBadIntents(t *testing.T) {
	r, err := runner.NewReplica(testStartInfo(), zap.NewNop())
	if err != nil {
		t.Fatalf("replica: %v", err)
	}
	turn := protocol.Turn{TurnNumber: 0, GameID: "g1", Intents: []protocol.Intent{
		{Type: "no_such_intent", ClientID: "c1"},
		{Type: protocol.IntentSpawn, ClientID: "nobody", Tile: intentPtr(uint32(41))},
		{Type: protocol.IntentSpawn, ClientID: "c1"},
		{Type: protocol.IntentSpawn, ClientID: "c1", Tile: intentPtr(uint32(1 << 30))},
	}}
	if err := r.ApplyTurn(turn); err != nil {
		t.Fatalf("turn with bad intents: %v", err)
	}
	if r.TurnNumber() != 1 {
		t.Fatalf("turn did not advance: %d", r.TurnNumber())
	}
}
