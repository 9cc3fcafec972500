// Command replay re-simulates an archived game and verifies the replica's
// state hashes against the hash reports stored in the turn log. It is the
// offline determinism check: any archived game should replay to the same
// digests on any build of the simulation.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"warfront.io/internal/archive"
	"warfront.io/internal/runner"
)

func main() {
	var (
		path     = flag.String("record", "", "path to an archived game (.json.zst)")
		dir      = flag.String("archive", "", "archive directory (with -game)")
		gameID   = flag.String("game", "", "game id to look up in -archive")
		hashEach = flag.Int("hash_every", 10, "print the state hash every N turns (0: only final)")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	p := *path
	if p == "" {
		if *dir == "" || *gameID == "" {
			fmt.Fprintln(os.Stderr, "usage: replay -record <file> | replay -archive <dir> -game <id>")
			os.Exit(2)
		}
		a, err := archive.Open(*dir)
		if err != nil {
			logger.Fatal("open archive", zap.Error(err))
		}
		defer a.Close()
		found, ok := a.Lookup(*gameID)
		if !ok {
			logger.Fatal("game not in archive", zap.String("game", *gameID))
		}
		p = found
	}

	rec, err := archive.ReadRecord(p)
	if err != nil {
		logger.Fatal("read record", zap.Error(err))
	}

	r, err := runner.NewReplica(rec.Info, logger)
	if err != nil {
		logger.Fatal("build replica", zap.Error(err))
	}

	mismatches := 0
	for _, turn := range rec.Turns {
		if err := r.ApplyTurn(turn); err != nil {
			logger.Fatal("apply turn", zap.Int("turn", turn.TurnNumber), zap.Error(err))
		}
		h := r.Hash()
		if turn.Hash != "" && turn.Hash != h {
			mismatches++
			logger.Warn("hash mismatch",
				zap.Int("turn", turn.TurnNumber),
				zap.String("recorded", turn.Hash),
				zap.String("replayed", h))
		}
		if *hashEach > 0 && turn.TurnNumber%*hashEach == 0 {
			fmt.Printf("turn %6d  %s\n", turn.TurnNumber, h)
		}
	}

	fmt.Printf("replayed %d turns of %s, final hash %s\n", len(rec.Turns), rec.Info.GameID, r.Hash())
	if winner, done := r.Game().Winner(); done {
		fmt.Printf("winner: %s (archive says %q)\n", winner, rec.Winner)
	}
	if mismatches > 0 {
		logger.Fatal("replay diverged", zap.Int("mismatches", mismatches))
	}
}
