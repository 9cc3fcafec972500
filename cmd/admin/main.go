// Command admin is the operator CLI: it lists archived games from the
// index, inspects archived records, and drives the server's admin HTTP
// endpoints (kick, worker status).
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"warfront.io/internal/archive"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "games":
			gamesCmd(os.Args[2:])
			return
		case "show":
			showCmd(os.Args[2:])
			return
		case "kick":
			kickCmd(os.Args[2:])
			return
		case "status":
			statusCmd(os.Args[2:])
			return
		case "lobbies":
			lobbiesCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <games|show|kick|status|lobbies> [flags]")
	os.Exit(2)
}

func gamesCmd(args []string) {
	fs := flag.NewFlagSet("games", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	limit := fs.Int("n", 20, "max games to list")
	_ = fs.Parse(args)

	db, err := sql.Open("sqlite", filepath.Join(*dataDir, "archive", "index.db"))
	if err != nil {
		fatal("open index: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT game_id, winner, num_turns, num_players, ended_at
		 FROM games ORDER BY ended_at DESC LIMIT ?`, *limit)
	if err != nil {
		fatal("query: %v", err)
	}
	defer rows.Close()

	fmt.Printf("%-12s %-12s %8s %8s  %s\n", "GAME", "WINNER", "TURNS", "PLAYERS", "ENDED")
	for rows.Next() {
		var id, winner, endedAt string
		var turns, players int
		if err := rows.Scan(&id, &winner, &turns, &players, &endedAt); err != nil {
			fatal("scan: %v", err)
		}
		fmt.Printf("%-12s %-12s %8d %8d  %s\n", id, winner, turns, players, endedAt)
	}
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id")
	_ = fs.Parse(args)
	if *gameID == "" {
		fatal("missing -game")
	}

	a, err := archive.Open(filepath.Join(*dataDir, "archive"))
	if err != nil {
		fatal("open archive: %v", err)
	}
	defer a.Close()

	path, ok := a.Lookup(*gameID)
	if !ok {
		fatal("game %s not in archive", *gameID)
	}
	rec, err := archive.ReadRecord(path)
	if err != nil {
		fatal("read record: %v", err)
	}

	fmt.Printf("game:    %s\n", rec.Info.GameID)
	fmt.Printf("map:     %dx%d seed %d\n", rec.Info.GameMap.Width, rec.Info.GameMap.Height, rec.Info.GameMap.Seed)
	fmt.Printf("players: %d\n", len(rec.Info.Players))
	for _, p := range rec.Info.Players {
		fmt.Printf("  %-12s %-10s %s\n", p.PlayerID, p.PlayerType, p.Username)
	}
	fmt.Printf("turns:   %d\n", len(rec.Turns))
	fmt.Printf("winner:  %s\n", rec.Winner)
	intents := 0
	for _, t := range rec.Turns {
		intents += len(t.Intents)
	}
	fmt.Printf("intents: %d\n", intents)
}

func kickCmd(args []string) {
	fs := flag.NewFlagSet("kick", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "server base url")
	gameID := fs.String("game", "", "game id")
	clientID := fs.String("client", "", "client id")
	key := fs.String("key", os.Getenv("WF_ADMIN_KEY"), "admin key")
	_ = fs.Parse(args)
	if *gameID == "" || *clientID == "" {
		fatal("missing -game or -client")
	}

	url := fmt.Sprintf("%s/api/kick_player/%s/%s", strings.TrimRight(*server, "/"), *gameID, *clientID)
	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		fatal("request: %v", err)
	}
	req.Header.Set("X-Admin-Key", *key)
	doJSON(req)
}

func statusCmd(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "server base url")
	key := fs.String("key", os.Getenv("WF_ADMIN_KEY"), "admin key")
	_ = fs.Parse(args)

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(*server, "/")+"/api/worker_status", nil)
	if err != nil {
		fatal("request: %v", err)
	}
	req.Header.Set("X-Admin-Key", *key)
	doJSON(req)
}

func lobbiesCmd(args []string) {
	fs := flag.NewFlagSet("lobbies", flag.ExitOnError)
	server := fs.String("server", "http://localhost:8080", "server base url")
	_ = fs.Parse(args)

	req, err := http.NewRequest(http.MethodGet, strings.TrimRight(*server, "/")+"/api/public_lobbies", nil)
	if err != nil {
		fatal("request: %v", err)
	}
	doJSON(req)
}

func doJSON(req *http.Request) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatal("call: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fatal("server replied %s: %s", resp.Status, body)
	}
	var pretty any
	if err := json.Unmarshal(body, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(body))
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
