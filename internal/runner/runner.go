// Package runner hosts the deterministic replica: it reconstructs a game
// from its start info and advances it one sealed turn at a time. Clients,
// bots and the replay verifier all run this code against the broadcast turn
// log; the server itself never simulates and arbitrates hashes by majority.
package runner

import (
	"fmt"

	"go.uber.org/zap"

	"warfront.io/internal/exec"
	"warfront.io/internal/game"
	"warfront.io/internal/protocol"
)

// Replica is one lockstep participant. It is not safe for concurrent use;
// the owner serializes ApplyTurn calls.
type Replica struct {
	g    *game.Game
	log  *zap.Logger
	next int
}

// NewReplica rebuilds the game world from the start info. Roster order is
// authoritative: players are added in slice order so small IDs agree across
// every replica of the match.
func NewReplica(info protocol.GameStartInfo, log *zap.Logger) (*Replica, error) {
	if info.GameMap.Width <= 0 || info.GameMap.Height <= 0 {
		return nil, fmt.Errorf("runner: bad map dimensions %dx%d", info.GameMap.Width, info.GameMap.Height)
	}
	gm := game.GenerateMap(info.GameMap.Width, info.GameMap.Height, info.GameMap.Seed)

	opts := game.Options{
		Difficulty:     game.DifficultyByName(info.Config.Difficulty),
		Bots:           info.Config.Bots,
		Nations:        info.Config.Nations,
		DisableNPCs:    info.Config.DisableNPCs,
		InstantBuild:   info.Config.InstantBuild,
		InfiniteGold:   info.Config.InfiniteGold,
		InfiniteTroops: info.Config.InfiniteTroops,
		DisabledUnits:  info.Config.DisabledUnits,
	}
	g := game.NewGame(info.GameID, gm, info.Config.Tuning, opts, log)

	for _, rec := range info.Players {
		typ, ok := game.PlayerTypeByName(rec.PlayerType)
		if !ok {
			return nil, fmt.Errorf("runner: unknown player type %q for %s", rec.PlayerType, rec.PlayerID)
		}
		g.AddPlayer(game.PlayerInfo{
			ID:       game.PlayerID(rec.PlayerID),
			ClientID: game.ClientID(rec.ClientID),
			Name:     rec.Username,
			Type:     typ,
			Team:     rec.Team,
		})
	}

	g.AddExecution(exec.NewBotSpawnerExecution(), exec.NewWinCheckExecution())
	return &Replica{g: g, log: log}, nil
}

func (r *Replica) Game() *game.Game { return r.g }
func (r *Replica) TurnNumber() int  { return r.next }

// ApplyTurn sequences one turn into the simulation and ticks it. Turns must
// arrive in order with no gaps; anything else means the feed is corrupt and
// the replica refuses to advance.
func (r *Replica) ApplyTurn(t protocol.Turn) error {
	if t.TurnNumber != r.next {
		return fmt.Errorf("runner: got turn %d, want %d", t.TurnNumber, r.next)
	}
	for i := range t.Intents {
		e, err := r.buildExecution(&t.Intents[i])
		if err != nil {
			// Stale or malformed intents are dropped, never fatal: every
			// replica sees the same turn log and drops the same ones.
			r.log.Warn("dropping intent",
				zap.String("game", r.g.ID()),
				zap.Int("turn", t.TurnNumber),
				zap.String("intent", t.Intents[i].Type),
				zap.Error(err))
			continue
		}
		r.g.AddExecution(e)
	}
	r.g.ExecuteNextTick()
	r.next++
	return nil
}

// Hash returns the state digest after the last applied turn.
func (r *Replica) Hash() string { return r.g.Hash() }

func (r *Replica) player(in *protocol.Intent) (game.PlayerID, error) {
	if in.ClientID != "" {
		if p, ok := r.g.PlayerByClientID(game.ClientID(in.ClientID)); ok {
			return p.ID(), nil
		}
	}
	if in.PlayerID != "" {
		if p, ok := r.g.PlayerByID(game.PlayerID(in.PlayerID)); ok {
			return p.ID(), nil
		}
	}
	return "", fmt.Errorf("no player for client %q", in.ClientID)
}

func (r *Replica) tile(in *protocol.Intent) (game.TileRef, error) {
	if in.Tile == nil {
		return 0, fmt.Errorf("intent %s missing tile", in.Type)
	}
	t := game.TileRef(*in.Tile)
	if int(t) >= r.g.Map().Width()*r.g.Map().Height() {
		return 0, fmt.Errorf("tile %d out of bounds", t)
	}
	return t, nil
}

func troopsOrDefault(in *protocol.Intent) float64 {
	if in.Troops == nil {
		return -1
	}
	return *in.Troops
}

// buildExecution is the single intent dispatch table. Every intent kind the
// protocol names maps to exactly one execution constructor.
func (r *Replica) buildExecution(in *protocol.Intent) (game.Execution, error) {
	pid, err := r.player(in)
	if err != nil {
		return nil, err
	}
	target := game.PlayerID(in.TargetID)

	switch in.Type {
	case protocol.IntentSpawn:
		t, err := r.tile(in)
		if err != nil {
			return nil, err
		}
		return exec.NewSpawnExecution(pid, t), nil

	case protocol.IntentAttack:
		return exec.NewAttackExecution(pid, target, troopsOrDefault(in), 0, false), nil

	case protocol.IntentBoat:
		t, err := r.tile(in)
		if err != nil {
			return nil, err
		}
		return exec.NewTransportExecution(pid, target, troopsOrDefault(in), t), nil

	case protocol.IntentBuildUnit:
		t, err := r.tile(in)
		if err != nil {
			return nil, err
		}
		typ, ok := game.UnitTypeByName(in.UnitType)
		if !ok {
			return nil, fmt.Errorf("unknown unit type %q", in.UnitType)
		}
		return exec.NewConstructionExecution(pid, t, typ), nil

	case protocol.IntentAllianceRequest:
		return exec.NewAllianceRequestExecution(pid, target), nil

	case protocol.IntentAllianceReply:
		if in.Accept == nil {
			return nil, fmt.Errorf("alliance reply missing accept")
		}
		// TargetID names the original requestor; pid is the one replying.
		return exec.NewAllianceReplyExecution(target, pid, *in.Accept), nil

	case protocol.IntentBreakAlliance:
		return exec.NewBreakAllianceExecution(pid, target), nil

	case protocol.IntentTargetPlayer:
		return exec.NewTargetPlayerExecution(pid, target), nil

	case protocol.IntentStrikePackage:
		return exec.NewStrikePackageExecution(pid, target, exec.StrikePackageType(in.PackageType)), nil

	case protocol.IntentEmoji:
		return exec.NewEmojiExecution(pid, game.PlayerID(in.RecipientID), in.Emoji), nil

	case protocol.IntentQuickChat:
		return exec.NewQuickChatExecution(pid, game.PlayerID(in.RecipientID), in.QuickChatKey), nil

	case protocol.IntentDonateGold:
		if in.Gold == nil {
			return nil, fmt.Errorf("donate_gold missing gold")
		}
		return exec.NewDonateGoldExecution(pid, target, *in.Gold), nil

	case protocol.IntentDonateTroops:
		return exec.NewDonateTroopsExecution(pid, target, troopsOrDefault(in)), nil

	case protocol.IntentTroopRatio:
		if in.TargetRatio == nil || in.ReserveRatio == nil {
			return nil, fmt.Errorf("troop_ratio missing ratios")
		}
		return exec.NewSetTroopRatiosExecution(pid, *in.TargetRatio, *in.ReserveRatio), nil

	case protocol.IntentEmbargo:
		switch in.Action {
		case "start", "stop":
		default:
			return nil, fmt.Errorf("embargo action %q", in.Action)
		}
		return exec.NewEmbargoExecution(pid, target, in.Action == "start"), nil

	case protocol.IntentUnlockTech:
		return exec.NewUnlockTechExecution(pid, in.TechID), nil

	case protocol.IntentCancelAttack:
		return exec.NewRetreatExecution(pid, in.AttackID), nil

	case protocol.IntentCancelBoat:
		if in.UnitID == nil {
			return nil, fmt.Errorf("cancel_boat missing unitID")
		}
		return exec.NewCancelBoatExecution(pid, game.UnitID(*in.UnitID)), nil

	case protocol.IntentMarkDisconnected:
		if in.Disconnected == nil {
			return nil, fmt.Errorf("mark_disconnected missing flag")
		}
		return exec.NewMarkDisconnectedExecution(pid, *in.Disconnected), nil
	}
	return nil, fmt.Errorf("unknown intent type %q", in.Type)
}
