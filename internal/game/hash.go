package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Hash digests the full visible game state into a hex sha256. Two replicas
// that executed the same turns must produce byte-identical digests, so every
// field is written in a fixed order: players by small id, units and attacks
// in creation order, the ownership and fallout planes as raw sweeps.
func (g *Game) Hash() string {
	h := sha256.New()

	writeU64(h, uint64(g.tick))

	for _, smallID := range g.ownerRun() {
		writeU64(h, uint64(smallID))
	}
	for i := 0; i < len(g.gm.fallout); i++ {
		if g.gm.fallout[i] {
			writeU64(h, uint64(i))
		}
	}

	for _, p := range g.players {
		writeU64(h, uint64(p.smallID))
		writeU64(h, uint64(p.gold))
		writeF64(h, floor(p.troops))
		writeF64(h, p.Workers())
		writeF64(h, p.targetTroopRatio)
		writeF64(h, p.reserveTroopRatio)
		writeU64(h, uint64(len(p.tiles)))
		if p.hasTraitorMark {
			writeU64(h, uint64(p.markedTraitorTick))
		}
	}

	for _, u := range g.units {
		if !u.active {
			continue
		}
		writeU64(h, uint64(u.id))
		writeU64(h, uint64(u.typ))
		writeU64(h, uint64(u.owner.smallID))
		writeU64(h, uint64(u.tile))
		writeF64(h, floor(u.troops))
	}

	for _, a := range g.attacks {
		if !a.active {
			continue
		}
		writeU64(h, uint64(a.attacker.smallID))
		if a.target != nil {
			writeU64(h, uint64(a.target.smallID))
		}
		writeF64(h, floor(a.troops))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// ownerRun run-length encodes the ownership plane so the common case (large
// unbroken territories) hashes cheaply and stably.
func (g *Game) ownerRun() []uint32 {
	var out []uint32
	var run uint32
	var cur uint16
	for _, o := range g.gm.owner {
		if o == cur {
			run++
			continue
		}
		out = append(out, uint32(cur), run)
		cur = o
		run = 1
	}
	out = append(out, uint32(cur), run)
	return out
}

func writeU64(h hash.Hash, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	h.Write(b[:])
}

func writeF64(h hash.Hash, v float64) {
	writeU64(h, math.Float64bits(v))
}
