package exec

import "warfront.io/internal/game"

// airStep advances an airborne unit one tile toward dst, ignoring terrain.
// Steps reduce the larger axis delta first, x on ties, so flight paths are
// identical on every replica. done is true when from == dst.
func airStep(gm *game.GameMap, from, dst game.TileRef) (next game.TileRef, done bool) {
	if from == dst {
		return from, true
	}
	fx, fy := gm.XY(from)
	dx, dy := gm.XY(dst)

	stepX := sign(dx - fx)
	stepY := sign(dy - fy)
	if abs(dx-fx) >= abs(dy-fy) {
		return gm.Ref(fx+stepX, fy), false
	}
	return gm.Ref(fx, fy+stepY), false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
