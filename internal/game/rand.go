package game

// Rand is the simulation's pseudo-random source. The sequence is part of the
// lockstep contract: every replica seeds identically and draws in the same
// order, so the generator must never change behavior across builds. It is a
// Lehmer-style multiplicative congruential generator over the modulus 2^35-31
// whose products stay well inside int64 range.
type Rand struct {
	state int64
}

const (
	randModulus    int64 = 1<<35 - 31
	randMultiplier int64 = 185852
)

func NewRand(seed int64) *Rand {
	s := seed % randModulus
	if s <= 0 {
		s += randModulus - 1
	}
	return &Rand{state: s}
}

// Next returns a float in [0, 1).
func (r *Rand) Next() float64 {
	r.state = r.state * randMultiplier % randModulus
	return float64(r.state) / float64(randModulus)
}

// NextInt returns an integer in [min, max).
func (r *Rand) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(r.Next()*float64(max-min))
}

// Chance returns true with probability 1/odds.
func (r *Rand) Chance(odds int) bool {
	return r.Next() < 1/float64(odds)
}

// SimpleHash folds a string id into a stable non-negative seed. Matches the
// 32-bit shift-and-subtract fold used to derive per-player and per-game
// random streams from string ids.
func SimpleHash(s string) int64 {
	var h int32
	for _, c := range s {
		h = h<<5 - h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}
