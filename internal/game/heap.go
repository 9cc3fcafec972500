package game

// TileHeap is a flat binary min-heap of tiles keyed by a float priority.
// Equal priorities dequeue in insertion order: each entry carries a
// monotonically increasing sequence number used as the secondary key, so the
// dequeue order is fully deterministic across replicas regardless of how the
// priorities were produced.
type TileHeap struct {
	tiles []TileRef
	prio  []float64
	seq   []uint64

	nextSeq uint64
}

func (h *TileHeap) Len() int { return len(h.tiles) }

func (h *TileHeap) Clear() {
	h.tiles = h.tiles[:0]
	h.prio = h.prio[:0]
	h.seq = h.seq[:0]
}

func (h *TileHeap) Enqueue(t TileRef, priority float64) {
	h.tiles = append(h.tiles, t)
	h.prio = append(h.prio, priority)
	h.seq = append(h.seq, h.nextSeq)
	h.nextSeq++
	h.up(len(h.tiles) - 1)
}

// Dequeue pops the lowest-priority tile. ok is false when the heap is empty.
func (h *TileHeap) Dequeue() (t TileRef, ok bool) {
	n := len(h.tiles)
	if n == 0 {
		return 0, false
	}
	t = h.tiles[0]
	h.swap(0, n-1)
	h.tiles = h.tiles[:n-1]
	h.prio = h.prio[:n-1]
	h.seq = h.seq[:n-1]
	h.down(0)
	return t, true
}

func (h *TileHeap) less(i, j int) bool {
	if h.prio[i] != h.prio[j] {
		return h.prio[i] < h.prio[j]
	}
	return h.seq[i] < h.seq[j]
}

func (h *TileHeap) swap(i, j int) {
	h.tiles[i], h.tiles[j] = h.tiles[j], h.tiles[i]
	h.prio[i], h.prio[j] = h.prio[j], h.prio[i]
	h.seq[i], h.seq[j] = h.seq[j], h.seq[i]
}

func (h *TileHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *TileHeap) down(i int) {
	n := len(h.tiles)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		smallest := l
		if r := l + 1; r < n && h.less(r, l) {
			smallest = r
		}
		if !h.less(smallest, i) {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
