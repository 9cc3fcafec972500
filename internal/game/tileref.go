package game

// TileRef is a dense index into the flattened width*height tile grid.
// Encode/decode to (x, y) and neighbor lookup are pure arithmetic.
type TileRef uint32

type TerrainType uint8

const (
	Water TerrainType = iota
	Plains
	Highland
	Mountain
)

// GameMap is the flat tile reference space: terrain, fallout and ownership.
// Ownership is stored as the owner's dense small id; 0 is the unowned
// sentinel (terra nullius). Every tile has exactly one owner at all times.
type GameMap struct {
	width  int
	height int

	terrain []TerrainType
	owner   []uint16
	fallout []bool

	numLand    int
	numFallout int
}

func NewGameMap(width, height int, terrain []TerrainType) *GameMap {
	if len(terrain) != width*height {
		panic("terrain length does not match map dimensions")
	}
	m := &GameMap{
		width:   width,
		height:  height,
		terrain: terrain,
		owner:   make([]uint16, width*height),
		fallout: make([]bool, width*height),
	}
	for _, t := range terrain {
		if t != Water {
			m.numLand++
		}
	}
	return m
}

// GenerateMap builds a deterministic test/bot map: a water frame around land
// with terrain bands hardening toward the center. Real maps come from the
// out-of-scope terrain loader; this keeps replicas agreeing byte-for-byte
// given the same seed and dimensions.
func GenerateMap(width, height int, seed int64) *GameMap {
	r := NewRand(seed)
	terrain := make([]TerrainType, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				terrain[i] = Water
				continue
			}
			switch {
			case r.Chance(20):
				terrain[i] = Mountain
			case r.Chance(10):
				terrain[i] = Highland
			default:
				terrain[i] = Plains
			}
		}
	}
	return NewGameMap(width, height, terrain)
}

func (m *GameMap) Width() int  { return m.width }
func (m *GameMap) Height() int { return m.height }

func (m *GameMap) Ref(x, y int) TileRef {
	return TileRef(y*m.width + x)
}

func (m *GameMap) XY(t TileRef) (int, int) {
	return int(t) % m.width, int(t) / m.width
}

func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Neighbors appends the 4-neighborhood of t to buf and returns it. Order is
// fixed (up, left, right, down) because iteration order feeds the
// deterministic frontier.
func (m *GameMap) Neighbors(t TileRef, buf []TileRef) []TileRef {
	x, y := m.XY(t)
	if y > 0 {
		buf = append(buf, t-TileRef(m.width))
	}
	if x > 0 {
		buf = append(buf, t-1)
	}
	if x < m.width-1 {
		buf = append(buf, t+1)
	}
	if y < m.height-1 {
		buf = append(buf, t+TileRef(m.width))
	}
	return buf
}

func (m *GameMap) Terrain(t TileRef) TerrainType { return m.terrain[t] }
func (m *GameMap) IsWater(t TileRef) bool        { return m.terrain[t] == Water }
func (m *GameMap) IsLand(t TileRef) bool         { return m.terrain[t] != Water }
func (m *GameMap) NumLandTiles() int             { return m.numLand }

func (m *GameMap) OwnerID(t TileRef) uint16 { return m.owner[t] }
func (m *GameMap) HasOwner(t TileRef) bool  { return m.owner[t] != 0 }

func (m *GameMap) setOwner(t TileRef, smallID uint16) {
	m.owner[t] = smallID
}

func (m *GameMap) HasFallout(t TileRef) bool { return m.fallout[t] }
func (m *GameMap) NumFalloutTiles() int      { return m.numFallout }

func (m *GameMap) SetFallout(t TileRef, v bool) {
	if m.fallout[t] == v {
		return
	}
	m.fallout[t] = v
	if v {
		m.numFallout++
	} else {
		m.numFallout--
	}
}

// EuclideanDistSquared avoids the sqrt; blast radii compare against squared
// magnitudes.
func (m *GameMap) EuclideanDistSquared(a, b TileRef) int {
	ax, ay := m.XY(a)
	bx, by := m.XY(b)
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

func (m *GameMap) ManhattanDist(a, b TileRef) int {
	ax, ay := m.XY(a)
	bx, by := m.XY(b)
	return abs(ax-bx) + abs(ay-by)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
