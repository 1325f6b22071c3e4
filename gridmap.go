package gridnav

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidLayout = errors.New("gridnav: invalid layout")
	ErrOutOfBounds   = errors.New("gridnav: point out of bounds")
)

// Tile describes one grid cell.
type Tile struct {
	Opaque   bool    `json:"opaque"`
	Walkable bool    `json:"walkable"`
	Cost     float64 `json:"cost"` // Cost to enter the cell
}

var (
	Floor = Tile{Walkable: true, Cost: 1}
	Wall  = Tile{Opaque: true}
	Water = Tile{}
	Brush = Tile{Opaque: true, Walkable: true, Cost: 2}
	Road  = Tile{Walkable: true, Cost: 0.5}
)

// layoutGlyphs maps layout characters to tiles.
var layoutGlyphs = map[rune]Tile{
	'.': Floor,
	'#': Wall,
	'~': Water,
	'%': Brush,
	'=': Road,
}

type neighborOffset struct {
	dx, dy   int
	diagonal bool
}

var neighborOffsets = [...]neighborOffset{
	{dx: 0, dy: -1},
	{dx: 1, dy: 0},
	{dx: 0, dy: 1},
	{dx: -1, dy: 0},
	{dx: 1, dy: -1, diagonal: true},
	{dx: 1, dy: 1, diagonal: true},
	{dx: -1, dy: 1, diagonal: true},
	{dx: -1, dy: -1, diagonal: true},
}

// GridMap is a row-major rectangular map implementing BaseMap and Bounded.
type GridMap struct {
	Width    int
	Height   int
	Diagonal bool // Allow 8-way movement
	tiles    []Tile
	minCost  float64
}

// NewGridMap creates a map filled with floor tiles.
func NewGridMap(width, height int, diagonal bool) *GridMap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m := &GridMap{
		Width:    width,
		Height:   height,
		Diagonal: diagonal,
		tiles:    make([]Tile, width*height),
		minCost:  Floor.Cost,
	}
	for i := range m.tiles {
		m.tiles[i] = Floor
	}
	return m
}

// ParseLayout builds a map from rows of glyphs:
// '.' floor, '#' wall, '~' water, '%' brush, '=' road.
func ParseLayout(rows []string, diagonal bool) (*GridMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}
	width := len([]rune(rows[0]))
	m := NewGridMap(width, len(rows), diagonal)
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, y, len(runes), width)
		}
		for x, r := range runes {
			tile, ok := layoutGlyphs[r]
			if !ok {
				return nil, fmt.Errorf("%w: unknown glyph %q at (%d,%d)", ErrInvalidLayout, r, x, y)
			}
			m.tiles[y*width+x] = tile
		}
	}
	m.recomputeMinCost()
	return m, nil
}

// Layout renders the map back into glyph rows. Tiles that match no glyph are
// written as the closest one by opacity and walkability.
func (m *GridMap) Layout() []string {
	rows := make([]string, m.Height)
	var sb strings.Builder
	for y := 0; y < m.Height; y++ {
		sb.Reset()
		for x := 0; x < m.Width; x++ {
			sb.WriteRune(glyphFor(m.tiles[y*m.Width+x]))
		}
		rows[y] = sb.String()
	}
	return rows
}

func glyphFor(t Tile) rune {
	for r, tile := range layoutGlyphs {
		if tile == t {
			return r
		}
	}
	switch {
	case t.Opaque && t.Walkable:
		return '%'
	case t.Opaque:
		return '#'
	case t.Walkable:
		return '.'
	default:
		return '~'
	}
}

// InBounds implements Bounded.
func (m *GridMap) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// PointToIndex returns the row-major index of p, or -1 outside the map.
func (m *GridMap) PointToIndex(p Point) int {
	if !m.InBounds(p) {
		return -1
	}
	return p.Y*m.Width + p.X
}

// IndexToPoint is the inverse of PointToIndex.
func (m *GridMap) IndexToPoint(idx int) Point {
	if m.Width == 0 {
		return Point{}
	}
	return Point{X: idx % m.Width, Y: idx / m.Width}
}

func (m *GridMap) validIndex(idx int) bool {
	return idx >= 0 && idx < len(m.tiles)
}

// At returns the tile at p.
func (m *GridMap) At(p Point) (Tile, error) {
	idx := m.PointToIndex(p)
	if idx < 0 {
		return Tile{}, fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	return m.tiles[idx], nil
}

// Set replaces the tile at p.
func (m *GridMap) Set(p Point, t Tile) error {
	idx := m.PointToIndex(p)
	if idx < 0 {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, p)
	}
	if t.Walkable && (t.Cost <= 0 || math.IsNaN(t.Cost) || math.IsInf(t.Cost, 0)) {
		return fmt.Errorf("%w: cost %v at %v", ErrInvalidCost, t.Cost, p)
	}
	m.tiles[idx] = t
	m.recomputeMinCost()
	return nil
}

// SetCost changes the entry cost of the tile at p.
func (m *GridMap) SetCost(p Point, cost float64) error {
	t, err := m.At(p)
	if err != nil {
		return err
	}
	t.Cost = cost
	return m.Set(p, t)
}

// recomputeMinCost keeps the heuristic admissible: it is scaled by the
// cheapest walkable tile.
func (m *GridMap) recomputeMinCost() {
	m.minCost = 0
	for _, t := range m.tiles {
		if t.Walkable && (m.minCost == 0 || t.Cost < m.minCost) {
			m.minCost = t.Cost
		}
	}
}

// IsOpaque implements OpacityMap. Indices outside the map are opaque.
func (m *GridMap) IsOpaque(idx int) bool {
	if !m.validIndex(idx) {
		return true
	}
	return m.tiles[idx].Opaque
}

// IsWalkable reports whether the cell can be entered.
func (m *GridMap) IsWalkable(idx int) bool {
	return m.validIndex(idx) && m.tiles[idx].Walkable
}

// AvailableExits implements PathingMap. Diagonal moves cost √2 times the
// destination cost and may not cut the corner of an unwalkable cell.
func (m *GridMap) AvailableExits(idx int) []Exit {
	if !m.validIndex(idx) {
		return nil
	}
	p := m.IndexToPoint(idx)
	exits := make([]Exit, 0, 8)
	for _, off := range neighborOffsets {
		if off.diagonal && !m.Diagonal {
			break
		}
		to := m.PointToIndex(Point{X: p.X + off.dx, Y: p.Y + off.dy})
		if !m.IsWalkable(to) {
			continue
		}
		cost := m.tiles[to].Cost
		if off.diagonal {
			if !m.IsWalkable(m.PointToIndex(Point{X: p.X + off.dx, Y: p.Y})) ||
				!m.IsWalkable(m.PointToIndex(Point{X: p.X, Y: p.Y + off.dy})) {
				continue
			}
			cost *= math.Sqrt2
		}
		exits = append(exits, Exit{To: to, Cost: cost})
	}
	return exits
}

// PathingDistance implements PathingMap: Manhattan distance for 4-way maps,
// octile distance for 8-way maps, scaled by the cheapest walkable tile.
func (m *GridMap) PathingDistance(idx1, idx2 int) float64 {
	a, b := m.IndexToPoint(idx1), m.IndexToPoint(idx2)
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))

	var d float64
	if m.Diagonal {
		d = math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
	} else {
		d = dx + dy
	}
	return d * m.minCost
}

// PathPoints converts the steps of a path into coordinates.
func (m *GridMap) PathPoints(path NavigationPath) []Point {
	points := make([]Point, len(path.Steps))
	for i, idx := range path.Steps {
		points[i] = m.IndexToPoint(idx)
	}
	return points
}

// FindPath runs A* between two coordinates. Unwalkable or out-of-bounds
// endpoints fail without searching.
func (m *GridMap) FindPath(from, to Point, maxSteps int) NavigationPath {
	start, end := m.PointToIndex(from), m.PointToIndex(to)
	if start < 0 || !m.IsWalkable(end) {
		return NavigationPath{Destination: end}
	}
	return AStar{MaxSteps: maxSteps}.Search(start, end, m)
}
